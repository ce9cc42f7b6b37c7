// Package spool implements media.StorageProvider on a private temp directory.
// Keys have the form "<scope>/<name>" where scope is usually one request id,
// and map to <root>/<scope>/<name> on disk.
package spool

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const rootPattern = "telepost-spool-*"

// Provider stores transient media artifacts under a private root directory.
type Provider struct {
	root string
}

// New creates a spool provider with a fresh root directory inside parent.
// An empty parent uses the OS temp directory.
func New(parent string) (*Provider, error) {
	if strings.TrimSpace(parent) != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return nil, fmt.Errorf("create spool parent: %w", err)
		}
	}
	dir, err := os.MkdirTemp(parent, rootPattern)
	if err != nil {
		return nil, fmt.Errorf("create spool root: %w", err)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve spool root: %w", err)
	}
	return &Provider{root: abs}, nil
}

// Root returns the directory the provider writes into.
func (p *Provider) Root() string {
	return p.root
}

// Put writes reader to the file for key. Existing files are never overwritten.
func (p *Provider) Put(_ context.Context, key string, reader io.Reader) (int64, error) {
	dest, err := p.hostPath(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o700); err != nil {
		return 0, fmt.Errorf("create parent dir: %w", err)
	}
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	written, copyErr := io.Copy(f, reader)
	closeErr := f.Close()
	if copyErr != nil {
		_ = os.Remove(dest)
		return written, fmt.Errorf("write file: %w", copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(dest)
		return written, fmt.Errorf("close file: %w", closeErr)
	}
	return written, nil
}

// Open reads the file for key.
func (p *Provider) Open(_ context.Context, key string) (io.ReadCloser, error) {
	dest, err := p.hostPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(dest)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Delete removes the file for key and its scope directory once empty.
func (p *Provider) Delete(_ context.Context, key string) error {
	dest, err := p.hostPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	// fails harmlessly while other artifacts of the scope remain
	_ = os.Remove(filepath.Dir(dest))
	return nil
}

// AccessPath returns the on-disk path for key, or "" when key is invalid.
func (p *Provider) AccessPath(key string) string {
	dest, err := p.hostPath(key)
	if err != nil {
		return ""
	}
	return dest
}

// Close removes the spool root and everything left in it.
func (p *Provider) Close() error {
	if p.root == "" {
		return nil
	}
	if err := os.RemoveAll(p.root); err != nil {
		return fmt.Errorf("remove spool root: %w", err)
	}
	return nil
}

// hostPath converts "<scope>/<name>" into <root>/<scope>/<name>.
func (p *Provider) hostPath(key string) (string, error) {
	clean := filepath.Clean(key)
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("absolute key is forbidden: %s", key)
	}
	if strings.HasPrefix(clean, ".."+string(filepath.Separator)) || clean == ".." {
		return "", fmt.Errorf("path traversal is forbidden: %s", key)
	}
	idx := strings.IndexByte(clean, filepath.Separator)
	if idx <= 0 {
		return "", fmt.Errorf("storage key must contain a scope prefix: %s", key)
	}
	scope := clean[:idx]
	name := clean[idx+1:]
	if strings.TrimSpace(scope) == "" || strings.TrimSpace(name) == "" {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}
	joined := filepath.Join(p.root, scope, name)
	if !strings.HasPrefix(joined, p.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes spool root: %s", key)
	}
	return joined, nil
}
