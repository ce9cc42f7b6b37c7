package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// sniffBytes is how much of an upload is buffered for content type detection.
const sniffBytes = 3072

var localImageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".webp": {},
}

// Service spools transient media artifacts and resolves local media paths.
type Service struct {
	provider  StorageProvider
	localRoot string
	maxBytes  int64
	logger    *slog.Logger
}

// NewService creates a media service. localRoot confines every local path lookup;
// maxBytes caps spooled uploads and falls back to MaxAssetBytes when not positive.
func NewService(log *slog.Logger, provider StorageProvider, localRoot string, maxBytes int64) *Service {
	if log == nil {
		log = slog.Default()
	}
	if maxBytes <= 0 {
		maxBytes = MaxAssetBytes
	}
	root := strings.TrimSpace(localRoot)
	if root != "" {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	return &Service{
		provider:  provider,
		localRoot: root,
		maxBytes:  maxBytes,
		logger:    log.With(slog.String("service", "media")),
	}
}

// MaxBytes returns the upload cap.
func (s *Service) MaxBytes() int64 {
	return s.maxBytes
}

// Spool writes decoded bytes to a fresh artifact under scope.
func (s *Service) Spool(ctx context.Context, scope string, mediaType MediaType, decoded Decoded) (Artifact, error) {
	if s.provider == nil {
		return Artifact{}, ErrProviderUnavailable
	}
	if len(decoded.Bytes) == 0 {
		return Artifact{}, fmt.Errorf("%w: payload is empty", ErrInvalidBase64)
	}
	if int64(len(decoded.Bytes)) > s.maxBytes {
		return Artifact{}, fmt.Errorf("%w: max %d bytes", ErrAssetTooLarge, s.maxBytes)
	}
	ext := decoded.Extension
	if ext == "" {
		ext = ExtensionForMime(decoded.Mime)
	}
	return s.put(ctx, scope, mediaType, ext, decoded.Mime, bytes.NewReader(decoded.Bytes))
}

// SpoolReader streams an upload to a fresh artifact under scope. The extension comes
// from originalName when it has one and from the sniffed content type otherwise.
func (s *Service) SpoolReader(ctx context.Context, scope string, mediaType MediaType, originalName string, reader io.Reader) (Artifact, error) {
	if s.provider == nil {
		return Artifact{}, ErrProviderUnavailable
	}
	if reader == nil {
		return Artifact{}, fmt.Errorf("reader is required")
	}
	head := make([]byte, sniffBytes)
	n, err := io.ReadFull(reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Artifact{}, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return Artifact{}, fmt.Errorf("upload payload is empty")
	}
	detected := mimetype.Detect(head)
	mime := detected.String()
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = mime[:idx]
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = detected.Extension()
	}
	if ext == "" {
		ext = ExtensionForMime(string(mediaType) + "/")
	}
	return s.put(ctx, scope, mediaType, ext, mime, io.MultiReader(bytes.NewReader(head), reader))
}

func (s *Service) put(ctx context.Context, scope string, mediaType MediaType, ext, mime string, reader io.Reader) (Artifact, error) {
	scope = strings.TrimSpace(scope)
	if scope == "" {
		return Artifact{}, fmt.Errorf("spool scope is required")
	}
	name := string(mediaType) + "-" + uuid.NewString() + ext
	key := scope + "/" + name
	limited := &io.LimitedReader{R: reader, N: s.maxBytes + 1}
	written, err := s.provider.Put(ctx, key, limited)
	if err != nil {
		return Artifact{}, fmt.Errorf("spool %s: %w", name, err)
	}
	if written > s.maxBytes {
		if delErr := s.provider.Delete(ctx, key); delErr != nil {
			s.logger.Warn("cleanup oversized artifact failed", slog.String("key", key), slog.Any("error", delErr))
		}
		return Artifact{}, fmt.Errorf("%w: max %d bytes", ErrAssetTooLarge, s.maxBytes)
	}
	art := Artifact{
		Key:       key,
		Path:      s.provider.AccessPath(key),
		Name:      name,
		Mime:      mime,
		SizeBytes: written,
	}
	s.logger.Debug("artifact spooled", slog.String("key", key), slog.Int64("size", written))
	return art, nil
}

// Open reads a spooled artifact back.
func (s *Service) Open(ctx context.Context, art Artifact) (io.ReadCloser, error) {
	if s.provider == nil {
		return nil, ErrProviderUnavailable
	}
	return s.provider.Open(ctx, art.Key)
}

// Release deletes artifacts. Failures are logged, never returned.
func (s *Service) Release(ctx context.Context, arts ...Artifact) {
	if s.provider == nil {
		return
	}
	for _, art := range arts {
		if art.Key == "" {
			continue
		}
		if err := s.provider.Delete(ctx, art.Key); err != nil {
			s.logger.Warn("release artifact failed", slog.String("key", art.Key), slog.Any("error", err))
		}
	}
}

// ResolveLocal maps p to an absolute path under the local media root.
// Relative paths are joined to the root; absolute paths must already lie inside it.
func (s *Service) ResolveLocal(p string) (string, error) {
	if s.localRoot == "" {
		return "", fmt.Errorf("local media root is not configured")
	}
	p = strings.TrimSpace(p)
	var joined string
	if filepath.IsAbs(p) {
		joined = filepath.Clean(p)
	} else {
		joined = filepath.Join(s.localRoot, p)
	}
	if joined != s.localRoot && !strings.HasPrefix(joined, s.localRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, p)
	}
	return joined, nil
}

// ListImages returns the names of image files directly inside folder, sorted.
// A missing folder or a plain file yields an empty list.
func (s *Service) ListImages(folder string) ([]string, error) {
	dir, err := s.ResolveLocal(folder)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) || isNotDir(dir) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read folder: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if _, ok := localImageExtensions[strings.ToLower(filepath.Ext(entry.Name()))]; !ok {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Close releases the storage provider.
func (s *Service) Close() error {
	if s.provider == nil {
		return nil
	}
	return s.provider.Close()
}

func isNotDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
