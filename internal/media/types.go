package media

import (
	"context"
	"io"
)

// MediaType classifies the kind of media a reference points at.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
)

// RefKind tells whether a reference carries its bytes inline or points elsewhere.
type RefKind int

const (
	// RefRemote is anything that is not an inline data URL (http URLs, file paths, junk).
	RefRemote RefKind = iota
	// RefDataURL is an inline base64 data URL.
	RefDataURL
)

func (k RefKind) String() string {
	switch k {
	case RefDataURL:
		return "data_url"
	default:
		return "remote"
	}
}

// Reference is a media source lifted out of rich text. It is immutable.
type Reference struct {
	kind  RefKind
	media MediaType
	raw   string
}

// NewReference classifies raw lexically and returns the reference.
func NewReference(mediaType MediaType, raw string) Reference {
	kind := RefRemote
	if IsBinaryReference(raw) {
		kind = RefDataURL
	}
	return Reference{kind: kind, media: mediaType, raw: raw}
}

func (r Reference) Kind() RefKind { return r.kind }

func (r Reference) MediaType() MediaType { return r.media }

func (r Reference) Raw() string { return r.raw }

func (r Reference) IsBinary() bool { return r.kind == RefDataURL }

// Decoded is the payload of a data URL.
type Decoded struct {
	Bytes     []byte
	Mime      string
	Extension string
}

// Artifact is a spooled file holding decoded or uploaded media for one request.
type Artifact struct {
	Key       string
	Path      string
	Name      string
	Mime      string
	SizeBytes int64
}

// StorageProvider abstracts the storage used for transient artifacts.
type StorageProvider interface {
	// Put writes data to storage under the given key.
	Put(ctx context.Context, key string, reader io.Reader) (int64, error)
	// Open returns a reader for the given storage key.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object at key.
	Delete(ctx context.Context, key string) error
	// AccessPath returns the local filesystem path for a storage key.
	AccessPath(key string) string
	// Close removes everything the provider still holds.
	Close() error
}
