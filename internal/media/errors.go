package media

import "errors"

var (
	// ErrInvalidFormat indicates the input is not a data:<mime>;base64,<payload> string.
	ErrInvalidFormat = errors.New("invalid data url format")
	// ErrInvalidBase64 indicates the payload could not be decoded after sanitizing.
	ErrInvalidBase64 = errors.New("invalid base64 data")
	// ErrProviderUnavailable indicates the storage provider is not configured.
	ErrProviderUnavailable = errors.New("storage provider unavailable")
	// ErrAssetTooLarge indicates the payload exceeds the configured max size.
	ErrAssetTooLarge = errors.New("media asset too large")
	// ErrPathTraversal indicates a key or path attempted to escape its root.
	ErrPathTraversal = errors.New("path traversal is forbidden")
	// ErrEmptyInput indicates a rich text document with nothing but whitespace.
	ErrEmptyInput = errors.New("input is empty")
)
