package media

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

const (
	dataURLScheme    = "data:"
	dataURLBase64Tag = ";base64,"
)

var (
	mimePattern        = regexp.MustCompile(`^[a-zA-Z0-9\-+.]+/[a-zA-Z0-9\-+.]+$`)
	nonBase64Alphabet  = regexp.MustCompile(`[^a-zA-Z0-9+/=]`)
	defaultImageExt    = ".jpg"
	defaultVideoExt    = ".mp4"
	defaultFallbackExt = ".bin"
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

var videoExtensions = map[string]string{
	"video/mp4":       ".mp4",
	"video/avi":       ".avi",
	"video/mov":       ".mov",
	"video/wmv":       ".wmv",
	"video/flv":       ".flv",
	"video/webm":      ".webm",
	"video/mpeg":      ".mpeg",
	"video/quicktime": ".mov",
}

// IsDataURL reports whether raw uses the data: scheme.
func IsDataURL(raw string) bool {
	return strings.HasPrefix(strings.TrimSpace(raw), dataURLScheme)
}

// IsBinaryReference is the lexical rule that decides whether a media source is sent as bytes.
// Only data:image and data:video/ prefixes qualify. Nothing is checked for existence.
func IsBinaryReference(raw string) bool {
	return strings.HasPrefix(raw, "data:image") || strings.HasPrefix(raw, "data:video/")
}

// IsWebURL reports whether raw starts with http:// or https://.
func IsWebURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

// DecodeDataURL decodes data:<mime>;base64,<payload>.
// Characters outside the base64 alphabet are stripped from the payload before decoding.
func DecodeDataURL(raw string) (Decoded, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Decoded{}, fmt.Errorf("%w: data url is empty", ErrInvalidFormat)
	}
	if !strings.HasPrefix(value, dataURLScheme) {
		return Decoded{}, fmt.Errorf("%w: missing data: scheme", ErrInvalidFormat)
	}
	idx := strings.Index(value, dataURLBase64Tag)
	if idx < 0 {
		return Decoded{}, fmt.Errorf("%w: missing ;base64, marker", ErrInvalidFormat)
	}
	mime := value[len(dataURLScheme):idx]
	if !mimePattern.MatchString(mime) {
		return Decoded{}, fmt.Errorf("%w: invalid mime type %q", ErrInvalidFormat, mime)
	}
	payload := SanitizeBase64(value[idx+len(dataURLBase64Tag):])
	if payload == "" {
		return Decoded{}, fmt.Errorf("%w: empty payload", ErrInvalidFormat)
	}
	data, err := decodeBase64(payload)
	if err != nil {
		return Decoded{}, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	if len(data) == 0 {
		return Decoded{}, fmt.Errorf("%w: payload decodes to nothing", ErrInvalidBase64)
	}
	mime = strings.ToLower(mime)
	return Decoded{
		Bytes:     data,
		Mime:      mime,
		Extension: ExtensionForMime(mime),
	}, nil
}

// SanitizeBase64 drops every character outside [A-Za-z0-9+/=].
func SanitizeBase64(payload string) string {
	return nonBase64Alphabet.ReplaceAllString(payload, "")
}

// decodeBase64 accepts padded and unpadded standard base64.
func decodeBase64(payload string) ([]byte, error) {
	if strings.Contains(strings.TrimRight(payload, "="), "=") {
		return nil, fmt.Errorf("padding inside payload")
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
}

// ExtensionForMime maps a mime type to a file extension. Unknown image and video
// types fall back to .jpg and .mp4 so that uncommon inputs are still accepted.
func ExtensionForMime(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if ext, ok := imageExtensions[mime]; ok {
		return ext
	}
	if ext, ok := videoExtensions[mime]; ok {
		return ext
	}
	switch {
	case strings.HasPrefix(mime, "image/"):
		return defaultImageExt
	case strings.HasPrefix(mime, "video/"):
		return defaultVideoExt
	default:
		return defaultFallbackExt
	}
}
