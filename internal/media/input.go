package media

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// MaxAssetBytes caps uploads and command line input when media.max_upload_bytes is unset.
const MaxAssetBytes int64 = 50 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadRichText reads a rich text document, such as a file or stdin given to the send
// command. A non-positive maxBytes means MaxAssetBytes. A leading byte order mark is
// dropped and blank documents are rejected with ErrEmptyInput.
func ReadRichText(r io.Reader, maxBytes int64) (string, error) {
	if r == nil {
		return "", fmt.Errorf("input reader is required")
	}
	if maxBytes <= 0 {
		maxBytes = MaxAssetBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return "", fmt.Errorf("%w: input exceeds %d bytes", ErrAssetTooLarge, maxBytes)
	}
	text := string(bytes.TrimPrefix(data, utf8BOM))
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyInput
	}
	return text, nil
}
