package markup

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/memohai/telepost/internal/media"
)

// Extracted holds media references in first-occurrence order.
type Extracted struct {
	Images []media.Reference
	Videos []media.Reference
}

// HasMedia reports whether any reference was found.
func (e Extracted) HasMedia() bool {
	return len(e.Images) > 0 || len(e.Videos) > 0
}

// Extract scans rich text once and returns the src of every <img> as an image
// reference and of every <video> or <iframe> as a video reference. Tags without
// a non-empty src are skipped.
func Extract(rich string) Extracted {
	var out Extracted
	z := html.NewTokenizer(strings.NewReader(rich))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return out
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			switch string(name) {
			case "script", "style":
			default:
				// iframe, textarea, title and friends would swallow the rest of the document.
				z.NextIsNotRawText()
			}
			if !hasAttr {
				continue
			}
			var mediaType media.MediaType
			switch string(name) {
			case "img":
				mediaType = media.MediaTypeImage
			case "video", "iframe":
				mediaType = media.MediaTypeVideo
			default:
				continue
			}
			src := srcAttr(z)
			if src == "" {
				continue
			}
			ref := media.NewReference(mediaType, src)
			if mediaType == media.MediaTypeImage {
				out.Images = append(out.Images, ref)
			} else {
				out.Videos = append(out.Videos, ref)
			}
		}
	}
}

// ExtractImages returns the image references of rich.
func ExtractImages(rich string) []media.Reference {
	return Extract(rich).Images
}

// ExtractVideos returns the video and iframe references of rich.
func ExtractVideos(rich string) []media.Reference {
	return Extract(rich).Videos
}

func srcAttr(z *html.Tokenizer) string {
	for {
		key, val, more := z.TagAttr()
		if string(key) == "src" {
			return strings.TrimSpace(string(val))
		}
		if !more {
			return ""
		}
	}
}
