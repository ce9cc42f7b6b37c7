package telegram

import (
	"strings"
	"unicode/utf8"
)

const (
	maxMessageLength = 4096
	maxCaptionLength = 1024
)

// sanitizeText ensures text is valid UTF-8 for the Telegram API.
func sanitizeText(text string) string {
	if utf8.ValidString(text) {
		return text
	}
	return strings.ToValidUTF8(text, "")
}

// truncateText cuts text to limit bytes on a rune boundary, appending "..." when it cuts.
func truncateText(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	const suffix = "..."
	end := limit - len(suffix)
	for end > 0 && !utf8.RuneStart(text[end]) {
		end--
	}
	return text[:end] + suffix
}

func prepareMessage(text string) string {
	return truncateText(sanitizeText(text), maxMessageLength)
}

func prepareCaption(caption string) string {
	return truncateText(sanitizeText(caption), maxCaptionLength)
}
