// Package markup converts constrained rich text into the Telegram caption dialect
// and lifts embedded media sources out of it.
package markup

import (
	"regexp"
	"strings"
)

// ImagePlaceholder replaces inline <img> tags in normalized text.
const ImagePlaceholder = "[image]"

type rule struct {
	pattern *regexp.Regexp
	repl    string
}

// formatting rules run before entities are unescaped, stripping rules after, so that
// text decoded from &lt;...&gt; is treated like any other tag.
var formatting = []rule{
	{regexp.MustCompile(`(?i)</?(?:b|strong)(?:\s[^>]*)?>`), "*"},
	{regexp.MustCompile(`(?i)</?(?:i|em)(?:\s[^>]*)?>`), "_"},
	{regexp.MustCompile(`(?i)</?u(?:\s[^>]*)?>`), ""},
	{regexp.MustCompile(`(?i)<br\s*/?>`), "\n"},
	{regexp.MustCompile(`(?i)<p(?:\s[^>]*)?>`), "\n"},
	{regexp.MustCompile(`(?i)</p\s*>`), ""},
}

var stripping = []rule{
	{regexp.MustCompile(`(?i)<img(?:\s[^>]*)?/?>`), ImagePlaceholder},
	{regexp.MustCompile(`<[^>]*>`), ""},
}

// entities is the whole entity table. Anything else passes through as written.
var entities = strings.NewReplacer(
	"&nbsp;", " ",
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
)

// Normalize maps rich text to the caption dialect: bold becomes *x*, italic _x_,
// line breaks and paragraphs become newlines, images become ImagePlaceholder and
// every other tag is dropped. The result is trimmed.
//
// The table is applied until the text stops changing, so Normalize(Normalize(s)) == Normalize(s).
func Normalize(html string) string {
	out := normalizeOnce(html)
	for {
		next := normalizeOnce(out)
		if next == out {
			return out
		}
		out = next
	}
}

func normalizeOnce(s string) string {
	for _, r := range formatting {
		s = r.pattern.ReplaceAllLiteralString(s, r.repl)
	}
	s = entities.Replace(s)
	for _, r := range stripping {
		s = r.pattern.ReplaceAllLiteralString(s, r.repl)
	}
	return strings.TrimSpace(s)
}
