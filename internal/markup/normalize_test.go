package markup

import (
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bold", in: "<b>x</b>", want: "*x*"},
		{name: "strong", in: "<strong>x</strong>", want: "*x*"},
		{name: "italic", in: "<i>x</i>", want: "_x_"},
		{name: "em", in: "<em>x</em>", want: "_x_"},
		{name: "upper case tags", in: "<B>x</B> <EM>y</EM>", want: "*x* _y_"},
		{name: "tags with attributes", in: `<b class="a">x</b><span style="c">y</span>`, want: "*x*y"},
		{name: "underline dropped", in: "<u>x</u>", want: "x"},
		{name: "line break", in: "a<br>b", want: "a\nb"},
		{name: "self closing line break", in: "a<br/>b<BR />c", want: "a\nb\nc"},
		{name: "paragraphs", in: "<p>a</p><p>b</p>", want: "a\nb"},
		{name: "image placeholder", in: "see <img src='u'> here", want: "see [image] here"},
		{name: "self closing image", in: `<img alt="x" src="u"/>`, want: "[image]"},
		{name: "other tags stripped", in: `<div><a href="h">link</a></div><ul><li>one</li></ul>`, want: "linkone"},
		{name: "video stripped", in: `text<video src="v.mp4"></video>`, want: "text"},
		{name: "entities", in: "a&nbsp;b &amp; 1 &lt; 2", want: "a b & 1 < 2"},
		{name: "escaped tag stripped", in: "a &lt;b&gt; c", want: "a  c"},
		{name: "escaped tag not formatted", in: "&lt;b&gt;x&lt;/b&gt;", want: "x"},
		{name: "unknown entity kept", in: "&copy; &quot;", want: "&copy; &quot;"},
		{name: "double escaped entity settles", in: "&amp;lt;", want: "<"},
		{name: "trimmed", in: "  <p>hello</p>  ", want: "hello"},
		{name: "empty", in: "", want: ""},
		{name: "not confused by similar tags", in: "<pre>x</pre><ins>y</ins><body>z</body>", want: "xyz"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Normalize(tt.in); got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeImageDoesNotLeakTag(t *testing.T) {
	t.Parallel()
	got := Normalize(`<img src='u'>`)
	if !strings.Contains(got, ImagePlaceholder) {
		t.Fatalf("missing placeholder in %q", got)
	}
	if strings.Contains(got, "<img") || strings.Contains(got, "src") {
		t.Fatalf("raw tag leaked into %q", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"<b>bold</b> and <i>italic</i>",
		"<p>First</p><p>Second<br>line</p>",
		`<div class="post"><strong>Title</strong><img src="data:image/png;base64,AAAA"></div>`,
		"plain text & more",
		"a&nbsp;b",
		"<u>under</u> <em>x</em>",
		"a &lt;b&gt; c",
		"&amp;lt;i&amp;gt;x",
		"1 &lt; 2 &amp;&amp; 3 &gt; 2",
		"&lt;img src=x&gt; after",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}
