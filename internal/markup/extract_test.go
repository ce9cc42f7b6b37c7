package markup

import (
	"testing"

	"github.com/memohai/telepost/internal/media"
)

func raws(refs []media.Reference) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.Raw())
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestExtractImages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "attribute order", in: `<img alt="x" src="u">`, want: []string{"u"}},
		{name: "single quotes", in: `<img src='u1'><img class=a src='u2' width=3>`, want: []string{"u1", "u2"}},
		{name: "unquoted", in: `<img src=u>`, want: []string{"u"}},
		{name: "self closing upper case", in: `<IMG SRC="u"/>`, want: []string{"u"}},
		{name: "empty src skipped", in: `<img src=""><img src="  "><img alt="no src"><img src="b">`, want: []string{"b"}},
		{name: "first occurrence order", in: `<p><img src="c"></p><div><img src="a"></div><img src="b">`, want: []string{"c", "a", "b"}},
		{name: "data url", in: `<img src="data:image/png;base64,AAAA">`, want: []string{"data:image/png;base64,AAAA"}},
		{name: "none", in: `<b>text</b>`, want: []string{}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := raws(ExtractImages(tt.in))
			if !equal(got, tt.want) {
				t.Fatalf("ExtractImages(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractVideosInterleavesIframes(t *testing.T) {
	t.Parallel()

	in := `<iframe width="1" src="https://a/embed"></iframe><video controls src="v1.mp4"></video><iframe src="https://b/embed"></iframe>`
	got := raws(ExtractVideos(in))
	want := []string{"https://a/embed", "v1.mp4", "https://b/embed"}
	if !equal(got, want) {
		t.Fatalf("ExtractVideos = %v, want %v", got, want)
	}
}

func TestExtractAfterRawTextElements(t *testing.T) {
	t.Parallel()

	got := Extract(`<iframe src="https://a/v"><video src="https://b/v.mp4"></video><img src="https://c/i.png">`)
	if want := []string{"https://a/v", "https://b/v.mp4"}; !equal(raws(got.Videos), want) {
		t.Fatalf("videos = %v, want %v", raws(got.Videos), want)
	}
	if want := []string{"https://c/i.png"}; !equal(raws(got.Images), want) {
		t.Fatalf("images = %v, want %v", raws(got.Images), want)
	}

	for _, in := range []string{
		`<p>hi</p><textarea>x<img src="https://c/i.png">`,
		`<title>t<img src="https://c/i.png"></title>`,
	} {
		if got := raws(ExtractImages(in)); !equal(got, []string{"https://c/i.png"}) {
			t.Errorf("ExtractImages(%q) = %v", in, got)
		}
	}

	if got := ExtractImages(`<script>var s = '<img src="https://c/i.png">';</script>`); len(got) != 0 {
		t.Fatalf("script body should stay opaque, got %v", raws(got))
	}
}

func TestExtractClassifiesReferences(t *testing.T) {
	t.Parallel()

	in := `<video src="data:video/mp4;base64,AAAA"></video><img src="https://x/a.png"><img src="data:image/jpeg;base64,AAAA">`
	got := Extract(in)
	if !got.HasMedia() {
		t.Fatal("expected media")
	}
	if len(got.Videos) != 1 || got.Videos[0].MediaType() != media.MediaTypeVideo || !got.Videos[0].IsBinary() {
		t.Fatalf("unexpected videos %+v", got.Videos)
	}
	if len(got.Images) != 2 {
		t.Fatalf("unexpected images %+v", got.Images)
	}
	if got.Images[0].IsBinary() || !got.Images[1].IsBinary() {
		t.Fatal("image kinds not classified by prefix")
	}
	if got.Images[0].MediaType() != media.MediaTypeImage {
		t.Fatal("image media type mismatch")
	}
}

func TestExtractEntitiesInSrc(t *testing.T) {
	t.Parallel()
	got := raws(ExtractImages(`<img src="https://x/a.png?w=1&amp;h=2">`))
	if !equal(got, []string{"https://x/a.png?w=1&h=2"}) {
		t.Fatalf("unexpected %v", got)
	}
}

func TestExtractEmpty(t *testing.T) {
	t.Parallel()
	if Extract("").HasMedia() {
		t.Fatal("empty input has no media")
	}
}
