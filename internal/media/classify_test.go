package media

import (
	"errors"
	"testing"
)

const tinyPNG = "data:image/png;base64,iVBORw0KGgo="

func TestClassifyCaptionOnFirstItemOnly(t *testing.T) {
	t.Parallel()

	refs := []Reference{
		NewReference(MediaTypeImage, "https://example.com/a.png"),
		NewReference(MediaTypeImage, tinyPNG),
		NewReference(MediaTypeImage, "https://example.com/b.png"),
	}
	got := Classify(refs, "hello")

	if len(got.Items) != 3 || len(got.Binary) != 1 || len(got.Remote) != 2 {
		t.Fatalf("unexpected partition: items=%d binary=%d remote=%d", len(got.Items), len(got.Binary), len(got.Remote))
	}
	for i, item := range got.Items {
		want := ""
		if i == 0 {
			want = "hello"
		}
		if item.Caption != want {
			t.Fatalf("item %d caption = %q, want %q", i, item.Caption, want)
		}
	}
	if got.Binary[0].Caption != "" {
		t.Fatalf("binary item must not carry caption, got %q", got.Binary[0].Caption)
	}
	if !got.CaptionOwnerIsRemote() {
		t.Fatal("caption owner should be remote")
	}
	if got.AllBinary() {
		t.Fatal("mixed set is not all binary")
	}
}

func TestClassifyDecodesBinaryItems(t *testing.T) {
	t.Parallel()

	refs := []Reference{
		NewReference(MediaTypeImage, tinyPNG),
		NewReference(MediaTypeImage, "data:image/png;base64,"),
	}
	got := Classify(refs, "cap")

	if !got.AllBinary() {
		t.Fatal("expected all binary")
	}
	if got.CaptionOwnerIsRemote() {
		t.Fatal("caption owner should be binary")
	}
	first := got.Items[0]
	if first.Decoded == nil || first.DecodeErr != nil {
		t.Fatalf("first item should decode, err=%v", first.DecodeErr)
	}
	if first.Decoded.Mime != "image/png" {
		t.Fatalf("mime = %q", first.Decoded.Mime)
	}
	second := got.Items[1]
	if second.Decoded != nil || !errors.Is(second.DecodeErr, ErrInvalidFormat) {
		t.Fatalf("second item should fail with ErrInvalidFormat, got %v", second.DecodeErr)
	}
}

func TestClassifyDecodedBuffersAreIndependent(t *testing.T) {
	t.Parallel()

	refs := []Reference{
		NewReference(MediaTypeImage, tinyPNG),
		NewReference(MediaTypeImage, tinyPNG),
	}
	got := Classify(refs, "")
	got.Items[0].Decoded.Bytes[0] = 0x00
	if got.Items[1].Decoded.Bytes[0] == 0x00 {
		t.Fatal("decoded buffers must not be shared")
	}
}

func TestClassifyEmpty(t *testing.T) {
	t.Parallel()

	got := Classify(nil, "caption")
	if got.AllBinary() || got.CaptionOwnerIsRemote() {
		t.Fatal("empty set has no owner and is not all binary")
	}
}

func TestReferenceKind(t *testing.T) {
	t.Parallel()

	if ref := NewReference(MediaTypeVideo, "data:video/mp4;base64,AAAA"); ref.Kind() != RefDataURL || !ref.IsBinary() {
		t.Fatalf("video data url classified as %s", ref.Kind())
	}
	if ref := NewReference(MediaTypeImage, "file:///tmp/a.png"); ref.Kind() != RefRemote || ref.IsBinary() {
		t.Fatalf("file url classified as %s", ref.Kind())
	}
	if ref := NewReference(MediaTypeImage, "x"); ref.MediaType() != MediaTypeImage || ref.Raw() != "x" {
		t.Fatal("reference accessors mismatch")
	}
}
