package dispatch

import (
	"context"
	"errors"
	"sync"

	"github.com/memohai/telepost/internal/media"
)

const (
	pngDataURL   = "data:image/png;base64,iVBORw0KGgo="
	jpegDataURL  = "data:image/jpeg;base64,/9j/4AAQSkZJRg=="
	videoDataURL = "data:video/mp4;base64,AAAAIGZ0eXBpc29t"
	badVideoURL  = "data:video/mp4;base64,A"
	badImageURL  = "data:image/png;base64,A"
)

var errGateway = errors.New("telegram says no")

type call struct {
	kind   string
	target string
	text   string
	items  []MediaItem
}

// fakeGateway records every call. failMediaAt fails the n-th SendMedia call (1-based).
// onMedia runs before every media or group send.
type fakeGateway struct {
	mu          sync.Mutex
	calls       []call
	failText    bool
	failGroup   bool
	failMediaAt int
	mediaCalls  int
	onMedia     func()
}

func (g *fakeGateway) SendText(_ context.Context, target, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failText {
		return errGateway
	}
	g.calls = append(g.calls, call{kind: "text", target: target, text: text})
	return nil
}

func (g *fakeGateway) SendMedia(_ context.Context, target string, item MediaItem) error {
	if g.onMedia != nil {
		g.onMedia()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mediaCalls++
	if g.failMediaAt > 0 && g.mediaCalls == g.failMediaAt {
		return errGateway
	}
	g.calls = append(g.calls, call{kind: "media", target: target, items: []MediaItem{item}})
	return nil
}

func (g *fakeGateway) SendMediaGroup(_ context.Context, target string, items []MediaItem) error {
	if g.onMedia != nil {
		g.onMedia()
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failGroup {
		return errGateway
	}
	g.calls = append(g.calls, call{kind: "group", target: target, items: append([]MediaItem(nil), items...)})
	return nil
}

func (g *fakeGateway) kinds() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.calls))
	for _, c := range g.calls {
		out = append(out, c.kind)
	}
	return out
}

// fakeSpooler hands out fake paths and remembers what was released.
type fakeSpooler struct {
	mu       sync.Mutex
	spooled  []media.Artifact
	released []media.Artifact
	// releaseCtxErrs holds ctx.Err() as seen by each Release call.
	releaseCtxErrs []error
	fail           bool
}

func (s *fakeSpooler) Spool(_ context.Context, scope string, mediaType media.MediaType, decoded media.Decoded) (media.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return media.Artifact{}, media.ErrProviderUnavailable
	}
	name := string(mediaType) + "-" + string(rune('a'+len(s.spooled))) + decoded.Extension
	art := media.Artifact{
		Key:       scope + "/" + name,
		Path:      "/spool/" + scope + "/" + name,
		Name:      name,
		Mime:      decoded.Mime,
		SizeBytes: int64(len(decoded.Bytes)),
	}
	s.spooled = append(s.spooled, art)
	return art, nil
}

func (s *fakeSpooler) Release(ctx context.Context, arts ...media.Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.released = append(s.released, arts...)
	s.releaseCtxErrs = append(s.releaseCtxErrs, ctx.Err())
}

func refs(mediaType media.MediaType, raws ...string) []media.Reference {
	out := make([]media.Reference, 0, len(raws))
	for _, raw := range raws {
		out = append(out, media.NewReference(mediaType, raw))
	}
	return out
}
