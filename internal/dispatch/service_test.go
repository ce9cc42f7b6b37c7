package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memohai/telepost/internal/media"
)

func TestResolveTarget(t *testing.T) {
	t.Parallel()
	svc := NewService(nil, &fakeGateway{}, nil, " -1002979306798 ")

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: "-1002979306798"},
		{in: "   ", want: "-1002979306798"},
		{in: "12345", want: "12345"},
		{in: " -42 ", want: "-42"},
		{in: "@mychannel", want: "@mychannel"},
		{in: "@", wantErr: true},
		{in: "my channel", wantErr: true},
		{in: "99999999999999999999", wantErr: true},
	}
	for _, tt := range tests {
		got, err := svc.ResolveTarget(tt.in)
		if tt.wantErr {
			assert.True(t, errors.Is(err, ErrInvalidTarget), "ResolveTarget(%q) err = %v", tt.in, err)
			continue
		}
		require.NoError(t, err, "ResolveTarget(%q)", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestResolveTargetWithoutDefault(t *testing.T) {
	t.Parallel()
	svc := NewService(nil, &fakeGateway{}, nil, "")
	_, err := svc.ResolveTarget("")
	assert.True(t, errors.Is(err, ErrInvalidTarget))
	assert.Equal(t, "", svc.DefaultChatID())
}

func TestSendRichTextEndToEnd(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{}
	svc := NewService(nil, gw, nil, "-100")

	rich := `<p><b>Hello</b> world</p><img alt="a" src="` + pngDataURL + `"><img src="` + jpegDataURL + `">`
	res, err := svc.SendRichText(context.Background(), "", rich)
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, res.Outcome)
	assert.Equal(t, StrategyImageGroup, res.Strategy)
	require.Equal(t, []string{"group"}, gw.kinds())
	call := gw.calls[0]
	assert.Equal(t, "-100", call.target)
	assert.Equal(t, "*Hello* world[image][image]", call.items[0].Caption)
	assert.Empty(t, call.items[1].Caption)
}

func TestSendRichTextPlain(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{}
	svc := NewService(nil, gw, nil, "-100")

	res, err := svc.SendRichText(context.Background(), "@news", "<i>just</i> text &amp; more")
	require.NoError(t, err)
	assert.Equal(t, "text sent", res.Status())
	require.Len(t, gw.calls, 1)
	assert.Equal(t, "@news", gw.calls[0].target)
	assert.Equal(t, "_just_ text & more", gw.calls[0].text)
}

func TestSendRichTextInvalidTarget(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{}
	svc := NewService(nil, gw, nil, "-100")

	_, err := svc.SendRichText(context.Background(), "nope", "hi")
	assert.True(t, errors.Is(err, ErrInvalidTarget))
	assert.Empty(t, gw.calls)
}

func TestSendPhoto(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{}
	svc := NewService(nil, gw, nil, "-100")
	ctx := context.Background()

	res, err := svc.SendPhoto(ctx, "", pngDataURL, "<b>x</b>")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, res.Outcome)

	_, err = svc.SendPhoto(ctx, "", "/srv/media/a.png", "")
	require.NoError(t, err)

	_, err = svc.SendPhoto(ctx, "", "  ", "")
	assert.True(t, errors.Is(err, ErrMissingSource))

	require.Len(t, gw.calls, 2)
	assert.NotEmpty(t, gw.calls[0].items[0].Bytes)
	assert.Equal(t, "*x*", gw.calls[0].items[0].Caption)
	assert.Equal(t, "/srv/media/a.png", gw.calls[1].items[0].Path)
}

func TestSendPhotoByURL(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{}
	svc := NewService(nil, gw, nil, "-100")

	res, err := svc.SendPhotoByURL(context.Background(), "", "https://i/a.png", "cap")
	require.NoError(t, err)
	assert.Equal(t, "sent 1 image(s)", res.Status())
	assert.Equal(t, "https://i/a.png", gw.calls[0].items[0].URL)

	_, err = svc.SendPhotoByURL(context.Background(), "", "", "cap")
	assert.True(t, errors.Is(err, ErrMissingSource))
}

func TestSendGridTextOnly(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{}
	svc := NewService(nil, gw, nil, "-100")

	res, err := svc.SendGrid(context.Background(), "", "<p>only text</p>", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "text sent", res.Status())
	assert.Equal(t, []string{"text"}, gw.kinds())
}

func TestSendGridWithUploads(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{}
	svc := NewService(nil, gw, nil, "-100")

	video := &media.Artifact{Path: "/up/video-1.mp4"}
	res, err := svc.SendGrid(context.Background(), "", "cap", video, []media.Artifact{{Path: "/up/image-1.jpg"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"media", "media"}, gw.kinds())
	assert.Equal(t, "cap", gw.calls[0].items[0].Caption)
	assert.Equal(t, "cap", gw.calls[1].items[0].Caption)
	assert.Equal(t, "sent 1 video(s) and 1 image(s)", res.Status())
}

func TestResultJSON(t *testing.T) {
	t.Parallel()
	res := Result{
		Outcome:    OutcomeFailure,
		Strategy:   StrategyImages,
		ImagesSent: 1,
		Err:        errors.New("boom"),
	}
	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "failure", decoded["outcome"])
	assert.Equal(t, "boom", decoded["error"])
	assert.Equal(t, "send failed: boom", decoded["status"])
	assert.EqualValues(t, 1, decoded["images_sent"])
	assert.NotContains(t, decoded, "cause")
}

func TestResultStatusVideoFallbackAfterSends(t *testing.T) {
	t.Parallel()
	res := Result{
		Outcome:    OutcomePartialFallback,
		Strategy:   StrategyVideos,
		Fallback:   FallbackVideoToText,
		Captioned:  true,
		VideosSent: 1,
		TextSent:   true,
		Cause:      media.ErrInvalidBase64,
	}
	assert.Equal(t, "sent 1 video(s) with caption; video data could not be processed (invalid base64 data); text sent instead", res.Status())
	assert.True(t, res.OK())
}
