package dispatch

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FailurePrefix starts every failure status line.
const FailurePrefix = "send failed: "

// Outcome is the overall verdict of one executed plan.
type Outcome string

const (
	OutcomeSuccess         Outcome = "success"
	OutcomePartialFallback Outcome = "partial_fallback"
	OutcomeFailure         Outcome = "failure"
)

// Result describes what an executed plan actually sent.
type Result struct {
	Outcome    Outcome
	Strategy   Strategy
	Fallback   Fallback
	Target     string
	Captioned  bool
	ImagesSent int
	VideosSent int
	TextSent   bool
	// GroupSize is the item count of the last media group the gateway accepted.
	GroupSize int
	// Cause is the error that triggered Fallback.
	Cause error
	// Err is the terminal error. It is set only when Outcome is OutcomeFailure.
	Err error
}

// OK reports whether the request reached its recipient in some form.
func (r Result) OK() bool {
	return r.Outcome != OutcomeFailure
}

// Status renders the result as one human-readable line.
func (r Result) Status() string {
	if r.Outcome == OutcomeFailure {
		return FailurePrefix + errString(r.Err)
	}
	switch r.Fallback {
	case FallbackVideoToText:
		line := fmt.Sprintf("video data could not be processed (%s); text sent instead", errString(r.Cause))
		if r.VideosSent > 0 {
			line = r.videoLine() + "; " + line
		}
		return line
	case FallbackGroupToIndividual:
		return fmt.Sprintf("media group failed (%s); sent %d image(s) individually", errString(r.Cause), r.ImagesSent)
	case FallbackRemoteToIndividual:
		return fmt.Sprintf("remote urls filtered out (%s); sent %d image(s) individually", errString(r.Cause), r.ImagesSent)
	}
	switch r.Strategy {
	case StrategyVideos:
		return r.videoLine()
	case StrategyImageGroup:
		return fmt.Sprintf("sent %d image(s) as media group", r.ImagesSent)
	case StrategyImages:
		if r.GroupSize > 0 {
			return fmt.Sprintf("sent %d image(s), %d in media group", r.ImagesSent, r.GroupSize)
		}
		return fmt.Sprintf("sent %d image(s)", r.ImagesSent)
	case StrategyGrid:
		parts := make([]string, 0, 2)
		if r.VideosSent > 0 {
			parts = append(parts, fmt.Sprintf("%d video(s)", r.VideosSent))
		}
		if r.ImagesSent > 0 {
			parts = append(parts, fmt.Sprintf("%d image(s)", r.ImagesSent))
		}
		return "sent " + strings.Join(parts, " and ")
	default:
		return "text sent"
	}
}

func (r Result) videoLine() string {
	if r.Captioned {
		return fmt.Sprintf("sent %d video(s) with caption", r.VideosSent)
	}
	return fmt.Sprintf("sent %d video(s)", r.VideosSent)
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

type resultJSON struct {
	Outcome    Outcome  `json:"outcome"`
	Strategy   Strategy `json:"strategy"`
	Fallback   Fallback `json:"fallback,omitempty"`
	Target     string   `json:"target,omitempty"`
	ImagesSent int      `json:"images_sent"`
	VideosSent int      `json:"videos_sent"`
	TextSent   bool     `json:"text_sent"`
	GroupSize  int      `json:"group_size,omitempty"`
	Cause      string   `json:"cause,omitempty"`
	Error      string   `json:"error,omitempty"`
	Status     string   `json:"status"`
}

// MarshalJSON flattens errors to strings and includes the status line.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Outcome:    r.Outcome,
		Strategy:   r.Strategy,
		Fallback:   r.Fallback,
		Target:     r.Target,
		ImagesSent: r.ImagesSent,
		VideosSent: r.VideosSent,
		TextSent:   r.TextSent,
		GroupSize:  r.GroupSize,
		Status:     r.Status(),
	}
	if r.Cause != nil {
		out.Cause = r.Cause.Error()
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}
