package dispatch

import (
	"github.com/memohai/telepost/internal/media"
)

// Strategy names the branch the planner chose.
type Strategy string

const (
	StrategyText       Strategy = "text"
	StrategyVideos     Strategy = "videos"
	StrategyImageGroup Strategy = "image_group"
	StrategyImages     Strategy = "images"
	StrategyGrid       Strategy = "grid"
)

// Fallback names the degraded path a request took, if any.
type Fallback string

const (
	FallbackNone               Fallback = ""
	FallbackVideoToText        Fallback = "video_to_text"
	FallbackGroupToIndividual  Fallback = "group_to_individual"
	FallbackRemoteToIndividual Fallback = "remote_to_individual"
)

// StepKind is the gateway call a step issues.
type StepKind int

const (
	StepText StepKind = iota
	StepMedia
	StepMediaGroup
)

func (k StepKind) String() string {
	switch k {
	case StepMedia:
		return "media"
	case StepMediaGroup:
		return "media_group"
	default:
		return "text"
	}
}

// PlannedItem is one media payload inside a step. The first source that applies wins:
// Path for local files, URL when set explicitly, Decoded for data URLs, otherwise Ref.Raw() as a URL.
type PlannedItem struct {
	Kind      media.MediaType
	Ref       media.Reference
	Decoded   *media.Decoded
	DecodeErr error
	Path      string
	URL       string
	Caption   string
}

// Step is one gateway call.
type Step struct {
	Kind  StepKind
	Text  string
	Items []PlannedItem
	// Fallback holds the individual steps a MediaGroup degrades to.
	// A group without fallback steps fails the request when its call fails.
	Fallback []Step
}

// Plan is the ordered list of calls for one request.
type Plan struct {
	Target   string
	Caption  string
	Strategy Strategy
	Steps    []Step
	// Fallback and Cause record degradations already decided while planning.
	Fallback Fallback
	Cause    error
}

func textStep(text string) Step {
	return Step{Kind: StepText, Text: text}
}

func mediaStep(item PlannedItem) Step {
	return Step{Kind: StepMedia, Items: []PlannedItem{item}}
}

func plannedFrom(item media.Item) PlannedItem {
	return PlannedItem{
		Kind:      item.Ref.MediaType(),
		Ref:       item.Ref,
		Decoded:   item.Decoded,
		DecodeErr: item.DecodeErr,
		Caption:   item.Caption,
	}
}
