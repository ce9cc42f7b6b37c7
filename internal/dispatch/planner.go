package dispatch

import (
	"fmt"

	"github.com/memohai/telepost/internal/media"
)

// Planner decides which gateway calls a request needs. It decodes data URLs but performs no I/O.
type Planner struct{}

// Plan builds the call sequence. Videos pre-empt images, which pre-empt plain text.
func (Planner) Plan(caption string, videos, images []media.Reference, target string) Plan {
	plan := Plan{Target: target, Caption: caption}
	switch {
	case len(videos) > 0:
		planVideos(&plan, videos)
	case len(images) > 0:
		planImages(&plan, images)
	default:
		plan.Strategy = StrategyText
		plan.Steps = []Step{textStep(caption)}
	}
	return plan
}

// planVideos sends every video on its own with the full caption. The first data URL
// that fails to decode replaces the rest of the request with the caption as text.
func planVideos(plan *Plan, videos []media.Reference) {
	plan.Strategy = StrategyVideos
	for _, ref := range videos {
		item := PlannedItem{Kind: media.MediaTypeVideo, Ref: ref, Caption: plan.Caption}
		if ref.IsBinary() {
			decoded, err := media.DecodeDataURL(ref.Raw())
			if err != nil {
				plan.Steps = append(plan.Steps, textStep(plan.Caption))
				plan.Fallback = FallbackVideoToText
				plan.Cause = err
				return
			}
			item.Decoded = &decoded
		}
		plan.Steps = append(plan.Steps, mediaStep(item))
	}
}

func planImages(plan *Plan, images []media.Reference) {
	classified := media.Classify(images, plan.Caption)

	if classified.AllBinary() && len(classified.Items) >= 2 {
		plan.Strategy = StrategyImageGroup
		group := Step{Kind: StepMediaGroup}
		for _, item := range classified.Items {
			p := plannedFrom(item)
			group.Items = append(group.Items, p)
			group.Fallback = append(group.Fallback, mediaStep(p))
		}
		plan.Steps = []Step{group}
		return
	}

	plan.Strategy = StrategyImages
	for _, item := range classified.Binary {
		plan.Steps = append(plan.Steps, mediaStep(plannedFrom(item)))
	}

	remote := classified.Remote
	switch {
	case len(remote) == 1:
		plan.Steps = append(plan.Steps, mediaStep(plannedFrom(remote[0])))
	case len(remote) > 1:
		survivors := make([]PlannedItem, 0, len(remote))
		for _, item := range remote {
			if !media.IsWebURL(item.Ref.Raw()) {
				continue
			}
			p := plannedFrom(item)
			p.Caption = ""
			survivors = append(survivors, p)
		}
		if len(survivors) > 0 {
			if classified.CaptionOwnerIsRemote() {
				survivors[0].Caption = plan.Caption
			}
			plan.Steps = append(plan.Steps, Step{Kind: StepMediaGroup, Items: survivors})
			return
		}
		plan.Fallback = FallbackRemoteToIndividual
		plan.Cause = fmt.Errorf("%w: none of %d remote references is an http(s) url", ErrNoValidTargets, len(remote))
		for _, item := range remote {
			plan.Steps = append(plan.Steps, mediaStep(plannedFrom(item)))
		}
	}
}

// PlanPhoto builds a single photo send. source is a data:image URL, an http(s) URL,
// or a local file path the caller has already resolved.
func (Planner) PlanPhoto(caption, source, target string) Plan {
	ref := media.NewReference(media.MediaTypeImage, source)
	item := PlannedItem{Kind: media.MediaTypeImage, Ref: ref, Caption: caption}
	switch {
	case ref.IsBinary():
		decoded, err := media.DecodeDataURL(source)
		if err != nil {
			item.DecodeErr = err
		} else {
			item.Decoded = &decoded
		}
	case !media.IsWebURL(source):
		item.Path = source
	}
	return Plan{
		Target:   target,
		Caption:  caption,
		Strategy: StrategyImages,
		Steps:    []Step{mediaStep(item)},
	}
}

// PlanPhotoURL builds a single photo send that hands url to the gateway untouched.
func (Planner) PlanPhotoURL(caption, url, target string) Plan {
	return Plan{
		Target:   target,
		Caption:  caption,
		Strategy: StrategyImages,
		Steps: []Step{mediaStep(PlannedItem{
			Kind:    media.MediaTypeImage,
			Ref:     media.NewReference(media.MediaTypeImage, url),
			URL:     url,
			Caption: caption,
		})},
	}
}

// PlanGrid builds the upload flow: the video first with the full caption, then the
// images as one group with the caption on the first image, or text when neither exists.
func (Planner) PlanGrid(caption, target string, video *media.Artifact, images []media.Artifact) Plan {
	plan := Plan{Target: target, Caption: caption, Strategy: StrategyGrid}
	if video != nil {
		plan.Steps = append(plan.Steps, mediaStep(PlannedItem{
			Kind:    media.MediaTypeVideo,
			Path:    video.Path,
			Caption: caption,
		}))
	}
	switch len(images) {
	case 0:
	case 1:
		plan.Steps = append(plan.Steps, mediaStep(PlannedItem{
			Kind:    media.MediaTypeImage,
			Path:    images[0].Path,
			Caption: caption,
		}))
	default:
		group := Step{Kind: StepMediaGroup}
		for i, art := range images {
			item := PlannedItem{Kind: media.MediaTypeImage, Path: art.Path}
			if i == 0 {
				item.Caption = caption
			}
			group.Items = append(group.Items, item)
		}
		plan.Steps = append(plan.Steps, group)
	}
	if len(plan.Steps) == 0 {
		plan.Strategy = StrategyText
		plan.Steps = []Step{textStep(caption)}
	}
	return plan
}
