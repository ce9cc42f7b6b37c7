package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/memohai/telepost/internal/media"
)

// Executor walks a Plan against a Gateway.
type Executor struct {
	gateway Gateway
	spooler Spooler
	logger  *slog.Logger
}

// NewExecutor creates an executor. A nil spooler sends decoded media as in-memory bytes.
func NewExecutor(log *slog.Logger, gateway Gateway, spooler Spooler) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		gateway: gateway,
		spooler: spooler,
		logger:  log.With(slog.String("service", "dispatch_executor")),
	}
}

// Execute runs the steps in order. The first failure outside a group fallback ends the plan.
func (e *Executor) Execute(ctx context.Context, plan Plan) Result {
	res := Result{
		Strategy:  plan.Strategy,
		Fallback:  plan.Fallback,
		Cause:     plan.Cause,
		Target:    plan.Target,
		Captioned: plan.Caption != "",
	}
	r := &run{
		exec:  e,
		ctx:   ctx,
		plan:  plan,
		scope: uuid.NewString(),
		res:   &res,
	}
	for i, step := range plan.Steps {
		if err := r.step(step); err != nil {
			res.Outcome = OutcomeFailure
			res.Err = err
			e.logger.Warn("dispatch failed",
				slog.String("target", plan.Target),
				slog.String("strategy", string(plan.Strategy)),
				slog.Int("step", i),
				slog.String("kind", step.Kind.String()),
				slog.Any("error", err),
			)
			return res
		}
	}
	if res.Fallback != FallbackNone {
		res.Outcome = OutcomePartialFallback
	} else {
		res.Outcome = OutcomeSuccess
	}
	e.logger.Info("dispatch done",
		slog.String("target", plan.Target),
		slog.String("strategy", string(res.Strategy)),
		slog.String("fallback", string(res.Fallback)),
		slog.Int("images", res.ImagesSent),
		slog.Int("videos", res.VideosSent),
		slog.Bool("text", res.TextSent),
	)
	return res
}

// run is the state of one Execute call.
type run struct {
	exec  *Executor
	ctx   context.Context
	plan  Plan
	scope string
	res   *Result
}

func (r *run) step(step Step) error {
	if err := r.ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	switch step.Kind {
	case StepText:
		if err := r.exec.gateway.SendText(r.ctx, r.plan.Target, step.Text); err != nil {
			return fmt.Errorf("%w: send text: %w", ErrTransport, err)
		}
		r.res.TextSent = true
		return nil
	case StepMedia:
		if len(step.Items) == 0 {
			return nil
		}
		return r.single(step.Items[0])
	case StepMediaGroup:
		err := r.group(step.Items)
		if err == nil || len(step.Fallback) == 0 {
			return err
		}
		r.exec.logger.Info("media group failed, sending individually",
			slog.String("target", r.plan.Target),
			slog.Int("items", len(step.Items)),
			slog.Any("error", err),
		)
		r.res.Fallback = FallbackGroupToIndividual
		r.res.Cause = err
		for _, fb := range step.Fallback {
			if err := r.step(fb); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown step kind %d", step.Kind)
	}
}

func (r *run) single(item PlannedItem) error {
	mi, art, err := r.prepare(item)
	if art != nil {
		defer r.exec.spooler.Release(context.WithoutCancel(r.ctx), *art)
	}
	if err != nil {
		return err
	}
	if err := r.exec.gateway.SendMedia(r.ctx, r.plan.Target, mi); err != nil {
		return fmt.Errorf("%w: send %s: %w", ErrTransport, item.Kind, err)
	}
	r.count(item.Kind, 1)
	return nil
}

func (r *run) group(items []PlannedItem) error {
	batch := make([]MediaItem, 0, len(items))
	arts := make([]media.Artifact, 0, len(items))
	defer func() {
		if len(arts) > 0 {
			r.exec.spooler.Release(context.WithoutCancel(r.ctx), arts...)
		}
	}()
	for _, item := range items {
		mi, art, err := r.prepare(item)
		if art != nil {
			arts = append(arts, *art)
		}
		if err != nil {
			return err
		}
		batch = append(batch, mi)
	}
	if err := r.exec.gateway.SendMediaGroup(r.ctx, r.plan.Target, batch); err != nil {
		return fmt.Errorf("%w: send media group: %w", ErrTransport, err)
	}
	for _, item := range items {
		r.count(item.Kind, 1)
	}
	r.res.GroupSize = len(items)
	return nil
}

// prepare turns a planned item into a gateway payload. Decoded media is spooled
// when a spooler is configured; the returned artifact must be released by the caller.
func (r *run) prepare(item PlannedItem) (MediaItem, *media.Artifact, error) {
	mi := MediaItem{Kind: item.Kind, Caption: item.Caption}
	switch {
	case item.Path != "":
		mi.Path = item.Path
		mi.Name = filepath.Base(item.Path)
	case item.URL != "":
		mi.URL = item.URL
	case item.Ref.IsBinary():
		if item.DecodeErr != nil {
			return mi, nil, item.DecodeErr
		}
		if item.Decoded == nil {
			return mi, nil, fmt.Errorf("%w: %s reference was not decoded", media.ErrInvalidFormat, item.Kind)
		}
		if r.exec.spooler != nil {
			art, err := r.exec.spooler.Spool(r.ctx, r.scope, item.Kind, *item.Decoded)
			if err == nil {
				mi.Path = art.Path
				mi.Name = art.Name
				return mi, &art, nil
			}
			r.exec.logger.Warn("spool failed, sending bytes", slog.Any("error", err))
		}
		mi.Bytes = item.Decoded.Bytes
		mi.Name = string(item.Kind) + item.Decoded.Extension
	default:
		mi.URL = item.Ref.Raw()
	}
	return mi, nil, nil
}

func (r *run) count(kind media.MediaType, n int) {
	if kind == media.MediaTypeVideo {
		r.res.VideosSent += n
		return
	}
	r.res.ImagesSent += n
}
