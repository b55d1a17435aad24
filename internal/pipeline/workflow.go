package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"telecheck-go/internal/aggregator"
	"telecheck-go/internal/logger"
	"telecheck-go/internal/prompts"
	"telecheck-go/internal/stages"
	"telecheck-go/internal/types"
)

// MaxConcurrency is the number of category stages.
const MaxConcurrency = 5

type WorkflowOptions struct {
	// Concurrency bounds how many category stages run at once. Values below 2
	// run them one after another in category order.
	Concurrency int
	Logger      *logger.Logger
}

// Workflow turns a raw transcript into the final evaluation document.
// It holds no per-call state.
type Workflow struct {
	stages      *stages.Stages
	concurrency int
	log         *logger.Logger
}

func NewWorkflow(s *stages.Stages, opts WorkflowOptions) *Workflow {
	n := opts.Concurrency
	if n < 1 {
		n = 1
	}
	if n > MaxConcurrency {
		n = MaxConcurrency
	}
	return &Workflow{
		stages:      s,
		concurrency: n,
		log:         logger.OrNop(opts.Logger).Component("workflow"),
	}
}

// Evaluate runs replace, speaker, the five category checks and to_json.
// The first failing stage aborts the run and no document is returned.
func (w *Workflow) Evaluate(ctx context.Context, raw types.Transcript) (*types.Document, error) {
	normalized, err := w.stages.Replace(ctx, raw)
	if err != nil {
		return nil, stageErr(prompts.StageReplace.String(), ErrCompletion, err)
	}
	w.log.WithField("stage", prompts.StageReplace.String()).WithField("chars", len([]rune(normalized))).Debug("stage done")

	labeled, err := w.stages.Speaker(ctx, normalized)
	if err != nil {
		return nil, stageErr(prompts.StageSpeaker.String(), ErrCompletion, err)
	}
	w.log.WithField("stage", prompts.StageSpeaker.String()).WithField("chars", len([]rune(labeled))).Debug("stage done")

	bundle, err := w.evaluateCategories(ctx, labeled)
	if err != nil {
		return nil, err
	}

	combined, err := combine(bundle)
	if err != nil {
		return nil, err
	}

	out, err := w.stages.ToJSON(ctx, combined)
	if err != nil {
		return nil, stageErr(prompts.StageToJSON.String(), ErrCompletion, err)
	}
	doc, err := types.ParseDocument(out.String())
	if err != nil {
		w.log.WithError(err).WithField("stage", prompts.StageToJSON.String()).Debugf("unparseable output: %s", out)
		return nil, stageErr(prompts.StageToJSON.String(), ErrMalformedResult, err)
	}
	w.log.WithField("keys", doc.Len()).Info("evaluation complete")
	return doc, nil
}

type categoryRun struct {
	category types.Category
	stage    prompts.Stage
	result   types.StageResult
}

func (w *Workflow) evaluateCategories(ctx context.Context, labeled types.Transcript) (types.Bundle, error) {
	cats := types.Categories()
	runs := make([]categoryRun, len(cats))
	for i, c := range cats {
		s, _ := stages.CategoryStage(c)
		runs[i] = categoryRun{category: c, stage: s}
	}

	run := func(r *categoryRun) error {
		start := time.Now()
		res, err := w.stages.Run(ctx, r.stage, labeled.String())
		if err != nil {
			return stageErr(r.stage.String(), ErrCompletion, err)
		}
		r.result = res
		w.log.WithField("stage", r.stage.String()).
			WithField("duration_ms", time.Since(start).Milliseconds()).
			Debug("category evaluated")
		return nil
	}

	if w.concurrency < 2 {
		for i := range runs {
			if err := run(&runs[i]); err != nil {
				return types.Bundle{}, err
			}
		}
	} else {
		// Plain Group: one failure must not cancel the stages still running.
		var g errgroup.Group
		g.SetLimit(w.concurrency)
		for i := range runs {
			r := &runs[i]
			g.Go(func() error { return run(r) })
		}
		if err := g.Wait(); err != nil {
			return types.Bundle{}, err
		}
	}

	var b types.Bundle
	for _, r := range runs {
		if err := b.Set(r.category, r.result); err != nil {
			return types.Bundle{}, stageErr(r.stage.String(), ErrMalformedResult, err)
		}
	}
	return b, nil
}

// combine renders the bundle for the aggregation stage. An incomplete bundle
// is reported against to_json.
func combine(b types.Bundle) (string, error) {
	combined, err := aggregator.Combine(b)
	if err != nil {
		return "", stageErr(prompts.StageToJSON.String(), ErrMalformedResult, err)
	}
	return combined, nil
}
