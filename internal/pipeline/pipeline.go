package pipeline

//go:generate go tool mockgen -source=pipeline.go -destination=mock_pipeline_test.go -package=pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"telecheck-go/internal/logger"
	"telecheck-go/internal/types"
)

type Transcriber interface {
	Transcribe(ctx context.Context, audio types.Audio) (types.Transcript, error)
}

type Evaluator interface {
	Evaluate(ctx context.Context, transcript types.Transcript) (*types.Document, error)
}

var errEmptyTranscript = errors.New("empty transcript")

// Pipeline is the single entrypoint: audio in, evaluation document out.
type Pipeline struct {
	transcriber Transcriber
	evaluator   Evaluator
	log         *logger.Logger
}

func New(t Transcriber, e Evaluator, log *logger.Logger) *Pipeline {
	return &Pipeline{transcriber: t, evaluator: e, log: logger.OrNop(log).Component("pipeline")}
}

// Run transcribes audio once and evaluates the transcript once. The
// evaluator's result is returned as is.
func (p *Pipeline) Run(ctx context.Context, audio types.Audio) (*types.Document, error) {
	log := p.log.WithField("filename", audio.Filename)
	start := time.Now()

	transcript, err := p.transcriber.Transcribe(ctx, audio)
	if err != nil {
		log.WithField("error", err.Error()).Warn("transcription failed")
		return nil, stageErr(StageTranscribe, ErrTranscription, err)
	}
	if strings.TrimSpace(transcript.String()) == "" {
		log.Warn("transcription returned no text")
		return nil, stageErr(StageTranscribe, ErrTranscription, errEmptyTranscript)
	}
	log.WithField("transcript_len", len([]rune(transcript))).Info("transcribed")
	log.Debugf("transcript: %s", transcript)

	doc, err := p.evaluator.Evaluate(ctx, transcript)
	if err != nil {
		log.WithField("error", err.Error()).Warn("evaluation failed")
		return nil, err
	}
	log.WithField("duration_ms", time.Since(start).Milliseconds()).Info("pipeline finished")
	return doc, nil
}
