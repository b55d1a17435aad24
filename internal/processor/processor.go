package processor

//go:generate go tool mockgen -source=processor.go -destination=mock_processor_test.go -package=processor

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"telecheck-go/internal/logger"
	"telecheck-go/internal/pipeline"
	"telecheck-go/internal/report"
	"telecheck-go/internal/sheets"
	"telecheck-go/internal/types"
)

// Runner produces the evaluation document for one recording.
type Runner interface {
	Run(ctx context.Context, audio types.Audio) (*types.Document, error)
}

type SinkStatus string

const (
	SinkSaved    SinkStatus = "saved"
	SinkFailed   SinkStatus = "failed"
	SinkDisabled SinkStatus = "disabled"
	SinkSkipped  SinkStatus = "skipped"
)

type SinkReport struct {
	Status SinkStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// Result is returned by /evaluate and the evaluate command.
type Result struct {
	EvaluationID string          `json:"evaluation_id"`
	Filename     string          `json:"filename,omitempty"`
	Result       *types.Document `json:"result,omitempty"`
	Summary      *report.Summary `json:"summary,omitempty"`
	Warnings     []string        `json:"warnings,omitempty"`
	Sink         SinkReport      `json:"sink"`
	DurationMs   int64           `json:"duration_ms"`
	Error        string          `json:"error,omitempty"`
}

type Options struct {
	// Sink is optional. Nil disables the spreadsheet write.
	Sink        sheets.Sink
	SinkTimeout time.Duration
	Logger      *logger.Logger
}

// Processor runs the pipeline, summarizes the document and records it in
// the sink. A sink failure never fails the evaluation.
type Processor struct {
	runner      Runner
	sink        sheets.Sink
	sinkTimeout time.Duration
	log         *logger.Logger
}

func New(runner Runner, opts Options) *Processor {
	if opts.SinkTimeout <= 0 {
		opts.SinkTimeout = 30 * time.Second
	}
	return &Processor{
		runner:      runner,
		sink:        opts.Sink,
		sinkTimeout: opts.SinkTimeout,
		log:         logger.OrNop(opts.Logger).Component("processor"),
	}
}

func (p *Processor) SinkEnabled() bool { return p.sink != nil }

// Process evaluates one recording. The returned error is the pipeline error;
// Result.Error carries the message safe to show an end user.
func (p *Processor) Process(ctx context.Context, audio types.Audio) (Result, error) {
	start := time.Now()
	res := Result{EvaluationID: uuid.New().String(), Filename: audio.Filename}
	log := p.log.With("evaluation_id", res.EvaluationID).With("filename", audio.Filename)

	doc, err := p.runner.Run(ctx, audio)
	if err != nil {
		log.WithError(err).Error("evaluation failed")
		res.Error = UserMessage(err)
		res.Sink = SinkReport{Status: SinkSkipped}
		res.DurationMs = time.Since(start).Milliseconds()
		return res, err
	}
	res.Result = doc

	summary, warnings := report.Summarize(doc)
	res.Summary = &summary
	res.Warnings = warnings
	if len(warnings) > 0 {
		log.WithField("warnings", warnings).Warn("evaluation result does not match the expected shape")
	}

	res.Sink = p.record(ctx, log, report.Row(summary, doc))
	res.DurationMs = time.Since(start).Milliseconds()
	log.WithField("verdict", summary.Verdict).
		WithField("sink", res.Sink.Status).
		WithField("duration_ms", res.DurationMs).
		Info("evaluation finished")
	return res, nil
}

func (p *Processor) record(ctx context.Context, log *logger.Logger, row []string) SinkReport {
	if p.sink == nil {
		return SinkReport{Status: SinkDisabled}
	}
	ctx, cancel := context.WithTimeout(ctx, p.sinkTimeout)
	defer cancel()
	if err := p.sink.AppendRow(ctx, row); err != nil {
		log.WithError(err).Warn("spreadsheet append failed")
		return SinkReport{Status: SinkFailed, Error: "結果のスプレッドシート保存に失敗しました"}
	}
	return SinkReport{Status: SinkSaved}
}

// UserMessage maps a pipeline error to a short message without internal detail.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrTranscription):
		return "音声の文字起こしに失敗しました"
	case errors.Is(err, pipeline.ErrMalformedResult):
		return "評価結果を解析できませんでした"
	case errors.Is(err, pipeline.ErrCompletion):
		return "評価の生成中にエラーが発生しました"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "処理がタイムアウトしました"
	}
	return "処理中にエラーが発生しました"
}
