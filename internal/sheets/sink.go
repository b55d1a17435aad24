package sheets

//go:generate go tool mockgen -source=sink.go -destination=../processor/mock_sink_test.go -package=processor

import (
	"context"
	"fmt"

	"telecheck-go/internal/config"
	"telecheck-go/internal/logger"
)

// Sink appends one evaluation summary row to a spreadsheet.
type Sink interface {
	AppendRow(ctx context.Context, values []string) error
}

// New builds the sink selected by cfg. It returns a nil Sink for "none".
func New(ctx context.Context, cfg config.Sink, log *logger.Logger) (Sink, error) {
	var (
		sink Sink
		err  error
	)
	switch cfg.Kind {
	case config.SinkNone:
		return nil, nil
	case config.SinkGoogle:
		sink, err = NewGoogleSink(ctx, GoogleOptions{
			CredentialsPath: cfg.CredentialsPath,
			SpreadsheetID:   cfg.SpreadsheetID,
			SheetName:       cfg.SheetName,
		})
	case config.SinkXLSX:
		sink, err = NewExcelSink(cfg.XLSXPath, cfg.SheetName)
	default:
		return nil, fmt.Errorf("unknown sink %q", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}
	if cfg.MaxAttempts > 1 {
		sink = NewRetrying(sink, RetryOptions{MaxAttempts: cfg.MaxAttempts, Logger: log})
	}
	return sink, nil
}
