package sheets

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"telecheck-go/internal/logger"
)

type RetryOptions struct {
	// MaxAttempts counts the first try. Values below 1 mean 1.
	MaxAttempts     int
	InitialInterval time.Duration
	MaxElapsedTime  time.Duration
	Logger          *logger.Logger
}

// Retrying retries failed appends with exponential backoff.
type Retrying struct {
	next Sink
	opts RetryOptions
	log  *logger.Logger
}

func NewRetrying(next Sink, opts RetryOptions) *Retrying {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 500 * time.Millisecond
	}
	if opts.MaxElapsedTime <= 0 {
		opts.MaxElapsedTime = 30 * time.Second
	}
	return &Retrying{next: next, opts: opts, log: logger.OrNop(opts.Logger).Component("sheets")}
}

func (r *Retrying) AppendRow(ctx context.Context, values []string) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.opts.InitialInterval
	bo.MaxElapsedTime = r.opts.MaxElapsedTime

	attempt := 0
	op := func() error {
		attempt++
		return r.next.AppendRow(ctx, values)
	}
	notify := func(err error, wait time.Duration) {
		r.log.WithError(err).WithField("attempt", attempt).WithField("retry_in_ms", wait.Milliseconds()).Warn("sheet append failed, retrying")
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(r.opts.MaxAttempts-1)), ctx)
	return backoff.RetryNotify(op, policy, notify)
}
