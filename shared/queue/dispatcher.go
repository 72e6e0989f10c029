package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wostup/pitchit-api/shared/mailer"
	"github.com/wostup/pitchit-api/shared/metrics"
)

// EmailDispatcher hands an email off for delivery without blocking the caller.
// Delivery failures are logged, never returned.
type EmailDispatcher interface {
	DispatchEmail(kind string, email mailer.Email)
	// Close waits for in-flight hand-offs to finish.
	Close() error
}

// detached runs work on background goroutines, each bounded by timeout.
type detached struct {
	wg      sync.WaitGroup
	timeout time.Duration
}

func (d *detached) run(fn func(ctx context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		fn(ctx)
	}()
}

func (d *detached) wait() {
	d.wg.Wait()
}

// DirectDispatcher sends email over SMTP from a background goroutine.
// Used when no Redis is configured for the task queue.
type DirectDispatcher struct {
	sender mailer.Sender
	logger *zerolog.Logger
	bg     detached
}

// NewDirectDispatcher creates a DirectDispatcher.
func NewDirectDispatcher(sender mailer.Sender, logger *zerolog.Logger, timeout time.Duration) *DirectDispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DirectDispatcher{
		sender: sender,
		logger: logger,
		bg:     detached{timeout: timeout},
	}
}

func (d *DirectDispatcher) DispatchEmail(kind string, email mailer.Email) {
	d.bg.run(func(ctx context.Context) {
		done := make(chan error, 1)
		go func() { done <- d.sender.Send(email) }()

		select {
		case err := <-done:
			if err != nil {
				metrics.EmailsDispatched.WithLabelValues(kind, "failed").Inc()
				d.logger.Error().Err(err).Str("kind", kind).Strs("to", email.To).Msg("failed to send email")
				return
			}
			metrics.EmailsDispatched.WithLabelValues(kind, "sent").Inc()
		case <-ctx.Done():
			metrics.EmailsDispatched.WithLabelValues(kind, "timeout").Inc()
			d.logger.Error().Err(ctx.Err()).Str("kind", kind).Msg("email send timed out")
		}
	})
}

func (d *DirectDispatcher) Close() error {
	d.bg.wait()
	return nil
}
