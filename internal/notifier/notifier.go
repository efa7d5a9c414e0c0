// Package notifier dispatches welcome emails for newly registered users.
package notifier

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Notifier sends the welcome email to a new user.
type Notifier interface {
	SendWelcomeEmail(ctx context.Context, email string) error
}

// Recorder receives the outcome of each dispatch. metrics.Collector implements it.
type Recorder interface {
	RecordWelcomeEmail(outcome string)
}

// LogNotifier stands in for the mail service: it records the dispatch in the log.
type LogNotifier struct {
	logger *zap.SugaredLogger
}

func NewLogNotifier(logger *zap.SugaredLogger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendWelcomeEmail(ctx context.Context, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.logger.Infow("welcome email sent", "to", email)
	return nil
}

// Async runs a Notifier in the background. Failures are logged and recorded,
// never returned to the caller.
type Async struct {
	next     Notifier
	logger   *zap.SugaredLogger
	recorder Recorder
	timeout  time.Duration
	wg       sync.WaitGroup
}

// NewAsync wraps next. recorder may be nil; a non-positive timeout means 5s.
func NewAsync(next Notifier, logger *zap.SugaredLogger, recorder Recorder, timeout time.Duration) *Async {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Async{next: next, logger: logger, recorder: recorder, timeout: timeout}
}

// Dispatch starts the send and returns immediately. The send outlives ctx's
// cancellation but keeps its values.
func (a *Async) Dispatch(ctx context.Context, email string) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
		defer cancel()

		outcome := "sent"
		defer func() {
			if rec := recover(); rec != nil {
				a.logger.Errorw("welcome email panicked", "to", email, "panic", rec)
				outcome = "failed"
			}
			if a.recorder != nil {
				a.recorder.RecordWelcomeEmail(outcome)
			}
		}()

		if err := a.next.SendWelcomeEmail(sendCtx, email); err != nil {
			outcome = "failed"
			a.logger.Warnw("welcome email failed", "to", email, "err", err)
		}
	}()
}

// Wait blocks until every dispatched send has finished.
func (a *Async) Wait() {
	a.wg.Wait()
}
