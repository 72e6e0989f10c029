package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/wostup/pitchit-api/shared/mailer"
	"github.com/wostup/pitchit-api/shared/metrics"
)

const (
	TypeSendEmail = "email:send"
	QueueMail     = "mail"

	emailMaxRetry = 5
)

// emailPayload is the JSON body of a TypeSendEmail task.
type emailPayload struct {
	Kind     string   `json:"kind"`
	To       []string `json:"to"`
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	HTMLBody string   `json:"html_body"`
}

// AsynqDispatcher enqueues emails as asynq tasks for the Worker to deliver.
type AsynqDispatcher struct {
	client *asynq.Client
	logger *zerolog.Logger
	bg     detached
}

// NewAsynqDispatcher creates an AsynqDispatcher.
func NewAsynqDispatcher(redisOpt asynq.RedisConnOpt, logger *zerolog.Logger) *AsynqDispatcher {
	return &AsynqDispatcher{
		client: asynq.NewClient(redisOpt),
		logger: logger,
		bg:     detached{timeout: 5 * time.Second},
	}
}

// NewEmailTask builds the asynq task carrying email. Payloads hold one-time
// codes, so a completed task is deleted at once and the worker drops a task on
// its last failed attempt instead of letting asynq archive it.
func NewEmailTask(kind string, email mailer.Email) (*asynq.Task, error) {
	payload, err := json.Marshal(emailPayload{
		Kind:     kind,
		To:       email.To,
		Subject:  email.Subject,
		Body:     email.Body,
		HTMLBody: email.HTMLBody,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TypeSendEmail, payload,
		asynq.Queue(QueueMail),
		asynq.MaxRetry(emailMaxRetry),
		asynq.Retention(0),
		asynq.Timeout(time.Minute),
		asynq.TaskID(uuid.NewString()),
	), nil
}

func (d *AsynqDispatcher) DispatchEmail(kind string, email mailer.Email) {
	d.bg.run(func(ctx context.Context) {
		task, err := NewEmailTask(kind, email)
		if err != nil {
			d.logger.Error().Err(err).Str("kind", kind).Msg("failed to build email task")
			return
		}

		if _, err := d.client.EnqueueContext(ctx, task); err != nil {
			metrics.EmailsDispatched.WithLabelValues(kind, "enqueue_failed").Inc()
			d.logger.Error().Err(err).Str("kind", kind).Msg("failed to enqueue email")
			return
		}
		metrics.EmailsDispatched.WithLabelValues(kind, "enqueued").Inc()
	})
}

func (d *AsynqDispatcher) Close() error {
	d.bg.wait()
	return d.client.Close()
}

// Worker consumes email tasks and delivers them over SMTP.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	sender mailer.Sender
	logger *zerolog.Logger

	// attempts reports how often the current task was retried and its limit.
	attempts func(ctx context.Context) (retried, limit int, ok bool)
}

func asynqAttempts(ctx context.Context) (int, int, bool) {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return 0, 0, false
	}
	limit, ok := asynq.GetMaxRetry(ctx)
	return retried, limit, ok
}

// NewWorker creates an asynq server with the email handler registered. Call Start to run it.
func NewWorker(redisOpt asynq.RedisConnOpt, sender mailer.Sender, logger *zerolog.Logger, concurrency int) *Worker {
	if concurrency <= 0 {
		concurrency = 2
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{QueueMail: 1},
		LogLevel:    asynq.WarnLevel,
	})

	w := &Worker{
		srv:    srv,
		mux:    asynq.NewServeMux(),
		sender:   sender,
		logger:   logger,
		attempts: asynqAttempts,
	}
	w.mux.HandleFunc(TypeSendEmail, w.HandleSendEmail)

	return w
}

// HandleSendEmail delivers a single email task. Tasks that can never succeed
// are dropped rather than archived: a malformed payload at once, a failing
// delivery on its last attempt.
func (w *Worker) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	var p emailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		metrics.EmailsDispatched.WithLabelValues("unknown", "dropped").Inc()
		w.logger.Error().Err(err).Msg("email task payload invalid, dropping")
		return nil
	}

	if err := w.sender.Send(mailer.Email{
		To:       p.To,
		Subject:  p.Subject,
		Body:     p.Body,
		HTMLBody: p.HTMLBody,
	}); err != nil {
		if w.lastAttempt(ctx) {
			metrics.EmailsDispatched.WithLabelValues(p.Kind, "dropped").Inc()
			w.logger.Error().Err(err).Str("kind", p.Kind).Msg("email delivery failed on last attempt, dropping")
			return nil
		}

		metrics.EmailsDispatched.WithLabelValues(p.Kind, "failed").Inc()
		w.logger.Warn().Err(err).Str("kind", p.Kind).Msg("email delivery failed, will retry")
		return err
	}

	metrics.EmailsDispatched.WithLabelValues(p.Kind, "sent").Inc()
	return nil
}

func (w *Worker) lastAttempt(ctx context.Context) bool {
	if w.attempts == nil {
		return false
	}
	retried, limit, ok := w.attempts(ctx)
	return ok && retried >= limit
}

// Start runs the worker in the background.
func (w *Worker) Start() error {
	return w.srv.Start(w.mux)
}

// Shutdown stops the worker, waiting for active tasks.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
