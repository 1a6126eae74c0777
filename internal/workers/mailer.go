package workers

import (
	"context"
	"fmt"

	"github.com/plateful/plateful/internal/logger"
	"github.com/plateful/plateful/internal/queue"
	"go.uber.org/zap"
)

// Mailer delivers account emails.
type Mailer interface {
	// SendPasswordReset sends a password reset email to the address.
	SendPasswordReset(ctx context.Context, email string) error
}

// LogMailer records outgoing mail without sending anything. Used until a
// real delivery provider is configured.
type LogMailer struct {
	logger *zap.Logger
}

// NewLogMailer creates a mailer that only logs deliveries.
func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{logger: log}
}

// SendPasswordReset logs the reset request instead of delivering it.
func (m *LogMailer) SendPasswordReset(_ context.Context, email string) error {
	m.logger.Info("password reset email dispatched",
		zap.String("email", logger.SanitizeString(email, logger.MaxGeneralStringLength)),
	)
	return nil
}

// MailWorker consumes mail jobs from the queue and delivers them.
type MailWorker struct {
	mailer   Mailer
	jobQueue queue.JobQueue
	logger   *zap.Logger
}

// NewMailWorker creates a new mail worker.
func NewMailWorker(mailer Mailer, jobQueue queue.JobQueue, log *zap.Logger) *MailWorker {
	return &MailWorker{
		mailer:   mailer,
		jobQueue: jobQueue,
		logger:   log,
	}
}

// Run consumes jobs until the context is cancelled. Failed jobs are
// re-enqueued up to their retry limit, then routed to the DLQ.
func (w *MailWorker) Run(ctx context.Context, prefetchCount int) error {
	msgChan, errChan, err := w.jobQueue.Consume(ctx, prefetchCount)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errChan:
			if !ok {
				return nil
			}
			w.logger.Error("queue consume error", zap.Error(err))
		case msg, ok := <-msgChan:
			if !ok {
				return nil
			}
			w.handle(ctx, msg)
		}
	}
}

func (w *MailWorker) handle(ctx context.Context, msg *queue.Message) {
	job := msg.Job

	if err := w.ProcessJob(ctx, job); err != nil {
		w.logger.Error("failed to process mail job",
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.Int("retry_count", job.RetryCount),
			zap.Error(err),
		)
		w.retryOrDiscard(ctx, msg)
		return
	}

	if err := msg.Ack(); err != nil {
		w.logger.Error("failed to ack message",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}
}

// ProcessJob delivers a single job.
func (w *MailWorker) ProcessJob(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypePasswordReset:
		if job.Email == "" {
			return fmt.Errorf("email is required for password reset job")
		}
		return w.mailer.SendPasswordReset(ctx, job.Email)
	default:
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// retryOrDiscard re-enqueues a retryable job as a fresh message, otherwise
// nacks it to the DLQ. The original delivery is always acked once the
// retry copy is published.
func (w *MailWorker) retryOrDiscard(ctx context.Context, msg *queue.Message) {
	job := msg.Job

	if !job.CanRetry() {
		w.logger.Warn("mail job exhausted retries, routing to DLQ",
			zap.String("job_id", job.ID.String()),
			zap.Int("retry_count", job.RetryCount),
		)
		if err := msg.Nack(false); err != nil {
			w.logger.Error("failed to nack message", zap.Error(err))
		}
		return
	}

	job.IncrementRetry()
	if err := w.jobQueue.Enqueue(ctx, job); err != nil {
		w.logger.Error("failed to re-enqueue mail job",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
		if nackErr := msg.Nack(true); nackErr != nil {
			w.logger.Error("failed to nack message", zap.Error(nackErr))
		}
		return
	}

	if err := msg.Ack(); err != nil {
		w.logger.Error("failed to ack message after retry enqueue", zap.Error(err))
	}
}
