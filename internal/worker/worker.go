package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/aura-meet/backend/internal/models"
	"github.com/aura-meet/backend/internal/notify"
	"github.com/aura-meet/backend/pkg/queue"
)

// JobQueue is the subset of queue.Queue the processor needs.
type JobQueue interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// DeliveryLog records each delivery attempt.
type DeliveryLog interface {
	Record(ctx context.Context, el *models.EmailLog) error
}

// ConfirmationProcessor sends booking confirmation emails.
type ConfirmationProcessor struct {
	queue   JobQueue
	sender  notify.Sender
	log     DeliveryLog
	backoff time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

// NewConfirmationProcessor creates a confirmation email processor. log may be nil.
func NewConfirmationProcessor(q JobQueue, sender notify.Sender, log DeliveryLog, logger *zap.Logger) *ConfirmationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfirmationProcessor{queue: q, sender: sender, log: log, backoff: queue.RetryBackoff, now: time.Now, logger: logger}
}

// Process executes one confirmation job.
func (p *ConfirmationProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeConfirmation {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ConfirmationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	msg, err := notify.Confirmation(payload)
	if err != nil {
		return err
	}
	sendErr := p.sender.Send(ctx, msg)
	p.record(ctx, job, payload, msg.Subject, sendErr)
	if sendErr != nil {
		return fmt.Errorf("send confirmation: %w", sendErr)
	}
	p.logger.Info("confirmation sent", zap.String("booking_id", payload.BookingID.String()))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *ConfirmationProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("confirmation worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *ConfirmationProcessor) record(ctx context.Context, job *queue.Job, payload queue.ConfirmationPayload, subject string, sendErr error) {
	if p.log == nil {
		return
	}
	el := &models.EmailLog{
		BookingID:      payload.BookingID,
		RecipientEmail: payload.GuestEmail,
		Subject:        subject,
		Status:         models.EmailLogStatusSent,
		Attempt:        job.Attempt + 1,
	}
	if sendErr != nil {
		el.Status = models.EmailLogStatusFailed
		el.ErrorMessage = sendErr.Error()
	} else {
		sent := p.now().UTC()
		el.SentAt = &sent
	}
	if err := p.log.Record(ctx, el); err != nil {
		p.logger.Warn("record email log failed", zap.Error(err), zap.String("booking_id", payload.BookingID.String()))
	}
}

func (p *ConfirmationProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
