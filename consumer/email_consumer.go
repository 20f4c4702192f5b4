package consumer

import (
	"context"
	"encoding/json"
	"time"

	aws_pkg "github.com/yashrajoria/lezzetli-admin/pkg/aws"
	"github.com/yashrajoria/lezzetli-admin/sender"
	"go.uber.org/zap"
)

// Queue is the SQS surface the consumer needs.
type Queue interface {
	ReceiveMessages(ctx context.Context, waitSeconds int32) ([]aws_pkg.Message, error)
	DeleteMessage(ctx context.Context, receiptHandle string) error
}

// EmailConsumer drains queued e-mail jobs and sends them.
type EmailConsumer struct {
	queue      Queue
	sender     sender.EmailSender
	logger     *zap.Logger
	errorPause time.Duration
}

func NewEmailConsumer(queue Queue, s sender.EmailSender, logger *zap.Logger) *EmailConsumer {
	return &EmailConsumer{queue: queue, sender: s, logger: logger, errorPause: 5 * time.Second}
}

// Start polls until ctx is cancelled.
func (c *EmailConsumer) Start(ctx context.Context) {
	c.logger.Info("email consumer started")
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("email consumer shutting down")
			return
		default:
			c.poll(ctx)
		}
	}
}

func (c *EmailConsumer) poll(ctx context.Context) {
	msgs, err := c.queue.ReceiveMessages(ctx, 5)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		c.logger.Error("SQS receive error", zap.Error(err))
		select {
		case <-ctx.Done():
		case <-time.After(c.errorPause):
		}
		return
	}
	for _, msg := range msgs {
		c.processMessage(ctx, msg)
	}
}

// snsEnvelope unwraps jobs that arrive through an SNS subscription.
type snsEnvelope struct {
	Message string `json:"Message"`
}

func (c *EmailConsumer) processMessage(ctx context.Context, msg aws_pkg.Message) {
	if msg.ReceiptHandle == "" {
		c.logger.Error("received empty SQS receipt handle")
		return
	}

	body := []byte(msg.Body)
	var envelope snsEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		body = []byte(envelope.Message)
	}

	var job sender.EmailJob
	if err := json.Unmarshal(body, &job); err != nil {
		c.logger.Error("failed to unmarshal email job", zap.Error(err))
		c.deleteMessage(ctx, msg.ReceiptHandle)
		return
	}
	if err := job.Validate(); err != nil {
		c.logger.Error("dropping invalid email job", zap.Object("job", job), zap.Error(err))
		c.deleteMessage(ctx, msg.ReceiptHandle)
		return
	}

	// Leave failed sends on the queue; SQS redelivers after the visibility
	// timeout.
	res, err := c.sender.SendEmail(ctx, job.To, job.Subject, job.Body)
	if err != nil {
		c.logger.Error("failed to send email",
			zap.Object("job", job),
			zap.Error(err))
		return
	}

	c.logger.Info("email sent",
		zap.String("job_id", job.ID),
		zap.String("message_id", res.MessageID))
	c.deleteMessage(ctx, msg.ReceiptHandle)
}

func (c *EmailConsumer) deleteMessage(ctx context.Context, receiptHandle string) {
	if err := c.queue.DeleteMessage(ctx, receiptHandle); err != nil {
		c.logger.Error("failed to delete SQS message", zap.Error(err))
	}
}
