package aws

import (
	"context"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Message is a received queue message.
type Message struct {
	Body          string
	ReceiptHandle string
}

// Queue wraps a single SQS queue.
type Queue struct {
	client   *sqs.Client
	queueURL string
}

func NewQueue(cfg sdkaws.Config, queueURL string) *Queue {
	return &Queue{client: sqs.NewFromConfig(cfg), queueURL: queueURL}
}

// URL returns the queue URL.
func (q *Queue) URL() string { return q.queueURL }

// SendMessage sends a single message to the queue
func (q *Queue) SendMessage(ctx context.Context, body string) error {
	_, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    sdkaws.String(q.queueURL),
		MessageBody: sdkaws.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// ReceiveMessages long-polls for up to ten messages.
func (q *Queue) ReceiveMessages(ctx context.Context, waitSeconds int32) ([]Message, error) {
	out, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            sdkaws.String(q.queueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     waitSeconds,
		VisibilityTimeout:   30,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to receive messages: %w", err)
	}

	msgs := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		msgs = append(msgs, Message{
			Body:          sdkaws.ToString(m.Body),
			ReceiptHandle: sdkaws.ToString(m.ReceiptHandle),
		})
	}
	return msgs, nil
}

// DeleteMessage acknowledges a processed message.
func (q *Queue) DeleteMessage(ctx context.Context, receiptHandle string) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      sdkaws.String(q.queueURL),
		ReceiptHandle: sdkaws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}
