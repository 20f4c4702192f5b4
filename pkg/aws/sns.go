package aws

import (
	"context"
	"encoding/json"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// SNSPublisher publishes domain events to a single topic.
type SNSPublisher struct {
	client   *sns.Client
	topicARN string
}

func NewSNSPublisher(cfg sdkaws.Config, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: sns.NewFromConfig(cfg), topicARN: topicARN}
}

// Publish marshals payload, stamps it with event_type and publishes it with a
// matching message attribute so subscribers can filter.
func (p *SNSPublisher) Publish(ctx context.Context, eventType string, payload map[string]interface{}) error {
	if p.topicARN == "" {
		return fmt.Errorf("empty topicArn")
	}

	body := make(map[string]interface{}, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["event_type"] = eventType

	msg, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: sdkaws.String(p.topicARN),
		Message:  sdkaws.String(string(msg)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    sdkaws.String("String"),
				StringValue: sdkaws.String(eventType),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", p.topicARN, err)
	}
	return nil
}
