// Package notification forwards committed order events to subscribers outside the process.
package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// OrderEventTypes are the events forwarded to customers and staff
var OrderEventTypes = []string{
	order.EventTypeCreated,
	order.EventTypeStatusChanged,
	order.EventTypePaymentUpdated,
}

// SNSPublishAPI is the part of the SNS client the notifier needs
type SNSPublishAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Envelope is the message body published for every event
type Envelope struct {
	EventID       string             `json:"event_id"`
	EventType     string             `json:"event_type"`
	OccurredAt    time.Time          `json:"occurred_at"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	Payload       shared.DomainEvent `json:"payload"`
}

// NewEnvelope wraps event for publishing
func NewEnvelope(event shared.DomainEvent) Envelope {
	return Envelope{
		EventID:       event.EventID().String(),
		EventType:     event.EventType(),
		OccurredAt:    event.OccurredAt(),
		AggregateID:   event.AggregateID().String(),
		AggregateType: event.AggregateType(),
		Payload:       event,
	}
}

// SNSNotifier publishes order events to an SNS topic.
// Delivery failures are logged and swallowed; the order is already committed.
type SNSNotifier struct {
	client   SNSPublishAPI
	topicARN string
	logger   *zap.Logger
}

// NewSNSNotifier creates a notifier around an SNS client
func NewSNSNotifier(client SNSPublishAPI, topicARN string, logger *zap.Logger) (*SNSNotifier, error) {
	if client == nil {
		return nil, errors.New("sns client is required")
	}
	if topicARN == "" {
		return nil, errors.New("sns topic ARN is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SNSNotifier{client: client, topicARN: topicARN, logger: logger}, nil
}

// NewSNSClient builds an SNS client from configuration using the default credential chain
func NewSNSClient(ctx context.Context, cfg config.NotificationConfig) (*sns.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// EventTypes returns the order event types
func (n *SNSNotifier) EventTypes() []string {
	return OrderEventTypes
}

// Handle publishes the event. It only returns an error when the event cannot be encoded.
func (n *SNSNotifier) Handle(ctx context.Context, event shared.DomainEvent) error {
	body, err := json.Marshal(NewEnvelope(event))
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.EventType(), err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	out, err := n.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {
				DataType:    aws.String("String"),
				StringValue: aws.String(event.EventType()),
			},
		},
	})
	if err != nil {
		n.logger.Warn("Failed to publish order notification",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.String("order_id", event.AggregateID().String()),
			zap.Error(err),
		)
		return nil
	}

	n.logger.Debug("Order notification published",
		zap.String("event_type", event.EventType()),
		zap.String("order_id", event.AggregateID().String()),
		zap.String("message_id", aws.ToString(out.MessageId)),
	)
	return nil
}

var _ shared.EventHandler = (*SNSNotifier)(nil)
