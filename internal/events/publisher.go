package events

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/haider-deku/3d-marketplace/internal/domain"
)

// Publisher delivers one outbox event to the outside world.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
	Close()
}

// LogPublisher writes events to the application log. It is used when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event *domain.OutboxEvent) error {
	zap.L().Info("outbox event",
		zap.String("event_id", event.EventID),
		zap.String("topic", event.Topic),
		zap.String("key", event.Key),
		zap.String("payload", event.Payload),
	)
	return nil
}

func (LogPublisher) Close() {}

// KafkaPublisher produces events to Kafka, one topic per event type.
type KafkaPublisher struct {
	client      *kgo.Client
	topicPrefix string
}

func NewKafkaPublisher(brokers []string, topicPrefix string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
		kgo.RequiredAcks(kgo.AllISRAcks()),
	)
	if err != nil {
		return nil, errors.Wrap(err, "kafka: create client")
	}
	return &KafkaPublisher{client: client, topicPrefix: topicPrefix}, nil
}

// TopicName maps an event topic like "order.created" to "<prefix>.order.created".
func (p *KafkaPublisher) TopicName(topic string) string {
	prefix := strings.Trim(p.topicPrefix, ".")
	if prefix == "" {
		return topic
	}
	return prefix + "." + topic
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	rec := &kgo.Record{
		Topic: p.TopicName(event.Topic),
		Key:   []byte(event.Key),
		Value: []byte(event.Payload),
		Headers: []kgo.RecordHeader{
			{Key: "event-id", Value: []byte(event.EventID)},
			{Key: "event-type", Value: []byte(event.Topic)},
		},
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return errors.Wrapf(err, "kafka: produce %s", rec.Topic)
	}
	return nil
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}
