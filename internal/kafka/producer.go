package kafka

import (
	"context"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"
)

// Producer enqueues accepted notifications onto the registration topic.
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer creates a Producer for the given brokers and topic.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, err
	}
	return &Producer{client: client, topic: topic}, nil
}

// Enqueue publishes the serialized notification. The content hash is the
// record key: duplicate webhook deliveries of the same logical event land on
// the same partition and collapse against the processed store downstream.
// Each record carries a unique delivery id so a single delivery can be traced
// through the consumer logs even when the key is shared across duplicates.
func (p *Producer) Enqueue(ctx context.Context, hash string, payload []byte) error {
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(hash),
		Value: payload,
		Headers: []kgo.RecordHeader{
			{Key: "delivery_id", Value: []byte(uuid.NewString())},
		},
	}
	return p.client.ProduceSync(ctx, record).FirstErr()
}

// Close flushes and closes the underlying client.
func (p *Producer) Close() {
	p.client.Close()
}
