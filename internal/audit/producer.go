package audit

import (
	"context"
	"fmt"
	"time"

	"queueflow/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher defines the contract for publishing queue audit events
type Publisher interface {
	PublishQueueEvent(ctx context.Context, event *QueueEvent) error
	PublishQueueEvents(ctx context.Context, events []*QueueEvent) error
	Close() error
}

// KafkaPublisherConfig contains configuration for the Kafka audit publisher
type KafkaPublisherConfig struct {
	Brokers         []string
	Topic           string
	RetryMax        int
	TimeoutMs       int
	RequiredAcks    sarama.RequiredAcks
	CompressionType sarama.CompressionCodec
	MaxMessageBytes int
}

// DefaultKafkaPublisherConfig returns a default publisher configuration
func DefaultKafkaPublisherConfig() *KafkaPublisherConfig {
	return &KafkaPublisherConfig{
		Brokers:         []string{"localhost:9092"},
		Topic:           "queue-events",
		RetryMax:        3,
		TimeoutMs:       10000,
		RequiredAcks:    sarama.WaitForAll,
		CompressionType: sarama.CompressionSnappy,
		MaxMessageBytes: 1000000, // 1MB
	}
}

// KafkaPublisher publishes queue audit events to Kafka
type KafkaPublisher struct {
	producer sarama.SyncProducer
	config   *KafkaPublisherConfig
	log      *logger.Logger
}

// NewKafkaPublisher creates a new Kafka audit publisher
func NewKafkaPublisher(config *KafkaPublisherConfig) (Publisher, error) {
	if config == nil {
		config = DefaultKafkaPublisherConfig()
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(config.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes

	// Hash partitioner keyed by shop ID keeps per-shop event order
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaPublisher{
		producer: producer,
		config:   config,
		log:      logger.GetDefault(),
	}, nil
}

// PublishQueueEvent publishes a single queue event
func (p *KafkaPublisher) PublishQueueEvent(ctx context.Context, event *QueueEvent) error {
	messageBytes, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal queue event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.config.Topic,
		Key:       sarama.StringEncoder(event.PartitionKey()),
		Value:     sarama.ByteEncoder(messageBytes),
		Headers:   p.createHeaders(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send queue event to Kafka: %w", err)
	}

	p.log.InfoWithContext(ctx, "Queue event published", map[string]interface{}{
		"topic":     p.config.Topic,
		"partition": partition,
		"offset":    offset,
		"type":      string(event.Type),
		"shop_id":   event.ShopID.String(),
	})

	return nil
}

// PublishQueueEvents publishes a batch of queue events in one producer call
func (p *KafkaPublisher) PublishQueueEvents(ctx context.Context, events []*QueueEvent) error {
	if len(events) == 0 {
		return nil
	}

	messages := make([]*sarama.ProducerMessage, 0, len(events))
	for _, event := range events {
		messageBytes, err := event.ToJSON()
		if err != nil {
			p.log.ErrorWithContext(ctx, "Failed to marshal queue event", err, map[string]interface{}{
				"event_id": event.ID.String(),
			})
			continue
		}

		messages = append(messages, &sarama.ProducerMessage{
			Topic:     p.config.Topic,
			Key:       sarama.StringEncoder(event.PartitionKey()),
			Value:     sarama.ByteEncoder(messageBytes),
			Headers:   p.createHeaders(event),
			Timestamp: event.OccurredAt,
		})
	}

	if err := p.producer.SendMessages(messages); err != nil {
		return fmt.Errorf("failed to send queue event batch to Kafka: %w", err)
	}

	return nil
}

// createHeaders creates Kafka headers for queue events
func (p *KafkaPublisher) createHeaders(event *QueueEvent) []sarama.RecordHeader {
	headers := []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("shop_id"), Value: []byte(event.ShopID.String())},
		{Key: []byte("producer"), Value: []byte("queueflow")},
		{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
	}

	if event.FromStatus != "" {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("from_status"),
			Value: []byte(event.FromStatus),
		})
	}
	if event.ToStatus != "" {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("to_status"),
			Value: []byte(event.ToStatus),
		})
	}

	return headers
}

// Close closes the Kafka producer
func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		if err := p.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}
