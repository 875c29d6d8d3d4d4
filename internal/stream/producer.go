package stream

import (
	"context"
	"fmt"
	"time"

	"seatcore/internal/shared/config"
	"seatcore/pkg/logger"

	"github.com/IBM/sarama"
)

// Producer publishes seat lifecycle events. Publishing is observability,
// not correctness: callers log failures and carry on, a failed publish
// never rolls back a seat transition.
type Producer interface {
	Publish(ctx context.Context, event *SeatEvent) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka seat-event producer
type KafkaProducerConfig struct {
	Brokers          []string
	SeatTopic        string
	RetryMax         int
	TimeoutMs        int
	ClientID         string
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
}

// FromAppConfig maps the application Kafka settings onto producer config
func FromAppConfig(cfg config.KafkaConfig) *KafkaProducerConfig {
	compression := sarama.CompressionSnappy
	if cfg.Compression == "none" {
		compression = sarama.CompressionNone
	}
	return &KafkaProducerConfig{
		Brokers:          cfg.Brokers,
		SeatTopic:        cfg.SeatTopic,
		RetryMax:         cfg.RetryMax,
		TimeoutMs:        cfg.TimeoutMs,
		ClientID:         cfg.ClientID,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  compression,
		IdempotentWrites: true,
	}
}

type kafkaProducer struct {
	producer sarama.SyncProducer
	config   *KafkaProducerConfig
	log      *logger.Logger
}

// NewKafkaProducer creates a sync producer with idempotent writes and a hash
// partitioner keyed by event_seating_id.
func NewKafkaProducer(cfg *KafkaProducerConfig, log *logger.Logger) (Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.ClientID = cfg.ClientID
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = cfg.RequiredAcks
	saramaConfig.Producer.Compression = cfg.CompressionType
	saramaConfig.Producer.Retry.Max = cfg.RetryMax
	saramaConfig.Producer.Timeout = time.Duration(cfg.TimeoutMs) * time.Millisecond
	saramaConfig.Producer.Idempotent = cfg.IdempotentWrites
	if cfg.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &kafkaProducer{producer: producer, config: cfg, log: log}, nil
}

func (kp *kafkaProducer) Publish(ctx context.Context, event *SeatEvent) error {
	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal seat event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     kp.config.SeatTopic,
		Key:       sarama.StringEncoder(event.PartitionKey()),
		Value:     sarama.ByteEncoder(body),
		Headers:   kp.createHeaders(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := kp.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send seat event to Kafka: %w", err)
	}

	kp.log.DebugWithContext(ctx, "seat event published", map[string]interface{}{
		"type":      string(event.Type),
		"seat_uid":  event.SeatUID,
		"partition": partition,
		"offset":    offset,
	})
	return nil
}

func (kp *kafkaProducer) createHeaders(event *SeatEvent) []sarama.RecordHeader {
	headers := []sarama.RecordHeader{
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("event_seating_id"), Value: []byte(event.EventSeatingID.String())},
		{Key: []byte("seat_uid"), Value: []byte(event.SeatUID)},
		{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		{Key: []byte("producer"), Value: []byte("seatcore")},
	}
	if event.SessionUID != "" {
		headers = append(headers, sarama.RecordHeader{
			Key:   []byte("session_uid"),
			Value: []byte(event.SessionUID),
		})
	}
	return headers
}

func (kp *kafkaProducer) Close() error {
	if kp.producer != nil {
		if err := kp.producer.Close(); err != nil {
			return fmt.Errorf("failed to close Kafka producer: %w", err)
		}
	}
	return nil
}

// NoopProducer drops every event. Used when the Kafka stream is disabled.
type NoopProducer struct{}

func NewNoopProducer() Producer {
	return NoopProducer{}
}

func (NoopProducer) Publish(ctx context.Context, event *SeatEvent) error { return nil }

func (NoopProducer) Close() error { return nil }
