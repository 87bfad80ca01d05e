package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/bradsherman/tardis-node/internal/application/port"
	"github.com/bradsherman/tardis-node/internal/domain/model"
	"github.com/bradsherman/tardis-node/internal/infrastructure/storage"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/rs/zerolog/log"
)

const DefaultTopic = "tardis_events"

// flushTimeout bounds how long Close waits for in-flight deliveries.
const flushTimeout = 5 * time.Second

// Producer publishes every event as JSON keyed by exchange:symbol, so one
// instrument always lands on the same partition in order.
type Producer struct {
	producer *kafka.Producer
	topic    string
}

func New(brokers, topic string) (*Producer, error) {
	if topic == "" {
		topic = DefaultTopic
	}
	config := kafka.ConfigMap{
		"bootstrap.servers": brokers,
	}

	producer, err := kafka.NewProducer(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	p := &Producer{producer: producer, topic: topic}
	go p.deliveryReports()
	log.Info().Str("brokers", brokers).Str("topic", topic).Msg("kafka producer initialized")
	return p, nil
}

// deliveryReports drains the Events channel; failures are only logged.
func (p *Producer) deliveryReports() {
	for e := range p.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				log.Error().Err(ev.TopicPartition.Error).Str("key", string(ev.Key)).Msg("kafka delivery failed")
			}
		case kafka.Error:
			log.Error().Err(ev).Msg("kafka producer error")
		}
	}
}

func (p *Producer) WriteTrade(ctx context.Context, t *model.Trade) error {
	return p.produce(t)
}

func (p *Producer) WriteBookChange(ctx context.Context, b *model.BookChange) error {
	return p.produce(b)
}

func (p *Producer) produce(e model.Event) error {
	msg, err := message(p.topic, e)
	if err != nil {
		return err
	}
	return p.producer.Produce(msg, nil)
}

func message(topic string, e model.Event) (*kafka.Message, error) {
	value, err := storage.EncodeEvent(e)
	if err != nil {
		return nil, err
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(storage.Key(e)),
		Value:          value,
		Timestamp:      e.ExchangeTimestamp().Time(),
		Headers:        []kafka.Header{{Key: "kind", Value: []byte(e.Kind())}},
	}, nil
}

func (p *Producer) Close() error {
	if remaining := p.producer.Flush(int(flushTimeout / time.Millisecond)); remaining > 0 {
		log.Warn().Int("remaining", remaining).Msg("kafka producer closed with undelivered messages")
	}
	p.producer.Close()
	return nil
}

var _ port.EventSink = (*Producer)(nil)
