package repository

import (
	"context"

	"mockflow/internal/domain/models"
	"mockflow/internal/domain/repository"
	pkgkafka "mockflow/pkg/kafka"
)

// KafkaFixturePublisher implements FixturePublisher for Kafka.
type KafkaFixturePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaFixturePublisher creates Kafka fixture publisher.
func NewKafkaFixturePublisher(producer *pkgkafka.Producer, topic string) repository.FixturePublisher {
	return &KafkaFixturePublisher{producer: producer, topic: topic}
}

func (p *KafkaFixturePublisher) PublishBatch(ctx context.Context, symbol string, tf repository.Timeframe, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(candles))
	for i, c := range candles {
		msgs[i] = pkgkafka.Message{
			Key: []byte(symbol),
			Value: map[string]interface{}{
				"symbol": symbol,
				"tf":     string(tf),
				"t":      c.Timestamp.Unix(),
				"o":      c.Open,
				"h":      c.High,
				"l":      c.Low,
				"c":      c.Close,
				"v":      c.Volume,
			},
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaFixturePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
