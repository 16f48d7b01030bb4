// Package kafka publishes event-count changes to a Kafka topic. Two
// clients are supported: segmentio/kafka-go and IBM/sarama.
package kafka

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Publisher delivers one keyed message and reports whether the broker
// accepted it.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
	Close() error
}

const (
	ClientKafkaGo = "kafka-go"
	ClientSarama  = "sarama"
)

var ErrUnknownClient = errors.New("kafka: unknown client")

type Config struct {
	Client  string
	Brokers []string
	Topic   string
}

// NewPublisher builds the publisher selected by cfg.Client.
func NewPublisher(cfg Config) (Publisher, error) {
	switch cfg.Client {
	case ClientKafkaGo, "":
		return NewProducer(cfg.Brokers, cfg.Topic), nil
	case ClientSarama:
		return NewSaramaProducer(cfg.Brokers, cfg.Topic)
	default:
		return nil, errors.Wrapf(ErrUnknownClient, "%q", cfg.Client)
	}
}
