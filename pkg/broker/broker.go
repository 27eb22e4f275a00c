// Package broker provides Kafka produce/consume operations for the classification
// job channel. Messages published with the same key are routed to the same
// partition, preserving per-key delivery order.
package broker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/mwhitlock/prism/pkg/lifecycle"
)

// Message is a single record fetched from a topic.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
}

// Consumer reads messages from a single topic within a consumer group.
// Fetch blocks until a message arrives or the context is cancelled; Commit
// acknowledges a fetched message so it is not redelivered.
type Consumer interface {
	Fetch(ctx context.Context) (Message, error)
	Commit(ctx context.Context, msg Message) error
	Close() error
}

// System manages job channel producers and consumers with lifecycle coordination.
type System interface {
	// Start registers shutdown hooks that close the underlying writer.
	Start(lc *lifecycle.Coordinator) error
	// PublishJob sends a job descriptor to the jobs topic, partitioned by key.
	PublishJob(ctx context.Context, key, value []byte) error
	// Results returns a consumer for the classification results topic.
	Results() Consumer
	// Errors returns a consumer for the processing errors topic.
	Errors() Consumer
}

type system struct {
	cfg    *Config
	writer *kafka.Writer
	logger *slog.Logger
}

// New creates a broker system with the given configuration.
// The writer connects lazily on first publish.
func New(cfg *Config, logger *slog.Logger) System {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.JobsTopic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}

	return &system{
		cfg:    cfg,
		writer: writer,
		logger: logger.With("system", "broker"),
	}
}

func (s *system) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting broker system", "brokers", s.cfg.Brokers)

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		if err := s.writer.Close(); err != nil {
			s.logger.Error("writer close failed", "error", err)
			return
		}
		s.logger.Info("writer closed")
	})

	return nil
}

func (s *system) PublishJob(ctx context.Context, key, value []byte) error {
	err := s.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("publish job to %s: %w", s.cfg.JobsTopic, err)
	}
	return nil
}

func (s *system) Results() Consumer {
	return s.consumer(s.cfg.ResultsTopic)
}

func (s *system) Errors() Consumer {
	return s.consumer(s.cfg.ErrorsTopic)
}

func (s *system) consumer(topic string) Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: s.cfg.Brokers,
		GroupID: s.cfg.GroupID,
		Topic:   topic,
	})
	return &consumer{reader: reader}
}

type consumer struct {
	reader *kafka.Reader
}

func (c *consumer) Fetch(ctx context.Context) (Message, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       msg.Key,
		Value:     msg.Value,
	}, nil
}

func (c *consumer) Commit(ctx context.Context, msg Message) error {
	return c.reader.CommitMessages(ctx, kafka.Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	})
}

func (c *consumer) Close() error {
	return c.reader.Close()
}
