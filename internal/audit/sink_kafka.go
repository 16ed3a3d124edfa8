package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// KafkaSink streams audit records to Kafka for downstream compliance
// consumers (SIEM, long-retention archive). The Postgres row remains the
// authoritative copy; the stream is a best-effort fan-out.
type KafkaSink struct {
	client *kgo.Client
	topic  string
	logger *slog.Logger
}

// NewKafkaSink connects to the brokers and ensures the audit topic exists.
func NewKafkaSink(brokers, topic string, logger *slog.Logger) (*KafkaSink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(strings.Split(brokers, ",")...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	// partitions/replication -1 defers to broker defaults. Already-exists is fine.
	resp, err := adm.CreateTopics(context.Background(), -1, -1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("ensure audit topic: %w", err)
	}
	for _, ctr := range resp.Sorted() {
		if ctr.Err != nil && !strings.Contains(ctr.Err.Error(), "TOPIC_ALREADY_EXISTS") {
			logger.Warn("audit topic creation reported error", "topic", ctr.Topic, "error", ctr.Err)
		}
	}

	return &KafkaSink{client: client, topic: topic, logger: logger}, nil
}

// Publish produces one record keyed by entity ID so per-entity ordering is
// preserved within a partition.
func (s *KafkaSink) Publish(ctx context.Context, record Record) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}
	result := s.client.ProduceSync(ctx, &kgo.Record{
		Topic: s.topic,
		Key:   []byte(record.Entity + ":" + record.EntityID),
		Value: payload,
	})
	if err := result.FirstErr(); err != nil {
		return fmt.Errorf("produce audit record: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying client.
func (s *KafkaSink) Close() {
	s.client.Close()
}

// Sink abstracts the streaming destination so the worker can be tested
// without a broker.
type Sink interface {
	Publish(ctx context.Context, record Record) error
}

// Worker drains the recorder's fan-out channel into the sink. Publish
// failures are logged and the record dropped from the stream; the store copy
// is unaffected.
type Worker struct {
	sink   Sink
	inbox  <-chan Record
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Record, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case record := <-w.inbox:
			if err := w.sink.Publish(ctx, record); err != nil {
				w.logger.Error("audit stream publish failed",
					"entity", record.Entity,
					"entity_id", record.EntityID,
					"error", err,
				)
			}
		}
	}
}
