package ingest

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/example/ride-service/internal/models"
)

// AuditProducer publishes status-transition events to Kafka. The topic
// is the system's audit trail: the API never reads it back, a separate
// consumer materializes it.
type AuditProducer struct {
	writer *kafka.Writer
}

func NewAuditProducer(brokers []string, topic string) *AuditProducer {
	w := kafka.NewWriter(kafka.WriterConfig{Brokers: brokers, Topic: topic, Balancer: &kafka.LeastBytes{}})
	return &AuditProducer{writer: w}
}

// PublishTransition records one status change. Keyed by ride id so all
// events for a ride land on one partition in order.
func (a *AuditProducer) PublishTransition(ev models.TransitionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, _ := json.Marshal(ev)
	return a.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(ev.RideID, 10)),
		Value: b,
	})
}

func (a *AuditProducer) Close() error {
	if a.writer == nil {
		return nil
	}
	return a.writer.Close()
}
