package repository

import (
	"context"
	"strconv"

	"SilverFetch/internal/domain/models"
	pkgkafka "SilverFetch/pkg/kafka"
	applogger "SilverFetch/pkg/logger"
)

// KafkaSnapshotPublisher streams each published snapshot to a Kafka topic
// for downstream consumers (alerting, archival, replays).
type KafkaSnapshotPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	l        *applogger.Logger
}

func NewKafkaSnapshotPublisher(producer *pkgkafka.Producer, topic string, l *applogger.Logger) *KafkaSnapshotPublisher {
	return &KafkaSnapshotPublisher{producer: producer, topic: topic, l: l}
}

// Publish sends one snapshot keyed by cycle timestamp so per-partition order
// follows cycle order.
func (p *KafkaSnapshotPublisher) Publish(ctx context.Context, snap *models.Snapshot) error {
	key := []byte(strconv.FormatInt(snap.Timestamp.UnixMilli(), 10))
	if err := p.producer.Publish(ctx, p.topic, key, snap); err != nil {
		p.l.Error("kafka snapshot publish failed",
			applogger.String("topic", p.topic),
			applogger.Error(err))
		return err
	}
	return nil
}

func (p *KafkaSnapshotPublisher) Close() error {
	return p.producer.Close()
}
