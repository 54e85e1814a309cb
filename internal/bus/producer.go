// Package bus wraps the Sarama Kafka client with the manual
// partition-consumption and shared-producer model the pipeline needs:
// one worker per partition, offsets committed only after both the
// downstream produce and the cache write have been attempted.
package bus

import (
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// Producer is a thread-safe synchronous producer shared across all
// partition workers.
type Producer struct {
	sync sarama.SyncProducer
}

// NewProducer builds a SyncProducer configured for at-least-once delivery:
// acks from all in-sync replicas, bounded retries, and small-batch flush
// tuning so latency stays low under the partition-affine workload.
func NewProducer(brokers []string, clientID string, retryMax int, flushFrequencyMs int, manualPartition bool) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = retryMax
	cfg.Producer.Return.Successes = true
	cfg.Producer.Return.Errors = true
	cfg.Producer.Flush.Frequency = time.Duration(flushFrequencyMs) * time.Millisecond
	cfg.Producer.Flush.Messages = 1000
	cfg.Producer.Compression = sarama.CompressionSnappy
	if manualPartition {
		cfg.Producer.Partitioner = sarama.NewManualPartitioner
	} else {
		cfg.Producer.Partitioner = sarama.NewHashPartitioner
	}

	sp, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating sync producer: %w", err)
	}

	return &Producer{sync: sp}, nil
}

// Publish produces value, keyed by key, to topic. When the producer was
// built with manualPartition, partition is honored exactly (used by the
// pipeline to preserve the ingress message's partition index on the
// egress topic); otherwise the producer's hash partitioner picks a
// partition from key and the partition argument is ignored.
func (p *Producer) Publish(topic string, partition int32, key, value []byte) (int32, int64, error) {
	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Partition: partition,
		Key:       sarama.ByteEncoder(key),
		Value:     sarama.ByteEncoder(value),
	}

	actualPartition, offset, err := p.sync.SendMessage(msg)
	if err != nil {
		return 0, 0, fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return actualPartition, offset, nil
}

// Close flushes and closes the underlying producer.
func (p *Producer) Close() error {
	return p.sync.Close()
}
