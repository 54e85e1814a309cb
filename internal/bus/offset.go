package bus

import (
	"fmt"

	"github.com/IBM/sarama"
)

// OffsetTracker manages manual offset commits for a single partition. It
// is created once per worker and advanced only after both the egress
// produce and the cache write have been attempted for a message.
type OffsetTracker struct {
	client  sarama.Client
	manager sarama.OffsetManager
	pom     sarama.PartitionOffsetManager
}

// NewOffsetTracker opens an offset manager for the given consumer group,
// topic, and partition.
func NewOffsetTracker(brokers []string, group, topic string, partition int32) (*OffsetTracker, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	client, err := sarama.NewClient(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}

	manager, err := sarama.NewOffsetManagerFromClient(group, client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("creating offset manager: %w", err)
	}

	pom, err := manager.ManagePartition(topic, partition)
	if err != nil {
		manager.Close()
		client.Close()
		return nil, fmt.Errorf("managing partition %d of %s: %w", partition, topic, err)
	}

	return &OffsetTracker{client: client, manager: manager, pom: pom}, nil
}

// NextOffset returns the offset the worker should resume consuming from:
// one past the last committed offset, or sarama.OffsetOldest's sentinel
// (-2) if nothing has ever been committed for this partition/group.
func (t *OffsetTracker) NextOffset() int64 {
	offset, _ := t.pom.NextOffset()
	return offset
}

// MarkOffset records that the message at offset has been fully handled
// (egress produced and cache write attempted) and is safe to resume from
// next time.
func (t *OffsetTracker) MarkOffset(offset int64) {
	t.pom.MarkOffset(offset+1, "")
}

// Close commits any pending offset and releases the underlying client.
func (t *OffsetTracker) Close() error {
	if err := t.pom.Close(); err != nil {
		return err
	}
	if err := t.manager.Close(); err != nil {
		return err
	}
	return t.client.Close()
}
