package bus

import (
	"fmt"

	"github.com/IBM/sarama"
)

// PartitionConsumer consumes a single, fixed Kafka partition directly via
// sarama's low-level Consumer API, not a ConsumerGroup, so partition
// ownership never rebalances out from under a running worker.
type PartitionConsumer struct {
	client    sarama.Client
	consumer  sarama.Consumer
	partition sarama.PartitionConsumer
}

// NewPartitionConsumer opens a consumer for topic/partition starting at
// startOffset (typically the next offset after the last committed one).
func NewPartitionConsumer(brokers []string, topic string, partition int32, startOffset int64) (*PartitionConsumer, error) {
	cfg := sarama.NewConfig()
	cfg.Consumer.Return.Errors = true

	client, err := sarama.NewClient(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}

	consumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("creating consumer: %w", err)
	}

	pc, err := consumer.ConsumePartition(topic, partition, startOffset)
	if err != nil {
		consumer.Close()
		client.Close()
		return nil, fmt.Errorf("consuming partition %d of %s: %w", partition, topic, err)
	}

	return &PartitionConsumer{client: client, consumer: consumer, partition: pc}, nil
}

// Messages returns the channel of incoming messages for this partition.
func (c *PartitionConsumer) Messages() <-chan *sarama.ConsumerMessage {
	return c.partition.Messages()
}

// Errors returns the channel of consumer errors for this partition.
func (c *PartitionConsumer) Errors() <-chan *sarama.ConsumerError {
	return c.partition.Errors()
}

// Close tears down the partition consumer, the consumer, and the client,
// in that order.
func (c *PartitionConsumer) Close() error {
	if err := c.partition.Close(); err != nil {
		return err
	}
	if err := c.consumer.Close(); err != nil {
		return err
	}
	return c.client.Close()
}

// Partitions returns the current partition list for topic, used at
// startup to size the worker pool to the topic's partition count.
func Partitions(brokers []string, topic string) ([]int32, error) {
	cfg := sarama.NewConfig()
	client, err := sarama.NewClient(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating kafka client: %w", err)
	}
	defer client.Close()

	partitions, err := client.Partitions(topic)
	if err != nil {
		return nil, fmt.Errorf("listing partitions for %s: %w", topic, err)
	}
	return partitions, nil
}
