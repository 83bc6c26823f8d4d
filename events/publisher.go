package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/IBM/sarama"

	"adforge/types"
)

// Publisher emits job lifecycle events to a Kafka topic so downstream
// consumers can react to finished renders without polling the API.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher connects a synchronous producer to the given brokers.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("connect kafka producer: %w", err)
	}

	return &Publisher{producer: producer, topic: topic}, nil
}

// NotifyJob publishes the job snapshot keyed by job id. Publish failures
// are logged, not propagated: events are advisory and must never change a
// job's outcome.
func (p *Publisher) NotifyJob(ctx context.Context, job types.RenderJob) {
	data, err := json.Marshal(job)
	if err != nil {
		log.Printf("Failed to encode job event %s: %v", job.JobID, err)
		return
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(job.JobID),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		log.Printf("Failed to publish job event %s: %v", job.JobID, err)
		return
	}
	log.Printf("Published job event %s (%s) to %s[%d]@%d", job.JobID, job.Status, p.topic, partition, offset)
}

// Close shuts down the underlying producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
