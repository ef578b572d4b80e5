// Package events moves articles through Kafka: raw inputs in, processed
// article events out.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"codeberg.org/marketwire/server/internal/articles"
)

// publishes processed articles keyed by article id, so every event for one
// article lands on the same partition
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if topic == "" {
		topic = DefaultProcessedTopic
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return newKafkaPublisher(producer, topic), nil
}

func newKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, now: time.Now}
}

func (p *KafkaPublisher) Publish(ctx context.Context, article *articles.Article) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(NewArticleEvent(article, p.now()))
	if err != nil {
		return fmt.Errorf("failed to encode article event: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(article.ID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish article %s: %w", article.ID, err)
	}

	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
