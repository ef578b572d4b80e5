package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/logger"
)

const (
	rejoinDelay   = 5 * time.Second
	retryDelay    = time.Second
	maxRetryDelay = 30 * time.Second
)

// consumes a topic as part of a consumer group and hands each message to a HandlerFunc
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	groupID string
	handler HandlerFunc
}

func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	if cfg.Handler == nil {
		return nil, fmt.Errorf("kafka consumer requires a handler")
	}

	if cfg.Topic == "" {
		cfg.Topic = DefaultRawTopic
	}

	if cfg.GroupID == "" {
		cfg.GroupID = DefaultGroupID
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer group: %w", err)
	}

	return &Consumer{
		group:   group,
		topic:   cfg.Topic,
		groupID: cfg.GroupID,
		handler: cfg.Handler,
	}, nil
}

// blocks until ctx is cancelled, rejoining the group after every rebalance
func (c *Consumer) Run(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			logger.ErrorErr(err, "kafka consumer error", "group", c.groupID)
		}
	}()

	logger.Info("kafka consumer started", "group", c.groupID, "topic", c.topic)

	handler := &groupHandler{handle: c.handler, retryDelay: retryDelay}

	for {
		if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}

			logger.ErrorErr(err, "kafka consume failed", "topic", c.topic)

			select {
			case <-ctx.Done():
			case <-time.After(rejoinDelay):
			}
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

func (c *Consumer) Close() error {
	return c.group.Close()
}

// a message that is not marked is retried in place, since the group commits
// one offset per partition and marking a later message would pass over it
type groupHandler struct {
	handle     HandlerFunc
	retryDelay time.Duration
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			if !h.handleUntilMarked(session, message) {
				return nil
			}

			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

// returns false when the session ends before the message could be marked
func (h *groupHandler) handleUntilMarked(session sarama.ConsumerGroupSession, message *sarama.ConsumerMessage) bool {
	ctx := session.Context()
	delay := h.retryDelay

	for attempt := 1; ; attempt++ {
		mark, err := h.handle(ctx, message.Value)
		if err != nil {
			logger.Warn("failed to handle kafka message",
				"partition", message.Partition,
				"offset", message.Offset,
				"attempt", attempt,
				"error", err,
			)
		}

		if mark {
			return true
		}

		if ctx.Err() != nil {
			return false
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}

		delay = min(delay*2, maxRetryDelay)
	}
}

// decodes a raw article from payload; malformed payloads are marked and skipped
func DecodeInput(payload []byte) (articles.Input, bool) {
	var in articles.Input
	if err := json.Unmarshal(payload, &in); err != nil {
		logger.Warn("skipping malformed article message", "error", err)
		return in, false
	}

	return in, true
}
