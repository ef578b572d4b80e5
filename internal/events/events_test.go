package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/marketwire/server/internal/articles"
)

func sampleArticle() *articles.Article {
	return &articles.Article{
		ID:          "a1b2c3",
		Title:       "RBI holds repo rate",
		Source:      "Mint",
		URL:         "https://example.com/rbi",
		PublishedAt: time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC),
		Sector:      "Banking",
		ImpactedStocks: []articles.ImpactedStock{
			{Symbol: "HDFCBANK", Confidence: 0.9, Type: articles.ImpactRegulatory, Sentiment: articles.SentimentNeutral},
		},
	}
}

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != DefaultProcessedTopic {
			return fmt.Errorf("unexpected topic %q", msg.Topic)
		}

		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}

		if string(key) != "a1b2c3" {
			return fmt.Errorf("unexpected key %q", key)
		}

		return nil
	})

	publisher := newKafkaPublisher(producer, DefaultProcessedTopic)
	publisher.now = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }

	require.NoError(t, publisher.Publish(context.Background(), sampleArticle()))
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_Payload(t *testing.T) {
	var got ArticleEvent

	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		return json.Unmarshal(val, &got)
	})

	publisher := newKafkaPublisher(producer, DefaultProcessedTopic)
	require.NoError(t, publisher.Publish(context.Background(), sampleArticle()))
	require.NoError(t, publisher.Close())

	assert.Equal(t, TypeArticleIngested, got.Type)
	assert.Equal(t, "a1b2c3", got.ID)
	assert.Equal(t, "Banking", got.Sector)
	require.Len(t, got.ImpactedStocks, 1)
	assert.Equal(t, "HDFCBANK", got.ImpactedStocks[0].Symbol)
}

func TestKafkaPublisher_SendFailure(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := newKafkaPublisher(producer, DefaultProcessedTopic)

	err := publisher.Publish(context.Background(), sampleArticle())
	require.Error(t, err)
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, publisher.Close())
}

func TestKafkaPublisher_CancelledContext(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	publisher := newKafkaPublisher(producer, DefaultProcessedTopic)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, publisher.Publish(ctx, sampleArticle()), context.Canceled)
	require.NoError(t, publisher.Close())
}

func TestNewArticleEvent_EmptyImpacts(t *testing.T) {
	a := sampleArticle()
	a.ImpactedStocks = nil

	event := NewArticleEvent(a, time.Now())

	payload, err := json.Marshal(event)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"impacted_stocks":[]`)
	assert.NotContains(t, string(payload), "duplicate_of_id")
}

type fakeSession struct {
	sarama.ConsumerGroupSession
	ctx    context.Context
	marked []int64
}

func (s *fakeSession) Context() context.Context {
	return s.ctx
}

func (s *fakeSession) MarkMessage(msg *sarama.ConsumerMessage, _ string) {
	s.marked = append(s.marked, msg.Offset)
}

type fakeClaim struct {
	sarama.ConsumerGroupClaim
	messages chan *sarama.ConsumerMessage
}

func (c *fakeClaim) Messages() <-chan *sarama.ConsumerMessage {
	return c.messages
}

func TestGroupHandler_MarksHandledMessages(t *testing.T) {
	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 2)}
	claim.messages <- &sarama.ConsumerMessage{Offset: 0, Value: []byte("ok")}
	claim.messages <- &sarama.ConsumerMessage{Offset: 1, Value: []byte("skip")}
	close(claim.messages)

	var seen []string

	handler := &groupHandler{retryDelay: time.Millisecond, handle: func(_ context.Context, payload []byte) (bool, error) {
		seen = append(seen, string(payload))

		if string(payload) == "skip" {
			return true, errors.New("article title is required")
		}

		return true, nil
	}}

	session := &fakeSession{ctx: context.Background()}

	require.NoError(t, handler.ConsumeClaim(session, claim))
	assert.Equal(t, []string{"ok", "skip"}, seen)
	assert.Equal(t, []int64{0, 1}, session.marked)
}

func TestGroupHandler_RetriesUnmarkedMessageInPlace(t *testing.T) {
	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 2)}
	claim.messages <- &sarama.ConsumerMessage{Offset: 10, Value: []byte("flaky")}
	claim.messages <- &sarama.ConsumerMessage{Offset: 11, Value: []byte("ok")}
	close(claim.messages)

	var seen []string
	failures := 2

	handler := &groupHandler{retryDelay: time.Millisecond, handle: func(_ context.Context, payload []byte) (bool, error) {
		seen = append(seen, string(payload))

		if string(payload) == "flaky" && failures > 0 {
			failures--
			return false, errors.New("database is down")
		}

		return true, nil
	}}

	session := &fakeSession{ctx: context.Background()}

	require.NoError(t, handler.ConsumeClaim(session, claim))
	assert.Equal(t, []string{"flaky", "flaky", "flaky", "ok"}, seen)
	assert.Equal(t, []int64{10, 11}, session.marked)
}

func TestGroupHandler_NeverMarksPastFailedMessage(t *testing.T) {
	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage, 2)}
	claim.messages <- &sarama.ConsumerMessage{Offset: 20, Value: []byte("down")}
	claim.messages <- &sarama.ConsumerMessage{Offset: 21, Value: []byte("ok")}
	close(claim.messages)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var seen []string

	handler := &groupHandler{retryDelay: time.Millisecond, handle: func(_ context.Context, payload []byte) (bool, error) {
		seen = append(seen, string(payload))

		if len(seen) == 3 {
			cancel()
		}

		if string(payload) == "down" {
			return false, errors.New("database is down")
		}

		return true, nil
	}}

	session := &fakeSession{ctx: ctx}

	require.NoError(t, handler.ConsumeClaim(session, claim))
	assert.Equal(t, []string{"down", "down", "down"}, seen)
	assert.Empty(t, session.marked)
}

func TestGroupHandler_StopsOnCancel(t *testing.T) {
	claim := &fakeClaim{messages: make(chan *sarama.ConsumerMessage)}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	handler := &groupHandler{handle: func(context.Context, []byte) (bool, error) {
		t.Fatal("handler should not run")
		return false, nil
	}}

	assert.NoError(t, handler.ConsumeClaim(&fakeSession{ctx: ctx}, claim))
}

func TestDecodeInput(t *testing.T) {
	in, ok := DecodeInput([]byte(`{"title":"TCS wins deal","content":"...","source":"ET","url":"https://x/tcs"}`))
	require.True(t, ok)
	assert.Equal(t, "TCS wins deal", in.Title)
	assert.Equal(t, "https://x/tcs", in.URL)

	_, ok = DecodeInput([]byte(`{"title":`))
	assert.False(t, ok)
}

func TestNewConsumer_RequiresHandler(t *testing.T) {
	_, err := NewConsumer(ConsumerConfig{Brokers: []string{"localhost:9092"}})
	assert.Error(t, err)
}
