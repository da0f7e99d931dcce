package messaging

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fraudguard/scoring-service/internal/domain/event"
)

type fakeWriter struct {
	messages []kafkago.Message
	writeErr error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	p := &KafkaPublisher{writer: writer, topic: "fraud.predictions", logger: slog.Default()}

	evt := event.NewPredictionCompleted(uuid.New(), 1, 0.92, "High", "v1.0", 0.4, false, time.Now().UTC())
	alert := event.NewHighRiskDetected(uuid.New(), 0.92, "High", "v1.0", time.Now().UTC())

	err := p.Publish(context.Background(), evt, alert)

	require.NoError(t, err)
	require.Len(t, writer.messages, 2)
	assert.Equal(t, []byte(event.EventTypePredictionCompleted), writer.messages[0].Key)
	assert.Equal(t, []byte(event.EventTypeHighRiskDetected), writer.messages[1].Key)
	assert.Contains(t, string(writer.messages[0].Value), `"risk_level":"High"`)
}

func TestKafkaPublisher_PublishNoEvents(t *testing.T) {
	writer := &fakeWriter{}
	p := &KafkaPublisher{writer: writer, topic: "fraud.predictions", logger: slog.Default()}

	err := p.Publish(context.Background())

	require.NoError(t, err)
	assert.Empty(t, writer.messages)
}

func TestKafkaPublisher_WriteFailure(t *testing.T) {
	writer := &fakeWriter{writeErr: errors.New("broker unreachable")}
	p := &KafkaPublisher{writer: writer, topic: "fraud.predictions", logger: slog.Default()}

	err := p.Publish(context.Background(), event.NewHighRiskDetected(uuid.New(), 0.9, "High", "v1.0", time.Now().UTC()))

	assert.Error(t, err)
}

func TestKafkaPublisher_Close(t *testing.T) {
	writer := &fakeWriter{}
	p := &KafkaPublisher{writer: writer, topic: "fraud.predictions", logger: slog.Default()}

	require.NoError(t, p.Close())
	assert.True(t, writer.closed)
}

func TestNewKafkaPublisher(t *testing.T) {
	p := NewKafkaPublisher([]string{"localhost:9092"}, "fraud.predictions", slog.Default())

	require.NotNil(t, p)
	assert.Equal(t, "fraud.predictions", p.topic)
	assert.NotNil(t, p.writer)
}
