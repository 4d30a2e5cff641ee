package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/video-sharing-platform/internal/breaker"
)

type fakeWriter struct {
	mu       sync.Mutex
	failures int
	messages []kafka.Message
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failures > 0 {
		w.failures--
		return errors.New("broker unavailable")
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestProducerPublishesKeyedByTarget(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 3, time.Millisecond, quietLogger())

	event := NewActivityEvent(EventLikeToggled, "actor", "video", "target", true)
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, w.messages, 1)
	assert.Equal(t, []byte("target"), w.messages[0].Key)

	var decoded ActivityEvent
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &decoded))
	assert.Equal(t, EventLikeToggled, decoded.Type)
	assert.True(t, decoded.Active)
	assert.NotEmpty(t, decoded.EventID)
}

func TestProducerRetries(t *testing.T) {
	w := &fakeWriter{failures: 2}
	p := newProducer(w, 3, time.Millisecond, quietLogger())

	require.NoError(t, p.Publish(context.Background(), NewActivityEvent(EventVideoUploaded, "a", "video", "v", true)))
	assert.Len(t, w.messages, 1)
}

func TestProducerGivesUp(t *testing.T) {
	w := &fakeWriter{failures: 5}
	p := newProducer(w, 2, time.Millisecond, quietLogger())

	err := p.Publish(context.Background(), NewActivityEvent(EventVideoUploaded, "a", "video", "v", true))
	assert.Error(t, err)
	assert.Empty(t, w.messages)
}

func TestProducerClosed(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, 1, time.Millisecond, quietLogger())

	require.NoError(t, p.Close())
	assert.True(t, p.IsClosed())
	assert.True(t, w.closed)
	assert.Error(t, p.Publish(context.Background(), ActivityEvent{}))
	assert.NoError(t, p.Close())
}

func TestEmitterSwallowsFailures(t *testing.T) {
	log := quietLogger()
	w := &fakeWriter{failures: 10}
	e := NewEmitter(newProducer(w, 1, time.Millisecond, log), breaker.New("kafka", 1, time.Minute, log), time.Second, log)

	assert.NotPanics(t, func() {
		e.Emit(context.Background(), NewActivityEvent(EventSubscriptionToggled, "a", "channel", "c", false))
	})
	assert.Empty(t, w.messages)
}
