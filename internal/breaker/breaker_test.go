package breaker

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestBreakerTripsAfterRepeatedFailures(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	cb := New("test", 1, time.Minute, log)

	failing := func() (interface{}, error) { return nil, errors.New("boom") }
	for i := 0; i < 3; i++ {
		_, _ = cb.Execute(failing)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.State())
	_, err := cb.Execute(func() (interface{}, error) { return "ok", nil })
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBreakerStaysClosedOnSuccess(t *testing.T) {
	cb := New("test", 1, time.Minute, logrus.New())

	for i := 0; i < 5; i++ {
		v, err := cb.Execute(func() (interface{}, error) { return i, nil })
		assert.NoError(t, err)
		assert.Equal(t, i, v)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
