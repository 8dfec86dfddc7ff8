package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testCfg = Config{
	MaxRetries:   3,
	InitialDelay: time.Millisecond,
	MaxDelay:     2 * time.Millisecond,
	Multiplier:   2.0,
}

func TestWithBackoffSucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := WithBackoff(context.Background(), testCfg, zap.NewNop(), "op", func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestWithBackoffExhaustsRetries(t *testing.T) {
	attempts := 0
	boom := errors.New("still broken")
	err := WithBackoff(context.Background(), testCfg, zap.NewNop(), "op", func() error {
		attempts++
		return boom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, testCfg.MaxRetries, attempts)
}

func TestWithBackoffRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithBackoff(ctx, testCfg, zap.NewNop(), "op", func() error {
		return errors.New("never retried")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
