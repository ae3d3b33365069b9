package quota_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"marketpulse/config"
	"marketpulse/quota"
)

func limiterWith(perMinute, perDay int) *quota.GenerationLimiter {
	return quota.NewFromConfig(config.AppConfig{
		Quota: config.QuotaConfig{
			RequestsPerMinute: perMinute,
			RequestsPerDay:    perDay,
		},
	})
}

func TestUnlimitedPassesThrough(t *testing.T) {
	l := limiterWith(0, 0)
	for i := 0; i < 5; i++ {
		ok, err := l.WaitAndReserve(context.Background())
		assert.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestDailyCapExhaustion(t *testing.T) {
	l := limiterWith(0, 2)

	for i := 0; i < 2; i++ {
		ok, err := l.WaitAndReserve(context.Background())
		assert.NoError(t, err)
		assert.True(t, ok)
	}

	ok, err := l.WaitAndReserve(context.Background())
	assert.NoError(t, err)
	assert.False(t, ok, "third call must be refused, not errored")
}

func TestPacingDelaysSecondCall(t *testing.T) {
	// 600/min means a 100ms interval between calls.
	l := limiterWith(600, 0)

	ok, err := l.WaitAndReserve(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)

	start := time.Now()
	ok, err = l.WaitAndReserve(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestCancelledContextWhilePacing(t *testing.T) {
	// 1/min forces a long wait on the second call.
	l := limiterWith(1, 0)

	ok, err := l.WaitAndReserve(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	ok, err = l.WaitAndReserve(ctx)
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
