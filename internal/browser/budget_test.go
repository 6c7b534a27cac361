package browser

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudget(t *testing.T) {
	d, err := Budget(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	d, err = Budget(ctx, time.Minute)
	require.NoError(t, err)
	assert.LessOrEqual(t, d, 100*time.Millisecond)

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	_, err = Budget(cancelled, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRemaining(t *testing.T) {
	d, err := Remaining(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, time.Second, d)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	d, err = Remaining(ctx, time.Second)
	require.NoError(t, err)
	assert.Greater(t, d, time.Minute)
	assert.LessOrEqual(t, d, 5*time.Minute)

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	_, err = Remaining(cancelled, time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
