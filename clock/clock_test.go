package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealSleep(t *testing.T) {
	c := Real()
	start := c.Now()
	require.NoError(t, c.Sleep(context.Background(), 20*time.Millisecond))
	assert.GreaterOrEqual(t, Since(c, start), 20*time.Millisecond)
}

func TestRealSleepCanceled(t *testing.T) {
	c := Real()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := c.Sleep(ctx, time.Minute)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
