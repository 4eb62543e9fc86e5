package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFixedWindowLimiter_Limit(t *testing.T) {
	t.Parallel()
	current := time.Now()
	limiter := NewLocalFixedWindowLimiter(time.Minute, 3)
	limiter.now = func() time.Time { return current }
	ctx := context.Background()

	// 窗口内前三次放行
	for i := 0; i < 3; i++ {
		limited, err := limiter.Limit(ctx, "user-1")
		require.NoError(t, err)
		assert.False(t, limited)
	}
	// 第四次触发限流
	limited, err := limiter.Limit(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, limited)

	// 其它 key 互不影响
	limited, err = limiter.Limit(ctx, "user-2")
	require.NoError(t, err)
	assert.False(t, limited)

	// 窗口滚动后计数清零
	current = current.Add(time.Minute + time.Second)
	limited, err = limiter.Limit(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, limited)
}

func TestLocalFixedWindowLimiter_SingleRequestWindow(t *testing.T) {
	t.Parallel()
	limiter := NewLocalFixedWindowLimiter(time.Minute, 1)
	ctx := context.Background()

	limited, err := limiter.Limit(ctx, "user-1")
	require.NoError(t, err)
	assert.False(t, limited)

	limited, err = limiter.Limit(ctx, "user-1")
	require.NoError(t, err)
	assert.True(t, limited)
}
