package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/net/context"
)

var _ Limiter = (*LocalFixedWindowLimiter)(nil)

// LocalFixedWindowLimiter 进程内的固定窗口限流器。
// 测试发送这类低频入口不值得走一趟 Redis，单机计数就够了。
type LocalFixedWindowLimiter struct {
	mu          sync.Mutex
	windows     map[string]*fixedWindow
	maxRequests int
	interval    time.Duration
	now         func() time.Time
}

type fixedWindow struct {
	start time.Time
	count int
}

func NewLocalFixedWindowLimiter(interval time.Duration, maxRequests int) *LocalFixedWindowLimiter {
	return &LocalFixedWindowLimiter{
		windows:     make(map[string]*fixedWindow),
		maxRequests: maxRequests,
		interval:    interval,
		now:         time.Now,
	}
}

// Limit 判断是否应该限流。窗口过期后计数清零重新开始。
func (l *LocalFixedWindowLimiter) Limit(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.interval {
		l.windows[key] = &fixedWindow{start: now, count: 1}
		l.evictExpired(now)
		return false, nil
	}
	if w.count >= l.maxRequests {
		return true, nil
	}
	w.count++
	return false, nil
}

// 窗口新建时顺手清掉其它 key 的过期窗口，防止 map 无限膨胀
func (l *LocalFixedWindowLimiter) evictExpired(now time.Time) {
	for k, w := range l.windows {
		if now.Sub(w.start) >= l.interval {
			delete(l.windows, k)
		}
	}
}
