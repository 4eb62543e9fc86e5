package ratelimit

import "golang.org/x/net/context"

type Limiter interface {
	// Limit 判断是否应该限流
	Limit(ctx context.Context, key string) (bool, error)
}
