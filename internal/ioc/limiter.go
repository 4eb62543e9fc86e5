package ioc

import (
	"time"

	"gitee.com/flycash/notification-gateway/internal/pkg/ratelimit"
	"github.com/gotomicro/ego/core/econf"
	"github.com/redis/go-redis/v9"
)

const (
	defaultSubmitRate       = 1000
	defaultTestSendInterval = time.Minute
	defaultTestSendMax      = 5
)

// InitSubmitLimiter 提交入口的限流器，多实例部署共享 Redis 滑动窗口
func InitSubmitLimiter(client *redis.Client) ratelimit.Limiter {
	type Config struct {
		Interval time.Duration `yaml:"interval"`
		Rate     int           `yaml:"rate"`
	}
	cfg := Config{Interval: time.Second, Rate: defaultSubmitRate}
	if err := econf.UnmarshalKey("limiter.submit", &cfg); err != nil {
		panic(err)
	}
	return ratelimit.NewRedisSlidingWindowLimiter(client, cfg.Interval, cfg.Rate)
}

// InitTestSendLimiter 测试发送的限流器，低频入口用进程内固定窗口就够了
func InitTestSendLimiter() ratelimit.Limiter {
	type Config struct {
		Interval    time.Duration `yaml:"interval"`
		MaxRequests int           `yaml:"maxRequests"`
	}
	cfg := Config{Interval: defaultTestSendInterval, MaxRequests: defaultTestSendMax}
	if err := econf.UnmarshalKey("limiter.testSend", &cfg); err != nil {
		panic(err)
	}
	return ratelimit.NewLocalFixedWindowLimiter(cfg.Interval, cfg.MaxRequests)
}
