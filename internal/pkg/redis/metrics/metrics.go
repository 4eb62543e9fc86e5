// Package metrics 为 Redis 客户端添加指标收集钩子。
// 网关只用 Redis 做限流计数，指标按单条命令维度采集。
package metrics

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

var (
	commandCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_commands_total",
			Help: "Redis命令执行总数",
		},
		[]string{"command", "status"},
	)

	commandDuration = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "redis_command_duration_seconds",
			Help:       "Redis命令执行耗时（秒）",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
		},
		[]string{"command"},
	)

	connectionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_connections_total",
			Help: "Redis连接创建总数",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(commandCounter, commandDuration, connectionCounter)
}

// Hook 实现 redis.Hook 接口
type Hook struct{}

func (h *Hook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		commandDuration.WithLabelValues(cmd.Name()).Observe(time.Since(start).Seconds())

		// redis.Nil 是正常的未命中，不算错误
		status := "success"
		if err != nil && !errors.Is(err, redis.Nil) {
			status = "error"
		}
		commandCounter.WithLabelValues(cmd.Name(), status).Inc()
		return err
	}
}

func (h *Hook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (h *Hook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		status := "success"
		if err != nil {
			status = "error"
		}
		connectionCounter.WithLabelValues(status).Inc()
		return conn, err
	}
}

// WithMetrics 给客户端挂上指标钩子
func WithMetrics(client *redis.Client) *redis.Client {
	client.AddHook(&Hook{})
	return client
}
