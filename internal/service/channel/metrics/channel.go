// Package metrics 为发送器实现添加指标收集的装饰器
package metrics

import (
	"context"
	"time"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/service/channel"
	"github.com/prometheus/client_golang/prometheus"
)

// 指标向量在包级别注册一次，装饰器实例按任务创建，共用同一组向量
var (
	sendDurationSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "channel_send_duration_seconds",
			Help:       "渠道发送消息耗时统计（秒）",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.95: 0.005, 0.99: 0.001},
			MaxAge:     time.Minute * 5,
		},
		[]string{"protocol", "success"},
	)

	sendCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_send_total",
			Help: "渠道发送消息总数",
		},
		[]string{"protocol"},
	)

	sendStatusCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "channel_send_status_total",
			Help: "渠道发送消息结果统计，按错误码区分",
		},
		[]string{"protocol", "errorCode"},
	)
)

func init() {
	prometheus.MustRegister(sendDurationSummary, sendCounter, sendStatusCounter)
}

// Channel 为发送器实现添加指标收集的装饰器
type Channel struct {
	channel  channel.Channel
	protocol string
}

// NewChannel 创建一个新的带有指标收集的发送器
func NewChannel(protocol string, ch channel.Channel) *Channel {
	return &Channel{
		channel:  ch,
		protocol: protocol,
	}
}

// Send 发送消息并记录指标
func (c *Channel) Send(ctx context.Context, msg domain.Message) domain.SendResult {
	startTime := time.Now()

	sendCounter.WithLabelValues(c.protocol).Inc()

	res := c.channel.Send(ctx, msg)

	duration := time.Since(startTime).Seconds()
	success := "false"
	errorCode := res.ErrorCode
	if res.Success {
		success = "true"
		errorCode = "OK"
	}

	sendStatusCounter.WithLabelValues(c.protocol, errorCode).Inc()
	sendDurationSummary.WithLabelValues(c.protocol, success).Observe(duration)

	return res
}

// Close 透传底层发送器的资源释放
func (c *Channel) Close() error {
	channel.Release(c.channel)
	return nil
}
