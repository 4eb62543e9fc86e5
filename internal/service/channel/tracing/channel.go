package tracing

import (
	"context"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/service/channel"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Channel 为发送器实现添加链路追踪的装饰器
type Channel struct {
	channel  channel.Channel
	protocol string
	tracer   trace.Tracer
}

// NewChannel 创建一个新的带有链路追踪的发送器
func NewChannel(protocol string, ch channel.Channel) *Channel {
	return &Channel{
		channel:  ch,
		protocol: protocol,
		tracer:   otel.Tracer("notification-gateway/channel"),
	}
}

func (c *Channel) Send(ctx context.Context, msg domain.Message) domain.SendResult {
	ctx, span := c.tracer.Start(ctx, "Channel.Send",
		trace.WithAttributes(
			attribute.String("channel.protocol", c.protocol),
			attribute.String("message.recipient", msg.Recipient),
		))
	defer span.End()

	res := c.channel.Send(ctx, msg)

	if res.Success {
		span.SetAttributes(attribute.String("message.id", res.MessageID))
	} else {
		span.SetStatus(codes.Error, res.ErrorMessage)
		span.SetAttributes(attribute.String("message.errorCode", res.ErrorCode))
	}

	return res
}

// Close 透传底层发送器的资源释放
func (c *Channel) Close() error {
	channel.Release(c.channel)
	return nil
}
