package channel

import (
	"context"

	"gitee.com/flycash/notification-gateway/internal/domain"
)

// Channel 协议发送器接口。Send 永远不返回 error：
// 所有失败都被捕获进 SendResult 的 errorCode/errorMessage。
type Channel interface {
	// Send 通过该协议发送一条消息
	Send(ctx context.Context, msg domain.Message) domain.SendResult
}

// Release 释放发送器持有的资源。发送器不一定持有连接，
// 调度流水线在处理完一个任务后统一调用。
func Release(ch Channel) {
	if closer, ok := ch.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
