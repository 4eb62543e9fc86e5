package channel

import (
	"context"
	"time"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
)

// retryPolicy 固定间隔重试。maxRetries 是重试次数而不是总次数，
// 总尝试次数为 maxRetries+1，maxRetries=0 表示只试一次。
type retryPolicy struct {
	maxRetries int
	delay      time.Duration
}

// do 执行 op 直到成功、遇到不可重试的失败或次数耗尽。
// op 返回本次结果和是否值得重试。重试等待期间上下文被取消时
// 立刻中断，结果码为 SEND_INTERRUPTED。
func (p retryPolicy) do(ctx context.Context, op func(ctx context.Context) (domain.SendResult, bool)) domain.SendResult {
	for attempt := 0; ; attempt++ {
		res, retryable := op(ctx)
		if res.Success || !retryable || attempt >= p.maxRetries {
			return res
		}
		timer := time.NewTimer(p.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return domain.FailureResult(errs.CodeSendInterrupted, "重试等待被中断: "+ctx.Err().Error())
		case <-timer.C:
		}
	}
}
