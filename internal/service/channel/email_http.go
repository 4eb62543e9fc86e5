package channel

import (
	"context"
	"fmt"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	"github.com/go-resty/resty/v2"
)

// httpEmailChannel 走第三方邮件 API 的 HTTP 发送器
type httpEmailChannel struct {
	cfg    *HTTPEmailConfig
	client *resty.Client
	retry  retryPolicy
}

func newHTTPEmailChannel(cfg *HTTPEmailConfig) *httpEmailChannel {
	return &httpEmailChannel{
		cfg:    cfg,
		client: resty.New().SetBaseURL(cfg.BaseURL).SetTimeout(cfg.Timeout),
		retry:  retryPolicy{maxRetries: cfg.MaxRetries, delay: cfg.RetryDelay},
	}
}

func (c *httpEmailChannel) Send(ctx context.Context, msg domain.Message) domain.SendResult {
	payload := map[string]any{
		"from":    c.cfg.From,
		"to":      msg.Recipient,
		"subject": msg.Subject,
		"content": msg.Content,
	}
	// 扩展属性合并进请求体，固定字段不允许被覆盖
	for k, v := range msg.Attributes {
		if _, ok := payload[k]; !ok {
			payload[k] = v
		}
	}
	return c.retry.do(ctx, func(ctx context.Context) (domain.SendResult, bool) {
		var out struct {
			MessageID string `json:"messageId"`
		}
		resp, err := c.client.R().
			SetContext(ctx).
			SetHeader(c.cfg.APIKeyHeader, c.cfg.APIKey).
			SetBody(payload).
			SetResult(&out).
			Post(c.cfg.Path)
		if err != nil {
			code, retryable := classifyTransportError(err)
			return domain.FailureResult(code, err.Error()), retryable
		}
		if resp.IsError() {
			status := resp.StatusCode()
			return domain.FailureResult(
				categorizeStatus(status, errs.CodeMailSendFailed),
				fmt.Sprintf("HTTP %d: %s", status, resp.String()),
			), retryableStatus(status)
		}
		if out.MessageID == "" {
			out.MessageID = "ok"
		}
		return domain.SuccessResult(out.MessageID), false
	})
}
