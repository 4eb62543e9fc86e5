package channel

import (
	"context"
	"fmt"
	"strings"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	"github.com/go-resty/resty/v2"
)

// robotResponse 钉钉和企业微信群机器人的响应体结构一致
type robotResponse struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
	MsgID   string `json:"msgId"`
}

// buildIMContent 有主题时加【主题】前缀，群里一眼能看出消息来源
func buildIMContent(msg domain.Message) string {
	if strings.TrimSpace(msg.Subject) == "" {
		return msg.Content
	}
	return "【" + msg.Subject + "】\n" + msg.Content
}

func textMessageBody(content string) map[string]any {
	return map[string]any{
		"msgtype": "text",
		"text":    map[string]string{"content": content},
	}
}

// dingTalkChannel 钉钉群机器人发送器
type dingTalkChannel struct {
	cfg    *DingTalkConfig
	client *resty.Client
	retry  retryPolicy
}

func newDingTalkChannel(cfg *DingTalkConfig) *dingTalkChannel {
	return &dingTalkChannel{
		cfg:    cfg,
		client: resty.New().SetTimeout(cfg.Timeout),
		retry:  retryPolicy{maxRetries: cfg.MaxRetries, delay: cfg.RetryDelay},
	}
}

func (c *dingTalkChannel) Send(ctx context.Context, msg domain.Message) domain.SendResult {
	body := textMessageBody(buildIMContent(msg))
	return c.retry.do(ctx, func(ctx context.Context) (domain.SendResult, bool) {
		return postRobot(ctx, c.client, c.cfg.WebhookURL, body,
			errs.CodeDingTalkAPIError, errs.CodeDingTalkSendFailed)
	})
}

// weChatWorkChannel 企业微信群机器人发送器
type weChatWorkChannel struct {
	cfg    *WeChatWorkConfig
	client *resty.Client
	retry  retryPolicy
}

func newWeChatWorkChannel(cfg *WeChatWorkConfig) *weChatWorkChannel {
	return &weChatWorkChannel{
		cfg:    cfg,
		client: resty.New().SetTimeout(cfg.Timeout),
		retry:  retryPolicy{maxRetries: cfg.MaxRetries, delay: cfg.RetryDelay},
	}
}

const wechatWorkContentLimit = 2048

func (c *weChatWorkChannel) Send(ctx context.Context, msg domain.Message) domain.SendResult {
	// 官方要求：content 最长不超过 2048 个字节，必须是 UTF-8 编码
	content := truncateToUTF8Bytes(buildIMContent(msg), wechatWorkContentLimit)
	body := textMessageBody(content)
	return c.retry.do(ctx, func(ctx context.Context) (domain.SendResult, bool) {
		return postRobot(ctx, c.client, c.cfg.WebhookURL, body,
			errs.CodeWeChatWorkAPIError, errs.CodeWeChatWorkSendFailed)
	})
}

// truncateToUTF8Bytes 按字节数截断但不切碎多字节字符：
// 超限时从截断点往回扫过所有 UTF-8 续字节（10xxxxxx），落在字符边界上
func truncateToUTF8Bytes(s string, maxBytes int) string {
	b := []byte(s)
	if len(b) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && (b[cut]&0xC0) == 0x80 {
		cut--
	}
	return string(b[:cut])
}

func postRobot(ctx context.Context, client *resty.Client, webhookURL string, body map[string]any, apiErrCode, fallbackCode string) (domain.SendResult, bool) {
	var out robotResponse
	resp, err := client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		Post(webhookURL)
	if err != nil {
		code, retryable := classifyTransportError(err)
		return domain.FailureResult(code, err.Error()), retryable
	}
	if resp.IsError() {
		status := resp.StatusCode()
		return domain.FailureResult(
			categorizeStatus(status, fallbackCode),
			fmt.Sprintf("HTTP %d: %s", status, resp.String()),
		), retryableStatus(status)
	}
	// 机器人接口 HTTP 永远 200，业务失败只体现在 errcode 上
	if out.ErrCode != 0 {
		return domain.FailureResult(apiErrCode, fmt.Sprintf("errcode=%d: %s", out.ErrCode, out.ErrMsg)), false
	}
	if out.MsgID == "" {
		out.MsgID = "ok"
	}
	return domain.SuccessResult(out.MsgID), false
}
