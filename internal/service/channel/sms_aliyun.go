package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	dysmsapi "github.com/alibabacloud-go/dysmsapi-20170525/v4/client"
	"github.com/alibabacloud-go/tea/tea"
)

const aliyunSMSOK = "OK"

// aliyunSMSChannel 阿里云短信发送器。整条渲染后的内容塞进单变量模板，
// 模板在阿里云控制台预先报备。
type aliyunSMSChannel struct {
	cfg    *AliyunSMSConfig
	client *dysmsapi.Client
	retry  retryPolicy
}

func newAliyunSMSChannel(cfg *AliyunSMSConfig) (*aliyunSMSChannel, error) {
	oc := &openapi.Config{
		AccessKeyId:     tea.String(cfg.AccessKeyID),
		AccessKeySecret: tea.String(cfg.AccessKeySecret),
		Endpoint:        tea.String("dysmsapi.aliyuncs.com"),
		ConnectTimeout:  tea.Int(int(cfg.Timeout.Milliseconds())),
		ReadTimeout:     tea.Int(int(cfg.Timeout.Milliseconds())),
	}
	if cfg.RegionID != "" {
		oc.RegionId = tea.String(cfg.RegionID)
	}
	cli, err := dysmsapi.NewClient(oc)
	if err != nil {
		return nil, fmt.Errorf("%w: 创建阿里云短信客户端失败: %w", errs.ErrInvalidConfig, err)
	}
	return &aliyunSMSChannel{
		cfg:    cfg,
		client: cli,
		retry:  retryPolicy{maxRetries: cfg.MaxRetries, delay: cfg.RetryDelay},
	}, nil
}

func (c *aliyunSMSChannel) Send(ctx context.Context, msg domain.Message) domain.SendResult {
	param, err := json.Marshal(map[string]string{c.cfg.TemplateParamKey: msg.Content})
	if err != nil {
		return domain.FailureResult(errs.CodeInvalidRequest, "短信模板参数序列化失败: "+err.Error())
	}
	req := &dysmsapi.SendSmsRequest{
		PhoneNumbers:  tea.String(msg.Recipient),
		SignName:      tea.String(c.cfg.SignName),
		TemplateCode:  tea.String(c.cfg.TemplateCode),
		TemplateParam: tea.String(string(param)),
	}
	return c.retry.do(ctx, func(_ context.Context) (domain.SendResult, bool) {
		resp, err := c.client.SendSms(req)
		if err != nil {
			code, retryable := classifyTransportError(err)
			return domain.FailureResult(code, err.Error()), retryable
		}
		if resp.Body == nil || resp.Body.Code == nil {
			return domain.FailureResult(errs.CodeAliyunSMSError, "响应异常"), false
		}
		bizCode := tea.StringValue(resp.Body.Code)
		if bizCode != aliyunSMSOK {
			detail := fmt.Sprintf("%s: %s", bizCode, tea.StringValue(resp.Body.Message))
			return domain.FailureResult(categorizeAliyunCode(bizCode), detail), aliyunThrottled(bizCode)
		}
		return domain.SuccessResult(tea.StringValue(resp.Body.BizId)), false
	})
}

// 限流类业务码是瞬时的，其余业务码重试也是同样的结果
func aliyunThrottled(code string) bool {
	return strings.Contains(code, "LIMIT_CONTROL") || strings.Contains(code, "Throttling")
}

func categorizeAliyunCode(code string) string {
	switch {
	case aliyunThrottled(code):
		return errs.CodeRateLimitExceeded
	case strings.Contains(code, "InvalidAccessKeyId") || strings.Contains(code, "SignatureDoesNotMatch"):
		return errs.CodeAuthenticationFailed
	default:
		return errs.CodeAliyunSMSError
	}
}
