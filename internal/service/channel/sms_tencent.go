package channel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	sdkerrors "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/errors"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	sms "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/sms/v20210111"
)

const tencentSMSOK = "Ok"

// tencentSMSChannel 腾讯云短信发送器
type tencentSMSChannel struct {
	cfg    *TencentSMSConfig
	client *sms.Client
	retry  retryPolicy
}

func newTencentSMSChannel(cfg *TencentSMSConfig) (*tencentSMSChannel, error) {
	credential := common.NewCredential(cfg.SecretID, cfg.SecretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.ReqTimeout = int(cfg.Timeout / time.Second)
	cli, err := sms.NewClient(credential, cfg.Region, cpf)
	if err != nil {
		return nil, fmt.Errorf("%w: 创建腾讯云短信客户端失败: %w", errs.ErrInvalidConfig, err)
	}
	return &tencentSMSChannel{
		cfg:    cfg,
		client: cli,
		retry:  retryPolicy{maxRetries: cfg.MaxRetries, delay: cfg.RetryDelay},
	}, nil
}

func (c *tencentSMSChannel) Send(ctx context.Context, msg domain.Message) domain.SendResult {
	req := sms.NewSendSmsRequest()
	req.PhoneNumberSet = common.StringPtrs([]string{msg.Recipient})
	req.SmsSdkAppId = common.StringPtr(c.cfg.SDKAppID)
	req.SignName = common.StringPtr(c.cfg.SignName)
	req.TemplateId = common.StringPtr(c.cfg.TemplateID)
	req.TemplateParamSet = common.StringPtrs([]string{msg.Content})

	return c.retry.do(ctx, func(ctx context.Context) (domain.SendResult, bool) {
		resp, err := c.client.SendSmsWithContext(ctx, req)
		if err != nil {
			var sdkErr *sdkerrors.TencentCloudSDKError
			if errors.As(err, &sdkErr) {
				return domain.FailureResult(categorizeTencentCode(sdkErr.Code), sdkErr.Message),
					tencentThrottled(sdkErr.Code)
			}
			code, retryable := classifyTransportError(err)
			return domain.FailureResult(code, err.Error()), retryable
		}
		if resp.Response == nil || len(resp.Response.SendStatusSet) == 0 {
			return domain.FailureResult(errs.CodeTencentSMSError, "响应异常"), false
		}
		status := resp.Response.SendStatusSet[0]
		bizCode := deref(status.Code)
		if bizCode != tencentSMSOK {
			detail := fmt.Sprintf("%s: %s", bizCode, deref(status.Message))
			return domain.FailureResult(categorizeTencentCode(bizCode), detail), tencentThrottled(bizCode)
		}
		return domain.SuccessResult(deref(status.SerialNo)), false
	})
}

func tencentThrottled(code string) bool {
	return strings.HasPrefix(code, "LimitExceeded") || strings.HasPrefix(code, "RequestLimitExceeded")
}

func categorizeTencentCode(code string) string {
	switch {
	case tencentThrottled(code):
		return errs.CodeRateLimitExceeded
	case strings.HasPrefix(code, "AuthFailure") || strings.HasPrefix(code, "UnauthorizedOperation"):
		return errs.CodeAuthenticationFailed
	case strings.HasPrefix(code, "InternalError"):
		return errs.CodeServerError
	default:
		return errs.CodeTencentSMSError
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
