package channel

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	mail "github.com/wneessen/go-mail"
)

// smtpEmailChannel 基于 go-mail 的 SMTP 邮件发送器
type smtpEmailChannel struct {
	cfg   *SMTPEmailConfig
	retry retryPolicy
}

func newSMTPEmailChannel(cfg *SMTPEmailConfig) *smtpEmailChannel {
	return &smtpEmailChannel{
		cfg:   cfg,
		retry: retryPolicy{maxRetries: cfg.MaxRetries, delay: cfg.RetryDelay},
	}
}

func (c *smtpEmailChannel) Send(ctx context.Context, msg domain.Message) domain.SendResult {
	m := mail.NewMsg()
	// 未配置发件人时用登录账号兜底
	from := c.cfg.From
	if strings.TrimSpace(from) == "" {
		from = c.cfg.Username
	}
	if err := m.From(from); err != nil {
		return domain.FailureResult(errs.CodeInvalidRequest, "发件人地址不合法: "+err.Error())
	}
	if err := m.To(msg.Recipient); err != nil {
		return domain.FailureResult(errs.CodeInvalidRequest, "收件人地址不合法: "+err.Error())
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Content)

	opts := []mail.Option{
		mail.WithPort(c.cfg.Port),
		mail.WithTimeout(c.cfg.ConnectionTimeout),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(c.cfg.Username),
		mail.WithPassword(c.cfg.Password),
	}
	if c.cfg.SSLEnabled {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	return c.retry.do(ctx, func(ctx context.Context) (domain.SendResult, bool) {
		client, err := mail.NewClient(c.cfg.Host, opts...)
		if err != nil {
			return domain.FailureResult(errs.CodeInvalidConfig, "创建 SMTP 客户端失败: "+err.Error()), false
		}
		sendCtx, cancel := context.WithTimeout(ctx, c.cfg.ReadTimeout)
		defer cancel()
		if err := client.DialAndSendWithContext(sendCtx, m); err != nil {
			return c.classify(err)
		}
		return domain.SuccessResult(fmt.Sprintf("smtp-%d", time.Now().UnixNano())), false
	})
}

func (c *smtpEmailChannel) classify(err error) (domain.SendResult, bool) {
	text := err.Error()
	// 535 认证失败是凭证问题，重试没有意义
	if strings.Contains(text, "535") || strings.Contains(strings.ToLower(text), "authentication") {
		return domain.FailureResult(errs.CodeAuthenticationFailed, text), false
	}
	code, retryable := classifyTransportError(err)
	return domain.FailureResult(code, text), retryable
}
