package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	fcmScope   = "https://www.googleapis.com/auth/firebase.messaging"
	fcmSendURL = "https://fcm.googleapis.com/v1/projects/%s/messages:send"
)

// fcmChannel 谷歌 FCM HTTP v1 推送发送器。
// 访问令牌来自服务账号凭证的 TokenSource，过期自动刷新。
type fcmChannel struct {
	cfg       *FCMConfig
	client    *resty.Client
	tokens    oauth2.TokenSource
	projectID string
	retry     retryPolicy
}

func newFCMChannel(cfg *FCMConfig) (*fcmChannel, error) {
	creds, err := google.CredentialsFromJSON(context.Background(), []byte(cfg.ServiceAccountJSON), fcmScope)
	if err != nil {
		return nil, fmt.Errorf("%w: 解析 FCM 服务账号凭证失败: %w", errs.ErrInvalidConfig, err)
	}
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		projectID = creds.ProjectID
	}
	if projectID == "" {
		// 凭证库没解出来时直接从 JSON 里兜底读 project_id
		var sa struct {
			ProjectID string `json:"project_id"`
		}
		if err := json.Unmarshal([]byte(cfg.ServiceAccountJSON), &sa); err == nil {
			projectID = sa.ProjectID
		}
	}
	if projectID == "" {
		return nil, fmt.Errorf("%w: FCM projectId 未配置且服务账号 JSON 里没有 project_id", errs.ErrInvalidConfig)
	}
	return &fcmChannel{
		cfg:       cfg,
		client:    resty.New().SetTimeout(cfg.Timeout),
		tokens:    creds.TokenSource,
		projectID: projectID,
		retry:     retryPolicy{maxRetries: cfg.MaxRetries, delay: cfg.RetryDelay},
	}, nil
}

func (c *fcmChannel) Send(ctx context.Context, msg domain.Message) domain.SendResult {
	if strings.TrimSpace(msg.Recipient) == "" {
		return domain.FailureResult(errs.CodeInvalidRequest, "FCM token 不能为空")
	}
	notification := map[string]string{"body": msg.Content}
	if strings.TrimSpace(msg.Subject) != "" {
		notification["title"] = msg.Subject
	}
	body := map[string]any{
		"message": map[string]any{
			"token":        msg.Recipient,
			"notification": notification,
		},
	}
	url := fmt.Sprintf(fcmSendURL, c.projectID)

	return c.retry.do(ctx, func(ctx context.Context) (domain.SendResult, bool) {
		token, err := c.tokens.Token()
		if err != nil {
			return domain.FailureResult(errs.CodeAuthenticationFailed, "获取 FCM 访问令牌失败: "+err.Error()), false
		}
		var out struct {
			Name string `json:"name"`
		}
		resp, err := c.client.R().
			SetContext(ctx).
			SetAuthToken(token.AccessToken).
			SetBody(body).
			SetResult(&out).
			Post(url)
		if err != nil {
			code, retryable := classifyTransportError(err)
			return domain.FailureResult(code, err.Error()), retryable
		}
		if resp.IsError() {
			status := resp.StatusCode()
			return domain.FailureResult(
				categorizeFCMStatus(status),
				fmt.Sprintf("HTTP %d: %s", status, resp.String()),
			), retryableStatus(status)
		}
		if out.Name == "" {
			out.Name = "ok"
		}
		return domain.SuccessResult(out.Name), false
	})
}

// FCM 对已失效 token 返回 404 UNREGISTERED
func categorizeFCMStatus(status int) string {
	if status == http.StatusNotFound {
		return errs.CodeInvalidDeviceToken
	}
	return categorizeStatus(status, errs.CodeFCMSendFailed)
}
