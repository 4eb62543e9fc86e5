package channel

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/net/http2"
)

const (
	apnsProductionHost = "https://api.push.apple.com"
	apnsSandboxHost    = "https://api.sandbox.push.apple.com"
	apnsDevicePath     = "/3/device/"
	apnsTokenTTL       = time.Hour
)

// apnsChannel 苹果 APNs HTTP/2 推送发送器。
// 每次发送前用 p8 私钥现签一个 ES256 JWT，不做进程级缓存。
// 业务失败（含 5xx）直接定论，只有传输层错误才按配置重试。
type apnsChannel struct {
	cfg    *APNsConfig
	client *http.Client
	retry  retryPolicy
}

func newAPNsChannel(cfg *APNsConfig) *apnsChannel {
	return &apnsChannel{
		cfg: cfg,
		client: &http.Client{
			Transport: &http2.Transport{},
			Timeout:   cfg.Timeout,
		},
		retry: retryPolicy{maxRetries: cfg.MaxRetries, delay: cfg.RetryDelay},
	}
}

func (c *apnsChannel) Send(ctx context.Context, msg domain.Message) domain.SendResult {
	if strings.TrimSpace(msg.Recipient) == "" {
		return domain.FailureResult(errs.CodeInvalidRequest, "设备 token 不能为空")
	}
	key, err := c.loadPrivateKey()
	if err != nil {
		return domain.FailureResult(errs.CodeInvalidConfig, "加载 APNs 私钥失败: "+err.Error())
	}
	token, err := c.signToken(key)
	if err != nil {
		return domain.FailureResult(errs.CodeInvalidConfig, "签发 APNs 令牌失败: "+err.Error())
	}

	alert := map[string]string{"body": msg.Content}
	if strings.TrimSpace(msg.Subject) != "" {
		alert["title"] = msg.Subject
	}
	payload, err := json.Marshal(map[string]any{
		"aps": map[string]any{"alert": alert, "sound": "default"},
	})
	if err != nil {
		return domain.FailureResult(errs.CodeInvalidRequest, "构建推送负载失败: "+err.Error())
	}

	host := apnsSandboxHost
	if c.cfg.Production {
		host = apnsProductionHost
	}
	url := host + apnsDevicePath + msg.Recipient

	return c.retry.do(ctx, func(ctx context.Context) (domain.SendResult, bool) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return domain.FailureResult(errs.CodeInvalidRequest, err.Error()), false
		}
		req.Header.Set("authorization", "bearer "+token)
		req.Header.Set("apns-topic", c.cfg.BundleID)
		req.Header.Set("apns-push-type", "alert")
		req.Header.Set("apns-priority", "10")
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			code, retryable := classifyTransportError(err)
			return domain.FailureResult(code, err.Error()), retryable
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode == http.StatusOK {
			apnsID := resp.Header.Get("apns-id")
			if apnsID == "" {
				apnsID = "ok"
			}
			return domain.SuccessResult(apnsID), false
		}
		reason, _ := io.ReadAll(resp.Body)
		return domain.FailureResult(
			categorizeAPNsStatus(resp.StatusCode),
			fmt.Sprintf("APNs %d: %s", resp.StatusCode, reason),
		), false
	})
}

func (c *apnsChannel) loadPrivateKey() (*ecdsa.PrivateKey, error) {
	content := c.cfg.P8KeyContent
	if strings.TrimSpace(content) == "" {
		raw, err := os.ReadFile(c.cfg.P8KeyPath)
		if err != nil {
			return nil, err
		}
		content = string(raw)
	}
	block, _ := pem.Decode([]byte(content))
	if block == nil {
		return nil, fmt.Errorf("p8 私钥不是合法的 PEM")
	}
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("p8 私钥不是 EC 密钥")
	}
	return key, nil
}

func (c *apnsChannel) signToken(key *ecdsa.PrivateKey) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodES256, jwt.MapClaims{
		"iss": c.cfg.TeamID,
		"iat": now.Unix(),
		"exp": now.Add(apnsTokenTTL).Unix(),
	})
	token.Header["kid"] = c.cfg.KeyID
	return token.SignedString(key)
}

// 404/410 是设备 token 专属语义，区别于通用分类
func categorizeAPNsStatus(status int) string {
	switch {
	case status == http.StatusNotFound:
		return errs.CodeInvalidDeviceToken
	case status == http.StatusGone:
		return errs.CodeDeviceTokenInactive
	default:
		return categorizeStatus(status, errs.CodeAPNsSendFailed)
	}
}
