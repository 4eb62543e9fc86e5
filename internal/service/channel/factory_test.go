package channel

import (
	"testing"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unknownConfig struct{}

func (unknownConfig) Protocol() Protocol { return Protocol("UNKNOWN") }

func TestNewChannel(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name string
		cfg  Config
	}{
		{name: "SMTP邮件", cfg: &SMTPEmailConfig{Host: "h", Port: 25, Username: "u", Password: "p"}},
		{name: "HTTP邮件", cfg: &HTTPEmailConfig{BaseURL: "https://mail.example.com", Path: "/send", APIKeyHeader: "X-Api-Key", APIKey: "k"}},
		{name: "钉钉", cfg: &DingTalkConfig{WebhookURL: "https://oapi.dingtalk.com/robot/send?access_token=x"}},
		{name: "企业微信", cfg: &WeChatWorkConfig{WebhookURL: "https://qyapi.weixin.qq.com/cgi-bin/webhook/send?key=x"}},
		{name: "APNs", cfg: &APNsConfig{KeyID: "k", TeamID: "t", BundleID: "b", P8KeyPath: "/etc/apns/key.p8"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ch, err := NewChannel(tc.cfg)
			require.NoError(t, err)
			assert.NotNil(t, ch)
		})
	}
}

func TestNewChannel_Unsupported(t *testing.T) {
	t.Parallel()
	_, err := NewChannel(unknownConfig{})
	assert.ErrorIs(t, err, errs.ErrUnsupportedConfig)
}

func TestBuild(t *testing.T) {
	t.Parallel()
	t.Run("归一化加构造一步到位", func(t *testing.T) {
		t.Parallel()
		ch, err := Build(domain.ChannelTypeIM, map[string]any{
			"type":       "DINGTALK",
			"webhookUrl": "https://oapi.dingtalk.com/robot/send?access_token=x",
		})
		require.NoError(t, err)
		assert.NotNil(t, ch)
	})
	t.Run("配置不合法直接失败", func(t *testing.T) {
		t.Parallel()
		_, err := Build(domain.ChannelTypeIM, map[string]any{"type": "DINGTALK"})
		assert.ErrorIs(t, err, errs.ErrInvalidConfig)
	})
}

func TestRelease(t *testing.T) {
	t.Parallel()
	// 不持有连接的发送器 Release 是空操作，不应该崩
	ch := newDingTalkChannel(&DingTalkConfig{WebhookURL: "https://example.com"})
	assert.NotPanics(t, func() { Release(ch) })
}
