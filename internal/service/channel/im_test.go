package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruncateToUTF8Bytes(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		input    string
		maxBytes int
		want     string
	}{
		{name: "不超限原样返回", input: "hello", maxBytes: 10, want: "hello"},
		{name: "ASCII刚好在边界", input: "hello", maxBytes: 5, want: "hello"},
		{name: "ASCII截断", input: "hello world", maxBytes: 5, want: "hello"},
		{name: "中文不切碎字符", input: "你好世界", maxBytes: 7, want: "你好"},
		{name: "中文落在字符边界", input: "你好世界", maxBytes: 6, want: "你好"},
		{name: "空串", input: "", maxBytes: 5, want: ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := truncateToUTF8Bytes(tc.input, tc.maxBytes)
			assert.Equal(t, tc.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), tc.maxBytes)
		})
	}
}

func TestTruncateToUTF8Bytes_LongChineseContent(t *testing.T) {
	t.Parallel()
	// 3000 字节的纯中文内容，截断后必须仍是合法 UTF-8
	content := strings.Repeat("好", 1000)
	got := truncateToUTF8Bytes(content, wechatWorkContentLimit)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), wechatWorkContentLimit)
	// 每个字符 3 字节，2048/3=682 个完整字符
	assert.Len(t, got, 2046)
}

func TestBuildIMContent(t *testing.T) {
	t.Parallel()
	t.Run("有主题时加书名号前缀", func(t *testing.T) {
		t.Parallel()
		got := buildIMContent(domain.Message{Subject: "告警", Content: "磁盘快满了"})
		assert.Equal(t, "【告警】\n磁盘快满了", got)
	})
	t.Run("没有主题时原样返回", func(t *testing.T) {
		t.Parallel()
		got := buildIMContent(domain.Message{Content: "磁盘快满了"})
		assert.Equal(t, "磁盘快满了", got)
	})
}

func TestDingTalkChannel_Send(t *testing.T) {
	t.Parallel()
	t.Run("errcode为0发送成功", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "text", body["msgtype"])
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"errcode":0,"errmsg":"ok","msgId":"dt-1"}`))
		}))
		defer server.Close()

		ch := newDingTalkChannel(&DingTalkConfig{
			WebhookURL: server.URL,
			Timeout:    time.Second,
			RetryDelay: time.Millisecond,
		})
		res := ch.Send(context.Background(), domain.Message{Subject: "告警", Content: "磁盘快满了"})
		assert.True(t, res.Success)
		assert.Equal(t, "dt-1", res.MessageID)
	})

	t.Run("errcode非0按业务失败处理", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"errcode":310000,"errmsg":"keywords not in content"}`))
		}))
		defer server.Close()

		ch := newDingTalkChannel(&DingTalkConfig{
			WebhookURL: server.URL,
			Timeout:    time.Second,
			RetryDelay: time.Millisecond,
		})
		res := ch.Send(context.Background(), domain.Message{Content: "hello"})
		assert.False(t, res.Success)
		assert.Equal(t, errs.CodeDingTalkAPIError, res.ErrorCode)
		assert.Contains(t, res.ErrorMessage, "310000")
	})
}

func TestWeChatWorkChannel_SendTruncatesContent(t *testing.T) {
	t.Parallel()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			MsgType string `json:"msgtype"`
			Text    struct {
				Content string `json:"content"`
			} `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		// 落到线上的内容必须满足官方 2048 字节上限且是合法 UTF-8
		assert.LessOrEqual(t, len(body.Text.Content), wechatWorkContentLimit)
		assert.True(t, utf8.ValidString(body.Text.Content))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errcode":0,"errmsg":"ok"}`))
	}))
	defer server.Close()

	ch := newWeChatWorkChannel(&WeChatWorkConfig{
		WebhookURL: server.URL,
		Timeout:    time.Second,
		RetryDelay: time.Millisecond,
	})
	res := ch.Send(context.Background(), domain.Message{
		Subject: "周报",
		Content: strings.Repeat("进展顺利。", 300),
	})
	assert.True(t, res.Success)
	assert.Equal(t, "ok", res.MessageID)
}
