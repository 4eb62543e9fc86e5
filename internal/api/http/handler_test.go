package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/pkg/ratelimit"
	"gitee.com/flycash/notification-gateway/internal/service/channel"
	"gitee.com/flycash/notification-gateway/internal/service/testsend"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	tasks []domain.SendTask
	err   error
}

func (f *fakeProducer) Produce(_ context.Context, task domain.SendTask) error {
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, task)
	return nil
}

type fakeRecordRepo struct {
	records []domain.SendRecord
}

func (f *fakeRecordRepo) Create(_ context.Context, record domain.SendRecord) error {
	f.records = append(f.records, record)
	return nil
}

func (f *fakeRecordRepo) FindByTaskID(_ context.Context, taskID string) ([]domain.SendRecord, error) {
	var out []domain.SendRecord
	for _, r := range f.records {
		if r.TaskID == taskID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) List(_ context.Context, _, _ int) ([]domain.SendRecord, error) {
	return f.records, nil
}

type fakeChannelRepo struct {
	created []domain.Channel
}

func (f *fakeChannelRepo) FindByID(_ context.Context, id int64) (domain.Channel, error) {
	return domain.Channel{ID: id}, nil
}

func (f *fakeChannelRepo) Create(_ context.Context, c domain.Channel) (domain.Channel, error) {
	c.ID = int64(len(f.created) + 1)
	f.created = append(f.created, c)
	return c, nil
}

func (f *fakeChannelRepo) Update(_ context.Context, _ domain.Channel) error { return nil }

func (f *fakeChannelRepo) List(_ context.Context) ([]domain.Channel, error) {
	return f.created, nil
}

type fakeTemplateRepo struct{}

func (f *fakeTemplateRepo) FindByCode(_ context.Context, code string) (domain.Template, error) {
	return domain.Template{ID: 1, Code: code}, nil
}

func (f *fakeTemplateRepo) FindContent(_ context.Context, _ int64, _ domain.Language) (string, error) {
	return "内容", nil
}

func (f *fakeTemplateRepo) Create(_ context.Context, t domain.Template) (domain.Template, error) {
	t.ID = 1
	return t, nil
}

func (f *fakeTemplateRepo) CreateLanguageTemplate(_ context.Context, lt domain.LanguageTemplate) (domain.LanguageTemplate, error) {
	lt.ID = 1
	return lt, nil
}

type okSender struct{}

func (okSender) Send(_ context.Context, _ domain.Message) domain.SendResult {
	return domain.SuccessResult("test-1")
}

type testEnv struct {
	engine   *gin.Engine
	auth     *JwtAuth
	producer *fakeProducer
	records  *fakeRecordRepo
	channels *fakeChannelRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth := NewJwtAuth("test-signing-key")
	producer := &fakeProducer{}
	records := &fakeRecordRepo{}
	channels := &fakeChannelRepo{}
	testSendSvc := testsend.NewServiceWithBuilder(
		testsend.NewTempConfigStore(),
		ratelimit.NewLocalFixedWindowLimiter(time.Minute, 1),
		func(_ domain.ChannelType, _ map[string]any) (channel.Channel, error) {
			return okSender{}, nil
		})
	h := NewHandler(producer, testSendSvc, records, channels, &fakeTemplateRepo{},
		ratelimit.NewLocalFixedWindowLimiter(time.Minute, 100), auth)

	engine := gin.New()
	h.RegisterRoutes(engine)
	return &testEnv{engine: engine, auth: auth, producer: producer, records: records, channels: channels}
}

func (e *testEnv) token(t *testing.T, uid int64, role string) string {
	t.Helper()
	token, err := e.auth.Encode(jwt.MapClaims{"uid": uid, "role": role})
	require.NoError(t, err)
	return "Bearer " + token
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	recorder := httptest.NewRecorder()
	e.engine.ServeHTTP(recorder, req)
	return recorder
}

func submitBody() map[string]any {
	return map[string]any{
		"templateCode": "ORDER_SHIPPED",
		"languageCode": "zh-CN",
		"params":       map[string]string{"name": "张三"},
		"channelId":    1,
		"recipients":   []string{"a@example.com"},
	}
}

func TestSubmit(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)

	t.Run("匿名请求拒绝", func(t *testing.T) {
		resp := env.do(http.MethodPost, "/api/submit", "", submitBody())
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("正常提交返回任务ID", func(t *testing.T) {
		resp := env.do(http.MethodPost, "/api/submit", env.token(t, 1, "USER"), submitBody())
		require.Equal(t, http.StatusOK, resp.Code)

		var result Result
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
		assert.True(t, result.Success)
		taskID := result.Data.(map[string]any)["taskId"].(string)
		assert.NotEmpty(t, taskID)

		require.Len(t, env.producer.tasks, 1)
		assert.Equal(t, taskID, env.producer.tasks[0].TaskID)
		assert.Equal(t, "ORDER_SHIPPED", env.producer.tasks[0].TemplateCode)
		assert.Equal(t, []string{"a@example.com"}, env.producer.tasks[0].Recipients)
		assert.NotZero(t, env.producer.tasks[0].SubmittedAt)
	})

	t.Run("缺字段返回400", func(t *testing.T) {
		body := submitBody()
		delete(body, "templateCode")
		resp := env.do(http.MethodPost, "/api/submit", env.token(t, 1, "USER"), body)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("无效令牌返回401", func(t *testing.T) {
		resp := env.do(http.MethodPost, "/api/submit", "Bearer 不是令牌", submitBody())
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

func TestTestSendEndpoint(t *testing.T) {
	t.Parallel()
	body := map[string]any{
		"channelType": "EMAIL",
		"properties":  map[string]any{"type": "SMTP"},
		"target":      "qa@example.com",
		"content":     "测试",
	}

	t.Run("管理员试发成功", func(t *testing.T) {
		env := newTestEnv(t)
		resp := env.do(http.MethodPost, "/api/channels/test-send", env.token(t, 1, "ADMIN"), body)
		require.Equal(t, http.StatusOK, resp.Code)

		var res domain.SendResult
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
		assert.True(t, res.Success)
		assert.Equal(t, "test-1", res.MessageID)
	})

	t.Run("匿名返回401", func(t *testing.T) {
		env := newTestEnv(t)
		resp := env.do(http.MethodPost, "/api/channels/test-send", "", body)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("只读角色返回403", func(t *testing.T) {
		env := newTestEnv(t)
		resp := env.do(http.MethodPost, "/api/channels/test-send", env.token(t, 2, "VIEWER"), body)
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("限流返回429", func(t *testing.T) {
		env := newTestEnv(t)
		token := env.token(t, 3, "USER")
		first := env.do(http.MethodPost, "/api/channels/test-send", token, body)
		require.Equal(t, http.StatusOK, first.Code)
		second := env.do(http.MethodPost, "/api/channels/test-send", token, body)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
	})

	t.Run("未知渠道类型返回400", func(t *testing.T) {
		env := newTestEnv(t)
		bad := map[string]any{
			"channelType": "FAX",
			"properties":  map[string]any{},
			"content":     "测试",
		}
		resp := env.do(http.MethodPost, "/api/channels/test-send", env.token(t, 1, "ADMIN"), bad)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestListRecords(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	env.records.records = []domain.SendRecord{
		{ID: 1, TaskID: "task-1", Recipient: "a@example.com", Status: domain.SendRecordStatusSuccess},
		{ID: 2, TaskID: "task-2", Recipient: "b@example.com", Status: domain.SendRecordStatusFailed},
	}

	t.Run("按任务ID过滤", func(t *testing.T) {
		resp := env.do(http.MethodGet, "/api/send-records?taskId=task-1", env.token(t, 1, "USER"), nil)
		require.Equal(t, http.StatusOK, resp.Code)

		var result Result
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
		views := result.Data.([]any)
		require.Len(t, views, 1)
		assert.Equal(t, "task-1", views[0].(map[string]any)["taskId"])
	})

	t.Run("匿名返回401", func(t *testing.T) {
		resp := env.do(http.MethodGet, "/api/send-records", "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})
}

func TestChannelAdmin(t *testing.T) {
	t.Parallel()
	body := map[string]any{
		"name":       "运营邮件",
		"type":       "EMAIL",
		"properties": map[string]any{"type": "SMTP", "host": "smtp.example.com"},
		"enabled":    true,
	}

	t.Run("普通用户不能建渠道", func(t *testing.T) {
		env := newTestEnv(t)
		resp := env.do(http.MethodPost, "/api/channels", env.token(t, 1, "USER"), body)
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("管理员创建渠道", func(t *testing.T) {
		env := newTestEnv(t)
		resp := env.do(http.MethodPost, "/api/channels", env.token(t, 1, "ADMIN"), body)
		require.Equal(t, http.StatusOK, resp.Code)
		require.Len(t, env.channels.created, 1)
		assert.Equal(t, domain.ChannelTypeEmail, env.channels.created[0].Type)
	})
}
