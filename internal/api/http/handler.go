package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	"gitee.com/flycash/notification-gateway/internal/event/task"
	"gitee.com/flycash/notification-gateway/internal/pkg/ratelimit"
	"gitee.com/flycash/notification-gateway/internal/repository"
	"gitee.com/flycash/notification-gateway/internal/service/testsend"
	"github.com/gin-gonic/gin"
	"github.com/gofrs/uuid"
	"github.com/gotomicro/ego/core/elog"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Handler 网关对外的 HTTP 接口：提交发送、测试发送、审计查询、渠道和模板管理
type Handler struct {
	producer task.Producer
	testSend *testsend.Service
	records  repository.SendRecordRepository
	channels repository.ChannelRepository
	tpls     repository.TemplateRepository
	limiter  ratelimit.Limiter
	auth     *JwtAuth
	logger   *elog.Component
}

func NewHandler(producer task.Producer,
	testSend *testsend.Service,
	records repository.SendRecordRepository,
	channels repository.ChannelRepository,
	tpls repository.TemplateRepository,
	limiter ratelimit.Limiter,
	auth *JwtAuth) *Handler {
	return &Handler{
		producer: producer,
		testSend: testSend,
		records:  records,
		channels: channels,
		tpls:     tpls,
		limiter:  limiter,
		auth:     auth,
		logger:   elog.DefaultLogger,
	}
}

// RegisterRoutes 注册全部路由
func (h *Handler) RegisterRoutes(engine *gin.Engine) {
	api := engine.Group("/api", h.auth.Middleware())
	api.POST("/submit", h.Submit)
	api.GET("/send-records", h.ListRecords)
	api.POST("/channels/test-send", h.TestSend)
	api.POST("/channels", h.CreateChannel)
	api.PUT("/channels/:id", h.UpdateChannel)
	api.GET("/channels", h.ListChannels)
	api.POST("/templates", h.CreateTemplate)
	api.POST("/templates/:id/languages", h.CreateLanguageTemplate)
}

type submitReq struct {
	TemplateCode string            `json:"templateCode" binding:"required"`
	LanguageCode string            `json:"languageCode" binding:"required"`
	Params       map[string]string `json:"params"`
	ChannelID    int64             `json:"channelId" binding:"required"`
	Recipients   []string          `json:"recipients" binding:"required"`
}

// Submit 接收一次发送请求，校验后生成任务ID并投递到任务队列
func (h *Handler) Submit(ctx *gin.Context) {
	user := principal(ctx)
	if user.UserID <= 0 {
		ctx.JSON(http.StatusUnauthorized, fail(errs.CodeAuthenticationFailed, "请先登录"))
		return
	}

	var req submitReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, fail(errs.CodeInvalidRequest, err.Error()))
		return
	}

	limited, err := h.limiter.Limit(ctx.Request.Context(), fmt.Sprintf("submit:%d", user.UserID))
	if err != nil {
		h.logger.Warn("提交限流判断失败", elog.FieldErr(err))
	} else if limited {
		ctx.JSON(http.StatusTooManyRequests, fail(errs.CodeRateLimitExceeded, "提交过于频繁"))
		return
	}

	sendTask := domain.SendTask{
		TaskID:       uuid.Must(uuid.NewV4()).String(),
		TemplateCode: req.TemplateCode,
		LanguageCode: req.LanguageCode,
		Params:       req.Params,
		ChannelID:    req.ChannelID,
		Recipients:   req.Recipients,
		SubmittedAt:  time.Now().UnixMilli(),
	}
	if err := sendTask.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, fail(errs.CodeInvalidRequest, err.Error()))
		return
	}

	if err := h.producer.Produce(ctx.Request.Context(), sendTask); err != nil {
		h.logger.Error("投递发送任务失败",
			elog.FieldErr(err),
			elog.String("taskId", sendTask.TaskID))
		ctx.JSON(http.StatusInternalServerError, fail(errs.CodeServerError, "任务投递失败"))
		return
	}
	ctx.JSON(http.StatusOK, ok(gin.H{"taskId": sendTask.TaskID}))
}

type testSendReq struct {
	ChannelType string         `json:"channelType" binding:"required"`
	Properties  map[string]any `json:"properties" binding:"required"`
	Target      string         `json:"target"`
	Content     string         `json:"content" binding:"required"`
}

// TestSend 用未落库的配置真实试发一条消息
func (h *Handler) TestSend(ctx *gin.Context) {
	var req testSendReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, fail(errs.CodeInvalidRequest, err.Error()))
		return
	}
	typ, err := domain.ParseChannelType(req.ChannelType)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, fail(errs.CodeInvalidRequest, err.Error()))
		return
	}

	res, err := h.testSend.TestSend(ctx.Request.Context(), principal(ctx),
		typ, req.Properties, req.Target, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrUnauthorized):
			ctx.JSON(http.StatusUnauthorized, fail(errs.CodeAuthenticationFailed, err.Error()))
		case errors.Is(err, errs.ErrForbidden):
			ctx.JSON(http.StatusForbidden, fail(errs.CodeAuthenticationFailed, err.Error()))
		case errors.Is(err, errs.ErrRateLimited):
			ctx.JSON(http.StatusTooManyRequests, fail(errs.CodeRateLimitExceeded, err.Error()))
		default:
			ctx.JSON(http.StatusInternalServerError, fail(errs.CodeTestSendFailed, err.Error()))
		}
		return
	}
	// 发送结果原样返回，失败也是 200，由 body 里的 success 区分
	ctx.JSON(http.StatusOK, res)
}

// ListRecords 审计记录查询，带 taskId 时查整个任务，否则按提交时间倒序分页
func (h *Handler) ListRecords(ctx *gin.Context) {
	if user := principal(ctx); user.UserID <= 0 {
		ctx.JSON(http.StatusUnauthorized, fail(errs.CodeAuthenticationFailed, "请先登录"))
		return
	}

	if taskID := ctx.Query("taskId"); taskID != "" {
		records, err := h.records.FindByTaskID(ctx.Request.Context(), taskID)
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, fail(errs.CodeServerError, err.Error()))
			return
		}
		ctx.JSON(http.StatusOK, ok(toRecordViews(records)))
		return
	}

	offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	records, err := h.records.List(ctx.Request.Context(), offset, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, fail(errs.CodeServerError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, ok(toRecordViews(records)))
}

type recordView struct {
	ID           int64  `json:"id,string"`
	TaskID       string `json:"taskId"`
	TemplateCode string `json:"templateCode"`
	LanguageCode string `json:"languageCode"`
	Recipient    string `json:"recipient"`
	ChannelID    int64  `json:"channelId"`
	ChannelType  string `json:"channelType"`
	ChannelName  string `json:"channelName"`
	Status       string `json:"status"`
	MessageID    string `json:"messageId,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	SubmittedAt  int64  `json:"submittedAt"`
	SentAt       int64  `json:"sentAt"`
}

func toRecordViews(records []domain.SendRecord) []recordView {
	views := make([]recordView, 0, len(records))
	for _, r := range records {
		views = append(views, recordView{
			ID:           r.ID,
			TaskID:       r.TaskID,
			TemplateCode: r.TemplateCode,
			LanguageCode: r.LanguageCode,
			Recipient:    r.Recipient,
			ChannelID:    r.ChannelID,
			ChannelType:  string(r.ChannelType),
			ChannelName:  r.ChannelName,
			Status:       string(r.Status),
			MessageID:    r.MessageID,
			ErrorCode:    r.ErrorCode,
			ErrorMessage: r.ErrorMessage,
			SubmittedAt:  r.SubmittedAt,
			SentAt:       r.SentAt,
		})
	}
	return views
}
