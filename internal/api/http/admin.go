package http

import (
	"net/http"
	"strconv"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	"github.com/gin-gonic/gin"
)

// 渠道和模板的管理接口，只开放给 ADMIN

func (h *Handler) requireAdmin(ctx *gin.Context) (domain.UserPrincipal, bool) {
	user := principal(ctx)
	if user.UserID <= 0 {
		ctx.JSON(http.StatusUnauthorized, fail(errs.CodeAuthenticationFailed, "请先登录"))
		return user, false
	}
	if user.Role != domain.UserRoleAdmin {
		ctx.JSON(http.StatusForbidden, fail(errs.CodeAuthenticationFailed, "仅管理员可操作"))
		return user, false
	}
	return user, true
}

type channelReq struct {
	Name       string         `json:"name" binding:"required"`
	Type       string         `json:"type" binding:"required"`
	Properties map[string]any `json:"properties" binding:"required"`
	Enabled    bool           `json:"enabled"`
}

type channelView struct {
	ID         int64          `json:"id"`
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Enabled    bool           `json:"enabled"`
}

func toChannelView(c domain.Channel) channelView {
	return channelView{
		ID:         c.ID,
		Name:       c.Name,
		Type:       string(c.Type),
		Properties: c.Properties,
		Enabled:    c.Enabled,
	}
}

// CreateChannel 创建渠道，敏感属性由仓储层加密落库
func (h *Handler) CreateChannel(ctx *gin.Context) {
	if _, pass := h.requireAdmin(ctx); !pass {
		return
	}
	var req channelReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, fail(errs.CodeInvalidRequest, err.Error()))
		return
	}
	typ, err := domain.ParseChannelType(req.Type)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, fail(errs.CodeInvalidRequest, err.Error()))
		return
	}
	created, err := h.channels.Create(ctx.Request.Context(), domain.Channel{
		Name:       req.Name,
		Type:       typ,
		Properties: req.Properties,
		Enabled:    req.Enabled,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, fail(errs.CodeServerError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, ok(toChannelView(created)))
}

// UpdateChannel 更新渠道配置
func (h *Handler) UpdateChannel(ctx *gin.Context) {
	if _, pass := h.requireAdmin(ctx); !pass {
		return
	}
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		ctx.JSON(http.StatusBadRequest, fail(errs.CodeInvalidRequest, "渠道ID不合法"))
		return
	}
	var req channelReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, fail(errs.CodeInvalidRequest, err.Error()))
		return
	}
	typ, err := domain.ParseChannelType(req.Type)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, fail(errs.CodeInvalidRequest, err.Error()))
		return
	}
	err = h.channels.Update(ctx.Request.Context(), domain.Channel{
		ID:         id,
		Name:       req.Name,
		Type:       typ,
		Properties: req.Properties,
		Enabled:    req.Enabled,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, fail(errs.CodeServerError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, ok(nil))
}

// ListChannels 列出全部渠道，属性已解密，只给管理员看
func (h *Handler) ListChannels(ctx *gin.Context) {
	if _, pass := h.requireAdmin(ctx); !pass {
		return
	}
	channels, err := h.channels.List(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, fail(errs.CodeServerError, err.Error()))
		return
	}
	views := make([]channelView, 0, len(channels))
	for _, c := range channels {
		views = append(views, toChannelView(c))
	}
	ctx.JSON(http.StatusOK, ok(views))
}

type templateReq struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CreateTemplate 创建模板元信息
func (h *Handler) CreateTemplate(ctx *gin.Context) {
	if _, pass := h.requireAdmin(ctx); !pass {
		return
	}
	var req templateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, fail(errs.CodeInvalidRequest, err.Error()))
		return
	}
	created, err := h.tpls.Create(ctx.Request.Context(), domain.Template{
		Code: req.Code,
		Name: req.Name,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, fail(errs.CodeServerError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, ok(gin.H{"id": created.ID, "code": created.Code}))
}

type languageTemplateReq struct {
	Language string `json:"language" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

// CreateLanguageTemplate 为模板新增一种语言的内容
func (h *Handler) CreateLanguageTemplate(ctx *gin.Context) {
	if _, pass := h.requireAdmin(ctx); !pass {
		return
	}
	templateID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || templateID <= 0 {
		ctx.JSON(http.StatusBadRequest, fail(errs.CodeInvalidRequest, "模板ID不合法"))
		return
	}
	var req languageTemplateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, fail(errs.CodeInvalidRequest, err.Error()))
		return
	}
	language, err := domain.ParseLanguage(req.Language)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, fail(errs.CodeInvalidRequest, err.Error()))
		return
	}
	created, err := h.tpls.CreateLanguageTemplate(ctx.Request.Context(), domain.LanguageTemplate{
		TemplateID: templateID,
		Language:   language,
		Content:    req.Content,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, fail(errs.CodeServerError, err.Error()))
		return
	}
	ctx.JSON(http.StatusOK, ok(gin.H{"id": created.ID}))
}
