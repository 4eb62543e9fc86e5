package testsend

import (
	"context"
	"fmt"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	"gitee.com/flycash/notification-gateway/internal/pkg/ratelimit"
	"gitee.com/flycash/notification-gateway/internal/service/channel"
	"github.com/gotomicro/ego/core/elog"
)

// Builder 按渠道属性构造发送器，测试时替换成桩实现
type Builder func(typ domain.ChannelType, props map[string]any) (channel.Channel, error)

// Service 测试发送沙箱：运营在保存渠道前用真实凭证试发一条消息。
// 配置只进临时存储，发送结束后无条件清理，绝不落库。
type Service struct {
	store   *TempConfigStore
	limiter ratelimit.Limiter
	build   Builder
	logger  *elog.Component
}

// NewService 创建测试发送服务。临时配置存储和限流器由调用方创建并注入，
// 多个实例之间互不共享状态。
func NewService(store *TempConfigStore, limiter ratelimit.Limiter) *Service {
	return newService(store, limiter, channel.Build)
}

// NewServiceWithBuilder 和 NewService 一样，但允许注入发送器构造函数，供测试替换
func NewServiceWithBuilder(store *TempConfigStore, limiter ratelimit.Limiter, build Builder) *Service {
	return newService(store, limiter, build)
}

func newService(store *TempConfigStore, limiter ratelimit.Limiter, build Builder) *Service {
	return &Service{
		store:   store,
		limiter: limiter,
		build:   build,
		logger:  elog.DefaultLogger,
	}
}

// TestSend 执行一次测试发送：鉴权、限流、存临时配置、真实发送一条、清理。
// 鉴权和限流失败通过 error 返回，发送本身的失败进 SendResult。
func (s *Service) TestSend(ctx context.Context,
	user domain.UserPrincipal,
	typ domain.ChannelType,
	props map[string]any,
	target, content string) (domain.SendResult, error) {
	if user.UserID <= 0 {
		return domain.SendResult{}, errs.ErrUnauthorized
	}
	if user.Role != domain.UserRoleAdmin && user.Role != domain.UserRoleUser {
		return domain.SendResult{}, fmt.Errorf("%w: 角色 = %s", errs.ErrForbidden, user.Role)
	}

	// 限流在构造发送器之前判断，被限的请求不消耗任何资源
	limited, err := s.limiter.Limit(ctx, fmt.Sprintf("testsend:%d", user.UserID))
	if err != nil {
		return domain.SendResult{}, fmt.Errorf("限流判断失败: %w", err)
	}
	if limited {
		s.logger.Warn("TEST_SEND_RATE_LIMITED", elog.Int64("userId", user.UserID))
		return domain.SendResult{}, errs.ErrRateLimited
	}

	s.logger.Info("TEST_SEND_START",
		elog.Int64("userId", user.UserID),
		elog.String("channelType", string(typ)))

	cfg := s.store.Put(typ, props)
	// 无论发送成败，临时配置都被清掉
	defer s.store.Remove(cfg.ID)

	sender, err := s.build(cfg.Type, cfg.Properties)
	if err != nil {
		s.logger.Warn("测试发送构造发送器失败",
			elog.FieldErr(err),
			elog.Int64("userId", user.UserID))
		return domain.FailureResult(errs.CodeInvalidConfig, err.Error()), nil
	}
	defer channel.Release(sender)

	res := sender.Send(ctx, domain.Message{
		Recipient: target,
		Subject:   "渠道配置测试",
		Content:   content,
	})
	s.logger.Info("TEST_SEND_END",
		elog.Int64("userId", user.UserID),
		elog.Any("success", res.Success),
		elog.String("errorCode", res.ErrorCode))
	return res, nil
}
