package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	"gitee.com/flycash/notification-gateway/internal/repository"
	"gitee.com/flycash/notification-gateway/internal/service/channel"
	channelmetrics "gitee.com/flycash/notification-gateway/internal/service/channel/metrics"
	channeltracing "gitee.com/flycash/notification-gateway/internal/service/channel/tracing"
	"gitee.com/flycash/notification-gateway/internal/service/template"
	"github.com/gotomicro/ego/core/elog"
)

// Service 调度流水线，把一条发送任务推进到终态：
// 查模板、渲染、查渠道、构造发送器、逐个接收者发送并落审计记录。
type Service interface {
	// ProcessTask 处理一条发送任务。任务级失败（模板/渠道查不到等）
	// 会落一条 Recipient 为空的记录并返回 nil，只有基础设施错误才返回 error。
	ProcessTask(ctx context.Context, task domain.SendTask) error
}

// Builder 按渠道属性构造发送器，测试时替换成桩实现
type Builder func(typ domain.ChannelType, props map[string]any) (channel.Channel, error)

// IDGenerator 审计记录 ID 来源，生产环境用雪花生成器
type IDGenerator interface {
	NextID() (int64, error)
}

type service struct {
	templates template.Service
	channels  repository.ChannelRepository
	records   repository.SendRecordRepository
	idGen     IDGenerator
	build     Builder
	logger    *elog.Component
}

// NewService 创建调度流水线实例，发送器自带指标和链路追踪装饰
func NewService(templates template.Service,
	channels repository.ChannelRepository,
	records repository.SendRecordRepository,
	idGen IDGenerator) Service {
	return newService(templates, channels, records, idGen, buildDecorated)
}

func newService(templates template.Service,
	channels repository.ChannelRepository,
	records repository.SendRecordRepository,
	idGen IDGenerator,
	build Builder) Service {
	return &service{
		templates: templates,
		channels:  channels,
		records:   records,
		idGen:     idGen,
		build:     build,
		logger:    elog.DefaultLogger,
	}
}

// buildDecorated 构造发送器并套上指标、链路追踪装饰器
func buildDecorated(typ domain.ChannelType, props map[string]any) (channel.Channel, error) {
	cfg, err := channel.Normalize(typ, props)
	if err != nil {
		return nil, err
	}
	ch, err := channel.NewChannel(cfg)
	if err != nil {
		return nil, err
	}
	protocol := string(cfg.Protocol())
	return channeltracing.NewChannel(protocol, channelmetrics.NewChannel(protocol, ch)), nil
}

func (s *service) ProcessTask(ctx context.Context, task domain.SendTask) error {
	start := time.Now()
	s.logger.Info("SEND_TASK_RECEIVED",
		elog.String("taskId", task.TaskID),
		elog.String("templateCode", task.TemplateCode),
		elog.Int("recipients", len(task.Recipients)))

	base := domain.SendRecord{
		TaskID:       task.TaskID,
		TemplateCode: task.TemplateCode,
		LanguageCode: task.LanguageCode,
		SubmittedAt:  task.SubmittedAt,
	}

	recipients := filterBlank(task.Recipients)
	if len(recipients) == 0 {
		s.recordTaskFailure(ctx, base, errs.CodeRecipientsEmpty, "接收者列表为空")
		return nil
	}

	language, err := domain.ParseLanguage(task.LanguageCode)
	if err != nil {
		s.recordTaskFailure(ctx, base, errs.CodeInvalidLanguage, err.Error())
		return nil
	}

	tpl, err := s.templates.FindByCode(ctx, task.TemplateCode)
	if err != nil {
		if errors.Is(err, errs.ErrTemplateNotFound) {
			s.recordTaskFailure(ctx, base, errs.CodeTemplateNotFound, err.Error())
			return nil
		}
		return fmt.Errorf("查询模板失败: %w", err)
	}

	content, err := s.templates.FindContent(ctx, tpl.ID, language)
	if err != nil {
		if errors.Is(err, errs.ErrLanguageTemplateNotFound) {
			s.recordTaskFailure(ctx, base, errs.CodeLanguageTemplateNotFound, err.Error())
			return nil
		}
		return fmt.Errorf("查询语言模板失败: %w", err)
	}
	rendered := template.Render(content, task.Params)

	ch, err := s.channels.FindByID(ctx, task.ChannelID)
	if err != nil {
		if errors.Is(err, errs.ErrChannelNotFound) {
			s.recordTaskFailure(ctx, base, errs.CodeChannelNotFound, err.Error())
			return nil
		}
		return fmt.Errorf("查询渠道失败: %w", err)
	}
	base.ChannelID = ch.ID
	base.ChannelType = ch.Type
	base.ChannelName = ch.Name
	if !ch.Enabled {
		s.recordTaskFailure(ctx, base, errs.CodeChannelNotFound, fmt.Sprintf("渠道已停用: id = %d", ch.ID))
		return nil
	}

	sender, err := s.build(ch.Type, ch.Properties)
	if err != nil {
		code := errs.CodeChannelCreateFailed
		if errors.Is(err, errs.ErrInvalidConfig) || errors.Is(err, errs.ErrInvalidParameter) {
			code = errs.CodeInvalidConfig
		}
		s.recordTaskFailure(ctx, base, code, err.Error())
		return nil
	}
	defer channel.Release(sender)

	base.RenderedContent = rendered
	// 按提交顺序逐个发送，单个接收者的失败不影响其余接收者
	for _, recipient := range recipients {
		res := s.sendOne(ctx, sender, domain.Message{
			Recipient: recipient,
			Subject:   tpl.Name,
			Content:   rendered,
		})
		s.logger.Info("SEND_RESULT",
			elog.String("taskId", task.TaskID),
			elog.String("recipient", recipient),
			elog.Any("success", res.Success),
			elog.String("errorCode", res.ErrorCode))
		rec := base
		rec.Recipient = recipient
		rec.SentAt = time.Now().UnixMilli()
		if res.Success {
			rec.Status = domain.SendRecordStatusSuccess
			rec.MessageID = res.MessageID
		} else {
			rec.Status = domain.SendRecordStatusFailed
			rec.ErrorCode = res.ErrorCode
			rec.ErrorMessage = res.ErrorMessage
		}
		s.record(ctx, rec)
	}

	s.logger.Info("SEND_TASK_FINISHED",
		elog.String("taskId", task.TaskID),
		elog.FieldCost(time.Since(start)))
	return nil
}

// filterBlank 过滤空白接收者，保持原有顺序
func filterBlank(recipients []string) []string {
	out := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if strings.TrimSpace(r) != "" {
			out = append(out, r)
		}
	}
	return out
}

// sendOne 执行单个接收者的发送，panic 被捕获并转成失败结果
func (s *service) sendOne(ctx context.Context, sender channel.Channel, msg domain.Message) (res domain.SendResult) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("发送过程panic",
				elog.Any("recover", r),
				elog.String("recipient", msg.Recipient))
			res = domain.FailureResult(errs.CodeSendException, fmt.Sprintf("发送异常: %v", r))
		}
	}()
	return sender.Send(ctx, msg)
}

// recordTaskFailure 任务级失败只落一条记录，Recipient 为空
func (s *service) recordTaskFailure(ctx context.Context, base domain.SendRecord, code, message string) {
	base.Status = domain.SendRecordStatusFailed
	base.ErrorCode = code
	base.ErrorMessage = message
	base.SentAt = time.Now().UnixMilli()
	s.record(ctx, base)
}

func (s *service) record(ctx context.Context, rec domain.SendRecord) {
	id, err := s.idGen.NextID()
	if err != nil {
		s.logger.Error("生成审计记录ID失败",
			elog.FieldErr(err),
			elog.String("taskId", rec.TaskID))
		return
	}
	rec.ID = id
	if err := s.records.Create(ctx, rec); err != nil {
		s.logger.Error("写入审计记录失败",
			elog.FieldErr(err),
			elog.String("taskId", rec.TaskID),
			elog.String("recipient", rec.Recipient))
	}
}
