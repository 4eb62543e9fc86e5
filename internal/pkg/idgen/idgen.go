package idgen

import (
	"fmt"

	"gitee.com/flycash/notification-gateway/internal/errs"
	"github.com/sony/sonyflake"
)

// Generator 审计记录 ID 生成器，雪花 ID 趋势递增，按时间排序友好
type Generator struct {
	flake *sonyflake.Sonyflake
}

func NewGenerator() (*Generator, error) {
	flake := sonyflake.NewSonyflake(sonyflake.Settings{})
	if flake == nil {
		return nil, fmt.Errorf("%w: 初始化雪花生成器失败", errs.ErrIDGenerateFailed)
	}
	return &Generator{flake: flake}, nil
}

func (g *Generator) NextID() (int64, error) {
	id, err := g.flake.NextID()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrIDGenerateFailed, err)
	}
	return int64(id), nil
}
