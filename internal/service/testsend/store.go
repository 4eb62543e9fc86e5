package testsend

import (
	"gitee.com/flycash/notification-gateway/internal/domain"
	"github.com/ecodeclub/ekit/syncx"
	"github.com/gofrs/uuid"
)

// TempConfig 测试发送用的临时渠道配置，只存在于进程内存，不落库
type TempConfig struct {
	ID         string
	Type       domain.ChannelType
	Properties map[string]any
}

// TempConfigStore 临时配置存储。由调用方创建并持有，
// 一次测试发送在发送前写入、发送后无条件删除。
type TempConfigStore struct {
	configs syncx.Map[string, TempConfig]
}

func NewTempConfigStore() *TempConfigStore {
	return &TempConfigStore{}
}

// Put 深拷贝属性后存入，返回带随机 ID 的临时配置。
// 拷贝保证后续对入参的修改不会影响已存的配置。
func (s *TempConfigStore) Put(typ domain.ChannelType, props map[string]any) TempConfig {
	cfg := TempConfig{
		ID:         uuid.Must(uuid.NewV4()).String(),
		Type:       typ,
		Properties: deepCopyMap(props),
	}
	s.configs.Store(cfg.ID, cfg)
	return cfg
}

func (s *TempConfigStore) Get(id string) (TempConfig, bool) {
	return s.configs.Load(id)
}

func (s *TempConfigStore) Remove(id string) {
	s.configs.Delete(id)
}

func deepCopyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = deepCopyValue(v)
	}
	return dst
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = deepCopyValue(item)
		}
		return items
	default:
		return v
	}
}
