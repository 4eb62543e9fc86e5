package ioc

import (
	"gitee.com/flycash/notification-gateway/internal/pkg/crypto"
	"github.com/gotomicro/ego/core/econf"
)

// InitPropertyCrypto 从配置的 crypto 段构建敏感属性加解密器。
// sensitiveKeys 不配置时使用内置默认列表。
func InitPropertyCrypto() *crypto.PropertyCrypto {
	type Config struct {
		Secret        string   `yaml:"secret"`
		SensitiveKeys []string `yaml:"sensitiveKeys"`
	}
	var cfg Config
	err := econf.UnmarshalKey("crypto", &cfg)
	if err != nil {
		panic(err)
	}
	c, err := crypto.NewPropertyCrypto(cfg.Secret, cfg.SensitiveKeys)
	if err != nil {
		panic(err)
	}
	return c
}
