package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"

	"gitee.com/flycash/notification-gateway/internal/errs"
	"github.com/gotomicro/ego/core/elog"
)

const encryptedPrefix = "enc:"

// DefaultSensitiveKeys 默认的敏感键关键字，按归一化后的子串匹配
var DefaultSensitiveKeys = []string{
	"password",
	"secret",
	"token",
	"apikey",
	"api_key",
	"accesskey",
	"privatekey",
}

// PropertyCrypto 渠道属性加解密器。
// 密文格式 enc:<base64 iv>:<base64 密文>，AES-256-GCM（96 位 IV、128 位认证标签），
// 密钥取口令的 SHA-256。键名匹配不区分大小写，比较前剥掉所有非字母数字字符，
// 所以 apiKey、api_key、API-KEY 都能命中 apikey。
type PropertyCrypto struct {
	aead     cipher.AEAD
	matchers []string
	logger   *elog.Component
}

// NewPropertyCrypto 创建加解密器，sensitiveKeys 为空时用默认关键字表
func NewPropertyCrypto(secret string, sensitiveKeys []string) (*PropertyCrypto, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("%w: 加密口令不能为空", errs.ErrInvalidParameter)
	}
	key := sha256.Sum256([]byte(secret))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(sensitiveKeys) == 0 {
		sensitiveKeys = DefaultSensitiveKeys
	}
	matchers := make([]string, 0, len(sensitiveKeys))
	for _, k := range sensitiveKeys {
		if m := normalizeKey(k); m != "" {
			matchers = append(matchers, m)
		}
	}
	return &PropertyCrypto{
		aead:     aead,
		matchers: matchers,
		logger:   elog.DefaultLogger,
	}, nil
}

// EncryptSensitive 加密属性包里所有敏感键的字符串值，递归处理嵌套 map 和 list。
// 已经是密文的值原样保留，重复加密是空操作。
func (c *PropertyCrypto) EncryptSensitive(properties map[string]any) map[string]any {
	if len(properties) == 0 {
		return map[string]any{}
	}
	return c.transformMap(properties, true)
}

// DecryptSensitive 解密属性包里所有敏感键的密文值
func (c *PropertyCrypto) DecryptSensitive(properties map[string]any) map[string]any {
	if len(properties) == 0 {
		return map[string]any{}
	}
	return c.transformMap(properties, false)
}

func (c *PropertyCrypto) transformMap(properties map[string]any, encrypt bool) map[string]any {
	transformed := make(map[string]any, len(properties))
	for key, value := range properties {
		switch v := value.(type) {
		case map[string]any:
			transformed[key] = c.transformMap(v, encrypt)
		case map[any]any:
			transformed[key] = c.transformMap(castMap(v), encrypt)
		case []any:
			transformed[key] = c.transformList(v, encrypt)
		case string:
			if c.isSensitiveKey(key) {
				if encrypt {
					transformed[key] = c.encryptString(v)
				} else {
					transformed[key] = c.decryptString(v)
				}
			} else {
				transformed[key] = v
			}
		default:
			transformed[key] = value
		}
	}
	return transformed
}

func (c *PropertyCrypto) transformList(list []any, encrypt bool) []any {
	transformed := make([]any, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case map[string]any:
			transformed = append(transformed, c.transformMap(v, encrypt))
		case map[any]any:
			transformed = append(transformed, c.transformMap(castMap(v), encrypt))
		case []any:
			transformed = append(transformed, c.transformList(v, encrypt))
		default:
			transformed = append(transformed, item)
		}
	}
	return transformed
}

func castMap(value map[any]any) map[string]any {
	result := make(map[string]any, len(value))
	for k, v := range value {
		result[fmt.Sprintf("%v", k)] = v
	}
	return result
}

func (c *PropertyCrypto) isSensitiveKey(key string) bool {
	normalized := normalizeKey(key)
	for _, matcher := range c.matchers {
		if strings.Contains(normalized, matcher) {
			return true
		}
	}
	return false
}

func (c *PropertyCrypto) encryptString(value string) string {
	if strings.TrimSpace(value) == "" || strings.HasPrefix(value, encryptedPrefix) {
		return value
	}
	iv := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(iv); err != nil {
		c.logger.Error("生成加密 IV 失败", elog.FieldErr(err))
		return value
	}
	cipherText := c.aead.Seal(nil, iv, []byte(value), nil)
	return encryptedPrefix +
		base64.StdEncoding.EncodeToString(iv) + ":" +
		base64.StdEncoding.EncodeToString(cipherText)
}

// 解密失败时返回原值而不是报错，坏数据不该让整条链路停摆
func (c *PropertyCrypto) decryptString(value string) string {
	if !strings.HasPrefix(value, encryptedPrefix) {
		return value
	}
	payload := value[len(encryptedPrefix):]
	parts := strings.SplitN(payload, ":", 2)
	if len(parts) != 2 {
		return value
	}
	iv, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(iv) != c.aead.NonceSize() {
		c.logger.Error("解析密文 IV 失败", elog.FieldErr(err))
		return value
	}
	cipherText, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		c.logger.Error("解析密文失败", elog.FieldErr(err))
		return value
	}
	plain, err := c.aead.Open(nil, iv, cipherText, nil)
	if err != nil {
		c.logger.Error("渠道属性解密失败", elog.FieldErr(err))
		return value
	}
	return string(plain)
}

func normalizeKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(key) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
