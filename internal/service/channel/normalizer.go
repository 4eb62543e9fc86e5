package channel

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New()

// variant 描述一个协议变体如何从属性包里取值
type variant struct {
	// 嵌套子表的别名，按顺序取第一个非空的
	nestedAliases []string
	// 允许从根一层兜底读取的键
	allowedKeys []string
	// 需要做时长类型兼容转换的键
	durationKeys []string
	newConfig    func() Config
	// 无法用字段约束表达的业务不变量
	crossCheck func(Config) error
}

var variants = map[domain.ChannelType]map[Protocol]variant{
	domain.ChannelTypeEmail: {
		ProtocolSMTP: {
			nestedAliases: []string{"smtp", "SMTP"},
			allowedKeys: []string{
				"host", "port", "username", "password",
				"sslEnabled", "from", "connectionTimeout", "readTimeout",
				"maxRetries", "retryDelay",
			},
			durationKeys: []string{"connectionTimeout", "readTimeout", "retryDelay"},
			newConfig:    func() Config { return &SMTPEmailConfig{} },
		},
		ProtocolHTTP: {
			nestedAliases: []string{"httpApi", "httpAPI", "http"},
			allowedKeys: []string{
				"baseUrl", "path", "apiKeyHeader", "apiKey",
				"from", "timeout", "maxRetries", "retryDelay",
			},
			durationKeys: []string{"timeout", "retryDelay"},
			newConfig:    func() Config { return &HTTPEmailConfig{} },
		},
	},
	domain.ChannelTypeIM: {
		ProtocolDingTalk: {
			nestedAliases: []string{"dingtalk", "dingTalk"},
			allowedKeys:   []string{"webhookUrl", "timeout", "maxRetries", "retryDelay"},
			durationKeys:  []string{"timeout", "retryDelay"},
			newConfig:     func() Config { return &DingTalkConfig{} },
		},
		ProtocolWeChatWork: {
			nestedAliases: []string{"wechatWork", "wechat_work", "wechat"},
			allowedKeys:   []string{"webhookUrl", "timeout", "maxRetries", "retryDelay"},
			durationKeys:  []string{"timeout", "retryDelay"},
			newConfig:     func() Config { return &WeChatWorkConfig{} },
		},
	},
	domain.ChannelTypeSMS: {
		ProtocolAliyun: {
			nestedAliases: []string{"aliyun", "aliYun"},
			allowedKeys: []string{
				"accessKeyId", "accessKeySecret", "regionId", "signName",
				"templateCode", "templateParamKey", "timeout", "maxRetries", "retryDelay",
			},
			durationKeys: []string{"timeout", "retryDelay"},
			newConfig:    func() Config { return &AliyunSMSConfig{} },
		},
		ProtocolTencent: {
			nestedAliases: []string{"tencent", "tencentCloud"},
			allowedKeys: []string{
				"secretId", "secretKey", "region", "sdkAppId",
				"signName", "templateId", "timeout", "maxRetries", "retryDelay",
			},
			durationKeys: []string{"timeout", "retryDelay"},
			newConfig:    func() Config { return &TencentSMSConfig{} },
		},
	},
	domain.ChannelTypePush: {
		ProtocolAPNs: {
			nestedAliases: []string{"apns", "APNs"},
			allowedKeys: []string{
				"keyId", "teamId", "bundleId", "p8KeyContent", "p8KeyPath",
				"production", "timeout", "maxRetries", "retryDelay",
			},
			durationKeys: []string{"timeout", "retryDelay"},
			newConfig:    func() Config { return &APNsConfig{} },
			crossCheck: func(c Config) error {
				cfg := c.(*APNsConfig)
				if strings.TrimSpace(cfg.P8KeyContent) == "" && strings.TrimSpace(cfg.P8KeyPath) == "" {
					return fmt.Errorf("%w: APNs 需要 p8KeyContent 或 p8KeyPath 之一", errs.ErrInvalidConfig)
				}
				return nil
			},
		},
		ProtocolFCM: {
			nestedAliases: []string{"fcm", "FCM"},
			allowedKeys: []string{
				"serviceAccountJson", "projectId", "timeout", "maxRetries", "retryDelay",
			},
			durationKeys: []string{"timeout", "retryDelay"},
			newConfig:    func() Config { return &FCMConfig{} },
		},
	},
}

// Normalize 把协议无关的属性包归一化为强类型渠道配置。
// 属性包兼容两种形态：协议字段平铺在根上，或集中在协议别名的子表里
// （如 smtp.host），同名键以子表为准。协议标识优先读 type，兜底读 protocol。
func Normalize(typ domain.ChannelType, props map[string]any) (Config, error) {
	if len(props) == 0 {
		return nil, fmt.Errorf("%w: 属性为空", errs.ErrInvalidConfig)
	}
	proto, err := resolveProtocol(props)
	if err != nil {
		return nil, err
	}
	spec, ok := variants[typ][proto]
	if !ok {
		return nil, fmt.Errorf("%w: 渠道 %s 不支持协议 %s", errs.ErrInvalidConfig, typ, proto)
	}

	values := resolveValues(props, spec)
	normalizeDurations(values, spec.durationKeys)

	cfg := spec.newConfig()
	if err := decodeConfig(values, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s 配置格式不合法: %s", errs.ErrInvalidConfig, proto, err.Error())
	}
	if spec.crossCheck != nil {
		if err := spec.crossCheck(cfg); err != nil {
			return nil, err
		}
	}
	if err := validateConfig(cfg, proto); err != nil {
		return nil, err
	}
	if d, ok := cfg.(interface{ applyDefaults() }); ok {
		d.applyDefaults()
	}
	return cfg, nil
}

func resolveProtocol(props map[string]any) (Protocol, error) {
	raw := props["type"]
	if text, ok := raw.(string); !ok || strings.TrimSpace(text) == "" {
		raw = props["protocol"]
	}
	text, _ := raw.(string)
	normalized := strings.ToUpper(strings.TrimSpace(text))
	if normalized == "" {
		return "", fmt.Errorf("%w: 缺少协议标识（type/protocol）", errs.ErrInvalidConfig)
	}
	switch Protocol(normalized) {
	case ProtocolSMTP, ProtocolHTTP, ProtocolDingTalk, ProtocolWeChatWork,
		ProtocolAliyun, ProtocolTencent, ProtocolAPNs, ProtocolFCM:
		return Protocol(normalized), nil
	default:
		return "", fmt.Errorf("%w: 不支持的协议 %q", errs.ErrInvalidConfig, normalized)
	}
}

// resolveValues 合并嵌套子表和根上的平铺键，子表优先
func resolveValues(root map[string]any, spec variant) map[string]any {
	var nested map[string]any
	for _, alias := range spec.nestedAliases {
		nested = readMap(root[alias])
		if len(nested) > 0 {
			break
		}
	}
	result := make(map[string]any, len(nested)+len(spec.allowedKeys))
	for k, v := range nested {
		result[k] = v
	}
	for _, key := range spec.allowedKeys {
		if v, exists := result[key]; exists && v != nil {
			continue
		}
		if v, exists := root[key]; exists {
			result[key] = v
		}
	}
	return result
}

func readMap(value any) map[string]any {
	switch m := value.(type) {
	case map[string]any:
		result := make(map[string]any, len(m))
		for k, v := range m {
			result[k] = v
		}
		return result
	case map[any]any:
		result := make(map[string]any, len(m))
		for k, v := range m {
			result[fmt.Sprintf("%v", k)] = v
		}
		return result
	default:
		return map[string]any{}
	}
}

// normalizeDurations 把时长类字段统一成 time.Duration。
// 兼容三种输入：ISO-8601 文本（PT5S）、裸毫秒整数、已经是 time.Duration 的值。
// 解析不了的直接丢弃该键，回落到变体默认值，而不是整体报错。
func normalizeDurations(values map[string]any, keys []string) {
	for _, key := range keys {
		raw, exists := values[key]
		if !exists {
			continue
		}
		parsed, ok := parseDurationValue(raw)
		if !ok {
			delete(values, key)
			continue
		}
		values[key] = parsed
	}
}

func parseDurationValue(value any) (time.Duration, bool) {
	switch v := value.(type) {
	case time.Duration:
		return v, true
	case int:
		return time.Duration(v) * time.Millisecond, true
	case int32:
		return time.Duration(v) * time.Millisecond, true
	case int64:
		return time.Duration(v) * time.Millisecond, true
	case float64:
		return time.Duration(v) * time.Millisecond, true
	case string:
		text := strings.TrimSpace(v)
		if text == "" {
			return 0, false
		}
		if strings.HasPrefix(strings.ToUpper(text), "P") {
			d, err := parseISO8601Duration(text)
			if err != nil {
				return 0, false
			}
			return d, true
		}
		ms, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return 0, false
		}
		return time.Duration(ms) * time.Millisecond, true
	default:
		return 0, false
	}
}

// parseISO8601Duration 解析 PnDTnHnMnS 子集，覆盖配置里出现的形式
func parseISO8601Duration(text string) (time.Duration, error) {
	s := strings.ToUpper(strings.TrimSpace(text))
	if len(s) < 3 || s[0] != 'P' {
		return 0, fmt.Errorf("不是 ISO-8601 时长: %q", text)
	}
	var (
		total  time.Duration
		num    strings.Builder
		inTime bool
	)
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c == 'T':
			if num.Len() > 0 {
				return 0, fmt.Errorf("不是 ISO-8601 时长: %q", text)
			}
			inTime = true
		case (c >= '0' && c <= '9') || c == '.':
			num.WriteByte(c)
		default:
			v, err := strconv.ParseFloat(num.String(), 64)
			if err != nil {
				return 0, fmt.Errorf("不是 ISO-8601 时长: %q", text)
			}
			num.Reset()
			var unit time.Duration
			switch {
			case c == 'D' && !inTime:
				unit = 24 * time.Hour
			case c == 'H' && inTime:
				unit = time.Hour
			case c == 'M' && inTime:
				unit = time.Minute
			case c == 'S' && inTime:
				unit = time.Second
			default:
				return 0, fmt.Errorf("不是 ISO-8601 时长: %q", text)
			}
			total += time.Duration(v * float64(unit))
		}
	}
	if num.Len() > 0 {
		return 0, fmt.Errorf("不是 ISO-8601 时长: %q", text)
	}
	return total, nil
}

func decodeConfig(values map[string]any, cfg Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(values)
}

// validateConfig 字段级校验，所有违规聚合进同一个错误，不在第一条就停
func validateConfig(cfg Config, proto Protocol) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	violations, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("%w: %s 配置校验失败: %s", errs.ErrInvalidConfig, proto, err.Error())
	}
	var merr *multierror.Error
	for _, v := range violations {
		merr = multierror.Append(merr, fmt.Errorf("%s 不满足约束 %s", v.Field(), v.Tag()))
	}
	return fmt.Errorf("%w: %s 配置校验失败: %s", errs.ErrInvalidConfig, proto, merr.Error())
}
