package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"gitee.com/flycash/notification-gateway/internal/domain"
	"gitee.com/flycash/notification-gateway/internal/errs"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const principalKey = "principal"

// JwtAuth HS256 签发和校验访问令牌
type JwtAuth struct {
	key string
}

func NewJwtAuth(key string) *JwtAuth {
	return &JwtAuth{key: key}
}

// Encode 生成 JWT Token，支持自定义声明和自动添加标准声明
func (a *JwtAuth) Encode(customClaims jwt.MapClaims) (string, error) {
	claims := jwt.MapClaims{
		"iat": time.Now().Unix(),
		"iss": "notification-gateway",
	}
	for k, v := range customClaims {
		claims[k] = v
	}
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(24 * time.Hour).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.key))
}

func (a *JwtAuth) Decode(tokenString string) (jwt.MapClaims, error) {
	// 去除可能的 Bearer 前缀（兼容不同客户端实现）
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("不支持的签名算法: %v", token.Header["alg"])
		}
		return []byte(a.key), nil
	})
	if err != nil {
		return nil, fmt.Errorf("令牌解析失败: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("无效的令牌")
}

// Middleware 解析 Authorization 头，把用户身份放进请求上下文。
// 不带令牌的请求以匿名身份放行，由各接口自行决定是否拒绝；
// 带了无效令牌直接 401。
func (a *JwtAuth) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" {
			ctx.Next()
			return
		}
		claims, err := a.Decode(header)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized,
				fail(errs.CodeAuthenticationFailed, err.Error()))
			return
		}
		uid, _ := claims["uid"].(float64)
		role, _ := claims["role"].(string)
		ctx.Set(principalKey, domain.UserPrincipal{
			UserID: int64(uid),
			Role:   domain.UserRole(role),
		})
		ctx.Next()
	}
}

// principal 取出当前请求的用户身份，匿名请求返回零值
func principal(ctx *gin.Context) domain.UserPrincipal {
	v, ok := ctx.Get(principalKey)
	if !ok {
		return domain.UserPrincipal{}
	}
	p, _ := v.(domain.UserPrincipal)
	return p
}
