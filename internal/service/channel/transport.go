package channel

import (
	"context"
	"errors"
	"net"
	"net/http"

	"gitee.com/flycash/notification-gateway/internal/errs"
)

// retryableStatus 判定 HTTP 状态码是否为瞬时失败。
// 429、503 以及其它 5xx 可以重试，4xx 调用方错误永远不重试。
func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// categorizeStatus 把 HTTP 状态码映射到通用错误码，
// 无法归类时返回协议兜底码
func categorizeStatus(status int, fallback string) string {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errs.CodeAuthenticationFailed
	case status == http.StatusTooManyRequests:
		return errs.CodeRateLimitExceeded
	case status >= http.StatusInternalServerError:
		return errs.CodeServerError
	case status >= http.StatusBadRequest:
		return errs.CodeInvalidRequest
	default:
		return fallback
	}
}

// classifyTransportError 归类传输层错误。超时和连接失败都是瞬时的，可以重试
func classifyTransportError(err error) (code string, retryable bool) {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errs.CodeTimeout, true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.CodeTimeout, true
	}
	return errs.CodeConnectionFailed, true
}
