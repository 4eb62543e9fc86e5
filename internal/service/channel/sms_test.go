package channel

import (
	"testing"

	"gitee.com/flycash/notification-gateway/internal/errs"
	"github.com/stretchr/testify/assert"
)

func TestCategorizeAliyunCode(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name          string
		code          string
		want          string
		wantThrottled bool
	}{
		{
			name:          "业务限流可重试",
			code:          "isv.BUSINESS_LIMIT_CONTROL",
			want:          errs.CodeRateLimitExceeded,
			wantThrottled: true,
		},
		{
			name:          "用户级限流可重试",
			code:          "Throttling.User",
			want:          errs.CodeRateLimitExceeded,
			wantThrottled: true,
		},
		{
			name: "AccessKey不存在是凭证错误",
			code: "InvalidAccessKeyId.NotFound",
			want: errs.CodeAuthenticationFailed,
		},
		{
			name: "签名不匹配是凭证错误",
			code: "SignatureDoesNotMatch",
			want: errs.CodeAuthenticationFailed,
		},
		{
			name: "签名未报备走兜底码",
			code: "isv.SMS_SIGNATURE_ILLEGAL",
			want: errs.CodeAliyunSMSError,
		},
		{
			name: "手机号非法走兜底码",
			code: "isv.MOBILE_NUMBER_ILLEGAL",
			want: errs.CodeAliyunSMSError,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, categorizeAliyunCode(tc.code))
			assert.Equal(t, tc.wantThrottled, aliyunThrottled(tc.code))
		})
	}
}

func TestCategorizeTencentCode(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name          string
		code          string
		want          string
		wantThrottled bool
	}{
		{
			name:          "单号码日限额可重试",
			code:          "LimitExceeded.PhoneNumberDailyLimit",
			want:          errs.CodeRateLimitExceeded,
			wantThrottled: true,
		},
		{
			name:          "请求频控可重试",
			code:          "RequestLimitExceeded",
			want:          errs.CodeRateLimitExceeded,
			wantThrottled: true,
		},
		{
			name: "签名校验失败是凭证错误",
			code: "AuthFailure.SignatureFailure",
			want: errs.CodeAuthenticationFailed,
		},
		{
			name: "未授权操作是凭证错误",
			code: "UnauthorizedOperation",
			want: errs.CodeAuthenticationFailed,
		},
		{
			name: "内部错误归为服务端错误",
			code: "InternalError.RequestTimeException",
			want: errs.CodeServerError,
		},
		{
			name: "模板参数错误走兜底码",
			code: "InvalidParameterValue.TemplateParameterFormatError",
			want: errs.CodeTencentSMSError,
		},
		{
			name: "套餐余量不足走兜底码",
			code: "FailedOperation.InsufficientBalanceInSmsPackage",
			want: errs.CodeTencentSMSError,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, categorizeTencentCode(tc.code))
			assert.Equal(t, tc.wantThrottled, tencentThrottled(tc.code))
		})
	}
}
