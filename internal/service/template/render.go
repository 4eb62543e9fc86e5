package template

import "strings"

// Render 渲染模板内容，把 {name} 形式的占位符替换成参数值。
// 没有对应参数的占位符原样保留，方便排查漏传的参数。
func Render(content string, params map[string]string) string {
	if len(params) == 0 {
		return content
	}
	for k, v := range params {
		content = strings.ReplaceAll(content, "{"+k+"}", v)
	}
	return content
}
