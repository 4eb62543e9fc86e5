package http

// Result 统一响应体
type Result struct {
	Success      bool   `json:"success"`
	Data         any    `json:"data,omitempty"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

func ok(data any) Result {
	return Result{Success: true, Data: data}
}

func fail(code, message string) Result {
	return Result{Success: false, ErrorCode: code, ErrorMessage: message}
}
