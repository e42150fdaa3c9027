package response

// AppError 携带响应码的错误，Message 为已本地化的提示
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WrapError 包装错误，响应码超出 4xx/5xx 时按 500 处理
func WrapError(code int, message string, err error) *AppError {
	if code < 400 || code > 599 {
		code = CodeInternal
	}
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
