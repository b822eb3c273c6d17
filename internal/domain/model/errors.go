package model

import "errors"

// エラー分類
var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrNotFound          = errors.New("not found")
	ErrNetworkFailure    = errors.New("network failure")
	ErrValidationFailure = errors.New("validation failure")
)

// ValidationError はバリデーションエラーを表す
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Unwrap errors.Is(err, ErrValidationFailure) で判定できるようにする
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailure
}
