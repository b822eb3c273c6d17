package model

import "time"

// NoticeKind 通知の種類
type NoticeKind string

const (
	// NoticeTransient は画面をブロックしない一時的な通知
	NoticeTransient NoticeKind = "transient"
	// NoticeBlocking は利用者の確認が必要な通知（送信・経路案内など利用者起点の操作）
	NoticeBlocking NoticeKind = "blocking"
)

// Notice 利用者に表示する通知
type Notice struct {
	Kind      NoticeKind `json:"kind"`
	Message   string     `json:"message"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewNotice は通知を作成する
func NewNotice(kind NoticeKind, message string) Notice {
	return Notice{Kind: kind, Message: message, CreatedAt: time.Now()}
}
