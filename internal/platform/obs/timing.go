package obs

import (
	"context"
	"log"
	"time"
)

type ctxKey string

// RequestIDKey はリクエストIDを格納するコンテキストキー
const RequestIDKey ctxKey = "req_id"

// WithRequestID はリクエストIDをコンテキストに格納する
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID はコンテキストのリクエストIDを返す
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time は処理時間を計測する。defer obs.Time(ctx, "op")(&err) の形で使う
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	reqID := RequestID(ctx)

	return func(errp *error) {
		dur := time.Since(start)
		if errp != nil && *errp != nil {
			log.Printf("⏱️ req_id=%s op=%s dur=%dms err=%v", reqID, name, dur.Milliseconds(), *errp)
			return
		}
		log.Printf("⏱️ req_id=%s op=%s dur=%dms", reqID, name, dur.Milliseconds())
	}
}
