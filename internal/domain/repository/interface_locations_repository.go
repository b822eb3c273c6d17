package repository

import (
	"context"

	"EcoCSM-App/internal/domain/model"
)

// SnapshotHandler はライブクエリのスナップショット（全件）を受け取る
type SnapshotHandler func(locations []model.LocationRecord)

// SnapshotErrorHandler はライブクエリのエラーを受け取る
type SnapshotErrorHandler func(err error)

// Subscription はライブクエリの購読ハンドル
type Subscription interface {
	// Unsubscribe は購読を解除する。複数回呼んでも安全
	Unsubscribe()
}

// LocationsRepository は汚染地点ドキュメントへのアクセスを提供する
type LocationsRepository interface {
	// Subscribe は変更のたびに全件スナップショットを通知する
	Subscribe(ctx context.Context, onSnapshot SnapshotHandler, onError SnapshotErrorHandler) (Subscription, error)
	GetAll(ctx context.Context) ([]model.LocationRecord, error)
	GetByID(ctx context.Context, id string) (*model.LocationRecord, error)
	Create(ctx context.Context, location *model.LocationRecord) (*model.LocationRecord, error)
	// AppendImages は images 配列の末尾に画像URIを追加する
	AppendImages(ctx context.Context, id string, imageURLs []string) error
}
