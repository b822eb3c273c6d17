package repository

import (
	"context"

	"EcoCSM-App/internal/domain/model"
)

// GeocodeCacheRepository は逆ジオコーディング結果のキャッシュ
type GeocodeCacheRepository interface {
	// Get はキャッシュ済みの住所を返す。未登録なら ok=false
	Get(ctx context.Context, coordinate model.Coordinate) (address string, ok bool, err error)
	Put(ctx context.Context, coordinate model.Coordinate, address string) error
}
