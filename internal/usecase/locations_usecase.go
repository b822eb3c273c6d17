package usecase

import (
	"context"
	"fmt"
	"log"
	"math"

	"EcoCSM-App/internal/domain/helper"
	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/domain/repository"
	"EcoCSM-App/internal/domain/service"
	"EcoCSM-App/internal/infrastructure/maps"
	repoImpl "EcoCSM-App/internal/repository"
)

type LocationsUseCase interface {
	// GetLocations は全地点（bbox 指定時は範囲内のみ）を返す
	GetLocations(ctx context.Context, bbox string) (*model.GetLocationsResponse, error)

	// GetLocationsByDistance は全地点（bbox 指定時は範囲内のみ）を基準地点からの距離順に返す
	GetLocationsByDistance(ctx context.Context, origin model.Coordinate, bbox string) (*model.RankedLocationsResponse, error)

	// GetNearbyLocations は基準地点から近い地点を返す
	GetNearbyLocations(ctx context.Context, origin model.Coordinate, radiusKm float64, limit int) (*model.NearbyLocationsResponse, error)

	// GetLocation は指定IDの地点を返す
	GetLocation(ctx context.Context, id string) (*model.LocationRecord, error)

	// GetDirections は地点への経路案内URLを返す
	GetDirections(ctx context.Context, id string) (*model.DirectionsResponse, error)
}

// locationsUseCaseImpl はLocationsUseCaseの実装
type locationsUseCaseImpl struct {
	cache         *service.LocationSnapshotCache
	locationsRepo repository.LocationsRepository
	radiusKm      float64
	limit         int
}

// NewLocationsUseCase は新しいLocationsUseCaseインスタンスを作成。
// キャッシュが最初のスナップショットを受け取るまではリポジトリから直接読む
func NewLocationsUseCase(cache *service.LocationSnapshotCache, locationsRepo repository.LocationsRepository, radiusKm float64, limit int) LocationsUseCase {
	return &locationsUseCaseImpl{
		cache:         cache,
		locationsRepo: locationsRepo,
		radiusKm:      radiusKm,
		limit:         limit,
	}
}

func (u *locationsUseCaseImpl) all(ctx context.Context) ([]model.LocationRecord, error) {
	if u.cache != nil && u.cache.IsReady() {
		return u.cache.All(), nil
	}
	log.Printf("⚠️ 地点キャッシュ未初期化のためリポジトリから取得")
	locations, err := u.locationsRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("地点の取得に失敗: %w", err)
	}
	return locations, nil
}

// GetLocations は全地点を返す。bbox 指定時は範囲内の座標を持つ地点のみ
func (u *locationsUseCaseImpl) GetLocations(ctx context.Context, bbox string) (*model.GetLocationsResponse, error) {
	if bbox == "" {
		locations, err := u.all(ctx)
		if err != nil {
			return nil, err
		}
		return &model.GetLocationsResponse{Locations: locations}, nil
	}

	bound, err := repoImpl.ParseBBox(bbox)
	if err != nil {
		return nil, err
	}
	if u.cache != nil && u.cache.IsReady() {
		return &model.GetLocationsResponse{Locations: u.cache.WithinBound(bound)}, nil
	}
	locations, err := u.all(ctx)
	if err != nil {
		return nil, err
	}
	return &model.GetLocationsResponse{Locations: helper.FilterWithinBound(locations, bound)}, nil
}

// GetLocationsByDistance は全地点を距離順に返す。座標のない地点は末尾で distance_km は null になる
func (u *locationsUseCaseImpl) GetLocationsByDistance(ctx context.Context, origin model.Coordinate, bbox string) (*model.RankedLocationsResponse, error) {
	if !origin.IsValid() {
		return nil, &model.ValidationError{Field: "origin", Message: "緯度経度が範囲外です"}
	}
	response, err := u.GetLocations(ctx, bbox)
	if err != nil {
		return nil, err
	}
	return &model.RankedLocationsResponse{
		Origin:    origin,
		Locations: service.RankAll(response.Locations, &origin),
	}, nil
}

// GetNearbyLocations は基準地点から近い地点を返す。radiusKm, limit が0以下なら設定値を使う
func (u *locationsUseCaseImpl) GetNearbyLocations(ctx context.Context, origin model.Coordinate, radiusKm float64, limit int) (*model.NearbyLocationsResponse, error) {
	if !origin.IsValid() {
		return nil, &model.ValidationError{Field: "origin", Message: "緯度経度が範囲外です"}
	}
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return nil, &model.ValidationError{Field: "radius_km", Message: "有限の数値を指定してください"}
	}
	if radiusKm <= 0 {
		radiusKm = u.radiusKm
	}
	if limit <= 0 {
		limit = u.limit
	}

	locations, err := u.all(ctx)
	if err != nil {
		return nil, err
	}
	ranked := service.Rank(locations, &origin, radiusKm, limit)

	return &model.NearbyLocationsResponse{
		Origin:    origin,
		RadiusKm:  radiusKm,
		Limit:     limit,
		Locations: ranked,
	}, nil
}

// GetLocation は指定IDの地点を返す
func (u *locationsUseCaseImpl) GetLocation(ctx context.Context, id string) (*model.LocationRecord, error) {
	if u.cache != nil && u.cache.IsReady() {
		if l, ok := u.cache.Get(id); ok {
			return &l, nil
		}
	}
	l, err := u.locationsRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("地点の取得に失敗: %w", err)
	}
	return l, nil
}

// GetDirections は地点への経路案内URLを返す
func (u *locationsUseCaseImpl) GetDirections(ctx context.Context, id string) (*model.DirectionsResponse, error) {
	l, err := u.GetLocation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.HasValidCoordinates() {
		return nil, &model.ValidationError{Field: "coordinates", Message: "目的地の位置情報が無効です"}
	}
	urls := maps.DirectionsURLs(l.ID, *l.Coordinates)
	return &urls, nil
}
