package repository

import (
	"context"
	"io"

	"EcoCSM-App/internal/domain/model"
)

// GeolocationProvider は現在地を一度だけ取得する
type GeolocationProvider interface {
	// CurrentPosition は拒否時に model.ErrPermissionDenied を返す
	CurrentPosition(ctx context.Context) (*model.Coordinate, error)
}

// ReverseGeocoder は座標から住所を取得する
type ReverseGeocoder interface {
	ReverseGeocode(ctx context.Context, coordinate model.Coordinate) (string, error)
}

// WeatherProvider は指定地点の現在の天気を取得する
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, coordinate model.Coordinate) (*model.Weather, error)
}

// PhotoStorage は写真ファイルを保存して公開URLを返す
type PhotoStorage interface {
	Upload(ctx context.Context, objectPath string, contentType string, data io.Reader) (string, error)
}

// IdentityProvider はアクセストークンからユーザーを解決する
type IdentityProvider interface {
	Authenticate(ctx context.Context, accessToken string) (*model.User, error)
}

// DirectionsLauncher は外部の地図アプリで経路案内を開く
type DirectionsLauncher interface {
	OpenDirections(ctx context.Context, destination model.Coordinate) error
	OpenSearch(ctx context.Context, target model.Coordinate) error
}

// CameraFlow は撮影フローを開始し、閉じた時点で制御を返す
type CameraFlow interface {
	Capture(ctx context.Context, location model.LocationContext) error
}
