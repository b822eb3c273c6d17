package maps

import (
	"context"
	"fmt"
	"log"

	"EcoCSM-App/internal/domain/model"
)

// URLOpener は URL を外部アプリで開く（端末・ブラウザなど）
type URLOpener interface {
	Open(ctx context.Context, url string) error
}

// DirectionsURLs は経路案内と地図検索のURL
func DirectionsURLs(locationID string, destination model.Coordinate) model.DirectionsResponse {
	return model.DirectionsResponse{
		LocationID: locationID,
		AppURL:     AppDirectionsURL(destination),
		WebURL:     WebDirectionsURL(destination),
		SearchURL:  SearchURL(destination),
	}
}

// AppDirectionsURL は Google Maps アプリの経路案内URL
func AppDirectionsURL(destination model.Coordinate) string {
	return fmt.Sprintf("comgooglemaps://?daddr=%s&directionsmode=driving", latLng(destination))
}

// WebDirectionsURL はブラウザで開く経路案内URL
func WebDirectionsURL(destination model.Coordinate) string {
	return fmt.Sprintf("https://www.google.com/maps/dir/?api=1&destination=%s&travelmode=driving", latLng(destination))
}

// SearchURL は地点を地図上に表示するURL
func SearchURL(target model.Coordinate) string {
	return fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%s", latLng(target))
}

func latLng(c model.Coordinate) string {
	return fmt.Sprintf("%v,%v", c.Latitude, c.Longitude)
}

// GoogleMapsDirectionsLauncher はアプリのURLを優先し、開けなければWeb版にフォールバックする
type GoogleMapsDirectionsLauncher struct {
	opener URLOpener
}

// NewGoogleMapsDirectionsLauncher は新しいランチャーを生成する
func NewGoogleMapsDirectionsLauncher(opener URLOpener) *GoogleMapsDirectionsLauncher {
	return &GoogleMapsDirectionsLauncher{opener: opener}
}

// OpenDirections は目的地までの運転経路を開く
func (l *GoogleMapsDirectionsLauncher) OpenDirections(ctx context.Context, destination model.Coordinate) error {
	if !destination.IsValid() {
		return &model.ValidationError{Field: "destination", Message: "目的地の位置情報が無効です"}
	}
	appErr := l.opener.Open(ctx, AppDirectionsURL(destination))
	if appErr == nil {
		return nil
	}
	log.Printf("⚠️ 地図アプリを開けません。ブラウザで開きます: %v", appErr)

	if err := l.opener.Open(ctx, WebDirectionsURL(destination)); err != nil {
		return fmt.Errorf("Google Mapsを開けませんでした: %v: %w", err, model.ErrNetworkFailure)
	}
	return nil
}

// OpenSearch は地点を地図で表示する
func (l *GoogleMapsDirectionsLauncher) OpenSearch(ctx context.Context, target model.Coordinate) error {
	if !target.IsValid() {
		return &model.ValidationError{Field: "target", Message: "位置情報が無効です"}
	}
	if err := l.opener.Open(ctx, SearchURL(target)); err != nil {
		return fmt.Errorf("Google Mapsを開けませんでした: %v: %w", err, model.ErrNetworkFailure)
	}
	return nil
}
