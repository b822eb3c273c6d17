package geolocation

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"EcoCSM-App/internal/domain/model"
)

// StaticGeolocationProvider は起動時に指定された座標を現在地として返す。
// 座標が指定されていない場合は位置情報の許可がない端末と同じく ErrPermissionDenied を返す
type StaticGeolocationProvider struct {
	position *model.Coordinate
}

// NewStaticGeolocationProvider は固定座標のプロバイダを作成する。position は nil でもよい
func NewStaticGeolocationProvider(position *model.Coordinate) *StaticGeolocationProvider {
	return &StaticGeolocationProvider{position: position}
}

// CurrentPosition は設定された座標を返す
func (p *StaticGeolocationProvider) CurrentPosition(ctx context.Context) (*model.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.position == nil {
		return nil, fmt.Errorf("現在地が設定されていません: %w", model.ErrPermissionDenied)
	}
	c := *p.position
	return &c, nil
}

// ParseLatLng は "lat,lng" 形式の文字列を座標に変換する。空文字列は nil を返す
func ParseLatLng(s string) (*model.Coordinate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return nil, &model.ValidationError{Field: "position", Message: "lat,lng の形式で指定してください"}
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, &model.ValidationError{Field: "position", Message: "緯度が数値ではありません"}
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, &model.ValidationError{Field: "position", Message: "経度が数値ではありません"}
	}
	c := &model.Coordinate{Latitude: lat, Longitude: lng}
	if !c.IsValid() {
		return nil, &model.ValidationError{Field: "position", Message: "緯度経度が範囲外です"}
	}
	return c, nil
}
