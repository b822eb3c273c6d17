package model

import (
	"math"

	"github.com/paulmach/orb"
)

// Coordinate 緯度経度を表す基本的な型
type Coordinate struct {
	Latitude  float64 `json:"latitude" firestore:"latitude" validate:"required,min=-90,max=90"`
	Longitude float64 `json:"longitude" firestore:"longitude" validate:"required,min=-180,max=180"`
}

// IsValid 緯度経度が有効範囲内かチェック
func (c Coordinate) IsValid() bool {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) {
		return false
	}
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// ToPoint orb.Point（[経度, 緯度]）に変換
func (c Coordinate) ToPoint() orb.Point {
	return orb.Point{c.Longitude, c.Latitude}
}

// MapRegion 地図の表示領域（中心と表示幅）
type MapRegion struct {
	Center         Coordinate `json:"center"`
	LatitudeDelta  float64    `json:"latitude_delta"`
	LongitudeDelta float64    `json:"longitude_delta"`
}

// Bound 表示領域を orb.Bound に変換
func (r MapRegion) Bound() orb.Bound {
	halfLat := r.LatitudeDelta / 2
	halfLng := r.LongitudeDelta / 2
	return orb.Bound{
		Min: orb.Point{r.Center.Longitude - halfLng, r.Center.Latitude - halfLat},
		Max: orb.Point{r.Center.Longitude + halfLng, r.Center.Latitude + halfLat},
	}
}

// DefaultMapRegion 現在地が取得できない場合の初期表示領域（リスボン）
func DefaultMapRegion() MapRegion {
	return MapRegion{
		Center:         Coordinate{Latitude: DefaultLatitude, Longitude: DefaultLongitude},
		LatitudeDelta:  DefaultRegionDelta,
		LongitudeDelta: DefaultRegionDelta,
	}
}

// FocusRegion 指定地点にフォーカスする表示領域
func FocusRegion(center Coordinate) MapRegion {
	return MapRegion{
		Center:         center,
		LatitudeDelta:  FocusRegionDelta,
		LongitudeDelta: FocusRegionDelta,
	}
}
