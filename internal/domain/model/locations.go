package model

import (
	"encoding/json"
	"math"
	"time"
)

// LocationRecord 報告された汚染地点
type LocationRecord struct {
	ID          string      `json:"id"`                   // ドキュメントID
	Name        string      `json:"name"`                 // 地点名
	Description string      `json:"description"`          // 説明
	Coordinates *Coordinate `json:"coordinates"`          // 位置情報（欠損あり）
	Images      []string    `json:"images"`               // 画像URI（順序あり）
	Color       string      `json:"color"`                // マーカー色
	Icon        string      `json:"icon"`                 // マーカーアイコン
	Address     string      `json:"address,omitempty"`    // 住所（逆ジオコーディングまたは入力値）
	CreatedBy   string      `json:"created_by,omitempty"` // 登録者
	CreatedAt   time.Time   `json:"created_at,omitempty"` // 登録日時
	UpdatedAt   time.Time   `json:"updated_at,omitempty"` // 更新日時
}

// HasValidCoordinates 地図配置・距離計算に使える座標を持つかチェック
func (l *LocationRecord) HasValidCoordinates() bool {
	return l.Coordinates != nil && l.Coordinates.IsValid()
}

// WithDefaults 表示用の色・アイコンを補完したコピーを返す
func (l LocationRecord) WithDefaults() LocationRecord {
	if l.Color == "" {
		l.Color = DefaultLocationColor
	}
	if l.Icon == "" {
		l.Icon = DefaultLocationIcon
	}
	if l.Images == nil {
		l.Images = []string{}
	}
	return l
}

// ToLocationContext カメラ撮影フローに渡すコンテキストを作成
func (l *LocationRecord) ToLocationContext() LocationContext {
	images := make([]string, len(l.Images))
	copy(images, l.Images)
	ctx := LocationContext{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		Color:       l.Color,
		Icon:        l.Icon,
		Images:      images,
		Address:     l.Address,
	}
	if l.Coordinates != nil {
		c := *l.Coordinates
		ctx.Coordinates = &c
	}
	return ctx
}

// RankedLocation 基準地点からの距離付きの地点（永続化しない）
type RankedLocation struct {
	LocationRecord
	DistanceKm float64 `json:"distance_km"`
}

// IsReachable 距離が有限か（座標が有効だったか）
func (r RankedLocation) IsReachable() bool {
	return !math.IsInf(r.DistanceKm, 1)
}

// MarshalJSON 距離が求められない地点は distance_km を null にする
func (r RankedLocation) MarshalJSON() ([]byte, error) {
	type rankedJSON struct {
		LocationRecord
		DistanceKm *float64 `json:"distance_km"`
	}
	out := rankedJSON{LocationRecord: r.LocationRecord}
	if r.IsReachable() && !math.IsNaN(r.DistanceKm) {
		d := r.DistanceKm
		out.DistanceKm = &d
	}
	return json.Marshal(out)
}

// LocationContext 撮影した写真を地点に関連付けるための情報
type LocationContext struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Coordinates *Coordinate `json:"coordinates,omitempty"`
	Color       string      `json:"color"`
	Icon        string      `json:"icon"`
	Images      []string    `json:"images"`
	Address     string      `json:"address,omitempty"`
}

// CreateLocationRequest 地点登録フォームの入力
type CreateLocationRequest struct {
	Name        string      `json:"name" validate:"required"`
	Description string      `json:"description" validate:"required"`
	Coordinates *Coordinate `json:"coordinates" validate:"required"`
	Color       string      `json:"color"`
	Icon        string      `json:"icon"`
	Address     string      `json:"address"`
}

// CreateLocationResponse 地点登録のレスポンス
type CreateLocationResponse struct {
	Status   string          `json:"status"`
	Location *LocationRecord `json:"location"`
}

// GetLocationsResponse 地点一覧のレスポンス
type GetLocationsResponse struct {
	Locations []LocationRecord `json:"locations"`
}

// NearbyLocationsResponse 近くの地点のレスポンス
type NearbyLocationsResponse struct {
	Origin    Coordinate       `json:"origin"`
	RadiusKm  float64          `json:"radius_km"`
	Limit     int              `json:"limit"`
	Locations []RankedLocation `json:"locations"`
}

// RankedLocationsResponse 基準地点からの距離順に並べた全地点のレスポンス
type RankedLocationsResponse struct {
	Origin    Coordinate       `json:"origin"`
	Locations []RankedLocation `json:"locations"`
}

// DirectionsResponse 経路案内URLのレスポンス
type DirectionsResponse struct {
	LocationID string `json:"location_id"`
	AppURL     string `json:"app_url"`
	WebURL     string `json:"web_url"`
	SearchURL  string `json:"search_url"`
}

// UploadPhotosResponse 写真アップロードのレスポンス
type UploadPhotosResponse struct {
	LocationID string   `json:"location_id"`
	Uploaded   []string `json:"uploaded"`
}
