package repository

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paulmach/orb"

	"EcoCSM-App/internal/domain/model"
)

// ParseBBox は "min_lng,min_lat,max_lng,max_lat" 形式の文字列を orb.Bound に変換する
func ParseBBox(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, &model.ValidationError{Field: "bbox", Message: "min_lng,min_lat,max_lng,max_lat の形式で指定してください"}
	}
	values := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return orb.Bound{}, &model.ValidationError{Field: "bbox", Message: fmt.Sprintf("数値ではありません: %q", p)}
		}
		values[i] = v
	}

	southWest := model.Coordinate{Longitude: values[0], Latitude: values[1]}
	northEast := model.Coordinate{Longitude: values[2], Latitude: values[3]}
	if !southWest.IsValid() || !northEast.IsValid() {
		return orb.Bound{}, &model.ValidationError{Field: "bbox", Message: "緯度経度が範囲外です"}
	}

	// 2点から正しい境界ボックスを作る（指定順が逆でもよい）
	bound := southWest.ToPoint().Bound().Extend(northEast.ToPoint())
	return bound, nil
}

// RegionToBBox は地図の表示領域をクエリ文字列の bbox 形式にする
func RegionToBBox(region model.MapRegion) string {
	b := region.Bound()
	return fmt.Sprintf("%g,%g,%g,%g", b.Min.Lon(), b.Min.Lat(), b.Max.Lon(), b.Max.Lat())
}

// LocationFromMap は型が揃っていないドキュメントをフィールド単位で変換する。
// 変換できないフィールドは空のまま（座標は nil）にする
func LocationFromMap(id string, data map[string]interface{}) model.LocationRecord {
	record := model.LocationRecord{
		ID:          id,
		Name:        stringField(data, "name"),
		Description: stringField(data, "description"),
		Color:       stringField(data, "color"),
		Icon:        stringField(data, "icon"),
		Address:     stringField(data, "address"),
		CreatedBy:   stringField(data, "createdBy"),
		CreatedAt:   timeField(data, "createdAt"),
		UpdatedAt:   timeField(data, "updatedAt"),
	}

	if c, ok := data["coordinates"].(map[string]interface{}); ok {
		lat, latOK := numberField(c, "latitude")
		lng, lngOK := numberField(c, "longitude")
		if latOK && lngOK {
			record.Coordinates = &model.Coordinate{Latitude: lat, Longitude: lng}
		}
	}

	if images, ok := data["images"].([]interface{}); ok {
		for _, img := range images {
			if s, ok := img.(string); ok && s != "" {
				record.Images = append(record.Images, s)
			}
		}
	}

	return record.WithDefaults()
}

func stringField(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}

func numberField(data map[string]interface{}, key string) (float64, bool) {
	switch v := data[key].(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

func timeField(data map[string]interface{}, key string) time.Time {
	switch v := data[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}
