package helper

import (
	"github.com/paulmach/orb"

	"EcoCSM-App/internal/domain/model"
)

// IndexByID はIDから地点への索引を作成する
func IndexByID(locations []model.LocationRecord) map[string]model.LocationRecord {
	index := make(map[string]model.LocationRecord, len(locations))
	for _, l := range locations {
		index[l.ID] = l
	}
	return index
}

// CloneLocations はスナップショットを呼び出し側から切り離すためにコピーする
func CloneLocations(locations []model.LocationRecord) []model.LocationRecord {
	out := make([]model.LocationRecord, len(locations))
	for i, l := range locations {
		if l.Images != nil {
			l.Images = append([]string(nil), l.Images...)
		}
		if l.Coordinates != nil {
			c := *l.Coordinates
			l.Coordinates = &c
		}
		out[i] = l
	}
	return out
}

// FilterWithinBound は矩形範囲に含まれる地点を抽出する。座標が無効な地点は含まない
func FilterWithinBound(locations []model.LocationRecord, bound orb.Bound) []model.LocationRecord {
	result := []model.LocationRecord{}
	for _, l := range locations {
		if l.HasValidCoordinates() && bound.Contains(l.Coordinates.ToPoint()) {
			result = append(result, l)
		}
	}
	return result
}
