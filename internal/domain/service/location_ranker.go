package service

import (
	"math"
	"sort"

	"EcoCSM-App/internal/domain/helper"
	"EcoCSM-App/internal/domain/model"
)

// Rank は基準地点から半径内の地点を近い順に最大 limit 件返す。
// origin が nil の場合は空のスライスを返し、呼び出し側は未ランクの一覧を表示する。
// radiusKm, limit が 0 以下の場合はデフォルト値（10km, 5件）を使う。
func Rank(locations []model.LocationRecord, origin *model.Coordinate, radiusKm float64, limit int) []model.RankedLocation {
	ranked := []model.RankedLocation{}
	if origin == nil {
		return ranked
	}
	if radiusKm <= 0 || math.IsNaN(radiusKm) {
		radiusKm = model.DefaultNearbyRadiusKm
	}
	if limit <= 0 {
		limit = model.DefaultNearbyLimit
	}

	for i := range locations {
		distance := helper.DistanceToLocation(*origin, &locations[i])
		if math.IsInf(distance, 1) || distance > radiusKm {
			continue
		}
		ranked = append(ranked, model.RankedLocation{
			LocationRecord: locations[i],
			DistanceKm:     distance,
		})
	}

	sortByDistance(ranked)

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// RankAll は全地点に距離を付けて近い順に並べる。座標が無効な地点は末尾（+Inf）。
// origin が nil の場合は入力順のまま全て +Inf とする。
func RankAll(locations []model.LocationRecord, origin *model.Coordinate) []model.RankedLocation {
	ranked := make([]model.RankedLocation, 0, len(locations))
	for i := range locations {
		distance := math.Inf(1)
		if origin != nil {
			distance = helper.DistanceToLocation(*origin, &locations[i])
		}
		ranked = append(ranked, model.RankedLocation{
			LocationRecord: locations[i],
			DistanceKm:     distance,
		})
	}
	if origin != nil {
		sortByDistance(ranked)
	}
	return ranked
}

// sortByDistance は距離の昇順、同距離はID昇順で安定に並べる
func sortByDistance(ranked []model.RankedLocation) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].DistanceKm != ranked[j].DistanceKm {
			return ranked[i].DistanceKm < ranked[j].DistanceKm
		}
		return ranked[i].ID < ranked[j].ID
	})
}
