package helper

import (
	"math"

	"EcoCSM-App/internal/domain/model"
)

const earthRadiusKm = 6371.0

// HaversineDistance は2地点間の大円距離を計算する (km)
func HaversineDistance(a, b model.Coordinate) float64 {
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLng := toRadians(b.Longitude - a.Longitude)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// DistanceToLocation は基準座標から地点までの距離を返す。座標が無効な地点は +Inf
func DistanceToLocation(origin model.Coordinate, location *model.LocationRecord) float64 {
	if location == nil || !location.HasValidCoordinates() {
		return math.Inf(1)
	}
	return HaversineDistance(origin, *location.Coordinates)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
