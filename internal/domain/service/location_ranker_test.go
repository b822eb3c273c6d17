package service

import (
	"math"
	"testing"

	"EcoCSM-App/internal/domain/helper"
	"EcoCSM-App/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRank_LisbonScenario(t *testing.T) {
	locations := []model.LocationRecord{
		location("A", coord(38.70, -9.14)),
		location("B", coord(38.80, -9.00)),
		location("C", nil),
	}

	ranked := Rank(locations, &lisbon, 10, 5)

	require.Len(t, ranked, 1)
	assert.Equal(t, "A", ranked[0].ID)
	assert.InDelta(t, 2.48, ranked[0].DistanceKm, 0.01)
}

func TestRank_NilOriginReturnsEmpty(t *testing.T) {
	locations := []model.LocationRecord{location("A", coord(38.70, -9.14))}

	ranked := Rank(locations, nil, 10, 5)

	assert.NotNil(t, ranked)
	assert.Empty(t, ranked)
}

func TestRank_EmptyInput(t *testing.T) {
	assert.Empty(t, Rank(nil, &lisbon, 10, 5))
}

func TestRank_Properties(t *testing.T) {
	// リスボン周辺に格子状に地点を並べる
	var locations []model.LocationRecord
	ids := "abcdefghijklmnopqrstuvwxyz"
	for i := 0; i < len(ids); i++ {
		lat := lisbon.Latitude + float64(i%5-2)*0.03
		lng := lisbon.Longitude + float64(i/5-2)*0.03
		locations = append(locations, location(string(ids[i]), coord(lat, lng)))
	}
	locations = append(locations, location("far", coord(41.1579, -8.6291)))
	locations = append(locations, location("broken", coord(math.NaN(), 0)))

	tests := []struct {
		name     string
		radiusKm float64
		limit    int
	}{
		{name: "デフォルト", radiusKm: 10, limit: 5},
		{name: "狭い半径", radiusKm: 3, limit: 5},
		{name: "件数の上限を大きく", radiusKm: 10, limit: 100},
		{name: "1件のみ", radiusKm: 10, limit: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranked := Rank(locations, &lisbon, tt.radiusKm, tt.limit)

			assert.LessOrEqual(t, len(ranked), tt.limit)
			for i, r := range ranked {
				assert.LessOrEqual(t, r.DistanceKm, tt.radiusKm)
				assert.NotEqual(t, "far", r.ID)
				assert.NotEqual(t, "broken", r.ID)
				assert.InDelta(t, helper.HaversineDistance(lisbon, *r.Coordinates), r.DistanceKm, 1e-9)
				if i > 0 {
					assert.LessOrEqual(t, ranked[i-1].DistanceKm, r.DistanceKm)
				}
			}

			// 上限に達していなければ半径内の地点は全て含まれる
			if len(ranked) < tt.limit {
				within := 0
				for i := range locations {
					if helper.DistanceToLocation(lisbon, &locations[i]) <= tt.radiusKm {
						within++
					}
				}
				assert.Equal(t, within, len(ranked))
			}
		})
	}
}

func TestRank_TiesAreOrderedByID(t *testing.T) {
	same := coord(38.73, -9.15)
	locations := []model.LocationRecord{
		location("z", same),
		location("m", same),
		location("a", same),
	}

	ranked := Rank(locations, &lisbon, 10, 5)

	require.Len(t, ranked, 3)
	assert.Equal(t, []string{"a", "m", "z"}, []string{ranked[0].ID, ranked[1].ID, ranked[2].ID})
}

func TestRank_DefaultsForNonPositiveArguments(t *testing.T) {
	var locations []model.LocationRecord
	for i := 0; i < 8; i++ {
		locations = append(locations, location(string(rune('a'+i)), coord(38.7223+float64(i)*0.001, -9.1393)))
	}
	locations = append(locations, location("outside", coord(38.80, -9.00)))

	ranked := Rank(locations, &lisbon, 0, 0)

	assert.Len(t, ranked, model.DefaultNearbyLimit)
	assert.Equal(t, "a", ranked[0].ID)
}

func TestRankAll(t *testing.T) {
	locations := []model.LocationRecord{
		location("C", nil),
		location("B", coord(38.80, -9.00)),
		location("A", coord(38.70, -9.14)),
	}

	t.Run("基準地点あり", func(t *testing.T) {
		ranked := RankAll(locations, &lisbon)

		require.Len(t, ranked, 3)
		assert.Equal(t, "A", ranked[0].ID)
		assert.Equal(t, "B", ranked[1].ID)
		assert.InDelta(t, 14.85, ranked[1].DistanceKm, 0.05)
		assert.Equal(t, "C", ranked[2].ID)
		assert.False(t, ranked[2].IsReachable())
	})

	t.Run("基準地点なし", func(t *testing.T) {
		ranked := RankAll(locations, nil)

		require.Len(t, ranked, 3)
		assert.Equal(t, "C", ranked[0].ID)
		for _, r := range ranked {
			assert.False(t, r.IsReachable())
		}
	})
}
