package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EcoCSM-App/internal/domain/model"
)

type memoryGeocodeCache struct {
	entries map[[2]float64]string
	getErr  error
	puts    int
}

func newMemoryGeocodeCache() *memoryGeocodeCache {
	return &memoryGeocodeCache{entries: map[[2]float64]string{}}
}

func (c *memoryGeocodeCache) Get(ctx context.Context, coordinate model.Coordinate) (string, bool, error) {
	if c.getErr != nil {
		return "", false, c.getErr
	}
	lat, lng := GeocodeKey(coordinate)
	address, ok := c.entries[[2]float64{lat, lng}]
	return address, ok, nil
}

func (c *memoryGeocodeCache) Put(ctx context.Context, coordinate model.Coordinate, address string) error {
	lat, lng := GeocodeKey(coordinate)
	c.entries[[2]float64{lat, lng}] = address
	c.puts++
	return nil
}

type countingGeocoder struct {
	calls int
	err   error
}

func (g *countingGeocoder) ReverseGeocode(ctx context.Context, coordinate model.Coordinate) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return "Rua Augusta, Lisboa", nil
}

func TestGeocodeKey(t *testing.T) {
	lat, lng := GeocodeKey(model.Coordinate{Latitude: 38.7223049, Longitude: -9.1393351})
	assert.Equal(t, 38.7223, lat)
	assert.Equal(t, -9.13934, lng)
}

func TestCachedReverseGeocoder(t *testing.T) {
	ctx := context.Background()
	here := model.Coordinate{Latitude: 38.7101, Longitude: -9.1370}

	t.Run("2回目はキャッシュから返す", func(t *testing.T) {
		cache := newMemoryGeocodeCache()
		upstream := &countingGeocoder{}
		g := NewCachedReverseGeocoder(cache, upstream)

		first, err := g.ReverseGeocode(ctx, here)
		require.NoError(t, err)
		second, err := g.ReverseGeocode(ctx, model.Coordinate{Latitude: 38.710101, Longitude: -9.137001})
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, 1, upstream.calls)
		assert.Equal(t, 1, cache.puts)
	})

	t.Run("キャッシュ障害時は外部APIを使う", func(t *testing.T) {
		cache := newMemoryGeocodeCache()
		cache.getErr = errors.New("connection refused")
		upstream := &countingGeocoder{}

		address, err := NewCachedReverseGeocoder(cache, upstream).ReverseGeocode(ctx, here)

		require.NoError(t, err)
		assert.Equal(t, "Rua Augusta, Lisboa", address)
		assert.Equal(t, 1, upstream.calls)
	})

	t.Run("外部APIのエラーはそのまま返す", func(t *testing.T) {
		upstream := &countingGeocoder{err: model.ErrNotFound}

		_, err := NewCachedReverseGeocoder(newMemoryGeocodeCache(), upstream).ReverseGeocode(ctx, here)

		assert.True(t, errors.Is(err, model.ErrNotFound))
	})
}
