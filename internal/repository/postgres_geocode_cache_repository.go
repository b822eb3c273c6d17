package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/domain/repository"
	"EcoCSM-App/internal/infrastructure/database"
	"EcoCSM-App/internal/platform/obs"
)

// geocodeKeyPrecision はキャッシュキーの小数点以下桁数（約1m）
const geocodeKeyPrecision = 5

// PostgresGeocodeCacheRepository 逆ジオコーディング結果を PostgreSQL にキャッシュする
type PostgresGeocodeCacheRepository struct {
	db *sql.DB
}

// NewPostgresGeocodeCacheRepository 新しいPostgresGeocodeCacheRepositoryインスタンスを作成
func NewPostgresGeocodeCacheRepository(client *database.PostgreSQLClient) *PostgresGeocodeCacheRepository {
	return &PostgresGeocodeCacheRepository{db: client.DB}
}

// GeocodeKey は座標をキャッシュキー用に丸める
func GeocodeKey(c model.Coordinate) (lat, lng float64) {
	scale := math.Pow(10, geocodeKeyPrecision)
	return math.Round(c.Latitude*scale) / scale, math.Round(c.Longitude*scale) / scale
}

// Get はキャッシュ済みの住所を返す
func (r *PostgresGeocodeCacheRepository) Get(ctx context.Context, coordinate model.Coordinate) (_ string, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.Get")(&err)

	if r.db == nil {
		return "", false, errors.New("geocode cache: db is nil")
	}
	lat, lng := GeocodeKey(coordinate)

	var address string
	err = r.db.QueryRowContext(ctx, `
	SELECT address
	FROM geocode_cache
	WHERE lat_key = $1 AND lng_key = $2;
	`, lat, lng).Scan(&address)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get geocode cache: %w", err)
	}
	return address, true, nil
}

// Put は住所を保存する（既存のキーは上書き）
func (r *PostgresGeocodeCacheRepository) Put(ctx context.Context, coordinate model.Coordinate, address string) (err error) {
	defer obs.Time(ctx, "geocode.cache.Put")(&err)

	if r.db == nil {
		return errors.New("geocode cache: db is nil")
	}
	if strings.TrimSpace(address) == "" {
		return errors.New("geocode cache: empty address")
	}
	lat, lng := GeocodeKey(coordinate)

	_, err = r.db.ExecContext(ctx, `
	INSERT INTO geocode_cache (lat_key, lng_key, address)
	VALUES ($1, $2, $3)
	ON CONFLICT (lat_key, lng_key) DO UPDATE
	SET address = EXCLUDED.address,
		updated_at = now();
	`, lat, lng, address)
	if err != nil {
		return fmt.Errorf("insert geocode cache: %w", err)
	}
	return nil
}

// CachedReverseGeocoder はキャッシュを優先して逆ジオコーディングする
type CachedReverseGeocoder struct {
	cache    repository.GeocodeCacheRepository
	upstream repository.ReverseGeocoder
}

// NewCachedReverseGeocoder はキャッシュ付きの逆ジオコーダを作成する
func NewCachedReverseGeocoder(cache repository.GeocodeCacheRepository, upstream repository.ReverseGeocoder) *CachedReverseGeocoder {
	return &CachedReverseGeocoder{cache: cache, upstream: upstream}
}

// ReverseGeocode はキャッシュにあればそれを返し、なければ外部APIの結果を保存して返す。
// キャッシュの障害は外部APIへのフォールバックで吸収する
func (g *CachedReverseGeocoder) ReverseGeocode(ctx context.Context, coordinate model.Coordinate) (string, error) {
	address, ok, err := g.cache.Get(ctx, coordinate)
	if err != nil {
		log.Printf("⚠️ 住所キャッシュの取得に失敗: %v", err)
	} else if ok {
		return address, nil
	}

	address, err = g.upstream.ReverseGeocode(ctx, coordinate)
	if err != nil {
		return "", err
	}
	if err := g.cache.Put(ctx, coordinate, address); err != nil {
		log.Printf("⚠️ 住所キャッシュの保存に失敗: %v", err)
	}
	return address, nil
}
