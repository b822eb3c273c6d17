package config

import (
	"fmt"
	"log"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"EcoCSM-App/internal/domain/model"
)

// Config 環境変数から読み込むアプリケーション設定
type Config struct {
	Port string

	FirestoreProjectID string
	CredentialsFile    string

	SupabaseURL     string
	SupabaseAnonKey string
	PhotoBucket     string
	DatabaseURL     string

	GoogleMapsAPIKey  string
	OpenWeatherAPIKey string

	NearbyRadiusKm float64
	NearbyLimit    int
}

// Load は .env を読み込んだ上で環境変数から設定を作成する
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️ .envファイルが見つかりません。システムの環境変数を使用します")
	}
	return FromEnv()
}

// FromEnv は環境変数のみから設定を作成する
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		FirestoreProjectID: os.Getenv("FIRESTORE_PROJECT_ID"),
		CredentialsFile:    os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		SupabaseURL:        os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:    os.Getenv("SUPABASE_ANON_KEY"),
		PhotoBucket:        getEnv("PHOTO_BUCKET", "photos"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		GoogleMapsAPIKey:   os.Getenv("GOOGLE_MAPS_API_KEY"),
		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		NearbyRadiusKm:     model.DefaultNearbyRadiusKm,
		NearbyLimit:        model.DefaultNearbyLimit,
	}

	if v := os.Getenv("NEARBY_RADIUS_KM"); v != "" {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(radius) || math.IsInf(radius, 0) || radius <= 0 {
			return nil, fmt.Errorf("NEARBY_RADIUS_KMが不正です: %q", v)
		}
		cfg.NearbyRadiusKm = radius
	}
	if v := os.Getenv("NEARBY_LIMIT"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit <= 0 {
			return nil, fmt.Errorf("NEARBY_LIMITが不正です: %q", v)
		}
		cfg.NearbyLimit = limit
	}
	return cfg, nil
}

// Validate は必須の環境変数が揃っているか確認する
func (c *Config) Validate() error {
	if c.FirestoreProjectID == "" {
		return fmt.Errorf("FIRESTORE_PROJECT_ID環境変数が設定されていません")
	}
	return nil
}

// HasSupabase は認証・写真・記事に使う Supabase が設定されているか
func (c *Config) HasSupabase() bool {
	return c.SupabaseURL != "" && c.SupabaseAnonKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
