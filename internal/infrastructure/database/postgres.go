package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
)

// PostgreSQLClient 逆ジオコーディングキャッシュ用の PostgreSQL 接続
type PostgreSQLClient struct {
	DB *sql.DB
}

// NewPostgreSQLClient は DATABASE_URL の接続文字列で接続する
func NewPostgreSQLClient(ctx context.Context, databaseURL string) (*PostgreSQLClient, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL環境変数が設定されていません")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("PostgreSQL接続の初期化に失敗: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	client := &PostgreSQLClient{DB: db}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.HealthCheck(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("PostgreSQLへの接続に失敗: %w", err)
	}
	log.Printf("✅ PostgreSQL接続完了")

	return client, nil
}

// EnsureSchema はキャッシュテーブルがなければ作成する
func (pc *PostgreSQLClient) EnsureSchema(ctx context.Context) error {
	_, err := pc.DB.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		lat_key    NUMERIC(9,5) NOT NULL,
		lng_key    NUMERIC(9,5) NOT NULL,
		address    TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (lat_key, lng_key)
	);
	`)
	if err != nil {
		return fmt.Errorf("geocode_cacheテーブルの作成に失敗: %w", err)
	}
	return nil
}

// Close データベース接続を閉じる
func (pc *PostgreSQLClient) Close() error {
	if pc.DB != nil {
		return pc.DB.Close()
	}
	return nil
}

// HealthCheck データベース接続のヘルスチェック
func (pc *PostgreSQLClient) HealthCheck(ctx context.Context) error {
	if pc.DB == nil {
		return fmt.Errorf("PostgreSQLクライアントが初期化されていません")
	}
	return pc.DB.PingContext(ctx)
}
