package database

import (
	"fmt"
	"log"

	"github.com/supabase-community/supabase-go"
)

// SupabaseClient Supabaseクライアントのラッパー（認証・ストレージ・記事テーブル）
type SupabaseClient struct {
	Client *supabase.Client
	url    string
}

// NewSupabaseClient 新しいSupabaseクライアントを作成
func NewSupabaseClient(supabaseURL, anonKey string) (*SupabaseClient, error) {
	if supabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL環境変数が設定されていません")
	}
	if anonKey == "" {
		return nil, fmt.Errorf("SUPABASE_ANON_KEY環境変数が設定されていません")
	}

	client, err := supabase.NewClient(supabaseURL, anonKey, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("Supabaseクライアントの初期化に失敗: %w", err)
	}

	return &SupabaseClient{
		Client: client,
		url:    supabaseURL,
	}, nil
}

// GetClient Supabaseクライアントを取得
func (sc *SupabaseClient) GetClient() *supabase.Client {
	return sc.Client
}

// HealthCheck クライアントが初期化されているか確認
func (sc *SupabaseClient) HealthCheck() error {
	if sc.Client == nil {
		return fmt.Errorf("Supabaseクライアントが初期化されていません")
	}
	log.Printf("✅ Supabaseクライアント初期化済み: %s", sc.url)
	return nil
}
