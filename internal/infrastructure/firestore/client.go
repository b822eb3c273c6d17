package firestore

import (
	"context"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// FirestoreClient は地点コレクションへ接続する Firestore クライアントのラッパー
type FirestoreClient struct {
	client *firestore.Client
}

// NewFirestoreClient は認証情報ファイルがあればそれを使い、なければデフォルト認証で接続する
func NewFirestoreClient(ctx context.Context, projectID, credentialsFile string) (*FirestoreClient, error) {
	if projectID == "" {
		return nil, fmt.Errorf("FirestoreのプロジェクトIDが指定されていません")
	}

	var opts []option.ClientOption
	// Cloud Run ではサービスアカウントのデフォルト認証を使う
	isCloudRun := os.Getenv("K_SERVICE") != ""
	if !isCloudRun && credentialsFile != "" {
		if _, err := os.Stat(credentialsFile); err != nil {
			log.Printf("⚠️ 認証情報ファイルが見つかりません: %s (デフォルト認証を使用)", credentialsFile)
		} else {
			log.Printf("📄 認証情報ファイルを使用: %s", credentialsFile)
			opts = append(opts, option.WithCredentialsFile(credentialsFile))
		}
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("Firestoreクライアントの初期化に失敗: %w", err)
	}
	log.Printf("✅ Firestoreクライアント初期化完了: %s", projectID)

	return &FirestoreClient{client: client}, nil
}

// Close は接続を閉じる
func (fc *FirestoreClient) Close() error {
	return fc.client.Close()
}

// GetClient は内部の Firestore クライアントを返す
func (fc *FirestoreClient) GetClient() *firestore.Client {
	return fc.client
}
