package test

import (
	"context"
	"os"
	"testing"

	"github.com/joho/godotenv"

	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/infrastructure/firestore"
	repoimpl "EcoCSM-App/internal/repository"
)

// setupTestEnvironment は .env を読み込み、Firestore の設定がなければテストをスキップする
func setupTestEnvironment(t *testing.T) string {
	t.Helper()
	// CI環境等では.envが存在しない場合があるため無視する
	_ = godotenv.Load("../.env")

	projectID := os.Getenv("FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("FIRESTORE_PROJECT_ID が未設定のため統合テストをスキップ")
	}
	return projectID
}

// setupTestLocationsRepository は実際の Firestore に接続した地点リポジトリを作成する
func setupTestLocationsRepository(t *testing.T) (*repoimpl.FirestoreLocationsRepository, *firestore.FirestoreClient) {
	t.Helper()
	projectID := setupTestEnvironment(t)

	client, err := firestore.NewFirestoreClient(context.Background(), projectID, os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	if err != nil {
		t.Fatalf("Firestoreクライアントの初期化に失敗: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return repoimpl.NewFirestoreLocationsRepository(client.GetClient()), client
}

// deleteTestLocation はテストで作成した地点を削除する
func deleteTestLocation(t *testing.T, client *firestore.FirestoreClient, id string) {
	t.Helper()
	_, err := client.GetClient().Collection(model.LocationsCollection).Doc(id).Delete(context.Background())
	if err != nil {
		t.Logf("⚠️ テストデータの削除に失敗: %s: %v", id, err)
	}
}
