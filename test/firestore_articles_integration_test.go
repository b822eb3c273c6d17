package test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/infrastructure/firestore"
	repoimpl "EcoCSM-App/internal/repository"
)

func TestFirestoreArticlesRepository_GetAll(t *testing.T) {
	_, client := setupTestLocationsRepository(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	id := "integration-test-" + time.Now().Format("20060102150405")
	doc := client.GetClient().Collection(model.ArticlesCollection).Doc(id)
	_, err := doc.Set(ctx, map[string]interface{}{
		"title":   "統合テストの記事",
		"content": "本文",
		"summary": "要約",
		"author":  "integration",
		"date":    time.Now().Add(24 * time.Hour),
		"image":   "https://example.com/a.jpg",
	})
	require.NoError(t, err)
	t.Cleanup(func() { deleteTestArticle(t, client, id) })

	articles, err := repoimpl.NewFirestoreArticlesRepository(client.GetClient()).GetAll(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, articles)

	// 未来日付なので先頭に並ぶ
	assert.Equal(t, id, articles[0].ID)
	assert.Equal(t, "統合テストの記事", articles[0].Title)
	assert.Equal(t, "integration", articles[0].Author)
	_, err = time.Parse(time.RFC3339, articles[0].Date)
	assert.NoError(t, err)
}

// deleteTestArticle はテストで作成した記事を削除する
func deleteTestArticle(t *testing.T, client *firestore.FirestoreClient, id string) {
	t.Helper()
	_, err := client.GetClient().Collection(model.ArticlesCollection).Doc(id).Delete(context.Background())
	if err != nil {
		t.Logf("⚠️ テストデータの削除に失敗: %s: %v", id, err)
	}
}
