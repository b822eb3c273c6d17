package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"cloud.google.com/go/firestore"

	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/platform/obs"
)

// FirestoreArticlesRepository Firestoreの artigos コレクションを使用した記事リポジトリ
type FirestoreArticlesRepository struct {
	client *firestore.Client
}

// NewFirestoreArticlesRepository 新しいFirestoreArticlesRepositoryインスタンスを作成
func NewFirestoreArticlesRepository(client *firestore.Client) *FirestoreArticlesRepository {
	return &FirestoreArticlesRepository{
		client: client,
	}
}

// GetAll は全記事を新しい順に取得する
func (r *FirestoreArticlesRepository) GetAll(ctx context.Context) (_ []model.Article, err error) {
	defer obs.Time(ctx, "articles.GetAll")(&err)

	docs, err := r.client.Collection(model.ArticlesCollection).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("記事データの取得失敗: %w", mapFirestoreError(err))
	}

	articles := make([]model.Article, 0, len(docs))
	for _, doc := range docs {
		articles = append(articles, ArticleFromMap(doc.Ref.ID, doc.Data()))
	}
	SortArticlesByDate(articles)
	return articles, nil
}

// ArticleFromMap は記事ドキュメントを変換する。date は文字列・タイムスタンプのどちらでもよい
func ArticleFromMap(id string, data map[string]interface{}) model.Article {
	article := model.Article{
		ID:      id,
		Title:   stringField(data, "title"),
		Content: stringField(data, "content"),
		Summary: stringField(data, "summary"),
		Author:  stringField(data, "author"),
		Date:    stringField(data, "date"),
		Image:   stringField(data, "image"),
	}
	if t, ok := data["date"].(time.Time); ok {
		article.Date = t.UTC().Format(time.RFC3339)
	}
	return article
}

// SortArticlesByDate は記事を新しい順に並べる。date は ISO 8601 なので文字列比較でよい
func SortArticlesByDate(articles []model.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].Date > articles[j].Date
	})
}
