package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	storage_go "github.com/supabase-community/storage-go"

	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/platform/obs"
)

// SupabasePhotoStorage は Supabase Storage のバケットに写真を保存する
type SupabasePhotoStorage struct {
	storageURL string
	apiKey     string
	bucket     string
}

// NewSupabasePhotoStorage はプロジェクトURL（https://xxx.supabase.co）からストレージを作成する
func NewSupabasePhotoStorage(supabaseURL, apiKey, bucket string) *SupabasePhotoStorage {
	return &SupabasePhotoStorage{
		storageURL: strings.TrimRight(supabaseURL, "/") + "/storage/v1",
		apiKey:     apiKey,
		bucket:     bucket,
	}
}

// newClient はアップロードごとにクライアントを作る。
// storage_go.Client はファイルオプションを共有ヘッダーに書き込むため、並行アップロードで使い回せない
func (s *SupabasePhotoStorage) newClient() *storage_go.Client {
	return storage_go.NewClient(s.storageURL, s.apiKey, map[string]string{"apikey": s.apiKey})
}

// Upload は objectPath に写真を保存し、公開URLを返す
func (s *SupabasePhotoStorage) Upload(ctx context.Context, objectPath string, contentType string, data io.Reader) (_ string, err error) {
	defer obs.Time(ctx, "storage.Upload")(&err)

	objectPath = strings.TrimLeft(objectPath, "/")
	if objectPath == "" {
		return "", &model.ValidationError{Field: "objectPath", Message: "保存先のパスが空です"}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := s.newClient()
	upsert := false
	_, err = client.UploadFile(s.bucket, objectPath, data, storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		var storageErr *storage_go.StorageError
		if errors.As(err, &storageErr) && (storageErr.Status == 401 || storageErr.Status == 403) {
			return "", fmt.Errorf("写真のアップロードが拒否されました: %v: %w", err, model.ErrPermissionDenied)
		}
		return "", fmt.Errorf("写真のアップロードに失敗: %v: %w", err, model.ErrNetworkFailure)
	}

	return client.GetPublicUrl(s.bucket, objectPath).SignedURL, nil
}
