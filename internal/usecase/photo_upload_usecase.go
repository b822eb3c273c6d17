package usecase

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"sync"

	"github.com/google/uuid"

	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/domain/repository"
)

// maxParallelUploads は同時にアップロードする写真の上限
const maxParallelUploads = 4

// PhotoFile はアップロードする写真1枚
type PhotoFile struct {
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

type PhotoUploadUseCase interface {
	// UploadPhotos は写真を保存し、地点の images に追加する
	UploadPhotos(ctx context.Context, auth model.AuthStatus, locationID string, photos []PhotoFile) (*model.UploadPhotosResponse, error)
}

// photoUploadUseCaseImpl はPhotoUploadUseCaseの実装
type photoUploadUseCaseImpl struct {
	locationsRepo repository.LocationsRepository
	storage       repository.PhotoStorage
}

// NewPhotoUploadUseCase は新しいPhotoUploadUseCaseインスタンスを作成
func NewPhotoUploadUseCase(locationsRepo repository.LocationsRepository, storage repository.PhotoStorage) PhotoUploadUseCase {
	return &photoUploadUseCaseImpl{
		locationsRepo: locationsRepo,
		storage:       storage,
	}
}

// UploadPhotos は写真を並行でアップロードし、全て成功した場合のみ地点に追加する
func (u *photoUploadUseCaseImpl) UploadPhotos(ctx context.Context, auth model.AuthStatus, locationID string, photos []PhotoFile) (*model.UploadPhotosResponse, error) {
	if !auth.SignedIn {
		return nil, fmt.Errorf("写真の追加にはログインが必要です: %w", model.ErrPermissionDenied)
	}
	if len(photos) == 0 {
		return nil, &model.ValidationError{Field: "photos", Message: "写真が選択されていません"}
	}
	if _, err := u.locationsRepo.GetByID(ctx, locationID); err != nil {
		return nil, fmt.Errorf("写真の追加先の地点を取得できません: %w", err)
	}

	log.Printf("📷 写真アップロード開始 (地点: %s, %d枚)", locationID, len(photos))

	type uploadResult struct {
		index int
		url   string
		err   error
	}

	resultChan := make(chan uploadResult, len(photos))
	semaphore := make(chan struct{}, maxParallelUploads)
	var wg sync.WaitGroup

	for i, photo := range photos {
		wg.Add(1)
		go func(idx int, p PhotoFile) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			url, err := u.uploadOne(ctx, locationID, p)
			resultChan <- uploadResult{index: idx, url: url, err: err}
		}(i, photo)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	urls := make([]string, len(photos))
	var firstErr error
	for result := range resultChan {
		if result.err != nil {
			log.Printf("❌ 写真%d のアップロードに失敗: %v", result.index+1, result.err)
			if firstErr == nil {
				firstErr = result.err
			}
			continue
		}
		urls[result.index] = result.url
	}
	if firstErr != nil {
		return nil, fmt.Errorf("写真のアップロードに失敗: %w", firstErr)
	}

	if err := u.locationsRepo.AppendImages(ctx, locationID, urls); err != nil {
		return nil, fmt.Errorf("地点への写真の追加に失敗: %w", err)
	}

	log.Printf("🎉 写真アップロード完了 (地点: %s, %d枚)", locationID, len(urls))
	return &model.UploadPhotosResponse{
		LocationID: locationID,
		Uploaded:   urls,
	}, nil
}

func (u *photoUploadUseCaseImpl) uploadOne(ctx context.Context, locationID string, p PhotoFile) (string, error) {
	if p.Open == nil {
		return "", &model.ValidationError{Field: "photos", Message: "写真のデータがありません"}
	}
	contentType := p.ContentType
	if contentType == "" {
		contentType = "image/jpeg"
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", &model.ValidationError{Field: "photos", Message: fmt.Sprintf("画像ではないファイルです: %s", p.Filename)}
	}

	body, err := p.Open()
	if err != nil {
		return "", fmt.Errorf("写真 %s を開けません: %w", p.Filename, err)
	}
	defer body.Close()

	return u.storage.Upload(ctx, PhotoObjectPath(locationID, p.Filename), contentType, body)
}

// PhotoObjectPath は locations/<地点ID>/<uuid>.<拡張子> の保存先パスを作る
func PhotoObjectPath(locationID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	return fmt.Sprintf("%s/%s/%s%s", model.PhotoObjectPrefix, locationID, uuid.New().String(), ext)
}

// PhotoSource は撮影フローで選ばれた写真を返す（カメラ・ファイル選択など）
type PhotoSource func(ctx context.Context, location model.LocationContext) ([]PhotoFile, error)

// cameraFlow は撮影した写真をアップロードする CameraFlow の実装
type cameraFlow struct {
	photos PhotoUploadUseCase
	source PhotoSource
	auth   func() model.AuthStatus
}

// NewCameraFlow は詳細パネルの撮影ボタンから使う CameraFlow を作成する
func NewCameraFlow(photos PhotoUploadUseCase, source PhotoSource, auth func() model.AuthStatus) repository.CameraFlow {
	return &cameraFlow{photos: photos, source: source, auth: auth}
}

// Capture は写真を取得してアップロードする。写真が選ばれなかった場合は何もしない
func (f *cameraFlow) Capture(ctx context.Context, location model.LocationContext) error {
	files, err := f.source(ctx, location)
	if err != nil {
		return fmt.Errorf("写真の取得に失敗: %w", err)
	}
	if len(files) == 0 {
		log.Printf("📷 写真が選択されませんでした: %s", location.ID)
		return nil
	}
	if f.photos == nil {
		return fmt.Errorf("写真の保存先が設定されていません: %w", model.ErrNetworkFailure)
	}
	_, err = f.photos.UploadPhotos(ctx, f.auth(), location.ID, files)
	return err
}
