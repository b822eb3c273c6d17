package application

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/domain/repository"
)

// LocationSubmissionService 汚染地点の登録に関するビジネスロジックを提供するサービス
type LocationSubmissionService interface {
	// CreateLocation ログイン中のユーザーとして地点を登録
	CreateLocation(ctx context.Context, auth model.AuthStatus, req *model.CreateLocationRequest) (*model.CreateLocationResponse, error)
}

// locationSubmissionServiceImpl LocationSubmissionServiceの実装
type locationSubmissionServiceImpl struct {
	locationsRepo repository.LocationsRepository
	geocoder      repository.ReverseGeocoder
	now           func() time.Time
}

// NewLocationSubmissionService LocationSubmissionServiceの新しいインスタンスを作成。geocoder は nil でもよい
func NewLocationSubmissionService(locationsRepo repository.LocationsRepository, geocoder repository.ReverseGeocoder) LocationSubmissionService {
	return &locationSubmissionServiceImpl{
		locationsRepo: locationsRepo,
		geocoder:      geocoder,
		now:           time.Now,
	}
}

// CreateLocation 地点を登録
func (s *locationSubmissionServiceImpl) CreateLocation(ctx context.Context, auth model.AuthStatus, req *model.CreateLocationRequest) (*model.CreateLocationResponse, error) {
	if !auth.SignedIn {
		return nil, fmt.Errorf("地点の登録にはログインが必要です: %w", model.ErrPermissionDenied)
	}
	if err := s.validateCreateLocationRequest(req); err != nil {
		return nil, fmt.Errorf("リクエストの検証失敗: %w", err)
	}

	now := s.now()
	coordinates := *req.Coordinates
	record := model.LocationRecord{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Coordinates: &coordinates,
		Images:      []string{},
		Color:       strings.TrimSpace(req.Color),
		Icon:        strings.TrimSpace(req.Icon),
		Address:     strings.TrimSpace(req.Address),
		CreatedBy:   auth.User.DisplayName(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}.WithDefaults()

	if record.Address == "" {
		record.Address = s.lookupAddress(ctx, coordinates)
	}

	created, err := s.locationsRepo.Create(ctx, &record)
	if err != nil {
		return nil, fmt.Errorf("地点の登録失敗: %w", err)
	}

	log.Printf("✅ 地点登録完了: %s (登録者: %s)", created.ID, created.CreatedBy)
	return &model.CreateLocationResponse{
		Status:   "created",
		Location: created,
	}, nil
}

// lookupAddress 住所を逆ジオコーディングする。失敗しても登録は続ける
func (s *locationSubmissionServiceImpl) lookupAddress(ctx context.Context, c model.Coordinate) string {
	if s.geocoder == nil {
		return ""
	}
	address, err := s.geocoder.ReverseGeocode(ctx, c)
	if err != nil {
		log.Printf("⚠️ 住所の取得に失敗（住所なしで登録します）: %v", err)
		return ""
	}
	return address
}

// validateCreateLocationRequest リクエストのバリデーション
func (s *locationSubmissionServiceImpl) validateCreateLocationRequest(req *model.CreateLocationRequest) error {
	if req == nil {
		return &model.ValidationError{Field: "body", Message: "リクエストが空です"}
	}
	if strings.TrimSpace(req.Name) == "" {
		return &model.ValidationError{Field: "name", Message: "地点名は必須です"}
	}
	if strings.TrimSpace(req.Description) == "" {
		return &model.ValidationError{Field: "description", Message: "説明は必須です"}
	}
	if req.Coordinates == nil {
		return &model.ValidationError{Field: "coordinates", Message: "位置情報は必須です"}
	}
	if !req.Coordinates.IsValid() {
		return &model.ValidationError{Field: "coordinates", Message: "緯度経度が範囲外です"}
	}
	// フォームの初期値 (0, 0) のままの送信は位置未入力として扱う
	if req.Coordinates.Latitude == 0 && req.Coordinates.Longitude == 0 {
		return &model.ValidationError{Field: "coordinates", Message: "位置情報が入力されていません"}
	}
	return nil
}
