package handler

import (
	"context"
	"fmt"
	"io"

	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/domain/service"
	"EcoCSM-App/internal/usecase"
)

type fakeLocationsUseCase struct {
	locations  []model.LocationRecord
	err        error
	lastBBox   string
	lastOrigin model.Coordinate
	lastRadius float64
	lastLimit  int
}

func (f *fakeLocationsUseCase) GetLocations(ctx context.Context, bbox string) (*model.GetLocationsResponse, error) {
	f.lastBBox = bbox
	if f.err != nil {
		return nil, f.err
	}
	return &model.GetLocationsResponse{Locations: f.locations}, nil
}

func (f *fakeLocationsUseCase) GetLocationsByDistance(ctx context.Context, origin model.Coordinate, bbox string) (*model.RankedLocationsResponse, error) {
	f.lastOrigin, f.lastBBox = origin, bbox
	if f.err != nil {
		return nil, f.err
	}
	return &model.RankedLocationsResponse{Origin: origin, Locations: service.RankAll(f.locations, &origin)}, nil
}

func (f *fakeLocationsUseCase) GetNearbyLocations(ctx context.Context, origin model.Coordinate, radiusKm float64, limit int) (*model.NearbyLocationsResponse, error) {
	f.lastOrigin, f.lastRadius, f.lastLimit = origin, radiusKm, limit
	if f.err != nil {
		return nil, f.err
	}
	return &model.NearbyLocationsResponse{Origin: origin, RadiusKm: radiusKm, Limit: limit, Locations: []model.RankedLocation{}}, nil
}

func (f *fakeLocationsUseCase) GetLocation(ctx context.Context, id string) (*model.LocationRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, l := range f.locations {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, fmt.Errorf("地点 %s: %w", id, model.ErrNotFound)
}

func (f *fakeLocationsUseCase) GetDirections(ctx context.Context, id string) (*model.DirectionsResponse, error) {
	if _, err := f.GetLocation(ctx, id); err != nil {
		return nil, err
	}
	return &model.DirectionsResponse{LocationID: id, WebURL: "https://www.google.com/maps/dir/"}, nil
}

type fakeSubmissionService struct {
	lastAuth model.AuthStatus
	lastReq  *model.CreateLocationRequest
	err      error
}

func (f *fakeSubmissionService) CreateLocation(ctx context.Context, auth model.AuthStatus, req *model.CreateLocationRequest) (*model.CreateLocationResponse, error) {
	f.lastAuth, f.lastReq = auth, req
	if f.err != nil {
		return nil, f.err
	}
	return &model.CreateLocationResponse{
		Status:   "created",
		Location: &model.LocationRecord{ID: "new", Name: req.Name, CreatedBy: auth.User.DisplayName()},
	}, nil
}

type fakePhotoUseCase struct {
	filenames []string
	contents  []string
}

func (f *fakePhotoUseCase) UploadPhotos(ctx context.Context, auth model.AuthStatus, locationID string, photos []usecase.PhotoFile) (*model.UploadPhotosResponse, error) {
	if len(photos) == 0 {
		return nil, &model.ValidationError{Field: "photos", Message: "写真が選択されていません"}
	}
	uploaded := make([]string, 0, len(photos))
	for _, p := range photos {
		rc, err := p.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		f.filenames = append(f.filenames, p.Filename)
		f.contents = append(f.contents, string(data))
		uploaded = append(uploaded, "https://cdn.example/"+p.Filename)
	}
	return &model.UploadPhotosResponse{LocationID: locationID, Uploaded: uploaded}, nil
}

type fakeIdentity struct {
	users map[string]*model.User
}

func (f *fakeIdentity) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if u, ok := f.users[token]; ok {
		return u, nil
	}
	return nil, model.ErrPermissionDenied
}

type fakeWeather struct {
	err error
}

func (f *fakeWeather) CurrentWeather(ctx context.Context, c model.Coordinate) (*model.Weather, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &model.Weather{City: "Lisboa", Temperature: 21.5}, nil
}

type fakeArticles struct {
	articles []model.Article
	err      error
}

func (f *fakeArticles) GetAll(ctx context.Context) ([]model.Article, error) {
	return f.articles, f.err
}

type fakeSnapshots struct {
	ready bool
	err   error
}

func (f *fakeSnapshots) IsReady() bool    { return f.ready }
func (f *fakeSnapshots) LastError() error { return f.err }
