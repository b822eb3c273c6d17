package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/domain/repository"
)

type recordingLocationsRepository struct {
	created []model.LocationRecord
	err     error
}

func (r *recordingLocationsRepository) Subscribe(ctx context.Context, onSnapshot repository.SnapshotHandler, onError repository.SnapshotErrorHandler) (repository.Subscription, error) {
	return nil, errors.New("not implemented")
}

func (r *recordingLocationsRepository) GetAll(ctx context.Context) ([]model.LocationRecord, error) {
	return r.created, nil
}

func (r *recordingLocationsRepository) GetByID(ctx context.Context, id string) (*model.LocationRecord, error) {
	return nil, model.ErrNotFound
}

func (r *recordingLocationsRepository) Create(ctx context.Context, location *model.LocationRecord) (*model.LocationRecord, error) {
	if r.err != nil {
		return nil, r.err
	}
	created := *location
	created.ID = "new-id"
	r.created = append(r.created, created)
	return &created, nil
}

func (r *recordingLocationsRepository) AppendImages(ctx context.Context, id string, imageURLs []string) error {
	return nil
}

type stubGeocoder struct {
	address string
	err     error
}

func (g *stubGeocoder) ReverseGeocode(ctx context.Context, coordinate model.Coordinate) (string, error) {
	return g.address, g.err
}

func validRequest() *model.CreateLocationRequest {
	return &model.CreateLocationRequest{
		Name:        "  Praia poluída  ",
		Description: "plástico na areia",
		Coordinates: &model.Coordinate{Latitude: 38.69, Longitude: -9.42},
	}
}

func TestCreateLocation_Defaults(t *testing.T) {
	repo := &recordingLocationsRepository{}
	service := NewLocationSubmissionService(repo, &stubGeocoder{address: "Cascais, Portugal"})
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	service.(*locationSubmissionServiceImpl).now = func() time.Time { return fixed }

	resp, err := service.CreateLocation(context.Background(), model.SignedInAs(&model.User{ID: "u1", Username: "maria"}), validRequest())

	require.NoError(t, err)
	assert.Equal(t, "created", resp.Status)
	loc := resp.Location
	assert.Equal(t, "new-id", loc.ID)
	assert.Equal(t, "Praia poluída", loc.Name)
	assert.Equal(t, model.DefaultLocationColor, loc.Color)
	assert.Equal(t, model.DefaultLocationIcon, loc.Icon)
	assert.Equal(t, "maria", loc.CreatedBy)
	assert.Equal(t, "Cascais, Portugal", loc.Address)
	assert.Equal(t, fixed, loc.CreatedAt)
	assert.Equal(t, []string{}, loc.Images)
}

func TestCreateLocation_AnonymousCreatorAndGeocodeFailure(t *testing.T) {
	repo := &recordingLocationsRepository{}
	service := NewLocationSubmissionService(repo, &stubGeocoder{err: model.ErrNetworkFailure})

	req := validRequest()
	req.Color = "#ff0000"
	resp, err := service.CreateLocation(context.Background(), model.SignedInAs(&model.User{ID: "u2"}), req)

	require.NoError(t, err)
	assert.Equal(t, model.AnonymousCreator, resp.Location.CreatedBy)
	assert.Equal(t, "#ff0000", resp.Location.Color)
	assert.Empty(t, resp.Location.Address)
}

func TestCreateLocation_RequiresSignIn(t *testing.T) {
	repo := &recordingLocationsRepository{}
	service := NewLocationSubmissionService(repo, nil)

	_, err := service.CreateLocation(context.Background(), model.SignedOut(), validRequest())

	assert.True(t, errors.Is(err, model.ErrPermissionDenied))
	assert.Empty(t, repo.created)
}

func TestCreateLocation_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(req *model.CreateLocationRequest)
		field  string
	}{
		{name: "地点名なし", mutate: func(req *model.CreateLocationRequest) { req.Name = "  " }, field: "name"},
		{name: "説明なし", mutate: func(req *model.CreateLocationRequest) { req.Description = "" }, field: "description"},
		{name: "位置情報なし", mutate: func(req *model.CreateLocationRequest) { req.Coordinates = nil }, field: "coordinates"},
		{name: "範囲外", mutate: func(req *model.CreateLocationRequest) { req.Coordinates.Latitude = 91 }, field: "coordinates"},
		{name: "初期値のまま", mutate: func(req *model.CreateLocationRequest) { req.Coordinates = &model.Coordinate{} }, field: "coordinates"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &recordingLocationsRepository{}
			req := validRequest()
			tt.mutate(req)

			_, err := NewLocationSubmissionService(repo, nil).CreateLocation(context.Background(), model.SignedInAs(&model.User{ID: "u"}), req)

			var vErr *model.ValidationError
			require.True(t, errors.As(err, &vErr), "err = %v", err)
			assert.Equal(t, tt.field, vErr.Field)
			assert.True(t, errors.Is(err, model.ErrValidationFailure))
			assert.Empty(t, repo.created)
		})
	}
}

func TestCreateLocation_RepositoryFailure(t *testing.T) {
	repo := &recordingLocationsRepository{err: model.ErrNetworkFailure}

	_, err := NewLocationSubmissionService(repo, nil).CreateLocation(context.Background(), model.SignedInAs(&model.User{ID: "u"}), validRequest())

	assert.True(t, errors.Is(err, model.ErrNetworkFailure))
}
