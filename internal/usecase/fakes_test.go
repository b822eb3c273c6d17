package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/domain/repository"
)

type memoryLocationsRepository struct {
	mu        sync.Mutex
	locations map[string]model.LocationRecord
	appended  map[string][]string
	getAllErr error
	getAlls   int
}

func newMemoryLocationsRepository(locations ...model.LocationRecord) *memoryLocationsRepository {
	r := &memoryLocationsRepository{locations: map[string]model.LocationRecord{}, appended: map[string][]string{}}
	for _, l := range locations {
		r.locations[l.ID] = l
	}
	return r
}

func (r *memoryLocationsRepository) Subscribe(ctx context.Context, onSnapshot repository.SnapshotHandler, onError repository.SnapshotErrorHandler) (repository.Subscription, error) {
	return nil, errors.New("not implemented")
}

func (r *memoryLocationsRepository) GetAll(ctx context.Context) ([]model.LocationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getAlls++
	if r.getAllErr != nil {
		return nil, r.getAllErr
	}
	out := make([]model.LocationRecord, 0, len(r.locations))
	for _, l := range r.locations {
		out = append(out, l)
	}
	return out, nil
}

func (r *memoryLocationsRepository) GetByID(ctx context.Context, id string) (*model.LocationRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locations[id]
	if !ok {
		return nil, fmt.Errorf("地点 %s: %w", id, model.ErrNotFound)
	}
	return &l, nil
}

func (r *memoryLocationsRepository) Create(ctx context.Context, location *model.LocationRecord) (*model.LocationRecord, error) {
	return location, nil
}

func (r *memoryLocationsRepository) AppendImages(ctx context.Context, id string, imageURLs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.appended[id] = append(r.appended[id], imageURLs...)
	return nil
}

type memoryPhotoStorage struct {
	mu      sync.Mutex
	objects map[string]string
	failOn  string
}

func (s *memoryPhotoStorage) Upload(ctx context.Context, objectPath string, contentType string, data io.Reader) (string, error) {
	body, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	if s.failOn != "" && string(body) == s.failOn {
		return "", fmt.Errorf("upload: %w", model.ErrNetworkFailure)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.objects == nil {
		s.objects = map[string]string{}
	}
	s.objects[objectPath] = string(body)
	return "https://cdn.example.com/" + objectPath, nil
}

func photo(name, content string) PhotoFile {
	return PhotoFile{
		Filename:    name,
		ContentType: "image/jpeg",
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func coord(lat, lng float64) *model.Coordinate {
	return &model.Coordinate{Latitude: lat, Longitude: lng}
}

func location(id string, c *model.Coordinate) model.LocationRecord {
	return model.LocationRecord{ID: id, Name: id, Coordinates: c}.WithDefaults()
}
