package service

import (
	"context"
	"sync"

	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/domain/repository"
)

func coord(lat, lng float64) *model.Coordinate {
	return &model.Coordinate{Latitude: lat, Longitude: lng}
}

func location(id string, c *model.Coordinate) model.LocationRecord {
	return model.LocationRecord{ID: id, Name: "地点 " + id, Coordinates: c}.WithDefaults()
}

var lisbon = model.Coordinate{Latitude: 38.7223, Longitude: -9.1393}

// fakeLocationsRepository は Subscribe に渡されたハンドラを保持し、テストから発火させる
type fakeLocationsRepository struct {
	mu           sync.Mutex
	onSnapshot   repository.SnapshotHandler
	onError      repository.SnapshotErrorHandler
	subscribeErr error
	subscribed   int
	unsubscribed int
}

type fakeSubscription struct {
	repo *fakeLocationsRepository
}

func (s *fakeSubscription) Unsubscribe() {
	s.repo.mu.Lock()
	defer s.repo.mu.Unlock()
	s.repo.unsubscribed++
}

func (r *fakeLocationsRepository) Subscribe(ctx context.Context, onSnapshot repository.SnapshotHandler, onError repository.SnapshotErrorHandler) (repository.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribed++
	if r.subscribeErr != nil {
		return nil, r.subscribeErr
	}
	r.onSnapshot = onSnapshot
	r.onError = onError
	return &fakeSubscription{repo: r}, nil
}

func (r *fakeLocationsRepository) emit(locations ...model.LocationRecord) {
	r.mu.Lock()
	handler := r.onSnapshot
	r.mu.Unlock()
	handler(locations)
}

func (r *fakeLocationsRepository) emitError(err error) {
	r.mu.Lock()
	handler := r.onError
	r.mu.Unlock()
	handler(err)
}

func (r *fakeLocationsRepository) subscribeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.subscribed
}

func (r *fakeLocationsRepository) unsubscribeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unsubscribed
}

func (r *fakeLocationsRepository) GetAll(ctx context.Context) ([]model.LocationRecord, error) {
	return nil, nil
}

func (r *fakeLocationsRepository) GetByID(ctx context.Context, id string) (*model.LocationRecord, error) {
	return nil, model.ErrNotFound
}

func (r *fakeLocationsRepository) Create(ctx context.Context, location *model.LocationRecord) (*model.LocationRecord, error) {
	return location, nil
}

func (r *fakeLocationsRepository) AppendImages(ctx context.Context, id string, imageURLs []string) error {
	return nil
}

// fakeGeolocation は固定の結果を返す。block が閉じられるまで応答を遅らせる
type fakeGeolocation struct {
	position *model.Coordinate
	err      error
	block    chan struct{}
}

func (g *fakeGeolocation) CurrentPosition(ctx context.Context) (*model.Coordinate, error) {
	if g.block != nil {
		select {
		case <-g.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.position, g.err
}

// recordingMapView は地図側への表示操作を記録する
type recordingMapView struct {
	regions  []model.MapRegion
	callouts []string
}

func (v *recordingMapView) FocusRegion(region model.MapRegion) {
	v.regions = append(v.regions, region)
}

func (v *recordingMapView) ShowCallout(locationID string) {
	v.callouts = append(v.callouts, locationID)
}

type transition struct {
	prev   model.SelectionState
	next   model.SelectionState
	origin model.SelectionOrigin
}

// recordingObserver は選択状態の遷移を記録する
type recordingObserver struct {
	transitions []transition
}

func (o *recordingObserver) OnSelectionChanged(prev, next model.SelectionState, origin model.SelectionOrigin) {
	o.transitions = append(o.transitions, transition{prev: prev, next: next, origin: origin})
}

// fakeDirections は開かれた座標を記録する
type fakeDirections struct {
	mu         sync.Mutex
	directions []model.Coordinate
	searches   []model.Coordinate
	err        error
}

func (d *fakeDirections) OpenDirections(ctx context.Context, destination model.Coordinate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.directions = append(d.directions, destination)
	return nil
}

func (d *fakeDirections) OpenSearch(ctx context.Context, target model.Coordinate) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.searches = append(d.searches, target)
	return nil
}

// fakeCamera は撮影フローに渡された地点を記録する
type fakeCamera struct {
	mu       sync.Mutex
	captured []model.LocationContext
}

func (c *fakeCamera) Capture(ctx context.Context, location model.LocationContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.captured = append(c.captured, location)
	return nil
}

// blockingCamera は release が閉じられるまで撮影フローを終えない
type blockingCamera struct {
	started chan struct{}
	release chan struct{}
	err     error
}

func newBlockingCamera() *blockingCamera {
	return &blockingCamera{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (c *blockingCamera) Capture(ctx context.Context, location model.LocationContext) error {
	c.started <- struct{}{}
	select {
	case <-c.release:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
