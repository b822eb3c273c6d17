package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"EcoCSM-App/internal/domain/helper"
	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/domain/repository"

	"github.com/paulmach/orb"
)

// LocationSnapshotCache はライブクエリの最新スナップショットを保持し、
// HTTP ハンドラなど複数のゴルーチンから読み取れるようにする
type LocationSnapshotCache struct {
	repo repository.LocationsRepository

	mu        sync.RWMutex
	locations []model.LocationRecord
	index     map[string]model.LocationRecord
	ready     bool
	lastErr   error

	readyCh   chan struct{}
	readyOnce sync.Once
	sub       repository.Subscription
}

// NewLocationSnapshotCache はキャッシュを作成する
func NewLocationSnapshotCache(repo repository.LocationsRepository) *LocationSnapshotCache {
	return &LocationSnapshotCache{
		repo:      repo,
		locations: []model.LocationRecord{},
		index:     map[string]model.LocationRecord{},
		readyCh:   make(chan struct{}),
	}
}

// Start はライブクエリの購読を開始する
func (c *LocationSnapshotCache) Start(ctx context.Context) error {
	sub, err := c.repo.Subscribe(ctx, c.apply, c.fail)
	if err != nil {
		return fmt.Errorf("地点キャッシュの購読に失敗: %w", err)
	}
	c.mu.Lock()
	c.sub = sub
	c.mu.Unlock()
	return nil
}

// Close は購読を解除する
func (c *LocationSnapshotCache) Close() {
	c.mu.Lock()
	sub := c.sub
	c.sub = nil
	c.mu.Unlock()
	if sub != nil {
		sub.Unsubscribe()
	}
}

// Ready は最初のスナップショットを受け取ると閉じられる
func (c *LocationSnapshotCache) Ready() <-chan struct{} {
	return c.readyCh
}

// WaitReady は最初のスナップショットを待つ
func (c *LocationSnapshotCache) WaitReady(ctx context.Context) error {
	select {
	case <-c.readyCh:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("地点キャッシュの初期化待ちを中断: %w", ctx.Err())
	}
}

// IsReady は最初のスナップショットを受信済みか
func (c *LocationSnapshotCache) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// LastError は直近のライブクエリのエラー（最新のスナップショット受信でクリアされる）
func (c *LocationSnapshotCache) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// All は全地点のコピーを返す
func (c *LocationSnapshotCache) All() []model.LocationRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return helper.CloneLocations(c.locations)
}

// Get はIDで地点を返す
func (c *LocationSnapshotCache) Get(id string) (model.LocationRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.index[id]
	if !ok {
		return model.LocationRecord{}, false
	}
	return helper.CloneLocations([]model.LocationRecord{l})[0], true
}

// Nearby は基準地点から近い地点をランキングして返す
func (c *LocationSnapshotCache) Nearby(origin *model.Coordinate, radiusKm float64, limit int) []model.RankedLocation {
	return Rank(c.All(), origin, radiusKm, limit)
}

// WithinBound は矩形範囲に含まれる地点を返す。座標のない地点は含まない
func (c *LocationSnapshotCache) WithinBound(bound orb.Bound) []model.LocationRecord {
	return helper.FilterWithinBound(c.All(), bound)
}

func (c *LocationSnapshotCache) apply(locations []model.LocationRecord) {
	cloned := helper.CloneLocations(locations)
	c.mu.Lock()
	c.locations = cloned
	c.index = helper.IndexByID(cloned)
	c.ready = true
	c.lastErr = nil
	c.mu.Unlock()

	c.readyOnce.Do(func() { close(c.readyCh) })
	log.Printf("🗂️ 地点キャッシュ更新: %d件", len(cloned))
}

func (c *LocationSnapshotCache) fail(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	log.Printf("❌ 地点キャッシュのライブクエリでエラー: %v", err)
}
