package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"EcoCSM-App/internal/domain/helper"
	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/domain/repository"
)

// ErrSessionClosed は Close 後に操作した場合のエラー
var ErrSessionClosed = errors.New("nearby session closed")

// SessionConfig は近くの地点のランキング条件
type SessionConfig struct {
	RadiusKm float64
	Limit    int
}

// DefaultSessionConfig は半径10km・最大5件
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{RadiusKm: model.DefaultNearbyRadiusKm, Limit: model.DefaultNearbyLimit}
}

// SessionView は画面に描画するための不変なスナップショット
type SessionView struct {
	Ready           bool                   `json:"ready"`
	Locations       []model.LocationRecord `json:"locations"`
	Nearby          []model.RankedLocation `json:"nearby"`
	AllByDistance   []model.RankedLocation `json:"all_by_distance"`
	Origin          *model.Coordinate      `json:"origin,omitempty"`
	Region          model.MapRegion        `json:"region"`
	Selection       string                 `json:"selection"`
	SelectedID      string                 `json:"selected_id,omitempty"`
	PendingDeepLink string                 `json:"pending_deep_link,omitempty"`
	Panel           PanelState             `json:"panel"`
	Notices         []model.Notice         `json:"notices"`
}

// NearbySession は地点集合・現在地・選択状態・詳細パネルの唯一の所有者。
// 状態の変更はすべて Run のイベントループ上で直列に行う。
type NearbySession struct {
	repo repository.LocationsRepository
	geo  repository.GeolocationProvider
	cfg  SessionConfig

	machine *SelectionStateMachine
	panel   *DetailPanelController

	events chan func()
	done   chan struct{}

	startOnce      sync.Once
	closeOnce      sync.Once
	subscription   repository.Subscription
	cancelPosition context.CancelFunc
	originResolved chan struct{}

	// 以下はイベントループ内でのみ読み書きする
	ready     bool
	locations []model.LocationRecord
	origin    *model.Coordinate
	nearby    []model.RankedLocation
	notices   []model.Notice
	onChange  func(SessionView)
}

// NewNearbySession はセッションを作成する。mapView, directions, camera は画面側の実装
func NewNearbySession(
	repo repository.LocationsRepository,
	geo repository.GeolocationProvider,
	mapView MapView,
	directions repository.DirectionsLauncher,
	camera repository.CameraFlow,
	cfg SessionConfig,
) *NearbySession {
	if cfg.RadiusKm <= 0 {
		cfg.RadiusKm = model.DefaultNearbyRadiusKm
	}
	if cfg.Limit <= 0 {
		cfg.Limit = model.DefaultNearbyLimit
	}
	machine := NewSelectionStateMachine(mapView)
	return &NearbySession{
		repo:           repo,
		geo:            geo,
		cfg:            cfg,
		machine:        machine,
		panel:          NewDetailPanelController(machine, directions, camera),
		events:         make(chan func(), 64),
		done:           make(chan struct{}),
		originResolved: make(chan struct{}),
		locations:      []model.LocationRecord{},
		nearby:         []model.RankedLocation{},
	}
}

// SetChangeListener は状態が変わるたびに呼ばれる描画コールバックを設定する。Start より前に呼ぶ
func (s *NearbySession) SetChangeListener(fn func(SessionView)) {
	s.onChange = fn
}

// Start はイベントループを起動し、ライブクエリの購読と現在地の取得を開始する。
// 取得したリソースは Close で必ず解放される。
func (s *NearbySession) Start(ctx context.Context) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	var err error
	s.startOnce.Do(func() {
		go s.run()

		sub, subErr := s.repo.Subscribe(ctx,
			func(locations []model.LocationRecord) {
				locations = helper.CloneLocations(locations)
				s.post(func() { s.applySnapshot(locations) })
			},
			func(snapshotErr error) {
				s.post(func() { s.applySnapshotError(snapshotErr) })
			},
		)
		if subErr != nil {
			err = fmt.Errorf("地点の購読に失敗: %w", subErr)
			s.Close()
			return
		}
		s.subscription = sub

		positionCtx, cancel := context.WithCancel(ctx)
		s.cancelPosition = cancel
		go s.requestPosition(positionCtx)

		log.Printf("🚀 近くの地点セッション開始 (半径: %.1fkm, 最大: %d件)", s.cfg.RadiusKm, s.cfg.Limit)
	})
	return err
}

// Close は購読を解除し、現在地の取得を中断してイベントループを停止する
func (s *NearbySession) Close() {
	s.closeOnce.Do(func() {
		if s.cancelPosition != nil {
			s.cancelPosition()
		}
		// 購読の受信ゴルーチンが post で待たないよう、先にループを止める
		close(s.done)
		if s.subscription != nil {
			s.subscription.Unsubscribe()
		}
		log.Printf("✅ 近くの地点セッション終了")
	})
}

// OriginResolved は現在地の取得（成功・失敗とも）が反映されたときに閉じられる
func (s *NearbySession) OriginResolved() <-chan struct{} {
	return s.originResolved
}

// View は現在の状態のスナップショットを返す
func (s *NearbySession) View(ctx context.Context) (SessionView, error) {
	var view SessionView
	err := s.call(ctx, func() error {
		view = s.buildView()
		return nil
	})
	return view, err
}

// SelectFromMap は地図のマーカーから地点を選択する
func (s *NearbySession) SelectFromMap(id string) {
	s.post(func() { s.machine.SelectFromMap(id) })
}

// SelectFromDeepLink は外部ナビゲーションから地点を選択する
func (s *NearbySession) SelectFromDeepLink(id string) {
	s.post(func() { s.machine.SelectFromDeepLink(id) })
}

// BeginSelection はマーカー切り替え操作の開始
func (s *NearbySession) BeginSelection() {
	s.post(func() { s.machine.BeginSelection() })
}

// EndSelection はマーカー切り替え操作の終了
func (s *NearbySession) EndSelection() {
	s.post(func() { s.machine.EndSelection() })
}

// Deselect は地図からの選択解除
func (s *NearbySession) Deselect() {
	s.post(func() { s.machine.Deselect() })
}

// ClosePanel は詳細パネルを閉じる
func (s *NearbySession) ClosePanel() {
	s.post(func() { s.panel.Close() })
}

// SetPanelLevel は詳細パネルの展開段階を変更する
func (s *NearbySession) SetPanelLevel(ctx context.Context, level model.ExpansionLevel) error {
	return s.call(ctx, func() error { return s.panel.SetLevel(level) })
}

// ExpandPanel は詳細パネルを一段階広げる
func (s *NearbySession) ExpandPanel() {
	s.post(func() { s.panel.Expand() })
}

// CollapsePanel は詳細パネルを一段階狭める
func (s *NearbySession) CollapsePanel() {
	s.post(func() { s.panel.Collapse() })
}

// RequestDirections は表示中の地点への経路案内を開く
func (s *NearbySession) RequestDirections(ctx context.Context) error {
	return s.call(ctx, func() error {
		err := s.panel.RequestDirections(ctx)
		if err != nil {
			s.addNotice(model.NoticeBlocking, "経路案内を開けませんでした")
		}
		return err
	})
}

// DismissNotices は表示中の通知をすべて消す
func (s *NearbySession) DismissNotices() {
	s.post(func() { s.notices = nil })
}

// RequestMapSearch は表示中の地点を地図アプリで表示する
func (s *NearbySession) RequestMapSearch(ctx context.Context) error {
	return s.call(ctx, func() error {
		err := s.panel.RequestMapSearch(ctx)
		if err != nil {
			s.addNotice(model.NoticeBlocking, "地図を開けませんでした")
		}
		return err
	})
}

// RequestCameraCapture は表示中の地点の撮影フローを実行し、終わるまで呼び出し側で待つ。
// ループ上では地点の解決だけを行うので、撮影・アップロード中もスナップショットと操作は処理される
func (s *NearbySession) RequestCameraCapture(ctx context.Context) error {
	var location model.LocationContext
	err := s.call(ctx, func() error {
		target, err := s.panel.CaptureTarget()
		if err != nil {
			return err
		}
		location = target
		return nil
	})
	if err != nil {
		return err
	}

	captureErr := s.panel.Capture(ctx, location)
	s.post(func() {
		if captureErr != nil {
			s.addNotice(model.NoticeBlocking, model.NoticePhotoUploadFailed)
			return
		}
		s.addNotice(model.NoticeTransient, model.NoticePhotoUploaded)
	})
	return captureErr
}

func (s *NearbySession) run() {
	for {
		select {
		case fn := <-s.events:
			fn()
			if s.onChange != nil {
				s.onChange(s.buildView())
			}
		case <-s.done:
			s.machine.Close()
			return
		}
	}
}

// post はイベントをループに積む。Close 後のイベントは破棄する
func (s *NearbySession) post(fn func()) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.events <- fn:
	case <-s.done:
	}
}

// call はイベントループ上で fn を実行し、結果を待つ
func (s *NearbySession) call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.events <- func() { result <- fn() }:
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-result:
		return err
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *NearbySession) requestPosition(ctx context.Context) {
	position, err := s.geo.CurrentPosition(ctx)
	if ctx.Err() != nil {
		// 画面が破棄された後の結果は捨てる
		return
	}
	s.post(func() {
		s.applyPosition(position, err)
		close(s.originResolved)
	})
}

func (s *NearbySession) applySnapshot(locations []model.LocationRecord) {
	s.locations = locations
	s.ready = true
	s.machine.UpdateLocations(locations)
	s.panel.Refresh()
	s.rerank()
	log.Printf("✅ 地点スナップショット反映: %d件 (近く: %d件)", len(locations), len(s.nearby))
}

func (s *NearbySession) applySnapshotError(err error) {
	log.Printf("❌ 地点の読み込みに失敗: %v", err)
	s.addNotice(model.NoticeTransient, model.NoticeLocationsError)
}

func (s *NearbySession) applyPosition(position *model.Coordinate, err error) {
	if err != nil || position == nil || !position.IsValid() {
		if err != nil {
			log.Printf("⚠️ 現在地を取得できません: %v", err)
		}
		s.origin = nil
		s.addNotice(model.NoticeTransient, model.NoticeLocationPermission)
		s.rerank()
		return
	}
	origin := *position
	s.origin = &origin
	s.rerank()
	log.Printf("📍 現在地: %.4f, %.4f", origin.Latitude, origin.Longitude)
}

func (s *NearbySession) rerank() {
	s.nearby = Rank(s.locations, s.origin, s.cfg.RadiusKm, s.cfg.Limit)
}

func (s *NearbySession) addNotice(kind model.NoticeKind, message string) {
	s.notices = append(s.notices, model.NewNotice(kind, message))
}

func (s *NearbySession) buildView() SessionView {
	state := s.machine.State()
	pending, _ := s.machine.PendingDeepLink()

	view := SessionView{
		Ready:           s.ready,
		Locations:       helper.CloneLocations(s.locations),
		Nearby:          append([]model.RankedLocation{}, s.nearby...),
		AllByDistance:   []model.RankedLocation{},
		Region:          model.DefaultMapRegion(),
		Selection:       state.String(),
		SelectedID:      state.ID(),
		PendingDeepLink: pending,
		Panel:           s.panel.State(),
		Notices:         append([]model.Notice{}, s.notices...),
	}
	if s.origin != nil {
		origin := *s.origin
		view.Origin = &origin
		view.Region.Center = origin
		view.AllByDistance = RankAll(helper.CloneLocations(s.locations), &origin)
	}
	return view
}
