package service

import (
	"context"
	"fmt"
	"log"

	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/domain/repository"
)

// PanelState は詳細パネルの表示状態
type PanelState struct {
	Open          bool                  `json:"open"`
	Level         model.ExpansionLevel  `json:"level"`
	Percent       int                   `json:"percent"`
	MiniMapHeight int                   `json:"mini_map_height"`
	Location      *model.LocationRecord `json:"location,omitempty"`
}

// DetailPanelController は選択状態に合わせて詳細パネルを開閉し、
// 経路案内と写真撮影のアクションを外部に委譲する
type DetailPanelController struct {
	machine    *SelectionStateMachine
	directions repository.DirectionsLauncher
	camera     repository.CameraFlow

	level    model.ExpansionLevel
	location *model.LocationRecord

	onLevelChanged func(level model.ExpansionLevel)
}

// NewDetailPanelController はパネルを作成し、ステートマシンの通知先として登録する
func NewDetailPanelController(machine *SelectionStateMachine, directions repository.DirectionsLauncher, camera repository.CameraFlow) *DetailPanelController {
	p := &DetailPanelController{
		machine:    machine,
		directions: directions,
		camera:     camera,
		level:      model.LevelClosed,
	}
	machine.AddObserver(p)
	return p
}

// SetLevelListener は展開段階が変わったときの通知先を設定する（マーカーサイズ調整など）
func (p *DetailPanelController) SetLevelListener(fn func(level model.ExpansionLevel)) {
	p.onLevelChanged = fn
}

// OnSelectionChanged は SelectionObserver の実装
func (p *DetailPanelController) OnSelectionChanged(prev, next model.SelectionState, origin model.SelectionOrigin) {
	if !next.IsSelected() {
		p.location = nil
		p.setLevel(model.LevelClosed)
		return
	}

	location, ok := p.machine.Lookup(next.ID())
	if !ok {
		log.Printf("❌ 選択された地点を解決できません: %s", next.ID())
		p.location = nil
		p.setLevel(model.LevelClosed)
		return
	}
	p.location = &location
	if prev.ID() != next.ID() || !p.level.IsOpen() {
		p.setLevel(model.LevelPeek)
	}
	log.Printf("📍 詳細パネル表示: %s (%s, %s)", location.Name, origin, p.level)
}

// Refresh はスナップショット更新後に表示中の地点を最新化する
func (p *DetailPanelController) Refresh() {
	if p.location == nil {
		return
	}
	if location, ok := p.machine.Lookup(p.location.ID); ok {
		p.location = &location
	}
}

// IsOpen はパネルが表示中か
func (p *DetailPanelController) IsOpen() bool {
	return p.level.IsOpen()
}

// CurrentLevel は現在の展開段階
func (p *DetailPanelController) CurrentLevel() model.ExpansionLevel {
	return p.level
}

// Location は表示中の地点
func (p *DetailPanelController) Location() (model.LocationRecord, bool) {
	if p.location == nil {
		return model.LocationRecord{}, false
	}
	return *p.location, true
}

// MiniMapHeight は展開段階に応じたミニマップの高さ
func (p *DetailPanelController) MiniMapHeight() int {
	return model.MiniMapHeight(p.level)
}

// State は表示状態のスナップショットを返す
func (p *DetailPanelController) State() PanelState {
	state := PanelState{
		Open:          p.IsOpen(),
		Level:         p.level,
		Percent:       p.level.Percent(),
		MiniMapHeight: p.MiniMapHeight(),
	}
	if p.location != nil {
		l := *p.location
		state.Location = &l
	}
	return state
}

// SetLevel は展開段階を変更する。閉じた状態からは変更できない
func (p *DetailPanelController) SetLevel(level model.ExpansionLevel) error {
	if !p.IsOpen() {
		return fmt.Errorf("詳細パネルが開いていません: %w", model.ErrNotFound)
	}
	if !level.IsOpen() {
		return &model.ValidationError{Field: "level", Message: "展開段階は30%・60%・85%のいずれかです"}
	}
	p.setLevel(level)
	return nil
}

// Expand は一段階広げる
func (p *DetailPanelController) Expand() {
	if p.IsOpen() && p.level < model.LevelFull {
		p.setLevel(p.level + 1)
	}
}

// Collapse は一段階狭める（最小段階より下には閉じない）
func (p *DetailPanelController) Collapse() {
	if p.IsOpen() && p.level > model.LevelPeek {
		p.setLevel(p.level - 1)
	}
}

// Close はパネルの閉じるボタン。選択を解除する
func (p *DetailPanelController) Close() {
	p.machine.Dismiss()
}

// RequestDirections は表示中の地点への経路案内を開く
func (p *DetailPanelController) RequestDirections(ctx context.Context) error {
	coordinates, err := p.currentCoordinates()
	if err != nil {
		return err
	}
	if err := p.directions.OpenDirections(ctx, coordinates); err != nil {
		return fmt.Errorf("経路案内を開けませんでした: %w", err)
	}
	return nil
}

// RequestMapSearch は表示中の地点を地図アプリで開く
func (p *DetailPanelController) RequestMapSearch(ctx context.Context) error {
	coordinates, err := p.currentCoordinates()
	if err != nil {
		return err
	}
	if err := p.directions.OpenSearch(ctx, coordinates); err != nil {
		return fmt.Errorf("地図を開けませんでした: %w", err)
	}
	return nil
}

// RequestCameraCapture は表示中の地点のコンテキストで撮影フローを開始する
func (p *DetailPanelController) RequestCameraCapture(ctx context.Context) error {
	location, err := p.CaptureTarget()
	if err != nil {
		return err
	}
	return p.Capture(ctx, location)
}

// CaptureTarget は撮影フローに渡す表示中の地点のコンテキストを返す
func (p *DetailPanelController) CaptureTarget() (model.LocationContext, error) {
	if p.location == nil {
		return model.LocationContext{}, fmt.Errorf("詳細パネルが開いていません: %w", model.ErrNotFound)
	}
	if p.camera == nil {
		return model.LocationContext{}, fmt.Errorf("撮影フローが設定されていません: %w", model.ErrPermissionDenied)
	}
	return p.location.ToLocationContext(), nil
}

// Capture は撮影フローを実行する。パネルの状態には触れないのでイベントループの外から呼べる
func (p *DetailPanelController) Capture(ctx context.Context, location model.LocationContext) error {
	if p.camera == nil {
		return fmt.Errorf("撮影フローが設定されていません: %w", model.ErrPermissionDenied)
	}
	if err := p.camera.Capture(ctx, location); err != nil {
		return fmt.Errorf("撮影フローに失敗: %w", err)
	}
	return nil
}

func (p *DetailPanelController) currentCoordinates() (model.Coordinate, error) {
	if p.location == nil {
		return model.Coordinate{}, fmt.Errorf("詳細パネルが開いていません: %w", model.ErrNotFound)
	}
	if !p.location.HasValidCoordinates() {
		return model.Coordinate{}, &model.ValidationError{Field: "coordinates", Message: "目的地の位置情報が無効です"}
	}
	if p.directions == nil {
		return model.Coordinate{}, fmt.Errorf("地図アプリが設定されていません: %w", model.ErrNetworkFailure)
	}
	return *p.location.Coordinates, nil
}

func (p *DetailPanelController) setLevel(level model.ExpansionLevel) {
	if p.level == level {
		return
	}
	p.level = level
	if p.onLevelChanged != nil {
		p.onLevelChanged(level)
	}
}
