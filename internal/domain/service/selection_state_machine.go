package service

import (
	"log"

	"EcoCSM-App/internal/domain/helper"
	"EcoCSM-App/internal/domain/model"
)

// SelectionObserver は選択状態の遷移を受け取る
type SelectionObserver interface {
	OnSelectionChanged(prev, next model.SelectionState, origin model.SelectionOrigin)
}

// MapView は選択に合わせて地図側で行う表示操作
type MapView interface {
	FocusRegion(region model.MapRegion)
	ShowCallout(locationID string)
}

// SelectionStateMachine は地図・一覧・詳細パネルで共有する単一選択を管理する。
// ゴルーチンセーフではない。NearbySession のイベントループからのみ操作する。
type SelectionStateMachine struct {
	state     model.SelectionState
	locations map[string]model.LocationRecord
	loaded    bool

	// ディープリンクで指定され、まだ読み込まれていない地点ID
	pendingDeepLink string

	// 新しいマーカーへの切り替え中に地図から届く deselect を無視するためのフラグ
	replacing bool
	scoped    bool

	observers []SelectionObserver
	mapView   MapView
	closed    bool
}

// NewSelectionStateMachine は未選択状態のステートマシンを作成する。mapView は nil でもよい
func NewSelectionStateMachine(mapView MapView) *SelectionStateMachine {
	return &SelectionStateMachine{
		state:     model.Unselected(),
		locations: map[string]model.LocationRecord{},
		mapView:   mapView,
	}
}

// AddObserver は遷移の通知先を登録する
func (m *SelectionStateMachine) AddObserver(o SelectionObserver) {
	m.observers = append(m.observers, o)
}

// State は現在の選択状態を返す
func (m *SelectionStateMachine) State() model.SelectionState {
	return m.state
}

// PendingDeepLink は解決待ちのディープリンクIDを返す
func (m *SelectionStateMachine) PendingDeepLink() (string, bool) {
	return m.pendingDeepLink, m.pendingDeepLink != ""
}

// Lookup は現在読み込まれている地点を返す
func (m *SelectionStateMachine) Lookup(id string) (model.LocationRecord, bool) {
	l, ok := m.locations[id]
	return l, ok
}

// BeginSelection は新しいマーカーの選択が始まることを通知する。
// EndSelection までの間、地図から届く Deselect は無視される。
func (m *SelectionStateMachine) BeginSelection() {
	m.replacing = true
	m.scoped = true
}

// EndSelection はマーカー切り替えの操作が終わったことを通知する
func (m *SelectionStateMachine) EndSelection() {
	m.replacing = false
	m.scoped = false
}

// SelectFromMap は地図のマーカー（または一覧）から地点を選択する
func (m *SelectionStateMachine) SelectFromMap(id string) {
	if m.closed {
		return
	}
	if _, ok := m.locations[id]; !ok {
		log.Printf("⚠️ 未ロードの地点は選択できません: %s", id)
		return
	}
	if !m.scoped {
		m.replacing = true
		defer func() { m.replacing = false }()
	}
	// 利用者の操作が優先されるので、解決待ちのディープリンクは破棄する
	m.pendingDeepLink = ""
	m.transition(model.Selected(id), model.OriginMap)
}

// SelectFromDeepLink は外部ナビゲーションで指定された地点を選択する。
// 地点が未ロードの場合は保留し、UpdateLocations のたびに再評価する。
func (m *SelectionStateMachine) SelectFromDeepLink(id string) {
	if m.closed || id == "" {
		return
	}
	m.pendingDeepLink = id
	m.resolvePendingDeepLink()
}

// Deselect は地図からの選択解除。マーカー切り替え中は何もしない
func (m *SelectionStateMachine) Deselect() {
	if m.closed || !m.state.IsSelected() {
		return
	}
	if m.replacing {
		log.Printf("🔁 マーカー切り替え中の選択解除を無視: %s", m.state.ID())
		return
	}
	m.transition(model.Unselected(), model.OriginMap)
}

// Dismiss は詳細パネルの閉じる操作による選択解除
func (m *SelectionStateMachine) Dismiss() {
	if m.closed || !m.state.IsSelected() {
		return
	}
	m.transition(model.Unselected(), model.OriginPanel)
}

// UpdateLocations はスナップショット全件で地点集合を置き換える
func (m *SelectionStateMachine) UpdateLocations(locations []model.LocationRecord) {
	if m.closed {
		return
	}
	m.locations = helper.IndexByID(locations)
	m.loaded = true

	if m.state.IsSelected() {
		if _, ok := m.locations[m.state.ID()]; !ok {
			log.Printf("⚠️ 選択中の地点が削除されました: %s", m.state.ID())
			m.transition(model.Unselected(), model.OriginSnapshot)
		}
	}
	m.resolvePendingDeepLink()
}

// Close は画面の破棄に合わせて保留中のディープリンクを破棄し、以降の操作を無視する
func (m *SelectionStateMachine) Close() {
	m.closed = true
	m.pendingDeepLink = ""
}

func (m *SelectionStateMachine) resolvePendingDeepLink() {
	id := m.pendingDeepLink
	if id == "" {
		return
	}
	location, ok := m.locations[id]
	if !ok {
		if m.loaded {
			log.Printf("⚠️ ディープリンクの地点が見つかりません（次のスナップショットで再評価）: %s", id)
		}
		return
	}
	m.pendingDeepLink = ""

	// コールアウト表示で前のマーカーから届く deselect を無視する
	if !m.scoped {
		m.replacing = true
		defer func() { m.replacing = false }()
	}
	if m.mapView != nil {
		if location.HasValidCoordinates() {
			m.mapView.FocusRegion(model.FocusRegion(*location.Coordinates))
		}
		m.mapView.ShowCallout(id)
	}
	m.transition(model.Selected(id), model.OriginDeepLink)
}

func (m *SelectionStateMachine) transition(next model.SelectionState, origin model.SelectionOrigin) {
	prev := m.state
	if prev == next {
		return
	}
	m.state = next
	for _, o := range m.observers {
		o.OnSelectionChanged(prev, next, origin)
	}
}
