package model

import "fmt"

// SelectionState 地点の選択状態（未選択 または 選択中(id)）
type SelectionState struct {
	id       string
	selected bool
}

// Unselected 未選択状態
func Unselected() SelectionState {
	return SelectionState{}
}

// Selected 指定IDの選択状態
func Selected(id string) SelectionState {
	return SelectionState{id: id, selected: true}
}

// IsSelected 選択中かどうか
func (s SelectionState) IsSelected() bool {
	return s.selected
}

// ID 選択中の地点ID（未選択なら空文字列）
func (s SelectionState) ID() string {
	return s.id
}

func (s SelectionState) String() string {
	if !s.selected {
		return "Unselected"
	}
	return fmt.Sprintf("Selected(%s)", s.id)
}

// SelectionOrigin 選択の起点
type SelectionOrigin string

const (
	OriginMap      SelectionOrigin = "map"
	OriginDeepLink SelectionOrigin = "deep_link"
	OriginPanel    SelectionOrigin = "panel"
	OriginSnapshot SelectionOrigin = "snapshot"
)
