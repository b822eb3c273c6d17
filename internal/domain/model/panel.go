package model

// ExpansionLevel 詳細パネルの展開段階（画面高さに対する割合）
type ExpansionLevel int

const (
	LevelClosed ExpansionLevel = iota
	LevelPeek
	LevelHalf
	LevelFull
)

// ExpansionLevels 開いた状態で取り得る段階（小さい順）
var ExpansionLevels = []ExpansionLevel{LevelPeek, LevelHalf, LevelFull}

// Percent 画面高さに対する割合
func (l ExpansionLevel) Percent() int {
	switch l {
	case LevelPeek:
		return 30
	case LevelHalf:
		return 60
	case LevelFull:
		return 85
	default:
		return 0
	}
}

// IsOpen パネルが表示されている段階か
func (l ExpansionLevel) IsOpen() bool {
	return l >= LevelPeek && l <= LevelFull
}

func (l ExpansionLevel) String() string {
	switch l {
	case LevelPeek:
		return "30%"
	case LevelHalf:
		return "60%"
	case LevelFull:
		return "85%"
	default:
		return "closed"
	}
}

// ミニマップの高さ
const (
	MiniMapHeightCompact  = 100
	MiniMapHeightExpanded = 200
)

// MiniMapHeight 展開段階に応じたミニマップの高さ
func MiniMapHeight(level ExpansionLevel) int {
	if level >= LevelFull {
		return MiniMapHeightExpanded
	}
	return MiniMapHeightCompact
}
