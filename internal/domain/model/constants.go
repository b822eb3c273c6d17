package model

// ランキングのデフォルト値
const (
	DefaultNearbyRadiusKm = 10.0
	DefaultNearbyLimit    = 5
)

// 地図表示のデフォルト値
const (
	DefaultLatitude    = 38.7223 // リスボン
	DefaultLongitude   = -9.1393
	DefaultRegionDelta = 0.09622
	FocusRegionDelta   = 0.01
)

// 登録地点の表示用デフォルト
const (
	DefaultLocationColor = "#1da1f2"
	DefaultLocationIcon  = "map-marker"
	AnonymousCreator     = "anonymous"
)

// Firestore / Supabase のコレクション名
const (
	LocationsCollection = "locations"
	ArticlesCollection  = "artigos"
	PhotoObjectPrefix   = "locations"
)

// 利用者向けの一時通知メッセージ
const (
	NoticeLocationPermission = "近くの地点を表示するには位置情報の許可が必要です"
	NoticeLocationsError     = "地点データの読み込みに失敗しました"
	NoticePhotoUploaded      = "写真を追加しました"
	NoticePhotoUploadFailed  = "写真を追加できませんでした"
)
