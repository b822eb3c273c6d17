package model

import "time"

// FirestoreLocation Firestoreの locations コレクションのドキュメント
type FirestoreLocation struct {
	Name        string      `firestore:"name"`
	Description string      `firestore:"description"`
	Coordinates *Coordinate `firestore:"coordinates"`
	Images      []string    `firestore:"images"`
	Color       string      `firestore:"color"`
	Icon        string      `firestore:"icon"`
	Address     string      `firestore:"address"`
	CreatedBy   string      `firestore:"createdBy"`
	CreatedAt   time.Time   `firestore:"createdAt"`
	UpdatedAt   time.Time   `firestore:"updatedAt"`
}

// ToFirestoreLocation LocationRecord を Firestore 保存用に変換
func (l *LocationRecord) ToFirestoreLocation() *FirestoreLocation {
	images := l.Images
	if images == nil {
		images = []string{}
	}
	return &FirestoreLocation{
		Name:        l.Name,
		Description: l.Description,
		Coordinates: l.Coordinates,
		Images:      images,
		Color:       l.Color,
		Icon:        l.Icon,
		Address:     l.Address,
		CreatedBy:   l.CreatedBy,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

// ToLocationRecord Firestore ドキュメントを LocationRecord に変換
func (fl *FirestoreLocation) ToLocationRecord(id string) LocationRecord {
	record := LocationRecord{
		ID:          id,
		Name:        fl.Name,
		Description: fl.Description,
		Coordinates: fl.Coordinates,
		Images:      fl.Images,
		Color:       fl.Color,
		Icon:        fl.Icon,
		Address:     fl.Address,
		CreatedBy:   fl.CreatedBy,
		CreatedAt:   fl.CreatedAt,
		UpdatedAt:   fl.UpdatedAt,
	}
	return record.WithDefaults()
}
