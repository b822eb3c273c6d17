package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/domain/repository"
	"EcoCSM-App/internal/platform/obs"
)

// FirestoreLocationsRepository Firestoreの locations コレクションを使用した地点リポジトリ
type FirestoreLocationsRepository struct {
	client *firestore.Client
}

// NewFirestoreLocationsRepository 新しいFirestoreLocationsRepositoryインスタンスを作成
func NewFirestoreLocationsRepository(client *firestore.Client) *FirestoreLocationsRepository {
	return &FirestoreLocationsRepository{
		client: client,
	}
}

func (r *FirestoreLocationsRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(model.LocationsCollection)
}

// firestoreSubscription はスナップショットの購読ハンドル
type firestoreSubscription struct {
	cancel context.CancelFunc
	it     *firestore.QuerySnapshotIterator
	once   sync.Once
	done   chan struct{}
}

// Unsubscribe は購読を解除し、受信ゴルーチンの終了を待つ
func (s *firestoreSubscription) Unsubscribe() {
	s.once.Do(func() {
		s.cancel()
		s.it.Stop()
		<-s.done
	})
}

// Subscribe は locations コレクション全体のライブクエリを開始する。
// 変更のたびに全件のスナップショットを onSnapshot に渡す
func (r *FirestoreLocationsRepository) Subscribe(ctx context.Context, onSnapshot repository.SnapshotHandler, onError repository.SnapshotErrorHandler) (repository.Subscription, error) {
	if onSnapshot == nil {
		return nil, fmt.Errorf("スナップショットのハンドラが指定されていません")
	}
	subCtx, cancel := context.WithCancel(ctx)
	it := r.collection().Snapshots(subCtx)
	sub := &firestoreSubscription{cancel: cancel, it: it, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		for {
			snap, err := it.Next()
			if err != nil {
				if subCtx.Err() != nil || errors.Is(err, iterator.Done) || status.Code(err) == codes.Canceled {
					log.Printf("✅ 地点のライブクエリを終了")
					return
				}
				// エラー後のイテレータは再利用できない
				if onError != nil {
					onError(mapFirestoreError(err))
				}
				return
			}

			docs, err := snap.Documents.GetAll()
			if err != nil {
				if onError != nil {
					onError(mapFirestoreError(err))
				}
				continue
			}
			onSnapshot(decodeLocations(docs))
		}
	}()

	log.Printf("🚀 地点のライブクエリを開始: %s", model.LocationsCollection)
	return sub, nil
}

// GetAll は全地点を一度だけ取得する
func (r *FirestoreLocationsRepository) GetAll(ctx context.Context) (_ []model.LocationRecord, err error) {
	defer obs.Time(ctx, "locations.GetAll")(&err)

	docs, err := r.collection().Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("地点の取得に失敗しました: %w", mapFirestoreError(err))
	}
	return decodeLocations(docs), nil
}

// GetByID は指定IDの地点を取得する
func (r *FirestoreLocationsRepository) GetByID(ctx context.Context, id string) (_ *model.LocationRecord, err error) {
	defer obs.Time(ctx, "locations.GetByID")(&err)

	if id == "" {
		return nil, &model.ValidationError{Field: "id", Message: "地点IDが空です"}
	}
	doc, err := r.collection().Doc(id).Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("地点 %s の取得に失敗しました: %w", id, mapFirestoreError(err))
	}
	record, err := decodeLocation(doc)
	if err != nil {
		return nil, fmt.Errorf("地点 %s のデータ変換に失敗しました: %w", id, err)
	}
	return &record, nil
}

// Create は新しい地点を登録し、採番されたIDを含めて返す
func (r *FirestoreLocationsRepository) Create(ctx context.Context, location *model.LocationRecord) (_ *model.LocationRecord, err error) {
	defer obs.Time(ctx, "locations.Create")(&err)

	now := time.Now()
	record := location.WithDefaults()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	ref, _, err := r.collection().Add(ctx, record.ToFirestoreLocation())
	if err != nil {
		log.Printf("❌ 地点の登録に失敗: %v", err)
		return nil, fmt.Errorf("地点の登録に失敗しました: %w", mapFirestoreError(err))
	}
	record.ID = ref.ID

	log.Printf("✅ 地点を登録: %s (%s)", record.ID, record.Name)
	return &record, nil
}

// AppendImages は images 配列に画像URIを追加する
func (r *FirestoreLocationsRepository) AppendImages(ctx context.Context, id string, imageURLs []string) (err error) {
	defer obs.Time(ctx, "locations.AppendImages")(&err)

	if len(imageURLs) == 0 {
		return nil
	}
	values := make([]interface{}, len(imageURLs))
	for i, u := range imageURLs {
		values[i] = u
	}

	_, err = r.collection().Doc(id).Update(ctx, []firestore.Update{
		{Path: "images", Value: firestore.ArrayUnion(values...)},
		{Path: "updatedAt", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		return fmt.Errorf("地点 %s への画像追加に失敗しました: %w", id, mapFirestoreError(err))
	}

	log.Printf("✅ 地点 %s に画像を%d件追加", id, len(imageURLs))
	return nil
}

// decodeLocations は変換できないドキュメントをログに残して読み飛ばす
func decodeLocations(docs []*firestore.DocumentSnapshot) []model.LocationRecord {
	locations := make([]model.LocationRecord, 0, len(docs))
	for _, doc := range docs {
		record, err := decodeLocation(doc)
		if err != nil {
			log.Printf("⚠️ 地点ドキュメント %s を読み飛ばします: %v", doc.Ref.ID, err)
			continue
		}
		locations = append(locations, record)
	}
	return locations
}

// decodeLocation は型付きで変換し、失敗した場合はフィールド単位で緩く変換する
func decodeLocation(doc *firestore.DocumentSnapshot) (model.LocationRecord, error) {
	var fl model.FirestoreLocation
	if err := doc.DataTo(&fl); err == nil {
		return fl.ToLocationRecord(doc.Ref.ID), nil
	}
	data := doc.Data()
	if data == nil {
		return model.LocationRecord{}, fmt.Errorf("ドキュメントが存在しません: %w", model.ErrNotFound)
	}
	return LocationFromMap(doc.Ref.ID, data), nil
}

// mapFirestoreError は gRPC のステータスをドメインのエラー分類に変換する
func mapFirestoreError(err error) error {
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%v: %w", err, model.ErrNotFound)
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%v: %w", err, model.ErrPermissionDenied)
	case codes.Unavailable, codes.DeadlineExceeded, codes.Internal, codes.ResourceExhausted:
		return fmt.Errorf("%v: %w", err, model.ErrNetworkFailure)
	}
	return err
}
