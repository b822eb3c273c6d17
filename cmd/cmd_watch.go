package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"EcoCSM-App/internal/config"
	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/domain/service"
	"EcoCSM-App/internal/infrastructure/auth"
	"EcoCSM-App/internal/infrastructure/database"
	"EcoCSM-App/internal/infrastructure/firestore"
	"EcoCSM-App/internal/infrastructure/geolocation"
	"EcoCSM-App/internal/infrastructure/maps"
	"EcoCSM-App/internal/infrastructure/storage"
	repoImpl "EcoCSM-App/internal/repository"
	"EcoCSM-App/internal/usecase"
)

var (
	watchPosition string
	watchDeepLink string
	watchToken    string
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "近くの地点を端末上でライブ表示する",
	Long: `
watch は地点コレクションを購読し、現在地から近い地点と選択中の地点の詳細を表示する。
標準入力から次のコマンドを受け付ける:

  select <id>     地図上のマーカーを選択
  deeplink <id>   リンクから地点を開く
  deselect        選択を解除
  expand          詳細パネルを広げる
  collapse        詳細パネルを狭める
  level <30|60|85> 詳細パネルの高さを指定
  close           詳細パネルを閉じる
  directions      経路案内を開く
  search          地点を地図で開く
  photo <file>... 写真を追加（要 --token）
  dismiss         通知を消す
  quit            終了
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runWatch(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchPosition, "position", "", "現在地 (lat,lng)。未指定なら位置情報なしとして扱う")
	watchCmd.Flags().StringVar(&watchDeepLink, "deep-link", "", "起動時に開く地点ID")
	watchCmd.Flags().StringVar(&watchToken, "token", "", "写真追加に使うアクセストークン")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(ctx context.Context, in io.Reader, out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	position, err := geolocation.ParseLatLng(watchPosition)
	if err != nil {
		return err
	}

	firestoreClient, err := firestore.NewFirestoreClient(ctx, cfg.FirestoreProjectID, cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("Firestoreクライアント初期化失敗: %w", err)
	}
	defer firestoreClient.Close()
	locationsRepo := repoImpl.NewFirestoreLocationsRepository(firestoreClient.GetClient())

	authStatus := model.SignedOut()
	source := &pendingPhotoSource{}
	camera := usecase.NewCameraFlow(nil, source.take, func() model.AuthStatus { return authStatus })
	if cfg.HasSupabase() {
		supabaseClient, err := database.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			return err
		}
		if watchToken != "" {
			user, err := auth.NewSupabaseIdentityProvider(supabaseClient.GetClient().Auth).Authenticate(ctx, watchToken)
			if err != nil {
				log.Printf("⚠️ トークン検証失敗（未ログインとして続行）: %v", err)
			} else {
				authStatus = model.SignedInAs(user)
				log.Printf("👤 ログイン中: %s", user.DisplayName())
			}
		}
		photoStorage := storage.NewSupabasePhotoStorage(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.PhotoBucket)
		camera = usecase.NewCameraFlow(usecase.NewPhotoUploadUseCase(locationsRepo, photoStorage), source.take, func() model.AuthStatus { return authStatus })
	}

	screen := &terminalScreen{out: out}
	session := service.NewNearbySession(
		locationsRepo,
		geolocation.NewStaticGeolocationProvider(position),
		screen,
		maps.NewGoogleMapsDirectionsLauncher(screen),
		camera,
		service.SessionConfig{RadiusKm: cfg.NearbyRadiusKm, Limit: cfg.NearbyLimit},
	)
	session.SetChangeListener(screen.render)
	if err := session.Start(ctx); err != nil {
		return fmt.Errorf("セッション開始失敗: %w", err)
	}
	defer session.Close()

	if watchDeepLink != "" {
		session.SelectFromDeepLink(watchDeepLink)
	}

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := dispatchWatchCommand(ctx, session, source, line)
			if err != nil {
				screen.printf("❌ %v\n", err)
			}
			if quit {
				return nil
			}
		}
	}
}

// dispatchWatchCommand は1行分のコマンドをセッションに渡す。quit なら true を返す
func dispatchWatchCommand(ctx context.Context, session *service.NearbySession, source *pendingPhotoSource, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	arg := func() (string, error) {
		if len(fields) < 2 {
			return "", fmt.Errorf("%s には地点IDが必要です", fields[0])
		}
		return fields[1], nil
	}

	switch fields[0] {
	case "select":
		id, err := arg()
		if err != nil {
			return false, err
		}
		session.BeginSelection()
		session.SelectFromMap(id)
		session.EndSelection()
	case "deeplink":
		id, err := arg()
		if err != nil {
			return false, err
		}
		session.SelectFromDeepLink(id)
	case "deselect":
		session.Deselect()
	case "expand":
		session.ExpandPanel()
	case "collapse":
		session.CollapsePanel()
	case "level":
		if len(fields) < 2 {
			return false, fmt.Errorf("level には 30, 60, 85 のいずれかが必要です")
		}
		level, err := parseExpansionLevel(fields[1])
		if err != nil {
			return false, err
		}
		return false, session.SetPanelLevel(ctx, level)
	case "close":
		session.ClosePanel()
	case "directions":
		return false, session.RequestDirections(ctx)
	case "search":
		return false, session.RequestMapSearch(ctx)
	case "photo":
		if len(fields) < 2 {
			return false, fmt.Errorf("photo には画像ファイルのパスが必要です")
		}
		source.set(fields[1:])
		return false, session.RequestCameraCapture(ctx)
	case "dismiss":
		session.DismissNotices()
	case "quit", "exit":
		return true, nil
	default:
		return false, fmt.Errorf("不明なコマンド: %s", fields[0])
	}
	return false, nil
}

func parseExpansionLevel(s string) (model.ExpansionLevel, error) {
	percent, err := strconv.Atoi(strings.TrimSuffix(s, "%"))
	if err != nil {
		return model.LevelClosed, fmt.Errorf("展開段階が数値ではありません: %q", s)
	}
	for _, level := range model.ExpansionLevels {
		if level.Percent() == percent {
			return level, nil
		}
	}
	return model.LevelClosed, fmt.Errorf("展開段階は 30, 60, 85 のいずれかです: %d", percent)
}

// pendingPhotoSource は photo コマンドで指定されたファイルを撮影フローに渡す
type pendingPhotoSource struct {
	mu    sync.Mutex
	paths []string
}

func (p *pendingPhotoSource) set(paths []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = paths
}

func (p *pendingPhotoSource) take(ctx context.Context, location model.LocationContext) ([]usecase.PhotoFile, error) {
	p.mu.Lock()
	paths := p.paths
	p.paths = nil
	p.mu.Unlock()

	files := make([]usecase.PhotoFile, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("写真ファイルを開けません: %w", err)
		}
		path := path
		files = append(files, usecase.PhotoFile{
			Filename:    filepath.Base(path),
			ContentType: mime.TypeByExtension(filepath.Ext(path)),
			Open: func() (io.ReadCloser, error) {
				return os.Open(path)
			},
		})
	}
	return files, nil
}

// terminalScreen は地図・URLオープナー・描画先を端末出力で代替する
type terminalScreen struct {
	mu  sync.Mutex
	out io.Writer
}

func (s *terminalScreen) printf(format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}

func (s *terminalScreen) FocusRegion(region model.MapRegion) {
	s.printf("🗺️  表示領域: bbox=%s\n", repoImpl.RegionToBBox(region))
}

func (s *terminalScreen) ShowCallout(locationID string) {
	s.printf("📍 吹き出し: %s\n", locationID)
}

func (s *terminalScreen) Open(ctx context.Context, url string) error {
	// 端末ではアプリを起動できないので Web 版に任せる
	if strings.HasPrefix(url, "comgooglemaps://") {
		return fmt.Errorf("Google Maps アプリは利用できません")
	}
	s.printf("🔗 %s\n", url)
	return nil
}

func (s *terminalScreen) render(view service.SessionView) {
	var b strings.Builder
	if !view.Ready {
		b.WriteString("⏳ 地点を読み込み中...\n")
	} else {
		fmt.Fprintf(&b, "── 地点 %d件 / 選択: %s\n", len(view.Locations), view.Selection)
	}
	if view.Origin != nil {
		fmt.Fprintf(&b, "現在地: %v,%v\n", view.Origin.Latitude, view.Origin.Longitude)
	}
	for i, l := range view.Nearby {
		fmt.Fprintf(&b, "  %d. %s (%s) %.2f km\n", i+1, l.Name, l.ID, l.DistanceKm)
	}
	if view.PendingDeepLink != "" {
		fmt.Fprintf(&b, "🔗 リンク待ち: %s\n", view.PendingDeepLink)
	}
	if view.Panel.Open && view.Panel.Location != nil {
		l := view.Panel.Location
		fmt.Fprintf(&b, "┌ %s [%s] 高さ %d%% / ミニマップ %dpx\n", l.Name, l.ID, view.Panel.Percent, view.Panel.MiniMapHeight)
		fmt.Fprintf(&b, "│ %s\n", l.Description)
		if l.Address != "" {
			fmt.Fprintf(&b, "│ 住所: %s\n", l.Address)
		}
		fmt.Fprintf(&b, "└ 写真 %d枚\n", len(l.Images))
	}
	for _, n := range view.Notices {
		fmt.Fprintf(&b, "⚠️ [%s] %s\n", n.Kind, n.Message)
	}
	s.printf("%s", b.String())
}
