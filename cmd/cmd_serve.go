package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"EcoCSM-App/internal/application"
	"EcoCSM-App/internal/config"
	"EcoCSM-App/internal/domain/repository"
	"EcoCSM-App/internal/domain/service"
	"EcoCSM-App/internal/handler"
	"EcoCSM-App/internal/infrastructure/auth"
	"EcoCSM-App/internal/infrastructure/database"
	"EcoCSM-App/internal/infrastructure/firestore"
	"EcoCSM-App/internal/infrastructure/maps"
	"EcoCSM-App/internal/infrastructure/storage"
	"EcoCSM-App/internal/infrastructure/weather"
	repoImpl "EcoCSM-App/internal/repository"
	"EcoCSM-App/internal/usecase"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "HTTP APIサーバーを起動する",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Printf("🔥 Firestoreクライアントを初期化中...")
	firestoreClient, err := firestore.NewFirestoreClient(ctx, cfg.FirestoreProjectID, cfg.CredentialsFile)
	if err != nil {
		return fmt.Errorf("Firestoreクライアント初期化失敗: %w", err)
	}
	defer firestoreClient.Close()

	locationsRepo := repoImpl.NewFirestoreLocationsRepository(firestoreClient.GetClient())
	cache := service.NewLocationSnapshotCache(locationsRepo)
	if err := cache.Start(ctx); err != nil {
		return fmt.Errorf("地点の購読開始に失敗: %w", err)
	}
	defer cache.Close()

	geocoder, closeGeocoder, err := newReverseGeocoder(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeGeocoder()

	deps := handler.RouterDeps{
		Snapshots: cache,
		Articles:  handler.NewArticlesHandler(repoImpl.NewFirestoreArticlesRepository(firestoreClient.GetClient())),
	}

	var photoUseCase usecase.PhotoUploadUseCase
	if cfg.HasSupabase() {
		log.Printf("🔑 Supabaseクライアントを初期化中...")
		supabaseClient, err := database.NewSupabaseClient(cfg.SupabaseURL, cfg.SupabaseAnonKey)
		if err != nil {
			return err
		}
		if err := supabaseClient.HealthCheck(); err != nil {
			log.Printf("⚠️ Supabaseヘルスチェック失敗: %v", err)
		}
		deps.Identity = auth.NewSupabaseIdentityProvider(supabaseClient.GetClient().Auth)
		photoStorage := storage.NewSupabasePhotoStorage(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.PhotoBucket)
		photoUseCase = usecase.NewPhotoUploadUseCase(locationsRepo, photoStorage)
	} else {
		log.Printf("⚠️ SUPABASE_URL/SUPABASE_ANON_KEY未設定: 認証・写真は無効です")
	}

	if cfg.OpenWeatherAPIKey != "" {
		deps.Weather = handler.NewWeatherHandler(weather.NewOpenWeatherClient(cfg.OpenWeatherAPIKey))
	} else {
		log.Printf("⚠️ OPENWEATHER_API_KEY未設定: 天気APIは無効です")
	}

	locationsUseCase := usecase.NewLocationsUseCase(cache, locationsRepo, cfg.NearbyRadiusKm, cfg.NearbyLimit)
	submissionService := application.NewLocationSubmissionService(locationsRepo, geocoder)
	deps.Locations = handler.NewLocationsHandler(locationsUseCase, submissionService, photoUseCase)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🚀 EcoCSM-App server starting on :%s...", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("🛑 シャットダウン中...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// newReverseGeocoder は Google Geocoding を、DATABASE_URL があれば PostgreSQL キャッシュ付きで作成する
func newReverseGeocoder(ctx context.Context, cfg *config.Config) (repository.ReverseGeocoder, func(), error) {
	noop := func() {}
	if cfg.GoogleMapsAPIKey == "" {
		log.Printf("⚠️ GOOGLE_MAPS_API_KEY未設定: 住所の自動入力は無効です")
		return nil, noop, nil
	}
	geocoder := maps.NewGoogleGeocodingProvider(cfg.GoogleMapsAPIKey)
	if cfg.DatabaseURL == "" {
		return geocoder, noop, nil
	}

	log.Printf("🐘 PostgreSQLクライアントを初期化中...")
	pgClient, err := database.NewPostgreSQLClient(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, noop, err
	}
	if err := pgClient.EnsureSchema(ctx); err != nil {
		pgClient.Close()
		return nil, noop, err
	}
	cached := repoImpl.NewCachedReverseGeocoder(repoImpl.NewPostgresGeocodeCacheRepository(pgClient), geocoder)
	return cached, func() { pgClient.Close() }, nil
}
