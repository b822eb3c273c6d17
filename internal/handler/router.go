package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"EcoCSM-App/internal/domain/repository"
)

// RouterDeps はルーター構築に必要なハンドラー群。nil のハンドラーはルートを登録しない
type RouterDeps struct {
	Identity  repository.IdentityProvider
	Locations *LocationsHandler
	Weather   *WeatherHandler
	Articles  *ArticlesHandler
	Snapshots SnapshotStatus
}

// SnapshotStatus は地点スナップショットの購読状態
type SnapshotStatus interface {
	IsReady() bool
	LastError() error
}

// NewRouter はAPIルーティングを構築する
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.Default()
	r.Use(RequestID())
	r.Use(Authenticate(deps.Identity))

	r.GET("/api/health", health(deps.Snapshots))

	if h := deps.Locations; h != nil {
		locations := r.Group("/locations")
		{
			locations.GET("", h.GetLocations)
			locations.GET("/nearby", h.GetNearbyLocations)
			locations.GET("/:id", h.GetLocation)
			locations.GET("/:id/directions", h.GetDirections)
			locations.POST("", RequireAuth(), h.CreateLocation)
			locations.POST("/:id/photos", RequireAuth(), h.UploadPhotos)
		}
	}
	if deps.Weather != nil {
		r.GET("/weather", deps.Weather.GetWeather)
	}
	if deps.Articles != nil {
		r.GET("/articles", deps.Articles.GetArticles)
	}
	return r
}

// health は購読状態を含めたヘルスチェック。購読が失敗していれば status は degraded になる
func health(snapshots SnapshotStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "healthy",
			"service": "EcoCSM-App",
		}
		if snapshots == nil {
			c.JSON(http.StatusOK, body)
			return
		}
		if err := snapshots.LastError(); err != nil {
			body["status"] = "degraded"
			body["snapshot_error"] = err.Error()
		} else if !snapshots.IsReady() {
			body["status"] = "starting"
		}
		c.JSON(http.StatusOK, body)
	}
}
