package handler

import (
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"EcoCSM-App/internal/application"
	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/usecase"
)

// maxPhotoUploadMemory はmultipartをメモリに保持する上限
const maxPhotoUploadMemory = 32 << 20

type LocationsHandler struct {
	locationsUseCase  usecase.LocationsUseCase
	submissionService application.LocationSubmissionService
	photoUseCase      usecase.PhotoUploadUseCase
}

func NewLocationsHandler(locationsUseCase usecase.LocationsUseCase, submissionService application.LocationSubmissionService, photoUseCase usecase.PhotoUploadUseCase) *LocationsHandler {
	return &LocationsHandler{
		locationsUseCase:  locationsUseCase,
		submissionService: submissionService,
		photoUseCase:      photoUseCase,
	}
}

// GetLocations GET /locations - 地点一覧の取得（?bbox=minLng,minLat,maxLng,maxLat）。
// lat, lng を指定すると距離順に並べ、各地点に distance_km を付ける
func (h *LocationsHandler) GetLocations(c *gin.Context) {
	if c.Query("lat") != "" || c.Query("lng") != "" {
		origin, err := parseCoordinateQuery(c)
		if err != nil {
			respondError(c, err, "")
			return
		}
		response, err := h.locationsUseCase.GetLocationsByDistance(c.Request.Context(), origin, c.Query("bbox"))
		if err != nil {
			respondError(c, err, "地点一覧の取得に失敗しました")
			return
		}
		c.JSON(http.StatusOK, response)
		return
	}

	response, err := h.locationsUseCase.GetLocations(c.Request.Context(), c.Query("bbox"))
	if err != nil {
		respondError(c, err, "地点一覧の取得に失敗しました")
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetNearbyLocations GET /locations/nearby - 現在地から近い地点の取得
func (h *LocationsHandler) GetNearbyLocations(c *gin.Context) {
	origin, err := parseCoordinateQuery(c)
	if err != nil {
		respondError(c, err, "")
		return
	}

	radiusKm := 0.0
	if v := c.Query("radius_km"); v != "" {
		radiusKm, err = strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) || radiusKm <= 0 {
			respondError(c, &model.ValidationError{Field: "radius_km", Message: "正の数値を指定してください"}, "")
			return
		}
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit <= 0 {
			respondError(c, &model.ValidationError{Field: "limit", Message: "正の整数を指定してください"}, "")
			return
		}
	}

	response, err := h.locationsUseCase.GetNearbyLocations(c.Request.Context(), origin, radiusKm, limit)
	if err != nil {
		respondError(c, err, "近くの地点の取得に失敗しました")
		return
	}
	c.JSON(http.StatusOK, response)
}

// GetLocation GET /locations/:id - 地点の詳細取得
func (h *LocationsHandler) GetLocation(c *gin.Context) {
	location, err := h.locationsUseCase.GetLocation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "地点の取得に失敗しました")
		return
	}
	c.JSON(http.StatusOK, location)
}

// GetDirections GET /locations/:id/directions - 経路案内URLの取得
func (h *LocationsHandler) GetDirections(c *gin.Context) {
	response, err := h.locationsUseCase.GetDirections(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "経路案内URLの作成に失敗しました")
		return
	}
	c.JSON(http.StatusOK, response)
}

// CreateLocation POST /locations - 汚染地点の登録
func (h *LocationsHandler) CreateLocation(c *gin.Context) {
	var req model.CreateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid JSON format: " + err.Error(),
		})
		return
	}

	response, err := h.submissionService.CreateLocation(c.Request.Context(), authStatus(c), &req)
	if err != nil {
		respondError(c, err, "地点の登録に失敗しました")
		return
	}
	c.JSON(http.StatusCreated, response)
}

// UploadPhotos POST /locations/:id/photos - 地点への写真追加（multipart: photos[]）
func (h *LocationsHandler) UploadPhotos(c *gin.Context) {
	if h.photoUseCase == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "service_unavailable",
			"message": "写真の保存先が設定されていません",
		})
		return
	}
	if err := c.Request.ParseMultipartForm(maxPhotoUploadMemory); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Invalid multipart form: " + err.Error(),
		})
		return
	}

	var headers []*multipart.FileHeader
	if form := c.Request.MultipartForm; form != nil {
		headers = append(headers, form.File["photos[]"]...)
		headers = append(headers, form.File["photos"]...)
	}

	photos := make([]usecase.PhotoFile, 0, len(headers))
	for _, fh := range headers {
		photos = append(photos, toPhotoFile(fh))
	}

	response, err := h.photoUseCase.UploadPhotos(c.Request.Context(), authStatus(c), c.Param("id"), photos)
	if err != nil {
		respondError(c, err, "写真のアップロードに失敗しました")
		return
	}
	c.JSON(http.StatusCreated, response)
}

func toPhotoFile(fh *multipart.FileHeader) usecase.PhotoFile {
	return usecase.PhotoFile{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

// parseCoordinateQuery は ?lat=&lng= を読み取る
func parseCoordinateQuery(c *gin.Context) (model.Coordinate, error) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		return model.Coordinate{}, &model.ValidationError{Field: "lat", Message: "緯度を数値で指定してください"}
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		return model.Coordinate{}, &model.ValidationError{Field: "lng", Message: "経度を数値で指定してください"}
	}
	coordinate := model.Coordinate{Latitude: lat, Longitude: lng}
	if !coordinate.IsValid() {
		return model.Coordinate{}, &model.ValidationError{Field: "lat,lng", Message: "緯度経度が範囲外です"}
	}
	return coordinate, nil
}
