package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"EcoCSM-App/internal/domain/repository"
)

type WeatherHandler struct {
	weatherProvider repository.WeatherProvider
}

func NewWeatherHandler(weatherProvider repository.WeatherProvider) *WeatherHandler {
	return &WeatherHandler{weatherProvider: weatherProvider}
}

// GetWeather GET /weather - 現在地の天気
func (h *WeatherHandler) GetWeather(c *gin.Context) {
	coordinate, err := parseCoordinateQuery(c)
	if err != nil {
		respondError(c, err, "")
		return
	}

	weather, err := h.weatherProvider.CurrentWeather(c.Request.Context(), coordinate)
	if err != nil {
		respondError(c, err, "天気情報の取得に失敗しました")
		return
	}
	c.JSON(http.StatusOK, weather)
}
