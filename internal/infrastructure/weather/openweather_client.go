package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/platform/obs"
)

// OpenWeatherClient はOpenWeatherMap APIとの通信を担当するクライアント
type OpenWeatherClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewOpenWeatherClient は新しいOpenWeatherClientインスタンスを作成
func NewOpenWeatherClient(apiKey string) *OpenWeatherClient {
	return &OpenWeatherClient{
		apiKey:  apiKey,
		baseURL: "https://api.openweathermap.org",
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// WithBaseURL は接続先を差し替える（テスト用）
func (c *OpenWeatherClient) WithBaseURL(baseURL string) *OpenWeatherClient {
	c.baseURL = baseURL
	return c
}

// openWeatherResponse は /data/2.5/weather のレスポンス
type openWeatherResponse struct {
	// cod は成功時は数値 200、失敗時は文字列で返る
	Cod     json.RawMessage `json:"cod"`
	Message string          `json:"message"`
	Name    string          `json:"name"`
	Sys     struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Visibility int `json:"visibility"`
	Clouds     struct {
		All int `json:"all"`
	} `json:"clouds"`
}

// CurrentWeather は指定地点の現在の天気を取得する
func (c *OpenWeatherClient) CurrentWeather(ctx context.Context, coordinate model.Coordinate) (_ *model.Weather, err error) {
	defer obs.Time(ctx, "weather.CurrentWeather")(&err)

	if !coordinate.IsValid() {
		return nil, &model.ValidationError{Field: "coordinates", Message: "緯度経度が範囲外です"}
	}

	params := url.Values{}
	params.Set("lat", fmt.Sprintf("%f", coordinate.Latitude))
	params.Set("lon", fmt.Sprintf("%f", coordinate.Longitude))
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")
	params.Set("lang", "pt")
	reqURL := fmt.Sprintf("%s/data/2.5/weather?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("天気APIリクエストに失敗: %v: %w", err, model.ErrNetworkFailure)
	}
	defer resp.Body.Close()

	var apiResp openWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("天気APIのレスポンス解析に失敗: %v: %w", err, model.ErrNetworkFailure)
	}

	if string(apiResp.Cod) != "200" {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, fmt.Errorf("天気APIの認証に失敗: %s: %w", apiResp.Message, model.ErrPermissionDenied)
		case http.StatusNotFound:
			return nil, fmt.Errorf("天気データが見つかりません: %s: %w", apiResp.Message, model.ErrNotFound)
		}
		return nil, fmt.Errorf("天気データの取得に失敗 (cod=%s): %s: %w", string(apiResp.Cod), apiResp.Message, model.ErrNetworkFailure)
	}

	w := &model.Weather{
		City:        apiResp.Name,
		Country:     apiResp.Sys.Country,
		Temperature: apiResp.Main.Temp,
		FeelsLike:   apiResp.Main.FeelsLike,
		Humidity:    apiResp.Main.Humidity,
		Pressure:    apiResp.Main.Pressure,
		WindSpeed:   apiResp.Wind.Speed,
		WindDeg:     apiResp.Wind.Deg,
		Visibility:  apiResp.Visibility,
		Clouds:      apiResp.Clouds.All,
	}
	if len(apiResp.Weather) > 0 {
		w.Condition = apiResp.Weather[0].Description
		w.Icon = apiResp.Weather[0].Icon
	}
	return w, nil
}
