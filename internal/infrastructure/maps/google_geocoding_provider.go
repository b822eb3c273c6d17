package maps

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

const defaultGeocodingURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleGeocodingProvider はGoogle Maps Geocoding APIを使用した逆ジオコーディングの実装
type GoogleGeocodingProvider struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

// NewGoogleGeocodingProvider は新しいプロバイダを生成する
func NewGoogleGeocodingProvider(apiKey string) *GoogleGeocodingProvider {
	return &GoogleGeocodingProvider{
		apiKey:     apiKey,
		baseURL:    defaultGeocodingURL,
		language:   "pt",
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// WithBaseURL は接続先を差し替える（テスト用）
func (g *GoogleGeocodingProvider) WithBaseURL(baseURL string) *GoogleGeocodingProvider {
	g.baseURL = baseURL
	return g
}

// ReverseGeocode は座標から整形済みの住所を取得する
func (g *GoogleGeocodingProvider) ReverseGeocode(ctx context.Context, coordinate model.Coordinate) (_ string, err error) {
	defer obs.Time(ctx, "maps.ReverseGeocode")(&err)

	if !coordinate.IsValid() {
		return "", &model.ValidationError{Field: "coordinates", Message: "緯度経度が範囲外です"}
	}

	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", coordinate.Latitude, coordinate.Longitude))
	params.Set("language", g.language)
	params.Set("key", g.apiKey)
	reqURL := fmt.Sprintf("%s?%s", g.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("Geocoding APIリクエストに失敗: %v: %w", err, model.ErrNetworkFailure)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Geocoding APIからエラーステータスが返されました: %s: %w", resp.Status, model.ErrNetworkFailure)
	}

	var apiResp geocodingResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	switch apiResp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return "", fmt.Errorf("住所が見つかりません: %w", model.ErrNotFound)
	case "REQUEST_DENIED":
		return "", fmt.Errorf("Geocoding APIへのアクセスが拒否されました: %s: %w", apiResp.ErrorMessage, model.ErrPermissionDenied)
	default:
		return "", fmt.Errorf("Geocoding APIエラー: %s %s: %w", apiResp.Status, apiResp.ErrorMessage, model.ErrNetworkFailure)
	}

	if len(apiResp.Results) == 0 {
		return "", fmt.Errorf("住所が見つかりません: %w", model.ErrNotFound)
	}
	return apiResp.Results[0].FormattedAddress, nil
}

// --- Geocoding APIのレスポンスをパースするための構造体 ---

type geocodingResponse struct {
	Results      []geocodingResult `json:"results"`
	Status       string            `json:"status"`
	ErrorMessage string            `json:"error_message,omitempty"`
}
type geocodingResult struct {
	FormattedAddress string `json:"formatted_address"`
}
