package maps

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"EcoCSM-App/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingOpener struct {
	opened []string
	fail   map[string]bool
}

func (o *recordingOpener) Open(ctx context.Context, url string) error {
	o.opened = append(o.opened, url)
	if o.fail[url] {
		return errors.New("no handler")
	}
	return nil
}

func TestDirectionsURLs(t *testing.T) {
	urls := DirectionsURLs("loc-1", model.Coordinate{Latitude: 38.7, Longitude: -9.14})

	assert.Equal(t, "loc-1", urls.LocationID)
	assert.Equal(t, "https://www.google.com/maps/dir/?api=1&destination=38.7,-9.14&travelmode=driving", urls.WebURL)
	assert.Equal(t, "https://www.google.com/maps/search/?api=1&query=38.7,-9.14", urls.SearchURL)
	assert.Equal(t, "comgooglemaps://?daddr=38.7,-9.14&directionsmode=driving", urls.AppURL)
}

func TestGoogleMapsDirectionsLauncher(t *testing.T) {
	ctx := context.Background()
	dest := model.Coordinate{Latitude: 38.7, Longitude: -9.14}

	t.Run("アプリで開ける", func(t *testing.T) {
		opener := &recordingOpener{}
		require.NoError(t, NewGoogleMapsDirectionsLauncher(opener).OpenDirections(ctx, dest))
		assert.Equal(t, []string{AppDirectionsURL(dest)}, opener.opened)
	})

	t.Run("ブラウザにフォールバック", func(t *testing.T) {
		opener := &recordingOpener{fail: map[string]bool{AppDirectionsURL(dest): true}}
		require.NoError(t, NewGoogleMapsDirectionsLauncher(opener).OpenDirections(ctx, dest))
		assert.Equal(t, []string{AppDirectionsURL(dest), WebDirectionsURL(dest)}, opener.opened)
	})

	t.Run("どちらも開けない", func(t *testing.T) {
		opener := &recordingOpener{fail: map[string]bool{AppDirectionsURL(dest): true, WebDirectionsURL(dest): true}}
		err := NewGoogleMapsDirectionsLauncher(opener).OpenDirections(ctx, dest)
		assert.True(t, errors.Is(err, model.ErrNetworkFailure))
	})

	t.Run("無効な目的地", func(t *testing.T) {
		opener := &recordingOpener{}
		err := NewGoogleMapsDirectionsLauncher(opener).OpenDirections(ctx, model.Coordinate{Latitude: 120})
		assert.True(t, errors.Is(err, model.ErrValidationFailure))
		assert.Empty(t, opener.opened)
	})
}

func TestGoogleGeocodingProvider_ReverseGeocode(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr error
	}{
		{
			name: "住所を取得",
			body: `{"status":"OK","results":[{"formatted_address":"Praça do Comércio, Lisboa"}]}`,
			want: "Praça do Comércio, Lisboa",
		},
		{name: "結果なし", body: `{"status":"ZERO_RESULTS","results":[]}`, wantErr: model.ErrNotFound},
		{name: "キーが無効", body: `{"status":"REQUEST_DENIED","error_message":"bad key"}`, wantErr: model.ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "38.722300,-9.139300", r.URL.Query().Get("latlng"))
				assert.Equal(t, "test-key", r.URL.Query().Get("key"))
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			provider := NewGoogleGeocodingProvider("test-key").WithBaseURL(server.URL)
			got, err := provider.ReverseGeocode(context.Background(), model.Coordinate{Latitude: 38.7223, Longitude: -9.1393})

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "err = %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGoogleGeocodingProvider_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewGoogleGeocodingProvider("k").WithBaseURL(server.URL).
		ReverseGeocode(context.Background(), model.Coordinate{Latitude: 1, Longitude: 1})

	assert.True(t, errors.Is(err, model.ErrNetworkFailure))
}
