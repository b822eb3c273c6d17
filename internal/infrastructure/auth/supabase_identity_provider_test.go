package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/supabase-community/gotrue-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"EcoCSM-App/internal/domain/model"
)

func newTestProvider(t *testing.T) *SupabaseIdentityProvider {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Header.Get("Authorization") {
		case "Bearer good-token":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"id": "6f1f6a7e-3a52-4c59-9f0c-7c1b1b0a2f11",
				"email": "maria@example.com",
				"user_metadata": {"username": "maria"}
			}`))
		case "Bearer no-name":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id": "0a3b4c5d-1111-2222-3333-444455556666", "email": "anon@example.com"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"msg":"invalid JWT"}`))
		}
	}))
	t.Cleanup(server.Close)

	client := gotrue.New("test", "anon-key").WithCustomGoTrueURL(server.URL)
	return NewSupabaseIdentityProvider(client)
}

func TestSupabaseIdentityProvider_Authenticate(t *testing.T) {
	provider := newTestProvider(t)
	ctx := context.Background()

	t.Run("有効なトークン", func(t *testing.T) {
		user, err := provider.Authenticate(ctx, "good-token")
		require.NoError(t, err)
		assert.Equal(t, "6f1f6a7e-3a52-4c59-9f0c-7c1b1b0a2f11", user.ID)
		assert.Equal(t, "maria", user.Username)
		assert.Equal(t, "maria", user.DisplayName())
	})

	t.Run("ユーザー名なし", func(t *testing.T) {
		user, err := provider.Authenticate(ctx, "no-name")
		require.NoError(t, err)
		assert.Equal(t, model.AnonymousCreator, user.DisplayName())
	})

	t.Run("無効なトークン", func(t *testing.T) {
		_, err := provider.Authenticate(ctx, "bad-token")
		assert.True(t, errors.Is(err, model.ErrPermissionDenied))
	})

	t.Run("トークンなし", func(t *testing.T) {
		_, err := provider.Authenticate(ctx, " ")
		assert.True(t, errors.Is(err, model.ErrPermissionDenied))
	})
}
