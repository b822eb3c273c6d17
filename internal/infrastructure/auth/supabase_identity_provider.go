package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/supabase-community/gotrue-go"
	"github.com/supabase-community/gotrue-go/types"

	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/platform/obs"
)

// SupabaseIdentityProvider は Supabase Auth (GoTrue) のアクセストークンからユーザーを解決する
type SupabaseIdentityProvider struct {
	auth gotrue.Client
}

// NewSupabaseIdentityProvider は supabase.Client.Auth を受け取ってプロバイダを作成する
func NewSupabaseIdentityProvider(auth gotrue.Client) *SupabaseIdentityProvider {
	return &SupabaseIdentityProvider{auth: auth}
}

// Authenticate はトークンを検証し、ユーザー情報を返す
func (p *SupabaseIdentityProvider) Authenticate(ctx context.Context, accessToken string) (_ *model.User, err error) {
	defer obs.Time(ctx, "auth.Authenticate")(&err)

	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, fmt.Errorf("アクセストークンがありません: %w", model.ErrPermissionDenied)
	}

	resp, err := p.auth.WithToken(accessToken).GetUser()
	if err != nil {
		return nil, fmt.Errorf("トークンの検証に失敗: %v: %w", err, model.ErrPermissionDenied)
	}
	return toUser(&resp.User), nil
}

// toUser は GoTrue のユーザーをドメインモデルに変換する。
// username は user_metadata から取り、なければ未設定のまま（登録者は anonymous になる）
func toUser(u *types.User) *model.User {
	user := &model.User{
		ID:    u.ID.String(),
		Email: u.Email,
	}
	if name, ok := u.UserMetadata["username"].(string); ok {
		user.Username = strings.TrimSpace(name)
	}
	return user
}
