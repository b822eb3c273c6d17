package handler

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/domain/repository"
	"EcoCSM-App/internal/platform/obs"
)

const (
	requestIDHeader = "X-Request-ID"
	authStatusKey   = "auth_status"
)

// RequestID はリクエストIDを採番し、contextとレスポンスヘッダーに載せる
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Request = c.Request.WithContext(obs.WithRequestID(c.Request.Context(), id))
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// Authenticate はBearerトークンからユーザーを解決する。
// トークンなし・無効なトークンは未ログインとして扱い、拒否はRequireAuthに任せる
func Authenticate(identity repository.IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := model.SignedOut()
		token := bearerToken(c.GetHeader("Authorization"))
		if token != "" && identity != nil {
			user, err := identity.Authenticate(c.Request.Context(), token)
			if err != nil {
				log.Printf("⚠️ トークン検証失敗: %v", err)
			} else {
				status = model.SignedInAs(user)
			}
		}
		c.Set(authStatusKey, status)
		c.Next()
	}
}

// RequireAuth はログインしていないリクエストを401で拒否する
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authStatus(c).SignedIn {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "unauthorized",
				"message": "ログインが必要です",
			})
			return
		}
		c.Next()
	}
}

func authStatus(c *gin.Context) model.AuthStatus {
	v, ok := c.Get(authStatusKey)
	if !ok {
		return model.SignedOut()
	}
	status, ok := v.(model.AuthStatus)
	if !ok {
		return model.SignedOut()
	}
	return status
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
