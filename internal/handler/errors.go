package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"EcoCSM-App/internal/domain/model"
)

// respondError はドメインエラーをHTTPステータスに変換して返す
func respondError(c *gin.Context, err error, fallbackMessage string) {
	var validationErr *model.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": validationErr.Message,
			"field":   validationErr.Field,
		})
	case errors.Is(err, model.ErrValidationFailure):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation_error",
			"message": err.Error(),
		})
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": err.Error(),
		})
	case errors.Is(err, model.ErrPermissionDenied):
		status := http.StatusForbidden
		if !authStatus(c).SignedIn {
			status = http.StatusUnauthorized
		}
		c.JSON(status, gin.H{
			"error":   "permission_denied",
			"message": err.Error(),
		})
	case errors.Is(err, model.ErrNetworkFailure):
		log.Printf("❌ 外部サービスエラー: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "upstream_error",
			"message": fallbackMessage,
		})
	default:
		log.Printf("❌ %s: %v", fallbackMessage, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_server_error",
			"message": fallbackMessage,
		})
	}
}
