package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"EcoCSM-App/internal/domain/model"
	"EcoCSM-App/internal/domain/repository"
)

type ArticlesHandler struct {
	articlesRepo repository.ArticlesRepository
}

func NewArticlesHandler(articlesRepo repository.ArticlesRepository) *ArticlesHandler {
	return &ArticlesHandler{articlesRepo: articlesRepo}
}

// GetArticles GET /articles - 記事一覧（新しい順）
func (h *ArticlesHandler) GetArticles(c *gin.Context) {
	articles, err := h.articlesRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "記事の取得に失敗しました")
		return
	}
	if articles == nil {
		articles = []model.Article{}
	}
	c.JSON(http.StatusOK, model.GetArticlesResponse{Articles: articles})
}
