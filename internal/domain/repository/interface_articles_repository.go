package repository

import (
	"context"

	"EcoCSM-App/internal/domain/model"
)

type ArticlesRepository interface {
	GetAll(ctx context.Context) ([]model.Article, error)
}
