package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 商品カタログの読み取りだけを約束。
type ProductRepository interface {
	// 全商品（カタログのスナップショット）
	GetAll(ctx context.Context) ([]model.Product, error)
	// 無ければ ErrNotFound
	GetByID(ctx context.Context, id int64) (model.Product, error)
}

// カテゴリの読み取り
type CategoryRepository interface {
	GetAll(ctx context.Context) ([]model.Category, error)
	GetByID(ctx context.Context, id int64) (model.Category, error)
	GetBySlug(ctx context.Context, slug string) (model.Category, error)
}
