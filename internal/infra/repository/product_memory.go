package repository

import (
	"context"
	"time"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// メモリ上のモックカタログ。読み取り専用。
// 返す値は毎回コピーなので、呼び出し側が書き換えても元データは変わらない。
type ProductMemoryRepository struct {
	products []model.Product
	latency  time.Duration
}

// DI
func NewProductMemoryRepository(products []model.Product, latency time.Duration) *ProductMemoryRepository {
	own := make([]model.Product, 0, len(products))
	for _, p := range products {
		own = append(own, p.Clone())
	}
	return &ProductMemoryRepository{products: own, latency: latency}
}

func (r *ProductMemoryRepository) GetAll(ctx context.Context) ([]model.Product, error) {
	if err := wait(ctx, r.latency); err != nil {
		return []model.Product{}, err
	}
	out := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (r *ProductMemoryRepository) GetByID(ctx context.Context, id int64) (model.Product, error) {
	if err := wait(ctx, r.latency); err != nil {
		return model.Product{}, err
	}
	for _, p := range r.products {
		if p.ID == id {
			return p.Clone(), nil
		}
	}
	return model.Product{}, repo.ErrNotFound
}

// カテゴリのモック
type CategoryMemoryRepository struct {
	categories []model.Category
	latency    time.Duration
}

func NewCategoryMemoryRepository(categories []model.Category, latency time.Duration) *CategoryMemoryRepository {
	return &CategoryMemoryRepository{
		categories: append([]model.Category(nil), categories...),
		latency:    latency,
	}
}

func (r *CategoryMemoryRepository) GetAll(ctx context.Context) ([]model.Category, error) {
	if err := wait(ctx, r.latency); err != nil {
		return []model.Category{}, err
	}
	return append([]model.Category{}, r.categories...), nil
}

func (r *CategoryMemoryRepository) GetByID(ctx context.Context, id int64) (model.Category, error) {
	return r.find(ctx, func(c model.Category) bool { return c.ID == id })
}

func (r *CategoryMemoryRepository) GetBySlug(ctx context.Context, slug string) (model.Category, error) {
	return r.find(ctx, func(c model.Category) bool { return c.Slug == slug })
}

func (r *CategoryMemoryRepository) find(ctx context.Context, match func(model.Category) bool) (model.Category, error) {
	if err := wait(ctx, r.latency); err != nil {
		return model.Category{}, err
	}
	for _, c := range r.categories {
		if match(c) {
			return c, nil
		}
	}
	return model.Category{}, repo.ErrNotFound
}

// 擬似的なAPI遅延。ctxがキャンセルされたら打ち切る。
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
