package repository

import (
	"context"
	"errors"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"gorm.io/gorm"
)

type CategoryGormRepository struct {
	db *gorm.DB
}

// DI
func NewCategoryGormRepository(db *gorm.DB) *CategoryGormRepository {
	return &CategoryGormRepository{db: db}
}

func (r *CategoryGormRepository) GetAll(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("id asc").Find(&categories).Error; err != nil {
		return []model.Category{}, err
	}
	return categories, nil
}

func (r *CategoryGormRepository) GetByID(ctx context.Context, id int64) (model.Category, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *CategoryGormRepository) GetBySlug(ctx context.Context, slug string) (model.Category, error) {
	return r.first(ctx, "slug = ?", slug)
}

func (r *CategoryGormRepository) first(ctx context.Context, query string, arg any) (model.Category, error) {
	var c model.Category
	err := r.db.WithContext(ctx).Where(query, arg).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Category{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Category{}, err
	}
	return c, nil
}

// 空のときだけ投入
func (r *CategoryGormRepository) SeedIfEmpty(ctx context.Context, categories []model.Category) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Category{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 || len(categories) == 0 {
		return 0, nil
	}
	if err := r.db.WithContext(ctx).Create(&categories).Error; err != nil {
		return 0, err
	}
	return len(categories), nil
}
