package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"storefront/internal/domain/model"
)

//go:embed products.json
var productsJSON []byte

//go:embed categories.json
var categoriesJSON []byte

// 同梱のモック商品データ
func Products() ([]model.Product, error) {
	var products []model.Product
	if err := json.Unmarshal(productsJSON, &products); err != nil {
		return nil, fmt.Errorf("seed products: %w", err)
	}
	return products, nil
}

// 同梱のカテゴリデータ
func Categories() ([]model.Category, error) {
	var categories []model.Category
	if err := json.Unmarshal(categoriesJSON, &categories); err != nil {
		return nil, fmt.Errorf("seed categories: %w", err)
	}
	return categories, nil
}
