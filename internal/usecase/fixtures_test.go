package usecase_test

import (
	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

func mkProduct(id int64, name, brand, category, price string, rating float64, inStock bool) model.Product {
	return model.Product{
		ID:       id,
		Name:     name,
		Brand:    brand,
		Category: category,
		Price:    decimal.RequireFromString(price),
		Rating:   rating,
		InStock:  inStock,
		Images:   []string{"/img/" + name + ".jpg"},
	}
}

// 小さなカタログ（カタログ順 = ID順）
func catalog() []model.Product {
	return []model.Product{
		mkProduct(1, "Trapano Avvitatore", "Bosch", "Utensili Elettrici", "189.90", 4.7, true),
		mkProduct(2, "Martello da Carpentiere", "Stanley", "Utensili Manuali", "24.50", 4.5, true),
		mkProduct(3, "Smerigliatrice Angolare", "DeWalt", "Utensili Elettrici", "129.00", 4.6, false),
		mkProduct(4, "Livella Laser", "Bosch", "Misurazione", "89.00", 4.4, true),
		mkProduct(5, "Avvitatore a Impulsi", "Makita", "Utensili Elettrici", "149.00", 4.6, true),
		mkProduct(6, "Cacciavite di Precisione", "Stanley", "Utensili Manuali", "18.50", 4.1, false),
	}
}

func ids(products []model.Product) []int64 {
	out := make([]int64, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}
