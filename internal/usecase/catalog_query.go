package usecase

import (
	"cmp"
	"slices"

	"storefront/internal/domain/model"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CatalogQueryEngine filters and orders a product snapshot.
// It keeps no state besides the collation locale, so one engine may serve
// any number of goroutines.
type CatalogQueryEngine struct {
	locale language.Tag
}

func NewCatalogQueryEngine(locale language.Tag) *CatalogQueryEngine {
	return &CatalogQueryEngine{locale: locale}
}

// Query returns the products that pass every criterion, ordered by sortKey.
// The input slice is never modified; the result holds copies.
func (e *CatalogQueryEngine) Query(products []model.Product, criteria model.FilterCriteria, sortKey model.SortKey) []model.Product {
	categories := toSet(criteria.Categories)
	brands := toSet(criteria.Brands)

	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if !passes(p, criteria, categories, brands) {
			continue
		}
		out = append(out, p.Clone())
	}

	sortProducts(out, sortKey, collate.New(e.locale))
	return out
}

// Sort は並び替えたコピーを返す（絞り込みなし）
func (e *CatalogQueryEngine) Sort(products []model.Product, sortKey model.SortKey) []model.Product {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		out = append(out, p.Clone())
	}
	sortProducts(out, sortKey, collate.New(e.locale))
	return out
}

// 条件はすべて AND。未指定の条件は常に true。
func passes(p model.Product, c model.FilterCriteria, categories, brands map[string]struct{}) bool {
	if len(categories) > 0 {
		if _, ok := categories[p.Category]; !ok {
			return false
		}
	}
	if len(brands) > 0 {
		if _, ok := brands[p.Brand]; !ok {
			return false
		}
	}
	if c.PriceRange != nil && !c.PriceRange.Contains(p.Price) {
		return false
	}
	if c.InStockOnly && !p.InStock {
		return false
	}
	if c.MinRating != nil && p.Rating < *c.MinRating {
		return false
	}
	return true
}

// 安定ソート。主キーが同じなら名前の昇順（ロケール照合）。
// collate.Collator は goroutine セーフではないので呼び出しごとに作る。
func sortProducts(products []model.Product, key model.SortKey, col *collate.Collator) {
	var primary func(a, b model.Product) int
	switch key {
	case model.SortPriceAsc:
		primary = func(a, b model.Product) int { return a.Price.Cmp(b.Price) }
	case model.SortPriceDesc:
		primary = func(a, b model.Product) int { return b.Price.Cmp(a.Price) }
	case model.SortRatingDesc:
		primary = func(a, b model.Product) int { return cmp.Compare(b.Rating, a.Rating) }
	}

	slices.SortStableFunc(products, func(a, b model.Product) int {
		if primary != nil {
			if c := primary(a, b); c != 0 {
				return c
			}
		}
		return col.CompareString(a.Name, b.Name)
	})
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
