package model

import "github.com/shopspring/decimal"

// 並び順
type SortKey string

const (
	SortNameAsc    SortKey = "name"
	SortPriceAsc   SortKey = "price-low"
	SortPriceDesc  SortKey = "price-high"
	SortRatingDesc SortKey = "rating"
	// 検索結果のみ
	SortRelevance SortKey = "relevance"
)

func (k SortKey) Valid() bool {
	switch k {
	case SortNameAsc, SortPriceAsc, SortPriceDesc, SortRatingDesc, SortRelevance:
		return true
	}
	return false
}

// 価格帯。Min は常に含む。Max が nil なら上限なし（"200+"）。
type PriceRange struct {
	Min decimal.Decimal
	Max *decimal.Decimal
}

func (r PriceRange) Contains(price decimal.Decimal) bool {
	if price.LessThan(r.Min) {
		return false
	}
	if r.Max != nil && price.GreaterThan(*r.Max) {
		return false
	}
	return true
}

// 一覧の絞り込み条件。空/nil の項目は「制約なし」。
type FilterCriteria struct {
	Categories  []string
	Brands      []string
	PriceRange  *PriceRange
	InStockOnly bool
	MinRating   *float64
}

// 有効な条件の数（UIのバッジ表示用）
func (f FilterCriteria) ActiveCount() int {
	n := 0
	if len(f.Categories) > 0 {
		n++
	}
	if len(f.Brands) > 0 {
		n++
	}
	if f.PriceRange != nil {
		n++
	}
	if f.InStockOnly {
		n++
	}
	if f.MinRating != nil {
		n++
	}
	return n
}
