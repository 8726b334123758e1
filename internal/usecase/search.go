package usecase

import (
	"slices"
	"strings"

	"storefront/internal/domain/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SearchMatcher does a linear, case-insensitive substring scan over a product
// snapshot. Results are ranked in two tiers: name matches first, then matches
// found only in description, brand or category. Each tier is ordered by name.
type SearchMatcher struct {
	locale language.Tag
}

func NewSearchMatcher(locale language.Tag) *SearchMatcher {
	return &SearchMatcher{locale: locale}
}

// Search returns ok=false without scanning when the query is blank;
// the caller shows suggestions instead of an empty result.
func (m *SearchMatcher) Search(products []model.Product, query string) ([]model.Product, bool) {
	if strings.TrimSpace(query) == "" {
		return nil, false
	}

	fold := cases.Fold()
	q := fold.String(query)

	type hit struct {
		product   model.Product
		nameMatch bool
	}
	hits := make([]hit, 0)
	for _, p := range products {
		nameMatch := strings.Contains(fold.String(p.Name), q)
		if nameMatch ||
			strings.Contains(fold.String(p.Description), q) ||
			strings.Contains(fold.String(p.Brand), q) ||
			strings.Contains(fold.String(p.Category), q) {
			hits = append(hits, hit{product: p.Clone(), nameMatch: nameMatch})
		}
	}

	col := collate.New(m.locale)
	slices.SortStableFunc(hits, func(a, b hit) int {
		if a.nameMatch != b.nameMatch {
			if a.nameMatch {
				return -1
			}
			return 1
		}
		return col.CompareString(a.product.Name, b.product.Name)
	})

	out := make([]model.Product, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.product)
	}
	return out, true
}
