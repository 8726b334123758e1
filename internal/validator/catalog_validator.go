package validator

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/domain/model"

	"github.com/shopspring/decimal"
)

var (
	// 入力が不正
	ErrInvalidInput = errors.New("invalid input")
)

// ParseSortKey は空なら def を返す。relevance は検索のときだけ許可。
func ParseSortKey(raw string, def model.SortKey, allowRelevance bool) (model.SortKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	k := model.SortKey(raw)
	if !k.Valid() || (k == model.SortRelevance && !allowRelevance) {
		return "", fmt.Errorf("%w: invalid sort", ErrInvalidInput)
	}
	return k, nil
}

// ParsePriceRange は UI の価格帯トークンを解釈する。
// "25-50" は両端を含む。"200+" と "200-+" は上限なし。空文字は nil。
func ParsePriceRange(raw string) (*model.PriceRange, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var minStr, maxStr string
	switch {
	case strings.HasSuffix(raw, "-+"):
		minStr, maxStr = strings.TrimSuffix(raw, "-+"), "+"
	case strings.HasSuffix(raw, "+"):
		minStr, maxStr = strings.TrimSuffix(raw, "+"), "+"
	default:
		parts := strings.SplitN(raw, "-", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: invalid price range", ErrInvalidInput)
		}
		minStr, maxStr = parts[0], parts[1]
	}

	lo, err := decimal.NewFromString(strings.TrimSpace(minStr))
	if err != nil || lo.IsNegative() {
		return nil, fmt.Errorf("%w: invalid price range", ErrInvalidInput)
	}
	r := &model.PriceRange{Min: lo}
	if maxStr == "+" {
		return r, nil
	}

	hi, err := decimal.NewFromString(strings.TrimSpace(maxStr))
	if err != nil || hi.LessThan(lo) {
		return nil, fmt.Errorf("%w: invalid price range", ErrInvalidInput)
	}
	r.Max = &hi
	return r, nil
}

// ParseFilterCriteria はクエリパラメータから絞り込み条件を作る。
// categories/brands はカンマ区切りでも繰り返しでも良い。
func ParseFilterCriteria(q url.Values) (model.FilterCriteria, error) {
	var f model.FilterCriteria

	f.Categories = splitList(q["categories"])
	f.Brands = splitList(q["brands"])

	pr, err := ParsePriceRange(q.Get("price"))
	if err != nil {
		return model.FilterCriteria{}, err
	}
	f.PriceRange = pr

	if v := q.Get("in_stock"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return model.FilterCriteria{}, fmt.Errorf("%w: invalid in_stock", ErrInvalidInput)
		}
		f.InStockOnly = b
	}

	if v := q.Get("min_rating"); v != "" {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsNaN(r) || r < 0 || r > 5 {
			return model.FilterCriteria{}, fmt.Errorf("%w: invalid min_rating", ErrInvalidInput)
		}
		f.MinRating = &r
	}

	return f, nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
