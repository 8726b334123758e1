package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// 保存済みカートが壊れている
var ErrCorruptCart = errors.New("corrupt cart payload")

// 保存形式の1行。price は文字列ではなく JSON の number で書く。
type storedLine struct {
	ProductID int64       `json:"productId"`
	Name      string      `json:"name"`
	Brand     string      `json:"brand"`
	Price     json.Number `json:"price"`
	Image     string      `json:"image"`
	Quantity  int         `json:"quantity"`
}

func toStoredLine(l CartLineItem) storedLine {
	return storedLine{
		ProductID: l.ProductID,
		Name:      l.Name,
		Brand:     l.Brand,
		Price:     json.Number(l.Price.String()),
		Image:     l.Image,
		Quantity:  l.Quantity,
	}
}

func (l CartLineItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(toStoredLine(l))
}

// EncodeCart serializes the cart as an ordered JSON array of line objects.
func EncodeCart(c Cart) ([]byte, error) {
	out := make([]storedLine, 0, len(c.lines))
	for _, l := range c.lines {
		out = append(out, toStoredLine(l))
	}
	return json.Marshal(out)
}

// DecodeCart parses a payload written by EncodeCart.
// Any structural problem is reported as ErrCorruptCart.
func DecodeCart(data []byte) (Cart, error) {
	var in []storedLine
	if err := json.Unmarshal(data, &in); err != nil {
		return Cart{}, fmt.Errorf("%w: %v", ErrCorruptCart, err)
	}

	lines := make([]CartLineItem, 0, len(in))
	seen := make(map[int64]struct{}, len(in))
	for i, s := range in {
		if s.ProductID <= 0 {
			return Cart{}, fmt.Errorf("%w: line %d: invalid productId %d", ErrCorruptCart, i, s.ProductID)
		}
		if _, dup := seen[s.ProductID]; dup {
			return Cart{}, fmt.Errorf("%w: line %d: duplicate productId %d", ErrCorruptCart, i, s.ProductID)
		}
		if s.Quantity < 1 {
			return Cart{}, fmt.Errorf("%w: line %d: invalid quantity %d", ErrCorruptCart, i, s.Quantity)
		}
		price, err := decimal.NewFromString(s.Price.String())
		if err != nil {
			return Cart{}, fmt.Errorf("%w: line %d: invalid price: %v", ErrCorruptCart, i, err)
		}
		if price.IsNegative() {
			return Cart{}, fmt.Errorf("%w: line %d: negative price", ErrCorruptCart, i)
		}
		seen[s.ProductID] = struct{}{}

		lines = append(lines, CartLineItem{
			ProductID: s.ProductID,
			Name:      s.Name,
			Brand:     s.Brand,
			Price:     price,
			Image:     s.Image,
			Quantity:  s.Quantity,
		})
	}
	return NewCart(lines...), nil
}
