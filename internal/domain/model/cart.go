package model

import "github.com/shopspring/decimal"

// Cart is an immutable set of line items kept in insertion order.
// Every With*/Without call returns a new Cart and leaves the receiver untouched.
type Cart struct {
	lines []CartLineItem
}

// 明細からカートを作る（入力スライスはコピーする）
func NewCart(lines ...CartLineItem) Cart {
	if len(lines) == 0 {
		return Cart{}
	}
	return Cart{lines: append([]CartLineItem(nil), lines...)}
}

// 明細のコピー
func (c Cart) Lines() []CartLineItem {
	return append([]CartLineItem{}, c.lines...)
}

func (c Cart) Len() int { return len(c.lines) }

func (c Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c Cart) Find(productID int64) (CartLineItem, bool) {
	for _, l := range c.lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return CartLineItem{}, false
}

// 数量の合計
func (c Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// 単価×数量の合計
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// 同一商品は数量+1、無ければ末尾に追加
func (c Cart) WithProduct(p Product) Cart {
	next := make([]CartLineItem, 0, len(c.lines)+1)
	found := false
	for _, l := range c.lines {
		if l.ProductID == p.ID {
			l.Quantity++
			found = true
		}
		next = append(next, l)
	}
	if !found {
		next = append(next, NewCartLineItem(p))
	}
	return Cart{lines: next}
}

// qty < 1 は削除。存在しない商品の場合は何もしない。
func (c Cart) WithQuantity(productID int64, qty int) Cart {
	if qty < 1 {
		return c.Without(productID)
	}
	if _, ok := c.Find(productID); !ok {
		return c
	}
	next := make([]CartLineItem, 0, len(c.lines))
	for _, l := range c.lines {
		if l.ProductID == productID {
			l.Quantity = qty
		}
		next = append(next, l)
	}
	return Cart{lines: next}
}

func (c Cart) Without(productID int64) Cart {
	if _, ok := c.Find(productID); !ok {
		return c
	}
	next := make([]CartLineItem, 0, len(c.lines))
	for _, l := range c.lines {
		if l.ProductID != productID {
			next = append(next, l)
		}
	}
	return Cart{lines: next}
}
