package model

import "github.com/shopspring/decimal"

// カートの明細
// name/brand/image/price は追加時点のスナップショット。カタログ側の価格変更には追従しない。
type CartLineItem struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Brand     string          `json:"brand"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

// 商品から数量1の明細を作る
func NewCartLineItem(p Product) CartLineItem {
	return CartLineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		Price:     p.Price,
		Image:     p.FirstImage(),
		Quantity:  1,
	}
}

// 単価×数量
func (l CartLineItem) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
