package model

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var priceLocale = language.Italian

// 価格は JSON の number で出す
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// it-IT 形式のユーロ表記（例: 1.234,50 €）
func FormatPrice(d decimal.Decimal) string {
	p := message.NewPrinter(priceLocale)
	return p.Sprintf("%.2f €", d.Round(2).InexactFloat64())
}
