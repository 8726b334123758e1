package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// 商品（カタログ側が所有。このレイヤーからは読み取り専用）
type Product struct {
	ID          int64             `gorm:"primaryKey;autoIncrement" json:"Id"`
	Name        string            `gorm:"type:varchar(255);not null" json:"name"`
	Brand       string            `gorm:"type:varchar(100);not null;index" json:"brand"`
	Category    string            `gorm:"type:varchar(100);not null;index" json:"category"`
	Price       decimal.Decimal   `gorm:"type:numeric(12,2);not null" json:"price"`
	Rating      float64           `gorm:"not null;default:0" json:"rating"`
	InStock     bool              `gorm:"not null;default:false" json:"inStock"`
	Images      []string          `gorm:"serializer:json" json:"images"`
	Description string            `gorm:"type:text" json:"description"`
	Specs       map[string]string `gorm:"serializer:json" json:"specifications,omitempty"`
	CreatedAt   time.Time         `gorm:"not null;autoCreateTime" json:"-"`
	UpdatedAt   time.Time         `gorm:"not null;autoUpdateTime" json:"-"`
}

// 先頭の画像（無ければ空文字）
func (p Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// スライスやmapを共有しないコピーを返す。
func (p Product) Clone() Product {
	c := p
	if p.Images != nil {
		c.Images = append([]string(nil), p.Images...)
	}
	if p.Specs != nil {
		c.Specs = make(map[string]string, len(p.Specs))
		for k, v := range p.Specs {
			c.Specs[k] = v
		}
	}
	return c
}
