package model

// カテゴリ。商品側は Name で参照する。
type Category struct {
	ID           int64  `gorm:"primaryKey;autoIncrement" json:"Id"`
	Name         string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Slug         string `gorm:"type:varchar(100);not null;uniqueIndex" json:"slug"`
	Image        string `gorm:"type:text" json:"image"`
	ProductCount int    `gorm:"not null;default:0" json:"productCount"`
}

// 全商品を表す特別なスラッグ
const CategorySlugAll = "tutti"
