package model

import "time"

// メニューカテゴリ（前菜 / メイン / ドリンク など）。
type MenuCategory struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	SortOrder int       `gorm:"not null;default:0" json:"sort_order"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// メニュー商品。カタログは実行中は原則不変で、
// 品切れ（86）だけ IsAvailable で切り替える。
// 価格は最小通貨単位（セント）のint64。
type MenuItem struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID     int64     `gorm:"not null;index" json:"category_id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	UnitPriceCents int64     `gorm:"not null" json:"unit_price_cents"`
	Popular        bool      `gorm:"not null;default:false" json:"popular"`
	IsAvailable    bool      `gorm:"not null;default:true" json:"is_available"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
