package model

import "time"

// 注文明細。
// 追加時点の商品名と価格を必ずスナップショットで保存。
// カタログの後からの価格変更は既存明細に波及しない。
type OrderLine struct {
	ID             int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID        int64     `gorm:"not null;index" json:"order_id"`
	MenuItemID     int64     `gorm:"not null;index" json:"menu_item_id"`
	NameSnapshot   string    `gorm:"type:varchar(255);not null" json:"name_snapshot"`
	UnitPriceCents int64     `gorm:"not null" json:"unit_price_cents"`
	Quantity       int64     `gorm:"not null" json:"quantity"`
	CreatedAt      time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

// 明細小計。quantityは1未満で保存されない前提。
func (l OrderLine) SubtotalCents() int64 {
	return l.UnitPriceCents * l.Quantity
}
