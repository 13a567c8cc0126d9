package model

import "time"

type TableOccupancy string

const (
	TableAvailable TableOccupancy = "AVAILABLE"
	TableSeated    TableOccupancy = "SEATED"
)

// テーブル。SEATED ⇔ そのテーブルを参照するOPEN注文がちょうど1件、が不変条件。
type Table struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	SeatCount int            `gorm:"not null" json:"seat_count"`
	Occupancy TableOccupancy `gorm:"type:varchar(20);not null;default:'AVAILABLE';index" json:"occupancy"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
