package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusOpen  OrderStatus = "OPEN"
	OrderStatusSaved OrderStatus = "SAVED"
	OrderStatusPaid  OrderStatus = "PAID"
	OrderStatusVoid  OrderStatus = "VOID"
	// 決済のゲートウェイ応答が期限内に返らなかった状態。
	// 手動照合（resolve）でのみ PAID か OPEN に戻せる。
	OrderStatusPaymentTimedOut OrderStatus = "PAYMENT_TIMED_OUT"
)

// statusがこれ以上変更を受け付けないかどうか。
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusSaved || s == OrderStatusPaid || s == OrderStatusVoid
}

// 1テーブルの注文。金額（subtotal/tax/total）は常に明細から再計算した値を
// 同一トランザクション内で保存する。単体で書き換えない。
type Order struct {
	ID             int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	TableID        int64           `gorm:"not null;index" json:"table_id"`
	Status         OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	GuestCount     int             `gorm:"not null;default:1" json:"guest_count"`
	SubtotalCents  int64           `gorm:"not null;default:0" json:"subtotal_cents"`
	TaxCents       int64           `gorm:"not null;default:0" json:"tax_cents"`
	TotalCents     int64           `gorm:"not null;default:0" json:"total_cents"`
	TaxRate        decimal.Decimal `gorm:"type:decimal(6,4);not null" json:"tax_rate"`
	IdempotencyKey string          `gorm:"type:varchar(255)" json:"-"`
	CreatedAt      time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
