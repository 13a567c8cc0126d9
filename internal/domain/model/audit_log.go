package model

import "time"

// 注文状態の遷移、品切れ切替など。
type AuditAction string

const (
	//テーブルを開けて注文を作成した操作。
	AuditActionOrderOpened AuditAction = "ORDER_OPENED"
	//注文を保存（SAVED）した操作。
	AuditActionOrderSaved AuditAction = "ORDER_SAVED"
	//注文を取消（VOID）した操作。
	AuditActionOrderVoided AuditAction = "ORDER_VOIDED"
	//決済確定（PAID）。
	AuditActionOrderPaid AuditAction = "ORDER_PAID"
	//決済タイムアウト。
	AuditActionPaymentTimedOut AuditAction = "PAYMENT_TIMED_OUT"
	//タイムアウト注文の手動照合。
	AuditActionPaymentResolved AuditAction = "PAYMENT_RESOLVED"
	//メニューの提供可否を切り替えた操作。
	AuditActionSetAvailability AuditAction = "SET_AVAILABILITY"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceOrder    AuditResourceType = "order"
	AuditResourceMenuItem AuditResourceType = "menu_item"
)

// 監査ログ。「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したスタッフのID。
	ActorStaffID int64 `gorm:"not null;index" json:"actor_staff_id"`

	Action       AuditAction       `gorm:"type:varchar(50);not null;index" json:"action"`
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   int64             `gorm:"not null;index" json:"resource_id"`

	//遷移前後（状態文字列など）。
	Before string `gorm:"type:text" json:"before"`
	After  string `gorm:"type:text" json:"after"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
