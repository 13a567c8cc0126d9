package model

import "github.com/shopspring/decimal"

type PaymentMethod string

const (
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodCash       PaymentMethod = "cash"
)

// 対応済みの決済方法か（UI上に他の決済ボタンはあるが配線済みはこの2つ）。
func (m PaymentMethod) Supported() bool {
	return m == PaymentMethodCreditCard || m == PaymentMethodCash
}

// ゲートウェイへ渡す確定済み請求。Amountは注文totalの凍結値（2桁小数）。
type PaymentRequest struct {
	OrderID        int64           `json:"order_id"`
	Amount         decimal.Decimal `json:"amount"`
	Method         PaymentMethod   `json:"method"`
	IdempotencyKey string          `json:"idempotency_key"`
}

// ゲートウェイの応答。決済失敗はエラーではなくデータとして返る。
type PaymentResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id,omitempty"`
	FailureReason string `json:"failure_reason,omitempty"`
}
