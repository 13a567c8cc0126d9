package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// 外部の決済ゲートウェイの約束。Chargeはctxの期限を必ず尊重する。
type PaymentGateway interface {
	Charge(ctx context.Context, req model.PaymentRequest) (model.PaymentResult, error)
}

// 決済の状態（レスポンス用）。
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusDeclined = "declined"
	PaymentStatusTimedOut = "timed_out"
)

// PaymentUsecase は決済ハンドオフを司る。
// charge自体はDBトランザクションの外で行う（ネットワークI/O中に行ロックを
// 持たないため）。PAIDへの遷移はConfirm経由のみ。
// 失敗した請求をここで勝手に再試行はしない（二重課金防止）。
type PaymentUsecase struct {
	tx            repo.TransactionManager
	gateway       PaymentGateway
	chargeTimeout time.Duration
}

func NewPaymentUsecase(tx repo.TransactionManager, gateway PaymentGateway, chargeTimeout time.Duration) *PaymentUsecase {
	return &PaymentUsecase{tx: tx, gateway: gateway, chargeTimeout: chargeTimeout}
}

type PayInput struct {
	Method         string
	IdempotencyKey string
}

type PaymentOutput struct {
	OrderID        int64           `json:"order_id"`
	Amount         decimal.Decimal `json:"amount"`
	Method         string          `json:"method"`
	IdempotencyKey string          `json:"idempotency_key"`
	Status         string          `json:"status"`
	TransactionID  string          `json:"transaction_id,omitempty"`
	FailureReason  string          `json:"failure_reason,omitempty"`
}

type ConfirmPaymentInput struct {
	Success       bool
	TransactionID string
	FailureReason string
}

// Pay は決済を開始する。
// 1) Tx内でOPENかつ明細ありを確認し、合計を凍結したPaymentRequestを作る
// 2) cashは会計確定（Confirm）待ちのpendingで返す
// 3) credit_cardはゲートウェイへcharge → 結果でConfirm
// chargeが期限切れの場合はPAYMENT_TIMED_OUTへ落とし、手動照合に回す。
func (u *PaymentUsecase) Pay(ctx context.Context, actorStaffID int64, orderID int64, in PayInput) (PaymentOutput, error) {
	if orderID <= 0 {
		return PaymentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	method := model.PaymentMethod(in.Method)
	if !method.Supported() {
		//UIに出ている他の決済手段は未配線
		return PaymentOutput{}, NewHTTPError(http.StatusBadRequest, "unsupported payment method")
	}

	var req model.PaymentRequest

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := lockOpenOrder(ctx, r, orderID)
		if err != nil {
			return err
		}

		lines, err := r.OrderLines().ListByOrderID(ctx, o.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(lines) == 0 {
			return NewHTTPError(http.StatusBadRequest, "empty order")
		}

		//合計を凍結（保存値ではなく明細から再計算した値）
		_, _, total := model.CalcTotals(lines, o.TaxRate)

		//二重送信防止キー：再送時に同じキーを使えばゲートウェイ側で弾ける
		key := in.IdempotencyKey
		if key == "" {
			if o.IdempotencyKey != "" {
				key = o.IdempotencyKey
			} else {
				key = uuid.NewString()
			}
		}
		if err := r.Orders().SetIdempotencyKey(ctx, o.ID, key); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		req = model.PaymentRequest{
			OrderID:        o.ID,
			Amount:         model.Cents(total),
			Method:         method,
			IdempotencyKey: key,
		}
		return nil
	})
	if err != nil {
		return PaymentOutput{}, err
	}

	out := PaymentOutput{
		OrderID:        req.OrderID,
		Amount:         req.Amount,
		Method:         string(req.Method),
		IdempotencyKey: req.IdempotencyKey,
		Status:         PaymentStatusPending,
	}

	//現金はドロワー締め（Confirm API）で確定する
	if method == model.PaymentMethodCash {
		return out, nil
	}

	if u.gateway == nil {
		return PaymentOutput{}, NewHTTPError(http.StatusServiceUnavailable, "payment gateway not configured")
	}

	cctx, cancel := context.WithTimeout(ctx, u.chargeTimeout)
	defer cancel()

	res, err := u.gateway.Charge(cctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			//応答不明＝課金済みかもしれないので再試行せず照合待ちへ
			if mErr := u.markTimedOut(context.WithoutCancel(ctx), actorStaffID, orderID); mErr != nil {
				return PaymentOutput{}, mErr
			}
			out.Status = PaymentStatusTimedOut
			return out, nil
		}
		//到達不能はそのまま伝える。注文は直前の整合状態のまま
		return PaymentOutput{}, NewHTTPError(http.StatusBadGateway, "payment gateway unavailable")
	}

	confirmed, err := u.Confirm(ctx, actorStaffID, orderID, ConfirmPaymentInput{
		Success:       res.Success,
		TransactionID: res.TransactionID,
		FailureReason: res.FailureReason,
	})
	if err != nil {
		return PaymentOutput{}, err
	}

	out.Status = confirmed.Status
	out.TransactionID = confirmed.TransactionID
	out.FailureReason = confirmed.FailureReason
	return out, nil
}

// Confirm は決済結果を確定する。PAIDへ遷移する唯一の経路。
// 失敗時は注文をOPENのまま残し、理由を返す（呼び出し側が再決済を選ぶ）。
func (u *PaymentUsecase) Confirm(ctx context.Context, actorStaffID int64, orderID int64, in ConfirmPaymentInput) (PaymentOutput, error) {
	if orderID <= 0 {
		return PaymentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var out PaymentOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := lockOpenOrder(ctx, r, orderID)
		if err != nil {
			return err
		}

		out = PaymentOutput{
			OrderID:       o.ID,
			Amount:        model.Cents(o.TotalCents),
			TransactionID: in.TransactionID,
		}

		if !in.Success {
			//OPENのまま。失敗理由だけ返す
			out.Status = PaymentStatusDeclined
			out.FailureReason = in.FailureReason
			return nil
		}

		if err := r.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusPaid); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := releaseTable(ctx, r, o.TableID); err != nil {
			return err
		}

		if err := r.Audit().Create(ctx, model.AuditLog{
			ActorStaffID: actorStaffID,
			Action:       model.AuditActionOrderPaid,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			Before:       string(o.Status),
			After:        string(model.OrderStatusPaid),
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out.Status = PaymentStatusPaid
		return nil
	})

	if err != nil {
		return PaymentOutput{}, err
	}
	return out, nil
}

type ResolveTimedOutInput struct {
	// trueならゲートウェイ側で課金成立が確認できた（→PAID）。
	// falseなら不成立（→OPENに戻して再決済可能にする）。
	Settled       bool
	TransactionID string
}

// ResolveTimedOut はPAYMENT_TIMED_OUTの注文を手動照合で決着させる。
func (u *PaymentUsecase) ResolveTimedOut(ctx context.Context, actorStaffID int64, orderID int64, in ResolveTimedOutInput) (PaymentOutput, error) {
	if orderID <= 0 {
		return PaymentOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var out PaymentOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.Status != model.OrderStatusPaymentTimedOut {
			return NewHTTPError(http.StatusConflict, "invalid order state")
		}

		out = PaymentOutput{
			OrderID:       o.ID,
			Amount:        model.Cents(o.TotalCents),
			TransactionID: in.TransactionID,
		}

		to := model.OrderStatusOpen
		if in.Settled {
			to = model.OrderStatusPaid
		}

		if err := r.Orders().UpdateStatus(ctx, o.ID, to); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if in.Settled {
			if err := releaseTable(ctx, r, o.TableID); err != nil {
				return err
			}
			out.Status = PaymentStatusPaid
		} else {
			out.Status = PaymentStatusPending
		}

		if err := r.Audit().Create(ctx, model.AuditLog{
			ActorStaffID: actorStaffID,
			Action:       model.AuditActionPaymentResolved,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			Before:       string(model.OrderStatusPaymentTimedOut),
			After:        string(to),
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})

	if err != nil {
		return PaymentOutput{}, err
	}
	return out, nil
}

// charge未応答の注文をPAYMENT_TIMED_OUTへ。テーブルはSEATEDのまま保持する。
func (u *PaymentUsecase) markTimedOut(ctx context.Context, actorStaffID int64, orderID int64) error {
	return u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.Status != model.OrderStatusOpen {
			return nil
		}

		if err := r.Orders().UpdateStatus(ctx, o.ID, model.OrderStatusPaymentTimedOut); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Audit().Create(ctx, model.AuditLog{
			ActorStaffID: actorStaffID,
			Action:       model.AuditActionPaymentTimedOut,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			Before:       string(model.OrderStatusOpen),
			After:        string(model.OrderStatusPaymentTimedOut),
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}
