package usecase_test

import (
	"app/internal/domain/model"
	"app/internal/usecase"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Gateway mock
// =====================

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) Charge(ctx context.Context, req model.PaymentRequest) (model.PaymentResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(model.PaymentResult)
	return res, args.Error(1)
}

const testChargeTimeout = time.Second

// 伝票合計 $37.85 になる明細（999×2 + 1499、税率8.25%）
func receiptLines(orderID int64) []model.OrderLine {
	return []model.OrderLine{
		{ID: 1, OrderID: orderID, MenuItemID: 5, NameSnapshot: "Calamari", UnitPriceCents: 999, Quantity: 2},
		{ID: 2, OrderID: orderID, MenuItemID: 8, NameSnapshot: "Grilled Salmon", UnitPriceCents: 1499, Quantity: 1},
	}
}

// =====================
// Pay tests
// =====================

func TestPaymentUsecase_Pay_UnsupportedMethod(t *testing.T) {
	tx, _, _, _, _, _ := newSessionMocks()
	uc := usecase.NewPaymentUsecase(tx, new(GatewayMock), testChargeTimeout)

	_, err := uc.Pay(context.Background(), 1, 10, usecase.PayInput{Method: "gift_card"})
	assertErrContains(t, err, "unsupported payment method")
}

func TestPaymentUsecase_Pay_EmptyOrder(t *testing.T) {
	ctx := context.Background()
	tx, _, orders, lines, _, _ := newSessionMocks()
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(10)
	orders.On("FindByIDForUpdate", mock.Anything, orderID).
		Return(model.Order{ID: orderID, Status: model.OrderStatusOpen, TaxRate: testTaxRate}, nil)
	lines.On("ListByOrderID", mock.Anything, orderID).Return([]model.OrderLine{}, nil)

	uc := usecase.NewPaymentUsecase(tx, new(GatewayMock), testChargeTimeout)

	_, err := uc.Pay(ctx, 1, orderID, usecase.PayInput{Method: "credit_card"})
	assertErrContains(t, err, "empty order")
}

func TestPaymentUsecase_Pay_CashReturnsPending(t *testing.T) {
	ctx := context.Background()
	tx, _, orders, lines, _, _ := newSessionMocks()
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(10)
	orders.On("FindByIDForUpdate", mock.Anything, orderID).
		Return(model.Order{ID: orderID, TableID: 3, Status: model.OrderStatusOpen, TaxRate: testTaxRate}, nil)
	lines.On("ListByOrderID", mock.Anything, orderID).Return(receiptLines(orderID), nil)
	orders.On("SetIdempotencyKey", mock.Anything, orderID, mock.MatchedBy(func(k string) bool {
		return k != ""
	})).Return(nil)

	// 現金はゲートウェイ未設定でも通る（Confirmで確定する）
	uc := usecase.NewPaymentUsecase(tx, nil, testChargeTimeout)

	out, err := uc.Pay(ctx, 1, orderID, usecase.PayInput{Method: "cash"})
	assert.NoError(t, err)
	assert.Equal(t, usecase.PaymentStatusPending, out.Status)
	assert.NotEmpty(t, out.IdempotencyKey)
	assertDecimalEqual(t, "37.85", out.Amount)

	orders.AssertExpectations(t)
}

func TestPaymentUsecase_Pay_ReusesStoredIdempotencyKey(t *testing.T) {
	ctx := context.Background()
	tx, _, orders, lines, _, _ := newSessionMocks()
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(10)
	// 再送時はorderに保存済みのキーを使う
	orders.On("FindByIDForUpdate", mock.Anything, orderID).
		Return(model.Order{ID: orderID, Status: model.OrderStatusOpen, TaxRate: testTaxRate, IdempotencyKey: "key-old"}, nil)
	lines.On("ListByOrderID", mock.Anything, orderID).Return(receiptLines(orderID), nil)
	orders.On("SetIdempotencyKey", mock.Anything, orderID, "key-old").Return(nil)

	uc := usecase.NewPaymentUsecase(tx, nil, testChargeTimeout)

	out, err := uc.Pay(ctx, 1, orderID, usecase.PayInput{Method: "cash"})
	assert.NoError(t, err)
	assert.Equal(t, "key-old", out.IdempotencyKey)

	orders.AssertExpectations(t)
}

func TestPaymentUsecase_Pay_CardSuccess(t *testing.T) {
	ctx := context.Background()
	tx, tables, orders, lines, _, audit := newSessionMocks()
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(10)
	tableID := int64(3)
	order := model.Order{ID: orderID, TableID: tableID, Status: model.OrderStatusOpen, TaxRate: testTaxRate, TotalCents: 3785}

	orders.On("FindByIDForUpdate", mock.Anything, orderID).Return(order, nil)
	lines.On("ListByOrderID", mock.Anything, orderID).Return(receiptLines(orderID), nil)
	orders.On("SetIdempotencyKey", mock.Anything, orderID, "key-1").Return(nil)

	gw := new(GatewayMock)
	gw.On("Charge", mock.Anything, mock.MatchedBy(func(req model.PaymentRequest) bool {
		return req.OrderID == orderID &&
			req.Method == model.PaymentMethodCreditCard &&
			req.IdempotencyKey == "key-1" &&
			req.Amount.Equal(model.Cents(3785))
	})).Return(model.PaymentResult{Success: true, TransactionID: "ch_123"}, nil)

	// Confirm側：PAID確定とテーブル解放
	orders.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusPaid).Return(nil)
	tables.On("FindByIDForUpdate", mock.Anything, tableID).
		Return(model.Table{ID: tableID, Occupancy: model.TableSeated}, nil)
	tables.On("UpdateOccupancy", mock.Anything, tableID, model.TableAvailable).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionOrderPaid && l.After == string(model.OrderStatusPaid)
	})).Return(nil)

	uc := usecase.NewPaymentUsecase(tx, gw, testChargeTimeout)

	out, err := uc.Pay(ctx, 1, orderID, usecase.PayInput{Method: "credit_card", IdempotencyKey: "key-1"})
	assert.NoError(t, err)
	assert.Equal(t, usecase.PaymentStatusPaid, out.Status)
	assert.Equal(t, "ch_123", out.TransactionID)

	gw.AssertExpectations(t)
	orders.AssertExpectations(t)
	tables.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestPaymentUsecase_Pay_CardDeclinedStaysOpen(t *testing.T) {
	ctx := context.Background()
	tx, _, orders, lines, _, _ := newSessionMocks()
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(10)
	order := model.Order{ID: orderID, TableID: 3, Status: model.OrderStatusOpen, TaxRate: testTaxRate, TotalCents: 3785}

	orders.On("FindByIDForUpdate", mock.Anything, orderID).Return(order, nil)
	lines.On("ListByOrderID", mock.Anything, orderID).Return(receiptLines(orderID), nil)
	orders.On("SetIdempotencyKey", mock.Anything, orderID, mock.Anything).Return(nil)

	gw := new(GatewayMock)
	gw.On("Charge", mock.Anything, mock.Anything).
		Return(model.PaymentResult{Success: false, FailureReason: "insufficient funds"}, nil)

	uc := usecase.NewPaymentUsecase(tx, gw, testChargeTimeout)

	// 却下はエラーではない。注文はOPENのまま（UpdateStatusに期待値なし）
	out, err := uc.Pay(ctx, 1, orderID, usecase.PayInput{Method: "credit_card"})
	assert.NoError(t, err)
	assert.Equal(t, usecase.PaymentStatusDeclined, out.Status)
	assert.Equal(t, "insufficient funds", out.FailureReason)

	gw.AssertExpectations(t)
}

func TestPaymentUsecase_Pay_ChargeTimeoutMarksOrder(t *testing.T) {
	ctx := context.Background()
	tx, _, orders, lines, _, audit := newSessionMocks()
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(10)
	order := model.Order{ID: orderID, TableID: 3, Status: model.OrderStatusOpen, TaxRate: testTaxRate}

	orders.On("FindByIDForUpdate", mock.Anything, orderID).Return(order, nil)
	lines.On("ListByOrderID", mock.Anything, orderID).Return(receiptLines(orderID), nil)
	orders.On("SetIdempotencyKey", mock.Anything, orderID, mock.Anything).Return(nil)

	gw := new(GatewayMock)
	gw.On("Charge", mock.Anything, mock.Anything).
		Return(model.PaymentResult{}, context.DeadlineExceeded)

	// 応答不明は照合待ちへ。テーブルはSEATEDのまま（UpdateOccupancyに期待値なし）
	orders.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusPaymentTimedOut).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionPaymentTimedOut &&
			l.After == string(model.OrderStatusPaymentTimedOut)
	})).Return(nil)

	uc := usecase.NewPaymentUsecase(tx, gw, testChargeTimeout)

	out, err := uc.Pay(ctx, 1, orderID, usecase.PayInput{Method: "credit_card"})
	assert.NoError(t, err)
	assert.Equal(t, usecase.PaymentStatusTimedOut, out.Status)

	orders.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestPaymentUsecase_Pay_GatewayUnreachable(t *testing.T) {
	ctx := context.Background()
	tx, _, orders, lines, _, _ := newSessionMocks()
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(10)
	order := model.Order{ID: orderID, TableID: 3, Status: model.OrderStatusOpen, TaxRate: testTaxRate}

	orders.On("FindByIDForUpdate", mock.Anything, orderID).Return(order, nil)
	lines.On("ListByOrderID", mock.Anything, orderID).Return(receiptLines(orderID), nil)
	orders.On("SetIdempotencyKey", mock.Anything, orderID, mock.Anything).Return(nil)

	gw := new(GatewayMock)
	gw.On("Charge", mock.Anything, mock.Anything).
		Return(model.PaymentResult{}, errors.New("connection refused"))

	uc := usecase.NewPaymentUsecase(tx, gw, testChargeTimeout)

	_, err := uc.Pay(ctx, 1, orderID, usecase.PayInput{Method: "credit_card"})
	assertErrContains(t, err, "payment gateway unavailable")
}

func TestPaymentUsecase_Pay_CardWithoutGateway(t *testing.T) {
	ctx := context.Background()
	tx, _, orders, lines, _, _ := newSessionMocks()
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(10)
	orders.On("FindByIDForUpdate", mock.Anything, orderID).
		Return(model.Order{ID: orderID, Status: model.OrderStatusOpen, TaxRate: testTaxRate}, nil)
	lines.On("ListByOrderID", mock.Anything, orderID).Return(receiptLines(orderID), nil)
	orders.On("SetIdempotencyKey", mock.Anything, orderID, mock.Anything).Return(nil)

	uc := usecase.NewPaymentUsecase(tx, nil, testChargeTimeout)

	_, err := uc.Pay(ctx, 1, orderID, usecase.PayInput{Method: "credit_card"})
	assertErrContains(t, err, "payment gateway not configured")
}

// =====================
// Confirm tests
// =====================

func TestPaymentUsecase_Confirm_SuccessPaysAndReleasesTable(t *testing.T) {
	ctx := context.Background()
	tx, tables, orders, _, _, audit := newSessionMocks()
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(10)
	tableID := int64(3)
	order := model.Order{ID: orderID, TableID: tableID, Status: model.OrderStatusOpen, TaxRate: testTaxRate, TotalCents: 3785}

	orders.On("FindByIDForUpdate", mock.Anything, orderID).Return(order, nil)
	orders.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusPaid).Return(nil)
	tables.On("FindByIDForUpdate", mock.Anything, tableID).
		Return(model.Table{ID: tableID, Occupancy: model.TableSeated}, nil)
	tables.On("UpdateOccupancy", mock.Anything, tableID, model.TableAvailable).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionOrderPaid
	})).Return(nil)

	uc := usecase.NewPaymentUsecase(tx, nil, testChargeTimeout)

	out, err := uc.Confirm(ctx, 1, orderID, usecase.ConfirmPaymentInput{Success: true, TransactionID: "cash-close-1"})
	assert.NoError(t, err)
	assert.Equal(t, usecase.PaymentStatusPaid, out.Status)
	assertDecimalEqual(t, "37.85", out.Amount)

	orders.AssertExpectations(t)
	tables.AssertExpectations(t)
}

func TestPaymentUsecase_Confirm_FailureKeepsOrderOpen(t *testing.T) {
	ctx := context.Background()
	tx, _, orders, _, _, _ := newSessionMocks()
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(10)
	orders.On("FindByIDForUpdate", mock.Anything, orderID).
		Return(model.Order{ID: orderID, Status: model.OrderStatusOpen, TaxRate: testTaxRate, TotalCents: 3785}, nil)

	uc := usecase.NewPaymentUsecase(tx, nil, testChargeTimeout)

	out, err := uc.Confirm(ctx, 1, orderID, usecase.ConfirmPaymentInput{Success: false, FailureReason: "card expired"})
	assert.NoError(t, err)
	assert.Equal(t, usecase.PaymentStatusDeclined, out.Status)
	assert.Equal(t, "card expired", out.FailureReason)
}

func TestPaymentUsecase_Confirm_ClosedOrder(t *testing.T) {
	ctx := context.Background()
	tx, _, orders, _, _, _ := newSessionMocks()
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(10)
	orders.On("FindByIDForUpdate", mock.Anything, orderID).
		Return(model.Order{ID: orderID, Status: model.OrderStatusPaid, TaxRate: testTaxRate}, nil)

	uc := usecase.NewPaymentUsecase(tx, nil, testChargeTimeout)

	_, err := uc.Confirm(ctx, 1, orderID, usecase.ConfirmPaymentInput{Success: true})
	assertErrContains(t, err, "invalid order state")
}

// =====================
// ResolveTimedOut tests
// =====================

func TestPaymentUsecase_ResolveTimedOut_Settled(t *testing.T) {
	ctx := context.Background()
	tx, tables, orders, _, _, audit := newSessionMocks()
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(10)
	tableID := int64(3)
	order := model.Order{ID: orderID, TableID: tableID, Status: model.OrderStatusPaymentTimedOut, TaxRate: testTaxRate, TotalCents: 3785}

	orders.On("FindByIDForUpdate", mock.Anything, orderID).Return(order, nil)
	orders.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusPaid).Return(nil)
	tables.On("FindByIDForUpdate", mock.Anything, tableID).
		Return(model.Table{ID: tableID, Occupancy: model.TableSeated}, nil)
	tables.On("UpdateOccupancy", mock.Anything, tableID, model.TableAvailable).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionPaymentResolved &&
			l.Before == string(model.OrderStatusPaymentTimedOut) &&
			l.After == string(model.OrderStatusPaid)
	})).Return(nil)

	uc := usecase.NewPaymentUsecase(tx, nil, testChargeTimeout)

	out, err := uc.ResolveTimedOut(ctx, 1, orderID, usecase.ResolveTimedOutInput{Settled: true, TransactionID: "ch_777"})
	assert.NoError(t, err)
	assert.Equal(t, usecase.PaymentStatusPaid, out.Status)
	assert.Equal(t, "ch_777", out.TransactionID)

	orders.AssertExpectations(t)
	tables.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestPaymentUsecase_ResolveTimedOut_NotSettledReopens(t *testing.T) {
	ctx := context.Background()
	tx, _, orders, _, _, audit := newSessionMocks()
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(10)
	order := model.Order{ID: orderID, TableID: 3, Status: model.OrderStatusPaymentTimedOut, TaxRate: testTaxRate}

	orders.On("FindByIDForUpdate", mock.Anything, orderID).Return(order, nil)
	// OPENに戻して再決済可能にする。テーブルは触らない
	orders.On("UpdateStatus", mock.Anything, orderID, model.OrderStatusOpen).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionPaymentResolved && l.After == string(model.OrderStatusOpen)
	})).Return(nil)

	uc := usecase.NewPaymentUsecase(tx, nil, testChargeTimeout)

	out, err := uc.ResolveTimedOut(ctx, 1, orderID, usecase.ResolveTimedOutInput{Settled: false})
	assert.NoError(t, err)
	assert.Equal(t, usecase.PaymentStatusPending, out.Status)

	orders.AssertExpectations(t)
}

func TestPaymentUsecase_ResolveTimedOut_WrongState(t *testing.T) {
	ctx := context.Background()
	tx, _, orders, _, _, _ := newSessionMocks()
	tx.On("WithinTx", mock.Anything).Return(nil)

	orderID := int64(10)
	orders.On("FindByIDForUpdate", mock.Anything, orderID).
		Return(model.Order{ID: orderID, Status: model.OrderStatusOpen, TaxRate: testTaxRate}, nil)

	uc := usecase.NewPaymentUsecase(tx, nil, testChargeTimeout)

	_, err := uc.ResolveTimedOut(ctx, 1, orderID, usecase.ResolveTimedOutInput{Settled: true})
	assertErrContains(t, err, "invalid order state")
}
