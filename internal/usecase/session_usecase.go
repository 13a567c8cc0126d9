package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
)

type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func NewHTTPError(status int, message string) error {
	return &HTTPError{
		Status:  status,
		Message: message,
	}
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// SessionUsecase は1テーブル＝1注文のライフサイクルを仲介する。
// 変更は全てWithinTx内で注文行をFOR UPDATEで取ってから行うので、
// 読み手が「明細は増えたのに合計が古い」状態を見ることはない。
type SessionUsecase struct {
	tx      repo.TransactionManager
	taxRate decimal.Decimal
}

func NewSessionUsecase(tx repo.TransactionManager, taxRate decimal.Decimal) *SessionUsecase {
	return &SessionUsecase{tx: tx, taxRate: taxRate}
}

type OpenTableInput struct {
	GuestCount int
}

type AddItemInput struct {
	MenuItemID int64
}

type UpdateQuantityInput struct {
	Quantity int64
}

// OrderLineOutput は伝票表示用の明細。金額は2桁小数。
type OrderLineOutput struct {
	ID           int64           `json:"id"`
	MenuItemID   int64           `json:"menu_item_id"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int64           `json:"quantity"`
	LineSubtotal decimal.Decimal `json:"line_subtotal"`
}

type OrderOutput struct {
	ID         int64             `json:"id"`
	TableID    int64             `json:"table_id"`
	Status     string            `json:"status"`
	GuestCount int               `json:"guest_count"`
	Lines      []OrderLineOutput `json:"lines"`
	Subtotal   decimal.Decimal   `json:"subtotal"`
	Tax        decimal.Decimal   `json:"tax"`
	Total      decimal.Decimal   `json:"total"`
	CreatedAt  time.Time         `json:"created_at"`
}

// OpenTable はテーブルを開けてOPEN注文を作る。
// SEATEDのテーブルは既存のOPEN注文をそのまま再開する（明細は保持）。
func (u *SessionUsecase) OpenTable(ctx context.Context, actorStaffID int64, tableID int64, in OpenTableInput) (OrderOutput, error) {
	if tableID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid table id")
	}
	guests := in.GuestCount
	if guests == 0 {
		guests = 1
	}
	if guests < 1 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid guest count")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := r.Tables().FindByIDForUpdate(ctx, tableID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "table not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if t.Occupancy == model.TableSeated {
			//既存のOPEN注文を再開する
			existing, found, err := r.Orders().FindOpenByTableID(ctx, tableID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !found {
				// SEATEDなのにOPEN注文が無い＝別フローが占有中
				return NewHTTPError(http.StatusConflict, "table unavailable")
			}
			out, err = buildOrderOutput(ctx, r, existing)
			return err
		}

		now := time.Now()
		orderID, err := r.Orders().Create(ctx, model.Order{
			TableID:    tableID,
			Status:     model.OrderStatusOpen,
			GuestCount: guests,
			TaxRate:    u.taxRate,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Tables().UpdateOccupancy(ctx, tableID, model.TableSeated); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Audit().Create(ctx, model.AuditLog{
			ActorStaffID: actorStaffID,
			Action:       model.AuditActionOrderOpened,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   orderID,
			After:        string(model.OrderStatusOpen),
			CreatedAt:    now,
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		created := model.Order{
			ID:         orderID,
			TableID:    tableID,
			Status:     model.OrderStatusOpen,
			GuestCount: guests,
			TaxRate:    u.taxRate,
			CreatedAt:  now,
		}
		out, err = buildOrderOutput(ctx, r, created)
		return err
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// AddItem は商品を1つ追加。同一商品の明細があれば数量+1にまとめる。
// 価格と商品名は追加時点のスナップショット。
func (u *SessionUsecase) AddItem(ctx context.Context, orderID int64, in AddItemInput) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	if in.MenuItemID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid menu_item_id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := lockOpenOrder(ctx, r, orderID)
		if err != nil {
			return err
		}

		mi, err := r.MenuItems().FindByID(ctx, in.MenuItemID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "menu item not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		//品切れ中は追加不可
		if !mi.IsAvailable {
			return NewHTTPError(http.StatusNotFound, "menu item not found")
		}

		existing, found, err := r.OrderLines().FindByOrderAndMenuItem(ctx, o.ID, mi.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if found {
			if err := r.OrderLines().UpdateQuantity(ctx, existing.ID, existing.Quantity+1); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		} else {
			_, err := r.OrderLines().Create(ctx, model.OrderLine{
				OrderID:        o.ID,
				MenuItemID:     mi.ID,
				NameSnapshot:   mi.Name,
				UnitPriceCents: mi.UnitPriceCents,
				Quantity:       1,
				CreatedAt:      time.Now(),
			})
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		out, err = recalcAndBuild(ctx, r, o)
		return err
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// UpdateQuantity は数量変更。1未満は削除と同じ扱い。
func (u *SessionUsecase) UpdateQuantity(ctx context.Context, orderID int64, lineID int64, in UpdateQuantityInput) (OrderOutput, error) {
	if orderID <= 0 || lineID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := lockOpenOrder(ctx, r, orderID)
		if err != nil {
			return err
		}

		line, err := findOwnedLine(ctx, r, o.ID, lineID)
		if err != nil {
			return err
		}

		if in.Quantity < 1 {
			//数量0は明細削除
			if err := r.OrderLines().DeleteByID(ctx, line.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		} else {
			if err := r.OrderLines().UpdateQuantity(ctx, line.ID, in.Quantity); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}

		out, err = recalcAndBuild(ctx, r, o)
		return err
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *SessionUsecase) RemoveItem(ctx context.Context, orderID int64, lineID int64) (OrderOutput, error) {
	if orderID <= 0 || lineID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := lockOpenOrder(ctx, r, orderID)
		if err != nil {
			return err
		}

		line, err := findOwnedLine(ctx, r, o.ID, lineID)
		if err != nil {
			return err
		}

		if err := r.OrderLines().DeleteByID(ctx, line.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out, err = recalcAndBuild(ctx, r, o)
		return err
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// SaveOrder は注文をSAVEDで確定してテーブルを解放する。空注文は保存不可。
func (u *SessionUsecase) SaveOrder(ctx context.Context, actorStaffID int64, orderID int64) (OrderOutput, error) {
	return u.closeOrder(ctx, actorStaffID, orderID, model.OrderStatusSaved, model.AuditActionOrderSaved, true)
}

// VoidOrder は注文を取り消してテーブルを解放する。
func (u *SessionUsecase) VoidOrder(ctx context.Context, actorStaffID int64, orderID int64) (OrderOutput, error) {
	return u.closeOrder(ctx, actorStaffID, orderID, model.OrderStatusVoid, model.AuditActionOrderVoided, false)
}

func (u *SessionUsecase) closeOrder(ctx context.Context, actorStaffID int64, orderID int64, to model.OrderStatus, action model.AuditAction, rejectEmpty bool) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := lockOpenOrder(ctx, r, orderID)
		if err != nil {
			return err
		}

		lines, err := r.OrderLines().ListByOrderID(ctx, o.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if rejectEmpty && len(lines) == 0 {
			return NewHTTPError(http.StatusBadRequest, "empty order")
		}

		if err := r.Orders().UpdateStatus(ctx, o.ID, to); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := releaseTable(ctx, r, o.TableID); err != nil {
			return err
		}

		if err := r.Audit().Create(ctx, model.AuditLog{
			ActorStaffID: actorStaffID,
			Action:       action,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   o.ID,
			Before:       string(o.Status),
			After:        string(to),
			CreatedAt:    time.Now(),
		}); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o.Status = to
		out = toOrderOutput(o, lines)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func (u *SessionUsecase) GetOrder(ctx context.Context, orderID int64) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out, err = buildOrderOutput(ctx, r, o)
		return err
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

// フロア画面用：OPEN注文の一覧。
func (u *SessionUsecase) ListOpenOrders(ctx context.Context) ([]OrderOutput, error) {
	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, err := r.Orders().ListByStatus(ctx, model.OrderStatusOpen)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			out, err := buildOrderOutput(ctx, r, o)
			if err != nil {
				return err
			}
			outs = append(outs, out)
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *SessionUsecase) GetTable(ctx context.Context, tableID int64) (model.Table, error) {
	if tableID <= 0 {
		return model.Table{}, NewHTTPError(http.StatusBadRequest, "invalid table id")
	}

	var table model.Table

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		t, err := r.Tables().FindByID(ctx, tableID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "table not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		table = t
		return nil
	})

	if err != nil {
		return model.Table{}, err
	}
	return table, nil
}

func (u *SessionUsecase) ListTables(ctx context.Context) ([]model.Table, error) {
	var tables []model.Table

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		var err error
		tables, err = r.Tables().List(ctx)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})

	if err != nil {
		return []model.Table{}, err
	}
	return tables, nil
}

// ---- package内共通ヘルパ（payment_usecaseも使う） ----

// 注文をFOR UPDATEで取り、OPENであることを確認する。
func lockOpenOrder(ctx context.Context, r repo.TxRepos, orderID int64) (model.Order, error) {
	o, err := r.Orders().FindByIDForUpdate(ctx, orderID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Order{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return model.Order{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if o.Status != model.OrderStatusOpen {
		return model.Order{}, NewHTTPError(http.StatusConflict, "invalid order state")
	}
	return o, nil
}

// 明細が本当にこの注文のものかを確認して返す。他注文の明細は「存在しない扱い」。
func findOwnedLine(ctx context.Context, r repo.TxRepos, orderID int64, lineID int64) (model.OrderLine, error) {
	line, err := r.OrderLines().FindByID(ctx, lineID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.OrderLine{}, NewHTTPError(http.StatusNotFound, "line not found")
	}
	if err != nil {
		return model.OrderLine{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if line.OrderID != orderID {
		return model.OrderLine{}, NewHTTPError(http.StatusNotFound, "line not found")
	}
	return line, nil
}

func releaseTable(ctx context.Context, r repo.TxRepos, tableID int64) error {
	if _, err := r.Tables().FindByIDForUpdate(ctx, tableID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := r.Tables().UpdateOccupancy(ctx, tableID, model.TableAvailable); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 明細から合計を再計算して保存し、最新の伝票を返す。
// 明細の変更と同じトランザクションで必ず呼ぶこと。
func recalcAndBuild(ctx context.Context, r repo.TxRepos, o model.Order) (OrderOutput, error) {
	lines, err := r.OrderLines().ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	subtotal, tax, total := model.CalcTotals(lines, o.TaxRate)
	if err := r.Orders().UpdateTotals(ctx, o.ID, subtotal, tax, total); err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	o.SubtotalCents = subtotal
	o.TaxCents = tax
	o.TotalCents = total
	return toOrderOutput(o, lines), nil
}

func buildOrderOutput(ctx context.Context, r repo.TxRepos, o model.Order) (OrderOutput, error) {
	lines, err := r.OrderLines().ListByOrderID(ctx, o.ID)
	if err != nil {
		return OrderOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return toOrderOutput(o, lines), nil
}

func toOrderOutput(o model.Order, lines []model.OrderLine) OrderOutput {
	outLines := make([]OrderLineOutput, 0, len(lines))
	for _, l := range lines {
		outLines = append(outLines, OrderLineOutput{
			ID:           l.ID,
			MenuItemID:   l.MenuItemID,
			Name:         l.NameSnapshot,
			UnitPrice:    model.Cents(l.UnitPriceCents),
			Quantity:     l.Quantity,
			LineSubtotal: model.Cents(l.SubtotalCents()),
		})
	}

	//出力の合計も常に明細から計算し直す（保存値とズレない）
	subtotal, tax, total := model.CalcTotals(lines, o.TaxRate)

	return OrderOutput{
		ID:         o.ID,
		TableID:    o.TableID,
		Status:     string(o.Status),
		GuestCount: o.GuestCount,
		Lines:      outLines,
		Subtotal:   model.Cents(subtotal),
		Tax:        model.Cents(tax),
		Total:      model.Cents(total),
		CreatedAt:  o.CreatedAt,
	}
}
