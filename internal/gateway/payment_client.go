package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"app/internal/domain/model"
)

// Client は外部決済ゲートウェイ（Helcim系）のHTTPクライアント。
// 結果を捏造しない：到達できなければエラー、却下は却下として返す。
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		//期限はChargeのctxで制御するのでClient側のTimeoutは持たない
		http: &http.Client{},
	}
}

type chargeRequest struct {
	Amount         string `json:"amount"`
	Currency       string `json:"currency"`
	Method         string `json:"method"`
	IdempotencyKey string `json:"idempotency_key"`
	OrderRef       string `json:"order_ref"`
}

type chargeResponse struct {
	Approved      bool   `json:"approved"`
	TransactionID string `json:"transaction_id"`
	ErrorMessage  string `json:"error_message"`
}

// Charge は請求を1回だけ送る。再試行はしない（呼び出し側の判断）。
func (c *Client) Charge(ctx context.Context, req model.PaymentRequest) (model.PaymentResult, error) {
	body, err := json.Marshal(chargeRequest{
		Amount:         req.Amount.StringFixed(2),
		Currency:       "USD",
		Method:         string(req.Method),
		IdempotencyKey: req.IdempotencyKey,
		OrderRef:       fmt.Sprintf("order-%d", req.OrderID),
	})
	if err != nil {
		return model.PaymentResult{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/charges", bytes.NewReader(body))
	if err != nil {
		return model.PaymentResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return model.PaymentResult{}, err
	}
	defer resp.Body.Close()

	//5xxは応答として信用しない
	if resp.StatusCode >= http.StatusInternalServerError {
		return model.PaymentResult{}, fmt.Errorf("gateway error: status %d", resp.StatusCode)
	}

	var cr chargeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return model.PaymentResult{}, fmt.Errorf("gateway error: %w", err)
	}

	if !cr.Approved {
		reason := cr.ErrorMessage
		if reason == "" {
			reason = "declined"
		}
		return model.PaymentResult{Success: false, FailureReason: reason}, nil
	}

	return model.PaymentResult{Success: true, TransactionID: cr.TransactionID}, nil
}
