package gateway_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/gateway"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func chargeReq() model.PaymentRequest {
	return model.PaymentRequest{
		OrderID:        10,
		Amount:         decimal.New(3785, -2),
		Method:         model.PaymentMethodCreditCard,
		IdempotencyKey: "key-1",
	}
}

func TestClient_Charge_Approved(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/charges", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "key-1", r.Header.Get("Idempotency-Key"))

		var body map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		// 金額は2桁小数の文字列で送る
		assert.Equal(t, "37.85", body["amount"])
		assert.Equal(t, "USD", body["currency"])
		assert.Equal(t, "credit_card", body["method"])
		assert.Equal(t, "order-10", body["order_ref"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"approved":       true,
			"transaction_id": "ch_123",
		})
	}))
	defer srv.Close()

	c := gateway.New(srv.URL, "test-token")

	res, err := c.Charge(context.Background(), chargeReq())
	assert.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "ch_123", res.TransactionID)
}

func TestClient_Charge_Declined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"approved":      false,
			"error_message": "insufficient funds",
		})
	}))
	defer srv.Close()

	c := gateway.New(srv.URL, "test-token")

	// 却下はエラーではなく結果として返る
	res, err := c.Charge(context.Background(), chargeReq())
	assert.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "insufficient funds", res.FailureReason)
}

func TestClient_Charge_DeclinedWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"approved": false})
	}))
	defer srv.Close()

	c := gateway.New(srv.URL, "test-token")

	res, err := c.Charge(context.Background(), chargeReq())
	assert.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "declined", res.FailureReason)
}

func TestClient_Charge_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := gateway.New(srv.URL, "test-token")

	// 5xxは応答として信用しない
	_, err := c.Charge(context.Background(), chargeReq())
	assert.Error(t, err)
}

func TestClient_Charge_ContextDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(map[string]interface{}{"approved": true})
	}))
	defer srv.Close()

	c := gateway.New(srv.URL, "test-token")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Charge(ctx, chargeReq())
	assert.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
