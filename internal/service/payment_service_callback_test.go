package service

import (
	"errors"
	"testing"

	"github.com/hkshop-next/internal/constants"
	"github.com/hkshop-next/internal/models"
	"github.com/hkshop-next/internal/payment/powerpay"
)

func signedCallback(orderNo, code, providerRef string) map[string]string {
	fields := map[string]string{
		"merOrderNo": orderNo,
		"code":       code,
		"amount":     "19900",
	}
	if providerRef != "" {
		fields["plaOrderNo"] = providerRef
	}
	fields[powerpay.SignField] = powerpay.Sign(fields, "test-key")
	return fields
}

func TestHandleGatewayCallbackMarksPaid(t *testing.T) {
	paySvc, _, db := setupPaymentServiceTest(t, "https://gateway.example/pay")
	order := seedPayableOrder(t, db, constants.OrderStatusAwaitingConfirmation)
	payment := &models.Payment{
		OrderID: order.ID,
		OrderNo: order.OrderNo,
		Channel: constants.PaymentChannelWechat,
		Amount:  order.Amount,
		Status:  constants.PaymentStatusInitiated,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("seed payment failed: %v", err)
	}

	result, err := paySvc.HandleGatewayCallback(signedCallback(order.OrderNo, "00", "PLA-2001"))
	if err != nil {
		t.Fatalf("callback failed: %v", err)
	}
	if !result.Applied || result.Outcome != constants.OrderStatusPaid {
		t.Fatalf("callback should apply paid outcome, got %+v", result)
	}

	var stored models.Order
	if err := db.Where("order_no = ?", order.OrderNo).First(&stored).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusPaid || stored.PaidAt == nil {
		t.Fatalf("order should be paid with timestamp, got %+v", stored)
	}
	if stored.ProviderRef != "PLA-2001" {
		t.Fatalf("provider ref should be recorded, got %q", stored.ProviderRef)
	}

	var storedPayment models.Payment
	if err := db.Where("order_no = ?", order.OrderNo).First(&storedPayment).Error; err != nil {
		t.Fatalf("reload payment failed: %v", err)
	}
	if storedPayment.Status != constants.PaymentStatusSuccess || storedPayment.CallbackAt == nil {
		t.Fatalf("payment should be finalized, got %+v", storedPayment)
	}
}

func TestHandleGatewayCallbackReplayIsIdempotent(t *testing.T) {
	paySvc, _, db := setupPaymentServiceTest(t, "https://gateway.example/pay")
	order := seedPayableOrder(t, db, constants.OrderStatusAwaitingConfirmation)

	first, err := paySvc.HandleGatewayCallback(signedCallback(order.OrderNo, "00", "PLA-2002"))
	if err != nil {
		t.Fatalf("first callback failed: %v", err)
	}
	if !first.Applied {
		t.Fatalf("first callback should apply")
	}

	replay, err := paySvc.HandleGatewayCallback(signedCallback(order.OrderNo, "00", "PLA-2002"))
	if err != nil {
		t.Fatalf("replay callback failed: %v", err)
	}
	if replay.Applied {
		t.Fatalf("replay must not apply twice")
	}
	if replay.Outcome != constants.OrderStatusPaid {
		t.Fatalf("replay should report current terminal status, got %s", replay.Outcome)
	}
}

func TestHandleGatewayCallbackFailureCodeMarksFailed(t *testing.T) {
	paySvc, _, db := setupPaymentServiceTest(t, "https://gateway.example/pay")
	order := seedPayableOrder(t, db, constants.OrderStatusAwaitingConfirmation)

	result, err := paySvc.HandleGatewayCallback(signedCallback(order.OrderNo, "05", ""))
	if err != nil {
		t.Fatalf("failure callback failed: %v", err)
	}
	if !result.Applied || result.Outcome != constants.OrderStatusFailed {
		t.Fatalf("failure code should finalize order as failed, got %+v", result)
	}

	var stored models.Order
	if err := db.Where("order_no = ?", order.OrderNo).First(&stored).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusFailed || stored.PaidAt != nil {
		t.Fatalf("failed order must not carry paid_at, got %+v", stored)
	}
}

func TestHandleGatewayCallbackFailureThenSuccessDoesNotResurrect(t *testing.T) {
	paySvc, _, db := setupPaymentServiceTest(t, "https://gateway.example/pay")
	order := seedPayableOrder(t, db, constants.OrderStatusAwaitingConfirmation)

	if _, err := paySvc.HandleGatewayCallback(signedCallback(order.OrderNo, "05", "")); err != nil {
		t.Fatalf("failure callback failed: %v", err)
	}
	late, err := paySvc.HandleGatewayCallback(signedCallback(order.OrderNo, "00", "PLA-2003"))
	if err != nil {
		t.Fatalf("late success callback failed: %v", err)
	}
	if late.Applied {
		t.Fatalf("terminal order must not transition again")
	}

	var stored models.Order
	if err := db.Where("order_no = ?", order.OrderNo).First(&stored).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusFailed {
		t.Fatalf("failed order must stay failed, got %s", stored.Status)
	}
}

func TestHandleGatewayCallbackRejectsBadSignature(t *testing.T) {
	paySvc, _, db := setupPaymentServiceTest(t, "https://gateway.example/pay")
	order := seedPayableOrder(t, db, constants.OrderStatusAwaitingConfirmation)

	fields := signedCallback(order.OrderNo, "00", "")
	fields["amount"] = "1"
	if _, err := paySvc.HandleGatewayCallback(fields); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("tampered callback should be rejected, got %v", err)
	}

	var stored models.Order
	if err := db.Where("order_no = ?", order.OrderNo).First(&stored).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusAwaitingConfirmation {
		t.Fatalf("rejected callback must not touch order, got %s", stored.Status)
	}
}

func TestHandleGatewayCallbackUnknownOrder(t *testing.T) {
	paySvc, _, _ := setupPaymentServiceTest(t, "https://gateway.example/pay")
	if _, err := paySvc.HandleGatewayCallback(signedCallback("ORD1700000008888", "00", "")); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("unknown order should fail, got %v", err)
	}
}

func TestHandleGatewayCallbackBeforeStatusBump(t *testing.T) {
	paySvc, _, db := setupPaymentServiceTest(t, "https://gateway.example/pay")
	order := seedPayableOrder(t, db, constants.OrderStatusCreated)

	result, err := paySvc.HandleGatewayCallback(signedCallback(order.OrderNo, "00", "PLA-2004"))
	if err != nil {
		t.Fatalf("early callback failed: %v", err)
	}
	if !result.Applied || result.Outcome != constants.OrderStatusPaid {
		t.Fatalf("callback racing the status bump should still settle, got %+v", result)
	}
}
