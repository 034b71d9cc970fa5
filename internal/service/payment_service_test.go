package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hkshop-next/internal/config"
	"github.com/hkshop-next/internal/constants"
	"github.com/hkshop-next/internal/models"
	"github.com/hkshop-next/internal/payment/powerpay"
	"github.com/hkshop-next/internal/queue"
	"github.com/hkshop-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func testPowerPayConfig(gatewayURL string) config.PowerPayConfig {
	return config.PowerPayConfig{
		GatewayURL:       gatewayURL,
		MD5Key:           "test-key",
		CompanyNo:        "C100",
		CustomerNoOnline: "M200",
		CustomerNoCard:   "M300",
		NotifyURL:        "https://shop.example/api/payment/callback",
		FrontURL:         "https://shop.example/return",
		TimeoutMS:        2000,
	}
}

func setupPaymentServiceTest(t *testing.T, gatewayURL string) (*PaymentService, *OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:payment_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Payment{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := &config.Config{PowerPay: testPowerPayConfig(gatewayURL)}
	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("create queue client failed: %v", err)
	}

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	paySvc := NewPaymentService(cfg, orderRepo, paymentRepo, queueClient)
	orderSvc := NewOrderService(orderRepo, productRepo)
	return paySvc, orderSvc, db
}

func seedPayableOrder(t *testing.T, db *gorm.DB, status string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNo: fmt.Sprintf("ORD%d%04d", time.Now().UnixMilli(), time.Now().Nanosecond()%10000),
		Status:  status,
		Amount:  19900,
		Subject: "Lightweight Wheelchair",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	return order
}

func TestCreatePaymentTransitionsOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":       "00",
			"qrCode":     "weixin://wxpay/bizpayurl?pr=abc",
			"plaOrderNo": "PLA-1001",
		})
	}))
	defer server.Close()

	paySvc, _, db := setupPaymentServiceTest(t, server.URL)
	order := seedPayableOrder(t, db, constants.OrderStatusCreated)

	result, err := paySvc.CreatePayment(context.Background(), CreatePaymentInput{
		OrderNo:  order.OrderNo,
		Channel:  constants.PaymentChannelWechat,
		ClientIP: "203.0.113.9",
	})
	if err != nil {
		t.Fatalf("create payment failed: %v", err)
	}
	if result.Interaction != constants.PaymentInteractionQR || result.QRCode == "" {
		t.Fatalf("wechat payment should yield qr payload, got %+v", result)
	}

	var stored models.Order
	if err := db.Where("order_no = ?", order.OrderNo).First(&stored).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusAwaitingConfirmation {
		t.Fatalf("order should await confirmation after initiating payment, got %s", stored.Status)
	}
	if stored.ProviderRef != "PLA-1001" || stored.Channel != constants.PaymentChannelWechat {
		t.Fatalf("gateway reference should be recorded, got %+v", stored)
	}

	var payment models.Payment
	if err := db.Where("order_no = ?", order.OrderNo).First(&payment).Error; err != nil {
		t.Fatalf("payment record should exist: %v", err)
	}
	if payment.Status != constants.PaymentStatusInitiated || payment.Amount != 19900 {
		t.Fatalf("payment record mismatch: %+v", payment)
	}
}

func TestCreatePaymentRetryKeepsAwaitingStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":    "00",
			"payInfo": `{"aliPayUrl":"https://openapi.alipay.example/gateway"}`,
		})
	}))
	defer server.Close()

	paySvc, _, db := setupPaymentServiceTest(t, server.URL)
	order := seedPayableOrder(t, db, constants.OrderStatusAwaitingConfirmation)

	result, err := paySvc.CreatePayment(context.Background(), CreatePaymentInput{
		OrderNo: order.OrderNo,
		Channel: constants.PaymentChannelAlipay,
	})
	if err != nil {
		t.Fatalf("retry create payment failed: %v", err)
	}
	if result.PayURL == "" {
		t.Fatalf("alipay payment should yield redirect url")
	}

	var stored models.Order
	if err := db.Where("order_no = ?", order.OrderNo).First(&stored).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusAwaitingConfirmation {
		t.Fatalf("retry should not change status, got %s", stored.Status)
	}
}

func TestCreatePaymentRejectsFinalizedOrder(t *testing.T) {
	paySvc, _, db := setupPaymentServiceTest(t, "https://gateway.example/pay")
	order := seedPayableOrder(t, db, constants.OrderStatusPaid)

	_, err := paySvc.CreatePayment(context.Background(), CreatePaymentInput{
		OrderNo: order.OrderNo,
		Channel: constants.PaymentChannelWechat,
	})
	if !errors.Is(err, ErrOrderNotPayable) {
		t.Fatalf("paid order should not be payable, got %v", err)
	}
}

func TestCreatePaymentUnknownOrder(t *testing.T) {
	paySvc, _, _ := setupPaymentServiceTest(t, "https://gateway.example/pay")
	_, err := paySvc.CreatePayment(context.Background(), CreatePaymentInput{
		OrderNo: "ORD1700000009999",
		Channel: constants.PaymentChannelWechat,
	})
	if !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("unknown order should fail, got %v", err)
	}
}

func TestCreatePaymentDeclineLeavesOrderUntouched(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"code": "96", "msg": "system error"})
	}))
	defer server.Close()

	paySvc, _, db := setupPaymentServiceTest(t, server.URL)
	order := seedPayableOrder(t, db, constants.OrderStatusCreated)

	_, err := paySvc.CreatePayment(context.Background(), CreatePaymentInput{
		OrderNo: order.OrderNo,
		Channel: constants.PaymentChannelWechat,
	})
	var decline *powerpay.DeclineError
	if !errors.As(err, &decline) {
		t.Fatalf("gateway decline should surface, got %v", err)
	}

	var stored models.Order
	if err := db.Where("order_no = ?", order.OrderNo).First(&stored).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if stored.Status != constants.OrderStatusCreated {
		t.Fatalf("declined initiation must not advance order, got %s", stored.Status)
	}

	var count int64
	if err := db.Model(&models.Payment{}).Where("order_no = ?", order.OrderNo).Count(&count).Error; err != nil {
		t.Fatalf("count payments failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("declined initiation should not persist payment, got %d rows", count)
	}
}
