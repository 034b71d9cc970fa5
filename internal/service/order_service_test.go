package service

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/hkshop-next/internal/models"
	"github.com/hkshop-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_svc_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	svc := NewOrderService(repository.NewOrderRepository(db), repository.NewProductRepository(db))
	return svc, db
}

func TestMergeCreateOrderItems(t *testing.T) {
	items := []CreateOrderItem{
		{ProductID: 1, Quantity: 1},
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	}
	merged, err := mergeCreateOrderItems(items)
	if err != nil {
		t.Fatalf("mergeCreateOrderItems error: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("expected 2 items, got %d", len(merged))
	}
	if merged[0].ProductID != 1 || merged[0].Quantity != 3 {
		t.Fatalf("unexpected merged item: %+v", merged[0])
	}
}

func TestMergeCreateOrderItemsInvalid(t *testing.T) {
	if _, err := mergeCreateOrderItems(nil); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("empty items should fail, got %v", err)
	}
	if _, err := mergeCreateOrderItems([]CreateOrderItem{{ProductID: 1, Quantity: 0}}); !errors.Is(err, ErrInvalidParam) {
		t.Fatalf("zero quantity should fail, got %v", err)
	}
}

func TestGenerateOrderNoFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^ORD[0-9]{13,19}$`)
	for i := 0; i < 10; i++ {
		orderNo := generateOrderNo()
		if !pattern.MatchString(orderNo) {
			t.Fatalf("order no %q does not match gateway contract", orderNo)
		}
	}
}

func TestCreateOrderSnapshotsServerSidePrices(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	wheelchair := models.Product{Name: "Lightweight Wheelchair", PriceAmount: 19900, IsActive: true}
	cushion := models.Product{Name: "Gel Cushion", PriceAmount: 4500, IsActive: true}
	if err := db.Create(&wheelchair).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if err := db.Create(&cushion).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	order, err := svc.CreateOrder(CreateOrderInput{
		Items: []CreateOrderItem{
			{ProductID: wheelchair.ID, Quantity: 2},
			{ProductID: cushion.ID, Quantity: 1},
		},
		ClientIP: "203.0.113.9",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.Amount != 44300 {
		t.Fatalf("amount should come from product table, got %d", order.Amount.MinorUnits())
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(order.Items))
	}
	if order.Items[0].UnitPrice != 19900 || order.Items[0].ProductName != "Lightweight Wheelchair" {
		t.Fatalf("item snapshot mismatch: %+v", order.Items[0])
	}

	stored, err := svc.GetByOrderNo(order.OrderNo)
	if err != nil {
		t.Fatalf("get by order no failed: %v", err)
	}
	if stored.Status != "created" {
		t.Fatalf("new order should start created, got %s", stored.Status)
	}
}

func TestCreateOrderRejectsInactiveProduct(t *testing.T) {
	svc, db := setupOrderServiceTest(t)

	inactive := models.Product{Name: "Discontinued Walker", PriceAmount: 8800, IsActive: false}
	if err := db.Create(&inactive).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	_, err := svc.CreateOrder(CreateOrderInput{
		Items: []CreateOrderItem{{ProductID: inactive.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("inactive product should be rejected, got %v", err)
	}
}

func TestGetByOrderNoMissing(t *testing.T) {
	svc, _ := setupOrderServiceTest(t)
	if _, err := svc.GetByOrderNo("ORD1700000009999"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("missing order should map to ErrOrderNotFound, got %v", err)
	}
}
