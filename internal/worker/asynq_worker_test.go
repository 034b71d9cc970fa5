package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/hkshop-next/internal/constants"
	"github.com/hkshop-next/internal/models"
	"github.com/hkshop-next/internal/provider"
	"github.com/hkshop-next/internal/queue"
	"github.com/hkshop-next/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupConsumerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	container := &provider.Container{
		ProductRepo: repository.NewProductRepository(db),
		OrderRepo:   repository.NewOrderRepository(db),
	}
	return NewConsumer(container), db
}

func TestHandleOrderPaidNotifyIncrementsSoldCount(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	product := models.Product{Name: "Lightweight Wheelchair", PriceAmount: 19900, IsActive: true}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	paidAt := time.Now()
	order := models.Order{
		OrderNo: "ORD1700000000101",
		Status:  constants.OrderStatusPaid,
		Amount:  39800,
		PaidAt:  &paidAt,
	}
	if err := consumer.OrderRepo.Create(&order, []models.OrderItem{
		{ProductID: product.ID, ProductName: product.Name, UnitPrice: 19900, Quantity: 2},
	}); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	task, err := queue.NewOrderPaidNotifyTask(queue.OrderPaidNotifyPayload{OrderID: order.ID, OrderNo: order.OrderNo})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderPaidNotify(context.Background(), task); err != nil {
		t.Fatalf("handle task failed: %v", err)
	}

	got, err := consumer.ProductRepo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if got == nil || got.SoldCount != 2 {
		t.Fatalf("expected sold count 2, got %+v", got)
	}
}

func TestHandleOrderPaidNotifySkipsUnpaidOrder(t *testing.T) {
	consumer, db := setupConsumerTest(t)

	product := models.Product{Name: "Seat Cushion", PriceAmount: 4500, IsActive: true}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	order := models.Order{
		OrderNo: "ORD1700000000102",
		Status:  constants.OrderStatusCreated,
		Amount:  4500,
	}
	if err := consumer.OrderRepo.Create(&order, []models.OrderItem{
		{ProductID: product.ID, ProductName: product.Name, UnitPrice: 4500, Quantity: 1},
	}); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	task, err := queue.NewOrderPaidNotifyTask(queue.OrderPaidNotifyPayload{OrderID: order.ID, OrderNo: order.OrderNo})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderPaidNotify(context.Background(), task); err != nil {
		t.Fatalf("handle task failed: %v", err)
	}

	got, err := consumer.ProductRepo.GetByID(product.ID)
	if err != nil {
		t.Fatalf("get product failed: %v", err)
	}
	if got == nil || got.SoldCount != 0 {
		t.Fatalf("unpaid order should not bump sold count, got %+v", got)
	}
}

func TestHandleOrderPaidNotifyMissingOrder(t *testing.T) {
	consumer, _ := setupConsumerTest(t)

	task, err := queue.NewOrderPaidNotifyTask(queue.OrderPaidNotifyPayload{OrderID: 999, OrderNo: "ORD1700000000103"})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderPaidNotify(context.Background(), task); err != nil {
		t.Fatalf("missing order should be skipped, got error: %v", err)
	}
}
