package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/hkshop-next/internal/constants"
	"github.com/hkshop-next/internal/logger"
	"github.com/hkshop-next/internal/models"
	"github.com/hkshop-next/internal/payment/powerpay"
	"github.com/hkshop-next/internal/repository"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// CreateOrderItem 创建订单项输入
type CreateOrderItem struct {
	ProductID uint
	Quantity  int
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	Items    []CreateOrderItem
	ClientIP string
}

// CreateOrder 创建订单：金额与品名一律按当前商品库价格固化，
// 不信任任何来自客户端的金额字段
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	items, err := mergeCreateOrderItems(input.Items)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.productRepo.GetActiveByIDs(ids)
	if err != nil {
		return nil, err
	}
	productByID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		productByID[p.ID] = p
	}

	var total models.Money
	orderItems := make([]models.OrderItem, 0, len(items))
	var firstName string
	for _, item := range items {
		product, ok := productByID[item.ProductID]
		if !ok {
			return nil, ErrProductNotFound
		}
		if firstName == "" {
			firstName = product.Name
		}
		total += product.PriceAmount * models.Money(item.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.PriceAmount,
			Quantity:    item.Quantity,
		})
	}
	if total <= 0 {
		return nil, ErrInvalidParam
	}

	subject := firstName
	if len(orderItems) > 1 {
		subject = fmt.Sprintf("%s x%d items", firstName, len(orderItems))
	}
	subject = powerpay.NormalizeSubject(subject)

	order := &models.Order{
		OrderNo:  generateOrderNo(),
		Status:   constants.OrderStatusCreated,
		Amount:   total,
		Subject:  subject,
		ClientIP: input.ClientIP,
	}
	if err := s.orderRepo.Create(order, orderItems); err != nil {
		return nil, err
	}

	logger.Infow("order_created",
		"order_no", order.OrderNo,
		"amount", order.Amount.MinorUnits(),
		"items", len(orderItems),
	)
	order.Items = orderItems
	return order, nil
}

// GetByOrderNo 按订单号查询订单
func (s *OrderService) GetByOrderNo(orderNo string) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if orderNo == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListAdmin 管理端订单列表
func (s *OrderService) ListAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// mergeCreateOrderItems 合并重复商品的下单项并校验数量
func mergeCreateOrderItems(items []CreateOrderItem) ([]CreateOrderItem, error) {
	if len(items) == 0 {
		return nil, ErrInvalidParam
	}
	merged := make([]CreateOrderItem, 0, len(items))
	index := make(map[uint]int, len(items))
	for _, item := range items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return nil, ErrInvalidParam
		}
		if pos, ok := index[item.ProductID]; ok {
			merged[pos].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

// generateOrderNo 生成商户订单号：ORD + 毫秒时间戳 + 4 位随机数字
func generateOrderNo() string {
	return fmt.Sprintf("ORD%d%s", time.Now().UnixMilli(), randNumeric(4))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		fmt.Fprintf(&b, "%d", n.Int64())
	}
	return b.String()
}
