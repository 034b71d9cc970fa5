package public

import (
	"time"

	"github.com/hkshop-next/internal/http/response"
	"github.com/hkshop-next/internal/models"
	"github.com/hkshop-next/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 订单项请求
type OrderItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required"`
}

// OrderView 订单对外视图
type OrderView struct {
	OrderNo   string             `json:"order_no"`
	Status    string             `json:"status"`
	Amount    int64              `json:"amount"`
	Display   string             `json:"display_amount"`
	Subject   string             `json:"subject"`
	Channel   string             `json:"channel,omitempty"`
	PaidAt    *time.Time         `json:"paid_at,omitempty"`
	Items     []models.OrderItem `json:"items"`
	CreatedAt time.Time          `json:"created_at"`
}

func newOrderView(order *models.Order) OrderView {
	return OrderView{
		OrderNo:   order.OrderNo,
		Status:    order.Status,
		Amount:    order.Amount.MinorUnits(),
		Display:   order.Amount.Display(),
		Subject:   order.Subject,
		Channel:   order.Channel,
		PaidAt:    order.PaidAt,
		Items:     order.Items,
		CreatedAt: order.CreatedAt,
	}
}

// CreateOrder 创建订单，金额由服务端按商品库计算
func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	items := make([]service.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		Items:    items,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, response.CodeInternal, "order create failed")
		return
	}
	response.Success(c, newOrderView(order))
}

// GetOrder 按订单号查询订单状态
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.OrderService.GetByOrderNo(c.Param("order_no"))
	if err != nil {
		respondWithMappedError(c, err, orderErrorRules, response.CodeInternal, "order fetch failed")
		return
	}
	response.Success(c, newOrderView(order))
}
