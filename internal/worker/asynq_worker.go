package worker

import (
	"context"
	"encoding/json"

	"github.com/hkshop-next/internal/constants"
	"github.com/hkshop-next/internal/logger"
	"github.com/hkshop-next/internal/provider"
	"github.com/hkshop-next/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderPaidNotify, c.handleOrderPaidNotify)
}

// handleOrderPaidNotify 支付成功后续处理：累加商品销量并留下审计日志
func (c *Consumer) handleOrderPaidNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_paid_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderPaidNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_paid_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_paid_notify_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}

	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_paid_notify_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_paid_notify_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	if order.Status != constants.OrderStatusPaid {
		// 任务可能晚于人工干预到达，非已支付订单不计销量
		logger.Debugw("worker_order_paid_notify_skip_not_paid",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"status", order.Status,
		)
		return nil
	}

	for _, item := range order.Items {
		if err := c.ProductRepo.IncrSoldCount(item.ProductID, item.Quantity); err != nil {
			logger.Warnw("worker_order_paid_notify_incr_sold_failed",
				"order_id", order.ID,
				"product_id", item.ProductID,
				"error", err,
			)
			return err
		}
	}

	logger.Infow("worker_order_paid_notify_processed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"items", len(order.Items),
	)
	return nil
}
