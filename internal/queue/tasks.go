package queue

import (
	"encoding/json"

	"github.com/hkshop-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderPaidNotify 订单支付成功后续处理任务
	TaskOrderPaidNotify = constants.TaskOrderPaidNotify
)

// OrderPaidNotifyPayload 支付成功任务载荷
type OrderPaidNotifyPayload struct {
	OrderID uint   `json:"order_id"`
	OrderNo string `json:"order_no"`
}

// NewOrderPaidNotifyTask 创建支付成功任务
func NewOrderPaidNotifyTask(payload OrderPaidNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderPaidNotify, body), nil
}
