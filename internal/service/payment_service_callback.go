package service

import (
	"strings"
	"time"

	"github.com/hkshop-next/internal/constants"
	"github.com/hkshop-next/internal/models"
	"github.com/hkshop-next/internal/payment/powerpay"
	"github.com/hkshop-next/internal/queue"

	"go.uber.org/zap"
)

// CallbackResult 回调处理结果
type CallbackResult struct {
	OrderNo string
	Outcome string // 终态：paid / failed
	Applied bool   // 本次回调是否真正推进了订单状态
}

// HandleGatewayCallback 处理网关异步通知。
// 验签失败立即拒绝；已终态订单重放回调只确认不重复生效。
func (s *PaymentService) HandleGatewayCallback(fields map[string]string) (*CallbackResult, error) {
	orderNo := strings.TrimSpace(fields["merOrderNo"])
	code := strings.TrimSpace(fields["code"])
	providerRef := strings.TrimSpace(fields["plaOrderNo"])

	log := paymentLogger(
		"order_no", orderNo,
		"gateway_code", code,
		"provider_ref", providerRef,
	)
	log.Infow("payment_callback_received")

	if err := s.gateway.VerifyNotify(fields); err != nil {
		log.Warnw("payment_callback_signature_invalid")
		return nil, ErrSignatureInvalid
	}
	if orderNo == "" {
		log.Warnw("payment_callback_order_no_missing")
		return nil, ErrOrderNotFound
	}

	order, err := s.orderRepo.GetByOrderNo(orderNo)
	if err != nil {
		log.Errorw("payment_callback_order_fetch_failed", "error", err)
		return nil, err
	}
	if order == nil {
		log.Warnw("payment_callback_order_not_found")
		return nil, ErrOrderNotFound
	}

	paid := code == powerpay.CodeSuccess
	outcome := constants.OrderStatusFailed
	if paid {
		outcome = constants.OrderStatusPaid
	}

	now := time.Now()
	updates := map[string]interface{}{}
	if providerRef != "" {
		updates["provider_ref"] = providerRef
	}
	if paid {
		updates["paid_at"] = &now
	}

	applied, err := s.orderRepo.TransitionStatus(orderNo,
		constants.OrderStatusAwaitingConfirmation, outcome, updates)
	if err != nil {
		log.Errorw("payment_callback_transition_failed", "error", err)
		return nil, err
	}
	if !applied {
		// 回调可能先于下单流程把订单推进到等待确认，从初始态再试一次
		applied, err = s.orderRepo.TransitionStatus(orderNo,
			constants.OrderStatusCreated, outcome, updates)
		if err != nil {
			log.Errorw("payment_callback_transition_failed", "error", err)
			return nil, err
		}
		if applied {
			log.Warnw("payment_callback_out_of_order", "previous_status", constants.OrderStatusCreated)
		}
	}

	if !applied {
		current, err := s.orderRepo.GetByOrderNo(orderNo)
		if err != nil {
			log.Errorw("payment_callback_refetch_failed", "error", err)
			return nil, err
		}
		log.Infow("payment_callback_replay",
			"current_status", current.Status,
		)
		return &CallbackResult{OrderNo: orderNo, Outcome: current.Status, Applied: false}, nil
	}

	s.finalizePayment(order, outcome, providerRef, fields, now, log)

	if paid {
		if err := s.queueClient.EnqueueOrderPaidNotify(queue.OrderPaidNotifyPayload{
			OrderID: order.ID,
			OrderNo: order.OrderNo,
		}); err != nil {
			log.Errorw("payment_callback_enqueue_failed", "error", err)
		}
	}

	log.Infow("payment_callback_processed", "outcome", outcome)
	return &CallbackResult{OrderNo: orderNo, Outcome: outcome, Applied: true}, nil
}

// finalizePayment 将支付记录同步到终态并留存回调原文
func (s *PaymentService) finalizePayment(order *models.Order, outcome, providerRef string, fields map[string]string, now time.Time, log *zap.SugaredLogger) {
	status := constants.PaymentStatusFailed
	if outcome == constants.OrderStatusPaid {
		status = constants.PaymentStatusSuccess
	}

	payload := models.JSON{}
	for k, v := range fields {
		payload[k] = v
	}
	updates := map[string]interface{}{
		"callback_at":      &now,
		"provider_payload": payload,
	}
	if providerRef != "" {
		updates["provider_ref"] = providerRef
	}
	if status == constants.PaymentStatusSuccess {
		updates["paid_at"] = &now
	}
	if err := s.paymentRepo.UpdateStatusByOrderNo(order.OrderNo, status, updates); err != nil {
		log.Errorw("payment_callback_payment_update_failed", "error", err)
	}
}
