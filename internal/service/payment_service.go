package service

import (
	"context"
	"errors"
	"time"

	"github.com/hkshop-next/internal/config"
	"github.com/hkshop-next/internal/constants"
	"github.com/hkshop-next/internal/logger"
	"github.com/hkshop-next/internal/models"
	"github.com/hkshop-next/internal/payment/powerpay"
	"github.com/hkshop-next/internal/queue"
	"github.com/hkshop-next/internal/repository"

	"go.uber.org/zap"
)

// PaymentService 支付服务
type PaymentService struct {
	orderRepo   repository.OrderRepository
	paymentRepo repository.PaymentRepository
	queueClient *queue.Client
	gateway     *powerpay.Config
}

// NewPaymentService 创建支付服务
func NewPaymentService(cfg *config.Config, orderRepo repository.OrderRepository, paymentRepo repository.PaymentRepository, queueClient *queue.Client) *PaymentService {
	return &PaymentService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		queueClient: queueClient,
		gateway:     buildGatewayConfig(&cfg.PowerPay),
	}
}

func buildGatewayConfig(cfg *config.PowerPayConfig) *powerpay.Config {
	return &powerpay.Config{
		GatewayURL:       cfg.GatewayURL,
		MD5Key:           cfg.MD5Key,
		CompanyNo:        cfg.CompanyNo,
		CustomerNoOnline: cfg.CustomerNoOnline,
		CustomerNoCard:   cfg.CustomerNoCard,
		MCC:              cfg.MCC,
		NotifyURL:        cfg.NotifyURL,
		FrontURL:         cfg.FrontURL,
		TimeExpire:       cfg.TimeExpire,
		Version:          cfg.Version,
		Services:         cfg.Services,
		BankCustomerJSON: cfg.BankCustomer,
		DefaultSubject:   cfg.DefaultSubject,
		MaxAmount:        cfg.MaxAmount,
		Timeout:          time.Duration(cfg.TimeoutMS) * time.Millisecond,
	}
}

// CreatePaymentInput 创建支付请求
type CreatePaymentInput struct {
	OrderNo  string
	Channel  string
	CardNo   string
	ClientIP string
}

// CreatePaymentResult 创建支付结果
type CreatePaymentResult struct {
	Payment     *models.Payment
	Interaction string
	QRCode      string
	PayURL      string
	FormHTML    string
}

func paymentLogger(kv ...interface{}) *zap.SugaredLogger {
	if len(kv) == 0 {
		return logger.S()
	}
	return logger.SW(kv...)
}

// CreatePayment 为订单发起网关收单：金额以订单落库值为准，
// 成功拿到支付载荷后订单进入等待确认状态
func (s *PaymentService) CreatePayment(ctx context.Context, input CreatePaymentInput) (*CreatePaymentResult, error) {
	order, err := s.orderRepo.GetByOrderNo(input.OrderNo)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusCreated && order.Status != constants.OrderStatusAwaitingConfirmation {
		return nil, ErrOrderNotPayable
	}

	log := paymentLogger(
		"order_no", order.OrderNo,
		"channel", input.Channel,
		"amount", order.Amount.MinorUnits(),
	)
	log.Infow("payment_create_started")

	result, err := s.gateway.CreatePayment(ctx, powerpay.CreateInput{
		OrderNo:  order.OrderNo,
		Amount:   order.Amount.MinorUnits(),
		Subject:  order.Subject,
		Channel:  input.Channel,
		CardNo:   input.CardNo,
		ClientIP: input.ClientIP,
	})
	if err != nil {
		var decline *powerpay.DeclineError
		switch {
		case errors.As(err, &decline):
			log.Warnw("payment_create_declined", "gateway_code", decline.Code, "gateway_msg", decline.Msg)
		case errors.Is(err, powerpay.ErrResponseInvalid):
			log.Errorw("payment_create_response_invalid", "error", err)
		default:
			log.Errorw("payment_create_failed", "error", err)
		}
		return nil, err
	}

	payment := &models.Payment{
		OrderID:         order.ID,
		OrderNo:         order.OrderNo,
		Channel:         input.Channel,
		Service:         result.Service,
		InteractionMode: result.Interaction,
		Amount:          order.Amount,
		Status:          constants.PaymentStatusInitiated,
		ProviderRef:     result.PlaOrderNo,
		PayURL:          result.PayURL,
		QRCode:          result.QRCode,
	}
	if err := s.paymentRepo.Create(payment); err != nil {
		log.Errorw("payment_create_persist_failed", "error", err)
		return nil, err
	}

	// 首次发起时把订单推进到等待确认；重试发起时订单已在该状态，条件更新不生效也无碍
	applied, err := s.orderRepo.TransitionStatus(order.OrderNo, constants.OrderStatusCreated,
		constants.OrderStatusAwaitingConfirmation, map[string]interface{}{
			"channel":      input.Channel,
			"provider_ref": result.PlaOrderNo,
		})
	if err != nil {
		log.Errorw("payment_create_transition_failed", "error", err)
		return nil, err
	}
	if !applied {
		log.Infow("payment_create_retry", "current_status", order.Status)
	}

	log.Infow("payment_create_succeeded",
		"service", result.Service,
		"interaction", result.Interaction,
		"provider_ref", result.PlaOrderNo,
	)
	return &CreatePaymentResult{
		Payment:     payment,
		Interaction: result.Interaction,
		QRCode:      result.QRCode,
		PayURL:      result.PayURL,
		FormHTML:    result.FormHTML,
	}, nil
}

// GetLatestPayment 查询订单最近一次支付记录
func (s *PaymentService) GetLatestPayment(orderNo string) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetLatestByOrderNo(orderNo)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrNotFound
	}
	return payment, nil
}

// ListAdmin 管理端支付记录列表
func (s *PaymentService) ListAdmin(filter repository.PaymentListFilter) ([]models.Payment, int64, error) {
	return s.paymentRepo.List(filter)
}
