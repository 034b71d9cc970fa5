package public

import (
	"errors"

	"github.com/hkshop-next/internal/http/response"
	"github.com/hkshop-next/internal/payment/powerpay"
	"github.com/hkshop-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreatePaymentRequest 发起支付请求
type CreatePaymentRequest struct {
	OrderNo string `json:"order_no" binding:"required"`
	Channel string `json:"channel" binding:"required"`
	CardNo  string `json:"card_no"`
}

// PaymentView 支付载荷对外视图
type PaymentView struct {
	OrderNo     string `json:"order_no"`
	Channel     string `json:"channel"`
	Interaction string `json:"interaction"`
	QRCode      string `json:"qr_code,omitempty"`
	PayURL      string `json:"pay_url,omitempty"`
	FormHTML    string `json:"form_html,omitempty"`
}

// CreatePayment 向网关发起收单并返回前端支付载荷
func (h *Handler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	result, err := h.PaymentService.CreatePayment(c.Request.Context(), service.CreatePaymentInput{
		OrderNo:  req.OrderNo,
		Channel:  req.Channel,
		CardNo:   req.CardNo,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}

	response.Success(c, PaymentView{
		OrderNo:     req.OrderNo,
		Channel:     req.Channel,
		Interaction: result.Interaction,
		QRCode:      result.QRCode,
		PayURL:      result.PayURL,
		FormHTML:    result.FormHTML,
	})
}

// respondPaymentError 网关错误细分：拒绝与应答异常携带专用业务码
func (h *Handler) respondPaymentError(c *gin.Context, err error) {
	var decline *powerpay.DeclineError
	if errors.As(err, &decline) {
		response.ErrorWithData(c, response.CodeGatewayDeclined, "payment declined", gin.H{
			"gateway_code": decline.Code,
			"gateway_msg":  decline.Msg,
		})
		return
	}
	if errors.Is(err, powerpay.ErrResponseInvalid) {
		respondError(c, response.CodeGatewayInvalid, "payment gateway unavailable", err)
		return
	}
	switch {
	case errors.Is(err, powerpay.ErrOrderNoInvalid),
		errors.Is(err, powerpay.ErrAmountInvalid),
		errors.Is(err, powerpay.ErrCardNoInvalid),
		errors.Is(err, powerpay.ErrChannelInvalid):
		respondError(c, response.CodeBadRequest, "payment request invalid", err)
	default:
		respondWithMappedError(c, err, paymentErrorRules, response.CodeInternal, "payment create failed")
	}
}

// GetPaymentStatus 查询订单最近一次支付记录
func (h *Handler) GetPaymentStatus(c *gin.Context) {
	payment, err := h.PaymentService.GetLatestPayment(c.Param("order_no"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "payment not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "payment fetch failed", err)
		return
	}
	response.Success(c, gin.H{
		"order_no":     payment.OrderNo,
		"channel":      payment.Channel,
		"status":       payment.Status,
		"provider_ref": payment.ProviderRef,
		"paid_at":      payment.PaidAt,
	})
}
