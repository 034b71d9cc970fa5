package public

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/hkshop-next/internal/constants"
	"github.com/hkshop-next/internal/service"

	"github.com/gin-gonic/gin"
)

const callbackBodyLimit = 1 << 20

// HandlePaymentCallback 网关异步通知入口。
// 应答是网关重试协议的一部分：SUCCESS 停止重试，其余应答网关会继续投递。
func (h *Handler) HandlePaymentCallback(c *gin.Context) {
	log := requestLog(c)

	fields, err := parseCallbackFields(c)
	if err != nil {
		log.Warnw("payment_callback_body_invalid", "error", err)
		c.String(http.StatusBadRequest, constants.CallbackAckFail)
		return
	}

	result, err := h.PaymentService.HandleGatewayCallback(fields)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSignatureInvalid):
			c.String(http.StatusUnauthorized, constants.CallbackAckFail)
		case errors.Is(err, service.ErrOrderNotFound):
			c.String(http.StatusNotFound, constants.CallbackAckFail)
		default:
			log.Errorw("payment_callback_failed", "error", err)
			c.String(http.StatusInternalServerError, constants.CallbackAckFail)
		}
		return
	}

	// 已终态订单的重放同样确认，避免网关无限重试
	if !result.Applied {
		log.Infow("payment_callback_replay_acked", "order_no", result.OrderNo, "outcome", result.Outcome)
	}
	c.String(http.StatusOK, constants.CallbackAckSuccess)
}

// parseCallbackFields 网关以 JSON 投递通知，全部字段按字符串处理以保证验签原文一致
func parseCallbackFields(c *gin.Context) (map[string]string, error) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, callbackBodyLimit))
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, errors.New("empty body")
	}

	// UseNumber 保留数字字段的原始字面量，验签原文不因浮点转换走样
	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()
	var raw map[string]interface{}
	if err := decoder.Decode(&raw); err != nil {
		return nil, err
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		switch value := v.(type) {
		case string:
			fields[k] = value
		case json.Number:
			fields[k] = value.String()
		case float64:
			fields[k] = fmt.Sprintf("%v", value)
		case bool:
			fields[k] = fmt.Sprintf("%t", value)
		case nil:
			fields[k] = ""
		default:
			nested, err := json.Marshal(value)
			if err != nil {
				return nil, err
			}
			fields[k] = string(nested)
		}
	}
	return fields, nil
}
