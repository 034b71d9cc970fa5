package public

import (
	"errors"

	"github.com/hkshop-next/internal/http/handlers/shared"
	"github.com/hkshop-next/internal/http/response"
	"github.com/hkshop-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return shared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	shared.RespondError(c, code, msg, err)
}

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	msg    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackMsg string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackMsg, err)
}

var productErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotFound, code: response.CodeNotFound, msg: "product not found or inactive"},
}

var orderErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidParam, code: response.CodeBadRequest, msg: "order items invalid"},
	{target: service.ErrProductNotFound, code: response.CodeBadRequest, msg: "product not found or inactive"},
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
}

var paymentErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound, msg: "order not found"},
	{target: service.ErrOrderNotPayable, code: response.CodeConflict, msg: "order already finalized"},
	{target: service.ErrCardNoRequired, code: response.CodeBadRequest, msg: "card number required"},
}
