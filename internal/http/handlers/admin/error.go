package admin

import (
	"github.com/hkshop-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return shared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	shared.RespondError(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return shared.NormalizePagination(page, pageSize)
}
