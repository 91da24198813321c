package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/schoolfee-receipts/internal/presentation/http/dto/response"
	"github.com/sangkips/schoolfee-receipts/pkg/apperror"
	"github.com/sangkips/schoolfee-receipts/pkg/logger"
)

// Recovery turns a panic into a generic 500 and logs what happened
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Errorw("panic recovered",
			"request_id", c.GetString("request_id"),
			"path", c.Request.URL.Path,
			"panic", recovered,
		)
		response.ErrorWithCode(c, apperror.ErrInternalServer.Code, apperror.ErrInternalServer.Message)
		c.Abort()
	})
}
