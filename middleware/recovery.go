package middleware

import (
	"log/slog"

	"github.com/Yulian302/classroom-tokens/apperror"
	"github.com/Yulian302/classroom-tokens/logging"
	"github.com/gin-gonic/gin"
)

// Recovery turns a panic in any handler into the generic 500 body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		logging.FromContext(c.Request.Context()).Error(
			"recovered from panic",
			slog.Any("panic", recovered),
		)
		apperror.AbortInternalServerError(c)
	})
}
