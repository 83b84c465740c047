package apperror

import (
	"net/http"

	"github.com/Yulian302/classroom-tokens/responses"
	"github.com/gin-gonic/gin"
)

const internalServerError = "Internal Server Error"

func BadRequestResponse(c *gin.Context, msg string) {
	responses.JSONError(c, http.StatusBadRequest, msg)
}

func NotFoundResponse(c *gin.Context, msg string) {
	responses.JSONError(c, http.StatusNotFound, msg)
}

// InternalServerErrorResponse never echoes the cause to the caller.
func InternalServerErrorResponse(c *gin.Context) {
	responses.JSONError(c, http.StatusInternalServerError, internalServerError)
}

func AbortInternalServerError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalServerError})
}
