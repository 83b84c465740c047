package responses

import (
	"github.com/gin-gonic/gin"
)

func JSONData(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

func JSONError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

func HTML(c *gin.Context, status int, body string) {
	c.Data(status, "text/html; charset=utf-8", []byte(body))
}
