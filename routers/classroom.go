package routers

import (
	"github.com/Yulian302/classroom-tokens/classroom"
	"github.com/gin-gonic/gin"
)

func RegisterClassroomRoutes(h *classroom.ClassroomHandler, route *gin.Engine) {
	route.GET("/", h.Root)

	classroom := route.Group("/classroom")

	classroom.GET("/subscribe/", h.Subscribe)
	classroom.GET("/check/", h.Check)
	classroom.DELETE("/unsubscribe", h.Unsubscribe)
}
