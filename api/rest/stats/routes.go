package stats

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, source Source) {
	router.GET("/stats", Handler(source))
}
