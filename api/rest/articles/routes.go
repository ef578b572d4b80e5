package articles

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, ingester Ingester, reader Reader) {
	group := router.Group("/articles")
	{
		group.POST("", CreateHandler(ingester))
		group.GET("", ListHandler(reader))
		group.GET("/:id", GetHandler(reader))
	}
}
