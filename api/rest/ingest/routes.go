package ingest

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, poller Poller, ingester BatchIngester) {
	router.POST("/ingest", PollHandler(poller, ingester))
}
