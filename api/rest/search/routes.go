package search

import "github.com/gin-gonic/gin"

// middleware runs before the handler, e.g. the per-client rate limiter
func RegisterRoutes(router *gin.RouterGroup, searcher Searcher, middleware ...gin.HandlerFunc) {
	handlers := make([]gin.HandlerFunc, 0, len(middleware)+1)
	handlers = append(handlers, middleware...)
	handlers = append(handlers, Handler(searcher))

	router.GET("/query", handlers...)
}
