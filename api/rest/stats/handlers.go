package stats

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/marketwire/server/internal/errors"
)

// Handler reports corpus totals
func Handler(source Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := source.Stats(c.Request.Context())
		if err != nil {
			errors.InternalError(c, "failed to get stats", err)
			return
		}

		c.JSON(http.StatusOK, stats)
	}
}
