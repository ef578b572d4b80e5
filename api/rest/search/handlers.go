package search

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/marketwire/server/internal/errors"
	"codeberg.org/marketwire/server/internal/query"
)

// Handler answers GET /query?q= with expanded, rank-ordered matches
func Handler(searcher Searcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			errors.BadRequest(c, "query parameter q is required", nil)
			return
		}

		result, err := searcher.Search(c.Request.Context(), q)
		if err != nil {
			if stderrors.Is(err, query.ErrEmptyQuery) {
				errors.BadRequest(c, "query parameter q is required", nil)
				return
			}

			errors.SearchFailed(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
