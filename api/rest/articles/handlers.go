package articles

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/marketwire/server/api/rest/pagination"
	"codeberg.org/marketwire/server/internal/articles"
	"codeberg.org/marketwire/server/internal/errors"
	"codeberg.org/marketwire/server/internal/pipeline"
	"codeberg.org/marketwire/server/internal/storage"
)

// CreateHandler ingests one raw article and returns it as processed
func CreateHandler(ingester Ingester) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req articles.Input
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		article, err := ingester.Ingest(c.Request.Context(), req)
		if err != nil {
			if stderrors.Is(err, pipeline.ErrInvalidInput) {
				errors.BadRequest(c, err.Error(), nil)
				return
			}

			errors.IngestFailed(c, err)
			return
		}

		c.JSON(http.StatusCreated, article)
	}
}

// GetHandler returns a stored article by id
func GetHandler(reader Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")

		rows, err := reader.GetMany(c.Request.Context(), []string{id})
		if err != nil {
			errors.InternalError(c, "failed to fetch article", err)
			return
		}

		if len(rows) == 0 {
			errors.NotFound(c, "article")
			return
		}

		article, err := articles.FromRow(&rows[0])
		if err != nil {
			errors.InternalError(c, "failed to decode article", err)
			return
		}

		c.JSON(http.StatusOK, article)
	}
}

// ListHandler pages through stored articles, newest first
// optional filters: ?sector=Banking and ?unique=true
func ListHandler(reader Reader) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := pagination.FromQuery(c, defaultPageSize, maxPageSize)

		opts := storage.ListOptions{
			Limit:      params.Limit,
			Offset:     params.Offset,
			Sector:     c.Query("sector"),
			UniqueOnly: c.Query("unique") == "true",
		}

		rows, total, err := reader.List(c.Request.Context(), opts)
		if err != nil {
			errors.InternalError(c, "failed to list articles", err)
			return
		}

		list := make([]articles.Article, 0, len(rows))

		for i := range rows {
			article, err := articles.FromRow(&rows[i])
			if err != nil {
				errors.InternalError(c, "failed to decode article", err)
				return
			}

			list = append(list, *article)
		}

		c.JSON(http.StatusOK, ArticlesListResponse{
			Articles:   list,
			Pagination: pagination.NewMeta(params, total),
		})
	}
}
