package ingest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/marketwire/server/internal/logger"
)

// PollHandler fetches every configured feed once and ingests what it finds
// broken feeds and failed articles are reported, not fatal
func PollHandler(poller Poller, ingester BatchIngester) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		inputs, report := poller.Poll(ctx)
		result := ingester.IngestBatch(ctx, inputs)

		resp := PollResponse{
			Ingested:   result.Ingested,
			Duplicates: result.Duplicates,
			Failed:     result.Failed,
			Feeds:      report.Feeds,
			Items:      report.Items,
			DurationMS: result.Duration.Milliseconds(),
		}

		for _, fe := range report.Errors {
			resp.FeedErrors = append(resp.FeedErrors, FeedError{URL: fe.URL, Error: fe.Err.Error()})
		}

		for _, item := range result.Items {
			if item.Err != nil {
				resp.Failures = append(resp.Failures, Failure{Title: item.Title, Error: item.Err.Error()})
			}
		}

		if len(resp.FeedErrors) > 0 || resp.Failed > 0 {
			logger.Warn("feed poll finished with errors",
				"feed_errors", len(resp.FeedErrors),
				"failed", resp.Failed,
			)
		}

		c.JSON(http.StatusOK, resp)
	}
}
