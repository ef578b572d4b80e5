package health

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "marketwire"
	serviceVersion = "1.0.0"
)

// reports liveness and, when a checker is given, whether the backing stores answer
func Handler(checks ...Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := Response{
			Status:  "healthy",
			Service: serviceName,
			Version: serviceVersion,
		}

		status := http.StatusOK

		for _, check := range checks {
			if err := check.Ping(c.Request.Context()); err != nil {
				if resp.Failing == nil {
					resp.Failing = map[string]string{}
				}

				resp.Failing[check.Name()] = err.Error()
			}
		}

		if len(resp.Failing) > 0 {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, resp)
	}
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}
