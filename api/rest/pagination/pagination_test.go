package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFromQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		query string
		want  Params
	}{
		{"", Params{Limit: 20, Offset: 0}},
		{"?limit=5&offset=10", Params{Limit: 5, Offset: 10}},
		{"?limit=500", Params{Limit: 100, Offset: 0}},
		{"?limit=abc&offset=-3", Params{Limit: 20, Offset: 0}},
		{"?limit=0", Params{Limit: 20, Offset: 0}},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		c.Request = httptest.NewRequest(http.MethodGet, "/articles"+tt.query, nil)

		assert.Equal(t, tt.want, FromQuery(c, 20, 100), "query %q", tt.query)
	}
}

func TestNewMeta(t *testing.T) {
	assert.True(t, NewMeta(Params{Limit: 10, Offset: 0}, 11).HasMore)
	assert.False(t, NewMeta(Params{Limit: 10, Offset: 10}, 20).HasMore)
}
