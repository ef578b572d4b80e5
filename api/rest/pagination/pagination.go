package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

func NewMeta(params Params, total int) Meta {
	return Meta{
		Total:   total,
		Limit:   params.Limit,
		Offset:  params.Offset,
		HasMore: params.Offset+params.Limit < total,
	}
}

// clamps limit into [1, maxLimit] and offset to >= 0
func DefaultParams(limit, offset, defaultLimit, maxLimit int) Params {
	if limit <= 0 {
		limit = defaultLimit
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	if offset < 0 {
		offset = 0
	}

	return Params{
		Limit:  limit,
		Offset: offset,
	}
}

// reads ?limit= and ?offset=; unparsable values fall back to the defaults
func FromQuery(c *gin.Context, defaultLimit, maxLimit int) Params {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = defaultLimit
	}

	offset, err := strconv.Atoi(c.Query("offset"))
	if err != nil {
		offset = 0
	}

	return DefaultParams(limit, offset, defaultLimit, maxLimit)
}
