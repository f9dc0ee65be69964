package request

import (
	"fmt"
	"net/http"
	"strconv"
)

// Pagination holds parsed pagination parameters. A zero Limit leaves the
// default to the service.
type Pagination struct {
	Limit  int
	Cursor string
}

// ParsePagination extracts limit and cursor from query parameters.
func ParsePagination(r *http.Request) (Pagination, error) {
	p := Pagination{Cursor: r.URL.Query().Get("cursor")}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			return p, fmt.Errorf("limit must be a positive integer")
		}
		p.Limit = limit
	}
	return p, nil
}
