package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/noah-isme/civic-report-api/internal/models"
)

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// conditions accumulates positional WHERE clauses.
type conditions struct {
	parts []string
	args  []interface{}
}

// add appends expr, whose single %d is replaced with the next placeholder index.
func (c *conditions) add(expr string, value interface{}) {
	c.args = append(c.args, value)
	c.parts = append(c.parts, fmt.Sprintf(expr, len(c.args)))
}

// addLocation filters on every non-empty field of loc, case-insensitively.
func (c *conditions) addLocation(loc models.Location) {
	fields := []struct {
		column string
		value  string
	}{
		{"region", loc.Region},
		{"province", loc.Province},
		{"city", loc.City},
		{"barangay", loc.Barangay},
	}
	for _, f := range fields {
		if v := strings.TrimSpace(f.value); v != "" {
			c.add("LOWER("+f.column+") = LOWER($%d)", v)
		}
	}
}

func (c *conditions) where() string {
	if len(c.parts) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.parts, " AND ")
}

func paginate(page, size int) (limit, offset int) {
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	if page <= 0 {
		page = 1
	}
	return size, (page - 1) * size
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
