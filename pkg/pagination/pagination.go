package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const MaxLimit = 500

// Params holds optional pagination parameters. A zero Limit means the
// whole result set.
type Params struct {
	Limit  int
	Offset int
}

// FromContext reads ?limit= and ?offset= from the request. Absent or
// invalid values leave the list unbounded.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit < 0 {
		limit = 0
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 || limit == 0 {
		offset = 0
	}

	return Params{Limit: limit, Offset: offset}
}

// Bounded reports whether a LIMIT applies.
func (p Params) Bounded() bool {
	return p.Limit > 0
}

// SQL returns a LIMIT/OFFSET clause with positional parameters starting at
// next, together with the arguments to append. Unbounded params yield an
// empty clause.
func (p Params) SQL(next int) (string, []interface{}) {
	if !p.Bounded() {
		return "", nil
	}
	return " LIMIT $" + strconv.Itoa(next) + " OFFSET $" + strconv.Itoa(next+1),
		[]interface{}{p.Limit, p.Offset}
}

// Window slices an in-memory result the same way the SQL clause would.
func Window[T any](items []T, p Params) []T {
	if !p.Bounded() {
		return items
	}
	if p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}
