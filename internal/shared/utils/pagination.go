package utils

import "math"

// PageOffset returns the row offset of a 1-based page.
// ok is false when page or limit is not positive or the offset does not fit in an int;
// callers treat that as a page past the end.
func PageOffset(page, limit int) (offset int, ok bool) {
	if page < 1 || limit < 1 {
		return 0, false
	}
	if page-1 > math.MaxInt/limit {
		return 0, false
	}
	return (page - 1) * limit, true
}
