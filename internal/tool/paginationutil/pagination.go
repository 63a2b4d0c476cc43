package paginationutil

// Page describes how a result list was cut down.
type Page struct {
	Total     int  // items before truncation
	Returned  int  // items handed back
	Truncated bool // Returned < Total
}

// Truncate returns at most limit items from the front of items. A non-positive
// limit returns nothing. The input slice is not copied.
func Truncate[T any](items []T, limit int) ([]T, Page) {
	total := len(items)
	if limit < 0 {
		limit = 0
	}
	end := limit
	if end > total {
		end = total
	}
	return items[:end], Page{
		Total:     total,
		Returned:  end,
		Truncated: end < total,
	}
}

// Clamp bounds a requested limit by a configured maximum. A non-positive max
// leaves the request unchanged.
func Clamp(requested, max int) int {
	if max > 0 && requested > max {
		return max
	}
	return requested
}
