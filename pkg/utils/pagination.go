package utils

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// ClampPerPage falls back to DefaultPerPage below 1 and caps at MaxPerPage.
func ClampPerPage(perPage int) int {
	switch {
	case perPage < 1:
		return DefaultPerPage
	case perPage > MaxPerPage:
		return MaxPerPage
	}
	return perPage
}

// PageOffset is the number of rows before page. Pages start at 1.
func PageOffset(page, perPage int) int {
	if page < 1 || perPage < 1 {
		return 0
	}
	return (page - 1) * perPage
}

// PageCount rounds up, so a partial last page counts.
func PageCount(total int64, perPage int) int {
	if total <= 0 || perPage < 1 {
		return 0
	}
	size := int64(perPage)
	return int((total + size - 1) / size)
}
