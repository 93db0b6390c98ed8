package domain

// PaginationParams pages a forum's attendee list. Page is 1-based; the
// HTTP layer clamps PageSize before it reaches the repository.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset is the number of attendee rows to skip. Pages below 1 start at the top.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
