package service

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Paginate normalizes page/size and returns the offset.
func Paginate(page, size int) (from, limit, normPage int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	return (page - 1) * size, size, page
}
