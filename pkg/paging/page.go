package paging

// Page is one slice of a larger result set
type Page[T any] struct {
	Content    []T   `json:"content" msgpack:"c"`
	TotalCount int64 `json:"totalCount" msgpack:"t"`
	Number     int   `json:"number" msgpack:"n"`
	Size       int   `json:"size" msgpack:"s"`
}

// NewPage builds the page that request produced
func NewPage[T any](content []T, request Pageable, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}

	if request.Unpaged {
		return &Page[T]{Content: content, TotalCount: total, Size: len(content)}
	}

	return &Page[T]{
		Content:    content,
		TotalCount: total,
		Number:     request.PageNumber(),
		Size:       request.PageSize(),
	}
}

// TotalPages returns the number of pages of Size rows needed for TotalCount
func (p *Page[T]) TotalPages() int {
	if p.Size <= 0 {
		if p.TotalCount > 0 {
			return 1
		}
		return 0
	}
	return int((p.TotalCount + int64(p.Size) - 1) / int64(p.Size))
}

// HasNext reports whether a page follows this one
func (p *Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages()
}
