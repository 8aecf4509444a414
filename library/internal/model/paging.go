package model

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

type Paging struct {
	Page  int
	Limit int
}

// NewPaging clamps page to >= 1 and limit to [1, MaxLimit], defaulting zero values.
func NewPaging(page, limit int) Paging {
	if page < 1 {
		page = DefaultPage
	}
	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return Paging{Page: page, Limit: limit}
}

func (p Paging) Offset() uint64 {
	return uint64((p.Page - 1) * p.Limit)
}

type List[T any] struct {
	Items []T
	Total int
	Paging
}

func (l List[T]) TotalPages() int {
	if l.Limit == 0 {
		return 0
	}
	return (l.Total + l.Limit - 1) / l.Limit
}
