package dto

// PageQuery is the pagination contract consumed by every list endpoint.
type PageQuery struct {
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=10" validate:"min=1,max=200"`
	Search string `form:"search"`
	From   string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To     string `form:"to"   validate:"omitempty,datetime=2006-01-02"`
}

// Normalize applies defaults for callers that build a PageQuery by hand
// (query binding already applies them for HTTP requests).
func (q *PageQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
}

// Offset returns the row offset for the current page.
func (q PageQuery) Offset() int { return (q.Page - 1) * q.Limit }

type Meta struct {
	Page            int   `json:"page"`
	Limit           int   `json:"limit"`
	Total           int64 `json:"total"`
	TotalPages      int   `json:"totalPages"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

// NewMeta derives the full meta block from a page query and a total count.
func NewMeta(page, limit int, total int64) Meta {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Meta{
		Page:            page,
		Limit:           limit,
		Total:           total,
		TotalPages:      totalPages,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// Paginated is the envelope every list endpoint returns.
type Paginated[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

func NewPaginated[T any](data []T, page, limit int, total int64) *Paginated[T] {
	if data == nil {
		data = []T{}
	}
	return &Paginated[T]{Data: data, Meta: NewMeta(page, limit, total)}
}
