package pagination

import "gorm.io/gorm"

// Pagination is plain page/size paging for store-scoped list endpoints.
type Pagination struct {
	Page     int `form:"page,default=1" validate:"gte=1"`
	PageSize int `form:"page_size,default=25" validate:"gte=1,lte=250"`
}

func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 25
	}
	if p.PageSize > 250 {
		p.PageSize = 250
	}
	return p
}

// Apply adds LIMIT/OFFSET to the statement.
func (p Pagination) Apply(stmt *gorm.DB) *gorm.DB {
	p = p.Normalize()
	return stmt.Limit(p.PageSize).Offset((p.Page - 1) * p.PageSize)
}

// PageInfo echoes paging parameters plus whether more rows exist.
type PageInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasMore  bool `json:"has_more"`
}

// Build derives PageInfo from an over-fetched result slice (fetch
// PageSize+1 rows, trim the extra).
func Build[T any](data []*T, p Pagination) ([]*T, PageInfo) {
	p = p.Normalize()
	info := PageInfo{Page: p.Page, PageSize: p.PageSize}
	if len(data) > p.PageSize {
		info.HasMore = true
		data = data[:p.PageSize]
	}
	return data, info
}
