package model

import "time"

// Pagination defaults. PageSize is clamped to MaxPageSize to keep a single
// request from dragging an owner's entire history across the wire.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Page selects one page of results.
type Page struct {
	Number int // 1-based; values < 1 are treated as 1
	Size   int // 0 means DefaultPageSize
}

// Normalize returns a copy with the number and size clamped to valid bounds.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Limit returns the SQL LIMIT for the page.
func (p Page) Limit() int {
	return p.Size
}

// Offset returns the SQL OFFSET for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// PageInfo describes the page of results actually returned.
type PageInfo struct {
	PageNumber int `json:"page_number"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
}

// ConfigurationFilter narrows a configuration listing. All fields are
// optional; the owner scope is supplied separately by the caller.
type ConfigurationFilter struct {
	Name        string // substring match on name
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// VersionFilter narrows a version listing for one configuration.
type VersionFilter struct {
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
