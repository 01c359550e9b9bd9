package pagination

import (
	"github.com/mateoreyes/drivehub-backend/pkg/types"
)

const (
	// DefaultPerPage is the standard page size when one is not provided.
	DefaultPerPage = 20
	// MaxPerPage caps how many rows any paged query can request.
	MaxPerPage = 100
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page    int
	PerPage int
}

// Normalize enforces the configured default and maximum limits.
func (p Params) Normalize() Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

// Limit returns the normalized page size.
func (p Params) Limit() int {
	return p.Normalize().PerPage
}

// Describe builds the response pagination block for a total row count.
func (p Params) Describe(total int64) types.Pagination {
	n := p.Normalize()
	totalPages := int(total) / n.PerPage
	if int(total)%n.PerPage != 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}
	return types.Pagination{
		Page:       n.Page,
		PerPage:    n.PerPage,
		Total:      total,
		TotalPages: totalPages,
	}
}
