package stats

import "github.com/upskillway/crm/core"

// Category is one dashboard metric category.
type Category string

const (
	CategoryLeads    Category = "leads"
	CategoryUsers    Category = "users"
	CategoryColleges Category = "colleges"
	CategoryTrainers Category = "trainers"
)

var AllCategories = []Category{CategoryLeads, CategoryUsers, CategoryColleges, CategoryTrainers}

type (
	// Record is one entity row as listed by a category endpoint. Only the
	// fields the classifiers look at are decoded.
	Record struct {
		Status   string `json:"status"`
		IsActive *bool  `json:"is_active"`
	}

	// Pagination is the metadata a list endpoint may attach to a page.
	// Total, when present, is the authoritative server-side row count.
	Pagination struct {
		Total   interface{} `json:"total"`
		Page    interface{} `json:"page"`
		Limit   interface{} `json:"limit"`
		HasNext bool        `json:"hasNext"`
		HasPrev bool        `json:"hasPrev"`
	}

	// ListResponse is the page actually returned by one category endpoint.
	ListResponse struct {
		Success    bool        `json:"success"`
		Data       []Record    `json:"data"`
		Pagination *Pagination `json:"pagination"`
	}

	// Stat is one aggregated dashboard metric. Sub-counts are approximate
	// when extrapolated from a partial page; their sum need not equal Total.
	Stat struct {
		Total     int            `json:"total"`
		SubCounts map[string]int `json:"sub_counts"`
	}

	// Dashboard is the full statistics object rendered by the admin
	// dashboard, one Stat per category.
	Dashboard map[Category]Stat
)

// HasTotal reports whether the response carries an authoritative total.
func (lr ListResponse) HasTotal() bool {
	return lr.Pagination != nil && lr.Pagination.Total != nil
}

// AuthoritativeTotal returns pagination.total coerced to an int.
func (lr ListResponse) AuthoritativeTotal() int {
	if !lr.HasTotal() {
		return 0
	}
	return core.CoerceInt(lr.Pagination.Total)
}
