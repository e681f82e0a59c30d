package query

import (
	"net/url"
	"strconv"
)

const (
	DefaultLimit = 50
	MinLimit     = 10
	MaxLimit     = 200

	DefaultSort = "request_date"
)

// sortable is the ORDER BY allow-list. Nothing outside it ever reaches SQL text.
var sortable = map[string]string{
	"ticket_link":         "ticket_link",
	"order_number":        "order_number",
	"sku":                 "sku",
	"customer_name":       "customer_name",
	"priority":            "priority",
	"status":              "status",
	"request_date":        "request_date",
	"last_follow_up":      "last_follow_up",
	"om_update":           "om_update",
	"designated_om_agent": "designated_om_agent",
}

// Params is a listing request. Empty filter strings mean "no filter".
type Params struct {
	Page  int
	Limit int

	DateFrom string
	DateTo   string
	Priority string
	Status   string
	Customer string
	SKU      string

	SortBy    string
	SortOrder string
}

// FromValues reads the query string of GET /api/returns and normalizes it.
func FromValues(v url.Values) Params {
	p := Params{
		Page:      atoiOr(v.Get("page"), 1),
		Limit:     atoiOr(v.Get("limit"), DefaultLimit),
		DateFrom:  v.Get("dateFrom"),
		DateTo:    v.Get("dateTo"),
		Priority:  v.Get("priority"),
		Status:    v.Get("status"),
		Customer:  v.Get("customer"),
		SKU:       v.Get("sku"),
		SortBy:    v.Get("sortBy"),
		SortOrder: v.Get("sortOrder"),
	}
	return p.Normalize()
}

// Normalize clamps page to >= 1 and limit to [MinLimit, MaxLimit].
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	p.Limit = min(MaxLimit, max(MinLimit, p.Limit))
	return p
}

// SortColumn resolves SortBy through the allow-list, falling back to request_date.
func (p Params) SortColumn() string {
	if col, ok := sortable[p.SortBy]; ok {
		return col
	}
	return DefaultSort
}

// Ascending is true only for the exact value "asc".
func (p Params) Ascending() bool {
	return p.SortOrder == "asc"
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Range is the 1-based inclusive row range shown for a page, [0,0] when empty.
func Range(total, page, limit int) (from, to int) {
	if total <= 0 {
		return 0, 0
	}
	return (page-1)*limit + 1, min(page*limit, total)
}

func atoiOr(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
