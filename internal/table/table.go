// Package table resolves the configured schema/table pair into identifiers
// that are safe to splice into SQL text.
package table

import (
	"regexp"

	"github.com/lib/pq"
)

// DefaultName is used when TABLE_NAME is unset or fails validation.
const DefaultName = "oem_returns"

var identRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Ident is a validated table reference. The zero value is not usable; build one with Resolve.
type Ident struct {
	Schema string
	Name   string
}

// Resolve never fails: an invalid table name falls back to DefaultName and an
// invalid schema is dropped.
func Resolve(name, schema string) Ident {
	return Ident{
		Schema: sanitize(schema),
		Name:   orDefault(sanitize(name), DefaultName),
	}
}

// Qualified returns the quoted identifier for raw SQL, e.g. "customer_support"."om_dashboard_ai".
func (t Ident) Qualified() string {
	if t.Schema != "" {
		return pq.QuoteIdentifier(t.Schema) + "." + pq.QuoteIdentifier(t.Name)
	}
	return pq.QuoteIdentifier(t.Name)
}

// Path returns the unquoted dotted form; gorm quotes each part itself.
func (t Ident) Path() string {
	if t.Schema != "" {
		return t.Schema + "." + t.Name
	}
	return t.Name
}

func (t Ident) String() string { return t.Qualified() }

func sanitize(s string) string {
	if identRe.MatchString(s) {
		return s
	}
	return ""
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
