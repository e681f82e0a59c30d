// Package query turns listing and update requests into parameterized SQL.
package query

import (
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/psds-microservice/returns-service/internal/model"
	"github.com/psds-microservice/returns-service/internal/patch"
	"github.com/psds-microservice/returns-service/internal/table"
)

// Statement is one SQL statement with its bound args.
type Statement struct {
	SQL  string
	Args []any
}

// ListQueries are the three reads behind one listing request. They share the
// same WHERE clause and argument prefix.
type ListQueries struct {
	Count Statement
	Stats Statement
	Page  Statement
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// BuildList builds the count, stats and page statements for p.
func BuildList(t table.Ident, p Params) (ListQueries, error) {
	p = p.Normalize()
	from := t.Qualified()

	count, err := toStatement(where(psql.Select("COUNT(*)").From(from), p))
	if err != nil {
		return ListQueries{}, fmt.Errorf("count query: %w", err)
	}
	stats, err := toStatement(where(psql.Select("status", "priority", "COUNT(*) AS cnt").From(from), p).
		GroupBy("status", "priority"))
	if err != nil {
		return ListQueries{}, fmt.Errorf("stats query: %w", err)
	}
	page, err := toStatement(where(psql.Select(model.Columns...).From(from), p).
		OrderBy(orderBy(p)).
		Suffix("LIMIT ? OFFSET ?", p.Limit, p.Offset()))
	if err != nil {
		return ListQueries{}, fmt.Errorf("page query: %w", err)
	}
	return ListQueries{Count: count, Stats: stats, Page: page}, nil
}

// BuildUpdate builds a single-row UPDATE ... RETURNING for c. last_follow_up
// is always stamped.
func BuildUpdate(t table.Ident, c patch.Change) (Statement, error) {
	b := psql.Update(t.Qualified())
	if c.Status != nil {
		b = b.Set("status", *c.Status)
	}
	if c.OMUpdate != nil {
		b = b.Set("om_update", nullable(*c.OMUpdate))
	}
	if c.DesignatedOMAgent != nil {
		b = b.Set("designated_om_agent", nullable(*c.DesignatedOMAgent))
	}
	b = b.Set("last_follow_up", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"ticket_link": c.TicketLink}).
		Suffix("RETURNING " + strings.Join(model.Columns, ", "))

	sql, args, err := b.ToSql()
	if err != nil {
		return Statement{}, fmt.Errorf("update query: %w", err)
	}
	return Statement{SQL: sql, Args: args}, nil
}

func where(b sq.SelectBuilder, p Params) sq.SelectBuilder {
	if p.DateFrom != "" {
		b = b.Where(sq.Expr("request_date::date >= ?", p.DateFrom))
	}
	if p.DateTo != "" {
		b = b.Where(sq.Expr("request_date::date <= ?", p.DateTo))
	}
	if p.Priority != "" {
		b = b.Where(sq.Eq{"priority": p.Priority})
	}
	if p.Status != "" {
		b = b.Where(sq.Eq{"status": p.Status})
	}
	if p.Customer != "" {
		b = b.Where(sq.ILike{"customer_name": "%" + p.Customer + "%"})
	}
	if p.SKU != "" {
		b = b.Where(sq.ILike{"sku": "%" + p.SKU + "%"})
	}
	return b
}

// orderBy keeps nulls last when descending and first when ascending.
func orderBy(p Params) string {
	if p.Ascending() {
		return p.SortColumn() + " ASC NULLS FIRST"
	}
	return p.SortColumn() + " DESC NULLS LAST"
}

func toStatement(b sq.SelectBuilder) (Statement, error) {
	sql, args, err := b.ToSql()
	if err != nil {
		return Statement{}, err
	}
	return Statement{SQL: sql, Args: args}, nil
}

func nullable(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
