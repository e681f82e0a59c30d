package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/psds-microservice/returns-service/internal/database"
	"github.com/psds-microservice/returns-service/internal/errs"
	"github.com/psds-microservice/returns-service/internal/model"
	"github.com/psds-microservice/returns-service/internal/patch"
	"github.com/psds-microservice/returns-service/internal/query"
	"github.com/psds-microservice/returns-service/internal/table"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ReturnServicer is what the HTTP handlers and the export command depend on.
type ReturnServicer interface {
	List(ctx context.Context, p query.Params) (*model.ListResult, error)
	Update(ctx context.Context, c patch.Change) (*model.Return, error)
	FilterOptions(ctx context.Context) (*model.FilterOptions, error)
	Ping(ctx context.Context) error
}

type ReturnService struct {
	db    *gorm.DB
	conn  database.DBTX
	table table.Ident
}

// NewReturnService uses db for the simple distinct lookups and its underlying
// *sql.DB for the hand-built listing and update statements.
func NewReturnService(db *gorm.DB, t table.Ident) (*ReturnService, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("return service: %w", err)
	}
	return &ReturnService{db: db, conn: sqlDB, table: t}, nil
}

// List runs count, stats and page reads concurrently over the same filter.
// Any failing read fails the whole listing.
func (s *ReturnService) List(ctx context.Context, p query.Params) (*model.ListResult, error) {
	q, err := query.BuildList(s.table, p)
	if err != nil {
		return nil, err
	}

	var (
		total int
		stats = model.Stats{ByStatus: map[string]int{}, ByPriority: map[string]int{}}
		rows  = []model.Return{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.conn.QueryRowContext(gctx, q.Count.SQL, q.Count.Args...).Scan(&total); err != nil {
			return fmt.Errorf("count returns: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return s.loadStats(gctx, q.Stats, &stats)
	})
	g.Go(func() error {
		var err error
		rows, err = s.loadPage(gctx, q.Page)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats.TotalReturns = total
	return &model.ListResult{Rows: rows, Total: total, Stats: stats}, nil
}

func (s *ReturnService) loadStats(ctx context.Context, st query.Statement, out *model.Stats) error {
	rs, err := s.conn.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return fmt.Errorf("return stats: %w", err)
	}
	defer rs.Close()
	for rs.Next() {
		var status, priority sql.NullString
		var cnt int
		if err := rs.Scan(&status, &priority, &cnt); err != nil {
			return fmt.Errorf("return stats: %w", err)
		}
		out.ByStatus[status.String] += cnt
		out.ByPriority[priority.String] += cnt
	}
	if err := rs.Err(); err != nil {
		return fmt.Errorf("return stats: %w", err)
	}
	return nil
}

func (s *ReturnService) loadPage(ctx context.Context, st query.Statement) ([]model.Return, error) {
	rs, err := s.conn.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	defer rs.Close()
	out := []model.Return{}
	for rs.Next() {
		r, err := scanReturn(rs)
		if err != nil {
			return nil, fmt.Errorf("list returns: %w", err)
		}
		out = append(out, r)
	}
	if err := rs.Err(); err != nil {
		return nil, fmt.Errorf("list returns: %w", err)
	}
	return out, nil
}

// Update applies c to the row keyed by c.TicketLink and returns the row as
// stored. errs.ErrReturnNotFound when nothing matched.
func (s *ReturnService) Update(ctx context.Context, c patch.Change) (*model.Return, error) {
	st, err := query.BuildUpdate(s.table, c)
	if err != nil {
		return nil, err
	}
	rs, err := s.conn.QueryContext(ctx, st.SQL, st.Args...)
	if err != nil {
		return nil, fmt.Errorf("update return: %w", err)
	}
	defer rs.Close()
	if !rs.Next() {
		if err := rs.Err(); err != nil {
			return nil, fmt.Errorf("update return: %w", err)
		}
		return nil, errs.ErrReturnNotFound
	}
	r, err := scanReturn(rs)
	if err != nil {
		return nil, fmt.Errorf("update return: %w", err)
	}
	return &r, nil
}

// FilterOptions returns the distinct non-empty priorities and statuses in the table.
func (s *ReturnService) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	out := &model.FilterOptions{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Priorities, err = s.distinct(gctx, "priority")
		return err
	})
	g.Go(func() error {
		var err error
		out.Statuses, err = s.distinct(gctx, "status")
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// distinct is only called with fixed column names.
func (s *ReturnService) distinct(ctx context.Context, column string) ([]string, error) {
	var values []string
	err := s.db.WithContext(ctx).
		Table(s.table.Path()).
		Where(column + " IS NOT NULL AND " + column + " <> ''").
		Distinct().
		Order(column).
		Pluck(column, &values).Error
	if err != nil {
		return nil, fmt.Errorf("distinct %s: %w", column, err)
	}
	if values == nil {
		values = []string{}
	}
	return values, nil
}

func (s *ReturnService) Ping(ctx context.Context) error {
	return database.Ping(ctx, s.db)
}
