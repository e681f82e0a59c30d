package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/psds-microservice/returns-service/internal/errs"
	"github.com/psds-microservice/returns-service/internal/model"
	"github.com/psds-microservice/returns-service/internal/patch"
	"github.com/psds-microservice/returns-service/internal/query"
	"github.com/psds-microservice/returns-service/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newServiceWithMock(t *testing.T, tbl table.Ident) (*ReturnService, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:               gormlogger.Discard,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	svc, err := NewReturnService(db, tbl)
	require.NoError(t, err)
	return svc, mock
}

func returnRows() *sqlmock.Rows {
	return sqlmock.NewRows(model.Columns)
}

func TestList_Success(t *testing.T) {
	svc, mock := newServiceWithMock(t, table.Resolve("", ""))
	mock.MatchExpectationsInOrder(false)

	requested := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`^SELECT COUNT\(\*\) FROM "oem_returns" WHERE priority = \$1 AND status = \$2$`).
		WithArgs("High", "Open").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`^SELECT status, priority, COUNT\(\*\) AS cnt FROM "oem_returns" WHERE priority = \$1 AND status = \$2 GROUP BY status, priority$`).
		WithArgs("High", "Open").
		WillReturnRows(sqlmock.NewRows([]string{"status", "priority", "cnt"}).
			AddRow("Open", "High", 3))
	mock.ExpectQuery(`^SELECT ticket_link, .* FROM "oem_returns" WHERE priority = \$1 AND status = \$2 ORDER BY request_date DESC NULLS LAST LIMIT \$3 OFFSET \$4$`).
		WithArgs("High", "Open", 50, 0).
		WillReturnRows(returnRows().
			AddRow("T-1", "1001", "SKU-1", "Acme", "High", "Refund", "Open", nil, nil, requested, nil).
			AddRow("T-2", "", "SKU-2", "Beta", "High", "Swap", "Open", "called", requested, nil, "Kim"))

	res, err := svc.List(context.Background(), query.Params{Page: 1, Limit: 50, Priority: "High", Status: "Open"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.Stats.TotalReturns)
	assert.Equal(t, map[string]int{"Open": 3}, res.Stats.ByStatus)
	assert.Equal(t, map[string]int{"High": 3}, res.Stats.ByPriority)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "T-1", res.Rows[0].TicketLink)
	assert.Nil(t, res.Rows[0].OMUpdate)
	assert.Equal(t, "2024-01-05T12:00:00Z", *res.Rows[0].RequestDate)
	assert.Equal(t, "", res.Rows[1].OrderNumber)
	assert.Equal(t, "Kim", *res.Rows[1].DesignatedOMAgent)
}

func TestList_StatsAggregation(t *testing.T) {
	svc, mock := newServiceWithMock(t, table.Resolve("", ""))
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`^SELECT COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
	mock.ExpectQuery(`^SELECT status, priority, COUNT`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "priority", "cnt"}).
			AddRow("Open", "High", 4).
			AddRow("Open", "Low", 1).
			AddRow("Closed", "High", 2).
			AddRow(nil, "Low", 3))
	mock.ExpectQuery(`^SELECT ticket_link`).
		WillReturnRows(returnRows())

	res, err := svc.List(context.Background(), query.Params{Page: 1, Limit: 50})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"Open": 5, "Closed": 2, "": 3}, res.Stats.ByStatus)
	assert.Equal(t, map[string]int{"High": 6, "Low": 4}, res.Stats.ByPriority)
	assert.NotNil(t, res.Rows)
	assert.Empty(t, res.Rows)
}

func TestList_OutOfRangePageIsEmpty(t *testing.T) {
	svc, mock := newServiceWithMock(t, table.Resolve("", ""))
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`^SELECT COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`^SELECT status, priority, COUNT`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "priority", "cnt"}))
	mock.ExpectQuery(`^SELECT ticket_link`).
		WithArgs(50, 4950).
		WillReturnRows(returnRows())

	res, err := svc.List(context.Background(), query.Params{Page: 100, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
	assert.Empty(t, res.Rows)
}

func TestList_AnyFailureFailsWhole(t *testing.T) {
	svc, mock := newServiceWithMock(t, table.Resolve("", ""))
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`^SELECT COUNT\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`^SELECT status, priority, COUNT`).
		WillReturnError(errors.New("relation does not exist"))
	mock.ExpectQuery(`^SELECT ticket_link`).
		WillReturnRows(returnRows())

	res, err := svc.List(context.Background(), query.Params{Page: 1, Limit: 50})
	assert.Nil(t, res)
	assert.ErrorContains(t, err, "relation does not exist")
}

func TestUpdate_Success(t *testing.T) {
	svc, mock := newServiceWithMock(t, table.Resolve("om_dashboard_ai", "customer_support"))

	stamped := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	status := "Closed"
	var agent *string

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE "customer_support"."om_dashboard_ai" SET status = $1, designated_om_agent = $2, last_follow_up = CURRENT_TIMESTAMP WHERE ticket_link = $3 RETURNING ticket_link,`)).
		WithArgs("Closed", nil, "T-1").
		WillReturnRows(returnRows().
			AddRow("T-1", "1001", "SKU-1", "Acme", "High", "Refund", "Closed", "note", stamped, nil, nil))

	got, err := svc.Update(context.Background(), patch.Change{TicketLink: "T-1", Status: &status, DesignatedOMAgent: &agent})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, "Closed", got.Status)
	assert.Equal(t, "note", *got.OMUpdate)
	assert.Equal(t, "2024-06-01T08:00:00Z", *got.LastFollowUp)
	assert.Nil(t, got.DesignatedOMAgent)
}

func TestUpdate_NotFound(t *testing.T) {
	svc, mock := newServiceWithMock(t, table.Resolve("", ""))
	status := "Open"

	mock.ExpectQuery(`^UPDATE "oem_returns" SET status = \$1`).
		WithArgs("Open", "missing").
		WillReturnRows(returnRows())

	got, err := svc.Update(context.Background(), patch.Change{TicketLink: "missing", Status: &status})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, errs.ErrReturnNotFound)
}

func TestUpdate_DBError(t *testing.T) {
	svc, mock := newServiceWithMock(t, table.Resolve("", ""))
	status := "Open"

	mock.ExpectQuery(`^UPDATE "oem_returns"`).
		WillReturnError(errors.New("db down"))

	_, err := svc.Update(context.Background(), patch.Change{TicketLink: "T-1", Status: &status})
	require.Error(t, err)
	assert.NotErrorIs(t, err, errs.ErrReturnNotFound)
	assert.Regexp(t, `update return: .*db down`, err.Error())
}

func TestFilterOptions(t *testing.T) {
	svc, mock := newServiceWithMock(t, table.Resolve("", ""))
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`SELECT DISTINCT "priority" FROM "oem_returns" WHERE priority IS NOT NULL AND priority <> '' ORDER BY priority`).
		WillReturnRows(sqlmock.NewRows([]string{"priority"}).AddRow("High").AddRow("Low"))
	mock.ExpectQuery(`SELECT DISTINCT "status" FROM "oem_returns" WHERE status IS NOT NULL AND status <> '' ORDER BY status`).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	got, err := svc.FilterOptions(context.Background())
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, []string{"High", "Low"}, got.Priorities)
	assert.NotNil(t, got.Statuses)
	assert.Empty(t, got.Statuses)
}

func TestFilterOptions_Error(t *testing.T) {
	svc, mock := newServiceWithMock(t, table.Resolve("", ""))
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`SELECT DISTINCT "priority"`).WillReturnError(errors.New("timeout"))
	mock.ExpectQuery(`SELECT DISTINCT "status"`).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("Open"))

	_, err := svc.FilterOptions(context.Background())
	assert.ErrorContains(t, err, "timeout")
}
