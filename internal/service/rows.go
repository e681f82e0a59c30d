package service

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/psds-microservice/returns-service/internal/model"
)

// scanReturn reads one row selected with model.Columns.
func scanReturn(rows *sql.Rows) (model.Return, error) {
	vals := make([]any, len(model.Columns))
	ptrs := make([]any, len(vals))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return model.Return{}, err
	}
	return mapRow(vals), nil
}

// mapRow converts raw column values, in model.Columns order, to a Return.
// Required columns coalesce NULL to ""; nullable columns keep it.
func mapRow(v []any) model.Return {
	return model.Return{
		TicketLink:        orEmpty(stringify(v[0])),
		OrderNumber:       orEmpty(stringify(v[1])),
		SKU:               orEmpty(stringify(v[2])),
		CustomerName:      orEmpty(stringify(v[3])),
		Priority:          orEmpty(stringify(v[4])),
		OMRequest:         orEmpty(stringify(v[5])),
		Status:            orEmpty(stringify(v[6])),
		OMUpdate:          stringify(v[7]),
		LastFollowUp:      stringify(v[8]),
		RequestDate:       stringify(v[9]),
		DesignatedOMAgent: stringify(v[10]),
	}
}

func stringify(v any) *string {
	var s string
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		s = t
	case []byte:
		s = string(t)
	case time.Time:
		s = t.Format(time.RFC3339Nano)
	case fmt.Stringer:
		s = t.String()
	default:
		s = fmt.Sprint(t)
	}
	return &s
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
