// Package export writes return rows as CSV in the dashboard's download layout.
package export

import (
	"encoding/csv"
	"io"

	"github.com/psds-microservice/returns-service/internal/model"
)

// Headers are the human-readable column titles, in model.Columns order.
var Headers = []string{
	"Ticket link",
	"Order #",
	"SKU",
	"Customer",
	"Priority",
	"OM Request",
	"Status",
	"OM Update",
	"Last follow up",
	"Request date",
	"Designated OM agent",
}

// WriteCSV writes a header line and one line per row. Null values are written
// as empty fields.
func WriteCSV(w io.Writer, rows []model.Return) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Headers); err != nil {
		return err
	}
	rec := make([]string, len(Headers))
	for _, r := range rows {
		for i, v := range r.Values() {
			rec[i] = ""
			if v != nil {
				rec[i] = *v
			}
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
