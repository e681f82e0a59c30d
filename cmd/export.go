package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/psds-microservice/returns-service/internal/application"
	"github.com/psds-microservice/returns-service/internal/config"
	"github.com/psds-microservice/returns-service/internal/database"
	"github.com/psds-microservice/returns-service/internal/export"
	"github.com/psds-microservice/returns-service/internal/logger"
	"github.com/psds-microservice/returns-service/internal/query"
	"github.com/spf13/cobra"
)

var exportOpts struct {
	params query.Params
	output string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write one filtered page of returns as CSV",
	RunE:  runExport,
}

func init() {
	f := exportCmd.Flags()
	p := &exportOpts.params
	f.IntVar(&p.Page, "page", 1, "page number")
	f.IntVar(&p.Limit, "limit", query.DefaultLimit, "rows per page (10-200)")
	f.StringVar(&p.DateFrom, "date-from", "", "request date lower bound, inclusive (YYYY-MM-DD)")
	f.StringVar(&p.DateTo, "date-to", "", "request date upper bound, inclusive (YYYY-MM-DD)")
	f.StringVar(&p.Priority, "priority", "", "exact priority")
	f.StringVar(&p.Status, "status", "", "exact status")
	f.StringVar(&p.Customer, "customer", "", "customer name substring, case-insensitive")
	f.StringVar(&p.SKU, "sku", "", "SKU substring, case-insensitive")
	f.StringVar(&p.SortBy, "sort-by", query.DefaultSort, "sort column")
	f.StringVar(&p.SortOrder, "sort-order", "desc", "asc or desc")
	f.StringVarP(&exportOpts.output, "output", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logger.New(cmd.ErrOrStderr(), cfg.LogLevel)

	db, svc, err := application.OpenService(cfg, log)
	if err != nil {
		return err
	}
	if svc == nil {
		return errors.New("export: DATABASE_URL is not configured")
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	p := exportOpts.params.Normalize()
	res, err := svc.List(ctx, p)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	var out io.Writer = cmd.OutOrStdout()
	if exportOpts.output != "" {
		f, err := os.Create(exportOpts.output)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := export.WriteCSV(out, res.Rows); err != nil {
		return fmt.Errorf("export: write csv: %w", err)
	}

	from, to := query.Range(res.Total, p.Page, p.Limit)
	fmt.Fprintf(cmd.ErrOrStderr(), "Showing %d–%d of %d\n", from, to, res.Total)
	return nil
}
