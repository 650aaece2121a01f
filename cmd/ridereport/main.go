// Command ridereport prints the analysis report of a ride bookings file as
// JSON. It runs the same cleaning and statistics as the dashboard.
//
//	ridereport -file data/ncr_ride_bookings.csv -from 2024-03-01 -to 2024-03-31 \
//	    -vehicle Auto -vehicle Bike -status Completed -pretty
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"ridepulse/internal/config"
	"ridepulse/internal/dataprocessing"
	"ridepulse/internal/infrastructure"
	"ridepulse/internal/services"
	"ridepulse/pkg/contracts"
)

// listFlag collects a repeatable flag. Each value may also hold a comma
// separated list.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			*l = append(*l, part)
		}
	}
	return nil
}

type options struct {
	file     string
	from     string
	to       string
	vehicles listFlag
	statuses listFlag
	pretty   bool
	logLevel string
	version  bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("ridereport", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.file, "file", "", "ride bookings CSV (defaults to the configured dataset path)")
	fs.StringVar(&opts.from, "from", "", "first booking date to include, YYYY-MM-DD")
	fs.StringVar(&opts.to, "to", "", "last booking date to include, YYYY-MM-DD")
	fs.Var(&opts.vehicles, "vehicle", "vehicle type to include (repeatable)")
	fs.Var(&opts.statuses, "status", "booking status to include (repeatable)")
	fs.BoolVar(&opts.pretty, "pretty", false, "indent the JSON output")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// selection converts the filter flags. A single date bound is ignored, as
// it is by the dashboard.
func (o *options) selection() (services.Selection, error) {
	var sel services.Selection
	var err error
	if o.from != "" {
		if sel.From, err = time.Parse(dataprocessing.DateLayout, o.from); err != nil {
			return sel, fmt.Errorf("-from: %w", err)
		}
	}
	if o.to != "" {
		if sel.To, err = time.Parse(dataprocessing.DateLayout, o.to); err != nil {
			return sel, fmt.Errorf("-to: %w", err)
		}
	}
	if len(o.vehicles) > 0 {
		sel.Vehicles = o.vehicles
	}
	if len(o.statuses) > 0 {
		sel.Statuses = o.statuses
	}
	return sel, sel.Validate()
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	logger := infrastructure.NewLogger(stderr, opts.logLevel)

	sel, err := opts.selection()
	if err != nil {
		logger.Error("Invalid filter", slog.String("error", err.Error()))
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", slog.String("error", err.Error()))
		return 1
	}
	if opts.file != "" {
		cfg.Dataset.Path = opts.file
	}

	svc := services.NewDashboardService(cfg, nil, nil, nil, logger)
	report, err := svc.Report(ctx, sel)
	if err != nil {
		logger.Error("Failed to build report",
			slog.String("path", cfg.Dataset.Path),
			slog.String("reason", services.ErrorCode(err)),
			slog.String("error", err.Error()))
		return 1
	}
	if missing := report.Unavailable(); len(missing) > 0 {
		logger.Warn("Report has unavailable sections", slog.Any("sections", missing))
	}

	enc := json.NewEncoder(stdout)
	if opts.pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		logger.Error("Failed to write report", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
