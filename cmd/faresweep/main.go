package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/fabianMendez/faresweep"
	"github.com/fabianMendez/faresweep/pkg/config"
	"github.com/fabianMendez/faresweep/pkg/date"
	"github.com/fabianMendez/faresweep/pkg/email"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "faresweep",
		Short:         "faresweep collects flight offers over a window of departure days",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newSweepCmd(&verbose))

	return root
}

func newSweepCmd(verbose *bool) *cobra.Command {
	var (
		start   string
		days    int
		format  string
		output  string
		emailTo []string
	)

	cmd := &cobra.Command{
		Use:   "sweep ROUTE [ROUTE...]",
		Short: "Search offers for every day of the window, one route per argument (e.g. JFK-LHR)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(os.Stderr, *verbose)
			return runSweep(cmd.Context(), logger, args, start, days, format, output, emailTo)
		},
	}

	cmd.Flags().StringVar(&start, "start", date.Format(time.Now()), "first departure date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&days, "days", 1, "number of departure days to sweep")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write output to a file instead of stdout")
	cmd.Flags().StringSliceVar(&emailTo, "email-to", nil, "email the results to these addresses")

	return cmd
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
}

func runSweep(ctx context.Context, logger *log.Logger, args []string, start string, days int, format, output string, emailTo []string) error {
	routes, err := parseRoutes(args)
	if err != nil {
		return err
	}

	startDate, err := date.Parse(start)
	if err != nil {
		return err
	}

	if days < 1 {
		return fmt.Errorf("days must be at least 1, got %d", days)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Info("starting sweep", "run_id", uuid.NewString(),
		"routes", len(routes), "start", start, "days", days)

	auth := faresweep.NewClientCredentials(cfg.AmadeusURL, cfg.ClientID, cfg.ClientSecret)
	token, err := auth.Token(ctx)
	if err != nil {
		return err
	}

	client := faresweep.NewClient(cfg.AmadeusURL, token, logger)
	client.SetRetryPolicy(cfg.MaxAttempts, cfg.BackoffInterval)
	client.SetPaceInterval(cfg.PaceInterval)

	cache := faresweep.NewCache()
	sweeper := faresweep.NewSweeper(client, cache, cfg.CurrencyCode, logger)

	records, err := sweeper.SweepRoutes(ctx, routes, *startDate, days)
	if err != nil {
		return err
	}

	table := faresweep.NewTable(records)
	logger.Info("sweep finished", "rows", table.Len(), "requests", cache.Len())

	for ccy, record := range table.CheapestByCurrency() {
		logger.Info("cheapest offer", "currency", ccy,
			"price", formatMoney(record.Price.InexactFloat64()),
			"airline", record.Airline, "departure", record.Departure)
	}

	w := io.Writer(os.Stdout)
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "table":
		err = renderText(w, table)
	case "csv":
		err = table.WriteCSV(w)
	case "json":
		err = table.WriteJSON(w)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}

	if len(emailTo) > 0 {
		sender, err := email.NewSenderFromEnv()
		if err != nil {
			return err
		}

		subject := fmt.Sprintf("Flight offers %s (%d days)", strings.Join(args, " "), days)
		if err := sender.SendTable(ctx, subject, table, emailTo...); err != nil {
			return err
		}
		logger.Info("results emailed", "recipients", len(emailTo))
	}

	return nil
}

func parseRoutes(args []string) ([]faresweep.Route, error) {
	routes := make([]faresweep.Route, 0, len(args))
	for _, arg := range args {
		parts := strings.Split(arg, "-")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid route %q, expected ORIGIN-DESTINATION", arg)
		}
		routes = append(routes, faresweep.Route{
			Origin:      strings.ToUpper(parts[0]),
			Destination: strings.ToUpper(parts[1]),
		})
	}
	return routes, nil
}

func formatMoney(n float64) string { return "$ " + humanize.FormatFloat("#,###.##", n) }

func renderText(w io.Writer, table *faresweep.Table) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)

	fmt.Fprintln(tw, strings.Join(table.Columns(), "\t"))
	for i := 0; i < table.Len(); i++ {
		fmt.Fprintln(tw, strings.Join(table.Row(i), "\t"))
	}

	return tw.Flush()
}
