package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"retailpos/internal/domain/analytics"
)

type windowFlags struct {
	file string
	from string
	to   string
}

func (f *windowFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", "", "sale records JSON array, - for stdin")
	cmd.Flags().StringVar(&f.from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "last day, YYYY-MM-DD")
	_ = cmd.MarkFlagRequired("file")
}

// window resolves the date flags. Missing ends default to today.
func (f *windowFlags) window(cal *analytics.Aggregator, now time.Time) (time.Time, time.Time, error) {
	start := cal.StartOfDay(now)
	end := start
	if f.from != "" {
		t, ok := cal.ParseDate(f.from)
		if !ok {
			return start, end, fmt.Errorf("invalid --from %q, expected YYYY-MM-DD", f.from)
		}
		start = t
	}
	if f.to != "" {
		t, ok := cal.ParseDate(f.to)
		if !ok {
			return start, end, fmt.Errorf("invalid --to %q, expected YYYY-MM-DD", f.to)
		}
		end = t
	}
	if start.After(end) {
		return start, end, fmt.Errorf("--from must not be after --to")
	}
	return start, end, nil
}

func (f *windowFlags) windowed() bool { return f.from != "" || f.to != "" }

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var f windowFlags
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Sales totals for a date range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecordsFile(f.file)
			if err != nil {
				return err
			}
			start, end, err := f.window(opts.cal, time.Now())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), opts.cal.CalculateStats(records, start, end))
		},
	}
	f.bind(cmd)
	return cmd
}

type productsReport struct {
	Products []analytics.ProductStat `json:"products"`
	Summary  analytics.Summary       `json:"summary"`
}

func newProductsCmd(opts *rootOptions) *cobra.Command {
	var f windowFlags
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Per-product breakdown, all records unless a range is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := readRecordsFile(f.file)
			if err != nil {
				return err
			}
			if f.windowed() {
				start, end, err := f.window(opts.cal, time.Now())
				if err != nil {
					return err
				}
				records = opts.cal.FilterWindow(records, start, end)
			}

			stats := opts.cal.BuildProductStats(records)
			if stats == nil {
				stats = []analytics.ProductStat{}
			}
			return writeJSON(cmd.OutOrStdout(), productsReport{Products: stats, Summary: analytics.SummaryOf(stats)})
		},
	}
	f.bind(cmd)
	return cmd
}
