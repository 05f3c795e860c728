// Package main implements posctl, an offline companion CLI: sales rollups
// over exported sale JSON, identifier checks and unit label rendering.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"retailpos/internal/domain/analytics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	timezone string
	cal      *analytics.Aggregator
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "posctl",
		Short:        "Offline tools for the retailpos service",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("load .env: %w", err)
			}
			tz := opts.timezone
			if tz == "" {
				tz = os.Getenv("APP_TIMEZONE")
			}
			loc, err := loadLocation(tz)
			if err != nil {
				return err
			}
			opts.cal = analytics.New(loc)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.timezone, "tz", "", "IANA time zone for calendar dates (default $APP_TIMEZONE or local)")

	root.AddCommand(
		newStatsCmd(opts),
		newProductsCmd(opts),
		newIDCmd(),
		newLabelCmd(),
	)
	return root
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("time zone %q: %w", name, err)
	}
	return loc, nil
}

func readRecordsFile(path string) ([]analytics.SaleRecord, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return analytics.ReadRecords(r)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
