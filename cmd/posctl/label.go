package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"retailpos/internal/infrastructure/label"
)

func newLabelCmd() *cobra.Command {
	var (
		uniqueID string
		out      string
		size     int
		level    string
	)
	cmd := &cobra.Command{
		Use:   "label",
		Short: "Render a unit's unique id as a QR code PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := label.NewGenerator(size, level)
			if err := gen.WriteFile(uniqueID, out); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dpx)\n", out, gen.Size())
			return err
		},
	}
	cmd.Flags().StringVar(&uniqueID, "unique-id", "", "unit unique id")
	cmd.Flags().StringVarP(&out, "out", "o", "label.png", "output file")
	cmd.Flags().IntVar(&size, "size", label.DefaultSize, "image size in pixels")
	cmd.Flags().StringVar(&level, "level", "M", "error correction level L, M, Q or H")
	_ = cmd.MarkFlagRequired("unique-id")
	return cmd
}
