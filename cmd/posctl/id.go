package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"retailpos/internal/domain/catalogs/product"
	"retailpos/internal/domain/identifier"
)

func newIDCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "id",
		Short: "Format, validate and generate product identifiers",
	}
	cmd.AddCommand(newIDFormatCmd(), newIDCheckCmd(), newIDGenerateCmd())
	return cmd
}

func newIDFormatCmd() *cobra.Command {
	var unique bool
	cmd := &cobra.Command{
		Use:   "format VALUE",
		Short: "Print the canonical form of an identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := identifier.FormatCommonID(args[0])
			if unique {
				out = identifier.FormatUniqueID(args[0])
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&unique, "unique", false, "format as a unique id")
	return cmd
}

type checkOutput struct {
	CommonID *identifier.Result `json:"commonId,omitempty"`
	UniqueID *identifier.Result `json:"uniqueId,omitempty"`
}

func newIDCheckCmd() *cobra.Command {
	var (
		commonID string
		uniqueID string
		previous string
		used     []string
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a common id and optionally a unique id against used ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if commonID == "" && uniqueID == "" {
				return fmt.Errorf("--common or --unique is required")
			}

			var out checkOutput
			if commonID != "" {
				r := identifier.ValidateCommonID(commonID)
				out.CommonID = &r
			}
			if uniqueID != "" {
				m := identifier.NewManager(identifier.NewUsedIDs(used...))
				var r identifier.Result
				if commonID != "" {
					r = m.ValidateUniqueIDFor(commonID, uniqueID, previous)
				} else {
					r = m.ValidateUniqueID(uniqueID, previous)
				}
				out.UniqueID = &r
			}

			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if (out.CommonID != nil && !out.CommonID.Valid) || (out.UniqueID != nil && !out.UniqueID.Valid) {
				return fmt.Errorf("identifier check failed")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&commonID, "common", "", "common id")
	cmd.Flags().StringVar(&uniqueID, "unique", "", "unique id")
	cmd.Flags().StringVar(&previous, "previous", "", "unique id being edited, treated as free")
	cmd.Flags().StringSliceVar(&used, "used", nil, "unique ids already taken")
	return cmd
}

func newIDGenerateCmd() *cobra.Command {
	var (
		commonID string
		count    int
		used     []string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate free unique ids for a common id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if r := identifier.ValidateCommonID(commonID); !r.Valid {
				return fmt.Errorf("%s", r.Message)
			}
			if count < 1 || count > product.MaxUnitsPerBatch {
				return fmt.Errorf("--count must be between 1 and %d", product.MaxUnitsPerBatch)
			}

			m := identifier.NewManager(identifier.NewUsedIDs(used...))
			for i := 0; i < count; i++ {
				uid, err := m.GenerateUniqueID(commonID)
				if err != nil {
					return err
				}
				m.AddUsedUniqueID(uid)
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), uid); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&commonID, "common", "", "common id")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "how many ids")
	cmd.Flags().StringSliceVar(&used, "used", nil, "unique ids already taken")
	_ = cmd.MarkFlagRequired("common")
	return cmd
}
