package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/receiptmatch/internal/export"
)

var outFlag string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download matched receipt documents for a period",
	RunE: func(cmd *cobra.Command, _ []string) error {
		r, err := rangeFromFlags()
		if err != nil {
			return err
		}

		if err := os.MkdirAll(outFlag, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}

		items, err := svc.Export.Export(cmd.Context(), r, outFlag)
		if err != nil {
			return err
		}

		if err := export.WriteIndex(outFlag, items); err != nil {
			return err
		}

		fmt.Print(export.Summary(items))
		fmt.Printf("exported %d matches to %s\n", len(items), outFlag)

		return nil
	},
}

func init() {
	addRangeFlags(exportCmd)
	exportCmd.Flags().StringVarP(&outFlag, "out", "o", "export", "Directory to write documents into")
}
