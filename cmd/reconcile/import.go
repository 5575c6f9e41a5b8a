package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/receiptmatch/internal/importer"
	"github.com/MrJamesThe3rd/receiptmatch/internal/transaction"
)

var (
	bankFlag  string
	fileFlag  string
	forceFlag bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load bank statements or receipt exports",
}

var importTransactionsCmd = &cobra.Command{
	Use:   "transactions",
	Short: "Import a bank CSV statement",
	RunE: func(cmd *cobra.Command, _ []string) error {
		bank := importer.Bank(strings.ToLower(bankFlag))
		if !slices.Contains(importer.Banks, bank) {
			return fmt.Errorf("unknown bank %q, expected one of %v", bankFlag, importer.Banks)
		}

		f, err := os.Open(fileFlag)
		if err != nil {
			return err
		}
		defer f.Close()

		params, err := svc.Import.Import(bank, f)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", fileFlag, err)
		}

		result, err := svc.Transactions.ImportBatch(cmd.Context(), params)
		if err != nil {
			return err
		}

		for _, row := range result.Invalid {
			fmt.Fprintf(os.Stderr, "  ! row %d: %v\n", row.Index, row.Err)
		}

		if len(result.Conflicts) == 0 {
			fmt.Printf("imported %d transactions\n", len(result.Imported))
			return nil
		}

		for _, c := range result.Conflicts {
			fmt.Printf("  duplicate: %s %s %s\n", c.Incoming.Date.Format("2006-01-02"), c.Incoming.Counterparty, c.Existing.ID)
		}

		toCreate := result.New
		if forceFlag {
			toCreate = make([]transaction.CreateParams, 0, len(result.New)+len(result.Conflicts))
			toCreate = append(toCreate, result.New...)

			for _, c := range result.Conflicts {
				toCreate = append(toCreate, c.Incoming)
			}
		}

		txs, err := svc.Transactions.CreateBatch(cmd.Context(), toCreate)
		if err != nil {
			return err
		}

		fmt.Printf("imported %d transactions, %d duplicates %s\n", len(txs), len(result.Conflicts), skippedOrForced())

		return nil
	},
}

var importReceiptsCmd = &cobra.Command{
	Use:   "receipts",
	Short: "Import a receipt extraction CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		f, err := os.Open(fileFlag)
		if err != nil {
			return err
		}
		defer f.Close()

		parsed, err := svc.Import.ImportReceipts(f)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", fileFlag, err)
		}

		for _, row := range parsed.Invalid {
			fmt.Fprintf(os.Stderr, "  ! line %d: %v\n", row.Line, row.Err)
		}

		result, err := svc.Receipts.Import(cmd.Context(), parsed.Receipts)
		if err != nil {
			return err
		}

		for _, row := range result.Invalid {
			fmt.Fprintf(os.Stderr, "  ! row %d: %v\n", row.Index, row.Err)
		}

		fmt.Printf("imported %d receipts, skipped %d already known\n", len(result.Imported), result.Skipped)

		return nil
	},
}

func skippedOrForced() string {
	if forceFlag {
		return "imported anyway"
	}

	return "skipped"
}

func init() {
	importTransactionsCmd.Flags().StringVar(&bankFlag, "bank", "", "Bank the statement comes from (dnb, nordea, cgd)")
	importTransactionsCmd.Flags().BoolVar(&forceFlag, "force", false, "Also import rows that look like duplicates")
	importTransactionsCmd.MarkFlagRequired("bank")

	for _, c := range []*cobra.Command{importTransactionsCmd, importReceiptsCmd} {
		c.Flags().StringVarP(&fileFlag, "file", "f", "", "CSV file to import")
		c.MarkFlagRequired("file")
	}

	importCmd.AddCommand(importTransactionsCmd, importReceiptsCmd)
}
