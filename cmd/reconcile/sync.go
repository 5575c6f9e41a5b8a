package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/receiptmatch/internal/money"
	"github.com/MrJamesThe3rd/receiptmatch/internal/period"
	"github.com/MrJamesThe3rd/receiptmatch/internal/reconcile"
)

var (
	fromFlag string
	toFlag   string
	dryRun   bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Match open transactions in a period to receipts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		r, err := rangeFromFlags()
		if err != nil {
			return err
		}

		sum, err := svc.Sync.Run(cmd.Context(), reconcile.SyncRequest{Range: r, DryRun: dryRun})
		if sum != nil {
			printSummary(sum)
		}

		return err
	},
}

func init() {
	addRangeFlags(syncCmd)
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show routing decisions without committing anything")
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&fromFlag, "from", "", "First day of the period (YYYY-MM-DD, default: start of this month)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Last day of the period (YYYY-MM-DD, default: today)")
}

// rangeFromFlags defaults to the current month up to today.
func rangeFromFlags() (period.Range, error) {
	now := time.Now()

	from, to := fromFlag, toFlag
	if from == "" {
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).Format(time.DateOnly)
	}

	if to == "" {
		to = now.Format(time.DateOnly)
	}

	return period.Parse(from, to)
}

func printSummary(sum *reconcile.Summary) {
	if sum.DryRun && len(sum.Outcomes) > 0 {
		t := table.New().Headers("DATE", "COUNTERPARTY", "AMOUNT", "TIER", "SCORE", "REASON")

		for _, o := range sum.Outcomes {
			tx := o.Decision.Transaction
			t.Row(
				tx.Date.Format(time.DateOnly),
				truncate(tx.Counterparty, 30),
				money.FormatCurrency(tx.Amount, tx.Currency),
				string(o.Tier),
				fmt.Sprintf("%.2f", o.Score),
				string(o.Reason),
			)
		}

		fmt.Println(t.Render())
	}

	mode := "committed"
	if sum.DryRun {
		mode = "dry run"
	}

	fmt.Printf("%s (%s) in %s\n", sum.Range, mode, sum.Duration.Round(time.Millisecond))
	fmt.Printf("  transactions:    %d\n", sum.Transactions)
	fmt.Printf("  receipts:        %d\n", sum.Receipts)
	fmt.Printf("  auto matched:    %d\n", sum.AutoMatched)
	fmt.Printf("  ai resolved:     %d\n", sum.AIResolved)
	fmt.Printf("  human review:    %d\n", sum.HumanReview)
	fmt.Printf("  no match:        %d\n", sum.NoMatch)
	fmt.Printf("  already matched: %d\n", sum.AlreadyMatched)

	if sum.PostFailures > 0 {
		fmt.Printf("  post failures:   %d\n", sum.PostFailures)
	}

	for _, e := range sum.Errors {
		fmt.Fprintf(os.Stderr, "  ! %s\n", e.Error())
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}

	return string(r[:n-1]) + "…"
}
