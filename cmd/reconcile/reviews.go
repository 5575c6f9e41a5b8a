package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/receiptmatch/internal/ledger"
	"github.com/MrJamesThe3rd/receiptmatch/internal/money"
)

var statusFlag string

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Work through the human review queue",
}

var reviewsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List review items",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var status *ledger.ReviewStatus
		if statusFlag != "all" {
			status = new(ledger.ReviewStatus(statusFlag))
		}

		items, err := svc.Ledger.ListReviews(cmd.Context(), status)
		if err != nil {
			return err
		}

		t := table.New().Headers("ID", "DATE", "COUNTERPARTY", "AMOUNT", "SCORE", "REASON", "SUGGESTED", "CANDIDATES")

		for _, item := range items {
			date, counterparty, amount := "?", "?", "?"

			if tx, err := svc.Transactions.Get(cmd.Context(), item.TransactionID); err == nil {
				date = tx.Date.Format(time.DateOnly)
				counterparty = truncate(tx.Counterparty, 30)
				amount = money.FormatCurrency(tx.Amount, tx.Currency)
			}

			suggested := "-"
			if item.SuggestedReceiptID != nil {
				suggested = item.SuggestedReceiptID.String()
			}

			t.Row(
				item.ID.String(),
				date,
				counterparty,
				amount,
				fmt.Sprintf("%.2f", item.Score),
				item.Reason,
				suggested,
				fmt.Sprint(len(item.CandidateIDs)),
			)
		}

		fmt.Println(t.Render())
		fmt.Printf("%d items\n", len(items))

		return nil
	},
}

var reviewsConfirmCmd = &cobra.Command{
	Use:   "confirm <review-id> [receipt-id]",
	Short: "Accept a receipt for a review item, the suggestion by default",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		reviewID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid review id: %w", err)
		}

		var receiptID uuid.UUID

		if len(args) == 2 {
			if receiptID, err = uuid.Parse(args[1]); err != nil {
				return fmt.Errorf("invalid receipt id: %w", err)
			}
		} else {
			item, err := svc.Ledger.GetReview(cmd.Context(), reviewID)
			if err != nil {
				return err
			}

			if item.SuggestedReceiptID == nil {
				return errors.New("review has no suggestion, pass a receipt id")
			}

			receiptID = *item.SuggestedReceiptID
		}

		m, err := svc.Sync.ConfirmReview(cmd.Context(), reviewID, receiptID, noteFlag)
		if err != nil {
			return err
		}

		fmt.Printf("confirmed: match %s\n", m.ID)

		return nil
	},
}

var reviewsDismissCmd = &cobra.Command{
	Use:   "dismiss <review-id>",
	Short: "Close a review item without matching",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid review id: %w", err)
		}

		if err := svc.Ledger.DismissReview(cmd.Context(), id); err != nil {
			return err
		}

		fmt.Println("dismissed")

		return nil
	},
}

func init() {
	reviewsListCmd.Flags().StringVar(&statusFlag, "status", string(ledger.ReviewPending), "pending, confirmed, dismissed or all")
	reviewsConfirmCmd.Flags().StringVar(&noteFlag, "note", "", "Reviewer note stored on the match")

	reviewsCmd.AddCommand(reviewsListCmd, reviewsConfirmCmd, reviewsDismissCmd)
}
