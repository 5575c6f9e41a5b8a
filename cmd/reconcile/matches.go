package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/receiptmatch/internal/ledger"
)

var (
	allFlag  bool
	noteFlag string
)

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Inspect and edit the match ledger",
}

var matchesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List matches",
	RunE: func(cmd *cobra.Command, _ []string) error {
		records, err := svc.Ledger.ListMatches(cmd.Context(), ledger.ListFilter{ActiveOnly: !allFlag})
		if err != nil {
			return err
		}

		t := table.New().Headers("ID", "CREATED", "TRANSACTION", "RECEIPT", "TIER", "SOURCE", "SCORE", "STATE", "POSTED")

		for _, m := range records {
			state := "active"
			if m.Reversed {
				state = "reversed"
			}

			posted := "-"
			switch {
			case m.PostedAt != nil:
				posted = m.PostedAt.Format(time.DateTime)
			case m.PostError != "":
				posted = "failed: " + truncate(m.PostError, 30)
			}

			t.Row(
				m.ID.String(),
				m.CreatedAt.Format(time.DateTime),
				m.TransactionID.String()[:8],
				m.ReceiptID.String()[:8],
				string(m.Tier),
				string(m.Source),
				fmt.Sprintf("%.2f", m.Score),
				state,
				posted,
			)
		}

		fmt.Println(t.Render())
		fmt.Printf("%d matches\n", len(records))

		return nil
	},
}

var matchesCreateCmd = &cobra.Command{
	Use:   "create <transaction-id> <receipt-id>",
	Short: "Pair a transaction with a receipt by hand",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		txID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid transaction id: %w", err)
		}

		receiptID, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid receipt id: %w", err)
		}

		m, created, err := svc.Sync.ManualMatch(cmd.Context(), txID, receiptID, noteFlag)
		if err != nil {
			return err
		}

		if !created {
			fmt.Printf("already matched: %s\n", m.ID)
			return nil
		}

		fmt.Printf("created match %s\n", m.ID)

		return nil
	},
}

var matchesReverseCmd = newReverseCmd()

// reverseCmd is the top-level shortcut for "matches reverse".
var reverseCmd = newReverseCmd()

func newReverseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reverse <match-id>",
		Short: "Undo a match and reopen both sides",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid match id: %w", err)
			}

			m, err := svc.Ledger.Reverse(cmd.Context(), id)
			if err != nil {
				return err
			}

			fmt.Printf("reversed match %s at %s\n", m.ID, m.ReversedAt.Format(time.DateTime))

			return nil
		},
	}
}

func init() {
	matchesListCmd.Flags().BoolVar(&allFlag, "all", false, "Include reversed matches")
	matchesCreateCmd.Flags().StringVar(&noteFlag, "note", "", "Why the pair belongs together")

	matchesCmd.AddCommand(matchesListCmd, matchesCreateCmd, matchesReverseCmd)
}
