package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var postingsCmd = &cobra.Command{
	Use:   "postings",
	Short: "Manage bookkeeping postings of automatic matches",
}

var postingsRetryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Post automatic matches that were never posted successfully",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sum, err := svc.Sync.RetryPostings(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("attempted %d, posted %d, failed %d\n", sum.Attempted, sum.Posted, sum.Failed)

		for _, e := range sum.Errors {
			fmt.Fprintf(os.Stderr, "  ! %s\n", e.Error())
		}

		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show ledger and posting counts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := svc.Sync.Status(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("matches\n")
		fmt.Printf("  active:          %d\n", st.ActiveMatches)
		fmt.Printf("  reversed:        %d\n", st.ReversedMatches)
		fmt.Printf("  auto:            %d\n", st.AutoMatches)
		fmt.Printf("  human confirmed: %d\n", st.HumanConfirmed)
		fmt.Printf("postings\n")
		fmt.Printf("  posted:          %d\n", st.Posted)
		fmt.Printf("  awaiting:        %d\n", st.AwaitingPost)
		fmt.Printf("  failed:          %d\n", st.PostFailed)
		fmt.Printf("pending reviews:   %d\n", st.PendingReviews)

		return nil
	},
}

func init() {
	postingsCmd.AddCommand(postingsRetryCmd)
}
