package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	reviewQueries "github.com/jharden/divflow/internal/review/application/queries"
)

var reviewLimit int

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Show the items that most need your attention",
	Long: `Show a short queue of items whose classification is missing or
uncertain, worst first. Confirm or correct a field with
"divflow confirm", or rerun inference with "divflow reclassify".`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		limit := reviewLimit
		if limit <= 0 {
			limit = app.ReviewLimit
		}
		result, err := app.ReviewQueueHandler.Handle(cmd.Context(), reviewQueries.ReviewQueueQuery{
			UserID: app.CurrentUserID,
			Limit:  limit,
		})
		if err != nil {
			return fmt.Errorf("failed to build review queue: %w", err)
		}

		if len(result.Items) == 0 {
			fmt.Println("Nothing needs review.")
			return nil
		}

		fmt.Printf("%d item(s) to review:\n\n", len(result.Items))
		for i, ranked := range result.Items {
			fmt.Printf("%d. [%s] %s\n", i+1, ranked.Item.ID.String()[:8], ranked.Item.Text)
			fmt.Printf("   %s\n", ranked.Reasoning)
		}
		if verbose && result.FromCache {
			fmt.Println("\n(served from cache)")
		}
		return nil
	},
}

func init() {
	reviewCmd.Flags().IntVarP(&reviewLimit, "limit", "n", 0, "maximum items to show (default 3)")
	rootCmd.AddCommand(reviewCmd)
}
