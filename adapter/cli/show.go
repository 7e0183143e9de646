package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	captureQueries "github.com/jharden/divflow/internal/capture/application/queries"
)

var showCmd = &cobra.Command{
	Use:   "show <item-id>",
	Short: "Show a captured item in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		itemID, err := resolveItemID(cmd.Context(), app, args[0])
		if err != nil {
			return err
		}

		item, err := app.GetItemHandler.Handle(cmd.Context(), captureQueries.GetItemQuery{
			UserID: app.CurrentUserID,
			ItemID: itemID,
		})
		if err != nil {
			return fmt.Errorf("failed to load item: %w", err)
		}

		printItem(*item)
		if item.TypeReasoning != nil {
			fmt.Printf("  Reasoning: %s\n", *item.TypeReasoning)
		}
		if item.Context != "" {
			fmt.Printf("  Context: %s\n", item.Context)
		}
		fmt.Printf("  Captured: %s\n", item.CreatedAt.Format("Mon, Jan 2 2006 15:04"))
		if item.LastReviewedAt != nil {
			fmt.Printf("  Reviewed: %s\n", item.LastReviewedAt.Format("Mon, Jan 2 2006 15:04"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
