package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	captureCommands "github.com/jharden/divflow/internal/capture/application/commands"
)

var reclassifyCmd = &cobra.Command{
	Use:   "reclassify <item-id>",
	Short: "Rerun inference over an item",
	Long: `Rerun inference over a stored item using everything learned since
it was captured. Fields you have confirmed are left untouched.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		itemID, err := resolveItemID(cmd.Context(), app, args[0])
		if err != nil {
			return err
		}

		result, err := app.ReclassifyItemHandler.Handle(cmd.Context(), captureCommands.ReclassifyItemCommand{
			UserID: app.CurrentUserID,
			ItemID: itemID,
		})
		if err != nil {
			return fmt.Errorf("failed to reclassify: %w", err)
		}

		fmt.Println("Reclassified!")
		printItem(result.Item)
		invalidateReviewCache(cmd.Context(), app)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reclassifyCmd)
}
