package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	captureCommands "github.com/jharden/divflow/internal/capture/application/commands"
)

var confirmCmd = &cobra.Command{
	Use:   "confirm <item-id> <field> <value>",
	Short: "Confirm or correct a classified field",
	Long: `Confirm a field of a captured item, or correct it. The value is
pinned and will not change on reclassification, and the outcome
teaches future inference.

Fields: type, collection, priority, estimate

Examples:
  divflow confirm 3fa8 type action
  divflow confirm 3fa8 collection household
  divflow confirm 3fa8 priority high
  divflow confirm 3fa8 estimate 30min`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		itemID, err := resolveItemID(cmd.Context(), app, args[0])
		if err != nil {
			return err
		}

		result, err := app.ConfirmItemHandler.Handle(cmd.Context(), captureCommands.ConfirmItemCommand{
			UserID: app.CurrentUserID,
			ItemID: itemID,
			Field:  args[1],
			Value:  args[2],
		})
		if err != nil {
			return fmt.Errorf("failed to confirm: %w", err)
		}

		if result.WasCorrect {
			fmt.Printf("Confirmed %s = %s (inference was right)\n", args[1], args[2])
		} else {
			fmt.Printf("Corrected %s to %s (noted for next time)\n", args[1], args[2])
		}

		invalidateReviewCache(cmd.Context(), app)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(confirmCmd)
}

// invalidateReviewCache drops the cached review queue after a change that
// affects what review should surface. Failures only cost freshness.
func invalidateReviewCache(ctx context.Context, app *App) {
	if app.ReviewQueueCache == nil {
		return
	}
	if err := app.ReviewQueueCache.Invalidate(ctx, app.CurrentUserID); err != nil && logger != nil {
		logger.Warn("failed to invalidate review cache", "error", err)
	}
}
