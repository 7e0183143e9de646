package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	captureCommands "github.com/jharden/divflow/internal/capture/application/commands"
	"github.com/jharden/divflow/internal/capture/domain"
)

var (
	captureContext string
	captureTags    []string
)

var captureCmd = &cobra.Command{
	Use:     "capture <text>",
	Aliases: []string{"c", "add"},
	Short:   "Capture a thought and let inference classify it",
	Long: `Capture free text. The classifier decides whether it is a note,
action, or reminder, picks a collection, and for actionable items
assigns a priority and time estimate. Dates and times written in the
text become due dates.

Examples:
  divflow capture "todo fix the kitchen faucet tomorrow"
  divflow capture "interesting article about soil chemistry"
  divflow capture "remind me to call the dentist friday at 3pm"
  divflow capture "reminder: passport renewal due 6/12"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		result, err := app.CaptureItemHandler.Handle(cmd.Context(), captureCommands.CaptureItemCommand{
			UserID:  app.CurrentUserID,
			Text:    strings.Join(args, " "),
			Context: captureContext,
			Tags:    captureTags,
		})
		if err != nil {
			return fmt.Errorf("failed to capture: %w", err)
		}

		fmt.Println("Captured!")
		printItem(result.Item)
		return nil
	},
}

func init() {
	captureCmd.Flags().StringVar(&captureContext, "context", "", "where or how the thought came up")
	captureCmd.Flags().StringSliceVar(&captureTags, "tag", nil, "tags to attach (repeatable)")
	rootCmd.AddCommand(captureCmd)
}

// printItem renders one item the way every capture command reports it.
func printItem(item domain.CapturedItem) {
	fmt.Printf("  ID: %s\n", item.ID.String()[:8])
	fmt.Printf("  Text: %s\n", item.Text)

	if item.InferredType != nil {
		fmt.Printf("  Type: %s%s\n", *item.InferredType, confidenceSuffix(item.TypeConfidence))
	}
	if item.Collection != nil {
		fmt.Printf("  Collection: %s%s\n", *item.Collection, confidenceSuffix(item.CollectionConfidence))
	}
	if item.Priority != nil {
		fmt.Printf("  Priority: %s%s\n", *item.Priority, confidenceSuffix(item.PriorityConfidence))
	}
	if item.Estimate != nil {
		fmt.Printf("  Estimate: %s%s\n", *item.Estimate, confidenceSuffix(item.EstimateConfidence))
	}
	if item.DueAt != nil {
		fmt.Printf("  Due: %s\n", item.DueAt.Format("Mon, Jan 2 2006 15:04"))
	}
	if len(item.Tags) > 0 {
		fmt.Printf("  Tags: %s\n", strings.Join(item.Tags, ", "))
	}
}

func confidenceSuffix(confidence *float64) string {
	if confidence == nil {
		return ""
	}
	return fmt.Sprintf(" (%.0f%%)", *confidence)
}
