package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	captureQueries "github.com/jharden/divflow/internal/capture/application/queries"
)

var (
	listType       string
	listCollection string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List captured items",
	Long: `List your captured items, newest first.

Examples:
  divflow list
  divflow list --type action
  divflow list --type action --collection household`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		items, err := app.ListItemsHandler.Handle(cmd.Context(), captureQueries.ListItemsQuery{
			UserID:     app.CurrentUserID,
			Type:       listType,
			Collection: listCollection,
		})
		if err != nil {
			return fmt.Errorf("failed to list items: %w", err)
		}

		if len(items) == 0 {
			fmt.Println("Nothing captured yet.")
			return nil
		}

		for _, item := range items {
			itemType := "?"
			if item.InferredType != nil {
				itemType = string(*item.InferredType)
			}
			collection := ""
			if item.Collection != nil {
				collection = " @" + *item.Collection
			}
			due := ""
			if item.DueAt != nil {
				due = "  due " + item.DueAt.Format("Jan 2 15:04")
			}
			fmt.Printf("%s  %-8s %s%s%s\n", item.ID.String()[:8], itemType, item.Text, collection, due)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listType, "type", "", "filter by type (note, action, reminder)")
	listCmd.Flags().StringVar(&listCollection, "collection", "", "filter by collection")
	rootCmd.AddCommand(listCmd)
}
