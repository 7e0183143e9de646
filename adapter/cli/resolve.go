package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	captureQueries "github.com/jharden/divflow/internal/capture/application/queries"
)

// resolveItemID accepts either a full UUID or a unique ID prefix.
func resolveItemID(ctx context.Context, app *App, ref string) (uuid.UUID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return id, nil
	}

	prefix := strings.ToLower(ref)
	items, err := app.ListItemsHandler.Handle(ctx, captureQueries.ListItemsQuery{
		UserID: app.CurrentUserID,
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to list items: %w", err)
	}

	var matches []uuid.UUID
	for _, item := range items {
		if strings.HasPrefix(item.ID.String(), prefix) {
			matches = append(matches, item.ID)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return uuid.Nil, fmt.Errorf("no item matches %q", ref)
	default:
		return uuid.Nil, fmt.Errorf("%d items match %q, be more specific", len(matches), ref)
	}
}
