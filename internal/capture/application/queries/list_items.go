// Package queries implements the capture read operations.
package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/jharden/divflow/internal/capture/domain"
)

// ListItemsQuery lists a user's captured items, optionally filtered.
type ListItemsQuery struct {
	UserID     uuid.UUID
	Type       string
	Collection string
}

// ListItemsHandler handles the ListItemsQuery.
type ListItemsHandler struct {
	items domain.ItemRepository
}

func NewListItemsHandler(items domain.ItemRepository) *ListItemsHandler {
	return &ListItemsHandler{items: items}
}

// Handle returns items newest-first, applying the optional type and
// collection filters.
func (h *ListItemsHandler) Handle(ctx context.Context, q ListItemsQuery) ([]domain.CapturedItem, error) {
	items, err := h.items.ListByUser(ctx, q.UserID)
	if err != nil {
		return nil, err
	}
	if q.Type == "" && q.Collection == "" {
		return items, nil
	}

	filtered := make([]domain.CapturedItem, 0, len(items))
	for _, item := range items {
		if q.Type != "" {
			if item.InferredType == nil || string(*item.InferredType) != q.Type {
				continue
			}
		}
		if q.Collection != "" {
			if item.Collection == nil || *item.Collection != q.Collection {
				continue
			}
		}
		filtered = append(filtered, item)
	}
	return filtered, nil
}
