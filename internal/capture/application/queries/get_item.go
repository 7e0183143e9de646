package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/jharden/divflow/internal/capture/domain"
)

// GetItemQuery fetches one item by ID.
type GetItemQuery struct {
	UserID uuid.UUID
	ItemID uuid.UUID
}

// GetItemHandler handles the GetItemQuery.
type GetItemHandler struct {
	items domain.ItemRepository
}

func NewGetItemHandler(items domain.ItemRepository) *GetItemHandler {
	return &GetItemHandler{items: items}
}

// Handle returns the item or domain.ErrItemNotFound.
func (h *GetItemHandler) Handle(ctx context.Context, q GetItemQuery) (*domain.CapturedItem, error) {
	return h.items.FindByID(ctx, q.UserID, q.ItemID)
}
