package domain

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys for capture events.
const (
	RoutingKeyItemCaptured     = "capture.item.captured"
	RoutingKeyItemConfirmed    = "capture.item.confirmed"
	RoutingKeyItemReclassified = "capture.item.reclassified"
)

// ItemCapturedEvent is emitted after a new item is saved and classified.
type ItemCapturedEvent struct {
	ItemID     uuid.UUID `json:"item_id"`
	UserID     uuid.UUID `json:"user_id"`
	Text       string    `json:"text"`
	ItemType   string    `json:"item_type,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
}

func (ItemCapturedEvent) RoutingKey() string { return RoutingKeyItemCaptured }

// ItemConfirmedEvent is emitted when the user confirms or corrects a
// classified field during review.
type ItemConfirmedEvent struct {
	ItemID      uuid.UUID `json:"item_id"`
	UserID      uuid.UUID `json:"user_id"`
	Field       string    `json:"field"`
	Value       string    `json:"value"`
	WasCorrect  bool      `json:"was_correct"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

func (ItemConfirmedEvent) RoutingKey() string { return RoutingKeyItemConfirmed }

// ItemReclassifiedEvent is emitted after inference reruns over an item.
type ItemReclassifiedEvent struct {
	ItemID         uuid.UUID `json:"item_id"`
	UserID         uuid.UUID `json:"user_id"`
	ItemType       string    `json:"item_type,omitempty"`
	Confidence     float64   `json:"confidence,omitempty"`
	ReclassifiedAt time.Time `json:"reclassified_at"`
}

func (ItemReclassifiedEvent) RoutingKey() string { return RoutingKeyItemReclassified }
