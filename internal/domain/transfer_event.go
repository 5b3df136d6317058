package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferLifecycleEvent is the message published for the notification
// collaborator whenever a transfer transitions status. Delivery is the
// consumer's concern; the workflow engine only emits.
type TransferLifecycleEvent struct {
	EventID    uuid.UUID        `json:"event_id"`
	TransferID uuid.UUID        `json:"transfer_id"`
	PlayerID   uuid.UUID        `json:"player_id"`
	FromClubID uuid.UUID        `json:"from_club_id"`
	ToClubID   uuid.UUID        `json:"to_club_id"`
	Action     TransferAction   `json:"action"`
	Status     TransferStatus   `json:"status"`
	Fee        *decimal.Decimal `json:"fee,omitempty"`
	OccurredAt time.Time        `json:"occurred_at"`
}
