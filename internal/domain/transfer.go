/**
 * @description
 * This file defines the transfer lifecycle: the closed set of transfer statuses,
 * the workflow actions that move a transfer between them, and the explicit
 * transition table that is the single source of truth for which action is legal
 * in which status.
 *
 * @notes
 * - The transition table is a lookup, not scattered conditionals, so an invalid
 *   action can never be silently accepted.
 * - Terminal statuses (COMPLETED, CANCELLED, REJECTED) have no outgoing
 *   transitions at all; re-completing a completed transfer is rejected here,
 *   which is what protects the budget ledger from a double debit.
 */

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle status of a player transfer.
type TransferStatus string

const (
	StatusDraft       TransferStatus = "DRAFT"
	StatusSubmitted   TransferStatus = "SUBMITTED"
	StatusNegotiation TransferStatus = "NEGOTIATION"
	StatusApproved    TransferStatus = "APPROVED"
	StatusCompleted   TransferStatus = "COMPLETED"
	StatusCancelled   TransferStatus = "CANCELLED"
	StatusRejected    TransferStatus = "REJECTED"
)

// TransferAction is a workflow action requested by a caller.
type TransferAction string

const (
	ActionSubmit    TransferAction = "submit"
	ActionNegotiate TransferAction = "negotiate"
	ActionApprove   TransferAction = "approve"
	ActionComplete  TransferAction = "complete"
	ActionCancel    TransferAction = "cancel"
)

// transitions maps current status -> action -> next status. Statuses absent
// from the outer map are terminal.
var transitions = map[TransferStatus]map[TransferAction]TransferStatus{
	StatusDraft: {
		ActionSubmit: StatusSubmitted,
		ActionCancel: StatusCancelled,
	},
	StatusSubmitted: {
		ActionNegotiate: StatusNegotiation,
		ActionApprove:   StatusApproved,
		ActionCancel:    StatusCancelled,
	},
	StatusNegotiation: {
		ActionApprove: StatusApproved,
		ActionCancel:  StatusCancelled,
	},
	StatusApproved: {
		ActionComplete: StatusCompleted,
		ActionCancel:   StatusCancelled,
	},
}

// Next returns the status reached by applying action in the current status.
// It returns an *InvalidTransitionError when the action is not legal.
func (s TransferStatus) Next(action TransferAction) (TransferStatus, error) {
	next, ok := transitions[s][action]
	if !ok {
		return "", &InvalidTransitionError{Current: s, Action: action}
	}
	return next, nil
}

// CanApply reports whether action is legal in the current status.
func (s TransferStatus) CanApply(action TransferAction) bool {
	_, ok := transitions[s][action]
	return ok
}

// IsTerminal reports whether the status has no outgoing transitions.
func (s TransferStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// ActiveTransferStatuses are the statuses in which a transfer ties up the
// player: a new transfer for the same player cannot be initiated while one
// of these exists.
var ActiveTransferStatuses = []TransferStatus{StatusSubmitted, StatusNegotiation, StatusApproved}

// ParseTransferStatus parses a stored or caller-supplied status string.
func ParseTransferStatus(raw string) (TransferStatus, error) {
	s := TransferStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case StatusDraft, StatusSubmitted, StatusNegotiation, StatusApproved,
		StatusCompleted, StatusCancelled, StatusRejected:
		return s, nil
	}
	return "", &ValidationError{Field: "status", Reason: "unknown transfer status: " + raw}
}

// ParseTransferAction parses a caller-supplied action string.
func ParseTransferAction(raw string) (TransferAction, error) {
	a := TransferAction(strings.ToLower(strings.TrimSpace(raw)))
	switch a {
	case ActionSubmit, ActionNegotiate, ActionApprove, ActionComplete, ActionCancel:
		return a, nil
	}
	return "", &ValidationError{Field: "action", Reason: "unknown workflow action: " + raw}
}

// Transfer is the central workflow record for a proposed player move between
// two clubs. Status, ComputedFee and the transition timestamp are mutated
// exclusively by the workflow engine.
type Transfer struct {
	ID             uuid.UUID       `json:"id"`
	PlayerID       uuid.UUID       `json:"player_id"`
	FromClubID     uuid.UUID       `json:"from_club_id"`
	ToClubID       uuid.UUID       `json:"to_club_id"`
	Status         TransferStatus  `json:"status"`
	PreviousStatus *TransferStatus `json:"-"`
	Clauses        []Clause        `json:"clauses"`
	// ComputedFee is set exactly once, on the transition into COMPLETED, and
	// is immutable afterwards. Non-nil iff Status == COMPLETED.
	ComputedFee             *decimal.Decimal `json:"computed_fee,omitempty"`
	InitiationTimestamp     time.Time        `json:"initiation_timestamp"`
	LastTransitionTimestamp time.Time        `json:"last_transition_timestamp"`
}

// DisplayStatus returns the label the admin UI renders. A transfer cancelled
// out of SUBMITTED or NEGOTIATION is shown as REJECTED, matching the original
// screens where the cancel action doubles as "Reject" in those statuses.
func (t *Transfer) DisplayStatus() TransferStatus {
	if t.Status == StatusCancelled && t.PreviousStatus != nil {
		switch *t.PreviousStatus {
		case StatusSubmitted, StatusNegotiation:
			return StatusRejected
		}
	}
	return t.Status
}

// Validate checks the structural invariants of a transfer record.
func (t *Transfer) Validate() error {
	if t.PlayerID == uuid.Nil {
		return &ValidationError{Field: "player_id", Reason: "player id is required"}
	}
	if t.FromClubID == uuid.Nil {
		return &ValidationError{Field: "from_club_id", Reason: "from club id is required"}
	}
	if t.ToClubID == uuid.Nil {
		return &ValidationError{Field: "to_club_id", Reason: "to club id is required"}
	}
	if t.FromClubID == t.ToClubID {
		return &ValidationError{Field: "to_club_id", Reason: "from and to club must differ"}
	}
	for i := range t.Clauses {
		if err := t.Clauses[i].Validate(); err != nil {
			return err
		}
	}
	if (t.ComputedFee != nil) != (t.Status == StatusCompleted) {
		return &ValidationError{Field: "computed_fee", Reason: "computed fee must be set exactly when the transfer is completed"}
	}
	return nil
}
