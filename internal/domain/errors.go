/**
 * @description
 * This file defines the typed errors the workflow core surfaces to callers.
 * Every failure path returns one of these kinds so the API layer can map them
 * to precise HTTP statuses and messages; nothing is ever swallowed or left in
 * an ambiguous state.
 *
 * @notes
 * - InvalidTransitionError and InsufficientFundsError are terminal for the
 *   call and carry enough context (current status + attempted action, or the
 *   shortfall) for an exact operator-facing message.
 * - TransientError wraps storage/broker timeouts; callers may retry because
 *   no partial mutation is ever persisted.
 */

package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError reports malformed input rejected before any state mutation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// InvalidTransitionError reports a workflow action that is not legal in the
// transfer's current status.
type InvalidTransitionError struct {
	Current TransferStatus
	Action  TransferAction
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("action %q is not allowed in status %s", e.Action, e.Current)
}

// NotFoundError reports an unknown transfer, player or club id.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// InsufficientFundsError reports a ledger debit exceeding the club's budget.
// Both balances are left unchanged when this is returned.
type InsufficientFundsError struct {
	ClubID    string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("club %s has insufficient budget: required %s, available %s",
		e.ClubID, e.Required, e.Available)
}

// Shortfall returns how much budget the club is missing.
func (e *InsufficientFundsError) Shortfall() decimal.Decimal {
	return e.Required.Sub(e.Available)
}

// TransientError wraps an infrastructure failure (storage or broker timeout)
// that is safe for the caller to retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient failure during %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a NotFoundError anywhere in its chain.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
