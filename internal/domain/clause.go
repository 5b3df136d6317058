/**
 * @description
 * This file defines the contractual clause model attached to a transfer
 * proposal. Clauses carry the fee conditions the estimator prices: a
 * percentage of the base valuation, a flat amount, or both.
 *
 * @notes
 * - Clause type is descriptive metadata only; it never changes the fee
 *   arithmetic. Callers may supply their own labels beyond the known set.
 * - Percentage and amount are deliberately additive when both are present.
 *   The visible source never showed backend logic for this case, so the
 *   either/or reading was rejected in favor of treating each field
 *   independently; fee tests pin this down so a discovered mismatch is a
 *   one-line fix.
 */

package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Known clause types rendered with dedicated labels in the admin UI.
const (
	ClauseSellOn          = "SELL_ON"
	ClauseAppearanceBonus = "APPEARANCE_BONUS"
	ClauseGoalBonus       = "GOAL_BONUS"
	ClauseLoyaltyFee      = "LOYALTY_FEE"
)

var hundred = decimal.NewFromInt(100)

// Clause is a single contractual fee condition on a transfer.
type Clause struct {
	Type       string           `json:"type"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
}

// Normalize trims and uppercases the clause type in place.
func (c *Clause) Normalize() {
	c.Type = strings.ToUpper(strings.TrimSpace(c.Type))
}

// Validate rejects structurally invalid clauses. It expects Normalize to have
// run first.
func (c *Clause) Validate() error {
	if c.Type == "" {
		return &ValidationError{Field: "clauses.type", Reason: "clause type must not be empty"}
	}
	if c.Percentage == nil && c.Amount == nil {
		return &ValidationError{Field: "clauses", Reason: "clause must carry a percentage or an amount"}
	}
	if c.Percentage != nil {
		if c.Percentage.IsNegative() || c.Percentage.GreaterThan(hundred) {
			return &ValidationError{Field: "clauses.percentage", Reason: "percentage must be between 0 and 100"}
		}
	}
	if c.Amount != nil && c.Amount.IsNegative() {
		return &ValidationError{Field: "clauses.amount", Reason: "amount must not be negative"}
	}
	return nil
}

// NormalizeClauses normalizes and validates a clause set in insertion order.
func NormalizeClauses(clauses []Clause) error {
	for i := range clauses {
		clauses[i].Normalize()
		if err := clauses[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
