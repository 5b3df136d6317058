/**
 * @description
 * This file defines the Player and Club collaborator records the workflow
 * engine consumes. Both are stored locally but the workflow core only reads
 * them; club budgets are mutated by the budget ledger alone.
 */

package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Player is a player record. MarketValue supplies the base valuation for the
// fee estimator.
type Player struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	MarketValue   decimal.Decimal `json:"market_value"`
	CurrentClubID *uuid.UUID      `json:"current_club_id,omitempty"`
}

// Validate checks the structural invariants of a player record.
func (p *Player) Validate() error {
	if p.Name == "" {
		return &ValidationError{Field: "name", Reason: "player name must not be empty"}
	}
	if p.MarketValue.IsNegative() {
		return &ValidationError{Field: "market_value", Reason: "market value must not be negative"}
	}
	return nil
}

// Club is a club record. Budget is owned by the budget ledger: only the
// ledger's transfer primitive writes it after creation.
type Club struct {
	ID     uuid.UUID       `json:"id"`
	Name   string          `json:"name"`
	Budget decimal.Decimal `json:"budget"`
}

// Validate checks the structural invariants of a club record.
func (c *Club) Validate() error {
	if c.Name == "" {
		return &ValidationError{Field: "name", Reason: "club name must not be empty"}
	}
	if c.Budget.IsNegative() {
		return &ValidationError{Field: "budget", Reason: "budget must not be negative"}
	}
	return nil
}
