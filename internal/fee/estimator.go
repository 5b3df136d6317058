/**
 * @description
 * This package derives the total transfer fee from a player's base valuation
 * and the clause set attached to the proposal. All arithmetic is done in
 * decimal to keep repeated percentage multiplication exact.
 *
 * @dependencies
 * - github.com/shopspring/decimal: Fixed-point monetary math.
 * - internal/domain: The clause model.
 */

package fee

import (
	"github.com/shopspring/decimal"

	"github.com/transfersystem/transfer-service/internal/domain"
)

// CurrencyScale is the number of decimal places of the smallest currency unit.
const CurrencyScale = 2

var oneHundred = decimal.NewFromInt(100)

// Estimator computes transfer fees. It is stateless and safe for concurrent use.
type Estimator struct{}

// NewEstimator creates a new Estimator instance.
func NewEstimator() *Estimator {
	return &Estimator{}
}

// Estimate returns the total fee for a transfer: the base valuation plus the
// contribution of every clause, floored at zero and rounded half-up to the
// smallest currency unit.
//
// Each clause contributes baseValuation*(percentage/100) when a percentage is
// present plus its flat amount when one is present. The two fields are
// additive, not alternatives, and the clause type never changes the
// arithmetic. Clause order is irrelevant to the result.
func (e *Estimator) Estimate(baseValuation decimal.Decimal, clauses []domain.Clause) decimal.Decimal {
	total := baseValuation
	for _, clause := range clauses {
		if clause.Percentage != nil {
			total = total.Add(baseValuation.Mul(*clause.Percentage).Div(oneHundred))
		}
		if clause.Amount != nil {
			total = total.Add(*clause.Amount)
		}
	}
	if total.IsNegative() {
		total = decimal.Zero
	}
	// Round is half away from zero, which for a non-negative total is
	// round-half-up to the smallest currency unit.
	return total.Round(CurrencyScale)
}
