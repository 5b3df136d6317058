package store

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/transfersystem/transfer-service/internal/domain"
)

func TestStatusPtrToText(t *testing.T) {
	if got := statusPtrToText(nil); got != nil {
		t.Fatalf("expected nil for nil status, got %q", *got)
	}

	status := domain.StatusNegotiation
	got := statusPtrToText(&status)
	if got == nil || *got != "NEGOTIATION" {
		t.Fatalf("expected NEGOTIATION, got %v", got)
	}
}

func TestFeeToNull(t *testing.T) {
	if got := feeToNull(nil); got.Valid {
		t.Fatal("expected invalid NullDecimal for nil fee")
	}

	feeValue := decimal.RequireFromString("6100000.00")
	got := feeToNull(&feeValue)
	if !got.Valid {
		t.Fatal("expected valid NullDecimal for a set fee")
	}
	if !got.Decimal.Equal(feeValue) {
		t.Fatalf("expected %s, got %s", feeValue, got.Decimal)
	}
}
