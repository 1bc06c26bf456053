package minter

import (
	"fmt"
	"math"

	"github.com/MintGate-Network/mint_layer/internal/app/domain/collection"
)

// PaymentGate validates that the value accompanying a mint request exactly
// equals count * pricePerMint. The policy is strict: underpayment and
// overpayment both fail, there is no refund of excess and no tolerance.
type PaymentGate struct{}

// NewPaymentGate constructs the gate.
func NewPaymentGate() *PaymentGate {
	return &PaymentGate{}
}

// Validate returns the expected cost when suppliedValue matches it exactly.
func (g *PaymentGate) Validate(count, pricePerMint, suppliedValue uint64) (uint64, error) {
	if count == 0 {
		return 0, collection.ErrInvalidCount
	}
	if pricePerMint != 0 && count > math.MaxUint64/pricePerMint {
		return 0, fmt.Errorf("cost of %d tokens at %d overflows: %w",
			count, pricePerMint, collection.ErrWrongPaymentAmount)
	}

	expected := count * pricePerMint
	if suppliedValue != expected {
		return 0, fmt.Errorf("supplied %d, expected %d: %w",
			suppliedValue, expected, collection.ErrWrongPaymentAmount)
	}
	return expected, nil
}
