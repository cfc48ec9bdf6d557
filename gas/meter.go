// Package gas implements the budget meter backing one execution frame.
package gas

import (
	"github.com/halcyonchain/scvm/types"
)

// Meter tracks gas consumption during guest execution. One meter backs
// one frame; nested frames get their own meter initialized with the
// caller's remaining budget.
type Meter interface {
	// Consume charges the specified amount of gas.
	Consume(amount types.Gas) error
	// Remaining returns the amount of gas left.
	Remaining() types.Gas
	// HasGas checks if there is any gas left.
	HasGas() bool
	// SetRemaining overwrites the remaining budget. It is used only by
	// the reconciliation step after a nested call returns and fails if
	// the value exceeds the meter's limit.
	SetRemaining(remaining types.Gas) error
}

// DefaultMeter is the default implementation of Meter.
type DefaultMeter struct {
	limit    types.Gas
	consumed types.Gas
}

// NewMeter creates a gas meter with the specified limit.
func NewMeter(limit types.Gas) *DefaultMeter {
	return &DefaultMeter{limit: limit}
}

func (m *DefaultMeter) Consume(amount types.Gas) error {
	if amount > m.limit-m.consumed {
		return &types.OutOfGasError{
			Wanted:    amount,
			Available: m.Remaining(),
		}
	}
	m.consumed += amount
	return nil
}

func (m *DefaultMeter) Remaining() types.Gas {
	return m.limit - m.consumed
}

func (m *DefaultMeter) HasGas() bool {
	return m.Remaining() > 0
}

func (m *DefaultMeter) SetRemaining(remaining types.Gas) error {
	if remaining > m.limit {
		return types.NewRuntimeError("gas meter inconsistency: remaining exceeds limit")
	}
	m.consumed = m.limit - remaining
	return nil
}

// Limit returns the budget the meter was created with.
func (m *DefaultMeter) Limit() types.Gas {
	return m.limit
}
