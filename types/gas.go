// Package types provides the public types shared by the scvm runtime:
// the resource-cost schedule, execution responses, the host interface
// capability and the error taxonomy every ABI-facing operation returns.
package types

// Gas represents an amount of computational resources, the unit every
// budget in this runtime is denominated in.
type Gas = uint64

// GasCosts is the immutable per-operation cost schedule supplied by the
// host interface. It is read-only to the execution core.
type GasCosts struct {
	// LaunchCost is charged once when an export starts executing.
	LaunchCost Gas
	// CompileCostPerByte is charged per byte of bytecode when a module
	// is compiled inside a metered execution.
	CompileCostPerByte Gas
	// AbiCosts maps host-call names (as exported to the guest) to the
	// gas charged before the host call runs.
	AbiCosts map[string]Gas
}

// AbiCost returns the cost of the named host call, zero if unlisted.
func (c GasCosts) AbiCost(name string) Gas {
	return c.AbiCosts[name]
}

// DefaultGasCosts returns a schedule suitable for tests and tooling.
// Production schedules come from the host interface capability.
func DefaultGasCosts() GasCosts {
	return GasCosts{
		LaunchCost:         100,
		CompileCostPerByte: 3,
		AbiCosts: map[string]Gas{
			"call_module": 30,
			"local_call":  10,
			"create_sc":   50,
		},
	}
}

// GasReport summarizes the accounting of one top-level execution.
type GasReport struct {
	Limit     Gas
	Remaining Gas
	Used      Gas
}
