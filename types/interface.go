package types

// Interface is the host interface capability: the abstract boundary
// through which the execution core reaches ledger state. The core calls
// it but never implements it; production chains and tests provide their
// own variants behind this interface.
type Interface interface {
	// InitCall resolves an address to its stored bytecode and applies
	// the value transfer that initiates a nested call. It must fail,
	// without side effects visible to the caller, for unknown addresses
	// or insufficient funds.
	InitCall(address string, coins uint64) ([]byte, error)

	// FinishCall tells the capability that the current nested call
	// returned, letting it commit or roll back call-scoped bookkeeping
	// such as its call stack.
	FinishCall() error

	// CreateModule registers bytecode as a new deployable module and
	// returns its address. No compilation or execution happens here.
	CreateModule(bytecode []byte) (string, error)

	// GasCosts exposes the active resource-cost schedule.
	GasCosts() GasCosts
}
