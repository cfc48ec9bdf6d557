package types

// Response is the result of running one exported function: the opaque
// payload returned by the guest and the budget left on its meter at the
// moment the export returned.
type Response struct {
	// Ret is the raw return payload. Its encoding is a contract between
	// guest modules; the runtime never interprets it.
	Ret []byte
	// RemainingGas is what was left of the granted budget. The call
	// orchestrator writes it back into the caller's meter so a nested
	// call costs exactly what it consumed.
	RemainingGas Gas
}
