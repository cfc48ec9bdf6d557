// Package exec contains the call orchestrator: the protocol that loads
// a target module, runs one of its exports under an explicit budget and
// reconciles the caller's accounting afterwards.
package exec

import (
	"github.com/rs/zerolog"

	"github.com/halcyonchain/scvm/gas"
	"github.com/halcyonchain/scvm/types"
)

// Module is the opaque compiled artifact an Engine produces. It is
// scoped to the single call that compiled it; the core never caches
// modules across calls.
type Module interface{}

// Engine is the sandbox engine capability. The wazero implementation
// lives in the sandbox package; tests substitute deterministic fakes.
type Engine interface {
	// Compile turns raw bytecode into an executable module. Failures
	// are reported as *types.CompileError.
	Compile(bytecode []byte) (Module, error)

	// Run executes the named export with the given parameter under a
	// fresh frame derived from env, granting it at most limit gas. The
	// response carries the budget left when the export returned.
	Run(env *Env, mod Module, function string, param []byte, limit types.Gas) (types.Response, error)
}

// Env is the live state of one sandboxed execution frame: the host
// interface capability, the active cost schedule, the engine and the
// frame's gas meter. It is a small value that every call boundary
// threads explicitly; duplicating it is cheap and the duplicate shares
// the meter, so a nested call can only touch the caller's accounting
// through the explicit reconciliation step.
type Env struct {
	iface  types.Interface
	engine Engine
	mode   types.ExecutionMode
	logger zerolog.Logger
	meter  gas.Meter

	// abiErr records the failure that aborted an in-flight host call
	// so the engine can surface it instead of a bare wasm trap.
	abiErr error
}

// NewEnv builds the context for one top-level entry into the sandbox.
func NewEnv(iface types.Interface, engine Engine, mode types.ExecutionMode, logger zerolog.Logger, meter gas.Meter) *Env {
	return &Env{
		iface:  iface,
		engine: engine,
		mode:   mode,
		logger: logger,
		meter:  meter,
	}
}

// WithMeter returns a duplicate of the context backed by a different
// frame meter. The engine uses it to hand a nested instantiation its
// own accounting without exposing the caller's frame state.
func (e *Env) WithMeter(meter gas.Meter) *Env {
	dup := *e
	dup.meter = meter
	dup.abiErr = nil
	return &dup
}

// Interface returns the host interface capability.
func (e *Env) Interface() types.Interface { return e.iface }

// GasCosts returns the active resource-cost schedule.
func (e *Env) GasCosts() types.GasCosts { return e.iface.GasCosts() }

// Mode returns the execution mode the context was built with.
func (e *Env) Mode() types.ExecutionMode { return e.mode }

// Logger returns the context logger. It hands out a pointer because
// zerolog's level methods hang off *Logger.
func (e *Env) Logger() *zerolog.Logger { return &e.logger }

// RemainingGas reads the frame's live budget.
func (e *Env) RemainingGas() (types.Gas, error) {
	if e.meter == nil {
		return 0, types.NewRuntimeError("gas meter unavailable")
	}
	return e.meter.Remaining(), nil
}

// SetRemainingGas overwrites the frame's budget. Only the
// reconciliation step after a nested call uses it.
func (e *Env) SetRemainingGas(remaining types.Gas) error {
	if e.meter == nil {
		return types.NewRuntimeError("gas meter unavailable")
	}
	return e.meter.SetRemaining(remaining)
}

// ConsumeGas charges the frame meter, surfacing budget exhaustion as
// the *types.OutOfGasError the meter raises.
func (e *Env) ConsumeGas(amount types.Gas) error {
	if e.meter == nil {
		return types.NewRuntimeError("gas meter unavailable")
	}
	return e.meter.Consume(amount)
}

// SetABIError records the error that aborted an in-flight host call.
func (e *Env) SetABIError(err error) { e.abiErr = err }

// ABIError returns the recorded host-call failure, nil if none.
func (e *Env) ABIError() error { return e.abiErr }
