package types

import (
	"fmt"
)

// The execution core reports every failure as one of a small set of
// error kinds so callers can react without string matching:
//
//   - RuntimeError: request validation and host-interface failures
//   - CompileError: bytecode rejected by the sandbox compiler
//   - InstantiationError: compiled module could not be instantiated
//   - TrapError: guest code faulted or exhausted its budget
//   - SerializationError: a payload or record could not be (de)coded
//
// All kinds are plain structs usable with errors.As; wrapped causes are
// reachable through Unwrap.

// RuntimeError is the generic kind: malformed requests detected before
// the sandbox is touched, and rejections from the host interface.
type RuntimeError struct {
	Msg string
	Err error
}

func (e *RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("runtime error: %s: %v", e.Msg, e.Err)
	}
	return "runtime error: " + e.Msg
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// NewRuntimeError creates a RuntimeError with a plain message.
func NewRuntimeError(msg string) *RuntimeError {
	return &RuntimeError{Msg: msg}
}

// WrapRuntimeError annotates a host-interface or request failure.
func WrapRuntimeError(msg string, err error) *RuntimeError {
	return &RuntimeError{Msg: msg, Err: err}
}

// CompileError reports bytecode the sandbox compiler rejected. It is a
// distinct kind from TrapError so callers can tell malformed code from
// code that ran and faulted.
type CompileError struct {
	Err error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile error: %v", e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// InstantiationError reports a compiled module that could not be turned
// into a live instance (missing imports, start-function failure).
type InstantiationError struct {
	Err error
}

func (e *InstantiationError) Error() string {
	return fmt.Sprintf("instantiation error: %v", e.Err)
}

func (e *InstantiationError) Unwrap() error { return e.Err }

// TrapError reports guest code that faulted during execution, including
// budget exhaustion surfaced by the gas meter.
type TrapError struct {
	Err error
}

func (e *TrapError) Error() string {
	return fmt.Sprintf("execution trap: %v", e.Err)
}

func (e *TrapError) Unwrap() error { return e.Err }

// SerializationError reports a payload or stored record that could not
// be encoded or decoded at the host boundary.
type SerializationError struct {
	Msg string
	Err error
}

func (e *SerializationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("serialization error: %s: %v", e.Msg, e.Err)
	}
	return "serialization error: " + e.Msg
}

func (e *SerializationError) Unwrap() error { return e.Err }

// OutOfGasError is raised by the gas meter when a charge exceeds the
// remaining budget. The engine surfaces it wrapped in a TrapError.
type OutOfGasError struct {
	Wanted    Gas
	Available Gas
}

func (e *OutOfGasError) Error() string {
	return fmt.Sprintf("out of gas: required %d, but only %d available", e.Wanted, e.Available)
}
