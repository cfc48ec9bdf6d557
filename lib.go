// Package scvm is a metered smart-contract runtime: it executes
// untrusted Wasm modules under a strict gas budget and lets one module
// synchronously call exported functions of another deployed module,
// with the budget tracked exactly across call boundaries.
package scvm

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/halcyonchain/scvm/exec"
	"github.com/halcyonchain/scvm/gas"
	"github.com/halcyonchain/scvm/sandbox"
	"github.com/halcyonchain/scvm/types"
)

// MainEntry is the export RunMain invokes.
const MainEntry = "main"

// VM is the main entry point to this library. One VM owns a sandbox
// engine and a host interface capability; each top-level Execute call
// gets its own execution context and budget.
type VM struct {
	engine *sandbox.WazeroEngine
	iface  types.Interface
	mode   types.ExecutionMode
	logger zerolog.Logger
}

// NewVM creates a VM from a configuration. The host interface is
// required; the mode defaults to metered execution.
func NewVM(config types.VMConfig, logger zerolog.Logger) (*VM, error) {
	if config.Interface == nil {
		return nil, types.NewRuntimeError("host interface is required")
	}
	engine, err := sandbox.NewWazeroEngine(logger)
	if err != nil {
		return nil, err
	}
	return &VM{
		engine: engine,
		iface:  config.Interface,
		mode:   config.Mode,
		logger: logger,
	}, nil
}

// Close releases the sandbox engine.
func (vm *VM) Close(ctx context.Context) error {
	return vm.engine.Close(ctx)
}

// newEnv builds the context for one top-level invocation.
func (vm *VM) newEnv(gasLimit types.Gas) (*exec.Env, gas.Meter) {
	meter := gas.NewMeter(gasLimit)
	return exec.NewEnv(vm.iface, vm.engine, vm.mode, vm.logger, meter), meter
}

func report(limit types.Gas, meter gas.Meter) types.GasReport {
	remaining := meter.Remaining()
	return types.GasReport{
		Limit:     limit,
		Remaining: remaining,
		Used:      limit - remaining,
	}
}

// Execute runs an exported function of the given bytecode under a fresh
// budget. This is the top-level entry into the sandbox; nested calls
// initiated by the guest run against the same invocation's accounting.
func (vm *VM) Execute(bytecode []byte, function string, param []byte, gasLimit types.Gas) (types.Response, types.GasReport, error) {
	env, meter := vm.newEnv(gasLimit)
	resp, err := exec.LocalCall(env, bytecode, function, param)
	return resp, report(gasLimit, meter), err
}

// RunMain executes the module's main export with no parameter.
func (vm *VM) RunMain(bytecode []byte, gasLimit types.Gas) (types.Response, types.GasReport, error) {
	return vm.Execute(bytecode, MainEntry, nil, gasLimit)
}

// Call invokes an exported function of the module deployed at address,
// as a top-level remote call. Coins follow remote-call semantics: a
// negative amount is rejected before the sandbox is touched.
func (vm *VM) Call(address, function string, param []byte, coins int64, gasLimit types.Gas) (types.Response, types.GasReport, error) {
	env, meter := vm.newEnv(gasLimit)
	resp, err := exec.CallModule(env, address, function, param, coins)
	return resp, report(gasLimit, meter), err
}

// CreateModule registers bytecode as a new deployable module and
// returns its address.
func (vm *VM) CreateModule(bytecode []byte) (string, error) {
	env, _ := vm.newEnv(0)
	return exec.CreateSC(env, bytecode)
}
