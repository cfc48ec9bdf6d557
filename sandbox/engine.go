// Package sandbox implements the exec.Engine capability on top of the
// wazero runtime.
//
// Guest ABI convention: a module exports `allocate(size: i32) -> i32`
// so the host can place byte payloads into guest memory, and entry
// points have the shape `fn(ptr: i32, len: i32) -> i64` where the
// result packs the response location as (ptr << 32) | len. Host calls
// available to guest code are exported from the "env" module, see
// hostfns.go.
package sandbox

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tetratelabs/wazero"

	"github.com/halcyonchain/scvm/exec"
	"github.com/halcyonchain/scvm/gas"
	"github.com/halcyonchain/scvm/types"
)

const guestAllocExport = "allocate"

// frameKey carries the per-frame *exec.Env through wazero's context so
// host functions can reach the orchestrator and the frame meter.
type frameKey struct{}

// compiledModule wraps a wazero compiled module together with the size
// of the bytecode that produced it, needed to charge compilation
// against the frame budget.
type compiledModule struct {
	mod  wazero.CompiledModule
	size uint64
}

// WazeroEngine compiles and runs guest modules with wazero. One engine
// hosts any number of sequential executions; the host ABI module is
// registered once at construction.
type WazeroEngine struct {
	rt     wazero.Runtime
	logger zerolog.Logger
}

var _ exec.Engine = (*WazeroEngine)(nil)

// NewWazeroEngine initializes a wazero runtime and registers the host
// ABI module.
func NewWazeroEngine(logger zerolog.Logger) (*WazeroEngine, error) {
	ctx := context.Background()
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCloseOnContextDone(true))
	e := &WazeroEngine{rt: rt, logger: logger}
	if err := e.registerHostModule(ctx); err != nil {
		_ = rt.Close(ctx)
		return nil, types.WrapRuntimeError("registering host module", err)
	}
	return e, nil
}

// Close releases the underlying runtime and all instantiated modules.
func (e *WazeroEngine) Close(ctx context.Context) error {
	return e.rt.Close(ctx)
}

// Compile turns bytecode into an executable module. Nothing is charged
// here; Run charges the compilation against the budget it was granted.
func (e *WazeroEngine) Compile(bytecode []byte) (exec.Module, error) {
	mod, err := e.rt.CompileModule(context.Background(), bytecode)
	if err != nil {
		return nil, &types.CompileError{Err: err}
	}
	return compiledModule{mod: mod, size: uint64(len(bytecode))}, nil
}

// Run executes the named export under a fresh frame granted at most
// limit gas and reports what the frame left unconsumed.
func (e *WazeroEngine) Run(env *exec.Env, mod exec.Module, function string, param []byte, limit types.Gas) (types.Response, error) {
	compiled, ok := mod.(compiledModule)
	if !ok {
		return types.Response{}, types.NewRuntimeError("module was not produced by this engine")
	}

	meter := gas.NewMeter(limit)
	frame := env.WithMeter(meter)
	costs := env.GasCosts()
	if err := meter.Consume(costs.LaunchCost); err != nil {
		return types.Response{}, &types.TrapError{Err: err}
	}
	if err := meter.Consume(costs.CompileCostPerByte * compiled.size); err != nil {
		return types.Response{}, &types.TrapError{Err: err}
	}

	ctx := context.WithValue(context.Background(), frameKey{}, frame)
	instance, err := e.rt.InstantiateModule(ctx, compiled.mod, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return types.Response{}, &types.InstantiationError{Err: err}
	}
	defer instance.Close(ctx)

	fn := instance.ExportedFunction(function)
	if fn == nil {
		return types.Response{}, types.NewRuntimeError(fmt.Sprintf("function %q is not exported by the module", function))
	}
	e.logger.Debug().Str("function", function).Uint64("limit", limit).Msg("running export")

	packedParam, err := writeToGuest(ctx, instance, param)
	if err != nil {
		return types.Response{}, e.frameError(frame, err)
	}

	results, err := fn.Call(ctx, uint64(uint32(packedParam>>32)), uint64(uint32(packedParam)))
	if err != nil {
		return types.Response{}, e.frameError(frame, err)
	}

	var ret []byte
	if len(results) > 0 && results[0] != 0 {
		ptr := uint32(results[0] >> 32)
		length := uint32(results[0])
		ret, err = readFromGuest(instance, ptr, length)
		if err != nil {
			return types.Response{}, err
		}
	}

	return types.Response{Ret: ret, RemainingGas: meter.Remaining()}, nil
}

// frameError surfaces the typed error recorded by an aborted host call
// if there is one; anything else is a plain guest trap.
func (e *WazeroEngine) frameError(frame *exec.Env, err error) error {
	if abiErr := frame.ABIError(); abiErr != nil {
		return abiErr
	}
	if _, ok := err.(*types.TrapError); ok {
		return err
	}
	return &types.TrapError{Err: err}
}
