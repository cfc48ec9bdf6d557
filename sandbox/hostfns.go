package sandbox

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/halcyonchain/scvm/exec"
	"github.com/halcyonchain/scvm/types"
)

// Host calls exported to guest code from the "env" module:
//
//	call_module(addrPtr, addrLen, fnPtr, fnLen, paramPtr, paramLen: i32, coins: i64) -> i64
//	local_call(bcPtr, bcLen, fnPtr, fnLen, paramPtr, paramLen: i32) -> i64
//	create_sc(bcPtr, bcLen: i32) -> i64
//	abort(msgPtr, msgLen: i32)
//
// Each charges its entry in the cost schedule before doing any work.
// A failing host call records its typed error on the frame and closes
// the instance, so the guest observes a trap and Run surfaces the
// original error kind.

const abiFailureExitCode = 1

func (e *WazeroEngine) registerHostModule(ctx context.Context) error {
	i32 := api.ValueTypeI32
	i64 := api.ValueTypeI64
	builder := e.rt.NewHostModuleBuilder("env")

	builder.NewFunctionBuilder().WithGoModuleFunction(
		api.GoModuleFunc(e.hostCallModule),
		[]api.ValueType{i32, i32, i32, i32, i32, i32, i64},
		[]api.ValueType{i64},
	).Export("call_module")

	builder.NewFunctionBuilder().WithGoModuleFunction(
		api.GoModuleFunc(e.hostLocalCall),
		[]api.ValueType{i32, i32, i32, i32, i32, i32},
		[]api.ValueType{i64},
	).Export("local_call")

	builder.NewFunctionBuilder().WithGoModuleFunction(
		api.GoModuleFunc(e.hostCreateSC),
		[]api.ValueType{i32, i32},
		[]api.ValueType{i64},
	).Export("create_sc")

	builder.NewFunctionBuilder().WithGoModuleFunction(
		api.GoModuleFunc(e.hostAbort),
		[]api.ValueType{i32, i32},
		[]api.ValueType{},
	).Export("abort")

	_, err := builder.Instantiate(ctx)
	return err
}

// frameEnv extracts the per-frame context Run attached to ctx.
func frameEnv(ctx context.Context) *exec.Env {
	env, _ := ctx.Value(frameKey{}).(*exec.Env)
	return env
}

// abiFail records err on the frame and aborts the guest instance. The
// recorded error, not the resulting trap, is what the caller sees.
func abiFail(ctx context.Context, m api.Module, env *exec.Env, err error) {
	if env != nil {
		env.SetABIError(err)
	}
	_ = m.CloseWithExitCode(ctx, abiFailureExitCode)
}

// chargeABI consumes the host call's cost from the frame meter.
func chargeABI(env *exec.Env, name string) error {
	if err := env.ConsumeGas(env.GasCosts().AbiCost(name)); err != nil {
		return &types.TrapError{Err: err}
	}
	return nil
}

func (e *WazeroEngine) hostCallModule(ctx context.Context, m api.Module, stack []uint64) {
	env := frameEnv(ctx)
	packed, err := func() (uint64, error) {
		if env == nil {
			return 0, types.NewRuntimeError("no execution context on call_module")
		}
		if err := chargeABI(env, "call_module"); err != nil {
			return 0, err
		}
		address, err := readFromGuest(m, uint32(stack[0]), uint32(stack[1]))
		if err != nil {
			return 0, err
		}
		function, err := readFromGuest(m, uint32(stack[2]), uint32(stack[3]))
		if err != nil {
			return 0, err
		}
		param, err := readFromGuest(m, uint32(stack[4]), uint32(stack[5]))
		if err != nil {
			return 0, err
		}
		resp, err := exec.CallModule(env, string(address), string(function), param, int64(stack[6]))
		if err != nil {
			return 0, err
		}
		return writeToGuest(ctx, m, resp.Ret)
	}()
	if err != nil {
		abiFail(ctx, m, env, err)
	}
	stack[0] = packed
}

func (e *WazeroEngine) hostLocalCall(ctx context.Context, m api.Module, stack []uint64) {
	env := frameEnv(ctx)
	packed, err := func() (uint64, error) {
		if env == nil {
			return 0, types.NewRuntimeError("no execution context on local_call")
		}
		if err := chargeABI(env, "local_call"); err != nil {
			return 0, err
		}
		bytecode, err := readFromGuest(m, uint32(stack[0]), uint32(stack[1]))
		if err != nil {
			return 0, err
		}
		function, err := readFromGuest(m, uint32(stack[2]), uint32(stack[3]))
		if err != nil {
			return 0, err
		}
		param, err := readFromGuest(m, uint32(stack[4]), uint32(stack[5]))
		if err != nil {
			return 0, err
		}
		resp, err := exec.LocalCall(env, bytecode, string(function), param)
		if err != nil {
			return 0, err
		}
		return writeToGuest(ctx, m, resp.Ret)
	}()
	if err != nil {
		abiFail(ctx, m, env, err)
	}
	stack[0] = packed
}

func (e *WazeroEngine) hostCreateSC(ctx context.Context, m api.Module, stack []uint64) {
	env := frameEnv(ctx)
	packed, err := func() (uint64, error) {
		if env == nil {
			return 0, types.NewRuntimeError("no execution context on create_sc")
		}
		if err := chargeABI(env, "create_sc"); err != nil {
			return 0, err
		}
		bytecode, err := readFromGuest(m, uint32(stack[0]), uint32(stack[1]))
		if err != nil {
			return 0, err
		}
		address, err := exec.CreateSC(env, bytecode)
		if err != nil {
			return 0, err
		}
		return writeToGuest(ctx, m, []byte(address))
	}()
	if err != nil {
		abiFail(ctx, m, env, err)
	}
	stack[0] = packed
}

// hostAbort implements the guest's abort primitive: the message becomes
// the trap the caller observes.
func (e *WazeroEngine) hostAbort(ctx context.Context, m api.Module, stack []uint64) {
	env := frameEnv(ctx)
	msg, err := readFromGuest(m, uint32(stack[0]), uint32(stack[1]))
	if err != nil {
		msg = []byte("abort with unreadable message")
	}
	abiFail(ctx, m, env, &types.TrapError{Err: types.NewRuntimeError("guest aborted: " + string(msg))})
}
