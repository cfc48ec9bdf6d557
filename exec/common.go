package exec

import (
	"fmt"
	"math"

	"github.com/halcyonchain/scvm/types"
)

// CallModule invokes an exported function of the module deployed at
// address, transferring rawCoins to it as part of call initiation.
//
// The callee runs in its own sandbox instance but against the caller's
// budget: the caller's remaining gas is captured before the call,
// granted to the callee, and whatever the callee left over is written
// back afterwards, so a nested call costs exactly what it consumed.
// The budget write happens only after a successful response; a trapped
// callee leaves the caller's accounting untouched.
func CallModule(env *Env, address, function string, param []byte, rawCoins int64) (types.Response, error) {
	if rawCoins < 0 {
		return types.Response{}, types.NewRuntimeError("negative amount of coins in Call")
	}
	coins := uint64(rawCoins)

	bytecode, err := env.Interface().InitCall(address, coins)
	if err != nil {
		return types.Response{}, types.WrapRuntimeError(fmt.Sprintf("init_call %q", address), err)
	}

	limit := types.Gas(math.MaxUint64)
	if env.Mode() != types.ModeCalibration {
		limit, err = env.RemainingGas()
		if err != nil {
			return types.Response{}, err
		}
	}

	env.Logger().Debug().
		Str("address", address).
		Str("function", function).
		Uint64("granted", limit).
		Msg("dispatching remote call")

	mod, err := env.engine.Compile(bytecode)
	if err != nil {
		return types.Response{}, err
	}
	resp, err := env.engine.Run(env, mod, function, param, limit)
	if err != nil {
		return types.Response{}, err
	}

	if env.Mode() != types.ModeCalibration {
		if err := env.SetRemainingGas(resp.RemainingGas); err != nil {
			return types.Response{}, err
		}
	}
	if err := env.Interface().FinishCall(); err != nil {
		return types.Response{}, types.WrapRuntimeError("finish_call", err)
	}

	env.Logger().Debug().
		Str("address", address).
		Str("function", function).
		Uint64("remaining", resp.RemainingGas).
		Msg("remote call returned")
	return resp, nil
}

// LocalCall executes caller-supplied bytecode as a sub-execution of the
// current frame. There is no address resolution, no value transfer and
// no finish-call notification: the only side effect on the caller is
// the budget reconciliation after a successful run.
func LocalCall(env *Env, bytecode []byte, function string, param []byte) (types.Response, error) {
	limit := types.Gas(math.MaxUint64)
	var err error
	if env.Mode() != types.ModeCalibration {
		limit, err = env.RemainingGas()
		if err != nil {
			return types.Response{}, err
		}
	}

	mod, err := env.engine.Compile(bytecode)
	if err != nil {
		return types.Response{}, err
	}
	resp, err := env.engine.Run(env, mod, function, param, limit)
	if err != nil {
		return types.Response{}, err
	}

	if env.Mode() != types.ModeCalibration {
		if err := env.SetRemainingGas(resp.RemainingGas); err != nil {
			return types.Response{}, err
		}
	}
	return resp, nil
}

// CreateSC registers bytecode as a new deployable module and returns
// its address. Pure delegation to the host interface: no compilation,
// no execution.
func CreateSC(env *Env, bytecode []byte) (string, error) {
	address, err := env.Interface().CreateModule(bytecode)
	if err != nil {
		return "", types.WrapRuntimeError("create_module", err)
	}
	return address, nil
}
