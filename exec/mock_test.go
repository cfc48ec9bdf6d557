package exec

import (
	"github.com/halcyonchain/scvm/types"
)

// mockModule is what mockEngine produces for any bytecode.
type mockModule struct {
	bytecode []byte
}

// mockEngine is a deterministic stand-in for the sandbox engine: a run
// "consumes" a fixed amount of the granted budget and returns a fixed
// payload.
type mockEngine struct {
	compileErr error
	runErr     error
	consume    types.Gas
	ret        []byte

	compiled  [][]byte
	runs      int
	lastLimit types.Gas
}

func (m *mockEngine) Compile(bytecode []byte) (Module, error) {
	if m.compileErr != nil {
		return nil, m.compileErr
	}
	m.compiled = append(m.compiled, bytecode)
	return mockModule{bytecode: bytecode}, nil
}

func (m *mockEngine) Run(env *Env, mod Module, function string, param []byte, limit types.Gas) (types.Response, error) {
	m.runs++
	m.lastLimit = limit
	if m.runErr != nil {
		return types.Response{}, m.runErr
	}
	if m.consume > limit {
		return types.Response{}, &types.TrapError{Err: &types.OutOfGasError{Wanted: m.consume, Available: limit}}
	}
	return types.Response{Ret: m.ret, RemainingGas: limit - m.consume}, nil
}

// mockInterface is a deterministic host interface capability.
type mockInterface struct {
	bytecode   map[string][]byte
	initErr    error
	finishErr  error
	createAddr string
	createErr  error
	costs      types.GasCosts

	initCalls   int
	finishCalls int
	created     [][]byte
}

func newMockInterface() *mockInterface {
	return &mockInterface{
		bytecode: make(map[string][]byte),
		costs:    types.DefaultGasCosts(),
	}
}

func (m *mockInterface) InitCall(address string, coins uint64) ([]byte, error) {
	m.initCalls++
	if m.initErr != nil {
		return nil, m.initErr
	}
	return m.bytecode[address], nil
}

func (m *mockInterface) FinishCall() error {
	m.finishCalls++
	return m.finishErr
}

func (m *mockInterface) CreateModule(bytecode []byte) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	m.created = append(m.created, bytecode)
	return m.createAddr, nil
}

func (m *mockInterface) GasCosts() types.GasCosts {
	return m.costs
}
