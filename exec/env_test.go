package exec

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonchain/scvm/gas"
	"github.com/halcyonchain/scvm/types"
)

func TestEnvBudgetPrimitives(t *testing.T) {
	iface := newMockInterface()
	env, _ := testEnv(t, iface, &mockEngine{}, types.ModeMetered)

	remaining, err := env.RemainingGas()
	require.NoError(t, err)
	assert.Equal(t, types.Gas(testBudget), remaining)

	require.NoError(t, env.SetRemainingGas(123))
	remaining, err = env.RemainingGas()
	require.NoError(t, err)
	assert.Equal(t, types.Gas(123), remaining)

	// overwriting above the frame limit is a meter inconsistency
	err = env.SetRemainingGas(testBudget + 1)
	var rtErr *types.RuntimeError
	require.ErrorAs(t, err, &rtErr)
}

func TestEnvWithoutMeter(t *testing.T) {
	iface := newMockInterface()
	env := NewEnv(iface, &mockEngine{}, types.ModeMetered, zerolog.Nop(), nil)

	var rtErr *types.RuntimeError
	_, err := env.RemainingGas()
	require.ErrorAs(t, err, &rtErr)
	require.ErrorAs(t, env.SetRemainingGas(1), &rtErr)
	require.ErrorAs(t, env.ConsumeGas(1), &rtErr)
}

func TestEnvWithMeterIsIndependentDuplicate(t *testing.T) {
	iface := newMockInterface()
	env, meter := testEnv(t, iface, &mockEngine{}, types.ModeMetered)
	env.SetABIError(types.NewRuntimeError("leftover"))

	frameMeter := gas.NewMeter(500)
	frame := env.WithMeter(frameMeter)

	// the duplicate shares capability and schedule but not the meter
	assert.Equal(t, env.Interface(), frame.Interface())
	assert.Equal(t, env.GasCosts(), frame.GasCosts())
	assert.Nil(t, frame.ABIError())

	require.NoError(t, frame.ConsumeGas(100))
	remaining, err := frame.RemainingGas()
	require.NoError(t, err)
	assert.Equal(t, types.Gas(400), remaining)
	assert.Equal(t, types.Gas(testBudget), meter.Remaining())
}

func TestEnvLoggerRecordsDispatch(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)

	iface := newMockInterface()
	iface.bytecode["A1"] = []byte("callee bytecode")
	engine := &mockEngine{consume: 400_000, ret: []byte("ok")}
	meter := gas.NewMeter(testBudget)
	env := NewEnv(iface, engine, types.ModeMetered, logger, meter)

	_, err := CallModule(env, "A1", "transfer", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, types.Gas(600_000), meter.Remaining())
	assert.Contains(t, buf.String(), "dispatching remote call")
	assert.Contains(t, buf.String(), "remote call returned")

	// a rejected call never reaches the dispatch logging and leaves the
	// reconciled budget alone
	buf.Reset()
	_, err = CallModule(env, "A1", "transfer", nil, -1)
	var rtErr *types.RuntimeError
	require.ErrorAs(t, err, &rtErr)
	assert.Equal(t, types.Gas(600_000), meter.Remaining())
	assert.Empty(t, buf.String())
}

func TestEnvConsumeGasSurfacesOutOfGas(t *testing.T) {
	iface := newMockInterface()
	env := NewEnv(iface, &mockEngine{}, types.ModeMetered, zerolog.Nop(), gas.NewMeter(10))

	err := env.ConsumeGas(11)
	var oog *types.OutOfGasError
	require.ErrorAs(t, err, &oog)
	assert.Equal(t, types.Gas(11), oog.Wanted)
	assert.Equal(t, types.Gas(10), oog.Available)
}
