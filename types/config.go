package types

// ExecutionMode selects how budgets are enforced. It is fixed at VM
// construction; there is no way to switch modes mid-execution.
type ExecutionMode uint8

const (
	// ModeMetered enforces the resource budget on every frame. This is
	// the only mode a production execution path may use.
	ModeMetered ExecutionMode = iota

	// ModeCalibration grants every frame an unbounded budget and skips
	// reconciliation. It exists purely for offline cost-model
	// calibration and must never be wired into a production path.
	ModeCalibration
)

func (m ExecutionMode) String() string {
	switch m {
	case ModeMetered:
		return "metered"
	case ModeCalibration:
		return "calibration"
	default:
		return "unknown"
	}
}

// VMConfig bundles what the top-level VM needs at construction.
type VMConfig struct {
	// Interface is the host interface capability backing the VM.
	Interface Interface
	// Mode defaults to ModeMetered.
	Mode ExecutionMode
}
