package sandbox

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/halcyonchain/scvm/types"
)

// writeToGuest places data into guest memory through the module's
// exported allocator and returns the packed (ptr << 32) | len location.
// Empty payloads are passed as the zero location without allocating.
func writeToGuest(ctx context.Context, m api.Module, data []byte) (uint64, error) {
	if len(data) == 0 {
		return 0, nil
	}
	alloc := m.ExportedFunction(guestAllocExport)
	if alloc == nil {
		return 0, types.NewRuntimeError("guest does not export \"" + guestAllocExport + "\"")
	}
	results, err := alloc.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, &types.TrapError{Err: err}
	}
	if len(results) == 0 {
		return 0, types.NewRuntimeError("guest allocator returned nothing")
	}
	ptr := uint32(results[0])
	mem := m.Memory()
	if mem == nil {
		return 0, types.NewRuntimeError("guest module exports no memory")
	}
	if !mem.Write(ptr, data) {
		return 0, types.NewRuntimeError("guest allocator returned an out-of-range pointer")
	}
	return uint64(ptr)<<32 | uint64(uint32(len(data))), nil
}

// readFromGuest copies length bytes at ptr out of guest memory. The
// copy matters: the underlying view is invalidated when the instance
// closes.
func readFromGuest(m api.Module, ptr, length uint32) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	mem := m.Memory()
	if mem == nil {
		return nil, types.NewRuntimeError("guest module exports no memory")
	}
	view, ok := mem.Read(ptr, length)
	if !ok {
		return nil, types.NewRuntimeError("out-of-range memory read from guest")
	}
	out := make([]byte, len(view))
	copy(out, view)
	return out, nil
}
