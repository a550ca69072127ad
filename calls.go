package fdkaac

import (
	"context"
	"fmt"

	"github.com/llehouerou/go-fdkaac/internal/layout"
)

// callTable is the native entry point set together with the address space
// the library lives in. Addresses are library addresses: process pointers for
// the native backend, linear memory offsets for the wasm backend.
type callTable interface {
	// abi reports the library's pointer width and byte order.
	abi() layout.ABI

	malloc(ctx context.Context, size uint32) (uint64, error)
	free(ctx context.Context, addr uint64)
	// read copies size bytes starting at addr.
	read(addr uint64, size uint32) ([]byte, bool)
	write(addr uint64, data []byte) bool

	// aacEncGetLibInfo(LIB_INFO *info)
	getLibInfo(ctx context.Context, info uint64) (Status, error)
	// aacEncOpen(HANDLE_AACENCODER *ph, UINT encModules, UINT maxChannels)
	open(ctx context.Context, cell uint64, modules, maxChannels uint32) (Status, error)
	// aacEncClose(HANDLE_AACENCODER *ph)
	close(ctx context.Context, cell uint64) (Status, error)
	// aacEncoder_SetParam(HANDLE_AACENCODER h, AACENC_PARAM param, UINT value)
	setParam(ctx context.Context, handle uint64, param, value uint32) (Status, error)
	// aacEncEncode(HANDLE_AACENCODER h, const AACENC_BufDesc *in,
	//   const AACENC_BufDesc *out, const AACENC_InArgs *inargs, AACENC_OutArgs *outargs)
	encode(ctx context.Context, handle, inDesc, outDesc, inArgs, outArgs uint64) (Status, error)
	// aacEncInfo(HANDLE_AACENCODER h, AACENC_InfoStruct *info)
	info(ctx context.Context, handle, info uint64) (Status, error)

	// release unloads the library.
	release(ctx context.Context) error
}

// arena tracks temporary allocations for a single call.
type arena struct {
	ctx   context.Context
	calls callTable
	addrs []uint64
}

func newArena(ctx context.Context, calls callTable) *arena {
	return &arena{ctx: ctx, calls: calls}
}

// alloc returns size zeroed bytes.
func (a *arena) alloc(size uint32) (uint64, error) {
	return a.put(make([]byte, size))
}

// put copies data into freshly allocated memory.
func (a *arena) put(data []byte) (uint64, error) {
	size := uint32(len(data)) //nolint:gosec // call buffers are far below 4 GiB
	if size == 0 {
		size = 1
	}
	addr, err := a.calls.malloc(a.ctx, size)
	if err != nil {
		return 0, err
	}
	a.addrs = append(a.addrs, addr)
	if len(data) > 0 && !a.calls.write(addr, data) {
		return 0, fmt.Errorf("%w: write %d bytes at %#x", ErrMemoryAccess, len(data), addr)
	}
	return addr, nil
}

// release frees every allocation in reverse order.
func (a *arena) release() {
	for i := len(a.addrs) - 1; i >= 0; i-- {
		a.calls.free(a.ctx, a.addrs[i])
	}
	a.addrs = nil
}

// readExact reads size bytes or fails with ErrMemoryAccess.
func readExact(calls callTable, addr uint64, size uint32) ([]byte, error) {
	data, ok := calls.read(addr, size)
	if !ok {
		return nil, fmt.Errorf("%w: read %d bytes at %#x", ErrMemoryAccess, size, addr)
	}
	return data, nil
}

// readCString reads a NUL-terminated string of at most limit bytes.
func readCString(calls callTable, addr uint64, limit uint32) string {
	if addr == 0 {
		return ""
	}
	var out []byte
	const chunk = 16
	for uint32(len(out)) < limit { //nolint:gosec // bounded by limit
		data, ok := calls.read(addr+uint64(len(out)), chunk)
		if !ok {
			// The string may end close to the top of the address space.
			data, ok = calls.read(addr+uint64(len(out)), 1)
			if !ok {
				break
			}
		}
		for _, b := range data {
			if b == 0 || uint32(len(out)) >= limit { //nolint:gosec // bounded by limit
				return string(out)
			}
			out = append(out, b)
		}
	}
	return string(out)
}

// cString trims a fixed char array at its first NUL.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// readPointer reads one pointer-sized value.
func readPointer(calls callTable, addr uint64) (uint64, error) {
	abi := calls.abi()
	data, err := readExact(calls, addr, abi.PointerSize)
	if err != nil {
		return 0, err
	}
	if abi.PointerSize == 4 {
		return uint64(abi.Order.Uint32(data)), nil
	}
	return abi.Order.Uint64(data), nil
}

// encodePointers packs addresses into a native pointer array.
func encodePointers(abi layout.ABI, addrs []uint64) []byte {
	out := make([]byte, len(addrs)*int(abi.PointerSize))
	for i, addr := range addrs {
		off := i * int(abi.PointerSize)
		if abi.PointerSize == 4 {
			abi.Order.PutUint32(out[off:], uint32(addr)) //nolint:gosec // 32-bit address space
		} else {
			abi.Order.PutUint64(out[off:], addr)
		}
	}
	return out
}

// encodeInt32s packs values into a native INT array.
func encodeInt32s(abi layout.ABI, vals []int32) []byte {
	out := make([]byte, len(vals)*4)
	for i, v := range vals {
		abi.Order.PutUint32(out[i*4:], uint32(v)) //nolint:gosec // intentional reinterpretation
	}
	return out
}
