package fdkaac

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/llehouerou/go-fdkaac/internal/layout"
)

// wasmContext runs an fdk-aac build compiled to wasm32. The module must export
// its memory, malloc, free and the six encoder entry points.
type wasmContext struct {
	runtime wazero.Runtime
	module  api.Module

	// Cached function references
	fnGetLibInfo api.Function
	fnOpen       api.Function
	fnClose      api.Function
	fnSetParam   api.Function
	fnEncode     api.Function
	fnInfo       api.Function
	fnMalloc     api.Function
	fnFree       api.Function
}

func newWasmContext(ctx context.Context, wasm []byte) (*wasmContext, error) {
	rt, module, err := instantiateWasm(ctx, wasm)
	if err != nil {
		return nil, err
	}

	wctx, err := bindWasmExports(rt, module)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	return wctx, nil
}

func instantiateWasm(ctx context.Context, wasm []byte) (wazero.Runtime, api.Module, error) {
	rt := wazero.NewRuntime(ctx)

	// wasi-sdk and emscripten builds import fd_write and friends for stdio.
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, nil, err
	}

	compiled, err := rt.CompileModule(ctx, wasm)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, nil, fmt.Errorf("fdkaac: compile wasm module: %w", err)
	}

	config := wazero.NewModuleConfig().WithName("fdk-aac").WithStartFunctions("_initialize")
	module, err := rt.InstantiateModule(ctx, compiled, config)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, nil, fmt.Errorf("fdkaac: instantiate wasm module: %w", err)
	}
	return rt, module, nil
}

func bindWasmExports(rt wazero.Runtime, module api.Module) (*wasmContext, error) {
	if module.Memory() == nil {
		return nil, fmt.Errorf("%w: memory", ErrMissingSymbol)
	}

	wctx := &wasmContext{runtime: rt, module: module}
	exports := []struct {
		fn   *api.Function
		name string
	}{
		{&wctx.fnGetLibInfo, "aacEncGetLibInfo"},
		{&wctx.fnOpen, "aacEncOpen"},
		{&wctx.fnClose, "aacEncClose"},
		{&wctx.fnSetParam, "aacEncoder_SetParam"},
		{&wctx.fnEncode, "aacEncEncode"},
		{&wctx.fnInfo, "aacEncInfo"},
		{&wctx.fnMalloc, "malloc"},
		{&wctx.fnFree, "free"},
	}

	var missing []string
	for _, e := range exports {
		*e.fn = module.ExportedFunction(e.name)
		if *e.fn == nil {
			missing = append(missing, e.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingSymbol, strings.Join(missing, ", "))
	}
	return wctx, nil
}

func (w *wasmContext) abi() layout.ABI {
	return layout.ILP32
}

// malloc allocates memory in the WASM module.
func (w *wasmContext) malloc(ctx context.Context, size uint32) (uint64, error) {
	results, err := w.fnMalloc.Call(ctx, uint64(size))
	if err != nil {
		return 0, err
	}
	ptr := uint32(results[0]) //nolint:gosec // WASM pointers are 32-bit
	if ptr == 0 && size > 0 {
		return 0, ErrOutOfMemory
	}
	return uint64(ptr), nil
}

// free releases memory in the WASM module.
func (w *wasmContext) free(ctx context.Context, ptr uint64) {
	if ptr != 0 {
		_, _ = w.fnFree.Call(ctx, ptr)
	}
}

// write copies data to WASM memory at the given pointer.
func (w *wasmContext) write(ptr uint64, data []byte) bool {
	if ptr > 0xffffffff {
		return false
	}
	return w.module.Memory().Write(uint32(ptr), data)
}

// read copies data out of WASM memory. Memory.Read returns a view that later
// guest writes would change, so the bytes are copied.
func (w *wasmContext) read(ptr uint64, size uint32) ([]byte, bool) {
	if ptr > 0xffffffff {
		return nil, false
	}
	view, ok := w.module.Memory().Read(uint32(ptr), size)
	if !ok {
		return nil, false
	}
	out := make([]byte, len(view))
	copy(out, view)
	return out, true
}

func (w *wasmContext) call(ctx context.Context, fn api.Function, params ...uint64) (Status, error) {
	results, err := fn.Call(ctx, params...)
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, errors.New("fdkaac: entry point returned no status")
	}
	return Status(uint32(results[0])), nil //nolint:gosec // AACENC_ERROR is a 32-bit enum
}

func (w *wasmContext) getLibInfo(ctx context.Context, info uint64) (Status, error) {
	return w.call(ctx, w.fnGetLibInfo, info)
}

func (w *wasmContext) open(ctx context.Context, cell uint64, modules, maxChannels uint32) (Status, error) {
	return w.call(ctx, w.fnOpen, cell, uint64(modules), uint64(maxChannels))
}

func (w *wasmContext) close(ctx context.Context, cell uint64) (Status, error) {
	return w.call(ctx, w.fnClose, cell)
}

func (w *wasmContext) setParam(ctx context.Context, handle uint64, param, value uint32) (Status, error) {
	return w.call(ctx, w.fnSetParam, handle, uint64(param), uint64(value))
}

func (w *wasmContext) encode(ctx context.Context, handle, inDesc, outDesc, inArgs, outArgs uint64) (Status, error) {
	return w.call(ctx, w.fnEncode, handle, inDesc, outDesc, inArgs, outArgs)
}

func (w *wasmContext) info(ctx context.Context, handle, info uint64) (Status, error) {
	return w.call(ctx, w.fnInfo, handle, info)
}

func (w *wasmContext) release(ctx context.Context) error {
	return w.runtime.Close(ctx)
}
