package fdkaac

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/llehouerou/go-fdkaac/internal/layout"
)

// memoryOnlyModule is a wasm module exporting one page of memory and nothing
// else: a memory section with one memory of min 1 page, and an export section
// naming it "memory".
var memoryOnlyModule = []byte("\x00asm\x01\x00\x00\x00" +
	"\x05\x03\x01\x00\x01" +
	"\x07\x0a\x01\x06memory\x02\x00")

func TestLoadWasmMissingExports(t *testing.T) {
	_, err := LoadLibrary(context.Background(), WithWasmModule(memoryOnlyModule))
	if !errors.Is(err, ErrMissingSymbol) {
		t.Fatalf("expected ErrMissingSymbol, got %v", err)
	}
	for _, name := range []string{"aacEncOpen", "aacEncEncode", "malloc", "free"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %s", err, name)
		}
	}
}

func TestLoadWasmInvalidModule(t *testing.T) {
	_, err := LoadLibrary(context.Background(), WithWasmModule([]byte("not wasm")))
	if err == nil {
		t.Fatal("expected an error for an invalid module")
	}
}

func newMemoryOnlyContext(t *testing.T) *wasmContext {
	t.Helper()
	ctx := context.Background()
	rt, module, err := instantiateWasm(ctx, memoryOnlyModule)
	if err != nil {
		t.Fatalf("instantiateWasm failed: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close(ctx) })
	return &wasmContext{runtime: rt, module: module}
}

func TestWasmMemoryAccess(t *testing.T) {
	w := newMemoryOnlyContext(t)

	if w.abi() != layout.ILP32 {
		t.Errorf("abi: got %+v, want ILP32", w.abi())
	}
	if !w.write(16, []byte{1, 2, 3}) {
		t.Fatal("write failed")
	}
	got, ok := w.read(16, 3)
	if !ok {
		t.Fatal("read failed")
	}

	// read returns a copy, not a view of guest memory.
	w.module.Memory().Write(16, []byte{9})
	if got[0] != 1 {
		t.Errorf("read aliased guest memory: got %d, want 1", got[0])
	}

	if _, ok := w.read(65535, 4); ok {
		t.Error("read past the end of memory succeeded")
	}
	if _, ok := w.read(1<<32, 1); ok {
		t.Error("read above 4 GiB succeeded")
	}
	if w.write(1<<32, []byte{1}) {
		t.Error("write above 4 GiB succeeded")
	}
}

func TestWasmPointerRoundTrip(t *testing.T) {
	w := newMemoryOnlyContext(t)

	if !w.write(64, encodePointers(w.abi(), []uint64{0xdeadbeef})) {
		t.Fatal("write failed")
	}
	got, err := readPointer(w, 64)
	if err != nil {
		t.Fatalf("readPointer failed: %v", err)
	}
	if got != 0xdeadbeef {
		t.Errorf("got %#x, want 0xdeadbeef", got)
	}
}

func TestReadCStringAtMemoryEnd(t *testing.T) {
	w := newMemoryOnlyContext(t)

	// No terminator before the end of linear memory.
	if !w.write(65534, []byte("ab")) {
		t.Fatal("write failed")
	}
	if got := readCString(w, 65534, maxCStringLen); got != "ab" {
		t.Errorf("got %q, want %q", got, "ab")
	}
}
