//go:build linux || darwin

package fdkaac

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/llehouerou/go-fdkaac/internal/layout"
)

// nativeLib calls a libfdk-aac shared object loaded with dlopen. Temporary
// argument memory comes from the C heap so the library never holds Go pointers.
type nativeLib struct {
	path   string
	handle uintptr
	libc   uintptr

	fnGetLibInfo func(info uintptr) int32
	fnOpen       func(cell uintptr, encModules, maxChannels uint32) int32
	fnClose      func(cell uintptr) int32
	fnSetParam   func(handle uintptr, param, value uint32) int32
	fnEncode     func(handle, inDesc, outDesc, inArgs, outArgs uintptr) int32
	fnInfo       func(handle, info uintptr) int32
	fnMalloc     func(size uintptr) uintptr
	fnFree       func(ptr uintptr)
}

func loadNative(path string) (callTable, error) {
	paths := nativeLibPaths(path)

	var lastErr error
	for _, p := range paths {
		handle, err := purego.Dlopen(p, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lastErr = err
			continue
		}
		lib := &nativeLib{path: p, handle: handle}
		if err := lib.bind(); err != nil {
			_ = purego.Dlclose(handle)
			lastErr = err
			continue
		}
		return lib, nil
	}

	if lastErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrLibraryNotFound, lastErr)
	}
	return nil, ErrLibraryNotFound
}

// nativeLibPaths lists candidates in lookup order: explicit path, environment,
// platform library names.
func nativeLibPaths(explicit string) []string {
	var paths []string
	if explicit != "" {
		return append(paths, explicit)
	}
	if env := os.Getenv(LibraryPathEnv); env != "" {
		paths = append(paths, env)
	}
	if runtime.GOOS == "darwin" {
		return append(paths,
			"libfdk-aac.2.dylib",
			"libfdk-aac.dylib",
			"/opt/homebrew/lib/libfdk-aac.dylib",
			"/usr/local/lib/libfdk-aac.dylib",
		)
	}
	return append(paths, "libfdk-aac.so.2", "libfdk-aac.so")
}

func libcPath() string {
	if runtime.GOOS == "darwin" {
		return "/usr/lib/libSystem.B.dylib"
	}
	return "libc.so.6"
}

func (n *nativeLib) bind() error {
	symbols := []struct {
		fn   any
		name string
	}{
		{&n.fnGetLibInfo, "aacEncGetLibInfo"},
		{&n.fnOpen, "aacEncOpen"},
		{&n.fnClose, "aacEncClose"},
		{&n.fnSetParam, "aacEncoder_SetParam"},
		{&n.fnEncode, "aacEncEncode"},
		{&n.fnInfo, "aacEncInfo"},
	}
	for _, s := range symbols {
		sym, err := purego.Dlsym(n.handle, s.name)
		if err != nil {
			return fmt.Errorf("%w: %s in %s", ErrMissingSymbol, s.name, n.path)
		}
		purego.RegisterFunc(s.fn, sym)
	}

	libc, err := purego.Dlopen(libcPath(), purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return fmt.Errorf("fdkaac: load libc: %w", err)
	}
	n.libc = libc
	purego.RegisterLibFunc(&n.fnMalloc, libc, "malloc")
	purego.RegisterLibFunc(&n.fnFree, libc, "free")
	return nil
}

func (n *nativeLib) abi() layout.ABI {
	return layout.ABI{
		PointerSize: uint32(unsafe.Sizeof(uintptr(0))),
		Order:       nativeByteOrder(),
	}
}

func (n *nativeLib) malloc(_ context.Context, size uint32) (uint64, error) {
	ptr := n.fnMalloc(uintptr(size))
	if ptr == 0 {
		return 0, ErrOutOfMemory
	}
	return uint64(ptr), nil
}

func (n *nativeLib) free(_ context.Context, addr uint64) {
	if addr != 0 {
		n.fnFree(uintptr(addr))
	}
}

func (n *nativeLib) bytes(addr uint64, size uint32) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(addr))), size) //nolint:govet // address owned by the C heap
}

func (n *nativeLib) read(addr uint64, size uint32) ([]byte, bool) {
	if addr == 0 {
		return nil, false
	}
	out := make([]byte, size)
	copy(out, n.bytes(addr, size))
	return out, true
}

func (n *nativeLib) write(addr uint64, data []byte) bool {
	if addr == 0 {
		return false
	}
	copy(n.bytes(addr, uint32(len(data))), data) //nolint:gosec // call buffers are far below 4 GiB
	return true
}

func status(code int32) Status {
	return Status(uint32(code)) //nolint:gosec // AACENC_ERROR is a 32-bit enum
}

func (n *nativeLib) getLibInfo(_ context.Context, info uint64) (Status, error) {
	return status(n.fnGetLibInfo(uintptr(info))), nil
}

func (n *nativeLib) open(_ context.Context, cell uint64, modules, maxChannels uint32) (Status, error) {
	return status(n.fnOpen(uintptr(cell), modules, maxChannels)), nil
}

func (n *nativeLib) close(_ context.Context, cell uint64) (Status, error) {
	return status(n.fnClose(uintptr(cell))), nil
}

func (n *nativeLib) setParam(_ context.Context, handle uint64, param, value uint32) (Status, error) {
	return status(n.fnSetParam(uintptr(handle), param, value)), nil
}

func (n *nativeLib) encode(_ context.Context, handle, inDesc, outDesc, inArgs, outArgs uint64) (Status, error) {
	return status(n.fnEncode(uintptr(handle), uintptr(inDesc), uintptr(outDesc), uintptr(inArgs), uintptr(outArgs))), nil
}

func (n *nativeLib) info(_ context.Context, handle, info uint64) (Status, error) {
	return status(n.fnInfo(uintptr(handle), uintptr(info))), nil
}

func (n *nativeLib) release(_ context.Context) error {
	return errors.Join(purego.Dlclose(n.handle), purego.Dlclose(n.libc))
}
