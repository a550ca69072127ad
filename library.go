package fdkaac

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

// LibraryPathEnv names the environment variable consulted for the native
// library path when WithLibraryPath is not given.
const LibraryPathEnv = "FDKAAC_LIB_PATH"

// Option configures LoadLibrary and Register.
type Option func(*options)

type options struct {
	libPath   string
	wasm      []byte
	logger    *zap.Logger
	alignment Alignment
}

// WithLibraryPath loads the native library from path instead of searching
// $FDKAAC_LIB_PATH and the platform library names.
func WithLibraryPath(path string) Option {
	return func(o *options) { o.libPath = path }
}

// WithWasmModule runs fdk-aac compiled to wasm32 instead of a native library.
// The module must export memory, malloc, free and the encoder entry points.
func WithWasmModule(wasm []byte) Option {
	return func(o *options) { o.wasm = wasm }
}

// WithLogger sets the logger for one library.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithAlignment selects the struct padding rule of the library build.
// AlignNative is the default.
func WithAlignment(a Alignment) Option {
	return func(o *options) { o.alignment = a }
}

// Library is a loaded fdk-aac encoder library.
//
// A Library may be shared by goroutines; each Encoder opened from it must
// only be used by one goroutine at a time.
type Library struct {
	calls   callTable
	layouts *layouts
	log     *zap.Logger

	// mu is held shared across library-level calls and exclusively by Close.
	mu     sync.RWMutex
	closed bool
	open   atomic.Int32
}

// LoadLibrary loads the encoder library. Without WithWasmModule the native
// shared object is located through WithLibraryPath, $FDKAAC_LIB_PATH, then
// the platform library names.
func LoadLibrary(ctx context.Context, opts ...Option) (*Library, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}

	var (
		calls callTable
		err   error
	)
	if o.wasm != nil {
		calls, err = newWasmContext(ctx, o.wasm)
		if err != nil {
			return nil, err
		}
		log.Debug("fdkaac: wasm module loaded", zap.Int("size", len(o.wasm)))
	} else {
		calls, err = loadNative(o.libPath)
		if err != nil {
			return nil, err
		}
		log.Debug("fdkaac: native library loaded", zap.String("path", o.libPath))
	}

	return newLibrary(calls, o.alignment, log), nil
}

func newLibrary(calls callTable, align Alignment, log *zap.Logger) *Library {
	abi := calls.abi()
	abi.Alignment = align
	return &Library{
		calls:   calls,
		layouts: newLayouts(abi),
		log:     log,
	}
}

// Close unloads the library. It returns ErrEncodersOpen, and leaves the
// library loaded, while encoders opened from it are still open. Every call
// through the library fails with ErrLibraryClosed afterwards.
func (l *Library) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ErrLibraryClosed
	}
	if n := l.open.Load(); n > 0 {
		return fmt.Errorf("%w: %d", ErrEncodersOpen, n)
	}
	l.closed = true
	l.log.Debug("fdkaac: library closed")
	return l.calls.release(ctx)
}

func (l *Library) isClosed() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.closed
}

// LibInfo describes one module linked into the library.
type LibInfo struct {
	Title     string
	BuildDate string
	BuildTime string
	Module    ModuleID
	Version   int32
	Flags     uint32
	// VersionString is the versionStr field, e.g. "4.0.0".
	VersionString string
}

// VersionTriple decodes Version, built with LIB_VERSION(major, minor, patch).
func (i LibInfo) VersionTriple() (major, minor, patch int) {
	v := uint32(i.Version) //nolint:gosec // version is a bit field
	return int(v >> 24 & 0xff), int(v >> 16 & 0xff), int(v >> 8 & 0xff)
}

// maxCStringLen bounds strings read through LIB_INFO pointers.
const maxCStringLen = 256

// Info calls aacEncGetLibInfo and returns every module entry the library filled.
func (l *Library) Info(ctx context.Context) ([]LibInfo, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ErrLibraryClosed
	}

	a := newArena(ctx, l.calls)
	defer a.release()

	entrySize := l.layouts.libInfo.Size
	total := entrySize * uint32(moduleLast)
	addr, err := a.alloc(total)
	if err != nil {
		return nil, err
	}

	st, err := l.calls.getLibInfo(ctx, addr)
	if err != nil {
		return nil, err
	}
	if st != StatusOK {
		l.log.Debug("fdkaac: aacEncGetLibInfo failed", zap.Stringer("status", st))
		return nil, st
	}

	raw, err := readExact(l.calls, addr, total)
	if err != nil {
		return nil, err
	}

	var infos []LibInfo
	for i := uint32(0); i < uint32(moduleLast); i++ {
		v, err := l.layouts.calc.NewView(l.layouts.libInfo, raw[i*entrySize:])
		if err != nil {
			return nil, err
		}
		module := ModuleID(v.Int32("module_id"))
		if module == ModuleNone {
			continue
		}
		infos = append(infos, LibInfo{
			Title:         readCString(l.calls, v.Pointer("title"), maxCStringLen),
			BuildDate:     readCString(l.calls, v.Pointer("build_date"), maxCStringLen),
			BuildTime:     readCString(l.calls, v.Pointer("build_time"), maxCStringLen),
			Module:        module,
			Version:       v.Int32("version"),
			Flags:         v.Uint32("flags"),
			VersionString: cString(v.Array("versionStr")),
		})
	}
	return infos, nil
}

// Open calls aacEncOpen. maxChannels bounds the channels the instance can
// encode; modules selects the sub-encoders to allocate.
func (l *Library) Open(ctx context.Context, modules Modules, maxChannels uint32) (*Encoder, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return nil, ErrLibraryClosed
	}

	ptrSize := l.calls.abi().PointerSize
	cell, err := l.calls.malloc(ctx, ptrSize)
	if err != nil {
		return nil, err
	}
	if !l.calls.write(cell, make([]byte, ptrSize)) {
		l.calls.free(ctx, cell)
		return nil, fmt.Errorf("%w: handle cell at %#x", ErrMemoryAccess, cell)
	}

	st, err := l.calls.open(ctx, cell, uint32(modules), maxChannels)
	if err != nil {
		l.calls.free(ctx, cell)
		return nil, err
	}
	if st != StatusOK {
		l.calls.free(ctx, cell)
		l.log.Debug("fdkaac: aacEncOpen failed",
			zap.Stringer("status", st),
			zap.Uint32("max_channels", maxChannels))
		return nil, st
	}

	handle, err := readPointer(l.calls, cell)
	if err != nil {
		l.calls.free(ctx, cell)
		return nil, err
	}
	if handle == 0 {
		l.calls.free(ctx, cell)
		return nil, ErrNullHandle
	}

	l.log.Debug("fdkaac: encoder opened",
		zap.Uint64("handle", handle),
		zap.Uint32("modules", uint32(modules)),
		zap.Uint32("max_channels", maxChannels))

	l.open.Add(1)
	return &Encoder{lib: l, cell: cell, handle: handle}, nil
}
