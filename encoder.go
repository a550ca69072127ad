package fdkaac

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Encoder is an open encoder handle.
//
// The handle is a non-owning reference to native state: it is valid from Open
// until Close. An Encoder must not be used concurrently; the binding adds no
// locking around native calls.
type Encoder struct {
	lib *Library
	// cell is the HANDLE_AACENCODER variable aacEncOpen wrote the handle into.
	cell   uint64
	handle uint64
	closed bool
}

// Buffer is one buffer of a BufDesc.
type Buffer struct {
	ID BufferID
	// Data is copied into the library before the call. For output descriptors
	// the library's contents are copied back into Data afterwards.
	Data []byte
	// ElemSize is the size of one element in bytes: 2 for 16-bit PCM, 1 for
	// bitstream data. It is passed through unchecked.
	ElemSize int32
}

// BufDesc describes one side of an Encode call.
type BufDesc struct {
	Bufs []Buffer
}

// InArgs are the per-call inputs of Encode.
type InArgs struct {
	// NumInSamples is the number of valid input samples over all channels.
	// -1 flushes the encoder.
	NumInSamples int32
	NumAncBytes  int32
}

// OutArgs are the per-call outputs of Encode.
type OutArgs struct {
	NumOutBytes  int32
	NumInSamples int32
	NumAncBytes  int32
	BitResState  int32
}

// EncInfo is the AACENC_InfoStruct filled by aacEncInfo.
type EncInfo struct {
	MaxOutBufBytes uint32
	MaxAncBytes    uint32
	InBufFillLevel uint32
	InputChannels  uint32
	FrameLength    uint32
	Delay          uint32
	DelayCore      uint32
	// ConfBuf is the AudioSpecificConfig or StreamMuxConfig, confSize bytes long.
	ConfBuf []byte
}

// Handle returns the native handle address. It is zero after Close.
func (e *Encoder) Handle() uint64 {
	if e == nil {
		return 0
	}
	return e.handle
}

func (e *Encoder) check() error {
	if e == nil || e.lib == nil {
		return ErrNotOpen
	}
	if e.lib.isClosed() {
		return ErrLibraryClosed
	}
	return nil
}

// SetParam calls aacEncoder_SetParam. The status is returned unchanged.
func (e *Encoder) SetParam(ctx context.Context, param Param, value uint32) error {
	if err := e.check(); err != nil {
		return err
	}
	st, err := e.lib.calls.setParam(ctx, e.handle, uint32(param), value)
	if err != nil {
		return err
	}
	if st != StatusOK {
		e.lib.log.Debug("fdkaac: aacEncoder_SetParam rejected",
			zap.Stringer("status", st),
			zap.Uint32("param", uint32(param)),
			zap.Uint32("value", value))
	}
	return st.err()
}

// Encode calls aacEncEncode.
//
// Passing nil for every argument performs the configuration call that
// applies pending SetParam values. The returned OutArgs are valid even when
// the error is a Status, since the library may have consumed input or
// produced output before failing.
func (e *Encoder) Encode(ctx context.Context, in, out *BufDesc, args *InArgs) (OutArgs, error) {
	if err := e.check(); err != nil {
		return OutArgs{}, err
	}
	l := e.lib
	a := newArena(ctx, l.calls)
	defer a.release()

	inAddr, _, err := l.putBufDesc(a, in)
	if err != nil {
		return OutArgs{}, err
	}
	outAddr, outBufs, err := l.putBufDesc(a, out)
	if err != nil {
		return OutArgs{}, err
	}

	var inArgsAddr, outArgsAddr uint64
	if args != nil {
		v := l.layouts.calc.Alloc(l.layouts.inArgs)
		v.PutInt32("numInSamples", args.NumInSamples)
		v.PutInt32("numAncBytes", args.NumAncBytes)
		if inArgsAddr, err = a.put(v.Bytes()); err != nil {
			return OutArgs{}, err
		}
	}
	if in != nil || out != nil || args != nil {
		if outArgsAddr, err = a.alloc(l.layouts.outArgs.Size); err != nil {
			return OutArgs{}, err
		}
	}

	st, err := l.calls.encode(ctx, e.handle, inAddr, outAddr, inArgsAddr, outArgsAddr)
	if err != nil {
		return OutArgs{}, err
	}

	var result OutArgs
	if outArgsAddr != 0 {
		raw, err := readExact(l.calls, outArgsAddr, l.layouts.outArgs.Size)
		if err != nil {
			return OutArgs{}, err
		}
		v, err := l.layouts.calc.NewView(l.layouts.outArgs, raw)
		if err != nil {
			return OutArgs{}, err
		}
		result = OutArgs{
			NumOutBytes:  v.Int32("numOutBytes"),
			NumInSamples: v.Int32("numInSamples"),
			NumAncBytes:  v.Int32("numAncBytes"),
			BitResState:  v.Int32("bitResState"),
		}
	}

	if out != nil {
		for i, addr := range outBufs {
			if addr == 0 {
				continue
			}
			data, err := readExact(l.calls, addr, uint32(len(out.Bufs[i].Data))) //nolint:gosec // call buffers are far below 4 GiB
			if err != nil {
				return result, err
			}
			copy(out.Bufs[i].Data, data)
		}
	}

	if st != StatusOK && st != StatusEncodeEOF {
		l.log.Debug("fdkaac: aacEncEncode failed", zap.Stringer("status", st))
	}
	return result, st.err()
}

// putBufDesc writes d and its arrays into the arena. It returns the descriptor
// address and the address of each buffer's data, or zero when d is nil.
func (l *Library) putBufDesc(a *arena, d *BufDesc) (uint64, []uint64, error) {
	if d == nil {
		return 0, nil, nil
	}
	abi := l.layouts.calc.ABI()

	n := len(d.Bufs)
	bufs := make([]uint64, n)
	ids := make([]int32, n)
	sizes := make([]int32, n)
	elSizes := make([]int32, n)
	for i, b := range d.Bufs {
		if len(b.Data) > 0 {
			addr, err := a.put(b.Data)
			if err != nil {
				return 0, nil, err
			}
			bufs[i] = addr
		}
		ids[i] = int32(b.ID)
		sizes[i] = int32(len(b.Data)) //nolint:gosec // call buffers are far below 2 GiB
		elSizes[i] = b.ElemSize
	}

	v := l.layouts.calc.Alloc(l.layouts.bufDesc)
	v.PutInt32("numBufs", int32(n)) //nolint:gosec // a handful of buffers
	if n > 0 {
		arrays := []struct {
			field string
			data  []byte
		}{
			{"bufs", encodePointers(abi, bufs)},
			{"bufferIdentifiers", encodeInt32s(abi, ids)},
			{"bufSizes", encodeInt32s(abi, sizes)},
			{"bufElSizes", encodeInt32s(abi, elSizes)},
		}
		for _, arr := range arrays {
			addr, err := a.put(arr.data)
			if err != nil {
				return 0, nil, err
			}
			v.PutPointer(arr.field, addr)
		}
	}

	addr, err := a.put(v.Bytes())
	if err != nil {
		return 0, nil, err
	}
	return addr, bufs, nil
}

// Info calls aacEncInfo. Call it after the configuration call to Encode and
// before the first frame is encoded.
func (e *Encoder) Info(ctx context.Context) (EncInfo, error) {
	if err := e.check(); err != nil {
		return EncInfo{}, err
	}
	l := e.lib
	a := newArena(ctx, l.calls)
	defer a.release()

	addr, err := a.alloc(l.layouts.info.Size)
	if err != nil {
		return EncInfo{}, err
	}
	st, err := l.calls.info(ctx, e.handle, addr)
	if err != nil {
		return EncInfo{}, err
	}
	if st != StatusOK {
		l.log.Debug("fdkaac: aacEncInfo failed", zap.Stringer("status", st))
		return EncInfo{}, st
	}

	raw, err := readExact(l.calls, addr, l.layouts.info.Size)
	if err != nil {
		return EncInfo{}, err
	}
	v, err := l.layouts.calc.NewView(l.layouts.info, raw)
	if err != nil {
		return EncInfo{}, err
	}

	conf := v.Array("confBuf")
	confSize := min(v.Uint32("confSize"), uint32(len(conf))) //nolint:gosec // fixed 64-byte array
	return EncInfo{
		MaxOutBufBytes: v.Uint32("maxOutBufBytes"),
		MaxAncBytes:    v.Uint32("maxAncBytes"),
		InBufFillLevel: v.Uint32("inBufFillLevel"),
		InputChannels:  v.Uint32("inputChannels"),
		FrameLength:    v.Uint32("frameLength"),
		Delay:          v.Uint32("nDelay"),
		DelayCore:      v.Uint32("nDelayCore"),
		ConfBuf:        conf[:confSize],
	}, nil
}

// State reads the native encoder struct into a snapshot.
func (e *Encoder) State(ctx context.Context) (*EncoderState, error) {
	if err := e.check(); err != nil {
		return nil, err
	}
	return NewEncoderState(ctx, e.lib, e.handle)
}

// Close calls aacEncClose, which releases the native encoder and clears the
// handle cell. Close on a closed Encoder returns ErrHandleClosed; later
// SetParam, Encode and Info calls pass a NULL handle to the library, which
// answers StatusInvalidHandle.
func (e *Encoder) Close(ctx context.Context) error {
	if err := e.check(); err != nil {
		return err
	}
	if e.closed {
		return ErrHandleClosed
	}
	l := e.lib

	st, err := l.calls.close(ctx, e.cell)
	if err != nil {
		return fmt.Errorf("fdkaac: close encoder: %w", err)
	}

	handle, readErr := readPointer(l.calls, e.cell)
	if readErr == nil && handle != 0 {
		l.log.Warn("fdkaac: handle cell not cleared by aacEncClose", zap.Uint64("handle", handle))
	}
	l.calls.free(ctx, e.cell)

	l.log.Debug("fdkaac: encoder closed", zap.Uint64("handle", e.handle), zap.Stringer("status", st))
	e.cell = 0
	e.handle = 0
	e.closed = true
	l.open.Add(-1)
	return st.err()
}
