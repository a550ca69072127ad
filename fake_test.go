package fdkaac

import (
	"context"
	"fmt"

	"github.com/llehouerou/go-fdkaac/internal/layout"
)

const (
	fakeBase     = 0x1000
	fakeHeapSize = 1 << 20

	fakeFrameLength = 1024
	fakeDelay       = 2048
	fakeDelayCore   = 1024
)

// fakeADTSHeader is what the fake writes as one encoded frame.
var fakeADTSHeader = []byte{0xff, 0xf1, 0x50, 0x80, 0x01, 0x1f, 0xfc}

// fakeConf is the AudioSpecificConfig for LC, 44.1 kHz, stereo.
var fakeConf = []byte{0x12, 0x10}

// fakePayload is placed in the first extension payload slot of every encoder.
var fakePayload = []byte{0xa5, 0x5a, 0x01}

// fakeCalls emulates libfdk-aac over a flat byte heap. It mirrors the native
// argument handling closely enough to check marshalling: every struct it
// reads or writes goes through the same layout descriptors.
type fakeCalls struct {
	layoutABI layout.ABI
	lt        *layouts

	heap []byte
	next uint64
	// live tracks malloc'd blocks; statics are blocks owned by the fake.
	live     map[uint64]uint32
	statics  map[uint64]uint32
	encoders map[uint64]bool

	badFrees  int
	failAlloc bool
	released  bool
	calls     []string

	// lastInput is the audio buffer of the latest Encode call.
	lastInput []byte
}

func newFakeCalls(abi layout.ABI) *fakeCalls {
	return &fakeCalls{
		layoutABI: abi,
		lt:        newLayouts(abi),
		heap:      make([]byte, fakeHeapSize),
		next:      fakeBase,
		live:      make(map[uint64]uint32),
		statics:   make(map[uint64]uint32),
		encoders:  make(map[uint64]bool),
	}
}

func newFakeLibrary(abi layout.ABI) (*Library, *fakeCalls) {
	f := newFakeCalls(abi)
	return newLibrary(f, abi.Alignment, Logger()), f
}

func (f *fakeCalls) abi() layout.ABI { return f.layoutABI }

func (f *fakeCalls) bump(size uint32) (uint64, error) {
	addr := layout.AlignTo(uint32(f.next), 8) //nolint:gosec // heap is 1 MiB
	end := uint64(addr) + uint64(size)
	if end > fakeBase+fakeHeapSize {
		return 0, ErrOutOfMemory
	}
	f.next = end
	return uint64(addr), nil
}

func (f *fakeCalls) static(data []byte) uint64 {
	addr, err := f.bump(uint32(len(data))) //nolint:gosec // test data
	if err != nil {
		panic(err)
	}
	f.statics[addr] = uint32(len(data))        //nolint:gosec // test data
	copy(f.mem(addr, uint32(len(data))), data) //nolint:gosec // test data
	return addr
}

func (f *fakeCalls) mem(addr uint64, size uint32) []byte {
	off := addr - fakeBase
	return f.heap[off : off+uint64(size)]
}

func (f *fakeCalls) inRange(addr uint64, size uint32) bool {
	return addr >= fakeBase && addr+uint64(size) <= fakeBase+fakeHeapSize
}

func (f *fakeCalls) view(info *layout.Info, addr uint64) layout.View {
	v, err := f.lt.calc.NewView(info, f.mem(addr, info.Size))
	if err != nil {
		panic(err)
	}
	return v
}

func (f *fakeCalls) malloc(_ context.Context, size uint32) (uint64, error) {
	if f.failAlloc {
		return 0, ErrOutOfMemory
	}
	addr, err := f.bump(size)
	if err != nil {
		return 0, err
	}
	f.live[addr] = size
	return addr, nil
}

func (f *fakeCalls) free(_ context.Context, addr uint64) {
	if _, ok := f.live[addr]; !ok {
		f.badFrees++
		return
	}
	delete(f.live, addr)
}

func (f *fakeCalls) read(addr uint64, size uint32) ([]byte, bool) {
	if !f.inRange(addr, size) {
		return nil, false
	}
	out := make([]byte, size)
	copy(out, f.mem(addr, size))
	return out, true
}

func (f *fakeCalls) write(addr uint64, data []byte) bool {
	size := uint32(len(data)) //nolint:gosec // test data
	if !f.inRange(addr, size) {
		return false
	}
	copy(f.mem(addr, size), data)
	return true
}

func (f *fakeCalls) readPtr(addr uint64) uint64 {
	p, err := readPointer(f, addr)
	if err != nil {
		panic(err)
	}
	return p
}

func (f *fakeCalls) writePtr(addr, value uint64) {
	f.write(addr, encodePointers(f.layoutABI, []uint64{value}))
}

func (f *fakeCalls) getLibInfo(_ context.Context, info uint64) (Status, error) {
	f.calls = append(f.calls, "aacEncGetLibInfo")
	if info == 0 {
		return StatusInvalidHandle, nil
	}
	entries := []struct {
		title   string
		module  ModuleID
		version [3]int32
	}{
		{"AAC Encoder", ModuleAACEnc, [3]int32{4, 0, 0}},
		{"FDK Tools", ModuleTools, [3]int32{3, 1, 0}},
	}
	size := f.lt.libInfo.Size
	for i, e := range entries {
		v := f.view(f.lt.libInfo, info+uint64(i)*uint64(size))
		v.PutPointer("title", f.static(append([]byte(e.title), 0)))
		v.PutPointer("build_date", f.static([]byte("Jan 01 2024\x00")))
		v.PutPointer("build_time", f.static([]byte("12:00:00\x00")))
		v.PutInt32("module_id", int32(e.module))
		v.PutInt32("version", e.version[0]<<24|e.version[1]<<16|e.version[2]<<8)
		v.PutUint32("flags", 0x1ff)
		v.PutArray("versionStr", fmt.Appendf(nil, "%d.%d.%d", e.version[0], e.version[1], e.version[2]))
	}
	return StatusOK, nil
}

func (f *fakeCalls) open(_ context.Context, cell uint64, modules, maxChannels uint32) (Status, error) {
	f.calls = append(f.calls, "aacEncOpen")
	if cell == 0 {
		return StatusInvalidHandle, nil
	}
	if maxChannels > 8 {
		return StatusInvalidConfig, nil
	}
	if maxChannels == 0 {
		maxChannels = 8
	}

	handle := f.static(make([]byte, f.lt.encoder.Size))
	f.encoders[handle] = true
	v := f.view(f.lt.encoder, handle)

	user := v.Struct("extParam")
	user.PutInt32("userAOT", int32(AOTAACLC))
	user.PutUint32("userSamplerate", 44100)
	user.PutInt32("userChannelMode", int32(ChannelMode1))
	user.PutUint32("nChannels", 1)
	user.PutInt32("userTpType", int32(TransportRaw))
	user.PutUint8("userTns", 1)

	v.PutPointer("hAacEnc", f.static(make([]byte, 16)))
	v.PutInt32("nMaxAacChannels", int32(maxChannels)) //nolint:gosec // at most 8
	v.PutInt32("nMaxAacElements", int32(maxChannels)) //nolint:gosec // at most 8
	v.PutUint32("encoder_modis", modules)

	// Payload bytes are staged inline, as the library does for ancillary data.
	staged, _ := f.lt.encoder.Field("extPayloadData")
	v.PutArray("extPayloadData", fakePayload)
	v.PutUint32At("extPayloadSize", 0, uint32(len(fakePayload)*8)) //nolint:gosec // test data

	slot := v.StructAt("extPayload", 0)
	slot.PutPointer("pData", handle+uint64(staged.Offset))
	slot.PutUint32("dataSize", uint32(len(fakePayload)*8)) //nolint:gosec // test data
	slot.PutInt32("dataType", 1)
	slot.PutInt32("associatedChElement", -1)

	f.writePtr(cell, handle)
	return StatusOK, nil
}

func (f *fakeCalls) close(_ context.Context, cell uint64) (Status, error) {
	f.calls = append(f.calls, "aacEncClose")
	if cell == 0 {
		return StatusInvalidHandle, nil
	}
	handle := f.readPtr(cell)
	if handle != 0 {
		delete(f.encoders, handle)
		f.writePtr(cell, 0)
	}
	return StatusOK, nil
}

func (f *fakeCalls) encoderView(handle uint64) (layout.View, bool) {
	if handle == 0 || !f.encoders[handle] {
		return layout.View{}, false
	}
	return f.view(f.lt.encoder, handle), true
}

var fakeChannels = map[ChannelMode]uint32{
	ChannelMode1:         1,
	ChannelMode2:         2,
	ChannelMode1_2:       3,
	ChannelMode1_2_1:     4,
	ChannelMode1_2_2:     5,
	ChannelMode1_2_2_1:   6,
	ChannelMode1_2_2_2_1: 8,
}

func (f *fakeCalls) setParam(_ context.Context, handle uint64, param, value uint32) (Status, error) {
	f.calls = append(f.calls, "aacEncoder_SetParam")
	v, ok := f.encoderView(handle)
	if !ok {
		return StatusInvalidHandle, nil
	}
	user := v.Struct("extParam")
	switch Param(param) {
	case ParamAOT:
		user.PutUint32("userAOT", value)
	case ParamBitrate:
		user.PutUint32("userBitrate", value)
	case ParamSampleRate:
		user.PutUint32("userSamplerate", value)
	case ParamChannelMode:
		n, ok := fakeChannels[ChannelMode(value)]
		if !ok || n > uint32(v.Int32("nMaxAacChannels")) { //nolint:gosec // small count
			return StatusInvalidConfig, nil
		}
		user.PutUint32("userChannelMode", value)
		user.PutUint32("nChannels", n)
	case ParamTransMux:
		user.PutUint32("userTpType", value)
	case ParamAfterburner:
		user.PutUint32("userAfterburner", value)
	default:
		return StatusUnsupportedParameter, nil
	}
	return StatusOK, nil
}

func (f *fakeCalls) encode(_ context.Context, handle, inDesc, outDesc, inArgs, outArgs uint64) (Status, error) {
	f.calls = append(f.calls, "aacEncEncode")
	v, ok := f.encoderView(handle)
	if !ok {
		return StatusInvalidHandle, nil
	}

	if inDesc == 0 && outDesc == 0 && inArgs == 0 && outArgs == 0 {
		user := v.Struct("extParam")
		aac := v.Struct("aacConfig")
		aac.PutUint32("sampleRate", user.Uint32("userSamplerate"))
		aac.PutUint32("bitRate", user.Uint32("userBitrate"))
		aac.PutUint32("nChannels", user.Uint32("nChannels"))
		aac.PutUint32("audioObjectType", user.Uint32("userAOT"))
		aac.PutInt32("framelength", fakeFrameLength)
		coder := v.Struct("coderConfig")
		coder.PutUint32("aot", user.Uint32("userAOT"))
		coder.PutUint32("samplingRate", user.Uint32("userSamplerate"))
		coder.PutInt32("samplesPerFrame", fakeFrameLength)
		coder.PutUint32("noChannels", user.Uint32("nChannels"))
		coder.PutArray("rawConfig", fakeConf)
		coder.PutInt32("rawConfigBits", int32(len(fakeConf)*8)) //nolint:gosec // test data
		v.PutInt32("nDelay", fakeDelay)
		v.PutInt32("nDelayCore", fakeDelayCore)
		return StatusOK, nil
	}
	if inArgs == 0 || outArgs == 0 {
		return StatusInvalidConfig, nil
	}

	in := f.view(f.lt.inArgs, inArgs)
	out := f.view(f.lt.outArgs, outArgs)
	numIn := in.Int32("numInSamples")
	if numIn == -1 {
		out.PutInt32("numOutBytes", 0)
		out.PutInt32("numInSamples", 0)
		return StatusEncodeEOF, nil
	}

	if data, ok := f.findBuf(inDesc, InAudioData); ok {
		f.lastInput = append([]byte(nil), data...)
	}
	n := 0
	if data, ok := f.findBuf(outDesc, OutBitstreamData); ok {
		n = copy(data, fakeADTSHeader)
	}
	v.PutInt32("nSamplesRead", v.Int32("nSamplesRead")+numIn)

	out.PutInt32("numOutBytes", int32(n)) //nolint:gosec // header length
	out.PutInt32("numInSamples", numIn)
	out.PutInt32("numAncBytes", in.Int32("numAncBytes"))
	out.PutInt32("bitResState", 6144)
	if n == 0 {
		return StatusEncodeError, nil
	}
	return StatusOK, nil
}

// findBuf returns the heap bytes of the buffer tagged id in the descriptor at desc.
func (f *fakeCalls) findBuf(desc uint64, id BufferID) ([]byte, bool) {
	if desc == 0 {
		return nil, false
	}
	d := f.view(f.lt.bufDesc, desc)
	ptrSize := uint64(f.layoutABI.PointerSize)
	order := f.layoutABI.Order
	for i := range uint64(d.Int32("numBufs")) {
		bufID := int32(order.Uint32(f.mem(d.Pointer("bufferIdentifiers")+4*i, 4))) //nolint:gosec // enum value
		if BufferID(bufID) != id {
			continue
		}
		size := order.Uint32(f.mem(d.Pointer("bufSizes")+4*i, 4))
		addr := f.readPtr(d.Pointer("bufs") + ptrSize*i)
		if addr == 0 {
			return nil, false
		}
		return f.mem(addr, size), true
	}
	return nil, false
}

func (f *fakeCalls) info(_ context.Context, handle, info uint64) (Status, error) {
	f.calls = append(f.calls, "aacEncInfo")
	v, ok := f.encoderView(handle)
	if !ok {
		return StatusInvalidHandle, nil
	}
	if info == 0 {
		return StatusInvalidConfig, nil
	}
	channels := v.Struct("extParam").Uint32("nChannels")
	out := f.view(f.lt.info, info)
	out.PutUint32("maxOutBufBytes", 768*channels)
	out.PutUint32("maxAncBytes", 0)
	out.PutUint32("inBufFillLevel", 0)
	out.PutUint32("inputChannels", channels)
	out.PutUint32("frameLength", fakeFrameLength)
	out.PutUint32("nDelay", uint32(v.Int32("nDelay")))         //nolint:gosec // positive delay
	out.PutUint32("nDelayCore", uint32(v.Int32("nDelayCore"))) //nolint:gosec // positive delay
	out.PutArray("confBuf", fakeConf)
	out.PutUint32("confSize", uint32(len(fakeConf))) //nolint:gosec // test data
	return StatusOK, nil
}

func (f *fakeCalls) release(_ context.Context) error {
	f.calls = append(f.calls, "release")
	f.released = true
	return nil
}
