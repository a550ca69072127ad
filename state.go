package fdkaac

import (
	"context"

	"github.com/llehouerou/go-fdkaac/internal/layout"
)

// UserParam mirrors USER_PARAM, the values accepted through SetParam.
type UserParam struct {
	AOT             AudioObjectType
	SampleRate      uint32
	Channels        uint32
	ChannelMode     ChannelMode
	Bitrate         uint32
	BitrateMode     uint32
	Bandwidth       uint32
	Afterburner     uint32
	FrameLength     uint32
	AncDataRate     uint32
	PeakBitrate     uint32
	TNS             uint8
	PNS             uint8
	Intensity       uint8
	TransportType   TransportType
	TpSignaling     uint8
	TpNSubFrames    uint8
	TpAmxv          uint8
	TpProtection    uint8
	TpHeaderPeriod  uint8
	ErTools         uint8
	PCEAdditions    uint32
	MetaDataMode    uint8
	SBREnabled      uint8
	SBRRatio        uint32
	DownscaleFactor uint32
}

// CoderConfig mirrors CODER_CONFIG, the transport encoder configuration.
type CoderConfig struct {
	AOT                   AudioObjectType
	ExtAOT                AudioObjectType
	ChannelMode           ChannelMode
	ChannelConfigZero     uint8
	SamplingRate          int32
	ExtSamplingRate       int32
	DownscaleSamplingRate int32
	BitRate               int32
	SamplesPerFrame       int32
	NoChannels            int32
	BitsFrame             int32
	NSubFrames            int32
	BSACNumOfSubFrame     int32
	BSACLayerLength       int32
	Flags                 uint32
	MatrixMixdownA        uint8
	HeaderPeriod          uint8
	StereoConfigIndex     uint8
	SBRMode               uint8
	SBRSignaling          int32
	RawConfig             [rawConfigSize]byte
	RawConfigBits         int32
	SBRPresent            uint8
	PSPresent             uint8
}

// AACConfig mirrors AACENC_CONFIG, the core encoder configuration.
type AACConfig struct {
	SampleRate       int32
	BitRate          int32
	AncDataBitRate   int32
	NSubFrames       int32
	AudioObjectType  AudioObjectType
	AverageBits      int32
	BitrateMode      int32
	NChannels        int32
	ChannelOrder     int32
	BandWidth        int32
	ChannelMode      ChannelMode
	FrameLength      int32
	SyntaxFlags      uint32
	EPConfig         int8
	AncRate          int32
	MaxAncBytesPerAU uint32
	MinBitsPerFrame  int32
	MaxBitsPerFrame  int32
	AudioMuxVersion  int32
	SBRRatio         uint32
	UseTNS           uint8
	UsePNS           uint8
	UseIS            uint8
	UseMS            uint8
	UseRequant       uint8
	DownscaleFactor  int32
}

// ExtPayload mirrors one AACENC_EXT_PAYLOAD slot. Data holds a copy of the
// bytes DataAddr pointed at when the snapshot was taken, at most
// MaxPayloadSize of them.
type ExtPayload struct {
	DataAddr            uint64
	DataSize            uint32 // in bits
	DataType            int32
	AssociatedChElement int32
	Data                [MaxPayloadSize]byte
}

// Len returns the number of valid bytes in Data.
func (p *ExtPayload) Len() int {
	return int(min((uint64(p.DataSize)+7)/8, MaxPayloadSize)) //nolint:gosec // capped
}

// EncoderState is a point-in-time copy of the native AACENCODER struct.
// Sub-encoder handles and buffer pointers are opaque addresses; they are never
// dereferenced. The copy does not change when the encoder does; call Refresh
// to read it again.
type EncoderState struct {
	ExtParam    UserParam
	CoderConfig CoderConfig
	AACConfig   AACConfig

	AACEnc          uint64
	EnvEnc          uint64
	MetadataEnc     uint64
	MetaDataAllowed int32
	MPSEnc          uint64
	TpEnc           uint64

	InputBuffer               uint64
	OutBuffer                 uint64
	InputBufferSize           int32
	InputBufferSizePerChannel int32
	OutBufferInBytes          int32
	InputBufferOffset         int32

	SamplesToRead int32
	SamplesRead   int32
	ZerosAppended int32
	Delay         int32
	DelayCore     int32

	ExtPayload [MaxTotalExtPayloads]ExtPayload

	// Inline staging buffers; ExtPayloadSize entries are in bits.
	ExtPayloadData [ExtPayloadBuffers][MaxPayloadSize]byte
	ExtPayloadSize [ExtPayloadBuffers]uint32

	InitFlags      uint32
	MaxAACElements int32
	MaxAACChannels int32
	MaxSBRElements int32
	MaxSBRChannels int32
	EncoderModis   uint32
	TransportCaps  uint32

	lib  *Library
	addr uint64
	raw  []byte
}

// NewEncoderState reads the AACENCODER struct at addr from lib. It fails with
// ErrNullHandle for a zero address instead of reading address zero.
func NewEncoderState(ctx context.Context, lib *Library, addr uint64) (*EncoderState, error) {
	if addr == 0 {
		return nil, ErrNullHandle
	}
	if lib == nil {
		return nil, ErrNotOpen
	}
	s := &EncoderState{lib: lib, addr: addr}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Addr returns the native address the snapshot was read from.
func (s *EncoderState) Addr() uint64 { return s.addr }

// Raw returns a copy of the struct bytes as read.
func (s *EncoderState) Raw() []byte {
	out := make([]byte, len(s.raw))
	copy(out, s.raw)
	return out
}

// Refresh reads the native struct again, replacing every field.
func (s *EncoderState) Refresh(_ context.Context) error {
	if s.lib.isClosed() {
		return ErrLibraryClosed
	}
	lt := s.lib.layouts
	raw, err := readExact(s.lib.calls, s.addr, lt.encoder.Size)
	if err != nil {
		return err
	}
	v, err := lt.calc.NewView(lt.encoder, raw)
	if err != nil {
		return err
	}

	next := EncoderState{
		ExtParam:    decodeUserParam(v.Struct("extParam")),
		CoderConfig: decodeCoderConfig(v.Struct("coderConfig")),
		AACConfig:   decodeAACConfig(v.Struct("aacConfig")),

		AACEnc:          v.Pointer("hAacEnc"),
		EnvEnc:          v.Pointer("hEnvEnc"),
		MetadataEnc:     v.Pointer("hMetadataEnc"),
		MetaDataAllowed: v.Int32("metaDataAllowed"),
		MPSEnc:          v.Pointer("hMpsEnc"),
		TpEnc:           v.Pointer("hTpEnc"),

		InputBuffer:               v.Pointer("inputBuffer"),
		OutBuffer:                 v.Pointer("outBuffer"),
		InputBufferSize:           v.Int32("inputBufferSize"),
		InputBufferSizePerChannel: v.Int32("inputBufferSizePerChannel"),
		OutBufferInBytes:          v.Int32("outBufferInBytes"),
		InputBufferOffset:         v.Int32("inputBufferOffset"),

		SamplesToRead: v.Int32("nSamplesToRead"),
		SamplesRead:   v.Int32("nSamplesRead"),
		ZerosAppended: v.Int32("nZerosAppended"),
		Delay:         v.Int32("nDelay"),
		DelayCore:     v.Int32("nDelayCore"),

		InitFlags:      v.Uint32("InitFlags"),
		MaxAACElements: v.Int32("nMaxAacElements"),
		MaxAACChannels: v.Int32("nMaxAacChannels"),
		MaxSBRElements: v.Int32("nMaxSbrElements"),
		MaxSBRChannels: v.Int32("nMaxSbrChannels"),
		EncoderModis:   v.Uint32("encoder_modis"),
		TransportCaps:  v.Uint32("CAPF_tpEnc"),

		lib:  s.lib,
		addr: s.addr,
		raw:  raw,
	}
	for i := range next.ExtPayload {
		decodeExtPayload(s.lib.calls, v.StructAt("extPayload", i), &next.ExtPayload[i])
	}
	data := v.Array("extPayloadData")
	for i := range next.ExtPayloadData {
		copy(next.ExtPayloadData[i][:], data[i*MaxPayloadSize:])
		next.ExtPayloadSize[i] = v.Uint32At("extPayloadSize", i)
	}

	*s = next
	return nil
}

func decodeUserParam(v layout.View) UserParam {
	return UserParam{
		AOT:             AudioObjectType(v.Int32("userAOT")),
		SampleRate:      v.Uint32("userSamplerate"),
		Channels:        v.Uint32("nChannels"),
		ChannelMode:     ChannelMode(v.Int32("userChannelMode")),
		Bitrate:         v.Uint32("userBitrate"),
		BitrateMode:     v.Uint32("userBitrateMode"),
		Bandwidth:       v.Uint32("userBandwidth"),
		Afterburner:     v.Uint32("userAfterburner"),
		FrameLength:     v.Uint32("userFramelength"),
		AncDataRate:     v.Uint32("userAncDataRate"),
		PeakBitrate:     v.Uint32("userPeakBitrate"),
		TNS:             v.Uint8("userTns"),
		PNS:             v.Uint8("userPns"),
		Intensity:       v.Uint8("userIntensity"),
		TransportType:   TransportType(v.Int32("userTpType")),
		TpSignaling:     v.Uint8("userTpSignaling"),
		TpNSubFrames:    v.Uint8("userTpNsubFrames"),
		TpAmxv:          v.Uint8("userTpAmxv"),
		TpProtection:    v.Uint8("userTpProtection"),
		TpHeaderPeriod:  v.Uint8("userTpHeaderPeriod"),
		ErTools:         v.Uint8("userErTools"),
		PCEAdditions:    v.Uint32("userPceAdditions"),
		MetaDataMode:    v.Uint8("userMetaDataMode"),
		SBREnabled:      v.Uint8("userSbrEnabled"),
		SBRRatio:        v.Uint32("userSbrRatio"),
		DownscaleFactor: v.Uint32("userDownscaleFactor"),
	}
}

func decodeCoderConfig(v layout.View) CoderConfig {
	c := CoderConfig{
		AOT:                   AudioObjectType(v.Int32("aot")),
		ExtAOT:                AudioObjectType(v.Int32("extAOT")),
		ChannelMode:           ChannelMode(v.Int32("channelMode")),
		ChannelConfigZero:     v.Uint8("channelConfigZero"),
		SamplingRate:          v.Int32("samplingRate"),
		ExtSamplingRate:       v.Int32("extSamplingRate"),
		DownscaleSamplingRate: v.Int32("downscaleSamplingRate"),
		BitRate:               v.Int32("bitRate"),
		SamplesPerFrame:       v.Int32("samplesPerFrame"),
		NoChannels:            v.Int32("noChannels"),
		BitsFrame:             v.Int32("bitsFrame"),
		NSubFrames:            v.Int32("nSubFrames"),
		BSACNumOfSubFrame:     v.Int32("BSACnumOfSubFrame"),
		BSACLayerLength:       v.Int32("BSAClayerLength"),
		Flags:                 v.Uint32("flags"),
		MatrixMixdownA:        v.Uint8("matrixMixdownA"),
		HeaderPeriod:          v.Uint8("headerPeriod"),
		StereoConfigIndex:     v.Uint8("stereoConfigIndex"),
		SBRMode:               v.Uint8("sbrMode"),
		SBRSignaling:          v.Int32("sbrSignaling"),
		RawConfigBits:         v.Int32("rawConfigBits"),
		SBRPresent:            v.Uint8("sbrPresent"),
		PSPresent:             v.Uint8("psPresent"),
	}
	copy(c.RawConfig[:], v.Array("rawConfig"))
	return c
}

func decodeAACConfig(v layout.View) AACConfig {
	return AACConfig{
		SampleRate:       v.Int32("sampleRate"),
		BitRate:          v.Int32("bitRate"),
		AncDataBitRate:   v.Int32("ancDataBitRate"),
		NSubFrames:       v.Int32("nSubFrames"),
		AudioObjectType:  AudioObjectType(v.Int32("audioObjectType")),
		AverageBits:      v.Int32("averageBits"),
		BitrateMode:      v.Int32("bitrateMode"),
		NChannels:        v.Int32("nChannels"),
		ChannelOrder:     v.Int32("channelOrder"),
		BandWidth:        v.Int32("bandWidth"),
		ChannelMode:      ChannelMode(v.Int32("channelMode")),
		FrameLength:      v.Int32("framelength"),
		SyntaxFlags:      v.Uint32("syntaxFlags"),
		EPConfig:         v.Int8("epConfig"),
		AncRate:          v.Int32("anc_Rate"),
		MaxAncBytesPerAU: v.Uint32("maxAncBytesPerAU"),
		MinBitsPerFrame:  v.Int32("minBitsPerFrame"),
		MaxBitsPerFrame:  v.Int32("maxBitsPerFrame"),
		AudioMuxVersion:  v.Int32("audioMuxVersion"),
		SBRRatio:         v.Uint32("sbrRatio"),
		UseTNS:           v.Uint8("useTns"),
		UsePNS:           v.Uint8("usePns"),
		UseIS:            v.Uint8("useIS"),
		UseMS:            v.Uint8("useMS"),
		UseRequant:       v.Uint8("useRequant"),
		DownscaleFactor:  v.Int32("downscaleFactor"),
	}
}

// decodeExtPayload fills p from one slot. The payload bytes are copied so the
// snapshot does not alias library memory; a slot whose pointer cannot be read
// keeps a zero Data array.
func decodeExtPayload(calls callTable, v layout.View, p *ExtPayload) {
	p.DataAddr = v.Pointer("pData")
	p.DataSize = v.Uint32("dataSize")
	p.DataType = v.Int32("dataType")
	p.AssociatedChElement = v.Int32("associatedChElement")

	n := p.Len()
	if p.DataAddr == 0 || n == 0 {
		return
	}
	if data, ok := calls.read(p.DataAddr, uint32(n)); ok { //nolint:gosec // n <= MaxPayloadSize
		copy(p.Data[:], data)
	}
}
