package fdkaac

import "github.com/llehouerou/go-fdkaac/internal/layout"

// Native capacities compiled into fdk-aac.
const (
	// MaxTotalExtPayloads is the number of extension payload slots in AACENCODER.
	MaxTotalExtPayloads = 12
	// MaxPayloadSize is the largest extension payload in bytes.
	MaxPayloadSize = 256
	// ExtPayloadBuffers is the number of MaxPayloadSize staging buffers
	// AACENCODER keeps inline, one layer of eight.
	ExtPayloadBuffers = 1 * 8

	confBufSize      = 64
	rawConfigSize    = 64
	libVersionStrLen = 32
)

// Struct declarations mirrored from fdk-aac 2.0.x. Field order and widths
// follow the C headers; padding comes from the layout calculator.
// ULONG is 32 bits wide in FDK's machine_type.h on every data model.

// Source: libAACenc/src/aacenc_lib.cpp USER_PARAM
var userParamStruct = &layout.Struct{
	Name: "USER_PARAM",
	Fields: []layout.Field{
		{Name: "userAOT", Kind: layout.Int32},
		{Name: "userSamplerate", Kind: layout.Uint32},
		{Name: "nChannels", Kind: layout.Uint32},
		{Name: "userChannelMode", Kind: layout.Int32},
		{Name: "userBitrate", Kind: layout.Uint32},
		{Name: "userBitrateMode", Kind: layout.Uint32},
		{Name: "userBandwidth", Kind: layout.Uint32},
		{Name: "userAfterburner", Kind: layout.Uint32},
		{Name: "userFramelength", Kind: layout.Uint32},
		{Name: "userAncDataRate", Kind: layout.Uint32},
		{Name: "userPeakBitrate", Kind: layout.Uint32},
		{Name: "userTns", Kind: layout.Uint8},
		{Name: "userPns", Kind: layout.Uint8},
		{Name: "userIntensity", Kind: layout.Uint8},
		{Name: "userTpType", Kind: layout.Int32},
		{Name: "userTpSignaling", Kind: layout.Uint8},
		{Name: "userTpNsubFrames", Kind: layout.Uint8},
		{Name: "userTpAmxv", Kind: layout.Uint8},
		{Name: "userTpProtection", Kind: layout.Uint8},
		{Name: "userTpHeaderPeriod", Kind: layout.Uint8},
		{Name: "userErTools", Kind: layout.Uint8},
		{Name: "userPceAdditions", Kind: layout.Uint32},
		{Name: "userMetaDataMode", Kind: layout.Uint8},
		{Name: "userSbrEnabled", Kind: layout.Uint8},
		{Name: "userSbrRatio", Kind: layout.Uint32},
		{Name: "userDownscaleFactor", Kind: layout.Uint32},
	},
}

// Source: libMpegTPEnc/include/tp_data.h CODER_CONFIG
var coderConfigStruct = &layout.Struct{
	Name: "CODER_CONFIG",
	Fields: []layout.Field{
		{Name: "aot", Kind: layout.Int32},
		{Name: "extAOT", Kind: layout.Int32},
		{Name: "channelMode", Kind: layout.Int32},
		{Name: "channelConfigZero", Kind: layout.Uint8},
		{Name: "samplingRate", Kind: layout.Int32},
		{Name: "extSamplingRate", Kind: layout.Int32},
		{Name: "downscaleSamplingRate", Kind: layout.Int32},
		{Name: "bitRate", Kind: layout.Int32},
		{Name: "samplesPerFrame", Kind: layout.Int32},
		{Name: "noChannels", Kind: layout.Int32},
		{Name: "bitsFrame", Kind: layout.Int32},
		{Name: "nSubFrames", Kind: layout.Int32},
		{Name: "BSACnumOfSubFrame", Kind: layout.Int32},
		{Name: "BSAClayerLength", Kind: layout.Int32},
		{Name: "flags", Kind: layout.Uint32},
		{Name: "matrixMixdownA", Kind: layout.Uint8},
		{Name: "headerPeriod", Kind: layout.Uint8},
		{Name: "stereoConfigIndex", Kind: layout.Uint8},
		{Name: "sbrMode", Kind: layout.Uint8},
		{Name: "sbrSignaling", Kind: layout.Int32},
		{Name: "rawConfig", Kind: layout.Uint8, Count: rawConfigSize},
		{Name: "rawConfigBits", Kind: layout.Int32},
		{Name: "sbrPresent", Kind: layout.Uint8},
		{Name: "psPresent", Kind: layout.Uint8},
	},
}

// Source: libAACenc/src/aacenc.h AACENC_CONFIG
var aacConfigStruct = &layout.Struct{
	Name: "AACENC_CONFIG",
	Fields: []layout.Field{
		{Name: "sampleRate", Kind: layout.Int32},
		{Name: "bitRate", Kind: layout.Int32},
		{Name: "ancDataBitRate", Kind: layout.Int32},
		{Name: "nSubFrames", Kind: layout.Int32},
		{Name: "audioObjectType", Kind: layout.Int32},
		{Name: "averageBits", Kind: layout.Int32},
		{Name: "bitrateMode", Kind: layout.Int32},
		{Name: "nChannels", Kind: layout.Int32},
		{Name: "channelOrder", Kind: layout.Int32},
		{Name: "bandWidth", Kind: layout.Int32},
		{Name: "channelMode", Kind: layout.Int32},
		{Name: "framelength", Kind: layout.Int32},
		{Name: "syntaxFlags", Kind: layout.Uint32},
		{Name: "epConfig", Kind: layout.Int8},
		{Name: "anc_Rate", Kind: layout.Int32},
		{Name: "maxAncBytesPerAU", Kind: layout.Uint32},
		{Name: "minBitsPerFrame", Kind: layout.Int32},
		{Name: "maxBitsPerFrame", Kind: layout.Int32},
		{Name: "audioMuxVersion", Kind: layout.Int32},
		{Name: "sbrRatio", Kind: layout.Uint32},
		{Name: "useTns", Kind: layout.Uint8},
		{Name: "usePns", Kind: layout.Uint8},
		{Name: "useIS", Kind: layout.Uint8},
		{Name: "useMS", Kind: layout.Uint8},
		{Name: "useRequant", Kind: layout.Uint8},
		{Name: "downscaleFactor", Kind: layout.Int32},
	},
}

// Source: libAACenc/src/aacenc.h AACENC_EXT_PAYLOAD
var extPayloadStruct = &layout.Struct{
	Name: "AACENC_EXT_PAYLOAD",
	Fields: []layout.Field{
		{Name: "pData", Kind: layout.Pointer},
		{Name: "dataSize", Kind: layout.Uint32},
		{Name: "dataType", Kind: layout.Int32},
		{Name: "associatedChElement", Kind: layout.Int32},
	},
}

// Source: libAACenc/src/aacenc_lib.cpp struct AACENCODER
var encoderStruct = &layout.Struct{
	Name: "AACENCODER",
	Fields: []layout.Field{
		{Name: "extParam", Kind: layout.Nested, Struct: userParamStruct},
		{Name: "coderConfig", Kind: layout.Nested, Struct: coderConfigStruct},
		{Name: "aacConfig", Kind: layout.Nested, Struct: aacConfigStruct},
		{Name: "hAacEnc", Kind: layout.Pointer},
		{Name: "hEnvEnc", Kind: layout.Pointer},
		{Name: "hMetadataEnc", Kind: layout.Pointer},
		{Name: "metaDataAllowed", Kind: layout.Int32},
		{Name: "hMpsEnc", Kind: layout.Pointer},
		{Name: "hTpEnc", Kind: layout.Pointer},
		{Name: "inputBuffer", Kind: layout.Pointer},
		{Name: "outBuffer", Kind: layout.Pointer},
		{Name: "inputBufferSize", Kind: layout.Int32},
		{Name: "inputBufferSizePerChannel", Kind: layout.Int32},
		{Name: "outBufferInBytes", Kind: layout.Int32},
		{Name: "inputBufferOffset", Kind: layout.Int32},
		{Name: "nSamplesToRead", Kind: layout.Int32},
		{Name: "nSamplesRead", Kind: layout.Int32},
		{Name: "nZerosAppended", Kind: layout.Int32},
		{Name: "nDelay", Kind: layout.Int32},
		{Name: "nDelayCore", Kind: layout.Int32},
		{Name: "extPayload", Kind: layout.Nested, Struct: extPayloadStruct, Count: MaxTotalExtPayloads},
		{Name: "extPayloadData", Kind: layout.Uint8, Count: ExtPayloadBuffers * MaxPayloadSize},
		{Name: "extPayloadSize", Kind: layout.Uint32, Count: ExtPayloadBuffers},
		{Name: "InitFlags", Kind: layout.Uint32},
		{Name: "nMaxAacElements", Kind: layout.Int32},
		{Name: "nMaxAacChannels", Kind: layout.Int32},
		{Name: "nMaxSbrElements", Kind: layout.Int32},
		{Name: "nMaxSbrChannels", Kind: layout.Int32},
		{Name: "encoder_modis", Kind: layout.Uint32},
		{Name: "CAPF_tpEnc", Kind: layout.Uint32},
	},
}

// Source: libAACenc/include/aacenc_lib.h AACENC_BufDesc
var bufDescStruct = &layout.Struct{
	Name: "AACENC_BufDesc",
	Fields: []layout.Field{
		{Name: "numBufs", Kind: layout.Int32},
		{Name: "bufs", Kind: layout.Pointer},
		{Name: "bufferIdentifiers", Kind: layout.Pointer},
		{Name: "bufSizes", Kind: layout.Pointer},
		{Name: "bufElSizes", Kind: layout.Pointer},
	},
}

// Source: libAACenc/include/aacenc_lib.h AACENC_InArgs
var inArgsStruct = &layout.Struct{
	Name: "AACENC_InArgs",
	Fields: []layout.Field{
		{Name: "numInSamples", Kind: layout.Int32},
		{Name: "numAncBytes", Kind: layout.Int32},
	},
}

// Source: libAACenc/include/aacenc_lib.h AACENC_OutArgs
var outArgsStruct = &layout.Struct{
	Name: "AACENC_OutArgs",
	Fields: []layout.Field{
		{Name: "numOutBytes", Kind: layout.Int32},
		{Name: "numInSamples", Kind: layout.Int32},
		{Name: "numAncBytes", Kind: layout.Int32},
		{Name: "bitResState", Kind: layout.Int32},
	},
}

// Source: libAACenc/include/aacenc_lib.h AACENC_InfoStruct
var infoStruct = &layout.Struct{
	Name: "AACENC_InfoStruct",
	Fields: []layout.Field{
		{Name: "maxOutBufBytes", Kind: layout.Uint32},
		{Name: "maxAncBytes", Kind: layout.Uint32},
		{Name: "inBufFillLevel", Kind: layout.Uint32},
		{Name: "inputChannels", Kind: layout.Uint32},
		{Name: "frameLength", Kind: layout.Uint32},
		{Name: "nDelay", Kind: layout.Uint32},
		{Name: "nDelayCore", Kind: layout.Uint32},
		{Name: "confBuf", Kind: layout.Uint8, Count: confBufSize},
		{Name: "confSize", Kind: layout.Uint32},
	},
}

// Source: libSYS/include/FDK_audio.h LIB_INFO
var libInfoStruct = &layout.Struct{
	Name: "LIB_INFO",
	Fields: []layout.Field{
		{Name: "title", Kind: layout.Pointer},
		{Name: "build_date", Kind: layout.Pointer},
		{Name: "build_time", Kind: layout.Pointer},
		{Name: "module_id", Kind: layout.Int32},
		{Name: "version", Kind: layout.Int32},
		{Name: "flags", Kind: layout.Uint32},
		{Name: "versionStr", Kind: layout.Uint8, Count: libVersionStrLen},
	},
}

// mirroredStructs lists every declaration in dump order.
var mirroredStructs = []*layout.Struct{
	userParamStruct,
	coderConfigStruct,
	aacConfigStruct,
	extPayloadStruct,
	encoderStruct,
	bufDescStruct,
	inArgsStruct,
	outArgsStruct,
	infoStruct,
	libInfoStruct,
}

// layouts holds the computed layouts a Library marshals with.
type layouts struct {
	calc       *layout.Calculator
	encoder    *layout.Info
	extPayload *layout.Info
	bufDesc    *layout.Info
	inArgs     *layout.Info
	outArgs    *layout.Info
	info       *layout.Info
	libInfo    *layout.Info
}

func newLayouts(abi layout.ABI) *layouts {
	calc := layout.NewCalculator(abi)
	return &layouts{
		calc:       calc,
		encoder:    calc.Calculate(encoderStruct),
		extPayload: calc.Calculate(extPayloadStruct),
		bufDesc:    calc.Calculate(bufDescStruct),
		inArgs:     calc.Calculate(inArgsStruct),
		outArgs:    calc.Calculate(outArgsStruct),
		info:       calc.Calculate(infoStruct),
		libInfo:    calc.Calculate(libInfoStruct),
	}
}

// LayoutDump renders the computed layout of every mirrored structure for the
// given pointer width and alignment. The output is compared against reference
// dumps of a pinned native build.
func LayoutDump(pointerSize uint32, align Alignment) string {
	abi := layout.ABI{PointerSize: pointerSize, Order: nativeByteOrder(), Alignment: align}
	return layout.NewCalculator(abi).Dump(mirroredStructs...)
}

// Alignment selects how struct padding is computed.
type Alignment = layout.Alignment

// Alignment modes.
const (
	// AlignNative pads like the C compiler that built the library.
	AlignNative = layout.AlignNative
	// AlignNone assumes a library built with packed structs.
	AlignNone = layout.AlignNone
)
