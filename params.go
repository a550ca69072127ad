package fdkaac

// Param identifies an encoder parameter for SetParam.
// Source: libAACenc/include/aacenc_lib.h AACENC_PARAM
type Param uint32

// Encoder parameters.
const (
	ParamAOT              Param = 0x0100
	ParamBitrate          Param = 0x0101
	ParamBitrateMode      Param = 0x0102
	ParamSampleRate       Param = 0x0103
	ParamSBRMode          Param = 0x0104
	ParamGranuleLength    Param = 0x0105
	ParamChannelMode      Param = 0x0106
	ParamChannelOrder     Param = 0x0107
	ParamSBRRatio         Param = 0x0108
	ParamAfterburner      Param = 0x0200
	ParamBandwidth        Param = 0x0203
	ParamPeakBitrate      Param = 0x0207
	ParamTransMux         Param = 0x0300
	ParamHeaderPeriod     Param = 0x0301
	ParamSignalingMode    Param = 0x0302
	ParamTPSubFrames      Param = 0x0303
	ParamAudioMuxVersion  Param = 0x0304
	ParamProtection       Param = 0x0306
	ParamAncillaryBitrate Param = 0x0500
	ParamMetadataMode     Param = 0x0600
	ParamControlState     Param = 0xFF00
	ParamNone             Param = 0xFFFF
)

// AudioObjectType is an MPEG-4 audio object type as the encoder encodes it.
// Source: libSYS/include/FDK_audio.h AUDIO_OBJECT_TYPE
type AudioObjectType int32

// Audio object types accepted by ParamAOT.
const (
	AOTNone        AudioObjectType = -1
	AOTAACLC       AudioObjectType = 2
	AOTSBR         AudioObjectType = 5
	AOTERAACLD     AudioObjectType = 23
	AOTPS          AudioObjectType = 29
	AOTERAACELD    AudioObjectType = 39
	AOTMP2AACLC    AudioObjectType = 129
	AOTMP2SBR      AudioObjectType = 132
	AOTDRMAAC      AudioObjectType = 143
	AOTDRMSBR      AudioObjectType = 144
	AOTDRMMPEGPS   AudioObjectType = 145
	AOTDRMSURROUND AudioObjectType = 146
)

// ChannelMode is an input channel configuration.
// Source: libSYS/include/FDK_audio.h CHANNEL_MODE
type ChannelMode int32

// Channel modes accepted by ParamChannelMode.
const (
	ChannelModeInvalid         ChannelMode = -1
	ChannelModeUnknown         ChannelMode = 0
	ChannelMode1               ChannelMode = 1 // C
	ChannelMode2               ChannelMode = 2 // L+R
	ChannelMode1_2             ChannelMode = 3 // C, L+R
	ChannelMode1_2_1           ChannelMode = 4 // C, L+R, Rear
	ChannelMode1_2_2           ChannelMode = 5 // C, L+R, LS+RS
	ChannelMode1_2_2_1         ChannelMode = 6 // C, L+R, LS+RS, LFE
	ChannelMode1_2_2_2_1       ChannelMode = 7 // C, LC+RC, L+R, LS+RS, LFE
	ChannelMode6_1             ChannelMode = 11
	ChannelMode7_1Back         ChannelMode = 12
	ChannelMode7_1TopFront     ChannelMode = 14
	ChannelMode7_1RearSurround ChannelMode = 33
	ChannelMode7_1FrontCenter  ChannelMode = 34
	ChannelMode212             ChannelMode = 128
)

// TransportType selects the bitstream transport.
// Source: libSYS/include/FDK_audio.h TRANSPORT_TYPE
type TransportType int32

// Transport types accepted by ParamTransMux.
const (
	TransportUnknown  TransportType = -1
	TransportRaw      TransportType = 0
	TransportADIF     TransportType = 1
	TransportADTS     TransportType = 2
	TransportLATMMCP1 TransportType = 6
	TransportLATMMCP0 TransportType = 7
	TransportLOAS     TransportType = 10
	TransportDRM      TransportType = 12
)

// Modules is the encModules bitmask passed to Open. Zero allocates every module.
type Modules uint32

// Encoder modules.
const (
	ModulesAll     Modules = 0x00
	ModuleAAC      Modules = 0x01
	ModuleSBR      Modules = 0x02
	ModulePS       Modules = 0x04
	ModuleMPS      Modules = 0x08
	ModuleMetadata Modules = 0x10
)

// BufferID tags one buffer of a BufDesc.
// Source: libAACenc/include/aacenc_lib.h AACENC_BufferIdentifier
type BufferID int32

// Buffer identifiers.
const (
	InAudioData      BufferID = 0
	InAncillaryData  BufferID = 1
	InMetadataSetup  BufferID = 2
	OutBitstreamData BufferID = 3
	OutAUSizes       BufferID = 4
)

// ModuleID identifies a library module in LibInfo.
// Source: libSYS/include/FDK_audio.h FDK_MODULE_ID
type ModuleID int32

// Module identifiers.
const (
	ModuleNone          ModuleID = 0
	ModuleTools         ModuleID = 1
	ModuleSysLib        ModuleID = 2
	ModuleAACDec        ModuleID = 3
	ModuleAACEnc        ModuleID = 4
	ModuleSBRDec        ModuleID = 5
	ModuleSBREnc        ModuleID = 6
	ModuleTPDec         ModuleID = 7
	ModuleTPEnc         ModuleID = 8
	ModuleMPSDec        ModuleID = 9
	ModuleMPEGFileRead  ModuleID = 10
	ModuleMPEGFileWrite ModuleID = 11
	ModulePCMDmx        ModuleID = 31
	ModuleMPSEnc        ModuleID = 34
	ModuleTDLimit       ModuleID = 35
	ModuleUniDRCDec     ModuleID = 38
	moduleLast          ModuleID = 39
)
