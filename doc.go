// Package fdkaac binds the Fraunhofer FDK AAC encoder library (libfdk-aac).
//
// The package does not encode audio itself. It loads the library, mirrors the
// library's C structures byte for byte, and marshals the six encoder entry
// points: aacEncGetLibInfo, aacEncOpen, aacEncClose, aacEncoder_SetParam,
// aacEncEncode and aacEncInfo.
//
// # Basic Usage
//
//	lib, err := fdkaac.LoadLibrary(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	enc, err := lib.Open(ctx, fdkaac.ModulesAll, 2)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer enc.Close(ctx)
//
//	_ = enc.SetParam(ctx, fdkaac.ParamAOT, uint32(fdkaac.AOTAACLC))
//	_ = enc.SetParam(ctx, fdkaac.ParamSampleRate, 44100)
//	_ = enc.SetParam(ctx, fdkaac.ParamChannelMode, uint32(fdkaac.ChannelMode2))
//	_ = enc.SetParam(ctx, fdkaac.ParamBitrate, 128000)
//
//	// Apply the configuration, then query frame length and delay.
//	if _, err := enc.Encode(ctx, nil, nil, nil); err != nil {
//	    log.Fatal(err)
//	}
//	info, _ := enc.Info(ctx)
//
//	in := &fdkaac.BufDesc{Bufs: []fdkaac.Buffer{{ID: fdkaac.InAudioData, Data: pcm, ElemSize: 2}}}
//	out := &fdkaac.BufDesc{Bufs: []fdkaac.Buffer{{ID: fdkaac.OutBitstreamData, Data: frame, ElemSize: 1}}}
//	res, err := enc.Encode(ctx, in, out, &fdkaac.InArgs{NumInSamples: int32(len(pcm) / 2)})
//
// # Errors
//
// Every entry point returns an AACENC_ERROR code. Non-zero codes are returned
// unchanged as a Status, so callers can branch on the exact class:
//
//	var st fdkaac.Status
//	if errors.As(err, &st) && st == fdkaac.StatusEncodeEOF {
//	    // flushed
//	}
//
// # Struct Layout
//
// Structures are described by explicit layout descriptors pinned to
// fdk-aac 2.0.x, not by Go struct layout. LayoutDump prints the computed
// offsets. No version check is made against the loaded library: a library
// whose structures differ is read incorrectly.
//
// # Thread Safety
//
// An Encoder is NOT safe for concurrent use and the native library makes no
// thread-safety promise; use one Encoder per goroutine or serialize access.
// EncoderState snapshots are plain copies and can be read concurrently.
// Native calls cannot be cancelled through the context.
//
// Library.Close refuses with ErrEncodersOpen until every Encoder opened from
// the library is closed; afterwards calls through it return ErrLibraryClosed.
package fdkaac
