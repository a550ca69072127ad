package fdkaac

import (
	"errors"
	"fmt"
)

// Status is a native AACENC_ERROR code. Every entry point returns one; the
// binding hands non-zero codes back unchanged.
type Status uint32

// Status codes from aacenc_lib.h.
const (
	StatusOK                   Status = 0x0000
	StatusInvalidHandle        Status = 0x0020
	StatusMemoryError          Status = 0x0021
	StatusUnsupportedParameter Status = 0x0022
	StatusInvalidConfig        Status = 0x0023
	StatusInitError            Status = 0x0040
	StatusInitAACError         Status = 0x0041
	StatusInitSBRError         Status = 0x0042
	StatusInitTPError          Status = 0x0043
	StatusInitMetaError        Status = 0x0044
	StatusInitMPSError         Status = 0x0045
	StatusEncodeError          Status = 0x0060
	StatusEncodeEOF            Status = 0x0080
)

var statusMessages = map[Status]string{
	StatusOK:                   "no error",
	StatusInvalidHandle:        "handle passed to function call was invalid",
	StatusMemoryError:          "memory allocation failed",
	StatusUnsupportedParameter: "parameter not available",
	StatusInvalidConfig:        "configuration not provided",
	StatusInitError:            "general initialization error",
	StatusInitAACError:         "AAC library initialization error",
	StatusInitSBRError:         "SBR library initialization error",
	StatusInitTPError:          "transport library initialization error",
	StatusInitMetaError:        "meta data library initialization error",
	StatusInitMPSError:         "MPS library initialization error",
	StatusEncodeError:          "the encoding process was interrupted by an unexpected error",
	StatusEncodeEOF:            "end of file reached",
}

var statusNames = map[Status]string{
	StatusOK:                   "AACENC_OK",
	StatusInvalidHandle:        "AACENC_INVALID_HANDLE",
	StatusMemoryError:          "AACENC_MEMORY_ERROR",
	StatusUnsupportedParameter: "AACENC_UNSUPPORTED_PARAMETER",
	StatusInvalidConfig:        "AACENC_INVALID_CONFIG",
	StatusInitError:            "AACENC_INIT_ERROR",
	StatusInitAACError:         "AACENC_INIT_AAC_ERROR",
	StatusInitSBRError:         "AACENC_INIT_SBR_ERROR",
	StatusInitTPError:          "AACENC_INIT_TP_ERROR",
	StatusInitMetaError:        "AACENC_INIT_META_ERROR",
	StatusInitMPSError:         "AACENC_INIT_MPS_ERROR",
	StatusEncodeError:          "AACENC_ENCODE_ERROR",
	StatusEncodeEOF:            "AACENC_ENCODE_EOF",
}

// String returns the C enumerator name.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("AACENC_ERROR(0x%02x)", uint32(s))
}

// Error implements the error interface.
func (s Status) Error() string {
	if msg, ok := statusMessages[s]; ok {
		return fmt.Sprintf("fdkaac: %s (0x%02x)", msg, uint32(s))
	}
	return fmt.Sprintf("fdkaac: unknown status 0x%02x", uint32(s))
}

// IsInitError reports whether s belongs to the initialization error class.
func (s Status) IsInitError() bool { return s&0xe0 == 0x40 }

// IsEncodeError reports whether s belongs to the encode error class.
func (s Status) IsEncodeError() bool { return s&0xe0 == 0x60 }

// err returns nil for StatusOK and s otherwise.
func (s Status) err() error {
	if s == StatusOK {
		return nil
	}
	return s
}

var (
	// ErrNullHandle is returned when a state mirror is requested for address zero.
	ErrNullHandle = errors.New("fdkaac: null encoder handle")

	// ErrNotOpen is returned when an Encoder was not produced by Open.
	ErrNotOpen = errors.New("fdkaac: encoder not open")

	// ErrHandleClosed is returned when Close is called on a closed Encoder.
	ErrHandleClosed = errors.New("fdkaac: encoder already closed")

	// ErrLibraryClosed is returned by calls made through a closed Library.
	ErrLibraryClosed = errors.New("fdkaac: library closed")

	// ErrEncodersOpen is returned by Library.Close while encoders opened from
	// it are still open.
	ErrEncodersOpen = errors.New("fdkaac: encoders still open")

	// ErrNotRegistered is returned when the default library is used before Register.
	ErrNotRegistered = errors.New("fdkaac: library not registered")

	// ErrLibraryNotFound is returned when no candidate path loads.
	ErrLibraryNotFound = errors.New("fdkaac: library not found")

	// ErrMissingSymbol is returned when the library lacks a required entry point.
	ErrMissingSymbol = errors.New("fdkaac: missing symbol")

	// ErrOutOfMemory is returned when memory in the library address space cannot be allocated.
	ErrOutOfMemory = errors.New("fdkaac: out of memory")

	// ErrMemoryAccess is returned when an address lies outside the library address space.
	ErrMemoryAccess = errors.New("fdkaac: memory access out of range")

	// ErrUnsupportedPlatform is returned when native loading is not available for GOOS.
	ErrUnsupportedPlatform = errors.New("fdkaac: native loading not supported on this platform")
)
