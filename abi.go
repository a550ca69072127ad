package fdkaac

import (
	"encoding/binary"

	"golang.org/x/sys/cpu"
)

func nativeByteOrder() binary.ByteOrder {
	if cpu.IsBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}
