package layout

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Kind is the primitive type of a field.
type Kind uint8

const (
	Uint8 Kind = iota + 1
	Int8
	Uint16
	Int16
	Uint32
	Int32
	Pointer
	Nested
)

func (k Kind) String() string {
	switch k {
	case Uint8:
		return "u8"
	case Int8:
		return "s8"
	case Uint16:
		return "u16"
	case Int16:
		return "s16"
	case Uint32:
		return "u32"
	case Int32:
		return "s32"
	case Pointer:
		return "ptr"
	case Nested:
		return "struct"
	default:
		return "invalid"
	}
}

// Field is one member of a C struct declaration.
type Field struct {
	Name string
	Kind Kind
	// Count is the flattened array length. Zero means a scalar.
	Count int
	// Struct is the element type when Kind is Nested.
	Struct *Struct
}

// Struct is a C struct declaration in source order.
type Struct struct {
	Name   string
	Fields []Field
}

// Alignment selects how padding is computed.
type Alignment uint8

const (
	// AlignNative pads like a C compiler for the target.
	AlignNative Alignment = iota
	// AlignNone packs fields back to back.
	AlignNone
)

func (a Alignment) String() string {
	if a == AlignNone {
		return "none"
	}
	return "native"
}

// ABI is the target data model.
type ABI struct {
	PointerSize uint32
	Order       binary.ByteOrder
	Alignment   Alignment
}

// LP64 is the 64-bit little-endian model used by linux/amd64, linux/arm64 and darwin.
var LP64 = ABI{PointerSize: 8, Order: binary.LittleEndian}

// ILP32 is the 32-bit little-endian model used by wasm32.
var ILP32 = ABI{PointerSize: 4, Order: binary.LittleEndian}

// FieldInfo is a field placed at its offset.
type FieldInfo struct {
	Name     string
	Kind     Kind
	Offset   uint32
	ElemSize uint32
	Count    int
	Struct   *Info
}

// Size is the number of bytes the field occupies, padding excluded.
func (f FieldInfo) Size() uint32 {
	if f.Count == 0 {
		return f.ElemSize
	}
	return f.ElemSize * uint32(f.Count) //nolint:gosec // counts are small compile-time constants
}

// Info is a computed struct layout.
type Info struct {
	Name   string
	Size   uint32
	Align  uint32
	Fields []FieldInfo
	index  map[string]int
}

// Field looks up a field by name.
func (i *Info) Field(name string) (FieldInfo, bool) {
	idx, ok := i.index[name]
	if !ok {
		return FieldInfo{}, false
	}
	return i.Fields[idx], true
}

func (i *Info) mustField(name string) FieldInfo {
	f, ok := i.Field(name)
	if !ok {
		panic(fmt.Sprintf("layout: %s has no field %q", i.Name, name))
	}
	return f
}

// Calculator computes and caches layouts for one ABI.
type Calculator struct {
	abi   ABI
	cache map[*Struct]*Info
}

func NewCalculator(abi ABI) *Calculator {
	return &Calculator{
		abi:   abi,
		cache: make(map[*Struct]*Info),
	}
}

// ABI returns the target data model.
func (c *Calculator) ABI() ABI {
	return c.abi
}

// Calculate returns the layout of s.
func (c *Calculator) Calculate(s *Struct) *Info {
	if cached, ok := c.cache[s]; ok {
		return cached
	}

	info := &Info{
		Name:   s.Name,
		Fields: make([]FieldInfo, 0, len(s.Fields)),
		index:  make(map[string]int, len(s.Fields)),
	}

	maxAlign := uint32(1)
	offset := uint32(0)

	for _, field := range s.Fields {
		fi := FieldInfo{Name: field.Name, Kind: field.Kind, Count: field.Count}
		var align uint32
		if field.Kind == Nested {
			fi.Struct = c.Calculate(field.Struct)
			fi.ElemSize = fi.Struct.Size
			align = fi.Struct.Align
		} else {
			fi.ElemSize = c.primitiveSize(field.Kind)
			align = fi.ElemSize
		}
		if c.abi.Alignment == AlignNone {
			align = 1
		}

		offset = AlignTo(offset, align)
		fi.Offset = offset
		if align > maxAlign {
			maxAlign = align
		}

		info.index[field.Name] = len(info.Fields)
		info.Fields = append(info.Fields, fi)
		offset += fi.Size()
	}

	info.Align = maxAlign
	info.Size = AlignTo(offset, maxAlign)
	c.cache[s] = info
	return info
}

func (c *Calculator) primitiveSize(k Kind) uint32 {
	switch k {
	case Uint8, Int8:
		return 1
	case Uint16, Int16:
		return 2
	case Uint32, Int32:
		return 4
	case Pointer:
		return c.abi.PointerSize
	default:
		panic(fmt.Sprintf("layout: invalid kind %d", k))
	}
}

// AlignTo rounds offset up to a multiple of align.
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// Dump renders the layout of s and every struct it contains, one line per
// field, in the format of the reference dumps under testdata.
func (c *Calculator) Dump(structs ...*Struct) string {
	var b strings.Builder
	for _, s := range structs {
		info := c.Calculate(s)
		fmt.Fprintf(&b, "%s size=%d align=%d\n", info.Name, info.Size, info.Align)
		for _, f := range info.Fields {
			fmt.Fprintf(&b, "\t%s offset=%d size=%d\n", f.Name, f.Offset, f.Size())
		}
	}
	return b.String()
}
