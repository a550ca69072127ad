package layout

import (
	"errors"
	"fmt"
)

// ErrShortBuffer is returned when a buffer is smaller than the struct it holds.
var ErrShortBuffer = errors.New("layout: buffer shorter than struct")

// View reads and writes the fields of one struct instance held in a byte
// buffer. Accessors panic when the name is not a field of the struct, since
// descriptors are static.
type View struct {
	info *Info
	abi  ABI
	buf  []byte
}

// NewView binds buf to info. buf must hold at least info.Size bytes.
func (c *Calculator) NewView(info *Info, buf []byte) (View, error) {
	if uint32(len(buf)) < info.Size { //nolint:gosec // struct buffers are small
		return View{}, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrShortBuffer, info.Name, info.Size, len(buf))
	}
	return View{info: info, abi: c.abi, buf: buf[:info.Size]}, nil
}

// Alloc returns a view over a zeroed buffer sized for info.
func (c *Calculator) Alloc(info *Info) View {
	return View{info: info, abi: c.abi, buf: make([]byte, info.Size)}
}

// Info returns the layout the view is bound to.
func (v View) Info() *Info { return v.info }

// Bytes returns the underlying buffer.
func (v View) Bytes() []byte { return v.buf }

func (v View) span(name string, i int) []byte {
	f := v.info.mustField(name)
	if i < 0 || (f.Count == 0 && i > 0) || (f.Count > 0 && i >= f.Count) {
		panic(fmt.Sprintf("layout: index %d out of range for %s.%s", i, v.info.Name, name))
	}
	off := f.Offset + f.ElemSize*uint32(i) //nolint:gosec // i is bounds checked above
	return v.buf[off : off+f.ElemSize]
}

// Uint8 reads a u8 or s8 field as its raw byte.
func (v View) Uint8(name string) uint8 { return v.Uint8At(name, 0) }

// Uint8At reads element i of a byte array field.
func (v View) Uint8At(name string, i int) uint8 {
	return v.span(name, i)[0]
}

// Int8 reads an s8 field.
func (v View) Int8(name string) int8 {
	return int8(v.span(name, 0)[0]) //nolint:gosec // intentional reinterpretation
}

// Uint16 reads a u16 field.
func (v View) Uint16(name string) uint16 {
	return v.abi.Order.Uint16(v.span(name, 0))
}

// Int16 reads an s16 field.
func (v View) Int16(name string) int16 {
	return int16(v.Uint16(name)) //nolint:gosec // intentional reinterpretation
}

// Uint32 reads a u32 field.
func (v View) Uint32(name string) uint32 { return v.Uint32At(name, 0) }

// Uint32At reads element i of a u32 or s32 array field.
func (v View) Uint32At(name string, i int) uint32 {
	return v.abi.Order.Uint32(v.span(name, i))
}

// Int32 reads an s32 field.
func (v View) Int32(name string) int32 {
	return int32(v.Uint32(name)) //nolint:gosec // intentional reinterpretation
}

// Pointer reads a pointer field as an address.
func (v View) Pointer(name string) uint64 { return v.PointerAt(name, 0) }

// PointerAt reads element i of a pointer array field.
func (v View) PointerAt(name string, i int) uint64 {
	b := v.span(name, i)
	if v.abi.PointerSize == 4 {
		return uint64(v.abi.Order.Uint32(b))
	}
	return v.abi.Order.Uint64(b)
}

// Array returns a copy of the raw bytes of an array or struct field.
func (v View) Array(name string) []byte {
	f := v.info.mustField(name)
	out := make([]byte, f.Size())
	copy(out, v.buf[f.Offset:f.Offset+f.Size()])
	return out
}

// Struct returns a view of a nested struct field. The view shares the buffer.
func (v View) Struct(name string) View { return v.StructAt(name, 0) }

// StructAt returns a view of element i of a nested struct array field.
func (v View) StructAt(name string, i int) View {
	f := v.info.mustField(name)
	if f.Kind != Nested {
		panic(fmt.Sprintf("layout: %s.%s is not a struct", v.info.Name, name))
	}
	return View{info: f.Struct, abi: v.abi, buf: v.span(name, i)}
}

// PutUint8 writes a u8 or s8 field.
func (v View) PutUint8(name string, x uint8) {
	v.span(name, 0)[0] = x
}

// PutUint32 writes a u32 field.
func (v View) PutUint32(name string, x uint32) { v.PutUint32At(name, 0, x) }

// PutUint32At writes element i of a u32 or s32 array field.
func (v View) PutUint32At(name string, i int, x uint32) {
	v.abi.Order.PutUint32(v.span(name, i), x)
}

// PutInt32 writes an s32 field.
func (v View) PutInt32(name string, x int32) {
	v.PutUint32(name, uint32(x)) //nolint:gosec // intentional reinterpretation
}

// PutPointer writes an address into a pointer field.
func (v View) PutPointer(name string, addr uint64) { v.PutPointerAt(name, 0, addr) }

// PutPointerAt writes element i of a pointer array field.
func (v View) PutPointerAt(name string, i int, addr uint64) {
	b := v.span(name, i)
	if v.abi.PointerSize == 4 {
		v.abi.Order.PutUint32(b, uint32(addr)) //nolint:gosec // 32-bit address space
		return
	}
	v.abi.Order.PutUint64(b, addr)
}

// PutArray copies data into an array field. Extra bytes are dropped.
func (v View) PutArray(name string, data []byte) {
	f := v.info.mustField(name)
	copy(v.buf[f.Offset:f.Offset+f.Size()], data)
}
