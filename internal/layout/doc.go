// Package layout describes C struct layouts independently of Go struct syntax.
//
// A Struct lists fields in declaration order with fixed-width primitive kinds.
// The Calculator turns a Struct into an Info holding the offset and size of
// every field for a given ABI (pointer width, byte order, alignment mode).
// Views read and write fields of a raw byte buffer through an Info.
//
// # Layout Rules
//
// With AlignNative the rules match the System V and wasm32 C ABIs:
//   - Primitives: size equals alignment (u8=1, u16=2, u32=4, pointer=ABI width)
//   - Arrays: element alignment, size is element size times count
//   - Structs: fields laid out sequentially, each at its alignment, total size
//     rounded up to the largest field alignment
//
// With AlignNone no padding is inserted anywhere.
//
// Multi-dimensional C arrays are described by their flattened element count.
package layout
