package fdkaac

import (
	"os"
	"strings"
	"testing"

	"github.com/llehouerou/go-fdkaac/internal/layout"
)

func TestLayoutDumpGolden(t *testing.T) {
	tests := []struct {
		name        string
		pointerSize uint32
		golden      string
	}{
		{"lp64", 8, "testdata/layout_lp64.golden"},
		{"ilp32", 4, "testdata/layout_ilp32.golden"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			want, err := os.ReadFile(tc.golden)
			if err != nil {
				t.Fatalf("failed to read golden file: %v", err)
			}
			got := LayoutDump(tc.pointerSize, AlignNative)
			if got == string(want) {
				return
			}
			gotLines := strings.Split(got, "\n")
			wantLines := strings.Split(string(want), "\n")
			for i := range min(len(gotLines), len(wantLines)) {
				if gotLines[i] != wantLines[i] {
					t.Fatalf("line %d: got %q, want %q", i+1, gotLines[i], wantLines[i])
				}
			}
			t.Fatalf("got %d lines, want %d", len(gotLines), len(wantLines))
		})
	}
}

func TestEncoderLayoutOffsets(t *testing.T) {
	tests := []struct {
		name        string
		abi         layout.ABI
		size        uint32
		extPayload  uint32
		slotSize    uint32
		payloadData uint32
		payloadSize uint32
		initFlags   uint32
		modis       uint32
	}{
		{"lp64", layout.LP64, 2816, 416, 24, 704, 2752, 2784, 2804},
		{"ilp32", layout.ILP32, 2676, 376, 16, 568, 2616, 2648, 2668},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			lt := newLayouts(tc.abi)
			if lt.encoder.Size != tc.size {
				t.Errorf("AACENCODER size: got %d, want %d", lt.encoder.Size, tc.size)
			}
			f, ok := lt.encoder.Field("extPayload")
			if !ok {
				t.Fatal("extPayload field missing")
			}
			if f.Offset != tc.extPayload {
				t.Errorf("extPayload offset: got %d, want %d", f.Offset, tc.extPayload)
			}
			if f.Count != MaxTotalExtPayloads {
				t.Errorf("extPayload slots: got %d, want %d", f.Count, MaxTotalExtPayloads)
			}
			if f.ElemSize != tc.slotSize {
				t.Errorf("slot size: got %d, want %d", f.ElemSize, tc.slotSize)
			}

			offsets := []struct {
				field string
				want  uint32
				size  uint32
			}{
				{"extPayloadData", tc.payloadData, ExtPayloadBuffers * MaxPayloadSize},
				{"extPayloadSize", tc.payloadSize, ExtPayloadBuffers * 4},
				{"InitFlags", tc.initFlags, 4},
				{"encoder_modis", tc.modis, 4},
			}
			for _, o := range offsets {
				f, ok := lt.encoder.Field(o.field)
				if !ok {
					t.Errorf("%s field missing", o.field)
					continue
				}
				if f.Offset != o.want {
					t.Errorf("%s offset: got %d, want %d", o.field, f.Offset, o.want)
				}
				if f.Size() != o.size {
					t.Errorf("%s size: got %d, want %d", o.field, f.Size(), o.size)
				}
			}
		})
	}
}

func TestPackedLayout(t *testing.T) {
	abi := layout.LP64
	abi.Alignment = AlignNone
	calc := layout.NewCalculator(abi)

	tests := []struct {
		s    *layout.Struct
		size uint32
	}{
		{userParamStruct, 71},
		{extPayloadStruct, 20},
		{bufDescStruct, 36},
		{inArgsStruct, 8},
		{libInfoStruct, 68},
	}
	for _, tc := range tests {
		info := calc.Calculate(tc.s)
		if info.Size != tc.size {
			t.Errorf("%s packed size: got %d, want %d", tc.s.Name, info.Size, tc.size)
		}
		if info.Align != 1 {
			t.Errorf("%s packed align: got %d, want 1", tc.s.Name, info.Align)
		}
	}
}

func TestExtPayloadCapacity(t *testing.T) {
	var state EncoderState
	if len(state.ExtPayload) != MaxTotalExtPayloads {
		t.Errorf("slots: got %d, want %d", len(state.ExtPayload), MaxTotalExtPayloads)
	}
	if len(state.ExtPayload[0].Data) != MaxPayloadSize {
		t.Errorf("payload capacity: got %d, want %d", len(state.ExtPayload[0].Data), MaxPayloadSize)
	}
}

func TestLibraryAlignmentOption(t *testing.T) {
	abi := layout.LP64
	abi.Alignment = AlignNone
	lib, _ := newFakeLibrary(abi)
	if lib.layouts.extPayload.Size != 20 {
		t.Errorf("packed ext payload: got %d, want 20", lib.layouts.extPayload.Size)
	}
}
