package bitio

import (
	"bytes"
	"testing"
)

// wordsToBytes renders container words as big-endian bytes, the wire format
// NewReader expects.
func wordsToBytes(words []uint32) []byte {
	out := make([]byte, len(words)*4)
	for i, w := range words {
		out[i*4] = byte(w >> 24)
		out[i*4+1] = byte(w >> 16)
		out[i*4+2] = byte(w >> 8)
		out[i*4+3] = byte(w)
	}
	return out
}

func TestWriterReaderRoundTrip(t *testing.T) {
	for _, wordSize := range []int{16, 20, 24} {
		w := NewWriter(wordSize)
		values := []uint32{1, 0, 7, 1<<uint(wordSize) - 1, 3, 5}
		itemBits := []int{4, 1, 3, wordSize, 2, 3}
		for i := range values {
			w.Pack1(values[i], itemBits[i])
		}

		r := NewReader(bytes.NewReader(w.Bytes()))
		if err := r.InitStream(wordSize); err != nil {
			t.Fatalf("wordSize=%d: InitStream: %v", wordSize, err)
		}
		if err := r.Refill(w.WordCount()); err != nil {
			t.Fatalf("wordSize=%d: Refill: %v", wordSize, err)
		}

		for i := range values {
			got, err := r.Unpack1(itemBits[i])
			if err != nil {
				t.Fatalf("wordSize=%d item %d: Unpack1: %v", wordSize, i, err)
			}
			if got != values[i] {
				t.Errorf("wordSize=%d item %d: got %d, want %d", wordSize, i, got, values[i])
			}
		}
	}
}

func TestWriterPackBytes(t *testing.T) {
	w := NewWriter(16)
	w.PackBytes([]byte("AB"))

	r := NewReader(bytes.NewReader(w.Bytes()))
	if err := r.InitStream(16); err != nil {
		t.Fatal(err)
	}
	if err := r.Refill(w.WordCount()); err != nil {
		t.Fatal(err)
	}
	a, err := r.Unpack1(8)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Unpack1(8)
	if err != nil {
		t.Fatal(err)
	}
	if a != 'A' || b != 'B' {
		t.Errorf("got %q %q, want 'A' 'B'", a, b)
	}
}

func TestWriterCrossesWordBoundary(t *testing.T) {
	w := NewWriter(16)
	// 10-bit items crossing 16-bit word boundaries repeatedly, mirroring the
	// meter segment's peak/RMS fields.
	values := []uint32{0x3ff, 0x000, 0x2aa, 0x155, 0x3ff}
	for _, v := range values {
		w.Pack1(v, 10)
	}

	r := NewReader(bytes.NewReader(w.Bytes()))
	if err := r.InitStream(16); err != nil {
		t.Fatal(err)
	}
	if err := r.Refill(w.WordCount()); err != nil {
		t.Fatal(err)
	}
	for i, want := range values {
		got, err := r.Unpack1(10)
		if err != nil {
			t.Fatalf("item %d: %v", i, err)
		}
		if got != want {
			t.Errorf("item %d: got %#x, want %#x", i, got, want)
		}
	}
}

func TestUnkeyRoundTrip(t *testing.T) {
	w := NewWriter(16)
	w.Pack1(0x1234, 16)
	w.Pack1(0x5678, 16)

	r := NewReader(bytes.NewReader(w.Bytes()))
	if err := r.InitStream(16); err != nil {
		t.Fatal(err)
	}
	if err := r.Refill(w.WordCount()); err != nil {
		t.Fatal(err)
	}
	const key = 0xabcd
	if err := r.Unkey(key, 2); err != nil {
		t.Fatal(err)
	}
	v0, _ := r.Unpack1(16)
	v1, _ := r.Unpack1(16)
	if v0 != 0x1234^key || v1 != 0x5678^key {
		t.Errorf("got %#x %#x, want %#x %#x", v0, v1, 0x1234^key, 0x5678^key)
	}
}
