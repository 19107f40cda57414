package libec

import (
	"bytes"
	"testing"
)

func TestAlignmentMultipleNonCauchy(t *testing.T) {
	if got := alignmentMultiple(10, 16, false); got != 10*2 {
		t.Fatalf("alignmentMultiple(10,16,false) = %d, want %d", got, 10*2)
	}
}

func TestAlignmentMultipleCauchy(t *testing.T) {
	got := alignmentMultiple(4, 8, true)
	want := 4 * 8 * cauchyPacketBytes
	if got != want {
		t.Fatalf("alignmentMultiple(4,8,true) = %d, want %d", got, want)
	}
}

func TestAlignedLenRoundsUp(t *testing.T) {
	if got := alignedLen(17, 16); got != 32 {
		t.Fatalf("alignedLen(17,16) = %d, want 32", got)
	}
	if got := alignedLen(16, 16); got != 16 {
		t.Fatalf("alignedLen(16,16) = %d, want 16", got)
	}
	if got := alignedLen(0, 16); got != 16 {
		t.Fatalf("alignedLen(0,16) = %d, want 16 (minimum one alignment unit)", got)
	}
}

func TestPrepareForEncodeSplitsAndPads(t *testing.T) {
	payload := bytes.Repeat([]byte{0x78}, 100)
	const k, m, w = 4, 2, 16
	dataFrags, parityFrags, blocksize := prepareForEncode(payload, k, m, w, false, 0)

	if len(dataFrags) != k {
		t.Fatalf("len(dataFrags) = %d, want %d", len(dataFrags), k)
	}
	if len(parityFrags) != m {
		t.Fatalf("len(parityFrags) = %d, want %d", len(parityFrags), m)
	}
	for _, f := range dataFrags {
		if len(f) != headerSize+blocksize {
			t.Fatalf("fragment size = %d, want %d", len(f), headerSize+blocksize)
		}
	}

	var reassembled []byte
	for _, f := range dataFrags {
		reassembled = append(reassembled, f[headerSize:headerSize+blocksize]...)
	}
	if !bytes.Equal(reassembled[:len(payload)], payload) {
		t.Fatalf("reassembled payload prefix does not match original")
	}
	for _, b := range reassembled[len(payload):] {
		if b != 0 {
			t.Fatalf("padding byte is non-zero: %d", b)
		}
	}
}

func TestPartitionDetectsMissing(t *testing.T) {
	const k, m = 4, 2
	frags := make([]Fragment, 0, k+m)
	for i := 0; i < k+m; i++ {
		if i == 1 || i == 5 {
			continue
		}
		f := make(Fragment, headerSize+8)
		stamp(f, uint32(i), 32, 8, 0, NullBackend, BackendVersion{}, ChksumNone)
		frags = append(frags, f)
	}

	data, parity, missing, err := partition(frags, k, m)
	if err != nil {
		t.Fatalf("partition: %v", err)
	}
	if len(missing) != 2 {
		t.Fatalf("missing = %v, want 2 entries", missing)
	}
	if data[1] != nil {
		t.Fatalf("data[1] should be nil (missing)")
	}
	if parity[1] != nil {
		t.Fatalf("parity[1] should be nil (missing)")
	}
	for i, d := range data {
		if i != 1 && d == nil {
			t.Fatalf("data[%d] unexpectedly nil", i)
		}
	}
}

func TestPartitionTooManyMissing(t *testing.T) {
	const k, m = 4, 2
	f := make(Fragment, headerSize+8)
	stamp(f, 0, 32, 8, 0, NullBackend, BackendVersion{}, ChksumNone)
	_, _, _, err := partition([]Fragment{f}, k, m)
	if err == nil {
		t.Fatalf("partition with only 1 of 6 fragments should fail")
	}
}

func TestFragmentsToStringDedupsByIndex(t *testing.T) {
	const k = 2
	origSize := uint64(8)
	f0a := make(Fragment, headerSize+4)
	copy(f0a[headerSize:], []byte{1, 2, 3, 4})
	stamp(f0a, 0, origSize, 4, 0, NullBackend, BackendVersion{}, ChksumNone)

	f0b := make(Fragment, headerSize+4)
	copy(f0b[headerSize:], []byte{9, 9, 9, 9})
	stamp(f0b, 0, origSize, 4, 0, NullBackend, BackendVersion{}, ChksumNone)

	f1 := make(Fragment, headerSize+4)
	copy(f1[headerSize:], []byte{5, 6, 7, 8})
	stamp(f1, 1, origSize, 4, 0, NullBackend, BackendVersion{}, ChksumNone)

	out, err := fragmentsToString([]Fragment{f0a, f0b, f1}, k, origSize)
	if err != nil {
		t.Fatalf("fragmentsToString: %v", err)
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if !bytes.Equal(out, want) {
		t.Fatalf("fragmentsToString = %v, want %v", out, want)
	}
}
