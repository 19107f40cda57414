package libec

import (
	"bytes"
	"errors"
	"testing"
)

func TestRegistryCreateDestroyIdentity(t *testing.T) {
	desc, err := Create(NullBackend, EcArgs{K: 4, M: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if desc == 0 {
		t.Fatalf("Create returned the reserved zero descriptor")
	}
	if err := Destroy(desc); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := Destroy(desc); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("Destroy(already-destroyed) err = %v, want ErrInvalidParams", err)
	}
}

func TestDestroyUnknownDescriptor(t *testing.T) {
	if err := Destroy(987654); !errors.Is(err, ErrInvalidParams) {
		t.Fatalf("Destroy(unknown) err = %v, want ErrInvalidParams", err)
	}
}

func TestFrontendRSVandermondeEncodeDecodeRoundTrip(t *testing.T) {
	desc, err := Create(LiberasurecodeRSVand, EcArgs{K: 10, M: 4, W: 16, ChksumType: ChksumCRC32})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer Destroy(desc)

	payload := bytes.Repeat([]byte{0x78}, 1024)
	frags, err := Encode(desc, payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(frags) != 14 {
		t.Fatalf("len(frags) = %d, want 14", len(frags))
	}

	survivors := make([]Fragment, 0, len(frags))
	for i, f := range frags {
		if i == 3 || i == 7 || i == 11 {
			continue
		}
		survivors = append(survivors, f)
	}

	out, err := Decode(desc, survivors, false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("decoded payload mismatch")
	}
}

func TestFrontendReconstructFragment(t *testing.T) {
	desc, err := Create(LiberasurecodeRSVand, EcArgs{K: 6, M: 3, W: 16, ChksumType: ChksumCRC32})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer Destroy(desc)

	payload := bytes.Repeat([]byte{0x41}, 300)
	frags, err := Encode(desc, payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	target := 2
	want := append(Fragment(nil), frags[target]...)

	survivors := make([]Fragment, 0, len(frags)-1)
	for i, f := range frags {
		if i == target {
			continue
		}
		survivors = append(survivors, f)
	}

	got, err := ReconstructFragment(desc, survivors, target)
	if err != nil {
		t.Fatalf("ReconstructFragment: %v", err)
	}
	if !bytes.Equal(got.PayloadData(), want.PayloadData()) {
		t.Fatalf("reconstructed fragment payload mismatch")
	}
}

func TestFrontendVerifyStripeMetadataFlagsOneFragment(t *testing.T) {
	desc, err := Create(NullBackend, EcArgs{K: 8, M: 4})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer Destroy(desc)

	payload := make([]byte, 4096)
	frags, err := Encode(desc, payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	frags[0][offOrigDataSize] ^= 0xff

	results, err := VerifyStripeMetadata(desc, frags)
	if err != nil {
		t.Fatalf("VerifyStripeMetadata: %v", err)
	}
	if results[0] == nil {
		t.Fatalf("corrupted fragment 0 reported ok")
	}
	if !errors.Is(results[0], ErrBadHeader) {
		t.Fatalf("fragment 0 error = %v, want ErrBadHeader", results[0])
	}
	for i := 1; i < len(results); i++ {
		if results[i] != nil {
			t.Fatalf("uncorrupted fragment %d reported error: %v", i, results[i])
		}
	}
}

func TestFrontendGetFragmentSizeAndAlignedSize(t *testing.T) {
	desc, err := Create(LiberasurecodeRSVand, EcArgs{K: 4, M: 2, W: 16})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer Destroy(desc)

	aligned, err := GetAlignedDataSize(desc, 17)
	if err != nil {
		t.Fatalf("GetAlignedDataSize: %v", err)
	}
	if aligned%8 != 0 {
		t.Fatalf("aligned size %d not a multiple of alignment_multiple=8", aligned)
	}

	size, err := GetFragmentSize(desc, 17)
	if err != nil {
		t.Fatalf("GetFragmentSize: %v", err)
	}
	if size <= headerSize {
		t.Fatalf("fragment size %d should exceed headerSize", size)
	}

	minSize, err := GetMinimumEncodeSize(desc)
	if err != nil {
		t.Fatalf("GetMinimumEncodeSize: %v", err)
	}
	if minSize != 8 {
		t.Fatalf("GetMinimumEncodeSize = %d, want 8", minSize)
	}
}

func TestFrontendXORHDRoundTrip(t *testing.T) {
	desc, err := Create(FlatXORHD, EcArgs{K: 12, M: 6, W: 32, HD: 4})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer Destroy(desc)

	payload := bytes.Repeat([]byte{0x5a}, 32*1024)
	frags, err := Encode(desc, payload)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	survivors := make([]Fragment, 0, len(frags))
	for i, f := range frags {
		if i == 1 || i == 9 || i == 15 {
			continue
		}
		survivors = append(survivors, f)
	}

	out, err := Decode(desc, survivors, true)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(out, payload) {
		t.Fatalf("decoded payload mismatch")
	}
}
