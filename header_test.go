package libec

import "testing"

func newTestFragment(blocksize int) Fragment {
	f := make(Fragment, headerSize+blocksize)
	for i := headerSize; i < len(f); i++ {
		f[i] = byte(i)
	}
	return f
}

func TestStampThenValidateIsOK(t *testing.T) {
	f := newTestFragment(64)
	stamp(f, 3, 1000, 64, 0, LiberasurecodeRSVand, BackendVersion{Major: 1, Minor: 2, Rev: 3}, ChksumCRC32)

	if got := validate(f); got != valOK {
		t.Fatalf("validate() = %v, want valOK", got)
	}

	h := f.Header()
	if h.Meta.Idx != 3 {
		t.Fatalf("Idx = %d, want 3", h.Meta.Idx)
	}
	if h.Meta.OrigDataSize != 1000 {
		t.Fatalf("OrigDataSize = %d, want 1000", h.Meta.OrigDataSize)
	}
	if h.Meta.BackendVersion != (BackendVersion{Major: 1, Minor: 2, Rev: 3}) {
		t.Fatalf("BackendVersion = %+v, want {1 2 3}", h.Meta.BackendVersion)
	}
}

func TestValidateBadMagic(t *testing.T) {
	f := newTestFragment(16)
	stamp(f, 0, 16, 16, 0, NullBackend, BackendVersion{}, ChksumNone)
	f[0] ^= 0xff
	if got := validate(f); got != valBadMagic {
		t.Fatalf("validate() = %v, want valBadMagic", got)
	}
}

func TestValidateBadMetadataChksum(t *testing.T) {
	f := newTestFragment(16)
	stamp(f, 0, 16, 16, 0, NullBackend, BackendVersion{}, ChksumNone)
	f[offOrigDataSize] ^= 0xff
	if got := validate(f); got != valBadMetadataChksum {
		t.Fatalf("validate() = %v, want valBadMetadataChksum", got)
	}
}

func TestValidateBadPayloadChksum(t *testing.T) {
	f := newTestFragment(16)
	stamp(f, 0, 16, 16, 0, NullBackend, BackendVersion{}, ChksumCRC32)
	f[headerSize] ^= 0xff
	if got := validate(f); got != valBadPayloadChksum {
		t.Fatalf("validate() = %v, want valBadPayloadChksum", got)
	}
}

func TestBackendVersionPackRoundTrip(t *testing.T) {
	v := BackendVersion{Major: 200, Minor: 150, Rev: 99}
	got := unpackBackendVersion(v.pack())
	if got != v {
		t.Fatalf("unpackBackendVersion(pack()) = %+v, want %+v", got, v)
	}
}

func TestPayloadDataExcludesBackendMetadata(t *testing.T) {
	f := make(Fragment, headerSize+16+4)
	stamp(f, 0, 16, 16, 4, NullBackend, BackendVersion{}, ChksumNone)
	if len(f.Payload()) != 20 {
		t.Fatalf("len(Payload()) = %d, want 20", len(f.Payload()))
	}
	if len(f.PayloadData()) != 16 {
		t.Fatalf("len(PayloadData()) = %d, want 16", len(f.PayloadData()))
	}
}
