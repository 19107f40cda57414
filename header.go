package libec

import (
	"encoding/binary"
	"hash/crc32"
)

// headerSize is the fixed, packed, little-endian fragment header size from
// §6.1: 80 bytes total (71 bytes through metadata_chksum, padded to a
// round allocation unit so payload starts 16-byte aligned downstream).
const headerSize = 80

// wire offsets, §6.1 (normative).
const (
	offMagic           = 0
	offIdx             = 4
	offSize            = 8
	offBackendMetaSize = 12
	offOrigDataSize    = 16
	offChksumType      = 24
	offChksum          = 25 // 32 bytes, 8 x uint32
	offChksumMismatch  = 57
	offBackendID       = 58
	offBackendVersion  = 59
	offLibECVersion    = 63
	offMetadataChksum  = 67
	metaStart          = offIdx            // meta begins at byte 4
	metaEnd            = offLibECVersion   // metadata_chksum covers [4..63)
)

// BackendVersion is the (major, minor, rev) triple packed into a single
// uint32 on the wire as (major<<16)|(minor<<8)|rev, §6.1.
type BackendVersion struct {
	Major, Minor, Rev uint8
}

func (v BackendVersion) pack() uint32 {
	return uint32(v.Major)<<16 | uint32(v.Minor)<<8 | uint32(v.Rev)
}

func unpackBackendVersion(w uint32) BackendVersion {
	return BackendVersion{
		Major: uint8(w >> 16),
		Minor: uint8(w >> 8),
		Rev:   uint8(w),
	}
}

// FragmentMetadata is the `meta` block of a fragment header, §3.
type FragmentMetadata struct {
	Idx                     uint32
	Size                    uint32
	FragBackendMetadataSize uint32
	OrigDataSize            uint64
	ChksumType              ChksumType
	Chksum                  [8]uint32
	ChksumMismatch          bool
	BackendID               uint8
	BackendVersion          BackendVersion
}

// FragmentHeader is the fixed 80-byte header, §3/§6.1.
type FragmentHeader struct {
	Magic          uint32
	Meta           FragmentMetadata
	LibECVersion   uint32
	MetadataChksum uint32
}

// Fragment is the on-wire unit: a header followed by a payload region (and,
// for some backends, additional backend-metadata bytes), §3.
type Fragment []byte

// Header parses the leading headerSize bytes into a FragmentHeader without
// validating them; use validate for that.
func (f Fragment) Header() FragmentHeader {
	b := []byte(f)
	var h FragmentHeader
	h.Magic = binary.LittleEndian.Uint32(b[offMagic:])
	h.Meta.Idx = binary.LittleEndian.Uint32(b[offIdx:])
	h.Meta.Size = binary.LittleEndian.Uint32(b[offSize:])
	h.Meta.FragBackendMetadataSize = binary.LittleEndian.Uint32(b[offBackendMetaSize:])
	h.Meta.OrigDataSize = binary.LittleEndian.Uint64(b[offOrigDataSize:])
	h.Meta.ChksumType = ChksumType(b[offChksumType])
	for i := 0; i < 8; i++ {
		h.Meta.Chksum[i] = binary.LittleEndian.Uint32(b[offChksum+4*i:])
	}
	h.Meta.ChksumMismatch = b[offChksumMismatch] != 0
	h.Meta.BackendID = b[offBackendID]
	h.Meta.BackendVersion = unpackBackendVersion(binary.LittleEndian.Uint32(b[offBackendVersion:]))
	h.LibECVersion = binary.LittleEndian.Uint32(b[offLibECVersion:])
	h.MetadataChksum = binary.LittleEndian.Uint32(b[offMetadataChksum:])
	return h
}

// Payload returns the payload region of a fragment: meta.Size bytes,
// followed by meta.FragBackendMetadataSize backend bytes, §3's "size +
// frag_backend_metadata_size = payload region length" invariant.
func (f Fragment) Payload() []byte {
	h := f.Header()
	n := int(h.Meta.Size) + int(h.Meta.FragBackendMetadataSize)
	return f[headerSize : headerSize+n]
}

// PayloadData returns just the meta.Size data bytes of the payload region,
// excluding any trailing backend metadata.
func (f Fragment) PayloadData() []byte {
	h := f.Header()
	return f[headerSize : headerSize+int(h.Meta.Size)]
}

// stamp writes a fragment's header in the order §4.1 requires: magic, meta,
// payload checksum, libec_version, then metadata_chksum. Payload bytes
// (meta.Size of them, starting at headerSize) must already be written by
// the caller before stamp is called.
func stamp(f Fragment, idx uint32, origDataSize uint64, blocksize uint32, backendMetaSize uint32, backendID BackendID, backendVersion BackendVersion, chksumType ChksumType) {
	b := []byte(f)

	binary.LittleEndian.PutUint32(b[offMagic:], fragmentMagic)

	binary.LittleEndian.PutUint32(b[offIdx:], idx)
	binary.LittleEndian.PutUint32(b[offSize:], blocksize)
	binary.LittleEndian.PutUint32(b[offBackendMetaSize:], backendMetaSize)
	binary.LittleEndian.PutUint64(b[offOrigDataSize:], origDataSize)
	b[offChksumType] = byte(chksumType)
	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint32(b[offChksum+4*i:], 0)
	}
	b[offChksumMismatch] = 0
	b[offBackendID] = byte(backendID)
	binary.LittleEndian.PutUint32(b[offBackendVersion:], backendVersion.pack())

	if chksumType == ChksumCRC32 || chksumType == ChksumMD5 {
		payload := f[headerSize : headerSize+int(blocksize)]
		binary.LittleEndian.PutUint32(b[offChksum:], payloadChecksum(chksumType, payload))
	}

	binary.LittleEndian.PutUint32(b[offLibECVersion:], libecVersion)

	binary.LittleEndian.PutUint32(b[offMetadataChksum:], crc32.ChecksumIEEE(b[metaStart:metaEnd]))
}

// validateResult is the outcome of validate, §4.1.
type validateResult int

const (
	valOK validateResult = iota
	valBadMagic
	valBadMetadataChksum
	valBadPayloadChksum
)

// validate checks a fragment's header self-description: magic sentinel,
// metadata_chksum, and (for CRC32-typed fragments) the payload checksum.
// It returns valOK or the first failure found, in the order the spec names
// them. The caller's own copy of chksum_mismatch is the one that should be
// updated on a payload mismatch (§4.1: "not persisted").
func validate(f Fragment) validateResult {
	b := []byte(f)
	if len(b) < headerSize {
		return valBadMagic
	}
	if binary.LittleEndian.Uint32(b[offMagic:]) != fragmentMagic {
		return valBadMagic
	}
	got := crc32.ChecksumIEEE(b[metaStart:metaEnd])
	want := binary.LittleEndian.Uint32(b[offMetadataChksum:])
	if got != want {
		return valBadMetadataChksum
	}
	h := f.Header()
	if h.Meta.ChksumType == ChksumCRC32 {
		payload := f.PayloadData()
		if crc32.ChecksumIEEE(payload) != h.Meta.Chksum[0] {
			return valBadPayloadChksum
		}
	}
	return valOK
}
