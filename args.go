package libec

import "github.com/pkg/errors"

// BackendID identifies a coding kernel, §6.2. Values are stable across the
// ecosystem this frontend descends from; only NullBackend, RSVandermonde,
// Cauchy and FlatXORHD are implemented in-process, the rest name external
// kernels this module does not statically link (§1 scope).
type BackendID int

const (
	NullBackend BackendID = iota
	JerasureRSVand
	JerasureRSCauchy
	FlatXORHD
	ISALRSVand
	SHSS
	LiberasurecodeRSVand
	ISALRSCauchy
	LibPhazr
	ISALRSVandInv
)

func (b BackendID) String() string {
	switch b {
	case NullBackend:
		return "null"
	case JerasureRSVand:
		return "jerasure_rs_vand"
	case JerasureRSCauchy:
		return "jerasure_rs_cauchy"
	case FlatXORHD:
		return "flat_xor_hd"
	case ISALRSVand:
		return "isa_l_rs_vand"
	case SHSS:
		return "shss"
	case LiberasurecodeRSVand:
		return "liberasurecode_rs_vand"
	case ISALRSCauchy:
		return "isa_l_rs_cauchy"
	case LibPhazr:
		return "libphazr"
	case ISALRSVandInv:
		return "isa_l_rs_vand_inv"
	default:
		return "unknown"
	}
}

// ChksumType selects the per-fragment payload checksum algorithm, §3.
type ChksumType uint8

const (
	ChksumNone ChksumType = iota + 1
	ChksumCRC32
	ChksumMD5
)

// EcArgs are the code parameters a caller supplies to Create, §3.
type EcArgs struct {
	K int // number of data fragments
	M int // number of parity fragments
	W int // GF width in bits; backend-dependent (8, 16 or 32)
	HD int // XOR-HD hamming distance, only meaningful for FlatXORHD

	ChksumType ChksumType

	// ForceMetadataChecks mirrors the original's force_metadata_checks:
	// when set, decode refuses to trust a fragment whose header validation
	// marked chksum_mismatch, even though its declared idx/size look sane.
	ForceMetadataChecks bool

	// BackendSpecific carries backend-keyed arguments the null backend
	// uses (§9's "priv_args2" redesign: a sum type keyed by backend id
	// instead of a void pointer).
	BackendSpecific NullArgs
}

// NullArgs is the only backend-specific argument variant implemented by
// this module; §9 calls for a sum type keyed by backend id in place of the
// original's void pointer, the other variants it names (ShssArgs, Reserved)
// belong to backends this module does not statically link.
type NullArgs struct {
	Arg1 int
}

// validate checks the invariants of §3: k>=1, m>=1, k+m<=2^w, and the
// backend-specific constraints on w and hd.
func (a EcArgs) validate(id BackendID) error {
	if a.K < 1 || a.M < 1 {
		return errors.Wrap(ErrInvalidParams, "k and m must both be >= 1")
	}
	n := a.K + a.M
	switch id {
	case NullBackend:
		// no width constraint
	case JerasureRSVand, ISALRSVand, LiberasurecodeRSVand, ISALRSVandInv:
		if a.W != 8 && a.W != 16 && a.W != 32 {
			return errors.Wrapf(ErrInvalidParams, "unsupported w=%d for vandermonde RS", a.W)
		}
		if n > (1 << uint(a.W)) {
			return errors.Wrapf(ErrInvalidParams, "k+m=%d exceeds 2^w for w=%d", n, a.W)
		}
	case JerasureRSCauchy, ISALRSCauchy:
		minW := bitLen(n - 1)
		if a.W < minW {
			return errors.Wrapf(ErrInvalidParams, "w=%d too small for k+m=%d cauchy code", a.W, n)
		}
	case FlatXORHD:
		if a.W != 32 {
			return errors.Wrapf(ErrInvalidParams, "flat_xor_hd requires w=32, got %d", a.W)
		}
		if a.HD != 3 && a.HD != 4 {
			return errors.Wrapf(ErrInvalidParams, "flat_xor_hd requires hd in {3,4}, got %d", a.HD)
		}
		if _, _, ok := xorHDTable(a.K, a.M, a.HD); !ok {
			return errors.Wrapf(ErrInvalidParams, "no pre-tabulated xor-hd code for k=%d m=%d hd=%d", a.K, a.M, a.HD)
		}
	default:
		return errors.Wrapf(ErrBackendNotSupported, "backend id %d", id)
	}
	return nil
}

// bitLen returns ceil(log2(x+1)) for x >= 0, i.e. the minimum number of bits
// needed to represent values 0..x inclusive.
func bitLen(x int) int {
	n := 0
	for (1 << uint(n)) <= x {
		n++
	}
	return n
}
