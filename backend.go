package libec

// Backend is the capability set every coding kernel must implement,
// Component I / §4.8. Modelled as a Go interface rather than the
// original's function-pointer struct + void* state (§9: "modelled as a
// trait object or enum dispatch; do not replicate C's void-pointer-plus-
// union casts").
type Backend interface {
	// Encode fills the m parity shards from the k data shards.
	Encode(data, parity [][]byte, blocksize int) error

	// Decode recovers every shard named in missing; it recomputes parity
	// shards too only if rebuildParity is set.
	Decode(data, parity [][]byte, missing []int, blocksize int, rebuildParity bool) error

	// Reconstruct recovers a single shard at destIdx.
	Reconstruct(data, parity [][]byte, missing []int, destIdx int, blocksize int) error

	// MinFragments returns the minimal fragment index list needed to
	// reconstruct target, given a set of excluded fragments.
	MinFragments(target int, excluded map[int]bool) ([]int, error)

	// ElementSize reports the GF width in bits the kernel operates on.
	ElementSize() int

	// IsCompatibleWith reports whether this backend instance can read
	// fragments stamped by the named version.
	IsCompatibleWith(version BackendVersion) bool
}

// BackendDescriptor is the static, process-wide description of a coding
// kernel, §4.8: "A backend descriptor carries: numeric id, short name,
// library version, per-shard backend-metadata size, and the capability
// set."
type BackendDescriptor struct {
	ID                   BackendID
	Name                 string
	Version              BackendVersion
	FragmentMetadataSize int
	IsSystematic         bool
}

// backendFactory constructs a Backend instance from validated EcArgs.
type backendFactory func(args EcArgs) (Backend, BackendDescriptor, error)

// backendFactories is the static registry of kernels this module statically
// links, keyed by id — §9's "registered statically at build time" in place
// of the original's dlopen-based dynamic backend loading.
var backendFactories = map[BackendID]backendFactory{
	NullBackend:          newNullBackendInstance,
	LiberasurecodeRSVand: newRSVandermondeBackendInstance,
	FlatXORHD:            newXORHDBackendInstance,
	JerasureRSCauchy:     newCauchyBackendInstance,
}
