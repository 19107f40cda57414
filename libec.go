// Package libec turns an opaque payload into k+m equally-sized fragments
// from which the original payload can be recovered from any sufficient
// subset, and repairs individual fragments after loss.
//
// The package is organised the way a single coding core with pluggable
// backends usually is: a frontend dispatcher (Create/Destroy/Encode/Decode/
// Reconstruct) routes calls through a pre-/post-processing pipeline around
// one of several interchangeable coding kernels (systematic Vandermonde
// Reed-Solomon, Cauchy Reed-Solomon, flat XOR-HD, or a no-op backend).
package libec

// libecVersion is stamped into every fragment header (FragmentHeader.LibECVersion).
const libecVersion = 0x00020003 // major=2 minor=0 rev=3, matches the on-disk field width

// fragmentMagic is the four-byte sentinel at the start of every fragment, §6.1.
const fragmentMagic uint32 = 0x0b0c5ecc
