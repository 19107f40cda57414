package libec

import "sync"

// GF(2^16) log/ilog tables, §4.2/§9 ("process-global GF tables... map to a
// lazily-initialised static with interior locking"). Grounded on
// original_source/src/builtin/rs_vand/rs_galois.c: field size 2^16,
// primitive polynomial 0x1100b, the canonical one-shot log/antilog table
// construction for this field width.
const (
	gfFieldSize  = 1 << 16
	gfGroupSize  = gfFieldSize - 1
	gfPrimPoly   = 0x1100b
)

var (
	gfOnce       sync.Once
	gfLogTable   []uint32 // indexed by field element, 0 unused (log(0) undefined)
	gfIlogTable  []uint32 // indexed by exponent mod (3*groupSize), tripled to avoid modular wraparound branches
)

func gfInitTables() {
	gfOnce.Do(func() {
		gfLogTable = make([]uint32, gfFieldSize)
		gfIlogTable = make([]uint32, gfGroupSize*3)

		x := 1
		for i := 0; i < gfGroupSize; i++ {
			gfLogTable[x] = uint32(i)
			gfIlogTable[i] = uint32(x)
			gfIlogTable[i+gfGroupSize] = uint32(x)
			gfIlogTable[i+2*gfGroupSize] = uint32(x)
			x <<= 1
			if x&gfFieldSize != 0 {
				x ^= gfPrimPoly
			}
		}
	})
}

// gfMul multiplies two GF(2^16) elements using the log/ilog tables. The sum
// of logs can run up to ~2*groupSize and is centered on the tripled ilog
// table so it never needs a modular reduction branch.
func gfMul(x, y uint16) uint16 {
	if x == 0 || y == 0 {
		return 0
	}
	gfInitTables()
	sum := int(gfLogTable[x]) + int(gfLogTable[y]) + gfGroupSize
	return uint16(gfIlogTable[sum])
}

// gfDiv divides x by y in GF(2^16). Dividing by zero returns 0, matching the
// original's "can 'underflow'... handled by negative overflow of ilog_table"
// comment translated into an explicit offset instead of relying on negative
// C array indexing.
func gfDiv(x, y uint16) uint16 {
	if x == 0 {
		return 0
	}
	if y == 0 {
		return 0
	}
	gfInitTables()
	diff := int(gfLogTable[x]) - int(gfLogTable[y]) + gfGroupSize
	return uint16(gfIlogTable[diff])
}

// gfInverse returns the multiplicative inverse of a non-zero GF(2^16)
// element.
func gfInverse(x uint16) uint16 {
	return gfDiv(1, x)
}
