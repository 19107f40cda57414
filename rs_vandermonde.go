package libec

import (
	"github.com/pkg/errors"
	"github.com/templexxx/xorsimd"
)

// gfMatrix is a dense rows x cols matrix over GF(2^16), stored row-major.
// Grounded on original_source/src/builtin/rs_vand/liberasurecode_rs_vand.c's
// flat int* matrix representation.
type gfMatrix struct {
	rows, cols int
	data       []uint16
}

func newGFMatrix(rows, cols int) *gfMatrix {
	return &gfMatrix{rows: rows, cols: cols, data: make([]uint16, rows*cols)}
}

func (m *gfMatrix) at(r, c int) uint16      { return m.data[r*m.cols+c] }
func (m *gfMatrix) set(r, c int, v uint16)  { m.data[r*m.cols+c] = v }
func (m *gfMatrix) row(r int) []uint16      { return m.data[r*m.cols : (r+1)*m.cols] }

func (m *gfMatrix) swapRows(a, b int) {
	if a == b {
		return
	}
	ra, rb := m.row(a), m.row(b)
	for i := range ra {
		ra[i], rb[i] = rb[i], ra[i]
	}
}

func (m *gfMatrix) scaleRow(r int, c uint16) {
	row := m.row(r)
	for i := range row {
		row[i] = gfMul(row[i], c)
	}
}

func (m *gfMatrix) scaleCol(c int, v uint16) {
	for r := 0; r < m.rows; r++ {
		idx := r*m.cols + c
		m.data[idx] = gfMul(m.data[idx], v)
	}
}

// addRowMultiple does to += from*c, row-wise.
func (m *gfMatrix) addRowMultiple(from, to int, c uint16) {
	fr, tr := m.row(from), m.row(to)
	for i := range tr {
		tr[i] ^= gfMul(fr[i], c)
	}
}

// addColMultiple does to_col += from_col*c, column-wise.
func (m *gfMatrix) addColMultiple(fromCol, toCol int, c uint16) {
	for r := 0; r < m.rows; r++ {
		fi := r*m.cols + fromCol
		ti := r*m.cols + toCol
		m.data[ti] ^= gfMul(m.data[fi], c)
	}
}

// buildVandermonde constructs the (k+m)xk non-systematic Vandermonde
// matrix of §4.2 step 1: V[i][j] = i^j in GF(2^16), row 0 = (1,0,...,0).
func buildVandermonde(k, m int) *gfMatrix {
	rows, cols := k+m, k
	v := newGFMatrix(rows, cols)
	v.set(0, 0, 1)
	for i := 1; i < rows; i++ {
		acc := uint16(1)
		for j := 0; j < cols; j++ {
			v.set(i, j, acc)
			acc = gfMul(acc, uint16(i))
		}
	}
	return v
}

// firstNonZeroDiagonalRowAtOrBelow scans column `col` starting at row `from`
// for a row with a non-zero entry in that column, the "lowest-numbered row
// with non-zero diagonal" pivot strategy §4.2 requires callers to assume.
func (m *gfMatrix) firstNonZeroDiagonalRowAtOrBelow(from, col int) int {
	for r := from; r < m.rows; r++ {
		if m.at(r, col) != 0 {
			return r
		}
	}
	return -1
}

// systematize turns the non-systematic Vandermonde matrix into a systematic
// generator matrix in place, following §4.2 steps 2-3 exactly.
func systematize(v *gfMatrix) error {
	k := v.cols
	for i := 0; i < k; i++ {
		pivot := v.firstNonZeroDiagonalRowAtOrBelow(i, i)
		if pivot < 0 {
			return errors.Wrap(ErrBackendInitError, "singular vandermonde matrix during systematisation")
		}
		if pivot != i {
			v.swapRows(pivot, i)
		}
		if v.at(i, i) != 1 {
			v.scaleCol(i, gfInverse(v.at(i, i)))
		}
		for j := 0; j < k; j++ {
			if j == i {
				continue
			}
			coeff := v.at(i, j)
			if coeff != 0 {
				v.addColMultiple(i, j, coeff)
			}
		}
	}

	// Normalise the first parity row (row k) into the all-ones XOR parity.
	// Only the parity rows of each column are scaled, so the top kxk block
	// stays the identity.
	for j := 0; j < k; j++ {
		coeff := v.at(k, j)
		if coeff != 1 {
			inv := gfInverse(coeff)
			for r := k; r < v.rows; r++ {
				v.set(r, j, gfMul(v.at(r, j), inv))
			}
		}
	}
	return nil
}

// buildGeneratorMatrix builds the systematic (k+m)xk generator matrix, §4.2.
func buildGeneratorMatrix(k, m int) (*gfMatrix, error) {
	v := buildVandermonde(k, m)
	if err := systematize(v); err != nil {
		return nil, err
	}
	return v, nil
}

// invertGF inverts an nxn matrix in GF(2^16) via Gauss-Jordan elimination,
// §4.2 step 5. Grounded on
// original_source/.../liberasurecode_rs_vand.c's gaussj_inversion: identity
// tracked in a parallel matrix, pivot is "lowest row with non-zero
// diagonal", row-swap + row-scale + row-add-multiple.
func invertGF(m *gfMatrix) (*gfMatrix, error) {
	n := m.rows
	work := newGFMatrix(n, n)
	copy(work.data, m.data)
	inv := newGFMatrix(n, n)
	for i := 0; i < n; i++ {
		inv.set(i, i, 1)
	}

	for i := 0; i < n; i++ {
		pivot := work.firstNonZeroDiagonalRowAtOrBelow(i, i)
		if pivot < 0 {
			return nil, errors.Wrap(ErrInsufficientFragments, "singular decoding matrix")
		}
		if pivot != i {
			work.swapRows(pivot, i)
			inv.swapRows(pivot, i)
		}
		diag := work.at(i, i)
		if diag != 1 {
			invDiag := gfInverse(diag)
			work.scaleRow(i, invDiag)
			inv.scaleRow(i, invDiag)
		}
		for j := 0; j < n; j++ {
			if j == i {
				continue
			}
			v := work.at(j, i)
			if v != 0 {
				work.addRowMultiple(i, j, v)
				inv.addRowMultiple(i, j, v)
			}
		}
	}
	return inv, nil
}

// regionXOR XORs src into dst in place, the fast path for a generator
// coefficient of 1 (§4.2 region_xor). Delegates to templexxx/xorsimd's SIMD
// XOR the way its own Encode helper folds sources into a destination.
func regionXOR(dst, src []byte) {
	xorsimd.Encode(dst, [][]byte{dst, src})
}

// regionMultiplyXOR computes dst ^= src*c over GF(2^16), 16-bit word at a
// time with a single-byte tail, §4.2 region_multiply(..., xor=1).
func regionMultiplyXOR(dst, src []byte, c uint16) {
	n := len(dst)
	words := n / 2
	for i := 0; i < words; i++ {
		s := uint16(src[2*i])<<8 | uint16(src[2*i+1])
		d := uint16(dst[2*i])<<8 | uint16(dst[2*i+1])
		d ^= gfMul(s, c)
		dst[2*i] = byte(d >> 8)
		dst[2*i+1] = byte(d)
	}
	if n%2 == 1 {
		i := n - 1
		dst[i] ^= byte(gfMul(uint16(src[i]), c))
	}
}

// regionDotProduct computes dst = sum_i row[i]*srcs[i] over GF(2^16),
// §4.2 region_dot_product: zero dst, then XOR or multiply-XOR each entry.
func regionDotProduct(srcs [][]byte, dst []byte, row []uint16) {
	for i := range dst {
		dst[i] = 0
	}
	for i, coeff := range row {
		if coeff == 0 {
			continue
		}
		if coeff == 1 {
			regionXOR(dst, srcs[i])
		} else {
			regionMultiplyXOR(dst, srcs[i], coeff)
		}
	}
}

// rsVandermondeKernel implements the systematic Vandermonde RS kernel,
// Component B, over GF(2^16) (w=16 fixed, §4.2).
type rsVandermondeKernel struct {
	k, m int
	gen  *gfMatrix // (k+m) x k systematic generator matrix
}

func newRSVandermondeKernel(k, m int) (*rsVandermondeKernel, error) {
	gen, err := buildGeneratorMatrix(k, m)
	if err != nil {
		return nil, err
	}
	return &rsVandermondeKernel{k: k, m: m, gen: gen}, nil
}

// encode fills each of the m parity shards as the GF-dot-product of the k
// data shards with generator row k+p, §4.2 Encode.
func (rs *rsVandermondeKernel) encode(data, parity [][]byte) error {
	for p := 0; p < rs.m; p++ {
		regionDotProduct(data, parity[p], rs.gen.row(rs.k+p))
	}
	return nil
}

// survivorSet picks the first k available indices (by index order) out of
// k+m, §4.2 Decode step 3.
func survivorSet(missing map[int]bool, k, m int) []int {
	survivors := make([]int, 0, k)
	for i := 0; i < k+m && len(survivors) < k; i++ {
		if !missing[i] {
			survivors = append(survivors, i)
		}
	}
	return survivors
}

// decodingMatrix builds the kxk matrix of generator rows at the survivor
// indices, §4.2 step 4.
func (rs *rsVandermondeKernel) decodingMatrix(survivors []int) *gfMatrix {
	dm := newGFMatrix(rs.k, rs.k)
	for i, s := range survivors {
		copy(dm.row(i), rs.gen.row(s))
	}
	return dm
}

// shardAt returns the shard buffer for stripe index idx, 0..k-1 in data,
// k..k+m-1 in parity.
func shardAt(data, parity [][]byte, idx, k int) []byte {
	if idx < k {
		return data[idx]
	}
	return parity[idx-k]
}

// decode recovers missing data shards (and, if rebuildParity, missing
// parity shards) in place, §4.2 Decode.
func (rs *rsVandermondeKernel) decode(data, parity [][]byte, missingIdx []int, rebuildParity bool) error {
	missing := make(map[int]bool, len(missingIdx))
	for _, idx := range missingIdx {
		missing[idx] = true
	}
	if len(missing) > rs.m {
		return errors.Wrap(ErrInsufficientFragments, "more than m fragments missing")
	}

	survivors := survivorSet(missing, rs.k, rs.m)
	if len(survivors) < rs.k {
		return errors.Wrap(ErrInsufficientFragments, "fewer than k fragments survived")
	}

	dm := rs.decodingMatrix(survivors)
	inv, err := invertGF(dm)
	if err != nil {
		return err
	}

	survivorBufs := make([][]byte, rs.k)
	for i, s := range survivors {
		survivorBufs[i] = shardAt(data, parity, s, rs.k)
	}

	for i := 0; i < rs.k; i++ {
		if !missing[i] {
			continue
		}
		regionDotProduct(survivorBufs, data[i], inv.row(i))
	}

	if rebuildParity {
		for p := 0; p < rs.m; p++ {
			idx := rs.k + p
			if !missing[idx] {
				continue
			}
			regionDotProduct(data, parity[p], rs.gen.row(idx))
		}
	}
	return nil
}

// reconstruct recovers a single shard at targetIdx, §4.2 Reconstruct.
func (rs *rsVandermondeKernel) reconstruct(data, parity [][]byte, missingIdx []int, targetIdx int) error {
	missing := make(map[int]bool, len(missingIdx))
	for _, idx := range missingIdx {
		missing[idx] = true
	}
	if len(missing) > rs.m {
		return errors.Wrap(ErrInsufficientFragments, "more than m fragments missing")
	}

	survivors := survivorSet(missing, rs.k, rs.m)
	if len(survivors) < rs.k {
		return errors.Wrap(ErrInsufficientFragments, "fewer than k fragments survived")
	}

	dm := rs.decodingMatrix(survivors)
	inv, err := invertGF(dm)
	if err != nil {
		return err
	}

	survivorBufs := make([][]byte, rs.k)
	for i, s := range survivors {
		survivorBufs[i] = shardAt(data, parity, s, rs.k)
	}

	dst := shardAt(data, parity, targetIdx, rs.k)

	if targetIdx < rs.k {
		regionDotProduct(survivorBufs, dst, inv.row(targetIdx))
		return nil
	}

	// Target is parity: substitute a row from the generator's coefficients
	// at surviving data positions, folding in each missing data index's
	// contribution through the inverted decoding matrix, §4.2 Reconstruct.
	// substituted is indexed by SURVIVOR POSITION throughout, matching
	// survivorBufs' order, since inv's rows are already in that space
	// (inv.row(j)[s] is the coefficient applied to survivor s to recover
	// data shard j).
	posOfSurvivor := make(map[int]int, rs.k)
	for i, s := range survivors {
		posOfSurvivor[s] = i
	}

	genRow := rs.gen.row(targetIdx)
	substituted := make([]uint16, rs.k)
	for j := 0; j < rs.k; j++ {
		if missing[j] {
			continue
		}
		if pos, ok := posOfSurvivor[j]; ok {
			substituted[pos] = genRow[j]
		}
	}
	for j := 0; j < rs.k; j++ {
		if !missing[j] {
			continue
		}
		coeff := genRow[j]
		if coeff == 0 {
			continue
		}
		invRow := inv.row(j)
		for s := range substituted {
			substituted[s] ^= gfMul(coeff, invRow[s])
		}
	}

	regionDotProduct(survivorBufs, dst, substituted)
	return nil
}

// elementSize reports the GF width in bits, Backend Trait Surface §4.8.
func (rs *rsVandermondeKernel) elementSize() int { return 16 }

// fragmentsNeeded returns any k surviving fragments other than target and
// excluded — every systematic-RS MDS reconstruction uses exactly k shards
// regardless of which ones they are, §4.2's fragments_needed.
func (rs *rsVandermondeKernel) fragmentsNeeded(target int, excluded map[int]bool) ([]int, error) {
	n := rs.k + rs.m
	needed := make([]int, 0, rs.k)
	for i := 0; i < n && len(needed) < rs.k; i++ {
		if i == target || excluded[i] {
			continue
		}
		needed = append(needed, i)
	}
	if len(needed) < rs.k {
		return nil, errors.Wrap(ErrInsufficientFragments, "fewer than k fragments available to plan reconstruction")
	}
	return needed, nil
}
