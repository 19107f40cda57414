package libec

import (
	"github.com/pkg/errors"
	"github.com/templexxx/xorsimd"
)

// xorHDKernel implements the flat XOR-HD code, Component C, §4.3: a dual
// pair of bitmap tables (parityBMs/dataBMs) drives both encode and a
// reconstruction planner over failure patterns.
type xorHDKernel struct {
	k, m, hd  int
	parityBMs []uint32 // parityBMs[p]: bitmap over k data bits covered by parity p
	dataBMs   []uint32 // dataBMs[d]: bitmap over m parity bits covering data d
}

func newXORHDKernel(k, m, hd int) (*xorHDKernel, error) {
	parityBMs, dataBMs, ok := xorHDTable(k, m, hd)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidParams, "no pre-tabulated xor-hd code for k=%d m=%d hd=%d", k, m, hd)
	}
	return &xorHDKernel{k: k, m: m, hd: hd, parityBMs: parityBMs, dataBMs: dataBMs}, nil
}

func bitmapOf(idxs map[int]bool) uint32 {
	var bm uint32
	for i, set := range idxs {
		if set {
			bm |= 1 << uint(i)
		}
	}
	return bm
}

// encode computes every parity shard as the XOR of the data shards its
// bitmap covers, §4.3 Encode. Uses templexxx/xorsimd's multi-source Encode
// the same way the RS kernel's region_xor fast path does.
func (x *xorHDKernel) encode(data, parity [][]byte) error {
	for p := 0; p < x.m; p++ {
		x.computeParity(data, parity, p)
	}
	return nil
}

// computeParity recomputes parity shard p from scratch as the XOR of the
// data shards its bitmap covers; used by both Encode and the "Missing
// parity" decode case (§4.3: "recomputed by re-XORing the data bits
// indicated by parity_bms[p] — selective encode").
func (x *xorHDKernel) computeParity(data, parity [][]byte, p int) {
	srcs := make([][]byte, 0, x.k)
	for d := 0; d < x.k; d++ {
		if x.parityBMs[p]&(1<<uint(d)) != 0 {
			srcs = append(srcs, data[d])
		}
	}
	for i := range parity[p] {
		parity[p][i] = 0
	}
	if len(srcs) > 0 {
		xorsimd.Encode(parity[p], srcs)
	}
}

// connectedParity finds a surviving parity that covers dataIdx and no other
// currently-missing data bit, §4.3's "connected surviving parity".
// missingDataBM/missingParityBM may include fragments the caller has
// excluded from consideration as well as genuinely lost fragments — the
// planner and the decoder share this helper.
func (x *xorHDKernel) connectedParity(dataIdx int, missingDataBM, missingParityBM uint32) (int, bool) {
	covering := x.dataBMs[dataIdx]
	for p := 0; p < x.m; p++ {
		if covering&(1<<uint(p)) == 0 {
			continue
		}
		if missingParityBM&(1<<uint(p)) != 0 {
			continue
		}
		if x.parityBMs[p]&missingDataBM == uint32(1)<<uint(dataIdx) {
			return p, true
		}
	}
	return -1, false
}

// recoverFromBitmap sets data[target] = src XOR (XOR of every other data
// shard the bitmap covers); src is either a real parity shard's payload or
// a synthetic P xor Q buffer (§4.3's 3D0P fallback).
func (x *xorHDKernel) recoverFromBitmap(data [][]byte, target int, src []byte, bitmap uint32) {
	copy(data[target], src)
	for d := 0; d < x.k; d++ {
		if d == target {
			continue
		}
		if bitmap&(1<<uint(d)) != 0 {
			regionXOR(data[target], data[d])
		}
	}
}

// decodeData recovers every missing data shard named in missing, §4.3
// Decode strategy by pattern (nDmP with n<=3). missingParityBM marks parity
// shards that are also absent (still usable as a "0P" subcase check so
// decodeData never reaches for an absent parity).
func (x *xorHDKernel) decodeData(data, parity [][]byte, missing map[int]bool, missingParityBM uint32) error {
	for len(missing) > 0 {
		progressed := false
		for d := range missing {
			bm := bitmapOf(missing)
			if p, ok := x.connectedParity(d, bm, missingParityBM); ok {
				x.recoverFromBitmap(data, d, parity[p], x.parityBMs[p])
				delete(missing, d)
				progressed = true
				break
			}
		}
		if progressed {
			continue
		}
		if len(missing) == 3 && x.tryThreeDataSynthetic(data, parity, missing, missingParityBM) {
			continue
		}
		return errors.Wrap(ErrInsufficientFragments, "xor-hd pattern classified >= hd, no connected parity available")
	}
	return nil
}

// tryThreeDataSynthetic implements §4.3's 3D0P fallback: find parity pair
// (P, Q) where P covers exactly 2 and Q covers exactly 3 of the missing
// data, compute P^Q (which covers exactly 1), and recover that one data
// shard using the synthetic buffer as a stand-in parity.
func (x *xorHDKernel) tryThreeDataSynthetic(data, parity [][]byte, missing map[int]bool, missingParityBM uint32) bool {
	missingBM := bitmapOf(missing)
	for p := 0; p < x.m; p++ {
		if missingParityBM&(1<<uint(p)) != 0 {
			continue
		}
		coverP := popcount32(x.parityBMs[p] & missingBM)
		if coverP != 2 {
			continue
		}
		for q := 0; q < x.m; q++ {
			if q == p || missingParityBM&(1<<uint(q)) != 0 {
				continue
			}
			coverQ := popcount32(x.parityBMs[q] & missingBM)
			if coverQ != 3 {
				continue
			}
			synthBitmap := x.parityBMs[p] ^ x.parityBMs[q]
			synthMissing := synthBitmap & missingBM
			if popcount32(synthMissing) != 1 {
				continue
			}
			target := lowestSetBit(synthMissing)

			syn := make([]byte, len(parity[p]))
			copy(syn, parity[p])
			regionXOR(syn, parity[q])

			x.recoverFromBitmap(data, target, syn, synthBitmap)
			return true
		}
	}
	return false
}

// decodeParity recomputes every missing parity shard by selective encode,
// §4.3's "Missing parity" case. Only called when the caller asked for
// parity rebuild; assumes all data shards are already present/recovered.
func (x *xorHDKernel) decodeParity(data, parity [][]byte, missingParity map[int]bool) {
	for p := range missingParity {
		x.computeParity(data, parity, p)
	}
}

// decode is the Component I entry point: classify, recover data, optionally
// rebuild parity.
func (x *xorHDKernel) decode(data, parity [][]byte, missingIdx []int, rebuildParity bool) error {
	missingData := make(map[int]bool)
	missingParity := make(map[int]bool)
	for _, idx := range missingIdx {
		if idx < x.k {
			missingData[idx] = true
		} else {
			missingParity[idx-x.k] = true
		}
	}
	if len(missingData)+len(missingParity) > x.hd-1 {
		return errors.Wrap(ErrInsufficientFragments, "xor-hd failure pattern exceeds hd-1")
	}

	missingParityBM := bitmapOf(missingParity)
	if err := x.decodeData(data, parity, missingData, missingParityBM); err != nil {
		return err
	}
	if rebuildParity && len(missingParity) > 0 {
		x.decodeParity(data, parity, missingParity)
	}
	return nil
}

// fragmentsNeeded is the reconstruction planner, §4.3: given a target and a
// set of excluded fragments, return the minimum shard list to reconstruct
// the target. Falls back to the full surviving set when no single
// connected parity serves, §9(c)'s "avoid leaking ownership" note doesn't
// apply here since this only returns index lists, not buffers.
func (x *xorHDKernel) fragmentsNeeded(target int, excluded map[int]bool) ([]int, error) {
	n := x.k + x.m
	unavailable := make(map[int]bool, len(excluded)+1)
	for idx := range excluded {
		unavailable[idx] = true
	}
	unavailable[target] = true

	missingData := make(map[int]bool)
	missingParity := make(map[int]bool)
	for idx := range unavailable {
		if idx < x.k {
			missingData[idx] = true
		} else {
			missingParity[idx-x.k] = true
		}
	}
	if len(missingData)+len(missingParity) > x.hd-1 {
		return nil, errors.Wrap(ErrInsufficientFragments, "xor-hd failure pattern exceeds hd-1")
	}

	if target < x.k {
		bmMissingData := bitmapOf(missingData)
		bmMissingParity := bitmapOf(missingParity)
		if p, ok := x.connectedParity(target, bmMissingData, bmMissingParity); ok {
			needed := []int{x.k + p}
			for d := 0; d < x.k; d++ {
				if d == target {
					continue
				}
				if x.parityBMs[p]&(1<<uint(d)) != 0 {
					needed = append(needed, d)
				}
			}
			return needed, nil
		}
	}

	needed := make([]int, 0, n-1)
	for i := 0; i < n; i++ {
		if unavailable[i] {
			continue
		}
		needed = append(needed, i)
	}
	return needed, nil
}

func popcount32(x uint32) int {
	n := 0
	for x != 0 {
		x &= x - 1
		n++
	}
	return n
}

func lowestSetBit(x uint32) int {
	for i := 0; i < 32; i++ {
		if x&(1<<uint(i)) != 0 {
			return i
		}
	}
	return -1
}

// elementSize reports the bit width XOR-HD operates on, §3: w=32.
func (x *xorHDKernel) elementSize() int { return 32 }
