package libec

import (
	"github.com/pkg/errors"
)

// cauchyPacketBytes mirrors jerasure_rs_cauchy.c's
// PYECC_CAUCHY_PACKETSIZE = sizeof(long) * 128 on a 64-bit build.
const cauchyPacketBytes = 8 * 128

// alignmentMultiple computes §4.4's alignment_multiple: for Cauchy codes,
// k*w*packet_bytes; otherwise k*(w/8).
func alignmentMultiple(k, w int, cauchy bool) int {
	if cauchy {
		return k * w * cauchyPacketBytes
	}
	wordSize := w / 8
	if wordSize < 1 {
		wordSize = 1
	}
	return k * wordSize
}

// alignedLen rounds orig_data_size up to the nearest multiple of
// alignment_multiple, §4.4.
func alignedLen(origDataSize uint64, alignMultiple int) uint64 {
	am := uint64(alignMultiple)
	if am == 0 {
		return origDataSize
	}
	if origDataSize == 0 {
		return am
	}
	n := (origDataSize + am - 1) / am
	return n * am
}

// prepareForEncode implements §4.4 prepare_for_encode: compute the aligned
// blocksize and allocate k+m fragment buffers, each with a reserved
// headerSize prefix and backendMetaSize trailer, the payload split evenly
// across the k data buffers and zero-padded at the tail.
func prepareForEncode(origData []byte, k, m, w int, cauchy bool, backendMetaSize int) (dataFrags, parityFrags []Fragment, blocksize int) {
	origDataSize := uint64(len(origData))
	am := alignmentMultiple(k, w, cauchy)
	aligned := alignedLen(origDataSize, am)
	blocksize = int(aligned) / k

	dataFrags = make([]Fragment, k)
	parityFrags = make([]Fragment, m)

	fragSize := headerSize + blocksize + backendMetaSize
	for i := 0; i < k; i++ {
		dataFrags[i] = make(Fragment, fragSize)
	}
	for i := 0; i < m; i++ {
		parityFrags[i] = make(Fragment, fragSize)
	}

	var off int
	for i := 0; i < k; i++ {
		dst := dataFrags[i][headerSize : headerSize+blocksize]
		n := copy(dst, origData[min(off, len(origData)):])
		for j := n; j < blocksize; j++ {
			dst[j] = 0
		}
		off += blocksize
	}
	return dataFrags, parityFrags, blocksize
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// realloc_bitmap's Go analogue: prepareForDecode accepts a possibly sparse
// slice of k+m fragments (nil where missing) and allocates replacement
// buffers for every missing slot, sized to blocksize derived from the first
// present fragment's header, §4.4's "for every fragment, if null or
// misaligned, allocate a replacement and mark a bit so the caller frees the
// right buffers" — this port has no alignment/ownership concerns to track so
// it just returns which indices were synthesized.
func prepareForDecode(shards []Fragment, k, m int) (blocksize int, backendMetaSize int, origDataSize uint64, allocated map[int]bool, err error) {
	allocated = make(map[int]bool)
	var headerIdx = -1
	for i, f := range shards {
		if f != nil {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return 0, 0, 0, nil, errors.Wrap(ErrInsufficientFragments, "no surviving fragments to derive blocksize from")
	}
	h := shards[headerIdx].Header()
	blocksize = int(h.Meta.Size)
	backendMetaSize = int(h.Meta.FragBackendMetadataSize)
	origDataSize = h.Meta.OrigDataSize

	fragSize := headerSize + blocksize + backendMetaSize
	for i := range shards {
		if shards[i] == nil {
			shards[i] = make(Fragment, fragSize)
			allocated[i] = true
		}
	}
	return blocksize, backendMetaSize, origDataSize, allocated, nil
}

// partition implements §4.4 partition: place fragments into their (data,
// parity) slots by idx and report which indices are missing. More than m
// missing is an error.
func partition(fragments []Fragment, k, m int) (data, parity []Fragment, missing []int, err error) {
	data = make([]Fragment, k)
	parity = make([]Fragment, m)
	present := make([]bool, k+m)

	for _, f := range fragments {
		if f == nil {
			continue
		}
		idx := int(f.Header().Meta.Idx)
		if idx < 0 || idx >= k+m {
			continue
		}
		if idx < k {
			data[idx] = f
		} else {
			parity[idx-k] = f
		}
		present[idx] = true
	}

	for i := 0; i < k+m; i++ {
		if !present[i] {
			missing = append(missing, i)
		}
	}
	if len(missing) > m {
		return nil, nil, nil, errors.Wrap(ErrInsufficientFragments, "more fragments missing than the code can tolerate")
	}
	return data, parity, missing, nil
}

// fragmentsToString implements §4.4 fragments_to_string: gather the k data
// fragments in index order, validating and deduplicating by idx (§9(c): "dedup
// by index rather than by pointer equality" — a deliberate fix of the
// original's dedup-by-pointer bug), and concatenate their payload prefixes,
// truncated to origDataSize.
func fragmentsToString(fragments []Fragment, k int, origDataSize uint64) ([]byte, error) {
	seen := make([]bool, k)
	ordered := make([]Fragment, k)

	for _, f := range fragments {
		if f == nil {
			continue
		}
		if validate(f) != valOK {
			continue
		}
		idx := int(f.Header().Meta.Idx)
		if idx < 0 || idx >= k {
			continue
		}
		if seen[idx] {
			continue
		}
		seen[idx] = true
		ordered[idx] = f
	}

	for i := 0; i < k; i++ {
		if !seen[i] {
			return nil, errors.Wrapf(ErrInsufficientFragments, "data fragment %d missing or invalid", i)
		}
	}

	out := make([]byte, origDataSize)
	var off uint64
	for i := 0; i < k; i++ {
		payload := ordered[i].PayloadData()
		remaining := origDataSize - off
		n := uint64(len(payload))
		if n > remaining {
			n = remaining
		}
		copy(out[off:off+n], payload[:n])
		off += n
		if off >= origDataSize {
			break
		}
	}
	return out, nil
}
