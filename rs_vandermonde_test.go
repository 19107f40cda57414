package libec

import (
	"bytes"
	"testing"
)

func makeShards(k, m, blocksize int, fill func(i int) byte) (data, parity [][]byte) {
	data = make([][]byte, k)
	for i := range data {
		data[i] = make([]byte, blocksize)
		for j := range data[i] {
			data[i][j] = fill(i)
		}
	}
	parity = make([][]byte, m)
	for i := range parity {
		parity[i] = make([]byte, blocksize)
	}
	return data, parity
}

func TestRSVandermondeEncodeDecodeRoundTrip(t *testing.T) {
	const k, m, blocksize = 10, 4, 128
	kernel, err := newRSVandermondeKernel(k, m)
	if err != nil {
		t.Fatalf("newRSVandermondeKernel: %v", err)
	}

	data, parity := makeShards(k, m, blocksize, func(i int) byte { return byte(0x78 + i) })
	original := make([][]byte, k)
	for i := range data {
		original[i] = append([]byte(nil), data[i]...)
	}

	if err := kernel.encode(data, parity); err != nil {
		t.Fatalf("encode: %v", err)
	}

	missing := []int{3, 7, 11}
	for _, idx := range missing {
		if idx < k {
			for i := range data[idx] {
				data[idx][i] = 0
			}
		} else {
			for i := range parity[idx-k] {
				parity[idx-k][i] = 0
			}
		}
	}

	if err := kernel.decode(data, parity, missing, true); err != nil {
		t.Fatalf("decode: %v", err)
	}

	for i := 0; i < k; i++ {
		if !bytes.Equal(data[i], original[i]) {
			t.Fatalf("data shard %d mismatch after decode", i)
		}
	}
}

func TestRSVandermondeReconstructEachIndex(t *testing.T) {
	const k, m, blocksize = 10, 4, 64
	kernel, err := newRSVandermondeKernel(k, m)
	if err != nil {
		t.Fatalf("newRSVandermondeKernel: %v", err)
	}

	data, parity := makeShards(k, m, blocksize, func(i int) byte { return byte(17*i + 5) })
	if err := kernel.encode(data, parity); err != nil {
		t.Fatalf("encode: %v", err)
	}

	originals := make([][]byte, k+m)
	for i := 0; i < k; i++ {
		originals[i] = append([]byte(nil), data[i]...)
	}
	for i := 0; i < m; i++ {
		originals[k+i] = append([]byte(nil), parity[i]...)
	}

	for target := 0; target < k+m; target++ {
		d2 := make([][]byte, k)
		p2 := make([][]byte, m)
		for i := range d2 {
			d2[i] = append([]byte(nil), data[i]...)
		}
		for i := range p2 {
			p2[i] = append([]byte(nil), parity[i]...)
		}

		var dst []byte
		if target < k {
			for i := range d2[target] {
				d2[target][i] = 0
			}
			dst = d2[target]
		} else {
			for i := range p2[target-k] {
				p2[target-k][i] = 0
			}
			dst = p2[target-k]
		}

		if err := kernel.reconstruct(d2, p2, []int{target}, target); err != nil {
			t.Fatalf("reconstruct(target=%d): %v", target, err)
		}
		if !bytes.Equal(dst, originals[target]) {
			t.Fatalf("reconstruct(target=%d) produced mismatched bytes", target)
		}
	}
}

func TestRSVandermondeInsufficientFragments(t *testing.T) {
	const k, m, blocksize = 6, 3, 32
	kernel, err := newRSVandermondeKernel(k, m)
	if err != nil {
		t.Fatalf("newRSVandermondeKernel: %v", err)
	}
	data, parity := makeShards(k, m, blocksize, func(i int) byte { return byte(i) })
	if err := kernel.encode(data, parity); err != nil {
		t.Fatalf("encode: %v", err)
	}

	missing := []int{0, 1, 2, 3}
	if err := kernel.decode(data, parity, missing, false); err == nil {
		t.Fatalf("decode with m+1 missing fragments should fail")
	}
}

func TestRSVandermondeSystematic(t *testing.T) {
	const k, m, blocksize = 8, 4, 32
	kernel, err := newRSVandermondeKernel(k, m)
	if err != nil {
		t.Fatalf("newRSVandermondeKernel: %v", err)
	}
	data, parity := makeShards(k, m, blocksize, func(i int) byte { return byte(100 + i) })
	original := make([][]byte, k)
	for i := range data {
		original[i] = append([]byte(nil), data[i]...)
	}
	if err := kernel.encode(data, parity); err != nil {
		t.Fatalf("encode: %v", err)
	}
	for i := 0; i < k; i++ {
		if !bytes.Equal(data[i], original[i]) {
			t.Fatalf("systematic property violated at data shard %d", i)
		}
	}
}

func TestGFMatrixInversionIdentity(t *testing.T) {
	n := 5
	m := newGFMatrix(n, n)
	for i := 0; i < n; i++ {
		m.set(i, i, 1)
	}
	inv, err := invertGF(m)
	if err != nil {
		t.Fatalf("invertGF: %v", err)
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			want := uint16(0)
			if i == j {
				want = 1
			}
			if inv.at(i, j) != want {
				t.Fatalf("inverse of identity at (%d,%d) = %d, want %d", i, j, inv.at(i, j), want)
			}
		}
	}
}
