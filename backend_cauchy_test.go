package libec

import (
	"bytes"
	"testing"
)

func TestCauchyBackendEncodeDecodeRoundTrip(t *testing.T) {
	const k, m = 6, 3
	w := bitLen(k + m - 1)
	backend, _, err := newCauchyBackendInstance(EcArgs{K: k, M: m, W: w})
	if err != nil {
		t.Fatalf("newCauchyBackendInstance: %v", err)
	}

	const blocksize = 128
	data, parity := makeShards(k, m, blocksize, func(i int) byte { return byte(i + 1) })
	original := make([][]byte, k)
	for i := range data {
		original[i] = append([]byte(nil), data[i]...)
	}

	if err := backend.Encode(data, parity, blocksize); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	missing := []int{0, k + 1}
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

	if err := backend.Decode(data, parity, missing, blocksize, false); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	for i := range data {
		if !bytes.Equal(data[i], original[i]) {
			t.Fatalf("data shard %d mismatch after cauchy decode", i)
		}
	}
}

func TestCauchyBackendElementSize(t *testing.T) {
	backend, _, err := newCauchyBackendInstance(EcArgs{K: 4, M: 2, W: bitLen(5)})
	if err != nil {
		t.Fatalf("newCauchyBackendInstance: %v", err)
	}
	if got := backend.ElementSize(); got != 8 {
		t.Fatalf("ElementSize() = %d, want 8", got)
	}
}
