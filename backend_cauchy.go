package libec

import (
	"github.com/klauspost/reedsolomon"

	"github.com/pkg/errors"
)

// cauchyBackend wraps github.com/klauspost/reedsolomon with a Cauchy
// generator matrix, Component I's GF(2^8) backend — grounded on
// vendor/github.com/xtaci/kcp-go/v5/fec.go's reedsolomon.New/.Encode/
// .ReconstructData usage, the same library the teacher already vendors for
// its own FEC layer.
type cauchyBackend struct {
	k, m  int
	codec reedsolomon.Encoder
}

func newCauchyBackendInstance(args EcArgs) (Backend, BackendDescriptor, error) {
	if err := args.validate(JerasureRSCauchy); err != nil {
		return nil, BackendDescriptor{}, err
	}
	codec, err := reedsolomon.New(args.K, args.M, reedsolomon.WithCauchyMatrix())
	if err != nil {
		return nil, BackendDescriptor{}, errors.Wrap(ErrBackendInitError, err.Error())
	}
	b := &cauchyBackend{k: args.K, m: args.M, codec: codec}
	d := BackendDescriptor{
		ID:                   JerasureRSCauchy,
		Name:                 JerasureRSCauchy.String(),
		Version:              BackendVersion{Major: 1, Minor: 0, Rev: 0},
		FragmentMetadataSize: 0,
		IsSystematic:         true,
	}
	return b, d, nil
}

func (b *cauchyBackend) shards(data, parity [][]byte) [][]byte {
	shards := make([][]byte, b.k+b.m)
	copy(shards, data)
	copy(shards[b.k:], parity)
	return shards
}

func (b *cauchyBackend) Encode(data, parity [][]byte, blocksize int) error {
	return b.codec.Encode(b.shards(data, parity))
}

func (b *cauchyBackend) Decode(data, parity [][]byte, missing []int, blocksize int, rebuildParity bool) error {
	shards := b.shards(data, parity)
	// reedsolomon.Reconstruct/ReconstructData signal "missing" by a nil or
	// zero-length shard; slicing to [:0] keeps each buffer's backing array
	// (and the caller's original slice header pointing at blocksize bytes)
	// so the library writes the recovered content straight back in place.
	for _, idx := range missing {
		shards[idx] = shards[idx][:0]
	}
	if rebuildParity {
		if err := b.codec.Reconstruct(shards); err != nil {
			return errors.Wrap(ErrInsufficientFragments, err.Error())
		}
		return nil
	}
	if err := b.codec.ReconstructData(shards); err != nil {
		return errors.Wrap(ErrInsufficientFragments, err.Error())
	}
	return nil
}

func (b *cauchyBackend) Reconstruct(data, parity [][]byte, missing []int, destIdx int, blocksize int) error {
	return b.Decode(data, parity, missing, blocksize, destIdx >= b.k)
}

func (b *cauchyBackend) MinFragments(target int, excluded map[int]bool) ([]int, error) {
	n := b.k + b.m
	needed := make([]int, 0, b.k)
	for i := 0; i < n && len(needed) < b.k; i++ {
		if i == target || excluded[i] {
			continue
		}
		needed = append(needed, i)
	}
	if len(needed) < b.k {
		return nil, errors.Wrap(ErrInsufficientFragments, "fewer than k fragments available to plan reconstruction")
	}
	return needed, nil
}

func (b *cauchyBackend) ElementSize() int { return 8 }

func (b *cauchyBackend) IsCompatibleWith(version BackendVersion) bool {
	return version.Major == 1
}
