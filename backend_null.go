package libec

// nullBackend is a no-op passthrough coding kernel: Encode and Decode leave
// shard contents untouched and never fail. Useful for exercising the
// frontend/pre/postprocessing pipeline without real coding math, §1 scope
// ("a null backend for pipeline testing").
type nullBackend struct {
	k, m int
}

func newNullBackendInstance(args EcArgs) (Backend, BackendDescriptor, error) {
	if err := args.validate(NullBackend); err != nil {
		return nil, BackendDescriptor{}, err
	}
	b := &nullBackend{k: args.K, m: args.M}
	d := BackendDescriptor{
		ID:                   NullBackend,
		Name:                 NullBackend.String(),
		Version:              BackendVersion{Major: 1, Minor: 0, Rev: 0},
		FragmentMetadataSize: 0,
		IsSystematic:         true,
	}
	return b, d, nil
}

func (b *nullBackend) Encode(data, parity [][]byte, blocksize int) error { return nil }

func (b *nullBackend) Decode(data, parity [][]byte, missing []int, blocksize int, rebuildParity bool) error {
	return nil
}

func (b *nullBackend) Reconstruct(data, parity [][]byte, missing []int, destIdx int, blocksize int) error {
	return nil
}

func (b *nullBackend) MinFragments(target int, excluded map[int]bool) ([]int, error) {
	n := b.k + b.m
	needed := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i == target || excluded[i] {
			continue
		}
		needed = append(needed, i)
	}
	return needed, nil
}

func (b *nullBackend) ElementSize() int { return 8 }

func (b *nullBackend) IsCompatibleWith(version BackendVersion) bool { return true }
