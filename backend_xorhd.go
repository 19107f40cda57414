package libec

// xorHDBackend wraps xorHDKernel to satisfy the Backend trait surface.
type xorHDBackend struct {
	kernel *xorHDKernel
}

func newXORHDBackendInstance(args EcArgs) (Backend, BackendDescriptor, error) {
	if err := args.validate(FlatXORHD); err != nil {
		return nil, BackendDescriptor{}, err
	}
	kernel, err := newXORHDKernel(args.K, args.M, args.HD)
	if err != nil {
		return nil, BackendDescriptor{}, err
	}
	b := &xorHDBackend{kernel: kernel}
	d := BackendDescriptor{
		ID:                   FlatXORHD,
		Name:                 FlatXORHD.String(),
		Version:              BackendVersion{Major: 1, Minor: 0, Rev: 0},
		FragmentMetadataSize: 0,
		IsSystematic:         true,
	}
	return b, d, nil
}

func (b *xorHDBackend) Encode(data, parity [][]byte, blocksize int) error {
	return b.kernel.encode(data, parity)
}

func (b *xorHDBackend) Decode(data, parity [][]byte, missing []int, blocksize int, rebuildParity bool) error {
	return b.kernel.decode(data, parity, missing, rebuildParity)
}

// Reconstruct rebuilds just destIdx, but must still tell the kernel about
// every other missing fragment in the stripe: connectedParity's classifier
// needs the full missing set to avoid choosing a parity that also covers an
// unrecovered data shard. rebuildParity is set only when destIdx itself is a
// parity slot; every missing parity is then recomputed along with it, and
// missing parities are left alone when destIdx is a data slot.
func (b *xorHDBackend) Reconstruct(data, parity [][]byte, missing []int, destIdx int, blocksize int) error {
	return b.kernel.decode(data, parity, missing, destIdx >= b.kernel.k)
}

func (b *xorHDBackend) MinFragments(target int, excluded map[int]bool) ([]int, error) {
	return b.kernel.fragmentsNeeded(target, excluded)
}

func (b *xorHDBackend) ElementSize() int { return b.kernel.elementSize() }

func (b *xorHDBackend) IsCompatibleWith(version BackendVersion) bool {
	return version.Major == 1
}
