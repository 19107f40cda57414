package libec

// rsVandermondeBackend wraps rsVandermondeKernel to satisfy the Backend
// trait surface, Component I. Kept as a thin adapter so the kernel itself
// stays free of EcArgs/BackendDescriptor plumbing.
type rsVandermondeBackend struct {
	kernel *rsVandermondeKernel
}

func newRSVandermondeBackendInstance(args EcArgs) (Backend, BackendDescriptor, error) {
	if err := args.validate(LiberasurecodeRSVand); err != nil {
		return nil, BackendDescriptor{}, err
	}
	kernel, err := newRSVandermondeKernel(args.K, args.M)
	if err != nil {
		return nil, BackendDescriptor{}, err
	}
	b := &rsVandermondeBackend{kernel: kernel}
	d := BackendDescriptor{
		ID:                   LiberasurecodeRSVand,
		Name:                 LiberasurecodeRSVand.String(),
		Version:              BackendVersion{Major: 1, Minor: 0, Rev: 0},
		FragmentMetadataSize: 0,
		IsSystematic:         true,
	}
	return b, d, nil
}

func (b *rsVandermondeBackend) Encode(data, parity [][]byte, blocksize int) error {
	return b.kernel.encode(data, parity)
}

func (b *rsVandermondeBackend) Decode(data, parity [][]byte, missing []int, blocksize int, rebuildParity bool) error {
	return b.kernel.decode(data, parity, missing, rebuildParity)
}

func (b *rsVandermondeBackend) Reconstruct(data, parity [][]byte, missing []int, destIdx int, blocksize int) error {
	return b.kernel.reconstruct(data, parity, missing, destIdx)
}

func (b *rsVandermondeBackend) MinFragments(target int, excluded map[int]bool) ([]int, error) {
	return b.kernel.fragmentsNeeded(target, excluded)
}

func (b *rsVandermondeBackend) ElementSize() int { return b.kernel.elementSize() }

func (b *rsVandermondeBackend) IsCompatibleWith(version BackendVersion) bool {
	return version.Major == 1
}
