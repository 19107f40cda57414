package libec

import (
	"sync"

	"github.com/pkg/errors"
)

// instance is a live (backend, args, descriptor) triple held by the registry.
type instance struct {
	backend    Backend
	descriptor BackendDescriptor
	args       EcArgs
}

// registry is the Frontend Dispatcher's process-wide descriptor table, §4.7:
// "a process-wide mapping from opaque integer descriptors to live instances,
// protected by a reader-writer lock; descriptors are dense positive integers
// (never zero, which signals 'unset')."
type registry struct {
	mu        sync.RWMutex
	instances map[int]*instance
	next      int
}

var globalRegistry = &registry{
	instances: make(map[int]*instance),
	next:      1,
}

func (r *registry) get(desc int) (*instance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[desc]
	if !ok {
		return nil, errors.Wrapf(ErrInvalidParams, "unknown descriptor %d", desc)
	}
	return inst, nil
}

// Create validates args, builds the named backend, and registers it under a
// fresh descriptor, §4.7 create.
func Create(id BackendID, args EcArgs) (int, error) {
	if err := args.validate(id); err != nil {
		return 0, err
	}
	factory, ok := backendFactories[id]
	if !ok {
		return 0, errors.Wrapf(ErrBackendNotSupported, "backend id %d", id)
	}
	backend, descriptor, err := factory(args)
	if err != nil {
		return 0, errors.Wrap(ErrBackendInitError, err.Error())
	}

	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	desc := globalRegistry.next
	globalRegistry.next++
	globalRegistry.instances[desc] = &instance{backend: backend, descriptor: descriptor, args: args}
	return desc, nil
}

// Destroy removes desc from the registry, §4.7 destroy. Destroying an
// unknown descriptor is ErrInvalidParams and leaves the table unchanged,
// §8's Registry invariant.
func Destroy(desc int) error {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	if _, ok := globalRegistry.instances[desc]; !ok {
		return errors.Wrapf(ErrInvalidParams, "unknown descriptor %d", desc)
	}
	delete(globalRegistry.instances, desc)
	return nil
}

func (i *instance) isCauchy() bool {
	return i.descriptor.ID == JerasureRSCauchy || i.descriptor.ID == ISALRSCauchy
}

// Encode runs the full Component G encode path: preprocess, dispatch to the
// backend, postprocess. Returns the k+m stamped fragments in index order.
func Encode(desc int, origData []byte) ([]Fragment, error) {
	inst, err := globalRegistry.get(desc)
	if err != nil {
		return nil, err
	}
	k, m, w := inst.args.K, inst.args.M, inst.args.W
	if w == 0 {
		w = 8
	}
	dataFrags, parityFrags, blocksize := prepareForEncode(origData, k, m, w, inst.isCauchy(), inst.descriptor.FragmentMetadataSize)

	data := make([][]byte, k)
	parity := make([][]byte, m)
	for i, f := range dataFrags {
		data[i] = f[headerSize : headerSize+blocksize]
	}
	for i, f := range parityFrags {
		parity[i] = f[headerSize : headerSize+blocksize]
	}

	if err := inst.backend.Encode(data, parity, blocksize); err != nil {
		return nil, err
	}

	finalizeAfterEncode(dataFrags, parityFrags, uint64(len(origData)), blocksize, inst.descriptor.FragmentMetadataSize, inst.descriptor.ID, inst.descriptor.Version, inst.args.ChksumType)

	out := make([]Fragment, 0, k+m)
	out = append(out, dataFrags...)
	out = append(out, parityFrags...)
	return out, nil
}

// verifyFragments runs header validate() over every present fragment and
// applies force_metadata_checks: a fragment that fails validation is dropped
// from the survivor set when the flag is unset, and fails the whole call when
// it is set, §7: "decode proceeds on survivors only if
// force_metadata_checks was requested" — read literally, force_metadata_checks
// makes mismatches fatal rather than ignorable, so this drops mismatched
// fragments only when force_metadata_checks is NOT set.
func verifyFragments(fragments []Fragment, force bool) ([]Fragment, error) {
	out := make([]Fragment, len(fragments))
	for i, f := range fragments {
		if f == nil {
			continue
		}
		switch validate(f) {
		case valOK:
			out[i] = f
		case valBadMagic, valBadMetadataChksum:
			if force {
				return nil, errors.Wrap(ErrBadHeader, "fragment failed header validation")
			}
			// drop: treated as missing
		case valBadPayloadChksum:
			if force {
				return nil, errors.Wrap(ErrBadChecksum, "fragment payload checksum mismatch")
			}
			// drop: treated as missing
		}
	}
	return out, nil
}

// Decode runs partition + backend Decode + fragments_to_string, recovering
// the original payload from any sufficient subset of fragments, §4.4/§4.7.
func Decode(desc int, fragments []Fragment, rebuildParity bool) ([]byte, error) {
	inst, err := globalRegistry.get(desc)
	if err != nil {
		return nil, err
	}
	k, m := inst.args.K, inst.args.M

	checked, err := verifyFragments(fragments, inst.args.ForceMetadataChecks)
	if err != nil {
		return nil, err
	}

	data, parity, missingIdx, err := partition(checked, k, m)
	if err != nil {
		return nil, err
	}

	combined := append(append([]Fragment{}, data...), parity...)
	blocksize, backendMetaSize, origDataSize, _, err := prepareForDecode(combined, k, m)
	if err != nil {
		return nil, err
	}
	data, parity = combined[:k], combined[k:]

	dataBufs := make([][]byte, k)
	parityBufs := make([][]byte, m)
	for i := range data {
		dataBufs[i] = data[i][headerSize : headerSize+blocksize]
	}
	for i := range parity {
		parityBufs[i] = parity[i][headerSize : headerSize+blocksize]
	}

	if len(missingIdx) > 0 {
		if err := inst.backend.Decode(dataBufs, parityBufs, missingIdx, blocksize, rebuildParity); err != nil {
			return nil, err
		}
		// backend.Decode only fills payload bytes; the synthesized buffers
		// prepareForDecode allocated for missing slots still carry a zeroed
		// header, which validate() in fragmentsToString would reject as
		// valBadMagic. Stamp the rebuilt data fragments so they validate.
		for _, idx := range missingIdx {
			if idx < k {
				stamp(data[idx], uint32(idx), origDataSize, uint32(blocksize), uint32(backendMetaSize), inst.descriptor.ID, inst.descriptor.Version, inst.args.ChksumType)
			}
		}
	}

	return fragmentsToString(data, k, origDataSize)
}

// ReconstructFragment recovers a single shard, §4.7 reconstruct_fragment.
func ReconstructFragment(desc int, fragments []Fragment, targetIdx int) (Fragment, error) {
	inst, err := globalRegistry.get(desc)
	if err != nil {
		return nil, err
	}
	k, m := inst.args.K, inst.args.M

	checked, err := verifyFragments(fragments, inst.args.ForceMetadataChecks)
	if err != nil {
		return nil, err
	}

	data, parity, missingIdx, err := partition(checked, k, m)
	if err != nil {
		return nil, err
	}

	combined := append(append([]Fragment{}, data...), parity...)
	blocksize, backendMetaSize, origDataSize, _, err := prepareForDecode(combined, k, m)
	if err != nil {
		return nil, err
	}
	data, parity = combined[:k], combined[k:]

	dataBufs := make([][]byte, k)
	parityBufs := make([][]byte, m)
	for i := range data {
		dataBufs[i] = data[i][headerSize : headerSize+blocksize]
	}
	for i := range parity {
		parityBufs[i] = parity[i][headerSize : headerSize+blocksize]
	}

	if err := inst.backend.Reconstruct(dataBufs, parityBufs, missingIdx, targetIdx, blocksize); err != nil {
		return nil, err
	}

	var target Fragment
	if targetIdx < k {
		target = data[targetIdx]
	} else {
		target = parity[targetIdx-k]
	}
	stamp(target, uint32(targetIdx), origDataSize, uint32(blocksize), uint32(backendMetaSize), inst.descriptor.ID, inst.descriptor.Version, inst.args.ChksumType)
	return target, nil
}

// FragmentsNeeded delegates to the backend's reconstruction planner, §4.7.
func FragmentsNeeded(desc int, targetIdx int, excluded map[int]bool) ([]int, error) {
	inst, err := globalRegistry.get(desc)
	if err != nil {
		return nil, err
	}
	return inst.backend.MinFragments(targetIdx, excluded)
}

// GetFragmentMetadata parses a fragment's header into its metadata, §3's
// supplemented get_fragment_metadata getter.
func GetFragmentMetadata(desc int, fragment Fragment) (FragmentMetadata, error) {
	if _, err := globalRegistry.get(desc); err != nil {
		return FragmentMetadata{}, err
	}
	if validate(fragment) != valOK {
		return FragmentMetadata{}, errors.Wrap(ErrBadHeader, "fragment failed header validation")
	}
	return fragment.Header().Meta, nil
}

// VerifyStripeMetadata validates every fragment of a stripe independently,
// returning one validateResult-derived error per index (nil where ok),
// §8 scenario 5.
func VerifyStripeMetadata(desc int, fragments []Fragment) ([]error, error) {
	if _, err := globalRegistry.get(desc); err != nil {
		return nil, err
	}
	results := make([]error, len(fragments))
	for i, f := range fragments {
		if f == nil {
			results[i] = errors.Wrap(ErrBadHeader, "missing fragment")
			continue
		}
		switch validate(f) {
		case valOK:
			results[i] = nil
		case valBadMagic, valBadMetadataChksum:
			results[i] = errors.Wrap(ErrBadHeader, "header validation failed")
		case valBadPayloadChksum:
			results[i] = errors.Wrap(ErrBadChecksum, "payload checksum mismatch")
		}
	}
	return results, nil
}

// GetAlignedDataSize reports aligned_len for a given original payload size,
// §4.4's supplemented getter.
func GetAlignedDataSize(desc int, origDataSize uint64) (uint64, error) {
	inst, err := globalRegistry.get(desc)
	if err != nil {
		return 0, err
	}
	w := inst.args.W
	if w == 0 {
		w = 8
	}
	am := alignmentMultiple(inst.args.K, w, inst.isCauchy())
	return alignedLen(origDataSize, am), nil
}

// GetMinimumEncodeSize reports the smallest orig_data_size that produces a
// full (non-zero-padded) aligned stripe — one alignment_multiple's worth.
func GetMinimumEncodeSize(desc int) (uint64, error) {
	inst, err := globalRegistry.get(desc)
	if err != nil {
		return 0, err
	}
	w := inst.args.W
	if w == 0 {
		w = 8
	}
	return uint64(alignmentMultiple(inst.args.K, w, inst.isCauchy())), nil
}

// GetFragmentSize reports the per-fragment buffer size (header + blocksize +
// backend metadata) for a given original payload size.
func GetFragmentSize(desc int, origDataSize uint64) (int, error) {
	inst, err := globalRegistry.get(desc)
	if err != nil {
		return 0, err
	}
	aligned, err := GetAlignedDataSize(desc, origDataSize)
	if err != nil {
		return 0, err
	}
	blocksize := int(aligned) / inst.args.K
	return headerSize + blocksize + inst.descriptor.FragmentMetadataSize, nil
}

// EncodeCleanup and DecodeCleanup are no-ops in this port: fragment buffers
// are ordinary Go slices collected by the garbage collector, not explicit
// allocations the frontend must free, §5's "allocations are owned by the
// library" note translated away from manual memory management.
func EncodeCleanup(desc int, fragments []Fragment) error {
	if _, err := globalRegistry.get(desc); err != nil {
		return err
	}
	return nil
}

func DecodeCleanup(desc int, fragments []Fragment) error {
	if _, err := globalRegistry.get(desc); err != nil {
		return err
	}
	return nil
}
