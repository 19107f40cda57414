package libec

// finalizeAfterEncode implements §4.5 finalize_after_encode: stamp the
// header of every one of the k+m shards now that their payloads have been
// written by the backend's Encode.
func finalizeAfterEncode(dataFrags, parityFrags []Fragment, origDataSize uint64, blocksize int, backendMetaSize int, backendID BackendID, backendVersion BackendVersion, chksumType ChksumType) {
	for i, f := range dataFrags {
		stamp(f, uint32(i), origDataSize, uint32(blocksize), uint32(backendMetaSize), backendID, backendVersion, chksumType)
	}
	k := len(dataFrags)
	for i, f := range parityFrags {
		stamp(f, uint32(k+i), origDataSize, uint32(blocksize), uint32(backendMetaSize), backendID, backendVersion, chksumType)
	}
}
