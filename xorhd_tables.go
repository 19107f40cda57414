package libec

// Pre-tabulated XOR-HD bitmap codes, §4.3. Transcribed from
// original_source/include/xor_codes/xor_hd_code_defs.h ("I made these by
// hand... / The rest were generated via the goldilocks code algorithm").
// parityBMs[p] is a bitmap over the k data shards that XOR into parity p;
// dataBMs[d] is the dual bitmap over the m parities that cover data shard d.
type xorHDCode struct {
	k, m, hd  int
	parityBMs []uint32
	dataBMs   []uint32
}

var xorHDCodes = []xorHDCode{
	// hd=3, m=5
	{5, 5, 3, []uint32{3, 12, 17, 6, 24}, []uint32{5, 9, 10, 18, 20}},
	{6, 5, 3, []uint32{35, 44, 17, 6, 24}, []uint32{5, 9, 10, 18, 20, 3}},
	{7, 5, 3, []uint32{35, 44, 81, 70, 24}, []uint32{5, 9, 10, 18, 20, 3, 12}},
	{8, 5, 3, []uint32{163, 44, 81, 70, 152}, []uint32{5, 9, 10, 18, 20, 3, 12, 17}},
	{9, 5, 3, []uint32{163, 300, 337, 70, 152}, []uint32{5, 9, 10, 18, 20, 3, 12, 17, 6}},
	{10, 5, 3, []uint32{163, 300, 337, 582, 664}, []uint32{5, 9, 10, 18, 20, 3, 12, 17, 6, 24}},

	// hd=4, m=5
	{5, 5, 4, []uint32{7, 25, 14, 19, 28}, []uint32{11, 13, 21, 22, 26}},
	{6, 5, 4, []uint32{39, 57, 46, 19, 28}, []uint32{11, 13, 21, 22, 26, 7}},
	{7, 5, 4, []uint32{103, 57, 46, 83, 92}, []uint32{11, 13, 21, 22, 26, 7, 25}},
	{8, 5, 4, []uint32{103, 185, 174, 211, 92}, []uint32{11, 13, 21, 22, 26, 7, 25, 14}},
	{9, 5, 4, []uint32{359, 441, 174, 211, 348}, []uint32{11, 13, 21, 22, 26, 7, 25, 14, 19}},
	{10, 5, 4, []uint32{359, 441, 686, 723, 860}, []uint32{11, 13, 21, 22, 26, 7, 25, 14, 19, 28}},

	// hd=3, m=6
	{6, 6, 3, []uint32{3, 48, 36, 24, 9, 6}, []uint32{17, 33, 36, 24, 10, 6}},
	{7, 6, 3, []uint32{67, 112, 36, 24, 9, 6}, []uint32{17, 33, 36, 24, 10, 6, 3}},
	{8, 6, 3, []uint32{67, 112, 164, 152, 9, 6}, []uint32{17, 33, 36, 24, 10, 6, 3, 12}},
	{9, 6, 3, []uint32{67, 112, 164, 152, 265, 262}, []uint32{17, 33, 36, 24, 10, 6, 3, 12, 48}},
	{10, 6, 3, []uint32{579, 112, 676, 152, 265, 262}, []uint32{17, 33, 36, 24, 10, 6, 3, 12, 48, 5}},
	{11, 6, 3, []uint32{579, 1136, 676, 152, 1289, 262}, []uint32{17, 33, 36, 24, 10, 6, 3, 12, 48, 5, 18}},
	{12, 6, 3, []uint32{579, 1136, 676, 2200, 1289, 2310}, []uint32{17, 33, 36, 24, 10, 6, 3, 12, 48, 5, 18, 40}},
	{13, 6, 3, []uint32{4675, 1136, 676, 6296, 1289, 2310}, []uint32{17, 33, 36, 24, 10, 6, 3, 12, 48, 5, 18, 40, 9}},
	{14, 6, 3, []uint32{4675, 9328, 676, 6296, 1289, 10502}, []uint32{17, 33, 36, 24, 10, 6, 3, 12, 48, 5, 18, 40, 9, 34}},
	{15, 6, 3, []uint32{4675, 9328, 17060, 6296, 17673, 10502}, []uint32{17, 33, 36, 24, 10, 6, 3, 12, 48, 5, 18, 40, 9, 34, 20}},

	// hd=4, m=6 — note k=12 uses the handmade table (the "goldilocks"
	// generator never redefines it), see the source comment above.
	{6, 6, 4, []uint32{7, 56, 56, 11, 21, 38}, []uint32{25, 41, 49, 14, 22, 38}},
	{7, 6, 4, []uint32{71, 120, 120, 11, 21, 38}, []uint32{25, 41, 49, 14, 22, 38, 7}},
	{8, 6, 4, []uint32{71, 120, 120, 139, 149, 166}, []uint32{25, 41, 49, 14, 22, 38, 7, 56}},
	{9, 6, 4, []uint32{327, 376, 120, 395, 149, 166}, []uint32{25, 41, 49, 14, 22, 38, 7, 56, 11}},
	{10, 6, 4, []uint32{327, 376, 632, 395, 661, 678}, []uint32{25, 41, 49, 14, 22, 38, 7, 56, 11, 52}},
	{11, 6, 4, []uint32{1351, 1400, 632, 395, 1685, 678}, []uint32{25, 41, 49, 14, 22, 38, 7, 56, 11, 52, 19}},
	{12, 6, 4, []uint32{1649, 3235, 2375, 718, 1436, 2872}, []uint32{7, 14, 28, 56, 49, 35, 13, 26, 52, 41, 19, 38}},
	{13, 6, 4, []uint32{5447, 5496, 2680, 2443, 1685, 6822}, []uint32{25, 41, 49, 14, 22, 38, 7, 56, 11, 52, 19, 44, 35}},
	{14, 6, 4, []uint32{5447, 5496, 10872, 10635, 9877, 6822}, []uint32{25, 41, 49, 14, 22, 38, 7, 56, 11, 52, 19, 44, 35, 28}},
	{15, 6, 4, []uint32{21831, 5496, 27256, 27019, 9877, 6822}, []uint32{25, 41, 49, 14, 22, 38, 7, 56, 11, 52, 19, 44, 35, 28, 13}},
	{16, 6, 4, []uint32{21831, 38264, 27256, 27019, 42645, 39590}, []uint32{25, 41, 49, 14, 22, 38, 7, 56, 11, 52, 19, 44, 35, 28, 13, 50}},
	{17, 6, 4, []uint32{87367, 38264, 92792, 27019, 108181, 39590}, []uint32{25, 41, 49, 14, 22, 38, 7, 56, 11, 52, 19, 44, 35, 28, 13, 50, 21}},
	{18, 6, 4, []uint32{87367, 169336, 92792, 158091, 108181, 170662}, []uint32{25, 41, 49, 14, 22, 38, 7, 56, 11, 52, 19, 44, 35, 28, 13, 50, 21, 42}},
	{19, 6, 4, []uint32{349511, 169336, 354936, 158091, 108181, 432806}, []uint32{25, 41, 49, 14, 22, 38, 7, 56, 11, 52, 19, 44, 35, 28, 13, 50, 21, 42, 37}},
	{20, 6, 4, []uint32{349511, 693624, 354936, 682379, 632469, 432806}, []uint32{25, 41, 49, 14, 22, 38, 7, 56, 11, 52, 19, 44, 35, 28, 13, 50, 21, 42, 37, 26}},
}

// xorHDTable looks up the pre-tabulated bitmap pair for a given (k, m, hd).
func xorHDTable(k, m, hd int) (parityBMs, dataBMs []uint32, ok bool) {
	for _, c := range xorHDCodes {
		if c.k == k && c.m == m && c.hd == hd {
			return c.parityBMs, c.dataBMs, true
		}
	}
	return nil, nil, false
}
