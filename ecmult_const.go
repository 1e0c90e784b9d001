package p256k1

// Constant-time variable-base multiplication. The scalar is split with the
// endomorphism into two 129-bit halves, each written in groups of five
// signed digits that are never zero, so every group costs the same fixed
// sequence of doublings, table scans and unified additions.
const (
	ecmultConstGroupSize = 5
	ecmultConstTableSize = 1 << (ecmultConstGroupSize - 1)
	ecmultConstBits      = 130
	ecmultConstGroups    = (ecmultConstBits + ecmultConstGroupSize - 1) / ecmultConstGroupSize
)

var (
	// (2^130 - 2^129 - 1)*(1 + lambda) mod n. Adding it and halving turns
	// q into the all-digits-odd encoding.
	ecmultConstK = scalarConst(
		0xa4e88a7d, 0xcb13034e, 0xc2bdd6bf, 0x7c118d6b,
		0x589ae848, 0x26ba29e4, 0xb5c2c1dc, 0xde9798d9,
	)

	// 2^128, moving the split halves into [0, 2^129)
	ecmultConstOffset = scalarConst(0, 0, 0, 1, 0, 0, 0, 0)
)

// ecmultConstTableGet sets r to the signed-digit entry for the 5-bit group n:
// a top bit of 1 selects +pre[n&15], a top bit of 0 selects -pre[^n&15].
// All entries are scanned.
func ecmultConstTableGet(r *GroupElementAffine, pre *[ecmultConstTableSize]GroupElementAffine, n uint32) {
	verifyCheck(n < 1<<ecmultConstGroupSize, "group value out of range")
	negative := (n >> (ecmultConstGroupSize - 1)) ^ 1
	index := (-negative ^ n) & (ecmultConstTableSize - 1)

	r.x = pre[0].x
	r.y = pre[0].y
	for m := uint32(1); m < ecmultConstTableSize; m++ {
		flag := int(ctEq(uint64(m), uint64(index)))
		r.x.cmov(&pre[m].x, flag)
		r.y.cmov(&pre[m].y, flag)
	}
	r.infinity = false

	var negY FieldElement
	negY.negate(&r.y, 1)
	r.y.cmov(&negY, int(negative))
}

// ecmultConst sets r = q*a. The sequence of operations and memory accesses
// does not depend on q or a; only whether a is infinity is branched on.
func ecmultConst(r *GroupElementJacobian, a *GroupElementAffine, q *Scalar) {
	if a.infinity {
		r.setInfinity()
		return
	}

	var s, v1, v2 Scalar
	s.add(q, &ecmultConstK)
	s.half(&s)
	splitLambda(&v1, &v2, &s)
	v1.add(&v1, &ecmultConstOffset)
	v2.add(&v2, &ecmultConstOffset)

	var (
		preA, preALam [ecmultConstTableSize]GroupElementAffine
		zr            [ecmultConstTableSize]FieldElement
		globalZ       FieldElement
		t             GroupElementAffine
	)
	r.setGE(a)
	oddMultiplesTable(preA[:], zr[:], &globalZ, r)
	tableSetGlobalZ(preA[:], zr[:])
	for i := range preA {
		preALam[i].mulLambda(&preA[i])
	}

	for group := ecmultConstGroups - 1; group >= 0; group-- {
		// group offsets are public
		off := uint(group * ecmultConstGroupSize)
		bits1 := v1.getBitsVar(off, ecmultConstGroupSize)
		bits2 := v2.getBitsVar(off, ecmultConstGroupSize)

		ecmultConstTableGet(&t, &preA, bits1)
		if group == ecmultConstGroups-1 {
			r.setGE(&t)
		} else {
			for j := 0; j < ecmultConstGroupSize; j++ {
				r.double(r)
			}
			r.addGE(r, &t)
		}
		ecmultConstTableGet(&t, &preALam, bits2)
		r.addGE(r, &t)
	}

	// back from the isomorphic curve
	r.z.mul(&r.z, &globalZ)

	s.clear()
	v1.clear()
	v2.clear()
}
