package p256k1

// The secp256k1 endomorphism: lambda is a cube root of unity mod n, beta a
// cube root of unity mod p, and lambda*(x, y) = (beta*x, y) for every point.

// scalarConst builds a scalar from eight 32-bit words, most significant first.
func scalarConst(d7, d6, d5, d4, d3, d2, d1, d0 uint32) Scalar {
	return Scalar{d: [4]uint64{
		uint64(d1)<<32 | uint64(d0),
		uint64(d3)<<32 | uint64(d2),
		uint64(d5)<<32 | uint64(d4),
		uint64(d7)<<32 | uint64(d6),
	}}
}

var (
	lambdaConstant = scalarConst(
		0x5363AD4C, 0xC05C30E0, 0xA5261C02, 0x8812645A,
		0x122E22EA, 0x20816678, 0xDF02967C, 0x1B23BD72,
	)

	betaConstant = fieldConst(
		0x7ae96a2b, 0x657c0710, 0x6e64479e, 0xac3434e9,
		0x9cf04975, 0x12f58995, 0xc1396c28, 0x719501ee,
	)

	// the lattice basis vectors and the rounding multipliers of splitLambda
	minusB1 = scalarConst(
		0x00000000, 0x00000000, 0x00000000, 0x00000000,
		0xE4437ED6, 0x010E8828, 0x6F547FA9, 0x0ABFE4C3,
	)
	minusB2 = scalarConst(
		0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFE,
		0x8A280AC5, 0x0774346D, 0xD765CDA8, 0x3DB1562C,
	)
	g1 = scalarConst(
		0x3086D221, 0xA7D46BCD, 0xE86C90E4, 0x9284EB15,
		0x3DAA8A14, 0x71E8CA7F, 0xE893209A, 0x45DBB031,
	)
	g2 = scalarConst(
		0xE4437ED6, 0x010E8828, 0x6F547FA9, 0x0ABFE4C4,
		0x221208AC, 0x9DF506C6, 0x1571B4AE, 0x8AC47F71,
	)
)

// splitLambda finds r1, r2 with r1 + lambda*r2 == k (mod n) where both r1 and
// r2 are in (-2^128, 2^128) when read as signed values mod n. The running time
// does not depend on k.
//
// r1 and r2 must not alias k or each other.
func splitLambda(r1, r2, k *Scalar) {
	verifyCheck(r1 != k && r2 != k && r1 != r2, "splitLambda aliasing")
	var c1, c2 Scalar
	c1.mulShiftVar(k, &g1, 384)
	c2.mulShiftVar(k, &g2, 384)
	c1.mul(&c1, &minusB1)
	c2.mul(&c2, &minusB2)
	r2.add(&c1, &c2)
	r1.mul(r2, &lambdaConstant)
	r1.negate(r1)
	r1.add(r1, k)
}

// mulLambda sets r = lambda*a, which is (beta*x, y).
func (r *GroupElementAffine) mulLambda(a *GroupElementAffine) {
	*r = *a
	r.x.mul(&r.x, &betaConstant)
}
