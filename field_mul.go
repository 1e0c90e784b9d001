package p256k1

// mul sets r = a * b. Inputs must have magnitude at most 8; the result has
// magnitude 1 and is not normalized. r may alias a or b.
//
// [... a b c] is shorthand for ... + a<<104 + b<<52 + c<<0 mod p, and px is
// the sum of a[i]*b[x-i]. Since 2^260 = R = 0x1000003D10 mod p, a term at
// position 5 folds into position 0 after multiplying by R.
func (r *FieldElement) mul(a, b *FieldElement) {
	countOp(opFieldMul, 1)
	a.verifyMagnitude(8)
	b.verifyMagnitude(8)

	a0, a1, a2, a3, a4 := a.n[0], a.n[1], a.n[2], a.n[3], a.n[4]
	b0, b1, b2, b3, b4 := b.n[0], b.n[1], b.n[2], b.n[3], b.n[4]

	const M = limbMax
	const R = fieldReductionConstantShifted

	// [d 0 0 0] = [p3 0 0 0]
	d := mulU64(a0, b3).addMul(a1, b2).addMul(a2, b1).addMul(a3, b0)
	// [c 0 0 0 0 d 0 0 0] = [p8 0 0 0 0 p3 0 0 0]
	c := mulU64(a4, b4)
	// [(c<<12) 0 0 0 0 0 d 0 0 0] = [p8 0 0 0 0 p3 0 0 0]
	d = d.addMul(R, c.lo)
	c = c.rsh(64)
	t3 := d.lo & M
	d = d.rsh(52)

	// [(c<<12) 0 0 0 0 d t3 0 0 0] = [p8 0 0 0 p4 p3 0 0 0]
	d = d.addMul(a0, b4).addMul(a1, b3).addMul(a2, b2).addMul(a3, b1).addMul(a4, b0)
	d = d.addMul(R<<12, c.lo)
	// [d t4 t3 0 0 0] = [p8 0 0 0 p4 p3 0 0 0]
	t4 := d.lo & M
	d = d.rsh(52)
	tx := t4 >> 48
	t4 &= M >> 4

	// [d t4+(tx<<48) t3 0 0 c] = [p8 0 0 p5 p4 p3 0 0 p0]
	c = mulU64(a0, b0)
	d = d.addMul(a1, b4).addMul(a2, b3).addMul(a3, b2).addMul(a4, b1)
	u0 := d.lo & M
	d = d.rsh(52)
	u0 = u0<<4 | tx
	// [d 0 t4 t3 0 0 c] = [p8 0 0 p5 p4 p3 0 0 p0]
	c = c.addMul(u0, R>>4)
	r0 := c.lo & M
	c = c.rsh(52)

	// [d 0 t4 t3 0 c r0] = [p8 0 p6 p5 p4 p3 0 p1 p0]
	c = c.addMul(a0, b1).addMul(a1, b0)
	d = d.addMul(a2, b4).addMul(a3, b3).addMul(a4, b2)
	c = c.addMul(d.lo&M, R)
	d = d.rsh(52)
	r1 := c.lo & M
	c = c.rsh(52)

	// [d 0 0 t4 t3 c r1 r0] = [p8 p7 p6 p5 p4 p3 p2 p1 p0]
	c = c.addMul(a0, b2).addMul(a1, b1).addMul(a2, b0)
	d = d.addMul(a3, b4).addMul(a4, b3)
	c = c.addMul(R, d.lo)
	d = d.rsh(64)
	r2 := c.lo & M
	c = c.rsh(52)

	// [t4 c r2 r1 r0]
	c = c.addMul(R<<12, d.lo).add64(t3)
	r3 := c.lo & M
	c = c.rsh(52)
	r4 := c.lo + t4

	r.n = [5]uint64{r0, r1, r2, r3, r4}
	r.magnitude = 1
	r.normalized = false
}

// sqr sets r = a^2. Same bounds as mul.
func (r *FieldElement) sqr(a *FieldElement) {
	countOp(opFieldSqr, 1)
	a.verifyMagnitude(8)

	a0, a1, a2, a3, a4 := a.n[0], a.n[1], a.n[2], a.n[3], a.n[4]

	const M = limbMax
	const R = fieldReductionConstantShifted

	// [d 0 0 0] = [p3 0 0 0]
	d := mulU64(a0*2, a3).addMul(a1*2, a2)
	// [c 0 0 0 0 d 0 0 0] = [p8 0 0 0 0 p3 0 0 0]
	c := mulU64(a4, a4)
	d = d.addMul(R, c.lo)
	c = c.rsh(64)
	t3 := d.lo & M
	d = d.rsh(52)

	// [(c<<12) 0 0 0 0 d t3 0 0 0] = [p8 0 0 0 p4 p3 0 0 0]
	a4 *= 2
	d = d.addMul(a0, a4).addMul(a1*2, a3).addMul(a2, a2)
	d = d.addMul(R<<12, c.lo)
	t4 := d.lo & M
	d = d.rsh(52)
	tx := t4 >> 48
	t4 &= M >> 4

	// [d t4+(tx<<48) t3 0 0 c] = [p8 0 0 p5 p4 p3 0 0 p0]
	c = mulU64(a0, a0)
	d = d.addMul(a1, a4).addMul(a2*2, a3)
	u0 := d.lo & M
	d = d.rsh(52)
	u0 = u0<<4 | tx
	c = c.addMul(u0, R>>4)
	r0 := c.lo & M
	c = c.rsh(52)

	// [d 0 t4 t3 0 c r0] = [p8 0 p6 p5 p4 p3 0 p1 p0]
	a0 *= 2
	c = c.addMul(a0, a1)
	d = d.addMul(a2, a4).addMul(a3, a3)
	c = c.addMul(d.lo&M, R)
	d = d.rsh(52)
	r1 := c.lo & M
	c = c.rsh(52)

	// [d 0 0 t4 t3 c r1 r0] = [p8 p7 p6 p5 p4 p3 p2 p1 p0]
	c = c.addMul(a0, a2).addMul(a1, a1)
	d = d.addMul(a3, a4)
	c = c.addMul(R, d.lo)
	d = d.rsh(64)
	r2 := c.lo & M
	c = c.rsh(52)

	c = c.addMul(R<<12, d.lo).add64(t3)
	r3 := c.lo & M
	c = c.rsh(52)
	r4 := c.lo + t4

	r.n = [5]uint64{r0, r1, r2, r3, r4}
	r.magnitude = 1
	r.normalized = false
}
