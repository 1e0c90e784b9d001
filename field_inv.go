package p256k1

const m52 = ^uint64(0) >> 12

func (r *FieldElement) toSigned62(s *signed62) {
	a0, a1, a2, a3, a4 := r.n[0], r.n[1], r.n[2], r.n[3], r.n[4]
	s.v[0] = int64((a0 | a1<<52) & m62)
	s.v[1] = int64((a1>>10 | a2<<42) & m62)
	s.v[2] = int64((a2>>20 | a3<<32) & m62)
	s.v[3] = int64((a3>>30 | a4<<22) & m62)
	s.v[4] = int64(a4 >> 40)
}

func (r *FieldElement) fromSigned62(s *signed62) {
	a0, a1, a2, a3, a4 := uint64(s.v[0]), uint64(s.v[1]), uint64(s.v[2]), uint64(s.v[3]), uint64(s.v[4])
	r.n[0] = a0 & m52
	r.n[1] = (a0>>52 | a1<<10) & m52
	r.n[2] = (a1>>42 | a2<<20) & m52
	r.n[3] = (a2>>32 | a3<<30) & m52
	r.n[4] = a3>>22 | a4<<40
}

// inv sets r = a^-1 mod p in constant time. The inverse of 0 is 0. The
// result is normalized.
func (r *FieldElement) inv(a *FieldElement) {
	tmp := *a
	tmp.normalize()
	var s signed62
	tmp.toSigned62(&s)
	modinv64(&s, &modinfoField)
	r.fromSigned62(&s)
	r.magnitude = boolToInt(a.magnitude > 0)
	r.normalized = true
}

// invVar is inv for public values.
func (r *FieldElement) invVar(a *FieldElement) {
	tmp := *a
	tmp.normalizeVar()
	var s signed62
	tmp.toSigned62(&s)
	modinv64Var(&s, &modinfoField)
	r.fromSigned62(&s)
	r.magnitude = boolToInt(a.magnitude > 0)
	r.normalized = true
}

// sqrt sets r to a square root of a, computed as a^((p+1)/4), and reports
// whether a is a square. When it is not, r holds the root of -a. a must have
// magnitude at most 8 and must not alias r.
func (r *FieldElement) sqrt(a *FieldElement) bool {
	a.verifyMagnitude(8)

	// (p+1)/4 has three blocks of 1 bits of lengths 2, 22 and 223; the
	// addition chain builds 2^k - 1 for k in 1, [2], 3, 6, 9, 11, [22], 44,
	// 88, 176, 220, [223].
	var x2, x3, x6, x9, x11, x22, x44, x88, x176, x220, x223, t1 FieldElement

	x2.sqr(a)
	x2.mul(&x2, a)

	x3.sqr(&x2)
	x3.mul(&x3, a)

	x6 = x3
	x6.sqrN(3)
	x6.mul(&x6, &x3)

	x9 = x6
	x9.sqrN(3)
	x9.mul(&x9, &x3)

	x11 = x9
	x11.sqrN(2)
	x11.mul(&x11, &x2)

	x22 = x11
	x22.sqrN(11)
	x22.mul(&x22, &x11)

	x44 = x22
	x44.sqrN(22)
	x44.mul(&x44, &x22)

	x88 = x44
	x88.sqrN(44)
	x88.mul(&x88, &x44)

	x176 = x88
	x176.sqrN(88)
	x176.mul(&x176, &x88)

	x220 = x176
	x220.sqrN(44)
	x220.mul(&x220, &x44)

	x223 = x220
	x223.sqrN(3)
	x223.mul(&x223, &x3)

	t1 = x223
	t1.sqrN(23)
	t1.mul(&t1, &x22)
	t1.sqrN(6)
	t1.mul(&t1, &x2)
	t1.sqr(&t1)
	r.sqr(&t1)

	t1.sqr(r)
	return t1.equal(a)
}

// sqrN squares r in place n times.
func (r *FieldElement) sqrN(n int) {
	for i := 0; i < n; i++ {
		r.sqr(r)
	}
}

// isSquareVar reports whether a is a quadratic residue. Public values only.
func (a *FieldElement) isSquareVar() bool {
	t := *a
	t.normalizeWeak()
	var root FieldElement
	return root.sqrt(&t)
}

// batchInverse sets out[i] = a[i]^-1 using a single inversion. All inputs
// must be nonzero and public; out may alias a.
func batchInverse(out []FieldElement, a []FieldElement) {
	n := len(a)
	if n == 0 {
		return
	}

	// s[i] = a[0] * ... * a[i-1]
	s := make([]FieldElement, n)
	s[0].setInt(1)
	for i := 1; i < n; i++ {
		s[i].mul(&s[i-1], &a[i-1])
	}

	var u FieldElement
	u.mul(&s[n-1], &a[n-1])
	u.invVar(&u)

	// walk backwards so out may alias a
	for i := n - 1; i >= 0; i-- {
		ai := a[i]
		out[i].mul(&u, &s[i])
		u.mul(&u, &ai)
	}
}
