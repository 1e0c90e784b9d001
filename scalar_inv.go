package p256k1

func (r *Scalar) toSigned62(s *signed62) {
	a0, a1, a2, a3 := r.d[0], r.d[1], r.d[2], r.d[3]
	s.v[0] = int64(a0 & m62)
	s.v[1] = int64((a0>>62 | a1<<2) & m62)
	s.v[2] = int64((a1>>60 | a2<<4) & m62)
	s.v[3] = int64((a2>>58 | a3<<6) & m62)
	s.v[4] = int64(a3 >> 56)
}

func (r *Scalar) fromSigned62(s *signed62) {
	a0, a1, a2, a3, a4 := uint64(s.v[0]), uint64(s.v[1]), uint64(s.v[2]), uint64(s.v[3]), uint64(s.v[4])
	verifyCheck(a0>>62 == 0 && a1>>62 == 0 && a2>>62 == 0 && a3>>62 == 0 && a4>>8 == 0, "signed62 limb out of range")
	r.d[0] = a0 | a1<<62
	r.d[1] = a1>>2 | a2<<60
	r.d[2] = a2>>4 | a3<<58
	r.d[3] = a3>>6 | a4<<56
}

// inverse sets r = a^-1 mod n in constant time. The inverse of 0 is 0.
func (r *Scalar) inverse(a *Scalar) {
	var s signed62
	a.toSigned62(&s)
	modinv64(&s, &modinfoScalar)
	r.fromSigned62(&s)
}

// inverseVar is inverse for public inputs.
func (r *Scalar) inverseVar(a *Scalar) {
	var s signed62
	a.toSigned62(&s)
	modinv64Var(&s, &modinfoScalar)
	r.fromSigned62(&s)
}
