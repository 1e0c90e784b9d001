package p256k1

import "math/bits"

// Modular inversion using the safegcd algorithm of Bernstein and Yang, with
// the transition matrices computed over batches of divsteps on signed 62-bit
// limbs. Both the field and the scalar inverse are built on this.

const m62 = ^uint64(0) >> 2

// signed62 holds a value as sum(v[i] << (62*i)). Limbs 0..3 are in [0, 2^62)
// when normalized; the top limb carries the sign.
type signed62 struct {
	v [5]int64
}

// modinfo describes a modulus for the inversion routines.
type modinfo struct {
	modulus signed62
	// modulus^-1 mod 2^62
	modulusInv62 uint64
}

// trans2x2 is the 2x2 transition matrix produced by a batch of divsteps,
// scaled by 2^62.
type trans2x2 struct {
	u, v, q, r int64
}

var (
	modinfoField = modinfo{
		modulus:      signed62{v: [5]int64{-0x1000003D1, 0, 0, 0, 256}},
		modulusInv62: 0x27C7F6E22DDACACF,
	}
	modinfoScalar = modinfo{
		modulus:      signed62{v: [5]int64{0x3FD25E8CD0364141, 0x2ABB739ABD2280EE, -0x15, 0, 256}},
		modulusInv62: 0x34F20099AA774EC1,
	}
)

// divsteps59 performs 59 constant-time divsteps on the bottom limbs of f and
// g, starting from zeta. The returned matrix is scaled by 2^62 (it starts at
// 8*identity since 3 of the 62 steps are not taken).
func divsteps59(zeta int64, f0, g0 uint64, t *trans2x2) int64 {
	countOp(opDivsteps59, 1)
	u, v, q, r := uint64(8), uint64(0), uint64(0), uint64(8)
	f, g := f0, g0
	for i := 3; i < 62; i++ {
		// mask1 = zeta < 0, mask2 = g odd
		mask1 := uint64(zeta >> 63)
		mask2 := -(g & 1)
		x := (f ^ mask1) - mask1
		y := (u ^ mask1) - mask1
		z := (v ^ mask1) - mask1
		g += x & mask2
		q += y & mask2
		r += z & mask2
		mask1 &= mask2
		zeta = int64((uint64(zeta) ^ mask1) - 1)
		f += g & mask1
		u += q & mask1
		v += r & mask1
		g >>= 1
		u <<= 1
		v <<= 1
	}
	t.u, t.v, t.q, t.r = int64(u), int64(v), int64(q), int64(r)
	return zeta
}

// divsteps62Var performs 62 divsteps on the bottom limbs of f and g,
// skipping runs of even g at once. Variable time.
func divsteps62Var(eta int64, f0, g0 uint64, t *trans2x2) int64 {
	countOp(opDivsteps62Var, 1)
	u, v, q, r := uint64(1), uint64(0), uint64(0), uint64(1)
	f, g := f0, g0
	i := 62
	for {
		// sentinel bit so that at most i zeros are counted
		zeros := bits.TrailingZeros64(g | (^uint64(0) << uint(i)))
		g >>= uint(zeros)
		u <<= uint(zeros)
		v <<= uint(zeros)
		eta -= int64(zeros)
		i -= zeros
		if i == 0 {
			break
		}
		var m, w uint64
		limit := int(eta) + 1
		if eta < 0 {
			eta = -eta
			f, g = g, -f
			u, q = q, -u
			v, r = r, -v
			limit = int(eta) + 1
			if limit > i {
				limit = i
			}
			// cancel up to 6 bits of g
			m = (^uint64(0) >> uint(64-limit)) & 63
			w = (f * g * (f*f - 2)) & m
		} else {
			if limit > i {
				limit = i
			}
			// cancel up to 4 bits of g
			m = (^uint64(0) >> uint(64-limit)) & 15
			w = f + (((f + 1) & 4) << 1)
			w = (-w * g) & m
		}
		g += f * w
		q += u * w
		r += v * w
	}
	t.u, t.v, t.q, t.r = int64(u), int64(v), int64(q), int64(r)
	return eta
}

// updateDE62 computes (t/2^62)*[d, e] mod modulus, keeping d and e in
// (-2*modulus, modulus).
func updateDE62(d, e *signed62, t *trans2x2, mi *modinfo) {
	d0, d1, d2, d3, d4 := d.v[0], d.v[1], d.v[2], d.v[3], d.v[4]
	e0, e1, e2, e3, e4 := e.v[0], e.v[1], e.v[2], e.v[3], e.v[4]
	u, v, q, r := t.u, t.v, t.q, t.r
	mod := &mi.modulus.v

	// md, me start as zero, plus [u,q] if d is negative, plus [v,r] if e is
	sd := d4 >> 63
	se := e4 >> 63
	md := (u & sd) + (v & se)
	me := (q & sd) + (r & se)

	cd := mulI64(u, d0).accumMul(v, e0)
	ce := mulI64(q, d0).accumMul(r, e0)

	// choose md, me so the bottom 62 bits of t*[d,e] + modulus*[md,me] vanish
	md -= int64((mi.modulusInv62*cd.toU64() + uint64(md)) & m62)
	me -= int64((mi.modulusInv62*ce.toU64() + uint64(me)) & m62)

	cd = cd.accumMul(mod[0], md).rsh(62)
	ce = ce.accumMul(mod[0], me).rsh(62)

	cd = cd.accumMul(u, d1).accumMul(v, e1).accumMul(mod[1], md)
	ce = ce.accumMul(q, d1).accumMul(r, e1).accumMul(mod[1], me)
	d.v[0] = int64(cd.toU64() & m62)
	e.v[0] = int64(ce.toU64() & m62)
	cd, ce = cd.rsh(62), ce.rsh(62)

	cd = cd.accumMul(u, d2).accumMul(v, e2).accumMul(mod[2], md)
	ce = ce.accumMul(q, d2).accumMul(r, e2).accumMul(mod[2], me)
	d.v[1] = int64(cd.toU64() & m62)
	e.v[1] = int64(ce.toU64() & m62)
	cd, ce = cd.rsh(62), ce.rsh(62)

	cd = cd.accumMul(u, d3).accumMul(v, e3).accumMul(mod[3], md)
	ce = ce.accumMul(q, d3).accumMul(r, e3).accumMul(mod[3], me)
	d.v[2] = int64(cd.toU64() & m62)
	e.v[2] = int64(ce.toU64() & m62)
	cd, ce = cd.rsh(62), ce.rsh(62)

	cd = cd.accumMul(u, d4).accumMul(v, e4).accumMul(mod[4], md)
	ce = ce.accumMul(q, d4).accumMul(r, e4).accumMul(mod[4], me)
	d.v[3] = int64(cd.toU64() & m62)
	e.v[3] = int64(ce.toU64() & m62)
	cd, ce = cd.rsh(62), ce.rsh(62)

	d.v[4] = cd.toI64()
	e.v[4] = ce.toI64()
}

// updateFG62 computes (t/2^62)*[f, g] over all five limbs.
func updateFG62(f, g *signed62, t *trans2x2) {
	updateFG62Var(5, f, g, t)
}

// updateFG62Var is updateFG62 restricted to the bottom n limbs. The limb
// count is public, so the constant-time caller simply passes 5.
func updateFG62Var(n int, f, g *signed62, t *trans2x2) {
	countOp(opUpdateFGLimbs, uint64(n))
	u, v, q, r := t.u, t.v, t.q, t.r
	fi, gi := f.v[0], g.v[0]
	cf := mulI64(u, fi).accumMul(v, gi).rsh(62)
	cg := mulI64(q, fi).accumMul(r, gi).rsh(62)
	for i := 1; i < n; i++ {
		fi, gi = f.v[i], g.v[i]
		cf = cf.accumMul(u, fi).accumMul(v, gi)
		cg = cg.accumMul(q, fi).accumMul(r, gi)
		f.v[i-1] = int64(cf.toU64() & m62)
		g.v[i-1] = int64(cg.toU64() & m62)
		cf, cg = cf.rsh(62), cg.rsh(62)
	}
	f.v[n-1] = cf.toI64()
	g.v[n-1] = cg.toI64()
}

// normalize62 brings r from (-2*modulus, modulus) to [0, modulus), negating
// first when sign is negative. Constant time.
func normalize62(r *signed62, sign int64, mi *modinfo) {
	const m = int64(m62)
	mod := &mi.modulus.v
	r0, r1, r2, r3, r4 := r.v[0], r.v[1], r.v[2], r.v[3], r.v[4]

	condAdd := r4 >> 63
	r0 += mod[0] & condAdd
	r1 += mod[1] & condAdd
	r2 += mod[2] & condAdd
	r3 += mod[3] & condAdd
	r4 += mod[4] & condAdd
	condNeg := sign >> 63
	r0 = (r0 ^ condNeg) - condNeg
	r1 = (r1 ^ condNeg) - condNeg
	r2 = (r2 ^ condNeg) - condNeg
	r3 = (r3 ^ condNeg) - condNeg
	r4 = (r4 ^ condNeg) - condNeg
	r1 += r0 >> 62
	r0 &= m
	r2 += r1 >> 62
	r1 &= m
	r3 += r2 >> 62
	r2 &= m
	r4 += r3 >> 62
	r3 &= m

	condAdd = r4 >> 63
	r0 += mod[0] & condAdd
	r1 += mod[1] & condAdd
	r2 += mod[2] & condAdd
	r3 += mod[3] & condAdd
	r4 += mod[4] & condAdd
	r1 += r0 >> 62
	r0 &= m
	r2 += r1 >> 62
	r1 &= m
	r3 += r2 >> 62
	r2 &= m
	r4 += r3 >> 62
	r3 &= m

	r.v = [5]int64{r0, r1, r2, r3, r4}
}

// modinv64 replaces x with its inverse modulo mi.modulus in constant time.
// x must be in [0, modulus); the inverse of 0 is 0.
func modinv64(x *signed62, mi *modinfo) {
	var d, e signed62
	e.v[0] = 1
	f := mi.modulus
	g := *x
	zeta := int64(-1)

	// 10 batches of 59 divsteps cover any 256-bit input.
	var t trans2x2
	for i := 0; i < 10; i++ {
		zeta = divsteps59(zeta, uint64(f.v[0]), uint64(g.v[0]), &t)
		updateDE62(&d, &e, &t, mi)
		updateFG62(&f, &g, &t)
	}

	// g is now 0 and f is +/-1, so d is +/- the inverse.
	normalize62(&d, f.v[4], mi)
	*x = d
}

// modinv64Var is modinv64 for public inputs: it stops as soon as g reaches
// zero and shrinks the working length as the limbs empty out.
func modinv64Var(x *signed62, mi *modinfo) {
	var d, e signed62
	e.v[0] = 1
	f := mi.modulus
	g := *x
	eta := int64(-1)
	n := 5

	var t trans2x2
	for {
		eta = divsteps62Var(eta, uint64(f.v[0]), uint64(g.v[0]), &t)
		updateDE62(&d, &e, &t, mi)
		updateFG62Var(n, &f, &g, &t)
		if g.v[0] == 0 {
			var cond int64
			for j := 1; j < n; j++ {
				cond |= g.v[j]
			}
			if cond == 0 {
				break
			}
		}

		// shrink when the top limbs of f and g are both 0 or -1
		fn := f.v[n-1]
		gn := g.v[n-1]
		cond := int64(n-2) >> 63
		cond |= fn ^ (fn >> 63)
		cond |= gn ^ (gn >> 63)
		if cond == 0 {
			f.v[n-2] |= int64(uint64(fn) << 62)
			g.v[n-2] |= int64(uint64(gn) << 62)
			n--
		}
	}

	normalize62(&d, f.v[n-1], mi)
	*x = d
}
