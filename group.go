package p256k1

// GroupElementAffine is a point on y^2 = x^3 + 7 in affine coordinates, or
// the point at infinity.
type GroupElementAffine struct {
	x, y     FieldElement
	infinity bool
}

// GroupElementJacobian is a point in Jacobian coordinates, representing the
// affine point (x/z^2, y/z^3).
type GroupElementJacobian struct {
	x, y, z  FieldElement
	infinity bool
}

// GroupElementStorage is a non-infinity point with packed normalized
// coordinates, the form used by precomputed tables.
type GroupElementStorage struct {
	x, y FieldElementStorage
}

// Largest coordinate magnitudes produced by the Jacobian formulas.
const (
	gejXMagnitudeMax = 4
	gejYMagnitudeMax = 4
)

var (
	// Generator is the standard secp256k1 base point G.
	Generator = GroupElementAffine{
		x: fieldConst(
			0x79BE667E, 0xF9DCBBAC, 0x55A06295, 0xCE870B07,
			0x029BFCDB, 0x2DCE28D9, 0x59F2815B, 0x16F81798,
		),
		y: fieldConst(
			0x483ADA77, 0x26A3C465, 0x5DA4FBFC, 0x0E1108A8,
			0xFD17B448, 0xA6855419, 0x9C47D08F, 0xFB10D4B8,
		),
	}

	fieldCurveB = fieldConst(0, 0, 0, 0, 0, 0, 0, 7)
)

// NewGroupElementAffine returns the point at infinity.
func NewGroupElementAffine() *GroupElementAffine {
	r := &GroupElementAffine{}
	r.setInfinity()
	return r
}

// NewGroupElementJacobian returns the point at infinity.
func NewGroupElementJacobian() *GroupElementJacobian {
	r := &GroupElementJacobian{}
	r.setInfinity()
	return r
}

// setXY sets r to the finite point (x, y). No curve check is done.
func (r *GroupElementAffine) setXY(x, y *FieldElement) {
	r.x = *x
	r.y = *y
	r.infinity = false
}

// setXOVar sets r to the point with x coordinate x whose y has the given
// parity. It reports false when x is not on the curve.
func (r *GroupElementAffine) setXOVar(x *FieldElement, odd bool) bool {
	var x3 FieldElement
	r.x = *x
	r.x.normalizeVar()
	x3.sqr(&r.x)
	x3.mul(&x3, &r.x)
	x3.add(&fieldCurveB)
	r.infinity = false
	if !r.y.sqrt(&x3) {
		return false
	}
	r.y.normalizeVar()
	if r.y.isOdd() != odd {
		r.y.negate(&r.y, 1)
		r.y.normalizeVar()
	}
	return true
}

func (r *GroupElementAffine) isInfinity() bool {
	return r.infinity
}

// isValidVar reports whether r is a finite point on the curve.
func (r *GroupElementAffine) isValidVar() bool {
	if r.infinity {
		return false
	}
	var y2, x3 FieldElement
	y2.sqr(&r.y)
	x3.sqr(&r.x)
	x3.mul(&x3, &r.x)
	x3.add(&fieldCurveB)
	x3.normalizeWeak()
	return x3.equalVar(&y2)
}

// negate sets r = -a.
func (r *GroupElementAffine) negate(a *GroupElementAffine) {
	*r = *a
	r.y.normalizeWeak()
	r.y.negate(&r.y, 1)
}

func (r *GroupElementAffine) setInfinity() {
	r.x = FieldElementZero
	r.y = FieldElementZero
	r.infinity = true
}

// equalVar reports whether r and a are the same point. Public values only.
func (r *GroupElementAffine) equalVar(a *GroupElementAffine) bool {
	if r.infinity || a.infinity {
		return r.infinity == a.infinity
	}
	rx, ry := r.x, r.y
	rx.normalizeVar()
	ry.normalizeVar()
	ax, ay := a.x, a.y
	ax.normalizeVar()
	ay.normalizeVar()
	return rx.cmpVar(&ax) == 0 && ry.cmpVar(&ay) == 0
}

// clear zeroes r, leaving it at infinity.
func (r *GroupElementAffine) clear() {
	r.x.clear()
	r.y.clear()
	r.infinity = true
}

// setGEJ sets r to the affine form of a, in constant time.
func (r *GroupElementAffine) setGEJ(a *GroupElementJacobian) {
	var zi FieldElement
	zi.inv(&a.z)
	r.setGEJZinv(a, &zi)
	r.x.normalize()
	r.y.normalize()
}

// setGEJVar is setGEJ for public points.
func (r *GroupElementAffine) setGEJVar(a *GroupElementJacobian) {
	if a.infinity {
		r.setInfinity()
		return
	}
	var zi FieldElement
	zi.invVar(&a.z)
	r.setGEJZinv(a, &zi)
	r.x.normalizeVar()
	r.y.normalizeVar()
}

// setGEJZinv sets r to the affine form of a given zi = 1/a.z.
func (r *GroupElementAffine) setGEJZinv(a *GroupElementJacobian, zi *FieldElement) {
	var zi2, zi3 FieldElement
	zi2.sqr(zi)
	zi3.mul(&zi2, zi)
	r.x.mul(&a.x, &zi2)
	r.y.mul(&a.y, &zi3)
	r.infinity = a.infinity
}

// setGEZinv scales the coordinates of a by zi^2 and zi^3. Used to move table
// entries onto a shared denominator.
func (r *GroupElementAffine) setGEZinv(a *GroupElementAffine, zi *FieldElement) {
	var zi2, zi3 FieldElement
	zi2.sqr(zi)
	zi3.mul(&zi2, zi)
	r.x.mul(&a.x, &zi2)
	r.y.mul(&a.y, &zi3)
	r.infinity = a.infinity
}

// setAllGEJVar converts a batch of public Jacobian points to affine with a
// single field inversion. Points at infinity map to infinity.
func setAllGEJVar(r []GroupElementAffine, a []GroupElementJacobian) {
	verifyCheck(len(r) == len(a), "setAllGEJVar length mismatch")
	idx := make([]int, 0, len(a))
	zs := make([]FieldElement, 0, len(a))
	for i := range a {
		if a[i].infinity {
			r[i].setInfinity()
			continue
		}
		idx = append(idx, i)
		zs = append(zs, a[i].z)
	}
	batchInverse(zs, zs)
	for j, i := range idx {
		r[i].setGEJZinv(&a[i], &zs[j])
		r[i].x.normalizeVar()
		r[i].y.normalizeVar()
	}
}

// tableSetGlobalZ brings a table of points with known z ratios onto the
// denominator of its last entry. zr[i] is the ratio between the z of entry i
// and entry i-1. The y coordinates end up with magnitude 1.
func tableSetGlobalZ(a []GroupElementAffine, zr []FieldElement) {
	n := len(a)
	if n == 0 {
		return
	}
	i := n - 1
	a[i].y.normalizeWeak()
	zs := zr[i]
	for i > 0 {
		if i != n-1 {
			zs.mul(&zs, &zr[i])
		}
		i--
		a[i].setGEZinv(&a[i], &zs)
	}
}

// toStorage packs the finite point r.
func (r *GroupElementAffine) toStorage(s *GroupElementStorage) {
	verifyCheck(!r.infinity, "toStorage of infinity")
	x, y := r.x, r.y
	x.normalize()
	y.normalize()
	x.toStorage(&s.x)
	y.toStorage(&s.y)
}

func (r *GroupElementAffine) fromStorage(s *GroupElementStorage) {
	r.x.fromStorage(&s.x)
	r.y.fromStorage(&s.y)
	r.infinity = false
}

// cmov sets s = a if flag is 1, in constant time.
func (s *GroupElementStorage) cmov(a *GroupElementStorage, flag int) {
	s.x.cmov(&a.x, flag)
	s.y.cmov(&a.y, flag)
}

// toBytes writes a finite point as 64 bytes, x then y, big-endian.
func (r *GroupElementAffine) toBytes(buf []byte) {
	if len(buf) < 64 {
		panic("p256k1: buffer too small for group element")
	}
	x, y := r.x, r.y
	x.normalize()
	y.normalize()
	x.getB32(buf[:32])
	y.getB32(buf[32:64])
}

// fromBytes reads a point written by toBytes.
func (r *GroupElementAffine) fromBytes(buf []byte) {
	if len(buf) < 64 {
		panic("p256k1: buffer too small for group element")
	}
	r.x.setB32(buf[:32])
	r.y.setB32(buf[32:64])
	r.infinity = false
}

// Jacobian coordinates

func (r *GroupElementJacobian) setInfinity() {
	r.x = FieldElementZero
	r.y = FieldElementZero
	r.z = FieldElementZero
	r.infinity = true
}

func (r *GroupElementJacobian) isInfinity() bool {
	return r.infinity
}

// setGE sets r to the Jacobian form of a, with z = 1.
func (r *GroupElementJacobian) setGE(a *GroupElementAffine) {
	r.x = a.x
	r.y = a.y
	r.z = FieldElementOne
	r.infinity = a.infinity
}

func (r *GroupElementJacobian) clear() {
	r.x.clear()
	r.y.clear()
	r.z.clear()
	r.infinity = true
}

// negate sets r = -a.
func (r *GroupElementJacobian) negate(a *GroupElementJacobian) {
	r.infinity = a.infinity
	r.x = a.x
	r.y = a.y
	r.z = a.z
	r.y.normalizeWeak()
	r.y.negate(&r.y, 1)
}

// rescale multiplies the Jacobian coordinates of r by s, which must be
// nonzero. The represented point does not change.
func (r *GroupElementJacobian) rescale(s *FieldElement) {
	var zz FieldElement
	zz.sqr(s)
	r.x.mul(&r.x, &zz)
	r.y.mul(&r.y, &zz)
	r.y.mul(&r.y, s)
	r.z.mul(&r.z, s)
}

// eqVar reports whether a and b are the same point. Public values only.
func (a *GroupElementJacobian) eqVar(b *GroupElementJacobian) bool {
	var t GroupElementJacobian
	t.negate(a)
	t.addVar(&t, b, nil)
	return t.isInfinity()
}

// eqXVar reports whether the affine x coordinate of the finite point a is x.
// x must have magnitude 1.
func (a *GroupElementJacobian) eqXVar(x *FieldElement) bool {
	verifyCheck(!a.infinity, "eqXVar on infinity")
	var r FieldElement
	r.sqr(&a.z)
	r.mul(&r, x)
	return r.equalVar(&a.x)
}

// double sets r = 2a in constant time. r may alias a.
func (r *GroupElementJacobian) double(a *GroupElementJacobian) {
	countOp(opGroupDouble, 1)
	var l, s, t FieldElement

	r.infinity = a.infinity

	// Z3 = Y1*Z1, L = 3/2 X1^2, T = -X1*Y1^2, X3 = L^2 + 2T,
	// Y3 = -(L*(X3 + T) + Y1^4)
	r.z.mul(&a.z, &a.y)
	s.sqr(&a.y)
	l.sqr(&a.x)
	l.mulInt(3)
	l.half(&l)
	t.negate(&s, 1)
	t.mul(&t, &a.x)
	r.x.sqr(&l)
	r.x.add(&t)
	r.x.add(&t)
	s.sqr(&s)
	t.add(&r.x)
	r.y.mul(&t, &l)
	r.y.add(&s)
	r.y.negate(&r.y, 2)
}

// doubleVar is double for public points. If rzr is not nil it receives the
// ratio of the output z to the input z.
func (r *GroupElementJacobian) doubleVar(a *GroupElementJacobian, rzr *FieldElement) {
	countOp(opGroupVar, 1)
	if a.infinity {
		r.setInfinity()
		if rzr != nil {
			rzr.setInt(1)
		}
		return
	}
	if rzr != nil {
		*rzr = a.y
		rzr.normalizeWeak()
	}
	r.double(a)
}

// addVar sets r = a + b for public points. If rzr is not nil it receives
// r.z/a.z; a must then be finite. r may alias a or b.
func (r *GroupElementJacobian) addVar(a, b *GroupElementJacobian, rzr *FieldElement) {
	countOp(opGroupVar, 1)
	if a.infinity {
		verifyCheck(rzr == nil, "addVar ratio requested for infinity")
		*r = *b
		return
	}
	if b.infinity {
		if rzr != nil {
			rzr.setInt(1)
		}
		*r = *a
		return
	}

	var z22, z12, u1, u2, s1, s2, h, i, h2, h3, t FieldElement
	z22.sqr(&b.z)
	z12.sqr(&a.z)
	u1.mul(&a.x, &z22)
	u2.mul(&b.x, &z12)
	s1.mul(&a.y, &z22)
	s1.mul(&s1, &b.z)
	s2.mul(&b.y, &z12)
	s2.mul(&s2, &a.z)
	h.negate(&u1, 1)
	h.add(&u2)
	i.negate(&s2, 1)
	i.add(&s1)
	if h.normalizesToZeroVar() {
		if i.normalizesToZeroVar() {
			r.doubleVar(a, rzr)
		} else {
			if rzr != nil {
				rzr.setInt(0)
			}
			r.setInfinity()
		}
		return
	}

	r.infinity = false
	t.mul(&h, &b.z)
	if rzr != nil {
		*rzr = t
	}
	r.z.mul(&a.z, &t)

	h2.sqr(&h)
	h2.negate(&h2, 1)
	h3.mul(&h2, &h)
	t.mul(&u1, &h2)

	r.x.sqr(&i)
	r.x.add(&h3)
	r.x.add(&t)
	r.x.add(&t)

	t.add(&r.x)
	r.y.mul(&t, &i)
	h3.mul(&h3, &s1)
	r.y.add(&h3)
}

// addGEVar sets r = a + b for public points, with b affine. If rzr is not
// nil it receives r.z/a.z; a must then be finite.
func (r *GroupElementJacobian) addGEVar(a *GroupElementJacobian, b *GroupElementAffine, rzr *FieldElement) {
	countOp(opGroupVar, 1)
	if a.infinity {
		verifyCheck(rzr == nil, "addGEVar ratio requested for infinity")
		r.setGE(b)
		return
	}
	if b.infinity {
		if rzr != nil {
			rzr.setInt(1)
		}
		*r = *a
		return
	}

	var z12, u2, s2, h, i, h2, h3, t FieldElement
	u1 := a.x
	s1 := a.y
	z12.sqr(&a.z)
	u2.mul(&b.x, &z12)
	s2.mul(&b.y, &z12)
	s2.mul(&s2, &a.z)
	h.negate(&u1, gejXMagnitudeMax)
	h.add(&u2)
	i.negate(&s2, 1)
	i.add(&s1)
	if h.normalizesToZeroVar() {
		if i.normalizesToZeroVar() {
			r.doubleVar(a, rzr)
		} else {
			if rzr != nil {
				rzr.setInt(0)
			}
			r.setInfinity()
		}
		return
	}

	r.infinity = false
	if rzr != nil {
		*rzr = h
	}
	r.z.mul(&a.z, &h)

	h2.sqr(&h)
	h2.negate(&h2, 1)
	h3.mul(&h2, &h)
	t.mul(&u1, &h2)

	r.x.sqr(&i)
	r.x.add(&h3)
	r.x.add(&t)
	r.x.add(&t)

	t.add(&r.x)
	r.y.mul(&t, &i)
	h3.mul(&h3, &s1)
	r.y.add(&h3)
}

// addZinvVar sets r = a + b where b is given on a curve isomorphism with
// z = 1/bzinv, that is b stands for (b.x, b.y, 1/bzinv). Public points only.
func (r *GroupElementJacobian) addZinvVar(a *GroupElementJacobian, b *GroupElementAffine, bzinv *FieldElement) {
	if a.infinity {
		var bzinv2, bzinv3 FieldElement
		r.infinity = b.infinity
		bzinv2.sqr(bzinv)
		bzinv3.mul(&bzinv2, bzinv)
		r.x.mul(&b.x, &bzinv2)
		r.y.mul(&b.y, &bzinv3)
		r.z.setInt(1)
		return
	}
	if b.infinity {
		*r = *a
		return
	}

	var az, z12, u2, s2, h, i, h2, h3, t FieldElement
	u1 := a.x
	s1 := a.y
	az.mul(&a.z, bzinv)
	z12.sqr(&az)
	u2.mul(&b.x, &z12)
	s2.mul(&b.y, &z12)
	s2.mul(&s2, &az)
	h.negate(&u1, gejXMagnitudeMax)
	h.add(&u2)
	i.negate(&s2, 1)
	i.add(&s1)
	if h.normalizesToZeroVar() {
		if i.normalizesToZeroVar() {
			r.doubleVar(a, nil)
		} else {
			r.setInfinity()
		}
		return
	}

	r.infinity = false
	r.z.mul(&a.z, &h)

	h2.sqr(&h)
	h2.negate(&h2, 1)
	h3.mul(&h2, &h)
	t.mul(&u1, &h2)

	r.x.sqr(&i)
	r.x.add(&h3)
	r.x.add(&t)
	r.x.add(&t)

	t.add(&r.x)
	r.y.mul(&t, &i)
	h3.mul(&h3, &s1)
	r.y.add(&h3)
}

// addGE sets r = a + b in constant time. b must be finite; a may be
// infinity, and a == b and a == -b are handled without branching. r may
// alias a.
func (r *GroupElementJacobian) addGE(a *GroupElementJacobian, b *GroupElementAffine) {
	countOp(opGroupAddGE, 1)
	verifyCheck(!b.infinity, "addGE with infinite b")

	var zz, u2, s2, t, tt, m, n, q, rr, mAlt, rrAlt FieldElement
	u1 := a.x
	s1 := a.y
	aInf := boolToInt(a.infinity)

	// U1 = X1, U2 = X2*Z1^2, S1 = Y1, S2 = Y2*Z1^3
	zz.sqr(&a.z)
	u2.mul(&b.x, &zz)
	s2.mul(&b.y, &zz)
	s2.mul(&s2, &a.z)

	// T = U1+U2, M = S1+S2, R = T^2 - U1*U2
	t = u1
	t.add(&u2)
	m = s1
	m.add(&s2)
	rr.sqr(&t)
	mAlt.negate(&u2, 1)
	tt.mul(&u1, &mAlt)
	rr.add(&tt)

	// When M is zero but the points differ (x1 = beta^k x2, y1 = -y2),
	// R/M is undefined; (y1-y2)/(x1-x2) is used instead.
	degenerate := boolToInt(m.normalizesToZero())
	rrAlt = s1
	rrAlt.mulInt(2)
	mAlt.add(&u1)

	rrAlt.cmov(&rr, degenerate^1)
	mAlt.cmov(&m, degenerate^1)

	// n = Malt^2, Q = -T*Malt^2
	n.sqr(&mAlt)
	q.negate(&t, gejXMagnitudeMax+1)
	q.mul(&q, &n)

	// either M == Malt or M == 0, so M^3*Malt is Malt^4 or 0
	n.sqr(&n)
	n.cmov(&m, degenerate)

	t.sqr(&rrAlt)
	r.z.mul(&a.z, &mAlt)
	t.add(&q)
	r.x = t
	t.mulInt(2)
	t.add(&q)
	t.mul(&t, &rrAlt)
	t.add(&n)
	r.y.negate(&t, gejYMagnitudeMax+2)
	r.y.half(&r.y)

	// a at infinity: the sum is b
	r.x.cmov(&b.x, aInf)
	r.y.cmov(&b.y, aInf)
	r.z.cmov(&FieldElementOne, aInf)

	r.infinity = r.z.normalizesToZero()
}
