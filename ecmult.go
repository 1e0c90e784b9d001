package p256k1

import "sync"

const (
	// wNAF window for the variable point; its table holds 8 odd multiples.
	windowA = 5

	// WindowGDefault is the default wNAF window for the G tables.
	WindowGDefault = 15
	// WindowGMin and WindowGMax bound the configurable G window.
	WindowGMin = 2
	WindowGMax = 15

	// digits needed for a 129-bit wNAF (128-bit halves plus a carry)
	wnafBits = 129
)

// ecmultTableSize is the number of odd multiples in a table for window w.
func ecmultTableSize(w int) int {
	return 1 << (w - 2)
}

// EcmultContext holds the odd-multiple tables of G and 2^128*G used by the
// variable-time double multiplication. The tables are immutable once built.
type EcmultContext struct {
	windowG int
	preG    []GroupElementStorage
	preG128 []GroupElementStorage
}

type ecmultTables struct {
	preG, preG128 []GroupElementStorage
}

var (
	// built tables, shared by every context using the same window
	ecmultTableCache   = map[int]*ecmultTables{}
	ecmultTableCacheMu sync.Mutex
)

// NewEcmultContext returns a context whose G tables use window w, building
// them on first use of that window.
func NewEcmultContext(w int) *EcmultContext {
	verifyCheck(w >= WindowGMin && w <= WindowGMax, "window out of range")
	ecmultTableCacheMu.Lock()
	t, ok := ecmultTableCache[w]
	if !ok {
		t = &ecmultTables{
			preG:    make([]GroupElementStorage, ecmultTableSize(w)),
			preG128: make([]GroupElementStorage, ecmultTableSize(w)),
		}
		computeOddMultiplesStorage(t.preG, t.preG128, w, &Generator)
		ecmultTableCache[w] = t
	}
	ecmultTableCacheMu.Unlock()
	return &EcmultContext{windowG: w, preG: t.preG, preG128: t.preG128}
}

func (ctx *EcmultContext) isBuilt() bool {
	return ctx != nil && ctx.preG != nil
}

// clear drops the tables.
func (ctx *EcmultContext) clear() {
	ctx.preG = nil
	ctx.preG128 = nil
}

// computeOddMultiplesStorage fills table with the odd multiples gen, 3gen,
// 5gen, ... and table128 with the same multiples of 2^128*gen.
func computeOddMultiplesStorage(table, table128 []GroupElementStorage, w int, gen *GroupElementAffine) {
	var gj GroupElementJacobian
	gj.setGE(gen)
	computeOddMultiples(table, &gj)
	for i := 0; i < 128; i++ {
		gj.doubleVar(&gj, nil)
	}
	computeOddMultiples(table128, &gj)
}

func computeOddMultiples(table []GroupElementStorage, gen *GroupElementJacobian) {
	n := len(table)
	var ge, dgen GroupElementAffine
	var d GroupElementJacobian
	ge.setGEJVar(gen)
	d.doubleVar(gen, nil)
	dgen.setGEJVar(&d)

	pts := make([]GroupElementJacobian, n)
	pts[0].setGE(&ge)
	for j := 1; j < n; j++ {
		pts[j].addGEVar(&pts[j-1], &dgen, nil)
	}
	aff := make([]GroupElementAffine, n)
	setAllGEJVar(aff, pts)
	for j := range aff {
		aff[j].toStorage(&table[j])
	}
}

// oddMultiplesTable computes pre[i] = (2i+1)*a on the curve isomorphism with
// constant C = (2a).z, so that every entry can be used as an affine point.
// zr[i] receives the z ratio between entry i and i-1 (zr[0] = C) and z the
// true z of the last entry. a must be finite.
func oddMultiplesTable(pre []GroupElementAffine, zr []FieldElement, z *FieldElement, a *GroupElementJacobian) {
	verifyCheck(!a.infinity, "odd multiples of infinity")
	var d, ai GroupElementJacobian
	var dGE GroupElementAffine

	d.doubleVar(a, nil)

	// phi(x, y, z) = (x*C^2, y*C^3, z): d becomes (d.x, d.y, 1)
	dGE.setXY(&d.x, &d.y)
	pre[0].setGEJZinv(a, &d.z)
	ai.setGE(&pre[0])
	ai.z = a.z
	zr[0] = d.z

	for i := 1; i < len(pre); i++ {
		ai.addGEVar(&ai, &dGE, &zr[i])
		pre[i].setXY(&ai.x, &ai.y)
	}

	// multiplying the last z by C undoes the isomorphism for the whole table
	z.mul(&ai.z, &d.z)
}

// wnaf writes the width-w NAF of a into out (len(out) digits) and returns the
// index of the highest nonzero digit plus one. Each nonzero digit is odd and
// at most 2^(w-1)-1 in absolute value, and any w consecutive digits hold at
// most one nonzero. a is read as negative when its top bit is set.
func wnaf(out []int, a *Scalar, w int) int {
	verifyCheck(len(out) <= 256 && w >= 2 && w <= 31, "wnaf parameters")
	n := len(out)
	for i := range out {
		out[i] = 0
	}

	s := *a
	sign := 1
	if s.getBits(255, 1) != 0 {
		s.negate(&s)
		sign = -1
	}

	lastSetBit := -1
	carry := 0
	for bit := 0; bit < n; {
		if int(s.getBits(uint(bit), 1)) == carry {
			bit++
			continue
		}
		now := w
		if now > n-bit {
			now = n - bit
		}
		word := int(s.getBitsVar(uint(bit), uint(now))) + carry
		carry = (word >> (w - 1)) & 1
		word -= carry << w

		out[bit] = sign * word
		lastSetBit = bit
		bit += now
	}
	verifyCheck(carry == 0, "wnaf carry left over")
	return lastSetBit + 1
}

// tableGetGE fetches the multiple n*P (n odd, possibly negative) from a table
// of odd multiples. The y coordinates of pre must have magnitude 1.
func tableGetGE(r *GroupElementAffine, pre []GroupElementAffine, n int) {
	if n > 0 {
		*r = pre[(n-1)/2]
		return
	}
	*r = pre[(-n-1)/2]
	r.y.negate(&r.y, 1)
}

// tableGetGELambda is tableGetGE for lambda*P, with x holding beta*x of
// each entry.
func tableGetGELambda(r *GroupElementAffine, pre []GroupElementAffine, x []FieldElement, n int) {
	if n > 0 {
		r.setXY(&x[(n-1)/2], &pre[(n-1)/2].y)
		return
	}
	r.setXY(&x[(-n-1)/2], &pre[(-n-1)/2].y)
	r.y.negate(&r.y, 1)
}

func tableGetGEStorage(r *GroupElementAffine, pre []GroupElementStorage, n int) {
	if n > 0 {
		r.fromStorage(&pre[(n-1)/2])
		return
	}
	r.fromStorage(&pre[(-n-1)/2])
	r.y.negate(&r.y, 1)
}

// straussPoint is the per-point state of ecmultStrauss.
type straussPoint struct {
	wnafNA1   [wnafBits]int
	wnafNALam [wnafBits]int
	bitsNA1   int
	bitsNALam int
}

// ecmult sets r = na*a + ng*G. ng may be nil. Variable time: use only with
// public inputs.
func (ctx *EcmultContext) ecmult(r *GroupElementJacobian, a *GroupElementJacobian, na, ng *Scalar) {
	ctx.ecmultStrauss(r, []GroupElementJacobian{*a}, []Scalar{*na}, ng)
}

// ecmultStrauss sets r = sum(na[i]*a[i]) + ng*G by interleaving the wNAFs of
// the lambda-split na[i] and the 128-bit split of ng over one doubling chain.
// ng may be nil. Variable time.
func (ctx *EcmultContext) ecmultStrauss(r *GroupElementJacobian, a []GroupElementJacobian, na []Scalar, ng *Scalar) {
	verifyCheck(len(a) == len(na), "ecmultStrauss length mismatch")
	tsA := ecmultTableSize(windowA)

	var (
		tmpa  GroupElementAffine
		z     FieldElement
		bits  int
		state = make([]straussPoint, 0, len(a))
		preA  = make([]GroupElementAffine, 0, tsA*len(a))
		aux   = make([]FieldElement, 0, tsA*len(a))
	)

	z.setInt(1)
	for np := range a {
		if na[np].isZero() || a[np].infinity {
			continue
		}
		no := len(state)
		state = append(state, straussPoint{})
		ps := &state[no]

		var na1, naLam Scalar
		splitLambda(&na1, &naLam, &na[np])
		ps.bitsNA1 = wnaf(ps.wnafNA1[:], &na1, windowA)
		ps.bitsNALam = wnaf(ps.wnafNALam[:], &naLam, windowA)
		if ps.bitsNA1 > bits {
			bits = ps.bitsNA1
		}
		if ps.bitsNALam > bits {
			bits = ps.bitsNALam
		}

		// every table is chained onto the z of the one before it, so the
		// whole set shares the final denominator z
		tmp := a[np]
		if no > 0 {
			tmp.rescale(&z)
		}
		preA = preA[:tsA*(no+1)]
		aux = aux[:tsA*(no+1)]
		oddMultiplesTable(preA[tsA*no:], aux[tsA*no:], &z, &tmp)
		if no > 0 {
			aux[tsA*no].mul(&aux[tsA*no], &a[np].z)
		}
	}

	if len(state) > 0 {
		tableSetGlobalZ(preA, aux)
	}
	for i := range preA {
		aux[i].mul(&preA[i].x, &betaConstant)
	}

	var (
		ng1, ng128         Scalar
		wnafNG1, wnafNG128 [wnafBits]int
		bitsNG1, bitsNG128 int
	)
	if ng != nil {
		ng.split128(&ng1, &ng128)
		bitsNG1 = wnaf(wnafNG1[:], &ng1, ctx.windowG)
		bitsNG128 = wnaf(wnafNG128[:], &ng128, ctx.windowG)
		if bitsNG1 > bits {
			bits = bitsNG1
		}
		if bitsNG128 > bits {
			bits = bitsNG128
		}
	}

	r.setInfinity()
	for i := bits - 1; i >= 0; i-- {
		r.doubleVar(r, nil)
		for np := range state {
			ps := &state[np]
			pre := preA[tsA*np : tsA*(np+1)]
			if i < ps.bitsNA1 {
				if n := ps.wnafNA1[i]; n != 0 {
					tableGetGE(&tmpa, pre, n)
					r.addGEVar(r, &tmpa, nil)
				}
			}
			if i < ps.bitsNALam {
				if n := ps.wnafNALam[i]; n != 0 {
					tableGetGELambda(&tmpa, pre, aux[tsA*np:tsA*(np+1)], n)
					r.addGEVar(r, &tmpa, nil)
				}
			}
		}
		// the G tables are affine, which on the shared isomorphism means a
		// z of 1/z
		if i < bitsNG1 {
			if n := wnafNG1[i]; n != 0 {
				tableGetGEStorage(&tmpa, ctx.preG, n)
				r.addZinvVar(r, &tmpa, &z)
			}
		}
		if i < bitsNG128 {
			if n := wnafNG128[i]; n != 0 {
				tableGetGEStorage(&tmpa, ctx.preG128, n)
				r.addZinvVar(r, &tmpa, &z)
			}
		}
	}

	if !r.infinity {
		r.z.mul(&r.z, &z)
	}
}
