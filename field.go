package p256k1

import "unsafe"

// FieldElement represents a field element modulo the secp256k1 field prime
// p = 2^256 - 2^32 - 977, as five 52-bit limbs.
//
// The limbs hold a redundant representative: sum(n[i] << (i*52)) is congruent
// to the value but may exceed p. magnitude bounds each limb by
// 2*magnitude*(2^52-1) (2^48-1 for the top limb); normalized means the limbs
// hold the unique representative in [0, p).
type FieldElement struct {
	n [5]uint64

	magnitude  int
	normalized bool
}

// FieldElementStorage is a normalized field element packed into four 64-bit
// limbs, used by precomputed tables.
type FieldElementStorage struct {
	n [4]uint64
}

const (
	limbMax  = 0xFFFFFFFFFFFFF // 2^52 - 1
	limb4Max = 0x0FFFFFFFFFFFF // 2^48 - 1

	// 2^256 mod p
	fieldReductionConstant = 0x1000003D1
	// fieldReductionConstant << 4, the fold constant of the multiplication
	fieldReductionConstantShifted = 0x1000003D10

	// limb 0 of p; limbs 1..3 are limbMax and limb 4 is limb4Max
	fieldP0 = 0xFFFFEFFFFFC2F
)

var (
	// FieldElementOne is the field element 1.
	FieldElementOne = FieldElement{n: [5]uint64{1}, magnitude: 1, normalized: true}

	// FieldElementZero is the field element 0.
	FieldElementZero = FieldElement{normalized: true}
)

// fieldConst builds a normalized field element from eight 32-bit words, most
// significant first. The value must be below p.
func fieldConst(d7, d6, d5, d4, d3, d2, d1, d0 uint32) FieldElement {
	return FieldElement{
		n: [5]uint64{
			uint64(d0) | uint64(d1&0xFFFFF)<<32,
			uint64(d1)>>20 | uint64(d2)<<12 | uint64(d3&0xFF)<<44,
			uint64(d3)>>8 | uint64(d4&0xFFFFFFF)<<24,
			uint64(d4)>>28 | uint64(d5)<<4 | uint64(d6&0xFFFF)<<36,
			uint64(d6)>>16 | uint64(d7)<<16,
		},
		magnitude:  1,
		normalized: true,
	}
}

// setB32Mod sets r from 32 big-endian bytes without reducing. The result has
// magnitude 1 and is not normalized.
func (r *FieldElement) setB32Mod(b []byte) {
	d := readLimbsBE(b)
	r.n[0] = d[0] & limbMax
	r.n[1] = (d[0]>>52 | d[1]<<12) & limbMax
	r.n[2] = (d[1]>>40 | d[2]<<24) & limbMax
	r.n[3] = (d[2]>>28 | d[3]<<36) & limbMax
	r.n[4] = d[3] >> 16
	r.magnitude = 1
	r.normalized = false
}

// setB32Limit sets r from 32 big-endian bytes and reports whether the
// encoded integer was below p. On success r is normalized.
func (r *FieldElement) setB32Limit(b []byte) bool {
	r.setB32Mod(b)
	over := ctEq(r.n[4], limb4Max) & ctEq(r.n[3]&r.n[2]&r.n[1], limbMax) & ctGe(r.n[0], fieldP0)
	r.normalized = over == 0
	return over == 0
}

// setB32 sets r from 32 big-endian bytes, reducing modulo p. The result is
// normalized; overflow reports whether the encoded integer was >= p.
func (r *FieldElement) setB32(b []byte) (overflow bool) {
	overflow = !r.setB32Limit(b)
	r.normalize()
	return
}

// getB32 writes the normalized element r as 32 big-endian bytes.
func (r *FieldElement) getB32(b []byte) {
	r.verifyNormalized()
	var d [4]uint64
	d[0] = r.n[0] | r.n[1]<<52
	d[1] = r.n[1]>>12 | r.n[2]<<40
	d[2] = r.n[2]>>24 | r.n[3]<<28
	d[3] = r.n[3]>>36 | r.n[4]<<16
	writeLimbsBE(b, &d)
}

// setInt sets r to a small non-negative integer.
func (r *FieldElement) setInt(a int) {
	verifyCheck(a >= 0 && a <= 0x7FFF, "setInt out of range")
	r.n = [5]uint64{uint64(a)}
	r.magnitude = boolToInt(a != 0)
	r.normalized = true
}

// clear zeroes r.
func (r *FieldElement) clear() {
	memclear(unsafe.Pointer(&r.n), unsafe.Sizeof(r.n))
	r.magnitude = 0
	r.normalized = true
}

// normalize reduces r to its unique representative in [0, p). The final
// subtraction of p is always computed and masked in, so the running time does
// not depend on the value.
func (r *FieldElement) normalize() {
	countOp(opFieldNormalize, 1)
	r.verify()
	t0, t1, t2, t3, t4 := r.n[0], r.n[1], r.n[2], r.n[3], r.n[4]

	// reduce t4 first so the first pass carries at most once into bit 256
	x := t4 >> 48
	t4 &= limb4Max

	t0 += x * fieldReductionConstant
	t1 += t0 >> 52
	t0 &= limbMax
	t2 += t1 >> 52
	t1 &= limbMax
	m := t1
	t3 += t2 >> 52
	t2 &= limbMax
	m &= t2
	t4 += t3 >> 52
	t3 &= limbMax
	m &= t3

	// x = 1 iff the value is >= p
	x = (t4 >> 48) | (ctEq(t4, limb4Max) & ctEq(m, limbMax) & ctGe(t0, fieldP0))

	t0 += x * fieldReductionConstant
	t1 += t0 >> 52
	t0 &= limbMax
	t2 += t1 >> 52
	t1 &= limbMax
	t3 += t2 >> 52
	t2 &= limbMax
	t4 += t3 >> 52
	t3 &= limbMax

	// drop the 2^256 carried in by the final reduction, if any
	t4 &= limb4Max

	r.n = [5]uint64{t0, t1, t2, t3, t4}
	r.magnitude = 1
	r.normalized = true
}

// normalizeWeak reduces r to magnitude 1 without making it canonical.
func (r *FieldElement) normalizeWeak() {
	r.verify()
	t0, t1, t2, t3, t4 := r.n[0], r.n[1], r.n[2], r.n[3], r.n[4]

	x := t4 >> 48
	t4 &= limb4Max

	t0 += x * fieldReductionConstant
	t1 += t0 >> 52
	t0 &= limbMax
	t2 += t1 >> 52
	t1 &= limbMax
	t3 += t2 >> 52
	t2 &= limbMax
	t4 += t3 >> 52
	t3 &= limbMax

	r.n = [5]uint64{t0, t1, t2, t3, t4}
	r.magnitude = 1
}

// normalizeVar is normalize for public values: the final reduction only runs
// when needed.
func (r *FieldElement) normalizeVar() {
	r.verify()
	t0, t1, t2, t3, t4 := r.n[0], r.n[1], r.n[2], r.n[3], r.n[4]

	x := t4 >> 48
	t4 &= limb4Max

	t0 += x * fieldReductionConstant
	t1 += t0 >> 52
	t0 &= limbMax
	t2 += t1 >> 52
	t1 &= limbMax
	m := t1
	t3 += t2 >> 52
	t2 &= limbMax
	m &= t2
	t4 += t3 >> 52
	t3 &= limbMax
	m &= t3

	if t4>>48 != 0 || (t4 == limb4Max && m == limbMax && t0 >= fieldP0) {
		t0 += fieldReductionConstant
		t1 += t0 >> 52
		t0 &= limbMax
		t2 += t1 >> 52
		t1 &= limbMax
		t3 += t2 >> 52
		t2 &= limbMax
		t4 += t3 >> 52
		t3 &= limbMax
		t4 &= limb4Max
	}

	r.n = [5]uint64{t0, t1, t2, t3, t4}
	r.magnitude = 1
	r.normalized = true
}

// normalizesToZero reports whether r is congruent to 0 mod p, in constant
// time. r is not modified.
func (r *FieldElement) normalizesToZero() bool {
	r.verify()
	t0, t1, t2, t3, t4 := r.n[0], r.n[1], r.n[2], r.n[3], r.n[4]

	x := t4 >> 48
	t4 &= limb4Max

	// z0 tracks a raw value of 0, z1 a raw value of p
	t0 += x * fieldReductionConstant
	t1 += t0 >> 52
	t0 &= limbMax
	z0 := t0
	z1 := t0 ^ 0x1000003D0
	t2 += t1 >> 52
	t1 &= limbMax
	z0 |= t1
	z1 &= t1
	t3 += t2 >> 52
	t2 &= limbMax
	z0 |= t2
	z1 &= t2
	t4 += t3 >> 52
	t3 &= limbMax
	z0 |= t3
	z1 &= t3
	z0 |= t4
	z1 &= t4 ^ 0xF000000000000

	return (ctIsZero(z0) | ctEq(z1, limbMax)) != 0
}

// normalizesToZeroVar is normalizesToZero for public values. It usually
// decides after the first limb.
func (r *FieldElement) normalizesToZeroVar() bool {
	r.verify()
	t0, t4 := r.n[0], r.n[4]

	x := t4 >> 48
	t0 += x * fieldReductionConstant

	z0 := t0 & limbMax
	z1 := z0 ^ 0x1000003D0
	if z0 != 0 && z1 != limbMax {
		return false
	}

	t1, t2, t3 := r.n[1], r.n[2], r.n[3]
	t4 &= limb4Max

	t1 += t0 >> 52
	t2 += t1 >> 52
	t1 &= limbMax
	z0 |= t1
	z1 &= t1
	t3 += t2 >> 52
	t2 &= limbMax
	z0 |= t2
	z1 &= t2
	t4 += t3 >> 52
	t3 &= limbMax
	z0 |= t3
	z1 &= t3
	z0 |= t4
	z1 &= t4 ^ 0xF000000000000

	return z0 == 0 || z1 == limbMax
}

// isZero reports whether the normalized element r is 0. Constant time.
func (r *FieldElement) isZero() bool {
	r.verifyNormalized()
	return ctIsZero(r.n[0]|r.n[1]|r.n[2]|r.n[3]|r.n[4]) != 0
}

// isOdd reports whether the normalized element r is odd.
func (r *FieldElement) isOdd() bool {
	r.verifyNormalized()
	return r.n[0]&1 == 1
}

// equal reports whether r and a represent the same value, in constant time.
// r must have magnitude at most 1 and a at most 31; neither needs to be
// normalized.
func (r *FieldElement) equal(a *FieldElement) bool {
	r.verifyMagnitude(1)
	a.verifyMagnitude(31)
	var na FieldElement
	na.negate(r, 1)
	na.add(a)
	return na.normalizesToZero()
}

// equalVar is equal for public values.
func (r *FieldElement) equalVar(a *FieldElement) bool {
	r.verifyMagnitude(1)
	a.verifyMagnitude(31)
	var na FieldElement
	na.negate(r, 1)
	na.add(a)
	return na.normalizesToZeroVar()
}

// cmpVar compares two normalized elements, returning -1, 0 or 1. Public
// values only.
func (r *FieldElement) cmpVar(a *FieldElement) int {
	r.verifyNormalized()
	a.verifyNormalized()
	for i := 4; i >= 0; i-- {
		if r.n[i] > a.n[i] {
			return 1
		}
		if r.n[i] < a.n[i] {
			return -1
		}
	}
	return 0
}

// negate sets r = -a. a must have magnitude at most m; the result has
// magnitude m+1.
func (r *FieldElement) negate(a *FieldElement, m int) {
	verifyCheck(m >= 0 && m <= 31, "negate magnitude out of range")
	a.verifyMagnitude(m)
	k := 2 * uint64(m+1)
	r.n[0] = fieldP0*k - a.n[0]
	r.n[1] = limbMax*k - a.n[1]
	r.n[2] = limbMax*k - a.n[2]
	r.n[3] = limbMax*k - a.n[3]
	r.n[4] = limb4Max*k - a.n[4]
	r.magnitude = m + 1
	r.normalized = false
	r.verify()
}

// add sets r += a. The magnitudes add up.
func (r *FieldElement) add(a *FieldElement) {
	verifyCheck(r.magnitude+a.magnitude <= 32, "add magnitude overflow")
	r.n[0] += a.n[0]
	r.n[1] += a.n[1]
	r.n[2] += a.n[2]
	r.n[3] += a.n[3]
	r.n[4] += a.n[4]
	r.magnitude += a.magnitude
	r.normalized = false
}

// mulInt sets r *= a for a small integer a. The magnitude is multiplied by a.
func (r *FieldElement) mulInt(a int) {
	verifyCheck(a >= 0 && a <= 32 && r.magnitude*a <= 32, "mulInt magnitude overflow")
	ua := uint64(a)
	r.n[0] *= ua
	r.n[1] *= ua
	r.n[2] *= ua
	r.n[3] *= ua
	r.n[4] *= ua
	r.magnitude *= a
	r.normalized = false
}

// half sets r = a/2 mod p. Output magnitude is (m>>1)+1.
func (r *FieldElement) half(a *FieldElement) {
	a.verifyMagnitude(31)
	t0, t1, t2, t3, t4 := a.n[0], a.n[1], a.n[2], a.n[3], a.n[4]
	// add p when odd, so the sum is even
	mask := -(t0 & 1) >> 12
	t0 += fieldP0 & mask
	t1 += mask
	t2 += mask
	t3 += mask
	t4 += mask >> 4

	r.n[0] = t0>>1 + (t1&1)<<51
	r.n[1] = t1>>1 + (t2&1)<<51
	r.n[2] = t2>>1 + (t3&1)<<51
	r.n[3] = t3>>1 + (t4&1)<<51
	r.n[4] = t4 >> 1
	r.magnitude = a.magnitude>>1 + 1
	r.normalized = false
}

// cmov sets r = a if flag is 1 and leaves r alone if flag is 0, without
// branching on flag. The magnitude bookkeeping is conservative.
func (r *FieldElement) cmov(a *FieldElement, flag int) {
	countOp(opFieldCmov, 1)
	mask := ctMask(flag)
	r.n[0] = ctSelect(mask, a.n[0], r.n[0])
	r.n[1] = ctSelect(mask, a.n[1], r.n[1])
	r.n[2] = ctSelect(mask, a.n[2], r.n[2])
	r.n[3] = ctSelect(mask, a.n[3], r.n[3])
	r.n[4] = ctSelect(mask, a.n[4], r.n[4])
	if a.magnitude > r.magnitude {
		r.magnitude = a.magnitude
	}
	r.normalized = r.normalized && a.normalized
}

// toStorage packs the normalized element r into s.
func (r *FieldElement) toStorage(s *FieldElementStorage) {
	r.verifyNormalized()
	s.n[0] = r.n[0] | r.n[1]<<52
	s.n[1] = r.n[1]>>12 | r.n[2]<<40
	s.n[2] = r.n[2]>>24 | r.n[3]<<28
	s.n[3] = r.n[3]>>36 | r.n[4]<<16
}

// fromStorage unpacks s into r. The result is normalized.
func (r *FieldElement) fromStorage(s *FieldElementStorage) {
	r.n[0] = s.n[0] & limbMax
	r.n[1] = (s.n[0]>>52 | s.n[1]<<12) & limbMax
	r.n[2] = (s.n[1]>>40 | s.n[2]<<24) & limbMax
	r.n[3] = (s.n[2]>>28 | s.n[3]<<36) & limbMax
	r.n[4] = s.n[3] >> 16
	r.magnitude = 1
	r.normalized = true
}

// cmov sets s = a if flag is 1, in constant time.
func (s *FieldElementStorage) cmov(a *FieldElementStorage, flag int) {
	mask := ctMask(flag)
	s.n[0] = ctSelect(mask, a.n[0], s.n[0])
	s.n[1] = ctSelect(mask, a.n[1], s.n[1])
	s.n[2] = ctSelect(mask, a.n[2], s.n[2])
	s.n[3] = ctSelect(mask, a.n[3], s.n[3])
}
