package p256k1

import (
	"math/bits"
	"unsafe"
)

// Scalar is an integer modulo the group order n, held exactly (always fully
// reduced) in four 64-bit limbs, least significant first.
type Scalar struct {
	d [4]uint64
}

const (
	// limbs of the group order n
	scalarN0 = 0xBFD25E8CD0364141
	scalarN1 = 0xBAAEDCE6AF48A03B
	scalarN2 = 0xFFFFFFFFFFFFFFFE
	scalarN3 = 0xFFFFFFFFFFFFFFFF

	// limbs of 2^256 - n
	scalarNC0 = ^uint64(scalarN0) + 1
	scalarNC1 = ^uint64(scalarN1)
	scalarNC2 = 1

	// limbs of n/2
	scalarNH0 = 0xDFE92F46681B20A0
	scalarNH1 = 0x5D576E7357A4501D
	scalarNH2 = 0xFFFFFFFFFFFFFFFF
	scalarNH3 = 0x7FFFFFFFFFFFFFFF
)

var (
	// ScalarZero is the scalar 0.
	ScalarZero = Scalar{}

	// ScalarOne is the scalar 1.
	ScalarOne = Scalar{d: [4]uint64{1, 0, 0, 0}}
)

// NewScalar decodes a 32-byte big-endian scalar, reducing it modulo n.
func NewScalar(b32 []byte) *Scalar {
	s := &Scalar{}
	s.setB32(b32)
	return s
}

// setB32 sets r from 32 big-endian bytes reduced modulo n. overflow reports
// whether the encoded integer was >= n.
func (r *Scalar) setB32(b []byte) (overflow bool) {
	r.d = readLimbsBE(b)
	return r.reduce(r.checkOverflow()) != 0
}

// setB32SecKey sets r from 32 bytes and reports whether they encode a valid
// secret key, that is a value in [1, n).
func (r *Scalar) setB32SecKey(b []byte) bool {
	overflow := r.setB32(b)
	return !overflow && !r.isZero()
}

// getB32 writes r as 32 big-endian bytes.
func (r *Scalar) getB32(b []byte) {
	writeLimbsBE(b, &r.d)
}

// setInt sets r to a small integer.
func (r *Scalar) setInt(v uint) {
	r.d = [4]uint64{uint64(v)}
}

// getBits returns count bits starting at offset. The bits must lie within a
// single limb.
func (r *Scalar) getBits(offset, count uint) uint32 {
	verifyCheck((offset+count-1)>>6 == offset>>6, "getBits crosses a limb")
	return uint32((r.d[offset>>6] >> (offset & 0x3F)) & (uint64(1)<<count - 1))
}

// getBitsVar is getBits for a range that may straddle two limbs. The branch
// depends only on offset and count.
func (r *Scalar) getBitsVar(offset, count uint) uint32 {
	verifyCheck(count < 32 && offset+count <= 256, "getBitsVar out of range")
	if (offset+count-1)>>6 == offset>>6 {
		return r.getBits(offset, count)
	}
	lo := r.d[offset>>6] >> (offset & 0x3F)
	hi := r.d[offset>>6+1] << (64 - offset&0x3F)
	return uint32((lo | hi) & (uint64(1)<<count - 1))
}

// checkOverflow returns 1 if r >= n and 0 otherwise, without branching.
func (r *Scalar) checkOverflow() uint64 {
	var yes, no uint64
	no |= 1 ^ ctGe(r.d[3], scalarN3)
	no |= 1 ^ ctGe(r.d[2], scalarN2)
	yes |= (1 ^ ctGe(scalarN2, r.d[2])) &^ no
	no |= 1 ^ ctGe(r.d[1], scalarN1)
	yes |= (1 ^ ctGe(scalarN1, r.d[1])) &^ no
	yes |= ctGe(r.d[0], scalarN0) &^ no
	return yes
}

// reduce subtracts n from r once if overflow is 1. Returns overflow.
func (r *Scalar) reduce(overflow uint64) uint64 {
	verifyCheck(overflow <= 1, "reduce overflow not a bit")
	var c uint64
	r.d[0], c = bits.Add64(r.d[0], overflow*scalarNC0, 0)
	r.d[1], c = bits.Add64(r.d[1], overflow*scalarNC1, c)
	r.d[2], c = bits.Add64(r.d[2], overflow*scalarNC2, c)
	r.d[3], _ = bits.Add64(r.d[3], 0, c)
	return overflow
}

// add sets r = a + b mod n and reports whether the sum wrapped.
func (r *Scalar) add(a, b *Scalar) bool {
	var c uint64
	r.d[0], c = bits.Add64(a.d[0], b.d[0], 0)
	r.d[1], c = bits.Add64(a.d[1], b.d[1], c)
	r.d[2], c = bits.Add64(a.d[2], b.d[2], c)
	r.d[3], c = bits.Add64(a.d[3], b.d[3], c)
	overflow := c + r.checkOverflow()
	verifyCheck(overflow <= 1, "scalar add overflow")
	r.reduce(overflow)
	return overflow != 0
}

// sub sets r = a - b mod n.
func (r *Scalar) sub(a, b *Scalar) {
	var nb Scalar
	nb.negate(b)
	r.add(a, &nb)
}

// caddBit adds 2^bit to r when flag is 1. The result must not reach n.
func (r *Scalar) caddBit(bit uint, flag int) {
	verifyCheck(bit < 256, "caddBit out of range")
	// flag == 0 pushes bit past 255 so that no limb matches
	bit += (uint(flag) - 1) & 0x100
	limb := uint64(bit >> 6)
	sh := bit & 0x3F
	var c uint64
	r.d[0], c = bits.Add64(r.d[0], ctEq(limb, 0)<<sh, 0)
	r.d[1], c = bits.Add64(r.d[1], ctEq(limb, 1)<<sh, c)
	r.d[2], c = bits.Add64(r.d[2], ctEq(limb, 2)<<sh, c)
	r.d[3], _ = bits.Add64(r.d[3], ctEq(limb, 3)<<sh, c)
	r.verify()
}

// negate sets r = -a mod n in constant time.
func (r *Scalar) negate(a *Scalar) {
	nonzero := -(1 ^ ctIsZero(a.d[0]|a.d[1]|a.d[2]|a.d[3]))
	var c uint64
	var t [4]uint64
	t[0], c = bits.Add64(^a.d[0], scalarN0+1, 0)
	t[1], c = bits.Add64(^a.d[1], scalarN1, c)
	t[2], c = bits.Add64(^a.d[2], scalarN2, c)
	t[3], _ = bits.Add64(^a.d[3], scalarN3, c)
	r.d[0] = t[0] & nonzero
	r.d[1] = t[1] & nonzero
	r.d[2] = t[2] & nonzero
	r.d[3] = t[3] & nonzero
}

// condNegate negates r when flag is 1. The same instructions run for either
// flag value. It returns -1 if the negation was requested and 1 otherwise,
// including for the zero scalar.
func (r *Scalar) condNegate(flag int) int {
	countOp(opScalarCondNegate, 1)
	// mask is all ones when flag is set, making this negate
	mask := ctMask(flag)
	nonzero := -(1 ^ ctIsZero(r.d[0]|r.d[1]|r.d[2]|r.d[3]))
	var c uint64
	var t [4]uint64
	t[0], c = bits.Add64(r.d[0]^mask, (scalarN0+1)&mask, 0)
	t[1], c = bits.Add64(r.d[1]^mask, scalarN1&mask, c)
	t[2], c = bits.Add64(r.d[2]^mask, scalarN2&mask, c)
	t[3], _ = bits.Add64(r.d[3]^mask, scalarN3&mask, c)
	r.d[0] = t[0] & nonzero
	r.d[1] = t[1] & nonzero
	r.d[2] = t[2] & nonzero
	r.d[3] = t[3] & nonzero
	return 2*int(ctIsZero(mask)) - 1
}

// isZero reports whether r is 0. Constant time.
func (r *Scalar) isZero() bool {
	return ctIsZero(r.d[0]|r.d[1]|r.d[2]|r.d[3]) != 0
}

// isOne reports whether r is 1. Constant time.
func (r *Scalar) isOne() bool {
	return ctIsZero((r.d[0]^1)|r.d[1]|r.d[2]|r.d[3]) != 0
}

// isEven reports whether r is even.
func (r *Scalar) isEven() bool {
	return r.d[0]&1 == 0
}

// isHigh reports whether r > n/2, in constant time.
func (r *Scalar) isHigh() bool {
	var yes, no uint64
	no |= 1 ^ ctGe(r.d[3], scalarNH3)
	yes |= (1 ^ ctGe(scalarNH3, r.d[3])) &^ no
	no |= (1 ^ ctGe(r.d[2], scalarNH2)) &^ yes
	no |= (1 ^ ctGe(r.d[1], scalarNH1)) &^ yes
	yes |= (1 ^ ctGe(scalarNH1, r.d[1])) &^ no
	yes |= (1 ^ ctGe(scalarNH0, r.d[0])) &^ no
	return yes != 0
}

// equal reports whether r == a in constant time.
func (r *Scalar) equal(a *Scalar) bool {
	return ctIsZero((r.d[0]^a.d[0])|(r.d[1]^a.d[1])|(r.d[2]^a.d[2])|(r.d[3]^a.d[3])) != 0
}

// half sets r = a/2 mod n.
func (r *Scalar) half(a *Scalar) {
	// a/2 = (a >> 1) + (a odd ? n/2 + 1 : 0); the sum never reaches n
	mask := -(a.d[0] & 1)
	var c uint64
	var t0, t1, t2, t3 uint64
	t0, c = bits.Add64(a.d[0]>>1|a.d[1]<<63, (scalarNH0+1)&mask, 0)
	t1, c = bits.Add64(a.d[1]>>1|a.d[2]<<63, scalarNH1&mask, c)
	t2, c = bits.Add64(a.d[2]>>1|a.d[3]<<63, scalarNH2&mask, c)
	t3, _ = bits.Add64(a.d[3]>>1, scalarNH3&mask, c)
	r.d = [4]uint64{t0, t1, t2, t3}
}

// shrInt shifts r right by n bits (0 < n < 16) and returns the bits shifted
// out.
func (r *Scalar) shrInt(n uint) uint64 {
	verifyCheck(n > 0 && n < 16, "shrInt out of range")
	ret := r.d[0] & (uint64(1)<<n - 1)
	r.d[0] = r.d[0]>>n | r.d[1]<<(64-n)
	r.d[1] = r.d[1]>>n | r.d[2]<<(64-n)
	r.d[2] = r.d[2]>>n | r.d[3]<<(64-n)
	r.d[3] = r.d[3] >> n
	return ret
}

// split128 splits a into its low and high 128-bit halves.
func (a *Scalar) split128(r1, r2 *Scalar) {
	lo0, lo1, hi0, hi1 := a.d[0], a.d[1], a.d[2], a.d[3]
	r1.d = [4]uint64{lo0, lo1, 0, 0}
	r2.d = [4]uint64{hi0, hi1, 0, 0}
}

// cmov sets r = a when flag is 1, in constant time.
func (r *Scalar) cmov(a *Scalar, flag int) {
	countOp(opScalarCmov, 1)
	mask := ctMask(flag)
	r.d[0] = ctSelect(mask, a.d[0], r.d[0])
	r.d[1] = ctSelect(mask, a.d[1], r.d[1])
	r.d[2] = ctSelect(mask, a.d[2], r.d[2])
	r.d[3] = ctSelect(mask, a.d[3], r.d[3])
}

// clear zeroes r.
func (r *Scalar) clear() {
	memclear(unsafe.Pointer(&r.d), unsafe.Sizeof(r.d))
}

// mul sets r = a * b mod n.
func (r *Scalar) mul(a, b *Scalar) {
	countOp(opScalarMul, 1)
	var l [8]uint64
	mul512(&l, a, b)
	r.reduce512(&l)
}

// sqr sets r = a^2 mod n.
func (r *Scalar) sqr(a *Scalar) {
	var l [8]uint64
	sqr512(&l, a)
	r.reduce512(&l)
}

// mulShiftVar sets r = round(a*b / 2^shift) for shift >= 256. The shift is
// public; the running time does not depend on a or b.
func (r *Scalar) mulShiftVar(a, b *Scalar, shift uint) {
	verifyCheck(shift >= 256, "mulShiftVar shift below 256")
	var l [8]uint64
	mul512(&l, a, b)
	limbs := shift >> 6
	low := shift & 0x3F
	high := 64 - low
	var d [4]uint64
	for i := uint(0); i < 4; i++ {
		if shift < 512-64*i {
			d[i] = l[i+limbs] >> low
			if shift < 448-64*i && low != 0 {
				d[i] |= l[i+1+limbs] << high
			}
		}
	}
	r.d = d
	r.caddBit(0, int((l[(shift-1)>>6]>>((shift-1)&0x3F))&1))
}

// acc is the 160-bit accumulator (c0, c1, c2) of the 512-bit products.
// Each operation documents which words must not overflow.
type acc struct {
	c0, c1, c2 uint64
}

// muladd adds a*b; c2 must not overflow.
func (c *acc) muladd(a, b uint64) {
	th, tl := bits.Mul64(a, b)
	var k uint64
	c.c0, k = bits.Add64(c.c0, tl, 0)
	th += k
	c.c1, k = bits.Add64(c.c1, th, 0)
	c.c2 += k
}

// muladdFast adds a*b; c1 must not overflow.
func (c *acc) muladdFast(a, b uint64) {
	th, tl := bits.Mul64(a, b)
	var k uint64
	c.c0, k = bits.Add64(c.c0, tl, 0)
	c.c1 += th + k
}

// muladd2 adds 2*a*b; c2 must not overflow.
func (c *acc) muladd2(a, b uint64) {
	th, tl := bits.Mul64(a, b)
	th2 := th << 1
	c.c2 += th >> 63
	tl2 := tl << 1
	th2 += tl >> 63
	var k uint64
	c.c0, k = bits.Add64(c.c0, tl2, 0)
	c.c1, k = bits.Add64(c.c1, th2, k)
	c.c2 += k
}

// sumadd adds a; c2 must not overflow.
func (c *acc) sumadd(a uint64) {
	var k uint64
	c.c0, k = bits.Add64(c.c0, a, 0)
	c.c1, k = bits.Add64(c.c1, 0, k)
	c.c2 += k
}

// sumaddFast adds a; c1 must not overflow and c2 must be zero.
func (c *acc) sumaddFast(a uint64) {
	var k uint64
	c.c0, k = bits.Add64(c.c0, a, 0)
	c.c1 += k
}

// extract returns the low word and shifts the accumulator down 64 bits.
func (c *acc) extract() uint64 {
	n := c.c0
	c.c0, c.c1, c.c2 = c.c1, c.c2, 0
	return n
}

// extractFast is extract for an accumulator with c2 == 0.
func (c *acc) extractFast() uint64 {
	verifyCheck(c.c2 == 0, "extractFast with c2 set")
	n := c.c0
	c.c0, c.c1 = c.c1, 0
	return n
}

// mul512 sets l = a * b as a 512-bit integer.
func mul512(l *[8]uint64, a, b *Scalar) {
	var c acc
	c.muladdFast(a.d[0], b.d[0])
	l[0] = c.extractFast()
	c.muladd(a.d[0], b.d[1])
	c.muladd(a.d[1], b.d[0])
	l[1] = c.extract()
	c.muladd(a.d[0], b.d[2])
	c.muladd(a.d[1], b.d[1])
	c.muladd(a.d[2], b.d[0])
	l[2] = c.extract()
	c.muladd(a.d[0], b.d[3])
	c.muladd(a.d[1], b.d[2])
	c.muladd(a.d[2], b.d[1])
	c.muladd(a.d[3], b.d[0])
	l[3] = c.extract()
	c.muladd(a.d[1], b.d[3])
	c.muladd(a.d[2], b.d[2])
	c.muladd(a.d[3], b.d[1])
	l[4] = c.extract()
	c.muladd(a.d[2], b.d[3])
	c.muladd(a.d[3], b.d[2])
	l[5] = c.extract()
	c.muladdFast(a.d[3], b.d[3])
	l[6] = c.extractFast()
	l[7] = c.c0
}

// sqr512 sets l = a^2 as a 512-bit integer.
func sqr512(l *[8]uint64, a *Scalar) {
	var c acc
	c.muladdFast(a.d[0], a.d[0])
	l[0] = c.extractFast()
	c.muladd2(a.d[0], a.d[1])
	l[1] = c.extract()
	c.muladd2(a.d[0], a.d[2])
	c.muladd(a.d[1], a.d[1])
	l[2] = c.extract()
	c.muladd2(a.d[0], a.d[3])
	c.muladd2(a.d[1], a.d[2])
	l[3] = c.extract()
	c.muladd2(a.d[1], a.d[3])
	c.muladd(a.d[2], a.d[2])
	l[4] = c.extract()
	c.muladd2(a.d[2], a.d[3])
	l[5] = c.extract()
	c.muladdFast(a.d[3], a.d[3])
	l[6] = c.extractFast()
	l[7] = c.c0
}

// reduce512 sets r = l mod n, folding 512 bits into 385, then 258, then 256
// using 2^256 = NC mod n.
func (r *Scalar) reduce512(l *[8]uint64) {
	n0, n1, n2, n3 := l[4], l[5], l[6], l[7]

	// m[0..6] = l[0..3] + n[0..3] * NC
	c := acc{c0: l[0]}
	c.muladdFast(n0, scalarNC0)
	m0 := c.extractFast()
	c.sumaddFast(l[1])
	c.muladd(n1, scalarNC0)
	c.muladd(n0, scalarNC1)
	m1 := c.extract()
	c.sumadd(l[2])
	c.muladd(n2, scalarNC0)
	c.muladd(n1, scalarNC1)
	c.sumadd(n0)
	m2 := c.extract()
	c.sumadd(l[3])
	c.muladd(n3, scalarNC0)
	c.muladd(n2, scalarNC1)
	c.sumadd(n1)
	m3 := c.extract()
	c.muladd(n3, scalarNC1)
	c.sumadd(n2)
	m4 := c.extract()
	c.sumaddFast(n3)
	m5 := c.extractFast()
	verifyCheck(c.c0 <= 1, "reduce512 first stage bound")
	m6 := c.c0

	// p[0..4] = m[0..3] + m[4..6] * NC
	c = acc{c0: m0}
	c.muladdFast(m4, scalarNC0)
	p0 := c.extractFast()
	c.sumaddFast(m1)
	c.muladd(m5, scalarNC0)
	c.muladd(m4, scalarNC1)
	p1 := c.extract()
	c.sumadd(m2)
	c.muladd(m6, scalarNC0)
	c.muladd(m5, scalarNC1)
	c.sumadd(m4)
	p2 := c.extract()
	c.sumaddFast(m3)
	c.muladdFast(m6, scalarNC1)
	c.sumaddFast(m5)
	p3 := c.extractFast()
	p4 := c.c0 + m6
	verifyCheck(p4 <= 2, "reduce512 second stage bound")

	// r[0..3] = p[0..3] + p4 * NC
	t := mulU64(scalarNC0, p4).add64(p0)
	r.d[0] = t.lo
	t = mulU64(scalarNC1, p4).add64(p1).add64(t.hi)
	r.d[1] = t.lo
	t = uint128{lo: p2}.add64(p4).add64(t.hi)
	r.d[2] = t.lo
	t = uint128{lo: p3}.add64(t.hi)
	r.d[3] = t.lo

	r.reduce(t.hi + r.checkOverflow())
}
