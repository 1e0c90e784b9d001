package p256k1

import (
	"math/bits"
	"unsafe"
)

// Generator multiplication uses a signed-digit multi-comb. The scalar is
// offset so that each of its COMB_BITS bits selects +2^i or -2^i times G/2;
// the teeth of each block are looked up together in a table of 2^(teeth-1)
// points and the missing half is recovered by negation.
const (
	combBlocks  = 11
	combTeeth   = 6
	combSpacing = 4
	combPoints  = 1 << (combTeeth - 1)
	combBits    = combBlocks * combTeeth * combSpacing
)

// EcmultGenContext holds the comb table for G and the blinding state. It
// starts not built; build makes it usable and clear returns it to the
// not-built state.
type EcmultGenContext struct {
	built bool

	table [combBlocks][combPoints]GroupElementStorage

	// ecmultGen computes (gn + scalarOffset)*G via the comb and then adds
	// geOffset, which equals -scalarOffset*G up to the comb's own offset.
	scalarOffset Scalar
	geOffset     GroupElementAffine

	// projBlind rescales the first Jacobian point of every run.
	projBlind FieldElement
}

// NewEcmultGenContext returns a built generator context with the
// deterministic blinding offset.
func NewEcmultGenContext() *EcmultGenContext {
	ctx := &EcmultGenContext{}
	ctx.build()
	return ctx
}

func (ctx *EcmultGenContext) isBuilt() bool {
	return ctx.built
}

// build computes the comb table and resets the blinding.
func (ctx *EcmultGenContext) build() {
	computeCombTable(&ctx.table, &Generator)
	ctx.built = true
	ctx.blind(nil)
}

// clear wipes the blinding state and marks the context not built.
func (ctx *EcmultGenContext) clear() {
	ctx.built = false
	ctx.scalarOffset.clear()
	ctx.geOffset.clear()
	ctx.projBlind.clear()
}

// combDiff returns 2^(COMB_BITS-1) - 1/2 mod n, the offset that turns the
// bits of (gn + diff) into signed digits of gn in units of G/2.
func combDiff() Scalar {
	var neghalf, diff Scalar
	neghalf.half(&ScalarOne)
	neghalf.negate(&neghalf)
	diff.setInt(1)
	for i := 0; i < combBits-1; i++ {
		diff.add(&diff, &diff)
	}
	diff.add(&diff, &neghalf)
	return diff
}

// computeCombTable fills table with, for every block, the 2^(teeth-1)
// combinations sum(+-2^((block*teeth+t)*spacing)) * gen/2 whose top tooth is
// negative.
func computeCombTable(table *[combBlocks][combPoints]GroupElementStorage, gen *GroupElementAffine) {
	const pointsTotal = combBlocks * combPoints
	var (
		ds  [combTeeth]GroupElementJacobian
		vs  = make([]GroupElementJacobian, pointsTotal)
		u   GroupElementJacobian
		pos int
	)

	// u = gen/2, by a plain double-and-add ladder over the bits of 1/2
	var half Scalar
	half.half(&ScalarOne)
	u.setInfinity()
	for i := 255; i >= 0; i-- {
		u.doubleVar(&u, nil)
		if half.getBits(uint(i), 1) != 0 {
			u.addGEVar(&u, gen, nil)
		}
	}

	for block := 0; block < combBlocks; block++ {
		var sum GroupElementJacobian
		sum.setInfinity()
		for tooth := 0; tooth < combTeeth; tooth++ {
			sum.addVar(&sum, &u, nil)
			u.doubleVar(&u, nil)
			ds[tooth] = u
			if block+tooth != combBlocks+combTeeth-2 {
				for off := 1; off < combSpacing; off++ {
					u.doubleVar(&u, nil)
				}
			}
		}

		// entry 0 has every tooth negative; flipping tooth t adds ds[t]
		vs[pos].negate(&sum)
		pos++
		for tooth := 0; tooth < combTeeth-1; tooth++ {
			stride := 1 << tooth
			for index := 0; index < stride; index++ {
				vs[pos].addVar(&vs[pos-stride], &ds[tooth], nil)
				pos++
			}
		}
	}
	verifyCheck(pos == pointsTotal, "comb table size")

	prec := make([]GroupElementAffine, pointsTotal)
	setAllGEJVar(prec, vs)
	for block := 0; block < combBlocks; block++ {
		for index := 0; index < combPoints; index++ {
			prec[block*combPoints+index].toStorage(&table[block][index])
		}
	}
}

// ecmultGen sets r = gn*G. The memory access pattern and the sequence of
// field operations do not depend on gn.
func (ctx *EcmultGenContext) ecmultGen(r *GroupElementJacobian, gn *Scalar) {
	verifyCheck(ctx.built, "ecmultGen on context that is not built")
	var (
		add     GroupElementAffine
		neg     FieldElement
		adds    GroupElementStorage
		d       Scalar
		recoded [(combBits + 31) >> 5]uint32
	)

	d.add(&ctx.scalarOffset, gn)
	for i := 0; i < 8 && i < len(recoded); i++ {
		recoded[i] = uint32(d.d[i>>1] >> (32 * uint(i&1)))
	}
	d.clear()

	first := true
	for combOff := uint32(combSpacing - 1); ; combOff-- {
		bitPos := combOff
		for block := 0; block < combBlocks; block++ {
			// teeth[tooth] = d[(block*combTeeth + tooth)*spacing + combOff];
			// bit 0 of the rotated word is the wanted bit
			var teeth uint32
			for tooth := uint32(0); tooth < combTeeth; tooth++ {
				bitdata := bits.RotateLeft32(recoded[bitPos>>5], -int(bitPos&0x1F))
				teeth &^= 1 << tooth
				teeth ^= bitdata << tooth
				bitPos += combSpacing
			}
			sign := (teeth >> (combTeeth - 1)) & 1
			abs := (teeth ^ -sign) & (combPoints - 1)

			for index := uint32(0); index < combPoints; index++ {
				adds.cmov(&ctx.table[block][index], int(ctEq(uint64(index), uint64(abs))))
			}
			add.fromStorage(&adds)
			neg.negate(&add.y, 1)
			add.y.cmov(&neg, int(sign))

			if first {
				r.setGE(&add)
				r.rescale(&ctx.projBlind)
				first = false
			} else {
				r.addGE(r, &add)
			}
		}
		if combOff == 0 {
			break
		}
		r.double(r)
	}

	neg.clear()
	add.clear()
	memclear(unsafe.Pointer(&adds), unsafe.Sizeof(adds))
	memclear(unsafe.Pointer(&recoded), unsafe.Sizeof(recoded))

	r.addGE(r, &ctx.geOffset)
}

// blind re-randomizes the offsets. A nil seed restores the deterministic
// offset: scalarOffset = 1 + diff, geOffset = -G, projBlind = 1. Otherwise
// the previous offset and the seed key an RFC6979 stream that yields the
// projective blind and a scalar b, and the offsets become diff - b and b*G.
func (ctx *EcmultGenContext) blind(seed32 []byte) {
	diff := combDiff()

	if seed32 == nil {
		ctx.geOffset.negate(&Generator)
		ctx.scalarOffset.add(&ScalarOne, &diff)
		ctx.projBlind = FieldElementOne
		return
	}

	var keydata [64]byte
	ctx.scalarOffset.getB32(keydata[:32])
	copy(keydata[32:], seed32)
	rng := NewRFC6979HMACSHA256(keydata[:])
	memclear(unsafe.Pointer(&keydata), unsafe.Sizeof(keydata))

	var nonce32 [32]byte
	var f FieldElement
	rng.Generate(nonce32[:])
	f.setB32Mod(nonce32[:])
	f.cmov(&FieldElementOne, boolToInt(f.normalizesToZero()))
	ctx.projBlind = f

	var b Scalar
	rng.Generate(nonce32[:])
	b.setB32(nonce32[:])
	// b = 0 would put geOffset at infinity, which addGE cannot take
	b.cmov(&ScalarOne, boolToInt(b.isZero()))
	rng.Finalize()
	rng.Clear()
	memclear(unsafe.Pointer(&nonce32), unsafe.Sizeof(nonce32))

	var gb GroupElementJacobian
	ctx.ecmultGen(&gb, &b)
	b.negate(&b)
	ctx.scalarOffset.add(&b, &diff)
	ctx.geOffset.setGEJ(&gb)

	b.clear()
	gb.clear()
	f.clear()
}
