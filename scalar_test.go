package p256k1

import (
	"math/big"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarBasics(t *testing.T) {
	var zero Scalar
	zero.setInt(0)
	if !zero.isZero() {
		t.Error("zero scalar should be zero")
	}

	var one Scalar
	one.setInt(1)
	if !one.isOne() || one.isZero() {
		t.Error("one scalar should be one")
	}
	if !one.equal(&ScalarOne) {
		t.Error("setInt(1) should equal ScalarOne")
	}
	if one.isEven() {
		t.Error("one should not be even")
	}
}

func TestScalarSetB32(t *testing.T) {
	nMinus1 := new(big.Int).Sub(bigN, big.NewInt(1))
	max256 := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

	testCases := []struct {
		name     string
		in       *big.Int
		overflow bool
		seckey   bool
	}{
		{name: "zero", in: big.NewInt(0)},
		{name: "one", in: big.NewInt(1), seckey: true},
		{name: "n_minus_1", in: nMinus1, seckey: true},
		{name: "n", in: bigN, overflow: true},
		{name: "n_plus_1", in: new(big.Int).Add(bigN, big.NewInt(1)), overflow: true},
		{name: "max_value", in: max256, overflow: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var s Scalar
			overflow := s.setB32(bytes32(tc.in))
			assert.Equal(t, tc.overflow, overflow)
			want := new(big.Int).Mod(tc.in, bigN)
			assert.Zero(t, want.Cmp(scalarToBig(&s)), spew.Sdump(s))

			var sk Scalar
			assert.Equal(t, tc.seckey, sk.setB32SecKey(bytes32(tc.in)))
		})
	}
}

func TestScalarArithmetic(t *testing.T) {
	rng := newTestRand(11)
	mod := func(x *big.Int) *big.Int { return x.Mod(x, bigN) }

	for i := 0; i < 500; i++ {
		a, b := randScalar(rng), randScalar(rng)
		ab, bb := scalarToBig(&a), scalarToBig(&b)
		var r Scalar

		overflow := r.add(&a, &b)
		sum := new(big.Int).Add(ab, bb)
		require.Equal(t, sum.Cmp(bigN) >= 0, overflow)
		require.Zero(t, mod(sum).Cmp(scalarToBig(&r)), "add")

		r.sub(&a, &b)
		require.Zero(t, mod(new(big.Int).Sub(ab, bb)).Cmp(scalarToBig(&r)), "sub")

		r.mul(&a, &b)
		require.Zero(t, mod(new(big.Int).Mul(ab, bb)).Cmp(scalarToBig(&r)), "mul")

		r.sqr(&a)
		require.Zero(t, mod(new(big.Int).Mul(ab, ab)).Cmp(scalarToBig(&r)), "sqr")

		r.negate(&a)
		require.Zero(t, mod(new(big.Int).Neg(ab)).Cmp(scalarToBig(&r)), "negate")

		r.half(&a)
		var twice Scalar
		twice.add(&r, &r)
		require.True(t, twice.equal(&a), "half")

		half := new(big.Int).Rsh(bigN, 1)
		require.Equal(t, ab.Cmp(half) > 0, a.isHigh(), "isHigh %x", ab)

		if ab.Sign() != 0 {
			want := new(big.Int).ModInverse(ab, bigN)
			r.inverse(&a)
			require.Zero(t, want.Cmp(scalarToBig(&r)), "inverse")
			r.inverseVar(&a)
			require.Zero(t, want.Cmp(scalarToBig(&r)), "inverseVar")
		}
	}
}

func TestScalarIsHighBoundary(t *testing.T) {
	half := new(big.Int).Rsh(bigN, 1)
	s := scalarFromBig(half)
	assert.False(t, s.isHigh())
	s = scalarFromBig(new(big.Int).Add(half, big.NewInt(1)))
	assert.True(t, s.isHigh())
	assert.False(t, ScalarZero.isHigh())
}

func TestScalarConditionalNegate(t *testing.T) {
	rng := newTestRand(12)
	a := randScalar(rng)
	for a.isZero() {
		a = randScalar(rng)
	}

	r := a
	require.Equal(t, 1, r.condNegate(0))
	require.True(t, r.equal(&a))

	require.Equal(t, -1, r.condNegate(1))
	var neg Scalar
	neg.negate(&a)
	require.True(t, r.equal(&neg))

	var z Scalar
	z.condNegate(1)
	require.True(t, z.isZero())
}

func TestScalarGetBits(t *testing.T) {
	s := scalarFromBig(new(big.Int).SetBytes([]byte{
		0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0,
		0x0F, 0xED, 0xCB, 0xA9, 0x87, 0x65, 0x43, 0x21,
		0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88,
		0x99, 0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x01,
	}))
	sb := scalarToBig(&s)

	for offset := uint(0); offset < 250; offset += 3 {
		count := uint(5)
		want := new(big.Int).Rsh(sb, offset)
		want.And(want, big.NewInt(int64(1)<<count-1))
		assert.Equal(t, uint32(want.Int64()), s.getBitsVar(offset, count), "offset %d", offset)
		if offset>>6 == (offset+count-1)>>6 {
			assert.Equal(t, uint32(want.Int64()), s.getBits(offset, count), "offset %d", offset)
		}
	}
}

func TestScalarCaddBit(t *testing.T) {
	var s Scalar
	s.setInt(5)
	s.caddBit(70, 0)
	assert.Zero(t, big.NewInt(5).Cmp(scalarToBig(&s)))
	s.caddBit(70, 1)
	want := new(big.Int).Add(big.NewInt(5), new(big.Int).Lsh(big.NewInt(1), 70))
	assert.Zero(t, want.Cmp(scalarToBig(&s)))
}

func TestScalarShrInt(t *testing.T) {
	rng := newTestRand(13)
	for i := 0; i < 50; i++ {
		a := randScalar(rng)
		ab := scalarToBig(&a)
		n := uint(1 + rng.Intn(15))
		low := a.shrInt(n)
		require.Equal(t, new(big.Int).And(ab, big.NewInt(int64(1)<<n-1)).Uint64(), low)
		require.Zero(t, new(big.Int).Rsh(ab, n).Cmp(scalarToBig(&a)))
	}
}

func TestScalarSplit128(t *testing.T) {
	rng := newTestRand(14)
	a := randScalar(rng)
	var lo, hi Scalar
	a.split128(&lo, &hi)
	ab := scalarToBig(&a)
	mask := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	assert.Zero(t, new(big.Int).And(ab, mask).Cmp(scalarToBig(&lo)))
	assert.Zero(t, new(big.Int).Rsh(ab, 128).Cmp(scalarToBig(&hi)))
}

func TestScalarMulShiftVar(t *testing.T) {
	rng := newTestRand(15)
	for i := 0; i < 100; i++ {
		a, b := randScalar(rng), randScalar(rng)
		shift := uint(256 + rng.Intn(130))
		var r Scalar
		r.mulShiftVar(&a, &b, shift)

		prod := new(big.Int).Mul(scalarToBig(&a), scalarToBig(&b))
		want := new(big.Int).Rsh(prod, shift)
		if prod.Bit(int(shift-1)) == 1 {
			want.Add(want, big.NewInt(1))
		}
		require.Zero(t, want.Cmp(scalarToBig(&r)), "shift %d", shift)
	}
}

func TestScalarConditionalMove(t *testing.T) {
	var a, b Scalar
	a.setInt(3)
	b.setInt(9)
	r := a
	r.cmov(&b, 0)
	assert.True(t, r.equal(&a))
	r.cmov(&b, 1)
	assert.True(t, r.equal(&b))
}

func TestScalarClear(t *testing.T) {
	s := scalarFromBig(big.NewInt(12345))
	s.clear()
	assert.True(t, s.isZero())
}

func TestNewScalar(t *testing.T) {
	s := NewScalar(bytes32(new(big.Int).Add(bigN, big.NewInt(2))))
	assert.Zero(t, big.NewInt(2).Cmp(scalarToBig(s)))
}

func BenchmarkScalarMul(b *testing.B) {
	rng := newTestRand(16)
	x, y := randScalar(rng), randScalar(rng)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x.mul(&x, &y)
	}
}

func BenchmarkScalarInverse(b *testing.B) {
	rng := newTestRand(17)
	x := scalarFromBig(randBig(rng, bigN))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x.inverse(&x)
	}
}

func BenchmarkScalarInverseVar(b *testing.B) {
	rng := newTestRand(18)
	x := scalarFromBig(randBig(rng, bigN))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x.inverseVar(&x)
	}
}
