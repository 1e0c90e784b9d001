//go:build p256k1verify

package p256k1

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// traceOf returns the primitive call counts made by f.
func traceOf(f func()) opTrace {
	before := readOpCounts()
	f()
	after := readOpCounts()
	var d opTrace
	for i := range d {
		d[i] = after[i] - before[i]
	}
	return d
}

// secretScalars covers the edges that a data-dependent shortcut would most
// likely treat differently.
func secretScalars() map[string]Scalar {
	rng := newTestRand(131)
	return map[string]Scalar{
		"zero":   ScalarZero,
		"one":    ScalarOne,
		"n-1":    scalarFromBig(new(big.Int).Sub(bigN, big.NewInt(1))),
		"2^128":  scalarFromBig(new(big.Int).Lsh(big.NewInt(1), 128)),
		"random": scalarFromBig(randBig(rng, bigN)),
		"sparse": scalarFromBig(big.NewInt(0x10001)),
	}
}

// requireSameTraces runs op for every secret and requires identical traces.
func requireSameTraces(t *testing.T, secrets map[string]Scalar, op func(k *Scalar)) opTrace {
	var (
		ref     opTrace
		refName string
	)
	for name, k := range secrets {
		k := k
		tr := traceOf(func() { op(&k) })
		if refName == "" {
			ref, refName = tr, name
			continue
		}
		require.Equal(t, ref, tr, "%s vs %s", refName, name)
	}
	return ref
}

func TestConstantTimeEcmultGen(t *testing.T) {
	ctx := newTestContext(t)
	tr := requireSameTraces(t, secretScalars(), func(k *Scalar) {
		var r GroupElementJacobian
		require.NoError(t, ctx.ecmultGen(&r, k))
	})
	assert.NotZero(t, tr[opGroupAddGE])
	assert.NotZero(t, tr[opFieldCmov])
	assert.Zero(t, tr[opGroupVar])
}

func TestConstantTimeEcmultConst(t *testing.T) {
	rng := newTestRand(132)
	a, _ := randPoint(t, rng)
	tr := requireSameTraces(t, secretScalars(), func(k *Scalar) {
		var r GroupElementJacobian
		ecmultConst(&r, &a, k)
	})
	assert.Equal(t, uint64(2*ecmultConstGroups-1), tr[opGroupAddGE])
	// plus the one doubling that builds the odd multiples of a
	assert.Equal(t, uint64(ecmultConstGroupSize*(ecmultConstGroups-1)+1), tr[opGroupDouble])
}

func TestConstantTimeInverse(t *testing.T) {
	secrets := secretScalars()
	tr := requireSameTraces(t, secrets, func(k *Scalar) {
		var r Scalar
		r.inverse(k)
	})
	assert.Equal(t, uint64(10), tr[opDivsteps59])
	assert.Equal(t, uint64(50), tr[opUpdateFGLimbs])
	assert.Zero(t, tr[opDivsteps62Var])

	requireSameTraces(t, secrets, func(k *Scalar) {
		var b [32]byte
		k.getB32(b[:])
		var a, r FieldElement
		a.setB32(b[:])
		r.inv(&a)
	})

	// the variable-time inverse is allowed to finish early on small inputs
	small := traceOf(func() {
		var r Scalar
		r.inverseVar(&ScalarOne)
	})
	k := secrets["random"]
	large := traceOf(func() {
		var r Scalar
		r.inverseVar(&k)
	})
	assert.Less(t, small[opUpdateFGLimbs], large[opUpdateFGLimbs])
}

func TestConstantTimeCondNegateCmov(t *testing.T) {
	secrets := secretScalars()
	for _, flag := range []int{0, 1} {
		flag := flag
		tr := requireSameTraces(t, secrets, func(k *Scalar) {
			r := *k
			r.condNegate(flag)
			r.cmov(&ScalarOne, flag)
		})
		assert.Equal(t, uint64(1), tr[opScalarCondNegate])
		assert.Equal(t, uint64(1), tr[opScalarCmov])
	}

	// the trace does not depend on the flag either
	k := secrets["random"]
	tr0 := traceOf(func() { r := k; r.condNegate(0) })
	tr1 := traceOf(func() { r := k; r.condNegate(1) })
	assert.Equal(t, tr0, tr1)

	var fa, fb FieldElement
	fa.setInt(3)
	fb.setInt(5)
	f0 := traceOf(func() { r := fa; r.cmov(&fb, 0) })
	f1 := traceOf(func() { r := fa; r.cmov(&fb, 1) })
	assert.Equal(t, f0, f1)
}

func TestConstantTimeECDSASign(t *testing.T) {
	ctx := newTestContext(t)
	msg := scalarFromBig(big.NewInt(0xabcdef))
	nonce := scalarFromBig(randBig(newTestRand(133), bigN))
	secrets := secretScalars()
	delete(secrets, "zero")
	requireSameTraces(t, secrets, func(sec *Scalar) {
		var r, s Scalar
		_, err := ecdsaSigSign(ctx, &r, &s, sec, &msg, &nonce)
		require.NoError(t, err)
	})
	// and with the key fixed, in the nonce
	sec := secrets["random"]
	requireSameTraces(t, secrets, func(k *Scalar) {
		var r, s Scalar
		_, err := ecdsaSigSign(ctx, &r, &s, &sec, &msg, k)
		require.NoError(t, err)
	})
}
