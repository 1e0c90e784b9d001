package p256k1

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextCreateOptions(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		err  error
	}{
		{"defaults", nil, nil},
		{"seeded", []Option{WithSeed(testSeed)}, nil},
		{"unblinded", []Option{WithoutBlinding()}, nil},
		{"small window", []Option{WithWindowG(WindowGMin)}, nil},
		{"nil logger", []Option{WithLogger(nil)}, ErrInvalidConfig},
		{"window too small", []Option{WithWindowG(WindowGMin - 1)}, ErrInvalidConfig},
		{"window too large", []Option{WithWindowG(WindowGMax + 1)}, ErrInvalidConfig},
		{"short seed", []Option{WithSeed(testSeed[:31])}, ErrInvalidConfig},
		{"seed without blinding", []Option{WithSeed(testSeed), WithoutBlinding()}, ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, err := ContextCreate(tt.opts...)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				require.Nil(t, ctx)
				return
			}
			require.NoError(t, err)
			defer ContextDestroy(ctx)
			require.NoError(t, ctx.check())
		})
	}
}

func TestContextLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx, err := ContextCreate(WithLogger(zap.New(core)), WithSeed(testSeed))
	require.NoError(t, err)

	clone, err := ContextClone(ctx)
	require.NoError(t, err)
	ContextDestroy(clone)
	ContextDestroy(ctx)

	var msgs []string
	for _, e := range logs.All() {
		msgs = append(msgs, e.Message)
	}
	assert.Equal(t, []string{
		"context built",
		"context randomized",
		"context cloned",
		"context destroyed",
		"context destroyed",
	}, msgs)

	built := logs.FilterMessage("context built").All()
	require.Len(t, built, 1)
	assert.EqualValues(t, WindowGDefault, built[0].ContextMap()["window_g"])
}

func TestContextSameResultsAcrossBlinding(t *testing.T) {
	plain, err := ContextCreate(WithoutBlinding())
	require.NoError(t, err)
	defer ContextDestroy(plain)
	seeded := newTestContext(t)
	random, err := ContextCreate()
	require.NoError(t, err)
	defer ContextDestroy(random)

	k := scalarFromBig(randBig(newTestRand(91), bigN))
	x, y, _ := decredMulBase(scalarToBig(&k))
	for _, ctx := range []*Context{plain, seeded, random} {
		var r GroupElementJacobian
		require.NoError(t, ctx.ecmultGen(&r, &k))
		requireGEJEqual(t, &r, x, y)
	}
}

func TestContextClone(t *testing.T) {
	ctx := newTestContext(t)
	clone, err := ContextClone(ctx)
	require.NoError(t, err)
	defer ContextDestroy(clone)
	assert.Equal(t, ctx.gen.scalarOffset, clone.gen.scalarOffset)

	// the clone is independent of the original
	require.NoError(t, ContextRandomize(ctx, testSeed))
	assert.NotEqual(t, ctx.gen.scalarOffset, clone.gen.scalarOffset)
	ContextDestroy(ctx)
	require.NoError(t, clone.check())

	var r GroupElementJacobian
	one := ScalarOne
	require.NoError(t, clone.ecmultGen(&r, &one))
	var g GroupElementJacobian
	g.setGE(&Generator)
	assert.True(t, r.eqVar(&g))
}

func TestContextDestroy(t *testing.T) {
	ctx, err := ContextCreate(WithSeed(testSeed))
	require.NoError(t, err)
	ContextDestroy(ctx)
	ContextDestroy(ctx)
	ContextDestroy(nil)

	var r GroupElementJacobian
	one := ScalarOne
	assert.ErrorIs(t, ctx.check(), ErrContextDestroyed)
	assert.ErrorIs(t, ctx.ecmultGen(&r, &one), ErrContextDestroyed)
	assert.ErrorIs(t, ctx.ecmultVar(&r, &r, &one, nil), ErrContextDestroyed)
	assert.ErrorIs(t, ContextRandomize(ctx, testSeed), ErrContextDestroyed)
	_, err = ContextClone(ctx)
	assert.ErrorIs(t, err, ErrContextDestroyed)

	var nilCtx *Context
	assert.ErrorIs(t, nilCtx.check(), ErrInvalidConfig)
	assert.ErrorIs(t, nilCtx.ecmultGen(&r, &one), ErrInvalidConfig)
	assert.ErrorIs(t, nilCtx.ecmultVar(&r, &r, &one, &one), ErrInvalidConfig)

	var pk PublicKey
	assert.ErrorIs(t, ECPubkeyCreate(nil, &pk, testSeed), ErrInvalidConfig)
}

func TestContextDestroyDuringEcmult(t *testing.T) {
	rng := newTestRand(93)
	k := scalarFromBig(randBig(rng, bigN))
	x, y, _ := decredMulBase(new(big.Int).Lsh(scalarToBig(&k), 1))
	var g GroupElementJacobian
	g.setGE(&Generator)

	for run := 0; run < 50; run++ {
		ctx, err := ContextCreate(WithSeed(testSeed))
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make(chan error, 8)
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				var r GroupElementJacobian
				err := ctx.ecmultVar(&r, &g, &k, &k)
				if err != nil {
					if !errors.Is(err, ErrContextDestroyed) {
						errs <- err
					}
					return
				}
				ge := toAffine(&r)
				gx, gy := geXY(&ge)
				if gx.Cmp(x) != 0 || gy.Cmp(y) != 0 {
					errs <- errors.New("wrong point")
				}
			}()
		}
		ContextDestroy(ctx)
		wg.Wait()
		close(errs)
		for err := range errs {
			t.Error(err)
		}
	}
}

func TestContextRandomize(t *testing.T) {
	ctx := newTestContext(t)
	assert.ErrorIs(t, ContextRandomize(ctx, make([]byte, 16)), ErrInvalidLength)
	assert.ErrorIs(t, ContextRandomize(ctx, []byte{}), ErrInvalidLength)

	require.NoError(t, ContextRandomize(ctx, nil))
	assert.True(t, ctx.gen.projBlind.equal(&FieldElementOne))
	require.NoError(t, ContextRandomize(ctx, testSeed))
	assert.False(t, ctx.gen.projBlind.equal(&FieldElementOne))
}

func TestContextConcurrentUse(t *testing.T) {
	ctx := newTestContext(t)
	k := scalarFromBig(randBig(newTestRand(92), bigN))
	x, y, _ := decredMulBase(scalarToBig(&k))

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			var r GroupElementJacobian
			if err := ctx.ecmultGen(&r, &k); err != nil {
				errs <- err
				return
			}
			ge := toAffine(&r)
			gx, gy := geXY(&ge)
			if gx.Cmp(x) != 0 || gy.Cmp(y) != 0 {
				errs <- errors.New("wrong point")
			}
		}()
		go func(i int) {
			defer wg.Done()
			seed := make([]byte, 32)
			seed[0] = byte(i)
			if err := ContextRandomize(ctx, seed); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
