package p256k1

import (
	"crypto/rand"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Context owns the precomputed tables for generator and variable-base
// multiplication and the blinding state of the generator multiplication.
// A Context is safe for concurrent use; randomization and destruction are
// serialized against generator multiplications.
type Context struct {
	mu        sync.Mutex
	logger    *zap.Logger
	gen       *EcmultGenContext
	ecmult    *EcmultContext
	destroyed bool
}

type options struct {
	logger   *zap.Logger
	windowG  int
	seed     []byte
	blinding bool
}

// Option configures a Context.
type Option func(o *options)

// WithLogger sets the logger used for context lifecycle events.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithWindowG sets the wNAF window of the precomputed G tables, between
// WindowGMin and WindowGMax. Table memory doubles with each step.
func WithWindowG(w int) Option {
	return func(o *options) { o.windowG = w }
}

// WithSeed randomizes the new context with the given 32-byte seed instead of
// one read from crypto/rand.
func WithSeed(seed32 []byte) Option {
	return func(o *options) { o.seed = seed32 }
}

// WithoutBlinding skips the initial randomization, leaving the generator
// multiplication on its fixed offset until ContextRandomize is called. It
// cannot be combined with WithSeed.
func WithoutBlinding() Option {
	return func(o *options) { o.blinding = false }
}

func applyOptions(opts ...Option) *options {
	o := &options{
		logger:   zap.NewNop(),
		windowG:  WindowGDefault,
		blinding: true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ContextCreate builds a new context. Unless WithoutBlinding is given, the
// context is randomized before it is returned.
func ContextCreate(opts ...Option) (*Context, error) {
	o := applyOptions(opts...)
	if o.logger == nil {
		return nil, makeError(ErrInvalidConfig, "logger must not be nil")
	}
	if o.windowG < WindowGMin || o.windowG > WindowGMax {
		return nil, makeError(ErrInvalidConfig, "window out of range")
	}
	if o.seed != nil && len(o.seed) != 32 {
		return nil, makeError(ErrInvalidConfig, "seed must be 32 bytes")
	}
	if o.seed != nil && !o.blinding {
		return nil, makeError(ErrInvalidConfig, "seed given without blinding")
	}

	ctx := &Context{
		logger: o.logger,
		gen:    NewEcmultGenContext(),
		ecmult: NewEcmultContext(o.windowG),
	}
	ctx.logger.Debug("context built",
		zap.Int("comb_blocks", combBlocks),
		zap.Int("comb_teeth", combTeeth),
		zap.Int("comb_spacing", combSpacing),
		zap.Int("window_g", o.windowG),
		zap.Int("g_table_entries", ecmultTableSize(o.windowG)),
	)

	if !o.blinding {
		return ctx, nil
	}
	seed := o.seed
	if seed == nil {
		var buf [32]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return nil, errors.Wrap(err, "reading blinding seed")
		}
		seed = buf[:]
	}
	if err := ContextRandomize(ctx, seed); err != nil {
		return nil, errors.Wrap(err, "randomizing new context")
	}
	return ctx, nil
}

// ContextClone returns an independent copy of ctx, blinding state included.
func ContextClone(ctx *Context) (*Context, error) {
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.destroyed {
		return nil, makeError(ErrContextDestroyed, "cannot clone a destroyed context")
	}
	gen := *ctx.gen
	ecm := *ctx.ecmult
	c := &Context{logger: ctx.logger, gen: &gen, ecmult: &ecm}
	ctx.logger.Debug("context cloned")
	return c, nil
}

// ContextDestroy wipes the blinding state and releases the tables. Further
// use of ctx returns ErrContextDestroyed.
func ContextDestroy(ctx *Context) {
	if ctx == nil {
		return
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.destroyed {
		return
	}
	ctx.gen.clear()
	ctx.ecmult.clear()
	ctx.destroyed = true
	ctx.logger.Debug("context destroyed")
}

// ContextRandomize re-blinds the generator multiplication of ctx with a
// 32-byte seed. The previous blinding is chained into the new one. A nil
// seed restores the fixed unblinded offset.
func ContextRandomize(ctx *Context, seed32 []byte) error {
	if seed32 != nil && len(seed32) != 32 {
		return makeError(ErrInvalidLength, "seed must be 32 bytes")
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if ctx.destroyed {
		return makeError(ErrContextDestroyed, "cannot randomize a destroyed context")
	}
	ctx.gen.blind(seed32)
	ctx.logger.Debug("context randomized", zap.Bool("reset", seed32 == nil))
	return nil
}

// check reports whether ctx is usable.
func (ctx *Context) check() error {
	if ctx == nil {
		return makeError(ErrInvalidConfig, "nil context")
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	return ctx.checkLocked()
}

// checkLocked is check for callers already holding ctx.mu.
func (ctx *Context) checkLocked() error {
	if ctx.destroyed {
		return makeError(ErrContextDestroyed, "context has been destroyed")
	}
	return nil
}

// ecmultGen sets r = k*G in constant time.
func (ctx *Context) ecmultGen(r *GroupElementJacobian, k *Scalar) error {
	if ctx == nil {
		return makeError(ErrInvalidConfig, "nil context")
	}
	ctx.mu.Lock()
	defer ctx.mu.Unlock()
	if err := ctx.checkLocked(); err != nil {
		return err
	}
	ctx.gen.ecmultGen(r, k)
	return nil
}

// ecmultVar sets r = na*a + ng*G. Variable time. The shared tables are
// immutable, so only the lookup of ctx's reference to them is locked.
func (ctx *Context) ecmultVar(r *GroupElementJacobian, a *GroupElementJacobian, na, ng *Scalar) error {
	if ctx == nil {
		return makeError(ErrInvalidConfig, "nil context")
	}
	ctx.mu.Lock()
	if err := ctx.checkLocked(); err != nil {
		ctx.mu.Unlock()
		return err
	}
	tables := *ctx.ecmult
	ctx.mu.Unlock()
	tables.ecmult(r, a, na, ng)
	return nil
}
