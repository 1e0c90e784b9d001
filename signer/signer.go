// Package signer provides implementations of the signer interface from
// next.orly.dev/pkg/interfaces/signer, used to abstract the signature algorithm
// from the usage.
package signer

import (
	"sync"

	"github.com/pkg/errors"
	orlysigner "next.orly.dev/pkg/interfaces/signer"

	p256k1 "secp256k1.mleku.dev"
)

// I is an alias for the signer interface from next.orly.dev/pkg/interfaces/signer.
// This allows this package to be used as a drop-in replacement in orly.
type I = orlysigner.I

// Gen is an alias for the Gen interface from next.orly.dev/pkg/interfaces/signer.
// This allows this package to be used as a drop-in replacement in orly.
type Gen = orlysigner.Gen

var (
	// ErrNoSecret is returned when an operation needs a secret key that was
	// never set.
	ErrNoSecret = errors.New("no secret key available")

	// ErrNoPubKey is returned when verifying without a public key.
	ErrNoPubKey = errors.New("no public key available")
)

var (
	sharedCtx     *p256k1.Context
	sharedCtxErr  error
	sharedCtxOnce sync.Once
)

// SharedContext returns the randomized context used by signers created
// without an explicit one. It is built on first use.
func SharedContext() (*p256k1.Context, error) {
	sharedCtxOnce.Do(func() {
		sharedCtx, sharedCtxErr = p256k1.ContextCreate()
		if sharedCtxErr != nil {
			sharedCtxErr = errors.Wrap(sharedCtxErr, "creating shared signer context")
		}
	})
	return sharedCtx, sharedCtxErr
}

// checkLen returns an error naming what when b is not n bytes long.
func checkLen(b []byte, n int, what string) error {
	if len(b) != n {
		return errors.Errorf("%s must be %d bytes, got %d", what, n, len(b))
	}
	return nil
}
