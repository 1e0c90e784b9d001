package p256k1

import (
	"errors"
	"testing"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

// TestErrorKindStringer tests the stringized output for the ErrorKind type.
func TestErrorKindStringer(t *testing.T) {
	tests := []struct {
		in   ErrorKind
		want string
	}{
		{ErrInvalidConfig, "ErrInvalidConfig"},
		{ErrContextDestroyed, "ErrContextDestroyed"},
		{ErrSecKeyInvalid, "ErrSecKeyInvalid"},
		{ErrPubKeyNotOnCurve, "ErrPubKeyNotOnCurve"},
		{ErrSigInvalidDER, "ErrSigInvalidDER"},
		{ErrECDHHash, "ErrECDHHash"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.in.Error())
	}
}

// TestErrorKindIsAs ensures both ErrorKind and Error can be identified as
// being a specific error kind via errors.Is and unwrapped via errors.As,
// including through a wrap added by callers.
func TestErrorKindIsAs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
		wantAs    ErrorKind
	}{
		{"kind == kind", ErrSecKeyInvalid, ErrSecKeyInvalid, true, ErrSecKeyInvalid},
		{"Error == kind", makeError(ErrSigRTooBig, ""), ErrSigRTooBig, true, ErrSigRTooBig},
		{"Error != other kind", makeError(ErrSigRTooBig, ""), ErrSigSTooBig, false, ErrSigRTooBig},
		{"wrapped Error == kind",
			pkgerrors.Wrap(makeError(ErrPubKeyXTooBig, "x"), "parsing"),
			ErrPubKeyXTooBig, true, ErrPubKeyXTooBig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMatch, errors.Is(tt.err, tt.target))

			var kind ErrorKind
			assert.True(t, errors.As(tt.err, &kind))
			assert.Equal(t, tt.wantAs, kind)
		})
	}
}

func TestErrorDescription(t *testing.T) {
	err := makeError(ErrInvalidLength, "seed must be 32 bytes")
	assert.Equal(t, "seed must be 32 bytes", err.Error())
	assert.Equal(t, ErrInvalidLength, err.Unwrap())
}
