package p256k1

// ErrorKind identifies a kind of error. It has full support for errors.Is
// and errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrInvalidConfig is returned when a context option has an invalid
	// value.
	ErrInvalidConfig = ErrorKind("ErrInvalidConfig")

	// ErrContextDestroyed is returned when a destroyed context is used.
	ErrContextDestroyed = ErrorKind("ErrContextDestroyed")

	// ErrInvalidLength is returned when a fixed-size input has the wrong
	// length.
	ErrInvalidLength = ErrorKind("ErrInvalidLength")

	// ErrSecKeyInvalid is returned when a secret key is zero or not below
	// the group order.
	ErrSecKeyInvalid = ErrorKind("ErrSecKeyInvalid")

	// ErrTweakInvalid is returned when a tweak is not below the group order,
	// or a tweak leads to a zero secret key or the point at infinity.
	ErrTweakInvalid = ErrorKind("ErrTweakInvalid")

	// ErrPubKeyInvalidLen is returned when a serialized public key is not
	// 33 or 65 bytes.
	ErrPubKeyInvalidLen = ErrorKind("ErrPubKeyInvalidLen")

	// ErrPubKeyInvalidFormat is returned when a serialized public key has
	// an unknown prefix byte.
	ErrPubKeyInvalidFormat = ErrorKind("ErrPubKeyInvalidFormat")

	// ErrPubKeyXTooBig is returned when the x coordinate of a public key is
	// not below the field prime.
	ErrPubKeyXTooBig = ErrorKind("ErrPubKeyXTooBig")

	// ErrPubKeyYTooBig is returned when the y coordinate of a public key is
	// not below the field prime.
	ErrPubKeyYTooBig = ErrorKind("ErrPubKeyYTooBig")

	// ErrPubKeyNotOnCurve is returned when a public key is not a point on
	// the curve.
	ErrPubKeyNotOnCurve = ErrorKind("ErrPubKeyNotOnCurve")

	// ErrPubKeyMismatchedOddness is returned when a hybrid public key's
	// prefix disagrees with the parity of its y coordinate.
	ErrPubKeyMismatchedOddness = ErrorKind("ErrPubKeyMismatchedOddness")

	// ErrPubKeyInvalid is returned when a PublicKey value was never set.
	ErrPubKeyInvalid = ErrorKind("ErrPubKeyInvalid")

	// ErrSigInvalidDER is returned when a DER signature does not follow the
	// strict encoding rules.
	ErrSigInvalidDER = ErrorKind("ErrSigInvalidDER")

	// ErrSigRTooBig is returned when the R value of a signature is not below
	// the group order.
	ErrSigRTooBig = ErrorKind("ErrSigRTooBig")

	// ErrSigSTooBig is returned when the S value of a signature is not below
	// the group order.
	ErrSigSTooBig = ErrorKind("ErrSigSTooBig")

	// ErrSignFailed is returned when signing produced no valid signature,
	// which happens only for degenerate nonces.
	ErrSignFailed = ErrorKind("ErrSignFailed")

	// ErrECDHHash is returned when an ECDH hash function reports failure.
	ErrECDHHash = ErrorKind("ErrECDHHash")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to secp256k1 keys, signatures and
// contexts. It has full support for errors.Is and errors.As, so the caller
// can ascertain the specific reason for the error by checking the underlying
// error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// makeError creates an Error given a set of arguments.
func makeError(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}
