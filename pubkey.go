package p256k1

import "bytes"

// PublicKey is a parsed secp256k1 public key, stored as the 64-byte
// normalized affine x || y. The zero value is not a valid key.
type PublicKey struct {
	data [64]byte
}

// Serialization flags for ECPubkeySerialize.
const (
	ECCompressed   = 0x02
	ECUncompressed = 0x04
)

// SEC1 prefix bytes.
const (
	pubkeyCompressedEven = 0x02
	pubkeyCompressedOdd  = 0x03
	pubkeyUncompressed   = 0x04
	pubkeyHybridEven     = 0x06
	pubkeyHybridOdd      = 0x07
)

// Serialized public key lengths.
const (
	PubKeyBytesLenCompressed   = 33
	PubKeyBytesLenUncompressed = 65
)

// pubkeyLoad decodes pubkey into ge, failing for the zero value.
func pubkeyLoad(ge *GroupElementAffine, pubkey *PublicKey) error {
	var zero [64]byte
	if pubkey == nil || bytes.Equal(pubkey.data[:], zero[:]) {
		return makeError(ErrPubKeyInvalid, "public key is not set")
	}
	ge.fromBytes(pubkey.data[:])
	return nil
}

// pubkeySave stores a finite point in pubkey.
func pubkeySave(pubkey *PublicKey, ge *GroupElementAffine) {
	ge.toBytes(pubkey.data[:])
}

// ECPubkeyParse parses a SEC1 encoded public key: 33-byte compressed, 65-byte
// uncompressed, or 65-byte hybrid.
func ECPubkeyParse(pubkey *PublicKey, input []byte) error {
	var ge GroupElementAffine
	var x, y FieldElement

	switch len(input) {
	case PubKeyBytesLenCompressed:
		format := input[0]
		if format != pubkeyCompressedEven && format != pubkeyCompressedOdd {
			return makeError(ErrPubKeyInvalidFormat, "invalid compressed public key prefix")
		}
		if x.setB32(input[1:33]) {
			return makeError(ErrPubKeyXTooBig, "x coordinate is not below the field prime")
		}
		if !ge.setXOVar(&x, format == pubkeyCompressedOdd) {
			return makeError(ErrPubKeyNotOnCurve, "no point on the curve has this x coordinate")
		}

	case PubKeyBytesLenUncompressed:
		format := input[0]
		switch format {
		case pubkeyUncompressed, pubkeyHybridEven, pubkeyHybridOdd:
		default:
			return makeError(ErrPubKeyInvalidFormat, "invalid uncompressed public key prefix")
		}
		if x.setB32(input[1:33]) {
			return makeError(ErrPubKeyXTooBig, "x coordinate is not below the field prime")
		}
		if y.setB32(input[33:65]) {
			return makeError(ErrPubKeyYTooBig, "y coordinate is not below the field prime")
		}
		if format != pubkeyUncompressed && y.isOdd() != (format == pubkeyHybridOdd) {
			return makeError(ErrPubKeyMismatchedOddness, "hybrid prefix does not match y parity")
		}
		ge.setXY(&x, &y)
		if !ge.isValidVar() {
			return makeError(ErrPubKeyNotOnCurve, "point is not on the curve")
		}

	default:
		return makeError(ErrPubKeyInvalidLen, "public key must be 33 or 65 bytes")
	}

	pubkeySave(pubkey, &ge)
	return nil
}

// ECPubkeySerialize writes pubkey to output in the form selected by flags and
// returns the number of bytes written.
func ECPubkeySerialize(output []byte, pubkey *PublicKey, flags uint) (int, error) {
	var ge GroupElementAffine
	if err := pubkeyLoad(&ge, pubkey); err != nil {
		return 0, err
	}

	switch flags {
	case ECCompressed:
		if len(output) < PubKeyBytesLenCompressed {
			return 0, makeError(ErrInvalidLength, "output buffer too small")
		}
		output[0] = pubkeyCompressedEven
		if ge.y.isOdd() {
			output[0] = pubkeyCompressedOdd
		}
		ge.x.getB32(output[1:33])
		return PubKeyBytesLenCompressed, nil

	case ECUncompressed:
		if len(output) < PubKeyBytesLenUncompressed {
			return 0, makeError(ErrInvalidLength, "output buffer too small")
		}
		output[0] = pubkeyUncompressed
		ge.x.getB32(output[1:33])
		ge.y.getB32(output[33:65])
		return PubKeyBytesLenUncompressed, nil
	}
	return 0, makeError(ErrInvalidConfig, "unknown serialization flags")
}

// ECPubkeyCmp orders two public keys by their compressed serialization.
// Invalid keys sort first.
func ECPubkeyCmp(pubkey1, pubkey2 *PublicKey) int {
	var out1, out2 [PubKeyBytesLenCompressed]byte
	// failures leave the buffer zeroed
	_, _ = ECPubkeySerialize(out1[:], pubkey1, ECCompressed)
	_, _ = ECPubkeySerialize(out2[:], pubkey2, ECCompressed)
	return bytes.Compare(out1[:], out2[:])
}

// ECPubkeyNegate replaces pubkey with its negation.
func ECPubkeyNegate(pubkey *PublicKey) error {
	var ge GroupElementAffine
	if err := pubkeyLoad(&ge, pubkey); err != nil {
		return err
	}
	ge.negate(&ge)
	pubkeySave(pubkey, &ge)
	return nil
}

// ECPubkeyCreate computes the public key of seckey in constant time.
func ECPubkeyCreate(ctx *Context, pubkey *PublicKey, seckey []byte) error {
	var ge GroupElementAffine
	if err := pubkeyCreateHelper(ctx, &ge, seckey); err != nil {
		return err
	}
	pubkeySave(pubkey, &ge)
	return nil
}

// pubkeyCreateHelper sets ge = seckey*G. The scalar and the Jacobian
// intermediate are wiped before returning.
func pubkeyCreateHelper(ctx *Context, ge *GroupElementAffine, seckey []byte) error {
	if len(seckey) != 32 {
		return makeError(ErrInvalidLength, "secret key must be 32 bytes")
	}
	var sec Scalar
	defer sec.clear()
	if !sec.setB32SecKey(seckey) {
		return makeError(ErrSecKeyInvalid, "secret key is zero or not below the group order")
	}
	var pj GroupElementJacobian
	defer pj.clear()
	if err := ctx.ecmultGen(&pj, &sec); err != nil {
		return err
	}
	ge.setGEJ(&pj)
	return nil
}

// ECPubkeyCombine sets out to the sum of the given public keys.
func ECPubkeyCombine(out *PublicKey, pubkeys []*PublicKey) error {
	if len(pubkeys) == 0 {
		return makeError(ErrPubKeyInvalid, "no public keys to combine")
	}
	var sum GroupElementJacobian
	sum.setInfinity()
	for _, pk := range pubkeys {
		var ge GroupElementAffine
		if err := pubkeyLoad(&ge, pk); err != nil {
			return err
		}
		sum.addGEVar(&sum, &ge, nil)
	}
	if sum.isInfinity() {
		return makeError(ErrPubKeyInvalid, "public keys sum to infinity")
	}
	var ge GroupElementAffine
	ge.setGEJ(&sum)
	pubkeySave(out, &ge)
	return nil
}
