package p256k1

import (
	"crypto/rand"

	"github.com/pkg/errors"
)

// ECSeckeyVerify reports whether seckey is a valid secret key: 32 bytes,
// nonzero and below the group order.
func ECSeckeyVerify(seckey []byte) bool {
	if len(seckey) != 32 {
		return false
	}
	var sec Scalar
	ok := sec.setB32SecKey(seckey)
	sec.clear()
	return ok
}

// loadSecKey parses a secret key, failing for zero and out of range values.
func loadSecKey(sec *Scalar, seckey []byte) error {
	if len(seckey) != 32 {
		return makeError(ErrInvalidLength, "secret key must be 32 bytes")
	}
	if !sec.setB32SecKey(seckey) {
		return makeError(ErrSecKeyInvalid, "secret key is zero or not below the group order")
	}
	return nil
}

// loadTweak parses a 32-byte tweak, failing if it is not below the group
// order. A zero tweak is accepted.
func loadTweak(tw *Scalar, tweak []byte) error {
	if len(tweak) != 32 {
		return makeError(ErrInvalidLength, "tweak must be 32 bytes")
	}
	if tw.setB32(tweak) {
		return makeError(ErrTweakInvalid, "tweak is not below the group order")
	}
	return nil
}

// ECSeckeyNegate negates seckey in place.
func ECSeckeyNegate(seckey []byte) error {
	var sec Scalar
	defer sec.clear()
	if err := loadSecKey(&sec, seckey); err != nil {
		return err
	}
	sec.negate(&sec)
	sec.getB32(seckey)
	return nil
}

// ECSeckeyGenerate draws a valid secret key from crypto/rand.
func ECSeckeyGenerate() ([]byte, error) {
	seckey := make([]byte, 32)
	for {
		if _, err := rand.Read(seckey); err != nil {
			return nil, errors.Wrap(err, "reading secret key")
		}
		if ECSeckeyVerify(seckey) {
			return seckey, nil
		}
	}
}

// ECKeyPairGenerate generates a secret key and its public key.
func ECKeyPairGenerate(ctx *Context) (seckey []byte, pubkey *PublicKey, err error) {
	if seckey, err = ECSeckeyGenerate(); err != nil {
		return nil, nil, err
	}
	pubkey = &PublicKey{}
	if err = ECPubkeyCreate(ctx, pubkey, seckey); err != nil {
		return nil, nil, err
	}
	return seckey, pubkey, nil
}

// seckeyTweakAdd sets sec = sec + tw, failing if the sum is zero. Constant
// time in sec and tw.
func seckeyTweakAdd(sec, tw *Scalar) bool {
	sec.add(sec, tw)
	return !sec.isZero()
}

// ECSeckeyTweakAdd sets seckey = seckey + tweak mod n. If the key or tweak
// is invalid, or the result is zero, seckey is zeroed.
func ECSeckeyTweakAdd(seckey []byte, tweak []byte) error {
	if err := checkTweakLengths(seckey, tweak); err != nil {
		return err
	}
	err := seckeyTweak(seckey, tweak, func(sec, tw *Scalar) error {
		if !seckeyTweakAdd(sec, tw) {
			return makeError(ErrTweakInvalid, "tweaked secret key is zero")
		}
		return nil
	})
	if err != nil {
		clear(seckey)
	}
	return err
}

// ECSeckeyTweakMul sets seckey = seckey * tweak mod n. The tweak must be
// nonzero. On any failure other than a bad length seckey is zeroed.
func ECSeckeyTweakMul(seckey []byte, tweak []byte) error {
	if err := checkTweakLengths(seckey, tweak); err != nil {
		return err
	}
	err := seckeyTweak(seckey, tweak, func(sec, tw *Scalar) error {
		if tw.isZero() {
			return makeError(ErrTweakInvalid, "tweak is zero")
		}
		sec.mul(sec, tw)
		return nil
	})
	if err != nil {
		clear(seckey)
	}
	return err
}

func checkTweakLengths(seckey, tweak []byte) error {
	if len(seckey) != 32 {
		return makeError(ErrInvalidLength, "secret key must be 32 bytes")
	}
	if len(tweak) != 32 {
		return makeError(ErrInvalidLength, "tweak must be 32 bytes")
	}
	return nil
}

// seckeyTweak loads seckey and tweak, applies op and writes the result back
// into seckey.
func seckeyTweak(seckey, tweak []byte, op func(sec, tw *Scalar) error) error {
	var sec, tw Scalar
	defer sec.clear()
	defer tw.clear()
	if err := loadSecKey(&sec, seckey); err != nil {
		return err
	}
	if err := loadTweak(&tw, tweak); err != nil {
		return err
	}
	if err := op(&sec, &tw); err != nil {
		return err
	}
	sec.getB32(seckey)
	return nil
}

// pubkeyTweakAdd sets p = p + tw*G. Variable time; p and tw are public.
func pubkeyTweakAdd(ctx *Context, p *GroupElementAffine, tw *Scalar) error {
	var pj GroupElementJacobian
	pj.setGE(p)
	if err := ctx.ecmultVar(&pj, &pj, &ScalarOne, tw); err != nil {
		return err
	}
	if pj.isInfinity() {
		return makeError(ErrTweakInvalid, "tweaked public key is infinity")
	}
	p.setGEJVar(&pj)
	return nil
}

// ECPubkeyTweakAdd sets pubkey = pubkey + tweak*G.
func ECPubkeyTweakAdd(ctx *Context, pubkey *PublicKey, tweak []byte) error {
	var ge GroupElementAffine
	if err := pubkeyLoad(&ge, pubkey); err != nil {
		return err
	}
	var tw Scalar
	if err := loadTweak(&tw, tweak); err != nil {
		return err
	}
	if err := pubkeyTweakAdd(ctx, &ge, &tw); err != nil {
		return err
	}
	pubkeySave(pubkey, &ge)
	return nil
}

// ECPubkeyTweakMul sets pubkey = tweak * pubkey. The tweak must be nonzero.
func ECPubkeyTweakMul(ctx *Context, pubkey *PublicKey, tweak []byte) error {
	var ge GroupElementAffine
	if err := pubkeyLoad(&ge, pubkey); err != nil {
		return err
	}
	var tw Scalar
	if err := loadTweak(&tw, tweak); err != nil {
		return err
	}
	if tw.isZero() {
		return makeError(ErrTweakInvalid, "tweak is zero")
	}
	var pj GroupElementJacobian
	pj.setGE(&ge)
	if err := ctx.ecmultVar(&pj, &pj, &tw, nil); err != nil {
		return err
	}
	ge.setGEJVar(&pj)
	pubkeySave(pubkey, &ge)
	return nil
}
