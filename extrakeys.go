package p256k1

import (
	"bytes"
	"unsafe"
)

// XOnlyPubkey is a BIP-340 x-only public key: the x coordinate of a point
// whose y is taken to be even.
type XOnlyPubkey struct {
	data [32]byte
}

// KeyPair holds a secret key together with its public key.
type KeyPair struct {
	seckey [32]byte
	pubkey PublicKey
}

// xonlyPubkeyLoad decodes pubkey into the point with even y.
func xonlyPubkeyLoad(ge *GroupElementAffine, pubkey *XOnlyPubkey) error {
	if pubkey == nil {
		return makeError(ErrPubKeyInvalid, "x-only public key is nil")
	}
	var x FieldElement
	if x.setB32(pubkey.data[:]) {
		return makeError(ErrPubKeyXTooBig, "x coordinate is not below the field prime")
	}
	if !ge.setXOVar(&x, false) {
		return makeError(ErrPubKeyNotOnCurve, "no point on the curve has this x coordinate")
	}
	return nil
}

// XOnlyPubkeyParse parses a 32-byte x-only public key.
func XOnlyPubkeyParse(input32 []byte) (*XOnlyPubkey, error) {
	if len(input32) != 32 {
		return nil, makeError(ErrInvalidLength, "x-only public key must be 32 bytes")
	}
	var xonly XOnlyPubkey
	copy(xonly.data[:], input32)
	var ge GroupElementAffine
	if err := xonlyPubkeyLoad(&ge, &xonly); err != nil {
		return nil, err
	}
	return &xonly, nil
}

// Serialize returns the 32-byte encoding of xonly.
func (xonly *XOnlyPubkey) Serialize() [32]byte {
	return xonly.data
}

// xonlyFromGE returns the x-only key of ge and the parity of its y.
func xonlyFromGE(ge *GroupElementAffine) (*XOnlyPubkey, int) {
	var xonly XOnlyPubkey
	x, y := ge.x, ge.y
	x.normalizeVar()
	y.normalizeVar()
	x.getB32(xonly.data[:])
	return &xonly, boolToInt(y.isOdd())
}

// XOnlyPubkeyFromPubkey converts pubkey to its x-only form, returning 1 as
// parity when the y coordinate of pubkey is odd.
func XOnlyPubkeyFromPubkey(pubkey *PublicKey) (*XOnlyPubkey, int, error) {
	var ge GroupElementAffine
	if err := pubkeyLoad(&ge, pubkey); err != nil {
		return nil, 0, err
	}
	xonly, parity := xonlyFromGE(&ge)
	return xonly, parity, nil
}

// XOnlyPubkeyCmp orders two x-only keys by their serialization.
func XOnlyPubkeyCmp(xonly1, xonly2 *XOnlyPubkey) int {
	return bytes.Compare(xonly1.data[:], xonly2.data[:])
}

// XOnlyPubkeyTweakAdd returns the full public key P + tweak*G, where P is
// the even-y point of internal.
func XOnlyPubkeyTweakAdd(ctx *Context, internal *XOnlyPubkey, tweak []byte) (*PublicKey, error) {
	var ge GroupElementAffine
	if err := xonlyPubkeyLoad(&ge, internal); err != nil {
		return nil, err
	}
	var tw Scalar
	if err := loadTweak(&tw, tweak); err != nil {
		return nil, err
	}
	if err := pubkeyTweakAdd(ctx, &ge, &tw); err != nil {
		return nil, err
	}
	var out PublicKey
	pubkeySave(&out, &ge)
	return &out, nil
}

// XOnlyPubkeyTweakAddCheck reports whether tweakedX32 with the given parity
// is the result of tweaking internal by tweak. parity must be 0 or 1.
func XOnlyPubkeyTweakAddCheck(ctx *Context, tweakedX32 []byte, parity int, internal *XOnlyPubkey, tweak []byte) (bool, error) {
	if len(tweakedX32) != 32 {
		return false, makeError(ErrInvalidLength, "tweaked key must be 32 bytes")
	}
	if parity != 0 && parity != 1 {
		return false, nil
	}
	out, err := XOnlyPubkeyTweakAdd(ctx, internal, tweak)
	if err != nil {
		return false, err
	}
	xonly, outParity, err := XOnlyPubkeyFromPubkey(out)
	if err != nil {
		return false, err
	}
	return bytes.Equal(xonly.data[:], tweakedX32) && outParity == parity, nil
}

// KeyPairCreate builds a key pair from a secret key.
func KeyPairCreate(ctx *Context, seckey []byte) (*KeyPair, error) {
	kp := &KeyPair{}
	if err := ECPubkeyCreate(ctx, &kp.pubkey, seckey); err != nil {
		return nil, err
	}
	copy(kp.seckey[:], seckey)
	return kp, nil
}

// KeyPairGenerate generates a key pair from crypto/rand.
func KeyPairGenerate(ctx *Context) (*KeyPair, error) {
	seckey, pubkey, err := ECKeyPairGenerate(ctx)
	if err != nil {
		return nil, err
	}
	defer memclear(unsafe.Pointer(&seckey[0]), 32)
	kp := &KeyPair{pubkey: *pubkey}
	copy(kp.seckey[:], seckey)
	return kp, nil
}

// Seckey returns the secret key.
func (kp *KeyPair) Seckey() []byte {
	return kp.seckey[:]
}

// Pubkey returns the public key.
func (kp *KeyPair) Pubkey() *PublicKey {
	return &kp.pubkey
}

// XOnlyPubkey returns the x-only public key of kp.
func (kp *KeyPair) XOnlyPubkey() (*XOnlyPubkey, error) {
	xonly, _, err := XOnlyPubkeyFromPubkey(&kp.pubkey)
	return xonly, err
}

// KeyPairXOnlyPub returns the x-only public key of kp and the parity of its
// full public key.
func KeyPairXOnlyPub(kp *KeyPair) (*XOnlyPubkey, int, error) {
	return XOnlyPubkeyFromPubkey(&kp.pubkey)
}

// keypairLoad decodes both halves of kp.
func keypairLoad(sk *Scalar, pk *GroupElementAffine, kp *KeyPair) error {
	if kp == nil {
		return makeError(ErrSecKeyInvalid, "key pair is nil")
	}
	if err := pubkeyLoad(pk, &kp.pubkey); err != nil {
		return err
	}
	return loadSecKey(sk, kp.seckey[:])
}

// KeyPairXOnlyTweakAdd tweaks kp as its x-only key is tweaked by
// XOnlyPubkeyTweakAdd: the secret key is negated first if the public key has
// odd y.
func KeyPairXOnlyTweakAdd(ctx *Context, kp *KeyPair, tweak []byte) error {
	var sk, tw Scalar
	var pk GroupElementAffine
	defer sk.clear()
	if err := keypairLoad(&sk, &pk, kp); err != nil {
		return err
	}
	if err := loadTweak(&tw, tweak); err != nil {
		return err
	}

	pk.y.normalizeVar()
	if pk.y.isOdd() {
		sk.negate(&sk)
		pk.negate(&pk)
	}
	if !seckeyTweakAdd(&sk, &tw) {
		return makeError(ErrTweakInvalid, "tweaked secret key is zero")
	}
	if err := pubkeyTweakAdd(ctx, &pk, &tw); err != nil {
		return err
	}
	sk.getB32(kp.seckey[:])
	pubkeySave(&kp.pubkey, &pk)
	return nil
}

// Clear wipes kp.
func (kp *KeyPair) Clear() {
	memclear(unsafe.Pointer(&kp.seckey[0]), 32)
	kp.pubkey.data = [64]byte{}
}
