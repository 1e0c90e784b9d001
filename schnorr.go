package p256k1

import "unsafe"

// BIP-340 hash tags.
var (
	bip340NonceTag     = []byte("BIP0340/nonce")
	bip340AuxTag       = []byte("BIP0340/aux")
	bip340ChallengeTag = []byte("BIP0340/challenge")
)

// SchnorrSignatureSize is the length of a BIP-340 signature.
const SchnorrSignatureSize = 64

// NonceFunctionBIP340 derives the BIP-340 nonce for msg under key32 and the
// x-only key xonlyPk32. A nil auxRand32 is treated as 32 zero bytes.
func NonceFunctionBIP340(nonce32 []byte, msg []byte, key32 []byte, xonlyPk32 []byte, auxRand32 []byte) error {
	if len(nonce32) != 32 || len(key32) != 32 || len(xonlyPk32) != 32 {
		return makeError(ErrInvalidLength, "nonce, key and public key must be 32 bytes")
	}
	var zero [32]byte
	if auxRand32 == nil {
		auxRand32 = zero[:]
	}
	if len(auxRand32) != 32 {
		return makeError(ErrInvalidLength, "auxiliary randomness must be 32 bytes")
	}

	var masked [32]byte
	defer memclear(unsafe.Pointer(&masked), unsafe.Sizeof(masked))
	auxHash := TaggedHash(bip340AuxTag, auxRand32)
	for i := range masked {
		masked[i] = key32[i] ^ auxHash[i]
	}

	h := newTaggedSHA256(bip340NonceTag)
	h.Write(masked[:])
	h.Write(xonlyPk32)
	h.Write(msg)
	h.Finalize(nonce32)
	h.Clear()
	return nil
}

// schnorrChallenge sets e = H_challenge(r32 || pk32 || msg) mod n.
func schnorrChallenge(e *Scalar, r32, msg, pk32 []byte) {
	var buf [32]byte
	h := newTaggedSHA256(bip340ChallengeTag)
	h.Write(r32)
	h.Write(pk32)
	h.Write(msg)
	h.Finalize(buf[:])
	e.setB32(buf[:])
}

// SchnorrSign writes the BIP-340 signature of msg under keypair to sig64.
// msg may have any length. auxRand32 is 32 bytes of fresh randomness, or nil.
func SchnorrSign(ctx *Context, sig64 []byte, msg []byte, keypair *KeyPair, auxRand32 []byte) error {
	if len(sig64) != SchnorrSignatureSize {
		return makeError(ErrInvalidLength, "signature must be 64 bytes")
	}

	var sk, k, e Scalar
	var pk, r GroupElementAffine
	var rj GroupElementJacobian
	var seckey32, pk32, nonce32 [32]byte
	defer func() {
		sk.clear()
		k.clear()
		rj.clear()
		r.clear()
		memclear(unsafe.Pointer(&seckey32), 32)
		memclear(unsafe.Pointer(&nonce32), 32)
	}()

	if err := keypairLoad(&sk, &pk, keypair); err != nil {
		return err
	}
	// the public key is public, so branching on its parity is fine
	pk.y.normalizeVar()
	if pk.y.isOdd() {
		sk.negate(&sk)
	}
	sk.getB32(seckey32[:])
	pk.x.normalizeVar()
	pk.x.getB32(pk32[:])

	if err := NonceFunctionBIP340(nonce32[:], msg, seckey32[:], pk32[:], auxRand32); err != nil {
		return err
	}
	k.setB32(nonce32[:])
	if k.isZero() {
		return makeError(ErrSignFailed, "nonce is zero")
	}

	if err := ctx.ecmultGen(&rj, &k); err != nil {
		return err
	}
	r.setGEJ(&rj)
	k.condNegate(boolToInt(r.y.isOdd()))
	r.x.getB32(sig64[:32])

	schnorrChallenge(&e, sig64[:32], msg, pk32[:])
	e.mul(&e, &sk)
	e.add(&e, &k)
	e.getB32(sig64[32:])
	return nil
}

// SchnorrVerify reports whether sig64 is a valid BIP-340 signature of msg
// under pubkey.
func SchnorrVerify(ctx *Context, sig64 []byte, msg []byte, pubkey *XOnlyPubkey) (bool, error) {
	if len(sig64) != SchnorrSignatureSize {
		return false, makeError(ErrInvalidLength, "signature must be 64 bytes")
	}
	if err := ctx.check(); err != nil {
		return false, err
	}

	var rx FieldElement
	if !rx.setB32Limit(sig64[:32]) {
		return false, nil
	}
	var s Scalar
	if s.setB32(sig64[32:]) {
		return false, nil
	}
	var pk GroupElementAffine
	if err := xonlyPubkeyLoad(&pk, pubkey); err != nil {
		return false, err
	}

	var e Scalar
	schnorrChallenge(&e, sig64[:32], msg, pubkey.data[:])
	e.negate(&e)

	// R = s*G - e*P
	var pkj, rj GroupElementJacobian
	pkj.setGE(&pk)
	if err := ctx.ecmultVar(&rj, &pkj, &e, &s); err != nil {
		return false, err
	}
	var r GroupElementAffine
	r.setGEJVar(&rj)
	if r.isInfinity() {
		return false, nil
	}
	return !r.y.isOdd() && rx.equalVar(&r.x), nil
}
