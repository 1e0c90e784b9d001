package p256k1

import "unsafe"

// ECDSASignature is a parsed ECDSA signature (r, s), both nonzero and below
// the group order once produced by signing or parsing.
type ECDSASignature struct {
	r, s Scalar
}

// ECDSASignatureCompact is the 64-byte r || s encoding.
type ECDSASignatureCompact [64]byte

var (
	// the group order as a field element
	ecdsaOrderAsFE = fieldConst(
		0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFF, 0xFFFFFFFE,
		0xBAAEDCE6, 0xAF48A03B, 0xBFD25E8C, 0xD0364141,
	)
	// p - n
	ecdsaPMinusOrder = fieldConst(
		0, 0, 0, 1, 0x45512319, 0x50B75FC4, 0x402DA172, 0x2FC9BAEE,
	)
)

// ecdsaSigSign computes (r, s) for a valid nonce and secret key. It reports
// false if r or s is zero. Constant time in sec and nonce.
func ecdsaSigSign(ctx *Context, sigr, sigs, sec, msg, nonce *Scalar) (bool, error) {
	var rp GroupElementJacobian
	var r GroupElementAffine
	var b [32]byte
	var n Scalar
	defer rp.clear()
	defer r.clear()
	defer n.clear()

	if err := ctx.ecmultGen(&rp, nonce); err != nil {
		return false, err
	}
	r.setGEJ(&rp)
	r.x.getB32(b[:])
	sigr.setB32(b[:])

	n.mul(sigr, sec)
	n.add(&n, msg)
	sigs.inverse(nonce)
	sigs.mul(sigs, &n)
	sigs.condNegate(boolToInt(sigs.isHigh()))
	return !sigr.isZero() && !sigs.isZero(), nil
}

// ECDSASign signs the 32-byte msghash32 with a deterministic RFC 6979 nonce.
// The signature is always low-S.
func ECDSASign(ctx *Context, sig *ECDSASignature, msghash32 []byte, seckey []byte) error {
	return ECDSASignWithNonceData(ctx, sig, msghash32, seckey, nil)
}

// ECDSASignWithNonceData is ECDSASign with 32 bytes of extra data mixed into
// the nonce derivation. A nil ndata is the same as ECDSASign.
func ECDSASignWithNonceData(ctx *Context, sig *ECDSASignature, msghash32, seckey, ndata []byte) error {
	if len(msghash32) != 32 {
		return makeError(ErrInvalidLength, "message hash must be 32 bytes")
	}
	if ndata != nil && len(ndata) != 32 {
		return makeError(ErrInvalidLength, "nonce data must be 32 bytes")
	}

	var sec, msg, nonce Scalar
	defer sec.clear()
	defer nonce.clear()
	if err := loadSecKey(&sec, seckey); err != nil {
		return err
	}
	msg.setB32(msghash32)

	// key = seckey || msg mod n [|| ndata]
	var keydata [96]byte
	keylen := 64
	sec.getB32(keydata[:32])
	msg.getB32(keydata[32:64])
	if ndata != nil {
		copy(keydata[64:], ndata)
		keylen = 96
	}
	rng := NewRFC6979HMACSHA256(keydata[:keylen])
	memclear(unsafe.Pointer(&keydata), unsafe.Sizeof(keydata))
	defer rng.Clear()

	var nonce32 [32]byte
	defer memclear(unsafe.Pointer(&nonce32), unsafe.Sizeof(nonce32))
	for {
		rng.Generate(nonce32[:])
		if !nonce.setB32SecKey(nonce32[:]) {
			continue
		}
		ok, err := ecdsaSigSign(ctx, &sig.r, &sig.s, &sec, &msg, &nonce)
		if err != nil {
			return err
		}
		if ok {
			break
		}
	}
	rng.Finalize()
	return nil
}

// ecdsaSigVerify checks (r, s) against the public point and message. s is
// accepted in both halves of the range. Variable time.
func ecdsaSigVerify(ctx *Context, sigr, sigs *Scalar, pubkey *GroupElementAffine, msg *Scalar) (bool, error) {
	if sigr.isZero() || sigs.isZero() {
		return false, nil
	}
	var sn, u1, u2 Scalar
	sn.inverseVar(sigs)
	u1.mul(&sn, msg)
	u2.mul(&sn, sigr)

	var pubkeyj, pr GroupElementJacobian
	pubkeyj.setGE(pubkey)
	if err := ctx.ecmultVar(&pr, &pubkeyj, &u2, &u1); err != nil {
		return false, err
	}
	if pr.isInfinity() {
		return false, nil
	}

	// Compare x(R) with r in the field, avoiding an inversion. Because
	// x(R) is reduced mod n, r + n also has to be tried while it is < p.
	var c [32]byte
	var xr FieldElement
	sigr.getB32(c[:])
	xr.setB32(c[:])
	if pr.eqXVar(&xr) {
		return true, nil
	}
	if xr.cmpVar(&ecdsaPMinusOrder) >= 0 {
		return false, nil
	}
	xr.add(&ecdsaOrderAsFE)
	xr.normalizeVar()
	return pr.eqXVar(&xr), nil
}

// ECDSAVerify reports whether sig is a valid low-S signature of msghash32
// under pubkey.
func ECDSAVerify(ctx *Context, sig *ECDSASignature, msghash32 []byte, pubkey *PublicKey) (bool, error) {
	if len(msghash32) != 32 {
		return false, makeError(ErrInvalidLength, "message hash must be 32 bytes")
	}
	var q GroupElementAffine
	if err := pubkeyLoad(&q, pubkey); err != nil {
		return false, err
	}
	if sig.s.isHigh() {
		return false, nil
	}
	var msg Scalar
	msg.setB32(msghash32)
	return ecdsaSigVerify(ctx, &sig.r, &sig.s, &q, &msg)
}

// ECDSASignatureNormalize sets out to the low-S form of in and reports
// whether in was high-S. out may be in.
func ECDSASignatureNormalize(out, in *ECDSASignature) bool {
	high := in.s.isHigh()
	out.r = in.r
	out.s = in.s
	if high {
		out.s.negate(&out.s)
	}
	return high
}

// ECDSASignatureParseCompact parses a 64-byte r || s signature. Values not
// below the group order are rejected; zero values parse but never verify.
func ECDSASignatureParseCompact(sig *ECDSASignature, input64 []byte) error {
	if len(input64) != 64 {
		return makeError(ErrInvalidLength, "compact signature must be 64 bytes")
	}
	var r, s Scalar
	if r.setB32(input64[:32]) {
		return makeError(ErrSigRTooBig, "signature r is not below the group order")
	}
	if s.setB32(input64[32:]) {
		return makeError(ErrSigSTooBig, "signature s is not below the group order")
	}
	sig.r, sig.s = r, s
	return nil
}

// ECDSASignatureSerializeCompact writes sig as r || s.
func ECDSASignatureSerializeCompact(output64 []byte, sig *ECDSASignature) {
	sig.r.getB32(output64[:32])
	sig.s.getB32(output64[32:64])
}

// ToCompact returns the compact encoding of sig.
func (sig *ECDSASignature) ToCompact() *ECDSASignatureCompact {
	var compact ECDSASignatureCompact
	ECDSASignatureSerializeCompact(compact[:], sig)
	return &compact
}

// FromCompact parses a compact signature into sig.
func (sig *ECDSASignature) FromCompact(compact *ECDSASignatureCompact) error {
	return ECDSASignatureParseCompact(sig, compact[:])
}

// ECDSASignCompact signs msghash32 and writes the compact encoding.
func ECDSASignCompact(ctx *Context, compact *ECDSASignatureCompact, msghash32 []byte, seckey []byte) error {
	var sig ECDSASignature
	if err := ECDSASign(ctx, &sig, msghash32, seckey); err != nil {
		return err
	}
	*compact = *sig.ToCompact()
	return nil
}

// ECDSAVerifyCompact verifies a compact signature.
func ECDSAVerifyCompact(ctx *Context, compact *ECDSASignatureCompact, msghash32 []byte, pubkey *PublicKey) (bool, error) {
	var sig ECDSASignature
	if err := sig.FromCompact(compact); err != nil {
		return false, err
	}
	return ECDSAVerify(ctx, &sig, msghash32, pubkey)
}
