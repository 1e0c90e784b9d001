package p256k1

import "unsafe"

// ECDHHashFunction hashes the shared point (x32, y32) into output. It
// returns false to signal failure.
type ECDHHashFunction func(output []byte, x32 []byte, y32 []byte) bool

// hkdfMaxOutput is the RFC 5869 limit of 255 blocks.
const hkdfMaxOutput = 255 * 32

// ECDHHashFunctionSHA256 outputs SHA256 of the compressed encoding of the
// shared point.
func ECDHHashFunctionSHA256(output []byte, x32 []byte, y32 []byte) bool {
	version := []byte{(y32[31] & 0x01) | 0x02}
	h := NewSHA256()
	h.Write(version)
	h.Write(x32)
	h.Finalize(output)
	h.Clear()
	return true
}

// ecdhPoint computes the shared point seckey*pubkey in constant time and
// writes its coordinates to x32 and y32.
func ecdhPoint(ctx *Context, x32, y32 []byte, pubkey *PublicKey, seckey []byte) error {
	if err := ctx.check(); err != nil {
		return err
	}
	var pt GroupElementAffine
	if err := pubkeyLoad(&pt, pubkey); err != nil {
		return err
	}
	var s Scalar
	defer s.clear()
	if err := loadSecKey(&s, seckey); err != nil {
		return err
	}

	var res GroupElementJacobian
	var resAff GroupElementAffine
	defer res.clear()
	defer resAff.clear()
	ecmultConst(&res, &pt, &s)
	resAff.setGEJ(&res)
	resAff.x.getB32(x32)
	resAff.y.getB32(y32)
	return nil
}

// ECDH computes a shared secret between seckey and pubkey. The shared point
// is passed through hashfp, or ECDHHashFunctionSHA256 when hashfp is nil.
// output must be large enough for the hash function.
func ECDH(ctx *Context, output []byte, pubkey *PublicKey, seckey []byte, hashfp ECDHHashFunction) error {
	if hashfp == nil {
		if len(output) != 32 {
			return makeError(ErrInvalidLength, "output must be 32 bytes")
		}
		hashfp = ECDHHashFunctionSHA256
	}

	var x, y [32]byte
	defer memclear(unsafe.Pointer(&x), 32)
	defer memclear(unsafe.Pointer(&y), 32)
	if err := ecdhPoint(ctx, x[:], y[:], pubkey, seckey); err != nil {
		return err
	}
	if !hashfp(output, x[:], y[:]) {
		return makeError(ErrECDHHash, "hash function failed")
	}
	return nil
}

// ECDHXOnly writes the bare x coordinate of the shared point to output.
func ECDHXOnly(ctx *Context, output []byte, pubkey *PublicKey, seckey []byte) error {
	if len(output) != 32 {
		return makeError(ErrInvalidLength, "output must be 32 bytes")
	}
	var y [32]byte
	defer memclear(unsafe.Pointer(&y), 32)
	return ecdhPoint(ctx, output, y[:], pubkey, seckey)
}

// HKDF derives len(output) bytes from ikm with HKDF-SHA256 (RFC 5869). An
// empty salt is replaced by 32 zero bytes.
func HKDF(output []byte, ikm []byte, salt []byte, info []byte) error {
	if len(output) == 0 || len(output) > hkdfMaxOutput {
		return makeError(ErrInvalidLength, "HKDF output must be 1 to 8160 bytes")
	}
	if len(salt) == 0 {
		salt = make([]byte, 32)
	}

	// extract
	var prk [32]byte
	defer memclear(unsafe.Pointer(&prk), 32)
	hmacSHA256(prk[:], salt, ikm)

	// expand: T(i) = HMAC(PRK, T(i-1) || info || i)
	var t [32]byte
	defer memclear(unsafe.Pointer(&t), 32)
	tLen := 0
	for i, off := byte(1), 0; off < len(output); i++ {
		hmacSHA256(t[:], prk[:], t[:tLen], info, []byte{i})
		tLen = 32
		off += copy(output[off:], t[:])
	}
	return nil
}

// ECDHWithHKDF computes the default ECDH secret and expands it with HKDF.
func ECDHWithHKDF(ctx *Context, output []byte, pubkey *PublicKey, seckey []byte, salt []byte, info []byte) error {
	var shared [32]byte
	defer memclear(unsafe.Pointer(&shared), 32)
	if err := ECDH(ctx, shared[:], pubkey, seckey, nil); err != nil {
		return err
	}
	return HKDF(output, shared[:], salt, info)
}
