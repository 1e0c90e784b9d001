package signer

import (
	"github.com/pkg/errors"

	p256k1 "secp256k1.mleku.dev"
)

// P256K1Signer implements I with BIP-340 Schnorr signatures over a
// p256k1.Context. Secret keys are kept with an even public key so the x-only
// key fully determines the ECDH point.
type P256K1Signer struct {
	ctx       *p256k1.Context
	keypair   *p256k1.KeyPair
	xonlyPub  *p256k1.XOnlyPubkey
	hasSecret bool
}

// NewP256K1Signer creates a signer on the shared context.
func NewP256K1Signer() *P256K1Signer {
	ctx, err := SharedContext()
	if err != nil {
		// the shared context only fails when crypto/rand does
		panic(err)
	}
	return NewP256K1SignerWithContext(ctx)
}

// NewP256K1SignerWithContext creates a signer on ctx.
func NewP256K1SignerWithContext(ctx *p256k1.Context) *P256K1Signer {
	return &P256K1Signer{ctx: ctx}
}

// evenKeyPair returns a key pair for seckey whose public key has even y,
// negating seckey if needed.
func evenKeyPair(ctx *p256k1.Context, seckey []byte) (*p256k1.KeyPair, *p256k1.XOnlyPubkey, error) {
	kp, err := p256k1.KeyPairCreate(ctx, seckey)
	if err != nil {
		return nil, nil, err
	}
	xonly, parity, err := p256k1.KeyPairXOnlyPub(kp)
	if err != nil {
		return nil, nil, err
	}
	if parity == 0 {
		return kp, xonly, nil
	}
	neg := make([]byte, 32)
	copy(neg, seckey)
	if err = p256k1.ECSeckeyNegate(neg); err != nil {
		return nil, nil, errors.Wrap(err, "negating secret key")
	}
	kp.Clear()
	if kp, err = p256k1.KeyPairCreate(ctx, neg); err != nil {
		return nil, nil, err
	}
	xonly, err = kp.XOnlyPubkey()
	return kp, xonly, err
}

// Generate creates a fresh key pair from system entropy with an even public
// key.
func (s *P256K1Signer) Generate() error {
	kp, err := p256k1.KeyPairGenerate(s.ctx)
	if err != nil {
		return errors.Wrap(err, "generating key pair")
	}
	defer kp.Clear()
	return s.InitSec(kp.Seckey())
}

// InitSec sets the secret key from raw bytes and derives the public key.
func (s *P256K1Signer) InitSec(sec []byte) error {
	if err := checkLen(sec, 32, "secret key"); err != nil {
		return err
	}
	kp, xonly, err := evenKeyPair(s.ctx, sec)
	if err != nil {
		return err
	}
	s.keypair = kp
	s.xonlyPub = xonly
	s.hasSecret = true
	return nil
}

// InitPub sets a 32-byte x-only public key for verification only.
func (s *P256K1Signer) InitPub(pub []byte) error {
	if err := checkLen(pub, 32, "public key"); err != nil {
		return err
	}
	xonly, err := p256k1.XOnlyPubkeyParse(pub)
	if err != nil {
		return err
	}
	s.xonlyPub = xonly
	s.keypair = nil
	s.hasSecret = false
	return nil
}

// Sec returns the secret key bytes, or nil.
func (s *P256K1Signer) Sec() []byte {
	if !s.hasSecret || s.keypair == nil {
		return nil
	}
	return s.keypair.Seckey()
}

// Pub returns the x-only public key bytes, or nil.
func (s *P256K1Signer) Pub() []byte {
	if s.xonlyPub == nil {
		return nil
	}
	serialized := s.xonlyPub.Serialize()
	return serialized[:]
}

// Sign creates a BIP-340 signature of a 32-byte message.
func (s *P256K1Signer) Sign(msg []byte) (sig []byte, err error) {
	if !s.hasSecret || s.keypair == nil {
		return nil, ErrNoSecret
	}
	if err = checkLen(msg, 32, "message"); err != nil {
		return nil, err
	}
	sig = make([]byte, p256k1.SchnorrSignatureSize)
	if err = p256k1.SchnorrSign(s.ctx, sig, msg, s.keypair, nil); err != nil {
		return nil, errors.Wrap(err, "signing")
	}
	return sig, nil
}

// Verify checks sig over a 32-byte message against the stored public key.
func (s *P256K1Signer) Verify(msg, sig []byte) (valid bool, err error) {
	if s.xonlyPub == nil {
		return false, ErrNoPubKey
	}
	if err = checkLen(msg, 32, "message"); err != nil {
		return false, err
	}
	if err = checkLen(sig, p256k1.SchnorrSignatureSize, "signature"); err != nil {
		return false, err
	}
	return p256k1.SchnorrVerify(s.ctx, sig, msg, s.xonlyPub)
}

// Zero wipes the secret key.
func (s *P256K1Signer) Zero() {
	if s.keypair != nil {
		s.keypair.Clear()
		s.keypair = nil
	}
	s.hasSecret = false
	s.xonlyPub = nil
}

// ECDH returns the x coordinate of the shared point between the stored
// secret key and the even point of the x-only key pub, matching BtcecSigner.
func (s *P256K1Signer) ECDH(pub []byte) (secret []byte, err error) {
	if !s.hasSecret || s.keypair == nil {
		return nil, ErrNoSecret
	}
	if err = checkLen(pub, 32, "public key"); err != nil {
		return nil, err
	}
	var compressed [p256k1.PubKeyBytesLenCompressed]byte
	compressed[0] = 0x02
	copy(compressed[1:], pub)
	var pubkey p256k1.PublicKey
	if err = p256k1.ECPubkeyParse(&pubkey, compressed[:]); err != nil {
		return nil, err
	}
	secret = make([]byte, 32)
	if err = p256k1.ECDHXOnly(s.ctx, secret, &pubkey, s.keypair.Seckey()); err != nil {
		return nil, errors.Wrap(err, "computing shared secret")
	}
	return secret, nil
}

// P256K1Gen implements Gen, used to grind for keys with a wanted compressed
// prefix.
type P256K1Gen struct {
	ctx           *p256k1.Context
	keypair       *p256k1.KeyPair
	xonlyPub      *p256k1.XOnlyPubkey
	compressedPub *p256k1.PublicKey
}

// NewP256K1Gen creates a generator on the shared context.
func NewP256K1Gen() *P256K1Gen {
	ctx, err := SharedContext()
	if err != nil {
		panic(err)
	}
	return &P256K1Gen{ctx: ctx}
}

// compressed returns the 33-byte encoding of the current public key.
func (g *P256K1Gen) compressed() ([]byte, error) {
	pubkey := *g.keypair.Pubkey()
	out := make([]byte, p256k1.PubKeyBytesLenCompressed)
	if _, err := p256k1.ECPubkeySerialize(out, &pubkey, p256k1.ECCompressed); err != nil {
		return nil, err
	}
	g.compressedPub = &pubkey
	return out, nil
}

// Generate draws a new key pair and returns its 33-byte compressed public
// key, whose prefix shows the parity of y.
func (g *P256K1Gen) Generate() (pubBytes []byte, err error) {
	kp, err := p256k1.KeyPairGenerate(g.ctx)
	if err != nil {
		return nil, errors.Wrap(err, "generating key pair")
	}
	g.keypair = kp
	g.xonlyPub = nil
	return g.compressed()
}

// Negate flips the parity of the public key by negating the secret key.
func (g *P256K1Gen) Negate() {
	if g.keypair == nil {
		return
	}
	seckey := make([]byte, 32)
	copy(seckey, g.keypair.Seckey())
	if err := p256k1.ECSeckeyNegate(seckey); err != nil {
		return
	}
	kp, err := p256k1.KeyPairCreate(g.ctx, seckey)
	if err != nil {
		return
	}
	g.keypair.Clear()
	g.keypair = kp
	if _, err = g.compressed(); err != nil {
		return
	}
	if xonly, err := kp.XOnlyPubkey(); err == nil {
		g.xonlyPub = xonly
	}
}

// KeyPairBytes returns the secret key and the 32-byte x-only public key.
func (g *P256K1Gen) KeyPairBytes() (secBytes, cmprPubBytes []byte) {
	if g.keypair == nil {
		return nil, nil
	}
	secBytes = g.keypair.Seckey()
	if g.xonlyPub == nil {
		xonly, err := g.keypair.XOnlyPubkey()
		if err != nil {
			return secBytes, nil
		}
		g.xonlyPub = xonly
	}
	serialized := g.xonlyPub.Serialize()
	return secBytes, serialized[:]
}
