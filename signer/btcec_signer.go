package signer

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/pkg/errors"
)

// BtcecSigner implements I on btcec. It keys, signs and derives ECDH secrets
// exactly as P256K1Signer does and serves as a reference backend.
type BtcecSigner struct {
	privKey  *btcec.PrivateKey
	pubKey   *btcec.PublicKey
	xonlyPub []byte
}

// NewBtcecSigner creates an empty BtcecSigner.
func NewBtcecSigner() *BtcecSigner {
	return &BtcecSigner{}
}

// setEven stores privKey, negated if its public key has odd y.
func (s *BtcecSigner) setEven(privKey *btcec.PrivateKey) {
	pubKey := privKey.PubKey()
	if pubKey.SerializeCompressed()[0] == 0x03 {
		scalar := privKey.Key
		scalar.Negate()
		privKey = &btcec.PrivateKey{Key: scalar}
		pubKey = privKey.PubKey()
	}
	s.privKey = privKey
	s.pubKey = pubKey
	s.xonlyPub = schnorr.SerializePubKey(pubKey)
}

// Generate creates a fresh key pair with an even public key.
func (s *BtcecSigner) Generate() error {
	privKey, err := btcec.NewPrivateKey()
	if err != nil {
		return errors.Wrap(err, "generating btcec key")
	}
	s.setEven(privKey)
	return nil
}

// InitSec sets the secret key from raw bytes.
func (s *BtcecSigner) InitSec(sec []byte) error {
	if err := checkLen(sec, 32, "secret key"); err != nil {
		return err
	}
	privKey, _ := btcec.PrivKeyFromBytes(sec)
	if privKey.Key.IsZero() {
		return errors.New("secret key is zero mod n")
	}
	s.setEven(privKey)
	return nil
}

// InitPub sets a 32-byte x-only public key for verification only.
func (s *BtcecSigner) InitPub(pub []byte) error {
	if err := checkLen(pub, 32, "public key"); err != nil {
		return err
	}
	pubKey, err := schnorr.ParsePubKey(pub)
	if err != nil {
		return errors.Wrap(err, "parsing x-only key")
	}
	s.privKey = nil
	s.pubKey = pubKey
	s.xonlyPub = append([]byte(nil), pub...)
	return nil
}

// Sec returns the secret key bytes, or nil.
func (s *BtcecSigner) Sec() []byte {
	if s.privKey == nil {
		return nil
	}
	return s.privKey.Serialize()
}

// Pub returns the x-only public key bytes, or nil.
func (s *BtcecSigner) Pub() []byte {
	return s.xonlyPub
}

// Sign creates a BIP-340 signature of a 32-byte message.
func (s *BtcecSigner) Sign(msg []byte) (sig []byte, err error) {
	if s.privKey == nil {
		return nil, ErrNoSecret
	}
	if err = checkLen(msg, 32, "message"); err != nil {
		return nil, err
	}
	// zero auxiliary randomness, as P256K1Signer uses
	signature, err := schnorr.Sign(s.privKey, msg, schnorr.CustomNonce([32]byte{}))
	if err != nil {
		return nil, errors.Wrap(err, "signing")
	}
	return signature.Serialize(), nil
}

// Verify checks sig over a 32-byte message against the stored public key.
func (s *BtcecSigner) Verify(msg, sig []byte) (valid bool, err error) {
	if s.pubKey == nil {
		return false, ErrNoPubKey
	}
	if err = checkLen(msg, 32, "message"); err != nil {
		return false, err
	}
	if err = checkLen(sig, 64, "signature"); err != nil {
		return false, err
	}
	signature, err := schnorr.ParseSignature(sig)
	if err != nil {
		// out of range r or s
		return false, nil
	}
	return signature.Verify(msg, s.pubKey), nil
}

// Zero wipes the secret key.
func (s *BtcecSigner) Zero() {
	if s.privKey != nil {
		s.privKey.Zero()
		s.privKey = nil
	}
	s.pubKey = nil
	s.xonlyPub = nil
}

// ECDH returns the x coordinate of the shared point with the even point of
// the x-only key pub.
func (s *BtcecSigner) ECDH(pub []byte) (secret []byte, err error) {
	if s.privKey == nil {
		return nil, ErrNoSecret
	}
	if err = checkLen(pub, 32, "public key"); err != nil {
		return nil, err
	}
	pubKey, err := schnorr.ParsePubKey(pub)
	if err != nil {
		return nil, errors.Wrap(err, "parsing x-only key")
	}
	return btcec.GenerateSharedSecret(s.privKey, pubKey), nil
}
