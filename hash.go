package p256k1

import (
	"hash"
	"sync"
	"unsafe"

	sha256 "github.com/minio/sha256-simd"
)

// Tag hashes of the BIP-340 tags, computed once.
var (
	bip340AuxTagHash       [32]byte
	bip340NonceTagHash     [32]byte
	bip340ChallengeTagHash [32]byte
	taggedHashInitOnce     sync.Once
)

func initTaggedHashPrefixes() {
	bip340AuxTagHash = sha256.Sum256([]byte("BIP0340/aux"))
	bip340NonceTagHash = sha256.Sum256([]byte("BIP0340/nonce"))
	bip340ChallengeTagHash = sha256.Sum256([]byte("BIP0340/challenge"))
}

// getTaggedHashPrefix returns SHA256(tag), cached for the BIP-340 tags.
func getTaggedHashPrefix(tag []byte) [32]byte {
	taggedHashInitOnce.Do(initTaggedHashPrefixes)
	switch string(tag) {
	case "BIP0340/aux":
		return bip340AuxTagHash
	case "BIP0340/nonce":
		return bip340NonceTagHash
	case "BIP0340/challenge":
		return bip340ChallengeTagHash
	}
	return sha256.Sum256(tag)
}

// SHA256 is a streaming SHA-256 context.
type SHA256 struct {
	hasher hash.Hash
}

// NewSHA256 creates a new SHA-256 context.
func NewSHA256() *SHA256 {
	return &SHA256{hasher: sha256.New()}
}

// newTaggedSHA256 returns a context already fed SHA256(tag) || SHA256(tag).
func newTaggedSHA256(tag []byte) *SHA256 {
	h := NewSHA256()
	prefix := getTaggedHashPrefix(tag)
	h.Write(prefix[:])
	h.Write(prefix[:])
	return h
}

// Write feeds data to the hash.
func (h *SHA256) Write(data []byte) {
	h.hasher.Write(data)
}

// Finalize writes the digest to out32, which must be 32 bytes.
func (h *SHA256) Finalize(out32 []byte) {
	if len(out32) != 32 {
		panic("p256k1: output buffer must be 32 bytes")
	}
	var sum [32]byte
	copy(out32, h.hasher.Sum(sum[:0]))
}

// Clear resets the context.
func (h *SHA256) Clear() {
	if h.hasher != nil {
		h.hasher.Reset()
	}
}

// HMACSHA256 is an HMAC-SHA256 context.
type HMACSHA256 struct {
	inner, outer SHA256
}

// NewHMACSHA256 creates an HMAC-SHA256 context keyed with key.
func NewHMACSHA256(key []byte) *HMACSHA256 {
	h := &HMACSHA256{}

	var rkey [64]byte
	if len(key) <= 64 {
		copy(rkey[:], key)
	} else {
		sum := sha256.Sum256(key)
		copy(rkey[:], sum[:])
	}

	h.outer = SHA256{hasher: sha256.New()}
	for i := range rkey {
		rkey[i] ^= 0x5c
	}
	h.outer.Write(rkey[:])

	h.inner = SHA256{hasher: sha256.New()}
	for i := range rkey {
		rkey[i] ^= 0x5c ^ 0x36
	}
	h.inner.Write(rkey[:])

	memclear(unsafe.Pointer(&rkey), unsafe.Sizeof(rkey))
	return h
}

// Write feeds data to the inner hash.
func (h *HMACSHA256) Write(data []byte) {
	h.inner.Write(data)
}

// Finalize writes the MAC to out32, which must be 32 bytes.
func (h *HMACSHA256) Finalize(out32 []byte) {
	var temp [32]byte
	h.inner.Finalize(temp[:])
	h.outer.Write(temp[:])
	h.outer.Finalize(out32)
	memclear(unsafe.Pointer(&temp), unsafe.Sizeof(temp))
}

// Clear resets both halves of the context.
func (h *HMACSHA256) Clear() {
	h.inner.Clear()
	h.outer.Clear()
}

// RFC6979HMACSHA256 is the HMAC-SHA256 DRBG of RFC 6979 section 3.2.
type RFC6979HMACSHA256 struct {
	v, k  [32]byte
	retry bool
}

func hmacSHA256(out32, key []byte, data ...[]byte) {
	h := NewHMACSHA256(key)
	for _, d := range data {
		h.Write(d)
	}
	h.Finalize(out32)
	h.Clear()
}

// NewRFC6979HMACSHA256 seeds the generator with key (steps b through g).
func NewRFC6979HMACSHA256(key []byte) *RFC6979HMACSHA256 {
	rng := &RFC6979HMACSHA256{}
	for i := range rng.v {
		rng.v[i] = 0x01
	}
	hmacSHA256(rng.k[:], rng.k[:], rng.v[:], []byte{0x00}, key)
	hmacSHA256(rng.v[:], rng.k[:], rng.v[:])
	hmacSHA256(rng.k[:], rng.k[:], rng.v[:], []byte{0x01}, key)
	hmacSHA256(rng.v[:], rng.k[:], rng.v[:])
	return rng
}

// Generate fills out with the next bytes of the stream. Every call after the
// first reseeds K and V first (step h.3).
func (rng *RFC6979HMACSHA256) Generate(out []byte) {
	if rng.retry {
		hmacSHA256(rng.k[:], rng.k[:], rng.v[:], []byte{0x00})
		hmacSHA256(rng.v[:], rng.k[:], rng.v[:])
	}
	for len(out) > 0 {
		hmacSHA256(rng.v[:], rng.k[:], rng.v[:])
		n := copy(out, rng.v[:])
		out = out[n:]
	}
	rng.retry = true
}

// Finalize ends the stream.
func (rng *RFC6979HMACSHA256) Finalize() {
	rng.retry = false
}

// Clear zeroes the generator state.
func (rng *RFC6979HMACSHA256) Clear() {
	memclear(unsafe.Pointer(rng), unsafe.Sizeof(*rng))
}

// TaggedHash computes the BIP-340 tagged hash
// SHA256(SHA256(tag) || SHA256(tag) || data).
func TaggedHash(tag []byte, data []byte) [32]byte {
	var out [32]byte
	h := newTaggedSHA256(tag)
	h.Write(data)
	h.Finalize(out[:])
	return out
}
