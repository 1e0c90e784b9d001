package p256k1

import "math/bits"

// uint128 is an unsigned 128-bit accumulator used by the field and scalar
// multiplication carry chains.
type uint128 struct {
	hi, lo uint64
}

func mulU64(a, b uint64) uint128 {
	hi, lo := bits.Mul64(a, b)
	return uint128{hi: hi, lo: lo}
}

// addMul returns c + a*b.
func (c uint128) addMul(a, b uint64) uint128 {
	hi, lo := bits.Mul64(a, b)
	var carry uint64
	c.lo, carry = bits.Add64(c.lo, lo, 0)
	c.hi, _ = bits.Add64(c.hi, hi, carry)
	return c
}

// add64 returns c + a.
func (c uint128) add64(a uint64) uint128 {
	var carry uint64
	c.lo, carry = bits.Add64(c.lo, a, 0)
	c.hi += carry
	return c
}

// rsh shifts right by n, 0 < n < 128. n is never secret.
func (c uint128) rsh(n uint) uint128 {
	if n >= 64 {
		return uint128{lo: c.hi >> (n - 64)}
	}
	return uint128{hi: c.hi >> n, lo: c.lo>>n | c.hi<<(64-n)}
}

// int128 is a two's complement signed 128-bit accumulator for the safegcd
// matrix updates.
type int128 struct {
	hi, lo uint64
}

// mulI64 returns a*b as a signed 128-bit value.
func mulI64(a, b int64) int128 {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	hi -= uint64(a>>63) & uint64(b)
	hi -= uint64(b>>63) & uint64(a)
	return int128{hi: hi, lo: lo}
}

// accumMul returns c + a*b.
func (c int128) accumMul(a, b int64) int128 {
	p := mulI64(a, b)
	var carry uint64
	c.lo, carry = bits.Add64(c.lo, p.lo, 0)
	c.hi, _ = bits.Add64(c.hi, p.hi, carry)
	return c
}

// rsh is an arithmetic right shift by n, 0 < n < 64.
func (c int128) rsh(n uint) int128 {
	return int128{hi: uint64(int64(c.hi) >> n), lo: c.lo>>n | c.hi<<(64-n)}
}

func (c int128) toU64() uint64 { return c.lo }

func (c int128) toI64() int64 { return int64(c.lo) }
