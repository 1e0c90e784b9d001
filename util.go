package p256k1

import (
	"encoding/binary"
	"math/bits"
	"unsafe"
)

// Constant-time building blocks. Every helper here compiles to straight-line
// arithmetic; none of them branch on their arguments.

// ctIsZero returns 1 if x == 0 and 0 otherwise.
func ctIsZero(x uint64) uint64 {
	return ((x | -x) >> 63) ^ 1
}

// ctEq returns 1 if a == b and 0 otherwise.
func ctEq(a, b uint64) uint64 {
	return ctIsZero(a ^ b)
}

// ctGe returns 1 if a >= b and 0 otherwise.
func ctGe(a, b uint64) uint64 {
	_, borrow := bits.Sub64(a, b, 0)
	return borrow ^ 1
}

// ctMask turns a 0/1 flag into an all-zeros or all-ones mask.
func ctMask(flag int) uint64 {
	return -uint64(flag & 1)
}

// ctSelect returns a when mask is all ones and b when mask is zero.
func ctSelect(mask, a, b uint64) uint64 {
	return b ^ (mask & (a ^ b))
}

// boolToInt returns 1 for true and 0 for false without a branch. A Go bool
// is stored as a single byte holding 0 or 1.
func boolToInt(b bool) int {
	return int(*(*uint8)(unsafe.Pointer(&b)))
}

// memclear zeroes n bytes starting at ptr.
func memclear(ptr unsafe.Pointer, n uintptr) {
	b := unsafe.Slice((*byte)(ptr), n)
	for i := range b {
		b[i] = 0
	}
}

// readLimbsBE reads 32 big-endian bytes into four little-endian 64-bit limbs.
func readLimbsBE(b []byte) (d [4]uint64) {
	if len(b) != 32 {
		panic("p256k1: expected 32 bytes")
	}
	d[3] = binary.BigEndian.Uint64(b[0:8])
	d[2] = binary.BigEndian.Uint64(b[8:16])
	d[1] = binary.BigEndian.Uint64(b[16:24])
	d[0] = binary.BigEndian.Uint64(b[24:32])
	return
}

// writeLimbsBE is the inverse of readLimbsBE.
func writeLimbsBE(b []byte, d *[4]uint64) {
	if len(b) != 32 {
		panic("p256k1: expected 32 bytes")
	}
	binary.BigEndian.PutUint64(b[0:8], d[3])
	binary.BigEndian.PutUint64(b[8:16], d[2])
	binary.BigEndian.PutUint64(b[16:24], d[1])
	binary.BigEndian.PutUint64(b[24:32], d[0])
}
