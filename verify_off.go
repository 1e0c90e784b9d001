//go:build !p256k1verify

package p256k1

const verifyEnabled = false
