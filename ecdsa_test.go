package p256k1

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestECDSASignVectors(t *testing.T) {
	ctx := newTestContext(t)
	satoshi := sha256.Sum256([]byte("Satoshi Nakamoto"))
	one := bytes32(big.NewInt(1))
	ndata := make([]byte, 32)
	ndata[31] = 1

	tests := []struct {
		name   string
		seckey string
		msg    []byte
		ndata  []byte
		want   string
	}{
		{
			name:   "key one",
			seckey: hex.EncodeToString(one),
			msg:    satoshi[:],
			want: "934b1ea10a4b3c1757e2b0c017d0b6143ce3c9a7e6a4a49860d7a6ab210ee3d8" +
				"2442ce9d2b916064108014783e923ec36b49743e2ffa1c4496f01a512aafd9e5",
		},
		{
			name:   "key one with nonce data",
			seckey: hex.EncodeToString(one),
			msg:    satoshi[:],
			ndata:  ndata,
			want: "3f882c5314da77baae73e6f22f58b9a9c7bb8d6a04da09742f30dc0a61abcf4d" +
				"280d5a6c657f20d426c53a8eb4dd56c33358527c5b3bf7aa0ce8169501ee7435",
		},
		{
			name:   "random key",
			seckey: "ebb2c082fd7727890a28ac82f6bdf97bad8de9f5d7c9028692de1a255cad3e0f",
			msg:    mustHex(t, "4b688df40bcedbe641ddb16ff0a1842d9c67ea1c3bf63f3e0471baa664531d1a"),
			want: "e3650c6a94419ce0db9d9e209ca5bac2f9a888f376bd7f05a142dd87f1fd90f6" +
				"252e6c025089ed9b784daed95ce09b1dfdb46d454e6fc1e1bd7ea007513f5c9a",
		},
		{
			name:   "message above the order",
			seckey: hex.EncodeToString(one),
			msg:    bytes32(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))),
			want: "7cb38cc5712e9e11a767615f6080dbc111c9cdd613eb98999fd92a86bafd4540" +
				"7923ca1f4d03471d2866f776ef8a6d3cac099b427331aeb245aa9dafeddcf115",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sk := mustHex(t, tt.seckey)
			var sig ECDSASignature
			require.NoError(t, ECDSASignWithNonceData(ctx, &sig, tt.msg, sk, tt.ndata))
			assert.Equal(t, tt.want, hex.EncodeToString(sig.ToCompact()[:]))

			var pk PublicKey
			require.NoError(t, ECPubkeyCreate(ctx, &pk, sk))
			ok, err := ECDSAVerify(ctx, &sig, tt.msg, &pk)
			require.NoError(t, err)
			assert.True(t, ok)
		})
	}
}

func TestECDSASignVerifyRandom(t *testing.T) {
	ctx := newTestContext(t)
	rng := newTestRand(121)
	for i := 0; i < 50; i++ {
		sk, pk, err := ECKeyPairGenerate(ctx)
		require.NoError(t, err)
		msg := randBytes32(rng)

		var sig ECDSASignature
		require.NoError(t, ECDSASign(ctx, &sig, msg, sk))
		require.False(t, sig.s.isHigh(), "signatures are low-S")

		ok, err := ECDSAVerify(ctx, &sig, msg, pk)
		require.NoError(t, err)
		require.True(t, ok)

		msg[i%32] ^= 0x01
		ok, err = ECDSAVerify(ctx, &sig, msg, pk)
		require.NoError(t, err)
		require.False(t, ok)
	}
}

func TestECDSAHighS(t *testing.T) {
	ctx := newTestContext(t)
	sk := bytes32(big.NewInt(42))
	msg := sha256.Sum256([]byte("high s"))
	var pk PublicKey
	require.NoError(t, ECPubkeyCreate(ctx, &pk, sk))

	var sig, high, norm ECDSASignature
	require.NoError(t, ECDSASign(ctx, &sig, msg[:], sk))
	assert.False(t, ECDSASignatureNormalize(&norm, &sig))
	assert.Equal(t, sig, norm)

	high = sig
	high.s.negate(&high.s)
	ok, err := ECDSAVerify(ctx, &high, msg[:], &pk)
	require.NoError(t, err)
	assert.False(t, ok, "high-S is rejected")

	// the raw check accepts both halves
	var q GroupElementAffine
	require.NoError(t, pubkeyLoad(&q, &pk))
	var m Scalar
	m.setB32(msg[:])
	ok, err = ecdsaSigVerify(ctx, &high.r, &high.s, &q, &m)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.True(t, ECDSASignatureNormalize(&high, &high))
	assert.Equal(t, sig, high)
}

func TestECDSAVerifyEdgeCases(t *testing.T) {
	ctx := newTestContext(t)
	sk := bytes32(big.NewInt(3))
	msg := make([]byte, 32)
	var pk PublicKey
	require.NoError(t, ECPubkeyCreate(ctx, &pk, sk))

	var zero ECDSASignature
	ok, err := ECDSAVerify(ctx, &zero, msg, &pk)
	require.NoError(t, err)
	assert.False(t, ok)

	var sig ECDSASignature
	require.NoError(t, ECDSASign(ctx, &sig, msg, sk))
	_, err = ECDSAVerify(ctx, &sig, msg[:31], &pk)
	assert.ErrorIs(t, err, ErrInvalidLength)
	_, err = ECDSAVerify(ctx, &sig, msg, &PublicKey{})
	assert.ErrorIs(t, err, ErrPubKeyInvalid)

	assert.ErrorIs(t, ECDSASign(ctx, &sig, msg[:31], sk), ErrInvalidLength)
	assert.ErrorIs(t, ECDSASign(ctx, &sig, msg, make([]byte, 32)), ErrSecKeyInvalid)
	assert.ErrorIs(t, ECDSASignWithNonceData(ctx, &sig, msg, sk, msg[:16]), ErrInvalidLength)
}

// TestECDSAVerifyROverflow checks a signature whose R has an x coordinate
// above the group order, so r = x(R) - n and the verifier has to retry with
// r + n.
func TestECDSAVerifyROverflow(t *testing.T) {
	ctx := newTestContext(t)

	rx := new(big.Int).Add(bigN, big.NewInt(2))
	ry, _ := new(big.Int).SetString("36b1aa62eb77c1973025cbcbea9740eed8eacdab8772268b395064453269d1d3", 16)
	rPoint := geFromBig(rx, ry)
	require.True(t, rPoint.isValidVar())

	// with s = 1, R = z*G + r*Q, so Q = r^-1*R - z*r^-1*G
	r := scalarFromBig(big.NewInt(2))
	s := ScalarOne
	msg := sha256.Sum256([]byte("r overflow"))
	var z, rinv, coef Scalar
	z.setB32(msg[:])
	rinv.inverseVar(&r)
	coef.mul(&z, &rinv)
	coef.negate(&coef)
	var rj, qj GroupElementJacobian
	rj.setGE(&rPoint)
	require.NoError(t, ctx.ecmultVar(&qj, &rj, &rinv, &coef))
	q := toAffine(&qj)
	var pk PublicKey
	pubkeySave(&pk, &q)

	sig := ECDSASignature{r: r, s: s}
	ok, err := ECDSAVerify(ctx, &sig, msg[:], &pk)
	require.NoError(t, err)
	assert.True(t, ok)

	var ser [65]byte
	_, err = ECPubkeySerialize(ser[:], &pk, ECCompressed)
	require.NoError(t, err)
	bpub, err := btcec.ParsePubKey(ser[:33])
	require.NoError(t, err)
	var br, bs btcec.ModNScalar
	br.SetInt(2)
	bs.SetInt(1)
	assert.True(t, btcecdsa.NewSignature(&br, &bs).Verify(msg[:], bpub))

	other := sha256.Sum256([]byte("other"))
	ok, err = ECDSAVerify(ctx, &sig, other[:], &pk)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestECDSACompact(t *testing.T) {
	ctx := newTestContext(t)
	sk := bytes32(big.NewInt(1234567))
	msg := sha256.Sum256([]byte("compact"))
	var pk PublicKey
	require.NoError(t, ECPubkeyCreate(ctx, &pk, sk))

	var compact ECDSASignatureCompact
	require.NoError(t, ECDSASignCompact(ctx, &compact, msg[:], sk))
	ok, err := ECDSAVerifyCompact(ctx, &compact, msg[:], &pk)
	require.NoError(t, err)
	assert.True(t, ok)

	var sig ECDSASignature
	require.NoError(t, sig.FromCompact(&compact))
	assert.Equal(t, compact, *sig.ToCompact())

	bad := compact
	copy(bad[:32], bytes32(bigN))
	_, err = ECDSAVerifyCompact(ctx, &bad, msg[:], &pk)
	assert.ErrorIs(t, err, ErrSigRTooBig)
	bad = compact
	copy(bad[32:], bytes32(bigN))
	assert.ErrorIs(t, sig.FromCompact(&bad), ErrSigSTooBig)
	assert.ErrorIs(t, ECDSASignatureParseCompact(&sig, compact[:63]), ErrInvalidLength)
}

func TestECDSADERRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		r, s *big.Int
		der  string
	}{
		{"small values", big.NewInt(1), big.NewInt(2), "3006020101020102"},
		{"high bit padded", big.NewInt(0x80), big.NewInt(0x7f), "30070202008002017f"},
		{"zero", big.NewInt(0), big.NewInt(1), "3006020100020101"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := ECDSASignature{r: scalarFromBig(tt.r), s: scalarFromBig(tt.s)}
			der := ECDSASignatureSerializeDER(&sig)
			assert.Equal(t, tt.der, hex.EncodeToString(der))

			var parsed ECDSASignature
			require.NoError(t, ECDSASignatureParseDER(&parsed, der))
			assert.Equal(t, sig, parsed)
		})
	}

	// full-width values take the maximum length
	nm1 := new(big.Int).Sub(bigN, big.NewInt(1))
	sig := ECDSASignature{r: scalarFromBig(nm1), s: scalarFromBig(nm1)}
	der := ECDSASignatureSerializeDER(&sig)
	assert.Len(t, der, MaxDERSigLen)
	var parsed ECDSASignature
	require.NoError(t, ECDSASignatureParseDER(&parsed, der))
	assert.Equal(t, sig, parsed)
}

func TestECDSAParseDERErrors(t *testing.T) {
	valid := mustHex(t, "3006020101020102")
	mutate := func(f func(b []byte) []byte) []byte {
		b := append([]byte(nil), valid...)
		return f(b)
	}
	n33 := append([]byte{0x00}, bytes32(bigN)...)
	overR := append(append([]byte{0x30, 0x26, 0x02, 0x21}, n33...), 0x02, 0x01, 0x01)
	overS := append([]byte{0x30, 0x26, 0x02, 0x01, 0x01, 0x02, 0x21}, n33...)

	tests := []struct {
		name string
		der  []byte
		err  ErrorKind
	}{
		{"too short", valid[:7], ErrSigInvalidDER},
		{"too long", make([]byte, MaxDERSigLen+1), ErrSigInvalidDER},
		{"wrong sequence id", mutate(func(b []byte) []byte { b[0] = 0x31; return b }), ErrSigInvalidDER},
		{"bad total length", mutate(func(b []byte) []byte { b[1] = 0x05; return b }), ErrSigInvalidDER},
		{"trailing data", mutate(func(b []byte) []byte {
			b[1]++
			return append(b, 0x00)
		}), ErrSigInvalidDER},
		{"wrong R marker", mutate(func(b []byte) []byte { b[2] = 0x03; return b }), ErrSigInvalidDER},
		{"wrong S marker", mutate(func(b []byte) []byte { b[5] = 0x03; return b }), ErrSigInvalidDER},
		{"R length overruns", mutate(func(b []byte) []byte { b[3] = 0x05; return b }), ErrSigInvalidDER},
		{"zero R length", mustHex(t, "30060200020201020102")[:8], ErrSigInvalidDER},
		{"negative R", mutate(func(b []byte) []byte { b[4] = 0x81; return b }), ErrSigInvalidDER},
		{"negative S", mutate(func(b []byte) []byte { b[7] = 0x81; return b }), ErrSigInvalidDER},
		{"padded R", mustHex(t, "300702020001020102"), ErrSigInvalidDER},
		{"padded S", mustHex(t, "300702010102020002"), ErrSigInvalidDER},
		{"R equals order", overR, ErrSigRTooBig},
		{"S equals order", overS, ErrSigSTooBig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sig ECDSASignature
			require.ErrorIs(t, ECDSASignatureParseDER(&sig, tt.der), tt.err)
		})
	}
}

// TestECDSABtcecInterop checks that signatures are interchangeable with the
// btcec implementation in both directions. Both derive nonces with RFC 6979
// and normalize to low-S, so the signatures are also byte-identical.
func TestECDSABtcecInterop(t *testing.T) {
	ctx := newTestContext(t)
	rng := newTestRand(122)

	for i := 0; i < 25; i++ {
		sk := bytes32(new(big.Int).Add(randBig(rng, new(big.Int).Sub(bigN, big.NewInt(1))), big.NewInt(1)))
		msg := randBytes32(rng)
		priv, bpub := btcec.PrivKeyFromBytes(sk)

		var pk PublicKey
		require.NoError(t, ECPubkeyParse(&pk, bpub.SerializeCompressed()))

		var sig ECDSASignature
		require.NoError(t, ECDSASign(ctx, &sig, msg, sk))
		der := ECDSASignatureSerializeDER(&sig)

		bsig := btcecdsa.Sign(priv, msg)
		assert.Equal(t, bsig.Serialize(), der)

		parsed, err := btcecdsa.ParseDERSignature(der)
		require.NoError(t, err)
		assert.True(t, parsed.Verify(msg, bpub))

		var fromBtcec ECDSASignature
		require.NoError(t, ECDSASignatureParseDER(&fromBtcec, bsig.Serialize()))
		ok, err := ECDSAVerify(ctx, &fromBtcec, msg, &pk)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func BenchmarkECDSASign(b *testing.B) {
	ctx := newTestContext(b)
	sk := bytes32(big.NewInt(987654321))
	msg := sha256.Sum256([]byte("bench"))
	var sig ECDSASignature
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ECDSASign(ctx, &sig, msg[:], sk)
	}
}

func BenchmarkECDSAVerify(b *testing.B) {
	ctx := newTestContext(b)
	sk := bytes32(big.NewInt(987654321))
	msg := sha256.Sum256([]byte("bench"))
	var pk PublicKey
	var sig ECDSASignature
	_ = ECPubkeyCreate(ctx, &pk, sk)
	_ = ECDSASign(ctx, &sig, msg[:], sk)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ECDSAVerify(ctx, &sig, msg[:], &pk)
	}
}
