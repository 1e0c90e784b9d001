package p256k1

import "fmt"

const (
	// asn1SequenceID is the ASN.1 identifier for a sequence.
	asn1SequenceID = 0x30

	// asn1IntegerID is the ASN.1 identifier for an integer.
	asn1IntegerID = 0x02

	// minDERSigLen is the length when R and S are one byte each.
	minDERSigLen = 8

	// MaxDERSigLen is the length when R and S both need 33 bytes.
	MaxDERSigLen = 72
)

// ECDSASignatureSerializeDER returns the strict DER encoding of sig:
//
//	0x30 <total length> 0x02 <length of R> <R> 0x02 <length of S> <S>
//
// with R and S in their shortest non-negative big-endian form.
func ECDSASignatureSerializeDER(sig *ECDSASignature) []byte {
	var rBuf, sBuf [33]byte
	sig.r.getB32(rBuf[1:])
	sig.s.getB32(sBuf[1:])
	canonR := canonicalDERInt(rBuf[:])
	canonS := canonicalDERInt(sBuf[:])

	totalLen := 6 + len(canonR) + len(canonS)
	b := make([]byte, 0, totalLen)
	b = append(b, asn1SequenceID, byte(totalLen-2))
	b = append(b, asn1IntegerID, byte(len(canonR)))
	b = append(b, canonR...)
	b = append(b, asn1IntegerID, byte(len(canonS)))
	b = append(b, canonS...)
	return b
}

// canonicalDERInt trims leading zero bytes as long as the next byte does not
// have the high bit set.
func canonicalDERInt(b []byte) []byte {
	for len(b) > 1 && b[0] == 0x00 && b[1]&0x80 == 0 {
		b = b[1:]
	}
	return b
}

// ECDSASignatureParseDER parses a strict DER signature. Lengths must be
// minimal single-byte forms, integers must be non-negative without excess
// padding, and no trailing data is allowed. R and S must be below the group
// order.
func ECDSASignatureParseDER(sig *ECDSASignature, der []byte) error {
	const (
		dataLenOffset = 1
		rTypeOffset   = 2
		rLenOffset    = 3
		rOffset       = 4
	)

	sigLen := len(der)
	if sigLen < minDERSigLen || sigLen > MaxDERSigLen {
		return makeError(ErrSigInvalidDER,
			fmt.Sprintf("malformed signature: bad length %d", sigLen))
	}
	if der[0] != asn1SequenceID {
		return makeError(ErrSigInvalidDER,
			fmt.Sprintf("malformed signature: format has wrong type: %#x", der[0]))
	}
	if int(der[dataLenOffset]) != sigLen-2 {
		return makeError(ErrSigInvalidDER,
			fmt.Sprintf("malformed signature: bad length: %d != %d", der[dataLenOffset], sigLen-2))
	}

	rLen := int(der[rLenOffset])
	sTypeOffset := rOffset + rLen
	sLenOffset := sTypeOffset + 1
	if sLenOffset >= sigLen {
		return makeError(ErrSigInvalidDER, "malformed signature: S missing")
	}
	sOffset := sLenOffset + 1
	sLen := int(der[sLenOffset])
	if sOffset+sLen != sigLen {
		return makeError(ErrSigInvalidDER, "malformed signature: invalid S length")
	}

	if der[rTypeOffset] != asn1IntegerID || der[sTypeOffset] != asn1IntegerID {
		return makeError(ErrSigInvalidDER, "malformed signature: missing integer marker")
	}
	rBytes, err := parseDERInt(der[rOffset:rOffset+rLen], "R")
	if err != nil {
		return err
	}
	sBytes, err := parseDERInt(der[sOffset:sOffset+sLen], "S")
	if err != nil {
		return err
	}

	var r, s Scalar
	if len(rBytes) > 32 || r.setB32(leftPad32(rBytes)) {
		return makeError(ErrSigRTooBig, "invalid signature: R >= group order")
	}
	if len(sBytes) > 32 || s.setB32(leftPad32(sBytes)) {
		return makeError(ErrSigSTooBig, "invalid signature: S >= group order")
	}
	sig.r, sig.s = r, s
	return nil
}

// parseDERInt checks the DER integer rules on b and returns its magnitude
// with leading zeros stripped.
func parseDERInt(b []byte, name string) ([]byte, error) {
	if len(b) == 0 {
		return nil, makeError(ErrSigInvalidDER, "malformed signature: "+name+" length is zero")
	}
	if b[0]&0x80 != 0 {
		return nil, makeError(ErrSigInvalidDER, "malformed signature: "+name+" is negative")
	}
	if len(b) > 1 && b[0] == 0x00 && b[1]&0x80 == 0 {
		return nil, makeError(ErrSigInvalidDER, "malformed signature: "+name+" value has too much padding")
	}
	for len(b) > 0 && b[0] == 0x00 {
		b = b[1:]
	}
	return b, nil
}

func leftPad32(b []byte) []byte {
	var out [32]byte
	copy(out[32-len(b):], b)
	return out[:]
}
