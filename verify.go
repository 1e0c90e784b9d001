package p256k1

import (
	"fmt"
	"sync/atomic"
)

// verifyCheck panics with msg when cond is false in a verify build
// (-tags p256k1verify). In normal builds it compiles away.
func verifyCheck(cond bool, msg string) {
	if verifyEnabled && !cond {
		panic("p256k1: verify: " + msg)
	}
}

// opKind names a primitive whose calls are counted in a verify build.
type opKind int

const (
	opFieldMul opKind = iota
	opFieldSqr
	opFieldNormalize
	opFieldCmov
	opScalarMul
	opScalarCmov
	opScalarCondNegate
	opGroupDouble
	opGroupAddGE
	opGroupVar
	opDivsteps59
	opDivsteps62Var
	opUpdateFGLimbs
	numOpKinds
)

// opTrace holds per-primitive call counts.
type opTrace [numOpKinds]uint64

var opCounts [numOpKinds]atomic.Uint64

// countOp records n calls of op. It compiles away outside a verify build.
func countOp(op opKind, n uint64) {
	if verifyEnabled {
		opCounts[op].Add(n)
	}
}

func readOpCounts() opTrace {
	var t opTrace
	for i := range opCounts {
		t[i] = opCounts[i].Load()
	}
	return t
}

// verify checks the magnitude and limb bounds of a field element.
func (r *FieldElement) verify() {
	if !verifyEnabled {
		return
	}
	m := uint64(r.magnitude)
	if r.normalized {
		m = 1
	}
	ok := r.magnitude >= 0 && r.magnitude <= 32
	ok = ok && r.n[0] <= 2*m*limbMax && r.n[1] <= 2*m*limbMax &&
		r.n[2] <= 2*m*limbMax && r.n[3] <= 2*m*limbMax && r.n[4] <= 2*m*limb4Max
	if r.normalized {
		ok = ok && r.magnitude <= 1 && r.n[4] <= limb4Max
		if ok && r.n[4] == limb4Max && (r.n[3]&r.n[2]&r.n[1]) == limbMax {
			ok = r.n[0] < fieldP0
		}
	}
	if !ok {
		panic(fmt.Sprintf("p256k1: verify: field element out of bounds: %x m=%d norm=%v",
			r.n, r.magnitude, r.normalized))
	}
}

// verifyMagnitude checks that r has magnitude at most m.
func (r *FieldElement) verifyMagnitude(m int) {
	verifyCheck(r.magnitude <= m, "field magnitude exceeds bound")
}

// verifyNormalized checks that r is fully normalized.
func (r *FieldElement) verifyNormalized() {
	verifyCheck(r.normalized, "field element not normalized")
}

// verify checks that the scalar is fully reduced.
func (s *Scalar) verify() {
	verifyCheck(s.checkOverflow() == 0, "scalar not reduced")
}
