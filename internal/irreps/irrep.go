// Package irreps implements the bookkeeping of O(3) irreducible representations:
// irrep descriptors, ordered irrep lists with multiplicities, and irrep
// tensors stored as one block per descriptor.
package irreps

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Sentinel errors.
var (
	// ErrInvalidIrreps reports a malformed irrep or irrep list.
	ErrInvalidIrreps = errors.New("irreps: invalid irreps")
	// ErrShapeMismatch reports blocks that disagree with their descriptors.
	ErrShapeMismatch = errors.New("irreps: shape mismatch")
)

// Parity values.
const (
	Even = 1
	Odd  = -1
)

// Irrep is an irreducible representation of O(3): a degree L and a parity P.
type Irrep struct {
	L int // degree, >= 0
	P int // parity, +1 (even) or -1 (odd)
}

// NewIrrep validates and returns an Irrep.
func NewIrrep(l, p int) (Irrep, error) {
	if l < 0 {
		return Irrep{}, errors.Wrapf(ErrInvalidIrreps, "degree must be non-negative, got %d", l)
	}
	if p != Even && p != Odd {
		return Irrep{}, errors.Wrapf(ErrInvalidIrreps, "parity must be +1 or -1, got %d", p)
	}
	return Irrep{L: l, P: p}, nil
}

// ParseIrrep parses "1o", "0e" or "2y". The "y" suffix means the parity of
// spherical harmonics, (-1)^l.
func ParseIrrep(s string) (Irrep, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Irrep{}, errors.Wrapf(ErrInvalidIrreps, "cannot parse irrep %q", s)
	}
	l, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return Irrep{}, errors.Wrapf(ErrInvalidIrreps, "cannot parse degree of %q", s)
	}

	var p int
	switch s[len(s)-1] {
	case 'e':
		p = Even
	case 'o':
		p = Odd
	case 'y':
		p = Even
		if l%2 == 1 {
			p = Odd
		}
	default:
		return Irrep{}, errors.Wrapf(ErrInvalidIrreps, "cannot parse parity of %q", s)
	}
	return NewIrrep(l, p)
}

// Dim returns the dimension of one copy: 2L+1.
func (ir Irrep) Dim() int {
	return 2*ir.L + 1
}

// IsScalar reports whether the irrep has degree 0.
func (ir Irrep) IsScalar() bool {
	return ir.L == 0
}

// String formats the irrep as "1o" / "2e".
func (ir Irrep) String() string {
	p := "e"
	if ir.P == Odd {
		p = "o"
	}
	return strconv.Itoa(ir.L) + p
}

// Mul returns the irreps appearing in the tensor product ir ⊗ other:
// degrees |l1-l2| .. l1+l2 with parity p1·p2.
func (ir Irrep) Mul(other Irrep) []Irrep {
	lmin := ir.L - other.L
	if lmin < 0 {
		lmin = -lmin
	}
	out := make([]Irrep, 0, ir.L+other.L-lmin+1)
	for l := lmin; l <= ir.L+other.L; l++ {
		out = append(out, Irrep{L: l, P: ir.P * other.P})
	}
	return out
}
