package irreps

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// MulIrrep is Mul stacked copies of one irrep.
type MulIrrep struct {
	Mul int
	Ir  Irrep
}

// Dim returns Mul · (2L+1).
func (mi MulIrrep) Dim() int {
	return mi.Mul * mi.Ir.Dim()
}

// String formats as "2x1o"; a multiplicity of one is omitted.
func (mi MulIrrep) String() string {
	if mi.Mul == 1 {
		return mi.Ir.String()
	}
	return strconv.Itoa(mi.Mul) + "x" + mi.Ir.String()
}

// Irreps is an ordered list of irrep descriptors.
type Irreps []MulIrrep

// New validates the descriptors and returns them as an Irreps.
func New(mis ...MulIrrep) (Irreps, error) {
	out := make(Irreps, len(mis))
	for i, mi := range mis {
		if mi.Mul < 1 {
			return nil, errors.Wrapf(ErrInvalidIrreps, "multiplicity must be positive, got %d at position %d", mi.Mul, i)
		}
		ir, err := NewIrrep(mi.Ir.L, mi.Ir.P)
		if err != nil {
			return nil, errors.Wrapf(err, "position %d", i)
		}
		out[i] = MulIrrep{Mul: mi.Mul, Ir: ir}
	}
	return out, nil
}

// Parse parses an irreps string such as "2x0e + 1o + 3x2e".
// The empty string is the empty list.
func Parse(s string) (Irreps, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Irreps{}, nil
	}

	parts := strings.Split(s, "+")
	out := make(Irreps, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		mul := 1
		if idx := strings.Index(part, "x"); idx >= 0 {
			m, err := strconv.Atoi(strings.TrimSpace(part[:idx]))
			if err != nil {
				return nil, errors.Wrapf(ErrInvalidIrreps, "cannot parse multiplicity of %q", part)
			}
			mul = m
			part = part[idx+1:]
		}
		ir, err := ParseIrrep(part)
		if err != nil {
			return nil, err
		}
		out = append(out, MulIrrep{Mul: mul, Ir: ir})
	}
	return New(out...)
}

// MustParse is Parse that panics on error.
func MustParse(s string) Irreps {
	irs, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return irs
}

// SphericalHarmonics returns 1x0 + 1x1 + … + 1xlmax with parity
// pVal · pArg^l for degree l.
func SphericalHarmonics(lmax, pVal, pArg int) (Irreps, error) {
	if lmax < 0 {
		return nil, errors.Wrapf(ErrInvalidIrreps, "lmax must be non-negative, got %d", lmax)
	}
	mis := make([]MulIrrep, lmax+1)
	p := pVal
	for l := 0; l <= lmax; l++ {
		mis[l] = MulIrrep{Mul: 1, Ir: Irrep{L: l, P: p}}
		p *= pArg
	}
	return New(mis...)
}

// Len returns the number of descriptors.
func (irs Irreps) Len() int {
	return len(irs)
}

// Dim returns the total dimension Σ mul·(2l+1).
func (irs Irreps) Dim() int {
	d := 0
	for _, mi := range irs {
		d += mi.Dim()
	}
	return d
}

// NumIrreps returns the total multiplicity Σ mul.
func (irs Irreps) NumIrreps() int {
	n := 0
	for _, mi := range irs {
		n += mi.Mul
	}
	return n
}

// LMax returns the largest degree, or -1 for an empty list.
func (irs Irreps) LMax() int {
	lmax := -1
	for _, mi := range irs {
		lmax = max(lmax, mi.Ir.L)
	}
	return lmax
}

// Equal reports whether both lists hold the same descriptors in the same order.
func (irs Irreps) Equal(other Irreps) bool {
	if len(irs) != len(other) {
		return false
	}
	for i := range irs {
		if irs[i] != other[i] {
			return false
		}
	}
	return true
}

// Slice is a half-open range along the concatenated last axis.
type Slice struct {
	Start, Stop int
}

// Slices returns, for each descriptor, its range in the concatenated layout.
func (irs Irreps) Slices() []Slice {
	out := make([]Slice, len(irs))
	off := 0
	for i, mi := range irs {
		out[i] = Slice{Start: off, Stop: off + mi.Dim()}
		off += mi.Dim()
	}
	return out
}

// String formats as "2x0e+1o".
func (irs Irreps) String() string {
	parts := make([]string, len(irs))
	for i, mi := range irs {
		parts[i] = mi.String()
	}
	return strings.Join(parts, "+")
}
