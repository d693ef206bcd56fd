package image

import (
	"math"

	"golang.org/x/xerrors"
)

var ErrInvalidArgument = xerrors.New("invalid argument")

const (
	ComparatorExact      = "exact"
	ComparatorPerceptual = "perceptual"
)

// Comparator decides whether two pixels are considered equal.
// Implementations are immutable and safe for concurrent use.
type Comparator interface {
	Equal(p1 RGBColor, p2 RGBColor) bool
}

type ExactComparator struct{}

func NewExactComparator() *ExactComparator {
	return &ExactComparator{}
}

func (e *ExactComparator) Equal(p1 RGBColor, p2 RGBColor) bool {
	return p1.sameRGB(p2)
}

type PerceptualComparator struct {
	tolerance float64
}

// NewPerceptualComparator returns a comparator treating two pixels as equal when their
// floored CIEDE2000 distance is strictly below tolerance.
func NewPerceptualComparator(tolerance float64) (*PerceptualComparator, error) {
	if tolerance < 0 || math.IsNaN(tolerance) {
		return nil, xerrors.Errorf("tolerance must be non-negative, got %v: %w", tolerance, ErrInvalidArgument)
	}
	return &PerceptualComparator{
		tolerance: tolerance,
	}, nil
}

func (p *PerceptualComparator) Tolerance() float64 {
	return p.tolerance
}

func (p *PerceptualComparator) Equal(p1 RGBColor, p2 RGBColor) bool {
	if p1.sameRGB(p2) {
		return true
	}
	return DeltaE2000(ToLab(p1), ToLab(p2)) < p.tolerance
}

// NewComparator builds the comparator named by kind ("exact" or "perceptual").
// Tolerance is validated for both kinds.
func NewComparator(kind string, tolerance float64) (Comparator, error) {
	if tolerance < 0 || math.IsNaN(tolerance) {
		return nil, xerrors.Errorf("tolerance must be non-negative, got %v: %w", tolerance, ErrInvalidArgument)
	}

	switch kind {
	case ComparatorExact:
		return NewExactComparator(), nil
	case "", ComparatorPerceptual:
		return NewPerceptualComparator(tolerance)
	default:
		return nil, xerrors.Errorf("unknown comparator %q: %w", kind, ErrInvalidArgument)
	}
}
