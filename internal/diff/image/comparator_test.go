package image

import (
	"errors"
	"math"
	"testing"
)

func TestNewPerceptualComparator(t *testing.T) {
	t.Run("RejectsNegativeTolerance", func(t *testing.T) {
		_, err := NewPerceptualComparator(-1)
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("RejectsNaN", func(t *testing.T) {
		_, err := NewPerceptualComparator(math.NaN())
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("AcceptsZero", func(t *testing.T) {
		c, err := NewPerceptualComparator(0)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if c.Tolerance() != 0 {
			t.Errorf("Expected tolerance 0, got %v", c.Tolerance())
		}
	})
}

func TestComparatorExactFastPath(t *testing.T) {
	perceptual, err := NewPerceptualComparator(0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	comparators := map[string]Comparator{
		"exact":      NewExactComparator(),
		"perceptual": perceptual,
	}

	pairs := [][2]RGBColor{
		{{0, 0, 0, 255}, {0, 0, 0, 255}},
		{{255, 255, 255, 255}, {255, 255, 255, 0}},
		{{17, 99, 201, 3}, {17, 99, 201, 250}},
	}

	for name, c := range comparators {
		t.Run(name, func(t *testing.T) {
			for _, pair := range pairs {
				if !c.Equal(pair[0], pair[1]) {
					t.Errorf("Expected %+v and %+v to be equal", pair[0], pair[1])
				}
			}
		})
	}
}

func TestPerceptualComparatorTolerance(t *testing.T) {
	black := RGBColor{0, 0, 0, 255}
	nearBlack := RGBColor{1, 1, 1, 255}
	white := RGBColor{255, 255, 255, 255}

	tests := []struct {
		name      string
		tolerance float64
		p1        RGBColor
		p2        RGBColor
		want      bool
	}{
		// floored distance 0 is not strictly below 0
		{"ZeroToleranceRejectsAnyChange", 0, black, nearBlack, false},
		{"FlooredDistanceBelowTolerance", 1, black, nearBlack, true},
		{"BlackAndWhite", 2, black, white, false},
		{"BlackAndWhiteHugeTolerance", 101, black, white, true},
		{"ToleranceIsStrict", 100, black, white, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewPerceptualComparator(tt.tolerance)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := c.Equal(tt.p1, tt.p2); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
			if got := c.Equal(tt.p2, tt.p1); got != tt.want {
				t.Errorf("Expected %v with swapped arguments, got %v", tt.want, got)
			}
		})
	}
}

func TestExactComparatorRejectsNearColors(t *testing.T) {
	if NewExactComparator().Equal(RGBColor{0, 0, 0, 255}, RGBColor{0, 0, 1, 255}) {
		t.Errorf("Expected exact comparator to reject a one-step change")
	}
}

func TestNewComparator(t *testing.T) {
	t.Run("Exact", func(t *testing.T) {
		c, err := NewComparator(ComparatorExact, 5)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if _, ok := c.(*ExactComparator); !ok {
			t.Errorf("Expected *ExactComparator, got %T", c)
		}
	})

	t.Run("DefaultsToPerceptual", func(t *testing.T) {
		c, err := NewComparator("", 2)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		p, ok := c.(*PerceptualComparator)
		if !ok {
			t.Fatalf("Expected *PerceptualComparator, got %T", c)
		}
		if p.Tolerance() != 2 {
			t.Errorf("Expected tolerance 2, got %v", p.Tolerance())
		}
	})

	t.Run("UnknownKind", func(t *testing.T) {
		if _, err := NewComparator("fuzzy", 0); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("NegativeToleranceForExact", func(t *testing.T) {
		if _, err := NewComparator(ComparatorExact, -0.5); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument, got %v", err)
		}
	})
}
