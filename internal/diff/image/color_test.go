package image

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestToLab(t *testing.T) {
	tests := []struct {
		name string
		in   RGBColor
		want LabColor
	}{
		{"Black", RGBColor{0, 0, 0, 255}, LabColor{0, 0, 0}},
		{"White", RGBColor{255, 255, 255, 255}, LabColor{100, 0, 0}},
		{"Red", RGBColor{255, 0, 0, 255}, LabColor{53.24, 80.09, 67.20}},
		{"Green", RGBColor{0, 255, 0, 255}, LabColor{87.73, -86.18, 83.18}},
		{"Blue", RGBColor{0, 0, 255, 255}, LabColor{32.30, 79.19, -107.86}},
		{"MidGray", RGBColor{128, 128, 128, 255}, LabColor{53.59, 0, 0}},
		{"AlphaIgnored", RGBColor{255, 0, 0, 0}, LabColor{53.24, 80.09, 67.20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToLab(tt.in)
			if diff := cmp.Diff(tt.want, got, cmpopts.EquateApprox(0, 0.05)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestToLabIsPure(t *testing.T) {
	c := RGBColor{R: 12, G: 200, B: 77, A: 255}
	first := ToLab(c)
	for i := 0; i < 10; i++ {
		if got := ToLab(c); got != first {
			t.Fatalf("Expected %+v on every call, got %+v", first, got)
		}
	}
}
