package image

import (
	"math"
)

const pow25To7 = 6103515625.0 // 25^7

// DeltaE2000 returns the CIEDE2000 colour difference between c1 and c2 with unit
// weighting factors, floored to the nearest lower integer.
func DeltaE2000(c1 LabColor, c2 LabColor) float64 {
	return math.Floor(deltaE2000(c1, c2))
}

// deltaE2000 follows Sharma, Wu and Dalal, "The CIEDE2000 Color-Difference Formula:
// Implementation Notes, Supplementary Test Data, and Mathematical Observations" (2005).
func deltaE2000(c1 LabColor, c2 LabColor) float64 {
	const (
		kL = 1.0
		kC = 1.0
		kH = 1.0
	)

	chroma1 := math.Hypot(c1.A, c1.B)
	chroma2 := math.Hypot(c2.A, c2.B)
	meanChroma7 := math.Pow((chroma1+chroma2)/2, 7)

	g := 0.5 * (1 - math.Sqrt(meanChroma7/(meanChroma7+pow25To7)))

	a1p := (1 + g) * c1.A
	a2p := (1 + g) * c2.A

	c1p := math.Hypot(a1p, c1.B)
	c2p := math.Hypot(a2p, c2.B)

	h1p := hueAngle(c1.B, a1p)
	h2p := hueAngle(c2.B, a2p)

	deltaLp := c2.L - c1.L
	deltaCp := c2p - c1p
	deltaHp := 2 * math.Sqrt(c1p*c2p) * math.Sin(radians(hueDifference(c1p, c2p, h1p, h2p))/2)

	meanL := (c1.L + c2.L) / 2
	meanCp := (c1p + c2p) / 2
	meanHp := meanHue(c1p, c2p, h1p, h2p)

	t := 1 -
		0.17*math.Cos(radians(meanHp-30)) +
		0.24*math.Cos(radians(2*meanHp)) +
		0.32*math.Cos(radians(3*meanHp+6)) -
		0.20*math.Cos(radians(4*meanHp-63))

	deltaTheta := 30 * math.Exp(-math.Pow((meanHp-275)/25, 2))
	meanCp7 := math.Pow(meanCp, 7)
	rc := 2 * math.Sqrt(meanCp7/(meanCp7+pow25To7))

	meanL50 := (meanL - 50) * (meanL - 50)
	sl := 1 + (0.015*meanL50)/math.Sqrt(20+meanL50)
	sc := 1 + 0.045*meanCp
	sh := 1 + 0.015*meanCp*t
	rt := -rc * math.Sin(radians(2*deltaTheta))

	lightness := deltaLp / (kL * sl)
	chroma := deltaCp / (kC * sc)
	hue := deltaHp / (kH * sh)

	return math.Sqrt(lightness*lightness + chroma*chroma + hue*hue + rt*chroma*hue)
}

// hueAngle returns atan2(b, a) in degrees normalized to [0, 360), or 0 on the neutral axis.
func hueAngle(b float64, a float64) float64 {
	if a == 0 && b == 0 {
		return 0
	}
	h := degrees(math.Atan2(b, a))
	if h < 0 {
		h += 360
	}
	return h
}

// hueDifference returns the signed hue difference h2-h1 wrapped into (-180, 180].
func hueDifference(c1p float64, c2p float64, h1p float64, h2p float64) float64 {
	if c1p*c2p == 0 {
		return 0
	}
	d := h2p - h1p
	switch {
	case d > 180:
		return d - 360
	case d < -180:
		return d + 360
	default:
		return d
	}
}

func meanHue(c1p float64, c2p float64, h1p float64, h2p float64) float64 {
	sum := h1p + h2p
	switch {
	case c1p*c2p == 0:
		return sum
	case math.Abs(h1p-h2p) <= 180:
		return sum / 2
	case sum < 360:
		return (sum + 360) / 2
	default:
		return (sum - 360) / 2
	}
}

func degrees(rad float64) float64 {
	return rad * (180 / math.Pi)
}

func radians(deg float64) float64 {
	return deg * (math.Pi / 180)
}
