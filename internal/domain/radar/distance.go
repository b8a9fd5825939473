package radar

import (
	"math"
	"strconv"
)

func Distance(a, b Point3D) float32 {
	return float32(a.Sub(b).Len())
}

// Tenths rounds a distance to the nearest 0.1 unit, expressed in tenths.
func Tenths(d float32) int64 {
	return int64(math.Floor(float64(d)*10 + 0.5))
}

// Measurement is a distance rounded once per entity per poll.
type Measurement struct {
	Raw    float32
	tenths int64
}

func Measure(from, to Point3D) Measurement {
	d := Distance(from, to)
	return Measurement{Raw: d, tenths: Tenths(d)}
}

func (m Measurement) Rounded() float32 {
	return float32(m.tenths) / 10
}

// Text renders the rounded distance with one decimal, without unit.
func (m Measurement) Text() string {
	return strconv.FormatFloat(float64(m.tenths)/10, 'f', 1, 64)
}

// Within reports whether the displayed distance lies inside radius (inclusive).
func (m Measurement) Within(radius float32) bool {
	return m.tenths <= Tenths(radius)
}
