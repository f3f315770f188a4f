package gps

import "math"

// Latitude in degrees, positive north of the equator.
type Latitude float64

// Ref returns the hemisphere reference, N or S.
func (l Latitude) Ref() string {
	if l >= 0 {
		return "N"
	}
	return "S"
}

func (l Latitude) Abs() float64 {
	return math.Abs(float64(l))
}

// DMS splits the absolute value into degrees, minutes and seconds.
func (l Latitude) DMS() (int, int, float64) {
	return dms(l.Abs())
}

func (l Latitude) radians() float64 {
	return float64(l) * math.Pi / 180
}

// Longitude in degrees, positive east of the prime meridian.
type Longitude float64

// Ref returns the hemisphere reference, E or W.
func (l Longitude) Ref() string {
	if l >= 0 {
		return "E"
	}
	return "W"
}

func (l Longitude) Abs() float64 {
	return math.Abs(float64(l))
}

// DMS splits the absolute value into degrees, minutes and seconds.
func (l Longitude) DMS() (int, int, float64) {
	return dms(l.Abs())
}

func (l Longitude) radians() float64 {
	return float64(l) * math.Pi / 180
}

func dms(v float64) (deg, min int, sec float64) {
	deg = int(v)
	frac := 60 * (v - float64(deg))
	min = int(frac)
	sec = 60 * (frac - float64(min))
	return
}
