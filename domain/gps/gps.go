package gps

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// EarthRadius is the approximate mean radius of the earth in km.
const EarthRadius = 6371.0

// DefaultZoom is the map zoom level used when neither a zoom nor a
// radius is given to MapURL.
const DefaultZoom = 16

var (
	// ErrInvalidFormat is returned when a position cannot be built from its input.
	ErrInvalidFormat = errors.New("invalid geo position")
	// ErrSingularity is returned by Centroid when the centroid is not well defined.
	ErrSingularity = errors.New("singularity error")
)

var positionRE = regexp.MustCompile(`^\s*(\d+(?:\.\d*)?)\s*(N|S),\s*(\d+(?:\.\d*)?)\s*(E|W)\s*$`)

// Position is a point on the earth surface. The zero value is the
// intersection of the equator and the prime meridian.
type Position struct {
	lat Latitude
	lon Longitude
}

// New returns the position at the given signed latitude and longitude.
func New(lat, lon float64) (Position, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return Position{}, fmt.Errorf("%w: latitude %v out of range", ErrInvalidFormat, lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return Position{}, fmt.Errorf("%w: longitude %v out of range", ErrInvalidFormat, lon)
	}
	return Position{lat: Latitude(lat), lon: Longitude(lon)}, nil
}

// MustNew is like New but panics on invalid coordinates.
func MustNew(lat, lon float64) Position {
	p, err := New(lat, lon)
	if err != nil {
		panic(err)
	}
	return p
}

// FromPair builds a position from a (latitude, longitude) pair.
func FromPair(pair []float64) (Position, error) {
	if len(pair) != 2 {
		return Position{}, fmt.Errorf("%w %v: must have two elements", ErrInvalidFormat, pair)
	}
	return New(pair[0], pair[1])
}

// FromRefMap builds a position from a mapping keyed by hemisphere
// reference, e.g. {"N": 35.6, "E": 139.7}. Exactly one of N and S and
// one of E and W must be present.
func FromRefMap(m map[string]float64) (Position, error) {
	var lat, lon float64
	n, hasN := m["N"]
	s, hasS := m["S"]
	switch {
	case hasN && !hasS:
		lat = n
	case hasS && !hasN:
		lat = -s
	default:
		return Position{}, fmt.Errorf("%w %v: must have either 'N' or 'S' in keys", ErrInvalidFormat, m)
	}
	e, hasE := m["E"]
	w, hasW := m["W"]
	switch {
	case hasE && !hasW:
		lon = e
	case hasW && !hasE:
		lon = -w
	default:
		return Position{}, fmt.Errorf("%w %v: must have either 'E' or 'W' in keys", ErrInvalidFormat, m)
	}
	return New(lat, lon)
}

// Parse reads a position in the form "35.6 N, 139.7 E" as produced by
// FloatString.
func Parse(s string) (Position, error) {
	m := positionRE.FindStringSubmatch(s)
	if m == nil {
		return Position{}, fmt.Errorf("%w '%s'", ErrInvalidFormat, s)
	}
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Position{}, fmt.Errorf("%w '%s': %s", ErrInvalidFormat, s, err)
	}
	lon, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return Position{}, fmt.Errorf("%w '%s': %s", ErrInvalidFormat, s, err)
	}
	if m[2] == "S" {
		lat = -lat
	}
	if m[4] == "W" {
		lon = -lon
	}
	return New(lat, lon)
}

func (p Position) Lat() Latitude {
	return p.lat
}

func (p Position) Lon() Longitude {
	return p.lon
}

// RefMap returns the position as a mapping keyed by hemisphere reference.
func (p Position) RefMap() map[string]float64 {
	return map[string]float64{
		p.lat.Ref(): p.lat.Abs(),
		p.lon.Ref(): p.lon.Abs(),
	}
}

// String renders the position in degrees, minutes and seconds.
func (p Position) String() string {
	latD, latM, latS := p.lat.DMS()
	lonD, lonM, lonS := p.lon.DMS()
	return fmt.Sprintf("%d° %d′ %.2f″ %s, %d° %d′ %.2f″ %s",
		latD, latM, latS, p.lat.Ref(), lonD, lonM, lonS, p.lon.Ref())
}

// FloatString renders the position in decimal degrees. The result can
// be read back with Parse.
func (p Position) FloatString() string {
	return fmt.Sprintf("%.5f %s, %.5f %s", p.lat.Abs(), p.lat.Ref(), p.lon.Abs(), p.lon.Ref())
}

// MapURL returns an OpenStreetMap URL showing this position. A zoom of 0
// derives the zoom level from radius (in km), or uses DefaultZoom if
// radius is not positive either.
func (p Position) MapURL(zoom int, radius float64) string {
	if zoom == 0 {
		if radius > 0 {
			zoom = int(-1.35*math.Log(math.Max(radius, 0.05)) + 14.5)
		} else {
			zoom = DefaultZoom
		}
	}
	return fmt.Sprintf("http://www.openstreetmap.org/?mlat=%f&mlon=%f&zoom=%d", float64(p.lat), float64(p.lon), zoom)
}

// DistanceTo returns the great circle distance in km to other, taking
// the earth as a sphere.
func (p Position) DistanceTo(other Position) float64 {
	lat1 := p.lat.radians()
	lat2 := other.lat.radians()
	lon1 := p.lon.radians()
	lon2 := other.lon.radians()
	slat := math.Sin((lat1 - lat2) / 2)
	slon := math.Sin((lon1 - lon2) / 2)
	h := slat*slat + math.Cos(lat1)*math.Cos(lat2)*slon*slon
	return EarthRadius * 2 * math.Asin(math.Sqrt(math.Min(h, 1)))
}

// Centroid returns the geodesic centroid of positions. The unit vectors
// of all positions are averaged and the mean is projected back to the
// surface. If the mean vector is too close to the earth center, the
// projection is not well defined and ErrSingularity is returned.
func Centroid(positions []Position) (Position, error) {
	if len(positions) == 0 {
		return Position{}, fmt.Errorf("%w: positions must not be empty", ErrSingularity)
	}
	var x, y, z float64
	for _, pos := range positions {
		lat := pos.lat.radians()
		lon := pos.lon.radians()
		x += math.Cos(lat) * math.Cos(lon)
		y += math.Cos(lat) * math.Sin(lon)
		z += math.Sin(lat)
	}
	n := float64(len(positions))
	x /= n
	y /= n
	z /= n
	clen := math.Sqrt(x*x + y*y + z*z)
	if clen < 1e-3 {
		return Position{}, fmt.Errorf("%w: centroid is too close to earth center (%e)", ErrSingularity, clen)
	}
	lat := math.Atan2(z, math.Sqrt(x*x+y*y)) * 180 / math.Pi
	lon := math.Atan2(y, x) * 180 / math.Pi
	return New(lat, lon)
}

func (p Position) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}{
		Lat: float64(p.lat),
		Lon: float64(p.lon),
	})
}

func (p *Position) UnmarshalJSON(buf []byte) error {
	var c struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	}
	if err := json.Unmarshal(buf, &c); err != nil {
		return err
	}
	pos, err := New(c.Lat, c.Lon)
	if err != nil {
		return err
	}
	*p = pos
	return nil
}
