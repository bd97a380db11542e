// Package geometry builds clip polygons for WCPS queries.
//
// Points are stored as latitude/longitude pairs rounded to four decimals,
// the precision used in the rendered POLYGON text.
package geometry

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidPolygon is returned by operations that need at least three points.
var ErrInvalidPolygon = errors.New("invalid polygon: at least three points are required")

// Point is a latitude/longitude pair.
type Point struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Polygon is an ordered ring of points. The ring is closed implicitly:
// the last point connects back to the first.
type Polygon struct {
	points []Point
}

// NewPolygon creates a polygon from points.
func NewPolygon(points ...Point) *Polygon {
	p := &Polygon{}
	for _, pt := range points {
		p.AddPoint(pt.Lat, pt.Lon)
	}
	return p
}

// AddPoint appends a vertex.
func (p *Polygon) AddPoint(lat, lon float64) *Polygon {
	p.points = append(p.points, Point{Lat: round4(lat), Lon: round4(lon)})
	return p
}

// Points returns a copy of the vertices.
func (p *Polygon) Points() []Point {
	return append([]Point(nil), p.points...)
}

// Clear removes every vertex.
func (p *Polygon) Clear() {
	p.points = nil
}

// Valid reports whether the polygon has at least three vertices.
func (p *Polygon) Valid() bool {
	return len(p.points) >= 3
}

// Area returns the shoelace area in squared degrees.
func (p *Polygon) Area() (float64, error) {
	if !p.Valid() {
		return 0, ErrInvalidPolygon
	}
	var sum float64
	n := len(p.points)
	for i := 0; i < n; i++ {
		a, b := p.points[i], p.points[(i+1)%n]
		sum += (a.Lon + b.Lon) * (b.Lat - a.Lat)
	}
	return math.Abs(sum) / 2, nil
}

// Contains reports whether (lat, lon) lies inside the polygon, casting a
// ray along the latitude axis.
func (p *Polygon) Contains(lat, lon float64) (bool, error) {
	if !p.Valid() {
		return false, ErrInvalidPolygon
	}
	inside := false
	n := len(p.points)
	p1 := p.points[0]
	for i := 1; i <= n; i++ {
		p2 := p.points[i%n]
		// The lon bounds exclude edges with p1.Lon == p2.Lon.
		if lon > math.Min(p1.Lon, p2.Lon) && lon <= math.Max(p1.Lon, p2.Lon) && lat <= math.Max(p1.Lat, p2.Lat) {
			cross := (lon-p1.Lon)*(p2.Lat-p1.Lat)/(p2.Lon-p1.Lon) + p1.Lat
			if p1.Lat == p2.Lat || lat <= cross {
				inside = !inside
			}
		}
		p1 = p2
	}
	return inside, nil
}

// ClipExpression renders the polygon as "POLYGON((lat lon, lat lon, ...))".
func (p *Polygon) ClipExpression() (string, error) {
	if !p.Valid() {
		return "", ErrInvalidPolygon
	}
	parts := make([]string, len(p.points))
	for i, pt := range p.points {
		parts[i] = fmt.Sprintf("%.4f %.4f", pt.Lat, pt.Lon)
	}
	return "POLYGON((" + strings.Join(parts, ", ") + "))", nil
}

// Feature is a GeoJSON feature holding one polygon.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry is a GeoJSON polygon geometry. Coordinates are [lon, lat].
type Geometry struct {
	Type        string        `json:"type"`
	Coordinates [][][]float64 `json:"coordinates"`
}

// Feature converts the polygon to a GeoJSON feature with a closed ring.
func (p *Polygon) Feature() (*Feature, error) {
	if !p.Valid() {
		return nil, ErrInvalidPolygon
	}
	ring := make([][]float64, 0, len(p.points)+1)
	for _, pt := range p.points {
		ring = append(ring, []float64{pt.Lon, pt.Lat})
	}
	ring = append(ring, []float64{p.points[0].Lon, p.points[0].Lat})

	return &Feature{
		Type:       "Feature",
		Geometry:   Geometry{Type: "Polygon", Coordinates: [][][]float64{ring}},
		Properties: map[string]any{},
	}, nil
}

// GeoJSON returns the feature encoded as JSON.
func (p *Polygon) GeoJSON() ([]byte, error) {
	f, err := p.Feature()
	if err != nil {
		return nil, err
	}
	return json.Marshal(f)
}

// Rotate turns every vertex by deg degrees counter-clockwise around
// (centerLat, centerLon).
func (p *Polygon) Rotate(deg, centerLat, centerLon float64) {
	rad := deg * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	for i, pt := range p.points {
		x, y := pt.Lat-centerLat, pt.Lon-centerLon
		p.points[i] = Point{
			Lat: round4(x*cos - y*sin + centerLat),
			Lon: round4(x*sin + y*cos + centerLon),
		}
	}
}

// Scale multiplies every coordinate by factor, relative to the origin.
func (p *Polygon) Scale(factor float64) {
	for i, pt := range p.points {
		p.points[i] = Point{Lat: round4(pt.Lat * factor), Lon: round4(pt.Lon * factor)}
	}
}

func round4(v float64) float64 {
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}
