package geometry

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square() *Polygon {
	return NewPolygon(
		Point{Lat: 0, Lon: 0},
		Point{Lat: 0, Lon: 10},
		Point{Lat: 10, Lon: 10},
		Point{Lat: 10, Lon: 0},
	)
}

func TestAddPoint_Rounds(t *testing.T) {
	p := &Polygon{}
	p.AddPoint(1.234567, -2.000049)

	assert.Equal(t, []Point{{Lat: 1.2346, Lon: -2.0}}, p.Points())
}

func TestValid(t *testing.T) {
	p := &Polygon{}
	assert.False(t, p.Valid())
	p.AddPoint(0, 0).AddPoint(1, 1)
	assert.False(t, p.Valid())
	p.AddPoint(2, 0)
	assert.True(t, p.Valid())

	p.Clear()
	assert.False(t, p.Valid())
	assert.Empty(t, p.Points())
}

func TestInvalidPolygonOperations(t *testing.T) {
	p := NewPolygon(Point{Lat: 0, Lon: 0})

	_, err := p.Area()
	assert.True(t, errors.Is(err, ErrInvalidPolygon))
	_, err = p.Contains(0, 0)
	assert.ErrorIs(t, err, ErrInvalidPolygon)
	_, err = p.ClipExpression()
	assert.ErrorIs(t, err, ErrInvalidPolygon)
	_, err = p.GeoJSON()
	assert.ErrorIs(t, err, ErrInvalidPolygon)
}

func TestArea(t *testing.T) {
	area, err := square().Area()
	require.NoError(t, err)
	assert.InDelta(t, 100.0, area, 1e-9)

	tri := NewPolygon(Point{0, 0}, Point{4, 0}, Point{0, 3})
	area, err = tri.Area()
	require.NoError(t, err)
	assert.InDelta(t, 6.0, area, 1e-9)
}

func TestContains(t *testing.T) {
	p := square()

	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"center", 5, 5, true},
		{"near corner", 0.5, 9.5, true},
		{"outside lat", 15, 5, false},
		{"outside lon", 5, -1, false},
		{"far away", -50, 120, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.Contains(tt.lat, tt.lon)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClipExpression(t *testing.T) {
	p := NewPolygon(Point{40.5, -120.25}, Point{41, -119}, Point{39.12346, -118.5})

	got, err := p.ClipExpression()
	require.NoError(t, err)
	assert.Equal(t, "POLYGON((40.5000 -120.2500, 41.0000 -119.0000, 39.1235 -118.5000))", got)
}

func TestGeoJSON(t *testing.T) {
	p := NewPolygon(Point{1, 2}, Point{3, 4}, Point{5, 6})

	data, err := p.GeoJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "Feature",
		"geometry": {"type": "Polygon", "coordinates": [[[2,1],[4,3],[6,5],[2,1]]]},
		"properties": {}
	}`, string(data))

	var f Feature
	require.NoError(t, json.Unmarshal(data, &f))
	ring := f.Geometry.Coordinates[0]
	assert.Equal(t, ring[0], ring[len(ring)-1], "ring is closed")
}

func TestRotate(t *testing.T) {
	p := NewPolygon(Point{1, 0}, Point{0, 1}, Point{-1, 0})
	p.Rotate(90, 0, 0)

	assert.Equal(t, []Point{{0, 1}, {-1, 0}, {0, -1}}, p.Points())
}

func TestRotate_AroundCenter(t *testing.T) {
	p := NewPolygon(Point{11, 10}, Point{10, 11}, Point{9, 10})
	p.Rotate(180, 10, 10)

	assert.Equal(t, []Point{{9, 10}, {10, 9}, {11, 10}}, p.Points())
}

func TestScale(t *testing.T) {
	p := NewPolygon(Point{1, 2}, Point{-3, 4.5}, Point{0.33333, 0})
	p.Scale(2)

	assert.Equal(t, []Point{{2, 4}, {-6, 9}, {0.6666, 0}}, p.Points())
}
