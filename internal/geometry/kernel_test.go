package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotatePoint(t *testing.T) {
	tests := []struct {
		name    string
		p       Point
		pivot   Point
		degrees float64
		want    Point
	}{
		{"zero", Pt(10, 0), Pt(0, 0), 0, Pt(10, 0)},
		{"quarter turn", Pt(10, 0), Pt(0, 0), 90, Pt(0, 10)},
		{"half turn about pivot", Pt(12, 5), Pt(10, 5), 180, Pt(8, 5)},
		{"negative", Pt(0, 10), Pt(0, 0), -90, Pt(10, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RotatePoint(tt.p, tt.pivot, tt.degrees)
			assert.InDelta(t, tt.want.X, got.X, 1e-9)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-9)
		})
	}
}

func TestRotatePointInverse(t *testing.T) {
	p, pivot := Pt(3.5, -7), Pt(1, 2)
	for _, deg := range []float64{13, 45, 200, -310} {
		back := RotatePoint(RotatePoint(p, pivot, deg), pivot, -deg)
		assert.InDelta(t, p.X, back.X, 1e-9)
		assert.InDelta(t, p.Y, back.Y, 1e-9)
	}
}

func TestCentroid(t *testing.T) {
	_, ok := Centroid(nil)
	assert.False(t, ok)

	c, ok := Centroid([]Point{{0, 0}, {10, 0}, {5, 9}})
	require.True(t, ok)
	assert.InDelta(t, 5, c.X, 1e-12)
	assert.InDelta(t, 3, c.Y, 1e-12)
}

func TestPointSegmentDistanceSq(t *testing.T) {
	a, b := Pt(0, 0), Pt(10, 0)
	assert.InDelta(t, 25, PointSegmentDistanceSq(Pt(5, 5), a, b), 1e-12)
	// beyond the end the distance is measured to the endpoint
	assert.InDelta(t, 4+9, PointSegmentDistanceSq(Pt(12, 3), a, b), 1e-12)
	// degenerate segment
	assert.InDelta(t, 2, PointSegmentDistanceSq(Pt(1, 1), a, a), 1e-12)
}

func TestNormalizeDegrees(t *testing.T) {
	assert.Equal(t, 0.0, NormalizeDegrees(360))
	assert.Equal(t, 270.0, NormalizeDegrees(-90))
	assert.Equal(t, 45.0, NormalizeDegrees(765))
}

func TestBoundingBox(t *testing.T) {
	_, ok := BoundingBox(nil, 2)
	assert.False(t, ok)

	r, ok := BoundingBox([]Point{{10, 10}, {10, 10}}, 3)
	require.True(t, ok)
	// ceil(3/2)+2 = 4 of padding around a 1x1 minimum box
	assert.Equal(t, Rect{X: 6, Y: 6, Width: 9, Height: 9}, r)
}

func TestArrowWings(t *testing.T) {
	l, r, ok := ArrowWings(Pt(0, 0), Pt(10, 0), 10)
	require.True(t, ok)
	want := 10 * math.Cos(150*math.Pi/180)
	assert.InDelta(t, 10+want, l.X, 1e-9)
	assert.InDelta(t, 5, l.Y, 1e-9)
	assert.InDelta(t, -5, r.Y, 1e-9)

	_, _, ok = ArrowWings(Pt(1, 1), Pt(1, 1), 10)
	assert.False(t, ok)
}

func TestMatrixInvert(t *testing.T) {
	m := RotateAbout(Pt(4, 4), 30).Multiply(ScaleAbout(Pt(1, 2), 1.5))
	p := Pt(7, -3)
	back := m.Invert().Apply(m.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-9)
	assert.InDelta(t, p.Y, back.Y, 1e-9)
	assert.True(t, m.Multiply(m.Invert()).IsIdentity())
}

func TestRectNormalizedAndUnion(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: -4, Height: 6}.Normalized()
	assert.Equal(t, Rect{X: 6, Y: 10, Width: 4, Height: 6}, r)

	u := r.Union(Rect{X: 0, Y: 0, Width: 2, Height: 2})
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 10, Height: 16}, u)
	assert.Equal(t, Pt(5, 8), u.Center())
}
