package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/annotator/internal/document"
	"github.com/inamate/annotator/internal/geometry"
)

const eps = 1e-9

func assertPoint(t *testing.T, want, got geometry.Point, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, eps, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, eps, msgAndArgs...)
}

// screenCorner returns where a corner of r is drawn when r is rotated about
// its own center.
func screenCorner(r geometry.Rect, rotation float64, c document.Corner) geometry.Point {
	var p geometry.Point
	switch c {
	case document.TopLeft:
		p = r.TopLeft()
	case document.TopRight:
		p = r.TopRight()
	case document.BottomRight:
		p = r.BottomRight()
	case document.BottomLeft:
		p = r.BottomLeft()
	}
	return geometry.RotatePoint(p, r.Center(), rotation)
}

func TestTranslate(t *testing.T) {
	g := document.PointsGeometry([]geometry.Point{{1, 2}, {3, 4}})
	out := Translate(g, geometry.Pt(10, -1))
	assert.Equal(t, []geometry.Point{{11, 1}, {13, 3}}, out.Points)
	assert.Equal(t, []geometry.Point{{1, 2}, {3, 4}}, g.Points, "input is untouched")

	r := Translate(document.RectGeometry(geometry.Rect{X: 1, Y: 1, Width: 5, Height: 5}), geometry.Pt(2, 3))
	assert.Equal(t, geometry.Rect{X: 3, Y: 4, Width: 5, Height: 5}, r.Rect)

	assert.True(t, Translate(document.Geometry{}, geometry.Pt(1, 1)).IsNone())
}

func TestScaleAboutCentroid(t *testing.T) {
	r := Scale(document.RectGeometry(geometry.Rect{X: 0, Y: 0, Width: 10, Height: 20}), 2)
	assert.Equal(t, geometry.Rect{X: -5, Y: -10, Width: 20, Height: 40}, r.Rect)

	p := Scale(document.PointsGeometry([]geometry.Point{{0, 0}, {4, 0}, {2, 6}}), 0.5)
	c, _ := p.Centroid()
	assertPoint(t, geometry.Pt(2, 2), c)
	assertPoint(t, geometry.Pt(1, 1), p.Points[0])

	empty := Scale(document.PointsGeometry(nil), 3)
	assert.Empty(t, empty.Points)
}

func TestRotate(t *testing.T) {
	assert.Equal(t, 10.0, Rotate(350, 20))
	assert.Equal(t, 270.0, Rotate(0, -90))
	assert.Equal(t, 0.0, Rotate(270, 90))
}

func TestResizeRectUnrotated(t *testing.T) {
	orig := geometry.Rect{X: 10, Y: 10, Width: 40, Height: 20}

	got := ResizeRect(orig, 0, document.BottomRight, geometry.Pt(70, 50), false)
	assert.Equal(t, geometry.Rect{X: 10, Y: 10, Width: 60, Height: 40}, got)

	got = ResizeRect(orig, 0, document.TopLeft, geometry.Pt(0, 5), false)
	assert.Equal(t, geometry.Rect{X: 0, Y: 5, Width: 50, Height: 25}, got)

	// dragging past the opposite corner flips and normalizes
	got = ResizeRect(orig, 0, document.TopLeft, geometry.Pt(60, 40), false)
	assert.Equal(t, geometry.Rect{X: 50, Y: 30, Width: 10, Height: 10}, got)
}

func TestResizeRectKeepsAspect(t *testing.T) {
	orig := geometry.Rect{X: 100, Y: 100, Width: 60, Height: 20}
	targets := []geometry.Point{{20, 40}, {250, 130}, {140, 300}, {90, 95}}

	for _, rotation := range []float64{0, 30, 200} {
		for _, corner := range []document.Corner{document.TopLeft, document.TopRight, document.BottomRight, document.BottomLeft} {
			for _, target := range targets {
				got := ResizeRect(orig, rotation, corner, target, true)
				if got.Height == 0 {
					continue
				}
				assert.InDelta(t, 3.0, got.Width/got.Height, 1e-9, "%s rot=%v target=%v", corner, rotation, target)
			}
		}
	}
}

func TestResizeRectKeepsOppositeCornerOnScreen(t *testing.T) {
	orig := geometry.Rect{X: 100, Y: 100, Width: 60, Height: 40}
	for _, rotation := range []float64{0, 45, 120, 300} {
		for _, corner := range []document.Corner{document.TopLeft, document.TopRight, document.BottomRight, document.BottomLeft} {
			anchor := screenCorner(orig, rotation, corner.Opposite())
			dragged := screenCorner(orig, rotation, corner)
			// move the handle outward along the diagonal so nothing flips
			target := dragged.Add(dragged.Sub(anchor).Mul(0.25))

			got := ResizeRect(orig, rotation, corner, target, false)
			assertPoint(t, anchor, screenCorner(got, rotation, corner.Opposite()), "anchor %s rot=%v", corner, rotation)
			assertPoint(t, target, screenCorner(got, rotation, corner), "handle %s rot=%v", corner, rotation)
		}
	}
}

func TestResizeIsIdempotent(t *testing.T) {
	orig := document.RectGeometry(geometry.Rect{X: 5, Y: 5, Width: 30, Height: 30})
	h := document.CornerHandle(document.TopRight)
	a, err := Resize(orig, 33, h, geometry.Pt(60, -4), true)
	require.NoError(t, err)
	b, err := Resize(orig, 33, h, geometry.Pt(60, -4), true)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestResizeVertex(t *testing.T) {
	orig := []geometry.Point{{0, 0}, {10, 0}, {5, 10}}

	got, err := ResizeVertex(orig, 0, 2, geometry.Pt(5, 20))
	require.NoError(t, err)
	assert.Equal(t, []geometry.Point{{0, 0}, {10, 0}, {5, 20}}, got)
	assert.Equal(t, 10.0, orig[2].Y, "input is untouched")

	_, err = ResizeVertex(orig, 0, 3, geometry.Pt(0, 0))
	assert.ErrorIs(t, err, document.ErrOutOfRange)
}

func TestResizeVertexRotated(t *testing.T) {
	orig := []geometry.Point{{0, 0}, {10, 0}, {5, 10}}
	rotation := 70.0
	c0, _ := geometry.Centroid(orig)
	before := geometry.RotatePoints(orig, c0, rotation)

	target := geometry.Pt(40, 40)
	got, err := ResizeVertex(orig, rotation, 1, target)
	require.NoError(t, err)

	c1, _ := geometry.Centroid(got)
	after := geometry.RotatePoints(got, c1, rotation)
	assertPoint(t, target, after[1])
	assertPoint(t, before[0], after[0])
	assertPoint(t, before[2], after[2])
}

func TestResizeRejectsMismatchedHandle(t *testing.T) {
	g := document.PointsGeometry([]geometry.Point{{0, 0}, {1, 1}})
	out, err := Resize(g, 0, document.CornerHandle(document.TopLeft), geometry.Pt(5, 5), false)
	assert.ErrorIs(t, err, document.ErrInvalidGeometry)
	assert.True(t, out.Equal(g))
}

func TestRectFromDrag(t *testing.T) {
	assert.Equal(t, geometry.Rect{X: 10, Y: 10, Width: 40, Height: 30},
		RectFromDrag(geometry.Pt(50, 40), geometry.Pt(10, 10), false))
	assert.Equal(t, geometry.Rect{X: 10, Y: 0, Width: 40, Height: 40},
		RectFromDrag(geometry.Pt(50, 40), geometry.Pt(10, 10), true))
	assert.Equal(t, geometry.Rect{X: 0, Y: 0, Width: 30, Height: 30},
		RectFromDrag(geometry.Pt(0, 0), geometry.Pt(30, 5), true))
}

func TestLineFromDrag(t *testing.T) {
	start := geometry.Pt(0, 0)
	assert.Equal(t, geometry.Pt(7, 3), LineFromDrag(start, geometry.Pt(7, 3), false))

	end := LineFromDrag(start, geometry.Pt(10, 1), true)
	assertPoint(t, geometry.Pt(10.04987562112089, 0), end)

	end = LineFromDrag(start, geometry.Pt(10, 9), true)
	assert.InDelta(t, end.X, end.Y, eps, "snapped to 45 degrees")
}

func TestTriangleFromDrag(t *testing.T) {
	got := TriangleFromDrag(geometry.Pt(20, 0), geometry.Pt(0, 10))
	assert.Equal(t, []geometry.Point{{0, 10}, {20, 10}, {10, 0}}, got)
}
