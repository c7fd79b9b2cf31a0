// Package query answers hit tests against shapes: point containment and
// resize handle lookup. Both work in screen space and undo the shape's
// rotation before testing.
package query

import (
	"math"

	"github.com/inamate/annotator/internal/document"
	"github.com/inamate/annotator/internal/geometry"
)

// DefaultHandleSize is the drawn edge length of a resize handle.
const DefaultHandleSize = 8.0

const (
	strokeSlack  = 3.0 // brush and line_point
	lineSlack    = 5.0 // line and arrow
	minRadius    = 1e-6
	rayCastEps   = 1e-10
	handleReachK = 0.75
)

// Contains reports whether the screen point p lies on or inside s.
// Shapes without usable geometry contain nothing.
func Contains(s document.Shape, p geometry.Point) bool {
	c, ok := s.Centroid()
	if !ok {
		return false
	}
	local := geometry.RotatePoint(p, c, -s.Rotation)
	g := s.Geometry

	switch s.Kind {
	case document.KindRect, document.KindText:
		return g.Type == document.GeometryRect && g.Rect.Contains(local)

	case document.KindEllipse:
		if g.Type != document.GeometryRect {
			return false
		}
		return ellipseContains(g.Rect, local)

	case document.KindTriangle, document.KindPolygon:
		if g.Type != document.GeometryPoints || len(g.Points) < 3 {
			return false
		}
		return polygonContains(g.Points, local)

	case document.KindBrush, document.KindLinePoint:
		if g.Type != document.GeometryPoints {
			return false
		}
		return nearPolyline(g.Points, local, tolerance(s.LineThickness, strokeSlack))

	case document.KindLine, document.KindArrow:
		if g.Type != document.GeometryPoints || len(g.Points) != 2 {
			return false
		}
		tol := tolerance(s.LineThickness, lineSlack)
		return geometry.PointSegmentDistanceSq(local, g.Points[0], g.Points[1]) <= tol*tol
	}
	return false
}

func tolerance(thickness int, slack float64) float64 {
	return math.Max(float64(thickness)/2, 1) + slack
}

func ellipseContains(r geometry.Rect, p geometry.Point) bool {
	if r.IsEmpty() {
		return false
	}
	rx, ry := r.Width/2, r.Height/2
	if rx < minRadius || ry < minRadius {
		return false
	}
	c := r.Center()
	dx := (p.X - c.X) / rx
	dy := (p.Y - c.Y) / ry
	return dx*dx+dy*dy <= 1
}

// polygonContains is the even-odd ray cast. The epsilon keeps horizontal
// edges from dividing by zero.
func polygonContains(pts []geometry.Point, p geometry.Point) bool {
	inside := false
	j := len(pts) - 1
	for i := range pts {
		a, b := pts[i], pts[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y+rayCastEps)+a.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

func nearPolyline(pts []geometry.Point, p geometry.Point, tol float64) bool {
	limit := tol * tol
	switch len(pts) {
	case 0:
		return false
	case 1:
		return p.DistSq(pts[0]) <= limit
	}
	for i := 0; i < len(pts)-1; i++ {
		if geometry.PointSegmentDistanceSq(p, pts[i], pts[i+1]) <= limit {
			return true
		}
	}
	return false
}

// TopShapeAt returns the index of the topmost shape containing p, or -1.
func TopShapeAt(shapes []document.Shape, p geometry.Point) int {
	for i := len(shapes) - 1; i >= 0; i-- {
		if Contains(shapes[i], p) {
			return i
		}
	}
	return -1
}

// HandlePoint is a handle at its screen position.
type HandlePoint struct {
	Handle document.Handle
	Pos    geometry.Point
}

// Handles returns the screen positions of every handle of s: four corners
// for rect geometry, one per vertex for point lists.
func Handles(s document.Shape) []HandlePoint {
	g := s.Geometry
	var out []HandlePoint
	switch g.Type {
	case document.GeometryRect:
		if g.Rect.IsEmpty() {
			return nil
		}
		corners := []document.Corner{document.TopLeft, document.TopRight, document.BottomRight, document.BottomLeft}
		for i, p := range s.Outline() {
			out = append(out, HandlePoint{Handle: document.CornerHandle(corners[i]), Pos: p})
		}
	case document.GeometryPoints:
		for i, p := range s.Outline() {
			out = append(out, HandlePoint{Handle: document.VertexHandle(i), Pos: p})
		}
	}
	return out
}

// HandleHit identifies the handle found by HandleAt.
type HandleHit struct {
	Index  int // position in the candidate slice
	Handle document.Handle
}

// HandleAt looks for a handle within 0.75 * handleSize of p. Candidates are
// scanned last to first so the most recently added shape wins where handles
// overlap.
func HandleAt(candidates []document.Shape, p geometry.Point, handleSize float64) (HandleHit, bool) {
	reach := handleSize * handleReachK
	limit := reach * reach
	for i := len(candidates) - 1; i >= 0; i-- {
		for _, h := range Handles(candidates[i]) {
			if h.Pos.DistSq(p) <= limit {
				return HandleHit{Index: i, Handle: h.Handle}, true
			}
		}
	}
	return HandleHit{}, false
}
