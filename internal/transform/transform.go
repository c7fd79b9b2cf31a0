// Package transform computes new shape geometry for move, scale, rotate and
// handle resize. Every function is pure: inputs are copied, never mutated.
package transform

import (
	"fmt"
	"math"

	"github.com/inamate/annotator/internal/document"
	"github.com/inamate/annotator/internal/geometry"
)

const minAspectHeight = 1e-6

// Translate moves every vertex, or the rect origin, by d.
func Translate(g document.Geometry, d geometry.Point) document.Geometry {
	out := g.Clone()
	switch out.Type {
	case document.GeometryRect:
		out.Rect = out.Rect.Translated(d)
	case document.GeometryPoints:
		for i := range out.Points {
			out.Points[i] = out.Points[i].Add(d)
		}
	}
	return out
}

// Scale applies a uniform scale about the geometry centroid. Geometry
// without a centroid is returned unchanged.
func Scale(g document.Geometry, factor float64) document.Geometry {
	c, ok := g.Centroid()
	if !ok {
		return g.Clone()
	}
	m := geometry.ScaleAbout(c, factor)
	out := g.Clone()
	switch out.Type {
	case document.GeometryRect:
		out.Rect = m.TransformRect(out.Rect)
	case document.GeometryPoints:
		out.Points = m.ApplyAll(out.Points)
	}
	return out
}

// Rotate returns rotation+delta normalized into [0, 360). Geometry is not
// touched; rotation is applied about the centroid at draw and hit time.
func Rotate(rotation, delta float64) float64 {
	return geometry.NormalizeDegrees(rotation + delta)
}

// Resize dispatches a handle drag to ResizeRect or ResizeVertex. orig is
// the geometry at the start of the drag and target the pointer position in
// screen space.
func Resize(orig document.Geometry, rotation float64, h document.Handle, target geometry.Point, keepAspect bool) (document.Geometry, error) {
	switch {
	case orig.Type == document.GeometryRect && !h.IsVertex():
		return document.RectGeometry(ResizeRect(orig.Rect, rotation, h.Corner, target, keepAspect)), nil
	case orig.Type == document.GeometryPoints && h.IsVertex():
		pts, err := ResizeVertex(orig.Points, rotation, h.Vertex, target)
		if err != nil {
			return orig.Clone(), err
		}
		return document.Geometry{Type: document.GeometryPoints, Points: pts}, nil
	}
	return orig.Clone(), fmt.Errorf("%w: handle %s does not apply", document.ErrInvalidGeometry, h)
}

// ResizeRect moves one corner of a rotated rect to target.
//
// The target is taken into the rect's own frame by undoing the rotation
// about the original center, the corner is edited there and the result is
// normalized. With keepAspect the width drives and the height follows the
// original ratio, anchored at the corner opposite the handle. Finally the
// rect is shifted so that, drawn rotated about its new center, the
// opposite corner lands where it was on screen.
func ResizeRect(orig geometry.Rect, rotation float64, corner document.Corner, target geometry.Point, keepAspect bool) geometry.Rect {
	orig = orig.Normalized()
	c0 := orig.Center()
	local := geometry.RotatePoint(target, c0, -rotation)

	var r geometry.Rect
	switch corner {
	case document.TopLeft:
		r = geometry.RectFromPoints(local, orig.BottomRight())
	case document.TopRight:
		r = geometry.RectFromPoints(orig.BottomLeft(), local)
	case document.BottomRight:
		r = geometry.RectFromPoints(orig.TopLeft(), local)
	case document.BottomLeft:
		r = geometry.RectFromPoints(local, orig.TopRight())
	default:
		return orig
	}

	if keepAspect && orig.Height > minAspectHeight {
		aspect := orig.Width / orig.Height
		w := r.Width
		h := w / aspect
		switch corner {
		case document.TopLeft:
			r = geometry.Rect{X: r.X + r.Width - w, Y: r.Y + r.Height - h, Width: w, Height: h}
		case document.TopRight:
			r = geometry.Rect{X: r.X, Y: r.Y + r.Height - h, Width: w, Height: h}
		case document.BottomRight:
			r = geometry.Rect{X: r.X, Y: r.Y, Width: w, Height: h}
		case document.BottomLeft:
			r = geometry.Rect{X: r.X + r.Width - w, Y: r.Y, Width: w, Height: h}
		}
		r = r.Normalized()
	}

	if rotation == 0 {
		return r
	}
	m := r.Center()
	screen := geometry.RotatePoint(m, c0, rotation)
	return r.Translated(screen.Sub(m))
}

// ResizeVertex moves vertex index to target. The other vertices keep their
// screen positions: the edit is made on the rotated outline and the result
// is taken back into the frame of the new centroid.
func ResizeVertex(orig []geometry.Point, rotation float64, index int, target geometry.Point) ([]geometry.Point, error) {
	if index < 0 || index >= len(orig) {
		return append([]geometry.Point(nil), orig...),
			fmt.Errorf("%w: vertex %d of %d", document.ErrOutOfRange, index, len(orig))
	}
	c0, _ := geometry.Centroid(orig)
	screen := geometry.RotatePoints(orig, c0, rotation)
	screen[index] = target
	if rotation == 0 {
		return screen, nil
	}
	c1, _ := geometry.Centroid(screen)
	return geometry.RotatePoints(screen, c1, -rotation), nil
}

// RectFromDrag returns the rect spanned by a drag. With square the larger
// side wins and the square grows away from start in the drag direction.
func RectFromDrag(start, end geometry.Point, square bool) geometry.Rect {
	r := geometry.RectFromPoints(start, end)
	if !square {
		return r
	}
	size := max(r.Width, r.Height)
	tl := start
	if end.X < start.X {
		tl.X = start.X - size
	}
	if end.Y < start.Y {
		tl.Y = start.Y - size
	}
	return geometry.Rect{X: tl.X, Y: tl.Y, Width: size, Height: size}
}

// LineFromDrag returns the end point of a line drag, optionally snapped to
// the nearest multiple of 45 degrees with the length kept.
func LineFromDrag(start, end geometry.Point, snap bool) geometry.Point {
	d := end.Sub(start)
	if !snap || (math.Abs(d.X) <= 1e-6 && math.Abs(d.Y) <= 1e-6) {
		return end
	}
	angle := math.Round(math.Atan2(d.Y, d.X)/(math.Pi/4)) * (math.Pi / 4)
	length := math.Hypot(d.X, d.Y)
	return start.Add(geometry.Pt(length*math.Cos(angle), length*math.Sin(angle)))
}

// TriangleFromDrag returns an isosceles triangle filling the drag box:
// bottom left, bottom right, then the apex at the top center.
func TriangleFromDrag(start, end geometry.Point) []geometry.Point {
	r := geometry.RectFromPoints(start, end)
	return []geometry.Point{r.BottomLeft(), r.BottomRight(), {X: r.Center().X, Y: r.Y}}
}
