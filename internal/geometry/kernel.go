package geometry

import "math"

const (
	// BoundsMargin is the fixed padding added around every bounding box on
	// top of half the stroke thickness.
	BoundsMargin = 2

	// ArrowWingAngle is the angle in degrees between the shaft and each wing.
	ArrowWingAngle = 150.0

	degenerateSegmentSq = 1e-10
)

// RotatePoint rotates p around pivot by degrees.
func RotatePoint(p, pivot Point, degrees float64) Point {
	if degrees == 0 {
		return p
	}
	return RotateAbout(pivot, degrees).Apply(p)
}

// RotatePoints rotates every point around pivot, returning a new slice.
func RotatePoints(pts []Point, pivot Point, degrees float64) []Point {
	if degrees == 0 {
		return append([]Point(nil), pts...)
	}
	return RotateAbout(pivot, degrees).ApplyAll(pts)
}

// Centroid returns the arithmetic mean of pts. ok is false when pts is empty,
// in which case the shape cannot be rotated or hit tested.
func Centroid(pts []Point) (c Point, ok bool) {
	if len(pts) == 0 {
		return Point{}, false
	}
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
	}
	n := float64(len(pts))
	return Point{c.X / n, c.Y / n}, true
}

// PointSegmentDistanceSq returns the squared distance from p to segment ab.
// Zero-length segments fall back to the distance from p to a.
func PointSegmentDistanceSq(p, a, b Point) float64 {
	ab := b.Sub(a)
	ap := p.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq < degenerateSegmentSq {
		return ap.Dot(ap)
	}
	t := ap.Dot(ab) / lenSq
	t = max(0, min(1, t))
	closest := a.Add(ab.Mul(t))
	return p.DistSq(closest)
}

// NormalizeDegrees maps any angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	if r >= 360 {
		r = 0
	}
	return r
}

// ArrowWings returns the two wing tips of an arrow head drawn at tip for the
// shaft running from tail to tip. ok is false for a zero-length shaft.
func ArrowWings(tail, tip Point, size float64) (left, right Point, ok bool) {
	d := tip.Sub(tail)
	if math.Hypot(d.X, d.Y) <= 1e-6 || size <= 0 {
		return Point{}, Point{}, false
	}
	angle := math.Atan2(d.Y, d.X)
	wing := ArrowWingAngle * math.Pi / 180
	left = tip.Add(Point{math.Cos(angle+wing) * size, math.Sin(angle+wing) * size})
	right = tip.Add(Point{math.Cos(angle-wing) * size, math.Sin(angle-wing) * size})
	return left, right, true
}

// StrokeBuffer returns the padding needed around geometry drawn with the
// given stroke thickness.
func StrokeBuffer(thickness int) float64 {
	return math.Ceil(float64(max(thickness, 1))/2) + BoundsMargin
}

// BoundingBox returns the axis-aligned box around pts, at least one unit in
// each axis, inflated for the stroke thickness. ok is false for no points.
func BoundingBox(pts []Point, thickness int) (Rect, bool) {
	if len(pts) == 0 {
		return Rect{}, false
	}
	r := BoundsOf(pts)
	r.Width = max(r.Width, 1)
	r.Height = max(r.Height, 1)
	return r.Inflated(StrokeBuffer(thickness)), true
}
