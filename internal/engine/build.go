package engine

import (
	"log/slog"

	"github.com/inamate/annotator/internal/document"
	"github.com/inamate/annotator/internal/geometry"
	"github.com/inamate/annotator/internal/query"
)

// Magic number for bezier approximation of a circle/ellipse
// k = 4 * (sqrt(2) - 1) / 3 ≈ 0.5522847498
const ellipseK = 0.5522847498

// BuildSceneGraph resolves every shape into a render node. Shapes whose
// geometry does not fit their kind are left out.
func BuildSceneGraph(shapes []document.Shape) *SceneGraph {
	sg := NewSceneGraph()
	for i := range shapes {
		node := buildNode(&shapes[i])
		if node == nil {
			slog.Debug("shape not renderable", "id", shapes[i].ID, "kind", shapes[i].Kind)
			continue
		}
		sg.Nodes = append(sg.Nodes, node)
		sg.NodesById[node.ID] = node
	}
	return sg
}

// buildNode generates the path and paint of one shape.
func buildNode(s *document.Shape) *SceneNode {
	if !s.Geometry.FitsKind(s.Kind) {
		return nil
	}

	color := s.Color.CSS()
	width := float64(max(s.LineThickness, 1))
	node := &SceneNode{
		ID:          s.ID,
		Kind:        s.Kind,
		Transform:   geometry.Identity(),
		Stroke:      color,
		StrokeWidth: width,
		Dash:        dashPattern(s.LineStyle, width),
		LineCap:     "butt",
		Opacity:     float64(s.Alpha) / 255,
	}
	if c, ok := s.Centroid(); ok && s.Rotation != 0 {
		node.Transform = geometry.RotateAbout(c, s.Rotation)
	}

	g := s.Geometry
	switch s.Kind {
	case document.KindRect:
		node.Path = generateRectPath(g.Rect)
		if s.Filled {
			node.Fill = color
		}

	case document.KindEllipse:
		node.Path = generateEllipsePath(g.Rect)
		if s.Filled {
			node.Fill = color
		}

	case document.KindTriangle, document.KindPolygon:
		node.Path = generatePolylinePath(g.Points, true)
		if s.Filled {
			node.Fill = color
		}

	case document.KindLine, document.KindLinePoint:
		node.Path = generatePolylinePath(g.Points, false)

	case document.KindBrush:
		node.Path = generatePolylinePath(g.Points, false)
		node.LineCap = "round"

	case document.KindArrow:
		node.Path = generateArrowPath(g.Points[0], g.Points[1], float64(s.ArrowHeadSize))
		node.Fill = color

	case document.KindText:
		node.Path = generateRectPath(g.Rect)
		node.Stroke = ""
		node.Dash = nil
		tp := document.DefaultTextProperties()
		if s.Text != nil {
			tp = *s.Text
		}
		if tp.Background != nil {
			node.Fill = tp.Background.CSS()
		}
		node.Text = &TextPayload{
			Text:      tp.Text,
			Font:      tp.Font,
			Size:      tp.Size,
			Bold:      tp.Bold,
			Italic:    tp.Italic,
			Underline: tp.Underline,
			Strikeout: tp.Strikeout,
			Color:     tp.Color.CSS(),
			Alignment: string(tp.Alignment),
			X:         g.Rect.X,
			Y:         g.Rect.Y,
			Width:     g.Rect.Width,
			Height:    g.Rect.Height,
		}
	}

	node.Bounds, _ = s.BoundingBox()
	return node
}

// dashPattern follows the Qt pen patterns, in multiples of the width.
func dashPattern(ls document.LineStyle, width float64) []float64 {
	switch ls {
	case document.LineDash:
		return []float64{4 * width, 2 * width}
	case document.LineDot:
		return []float64{width, 2 * width}
	}
	return nil
}

// generateRectPath generates path commands for a rectangle.
func generateRectPath(r geometry.Rect) []PathCommand {
	return []PathCommand{
		{"M", r.X, r.Y},
		{"L", r.X + r.Width, r.Y},
		{"L", r.X + r.Width, r.Y + r.Height},
		{"L", r.X, r.Y + r.Height},
		{"Z"},
	}
}

// generateEllipsePath generates path commands for the ellipse inscribed in
// r using bezier curves.
func generateEllipsePath(r geometry.Rect) []PathCommand {
	c := r.Center()
	rx, ry := r.Width/2, r.Height/2
	kx, ky := rx*ellipseK, ry*ellipseK

	// Four bezier curves to approximate an ellipse
	return []PathCommand{
		{"M", c.X + rx, c.Y},
		{"C", c.X + rx, c.Y + ky, c.X + kx, c.Y + ry, c.X, c.Y + ry},
		{"C", c.X - kx, c.Y + ry, c.X - rx, c.Y + ky, c.X - rx, c.Y},
		{"C", c.X - rx, c.Y - ky, c.X - kx, c.Y - ry, c.X, c.Y - ry},
		{"C", c.X + kx, c.Y - ry, c.X + rx, c.Y - ky, c.X + rx, c.Y},
		{"Z"},
	}
}

// generatePolylinePath joins pts in order. A single point becomes a
// zero-length segment so round caps still draw a dot.
func generatePolylinePath(pts []geometry.Point, closed bool) []PathCommand {
	if len(pts) == 0 {
		return nil
	}
	path := make([]PathCommand, 0, len(pts)+1)
	path = append(path, PathCommand{"M", pts[0].X, pts[0].Y})
	if len(pts) == 1 {
		return append(path, PathCommand{"L", pts[0].X, pts[0].Y})
	}
	for _, p := range pts[1:] {
		path = append(path, PathCommand{"L", p.X, p.Y})
	}
	if closed {
		path = append(path, PathCommand{"Z"})
	}
	return path
}

// generateArrowPath draws the shaft as an open subpath and the head as a
// closed triangle, so filling the path only paints the head.
func generateArrowPath(tail, tip geometry.Point, headSize float64) []PathCommand {
	path := []PathCommand{
		{"M", tail.X, tail.Y},
		{"L", tip.X, tip.Y},
	}
	left, right, ok := geometry.ArrowWings(tail, tip, headSize)
	if !ok {
		return path
	}
	return append(path,
		PathCommand{"M", tip.X, tip.Y},
		PathCommand{"L", left.X, left.Y},
		PathCommand{"L", right.X, right.Y},
		PathCommand{"Z"},
	)
}

// generateHandlePaths draws one square per handle of s, centered on the
// handle's screen position.
func generateHandlePaths(s document.Shape, size float64) []PathCommand {
	var path []PathCommand
	half := size / 2
	for _, h := range query.Handles(s) {
		path = append(path, generateRectPath(geometry.Rect{X: h.Pos.X - half, Y: h.Pos.Y - half, Width: size, Height: size})...)
	}
	return path
}

// generatePendingPath draws the collected polygon points plus a rubber
// band segment to the pointer.
func generatePendingPath(pts []geometry.Point, pointer geometry.Point) []PathCommand {
	if len(pts) == 0 {
		return nil
	}
	return generatePolylinePath(append(pts, pointer), false)
}
