package document

import "github.com/inamate/annotator/internal/geometry"

// NewSampleScene returns one shape of every kind, laid out on a 1280x720
// screen. Used for demos and as a fixture.
func NewSampleScene() []Shape {
	solid := func(c Color, filled bool) Style {
		return Style{Color: c, Filled: filled, Alpha: 255, LineThickness: 2, LineStyle: LineSolid}
	}

	rect := NewShape(KindRect, RectGeometry(geometry.Rect{X: 200, Y: 200, Width: 200, Height: 150}),
		solid(Color{0xe9, 0x45, 0x60, 255}, true))

	ellipse := NewShape(KindEllipse, RectGeometry(geometry.Rect{X: 520, Y: 280, Width: 240, Height: 160}),
		solid(Color{0x0f, 0x34, 0x60, 255}, true))
	ellipse.Alpha = 200

	triangle := NewShape(KindTriangle, PointsGeometry([]geometry.Point{{900, 350}, {1100, 350}, {1000, 200}}),
		solid(Color{0x53, 0xd7, 0x69, 255}, false))
	triangle.Rotation = 15

	polygon := NewShape(KindPolygon, PointsGeometry([]geometry.Point{{100, 500}, {220, 460}, {260, 580}, {140, 640}}),
		solid(Color{0xf5, 0xa6, 0x23, 255}, true))

	line := NewShape(KindLine, PointsGeometry([]geometry.Point{{320, 480}, {480, 620}}),
		Style{Color: Black, Alpha: 255, LineThickness: 3, LineStyle: LineDash})

	arrowStyle := solid(Color{0xbd, 0x10, 0xe0, 255}, false)
	arrowStyle.ArrowHeadSize = 14
	arrow := NewShape(KindArrow, PointsGeometry([]geometry.Point{{540, 640}, {700, 520}}), arrowStyle)

	brush := NewShape(KindBrush, PointsGeometry([]geometry.Point{{760, 600}, {780, 590}, {800, 610}, {830, 585}, {860, 605}}),
		Style{Color: Red, Alpha: 180, LineThickness: 5, LineStyle: LineSolid})

	linePoint := NewShape(KindLinePoint, PointsGeometry([]geometry.Point{{900, 480}, {960, 540}, {1040, 500}}),
		Style{Color: Color{0x16, 0x21, 0x3e, 255}, Alpha: 255, LineThickness: 2, LineStyle: LineDot})

	text := NewShape(KindText, RectGeometry(geometry.Rect{X: 200, Y: 80, Width: 220, Height: 28}),
		Style{Color: Black, Alpha: 255, LineThickness: 1, LineStyle: LineSolid})
	text.Text.Text = "Annotations"
	text.Text.Size = 18
	text.Text.Bold = true

	return []Shape{rect, ellipse, triangle, polygon, line, arrow, brush, linePoint, text}
}
