package scene

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/annotator/internal/document"
	"github.com/inamate/annotator/internal/geometry"
)

type fixedMeasurer struct{ w, h float64 }

func (m fixedMeasurer) Measure(document.TextProperties) (float64, float64) { return m.w, m.h }

var testStyle = document.Style{Color: document.Black, Filled: true, Alpha: 255, LineThickness: 2, LineStyle: document.LineSolid}

func rectShape(x, y, w, h float64) document.Shape {
	return document.NewShape(document.KindRect, document.RectGeometry(geometry.Rect{X: x, Y: y, Width: w, Height: h}), testStyle)
}

func pointShape(kind document.Kind, pts ...geometry.Point) document.Shape {
	return document.NewShape(kind, document.PointsGeometry(pts), testStyle)
}

func textShape(x, y float64, text string) document.Shape {
	s := document.NewShape(document.KindText, document.RectGeometry(geometry.Rect{X: x, Y: y, Width: 80, Height: 20}), testStyle)
	s.Text.Text = text
	return s
}

// newTestScene returns a scene holding shapes with an empty history.
func newTestScene(t *testing.T, shapes ...document.Shape) *Scene {
	t.Helper()
	s := New(Options{Measurer: fixedMeasurer{w: 100, h: 14}})
	if len(shapes) > 0 {
		s.Load(shapes, false)
		s.history = NewHistory(DefaultHistoryLimit)
	}
	return s
}

func ids(shapes []document.Shape) []string {
	out := make([]string, len(shapes))
	for i, sh := range shapes {
		out[i] = sh.ID
	}
	return out
}

func TestUndoRedoEveryCommand(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		do     func(s *Scene, all []string)
	}{
		{"draw", ActionDraw, func(s *Scene, _ []string) {
			_, err := s.Draw(document.KindEllipse, document.RectGeometry(geometry.Rect{X: 5, Y: 5, Width: 20, Height: 20}), testStyle)
			require.NoError(t, err)
		}},
		{"delete", ActionDelete, func(s *Scene, all []string) { s.Delete(all[1], all[3]) }},
		{"delete selected", ActionDeleteSelected, func(s *Scene, all []string) {
			s.Select(all[0], all[2])
			s.DeleteSelected()
		}},
		{"move", ActionMove, func(s *Scene, all []string) { s.Translate(all, geometry.Pt(7, -3)) }},
		{"resize", ActionResize, func(s *Scene, all []string) {
			require.NoError(t, s.Resize(all[0], document.CornerHandle(document.BottomRight), geometry.Pt(90, 90), true))
		}},
		{"rotate", ActionRotate, func(s *Scene, all []string) { s.Rotate(all, -90) }},
		{"scale", ActionScale, func(s *Scene, all []string) { s.Scale(all, 1.1) }},
		{"change color", ActionChangeColor, func(s *Scene, all []string) { s.SetColor(all, document.Palette[8]) }},
		{"change alpha", ActionChangeAlpha, func(s *Scene, all []string) { s.SetShapeAlpha(all, 40) }},
		{"toggle fill", ActionToggleFill, func(s *Scene, all []string) { s.ToggleFill(all) }},
		{"line style", ActionChangeLineStyle, func(s *Scene, all []string) { s.SetShapeLineStyle(all, document.LineDot) }},
		{"line thickness", ActionChangeLineThickness, func(s *Scene, all []string) { s.SetShapeLineThickness(all, 6) }},
		{"arrow head", ActionChangeArrowHeadSize, func(s *Scene, all []string) { s.SetShapeArrowHeadSize(all, 25) }},
		{"edit text", ActionEditText, func(s *Scene, all []string) {
			tp := document.DefaultTextProperties()
			tp.Text = "changed"
			tp.Bold = true
			require.NoError(t, s.EditText(all[4], TextInput{Properties: tp}))
		}},
		{"paste", ActionPaste, func(s *Scene, all []string) {
			s.Copy(all[:2])
			s.Paste(geometry.Pt(400, 400))
		}},
		{"clear", ActionClear, func(s *Scene, _ []string) { s.Clear() }},
		{"load", ActionLoad, func(s *Scene, _ []string) { s.Load([]document.Shape{rectShape(1, 1, 9, 9)}, false) }},
		{"load join", ActionLoadJoin, func(s *Scene, _ []string) { s.Load([]document.Shape{rectShape(1, 1, 9, 9)}, true) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScene(t,
				rectShape(10, 10, 40, 30),
				pointShape(document.KindPolygon, geometry.Pt(0, 0), geometry.Pt(30, 0), geometry.Pt(15, 20)),
				pointShape(document.KindArrow, geometry.Pt(100, 100), geometry.Pt(150, 120)),
				pointShape(document.KindBrush, geometry.Pt(5, 5), geometry.Pt(9, 9), geometry.Pt(20, 4)),
				textShape(60, 60, "note"),
			)
			before := s.Shapes()

			tt.do(s, ids(before))
			after := s.Shapes()
			require.NotEqual(t, before, after)
			c, ok := s.History().Peek()
			require.True(t, ok)
			assert.Equal(t, tt.action, c.Action())

			res := s.Undo()
			require.True(t, res.Applied)
			require.NoError(t, res.Err())
			assert.Equal(t, tt.action, res.Action)
			assert.Equal(t, before, s.Shapes(), "undo restores the scene")

			res = s.Redo()
			require.NoError(t, res.Err())
			assert.Equal(t, after, s.Shapes(), "redo reapplies the change")

			s.Undo()
			assert.Equal(t, before, s.Shapes(), "undo after redo")
		})
	}
}

func TestChangeAlphaUndoRestoresEachShape(t *testing.T) {
	a := rectShape(0, 0, 10, 10)
	a.Alpha = 10
	b := rectShape(20, 0, 10, 10)
	b.Alpha = 200
	s := newTestScene(t, a, b)

	s.Select(a.ID, b.ID)
	assert.Equal(t, 2, s.SetShapeAlpha(s.Selection(), 128))
	for _, sh := range s.Shapes() {
		assert.Equal(t, uint8(128), sh.Alpha)
	}

	s.Undo()
	got := s.Shapes()
	assert.Equal(t, uint8(10), got[0].Alpha)
	assert.Equal(t, uint8(200), got[1].Alpha)
}

func TestPropertyEditSkipsUnchangedShapes(t *testing.T) {
	a := rectShape(0, 0, 10, 10)
	b := rectShape(20, 0, 10, 10)
	b.Color = document.Red
	s := newTestScene(t, a, b)

	assert.Equal(t, 1, s.SetColor([]string{a.ID, b.ID}, document.Red))
	c, _ := s.History().Peek()
	edit, ok := c.(PropertyEdit[document.Color])
	require.True(t, ok)
	require.Len(t, edit.Entries, 1)
	assert.Equal(t, a.ID, edit.Entries[0].ID)

	assert.Zero(t, s.SetColor([]string{a.ID, b.ID}, document.Red))
	assert.Equal(t, 1, s.History().UndoLen(), "no-op edit records nothing")
}

func TestPasteCentersOnAnchor(t *testing.T) {
	a := rectShape(0, 0, 20, 10)
	b := pointShape(document.KindLine, geometry.Pt(40, 40), geometry.Pt(60, 50))
	s := newTestScene(t, a, b)
	before := s.Shapes()

	require.Equal(t, 2, s.Copy([]string{b.ID, a.ID}))
	anchor := geometry.Pt(300, 200)
	pasted := s.Paste(anchor)
	require.Len(t, pasted, 2)
	assert.Equal(t, pasted, s.Selection())
	assert.NotContains(t, pasted, a.ID)

	var verts []geometry.Point
	for _, id := range pasted {
		sh, ok := s.Shape(id)
		require.True(t, ok)
		verts = append(verts, sh.Geometry.Vertices()...)
	}
	c := geometry.BoundsOf(verts).Center()
	assert.InDelta(t, anchor.X, c.X, 1e-9)
	assert.InDelta(t, anchor.Y, c.Y, 1e-9)

	first, _ := s.Shape(pasted[0])
	assert.Equal(t, document.KindRect, first.Kind, "clipboard keeps paint order")

	s.Undo()
	assert.Equal(t, before, s.Shapes())
	assert.Empty(t, s.Selection())
}

func TestPasteWithoutGeometryKeepsPosition(t *testing.T) {
	a := document.NewShape(document.KindPolygon, document.Geometry{}, testStyle)
	s := newTestScene(t, a)
	s.Copy([]string{a.ID})
	pasted := s.Paste(geometry.Pt(50, 50))
	require.Len(t, pasted, 1)
	sh, _ := s.Shape(pasted[0])
	assert.True(t, sh.Geometry.IsNone())
	assert.Len(t, s.Paste(geometry.Pt(0, 0)), 1, "clipboard stays filled")
}

func TestDeleteUndoReinsertsInPlace(t *testing.T) {
	shapes := []document.Shape{rectShape(0, 0, 5, 5), rectShape(10, 0, 5, 5), rectShape(20, 0, 5, 5), rectShape(30, 0, 5, 5)}
	s := newTestScene(t, shapes...)

	assert.Equal(t, 2, s.Delete(shapes[3].ID, shapes[1].ID))
	assert.Equal(t, []string{shapes[0].ID, shapes[2].ID}, ids(s.Shapes()))

	s.Undo()
	assert.Equal(t, ids(shapes), ids(s.Shapes()))
}

func TestUndoSkipsStaleReferences(t *testing.T) {
	a, b, c := rectShape(0, 0, 5, 5), rectShape(10, 0, 5, 5), rectShape(20, 0, 5, 5)
	s := newTestScene(t, a, b, c)
	s.SetColor([]string{a.ID, b.ID, c.ID}, document.Red)

	// something outside the history drops b and shifts c down
	s.shapes = slices.Delete(s.shapes, 1, 2)

	res := s.Undo()
	require.True(t, res.Applied)
	require.Len(t, res.Errors, 1)
	assert.ErrorIs(t, res.Err(), document.ErrStaleReference)

	got := s.Shapes()
	require.Len(t, got, 2)
	assert.Equal(t, document.Black, got[0].Color)
	assert.Equal(t, document.Black, got[1].Color, "c is found by identity after its index moved")

	res = s.Redo()
	assert.NoError(t, res.Err())
	assert.Equal(t, document.Red, s.Shapes()[1].Color)
}

func TestUndoDrawOfMissingShape(t *testing.T) {
	s := newTestScene(t)
	id, err := s.Draw(document.KindRect, document.RectGeometry(geometry.Rect{Width: 10, Height: 10}), testStyle)
	require.NoError(t, err)
	s.shapes = nil

	res := s.Undo()
	assert.ErrorIs(t, res.Err(), document.ErrStaleReference)
	assert.Zero(t, s.Len())
	_, ok := s.Shape(id)
	assert.False(t, ok)
}

func TestHistoryLimitDropsOldest(t *testing.T) {
	s := New(Options{HistoryLimit: 3})
	for i := range 5 {
		_, err := s.Draw(document.KindRect, document.RectGeometry(geometry.Rect{X: float64(i * 20), Width: 10, Height: 10}), testStyle)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, s.History().UndoLen())

	for s.CanUndo() {
		s.Undo()
	}
	assert.Equal(t, 2, s.Len(), "the two oldest draws can no longer be undone")
	assert.Equal(t, 3, s.History().RedoLen())
}

func TestNewCommandClearsRedo(t *testing.T) {
	s := newTestScene(t, rectShape(0, 0, 10, 10))
	s.SelectAll()
	s.Translate(s.Selection(), geometry.Pt(1, 1))
	s.Undo()
	require.True(t, s.CanRedo())

	s.Draw(document.KindRect, document.RectGeometry(geometry.Rect{Width: 10, Height: 10}), testStyle)
	assert.False(t, s.CanRedo())
	assert.Equal(t, Result{}, s.Redo())
}

func TestUndoClearsSelectionAndGesture(t *testing.T) {
	a := rectShape(0, 0, 50, 50)
	s := newTestScene(t, a)
	s.SetColor([]string{a.ID}, document.Red)
	s.Select(a.ID)
	s.Press(geometry.Pt(10, 10), 0)
	require.Equal(t, StateDragging, s.State())

	s.Undo()
	assert.Empty(t, s.Selection())
	assert.Equal(t, StateIdle, s.State())
}

func TestDrawDiscardsInvalidGeometry(t *testing.T) {
	tests := []struct {
		name string
		kind document.Kind
		geom document.Geometry
	}{
		{"thin rect", document.KindRect, document.RectGeometry(geometry.Rect{Width: 2, Height: 40})},
		{"short line", document.KindLine, document.PointsGeometry([]geometry.Point{{0, 0}, {1, 1}})},
		{"three point line", document.KindLine, document.PointsGeometry([]geometry.Point{{0, 0}, {10, 0}, {20, 0}})},
		{"one point brush", document.KindBrush, document.PointsGeometry([]geometry.Point{{0, 0}})},
		{"two point polygon", document.KindPolygon, document.PointsGeometry([]geometry.Point{{0, 0}, {10, 0}})},
		{"rect for a line", document.KindLine, document.RectGeometry(geometry.Rect{Width: 10, Height: 10})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScene(t)
			_, err := s.Draw(tt.kind, tt.geom, testStyle)
			assert.ErrorIs(t, err, document.ErrInvalidGeometry)
			assert.Zero(t, s.Len())
			assert.False(t, s.CanUndo())
		})
	}
}

func TestLoadAssignsFreshIDsToDuplicates(t *testing.T) {
	a := rectShape(0, 0, 10, 10)
	s := newTestScene(t, a)
	s.Load([]document.Shape{a}, true)

	got := s.Shapes()
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.NotEqual(t, a.ID, got[1].ID)
}

func TestClearOnEmptySceneRecordsNothing(t *testing.T) {
	s := newTestScene(t)
	assert.False(t, s.Clear())
	assert.False(t, s.CanUndo())
}

func TestBoardSettingsAreUndoable(t *testing.T) {
	s := newTestScene(t)
	s.SetBoardMode(true)

	assert.False(t, s.SetBoardPen(document.Black), "unchanged pen records nothing")
	assert.True(t, s.SetBoardPen(document.Palette[2]))
	assert.True(t, s.SetBoardBackground(document.White.WithAlpha(40)))

	s.Undo()
	assert.Equal(t, document.White, s.Board().Background)
	s.Undo()
	assert.Equal(t, document.Black, s.Board().Pen)
	s.Redo()
	assert.Equal(t, document.Palette[2], s.Board().Pen)
}

func TestSelectAt(t *testing.T) {
	a, b := rectShape(0, 0, 50, 50), rectShape(100, 0, 50, 50)
	s := newTestScene(t, a, b)

	assert.Equal(t, a.ID, s.SelectAt(geometry.Pt(10, 10), false))
	assert.Equal(t, b.ID, s.SelectAt(geometry.Pt(110, 10), true))
	assert.Equal(t, []string{a.ID, b.ID}, s.Selection())
	s.SelectAt(geometry.Pt(10, 10), true)
	assert.Equal(t, []string{b.ID}, s.Selection())
	assert.Empty(t, s.SelectAt(geometry.Pt(500, 500), false))
	assert.Empty(t, s.Selection())
}

func TestCommandsCancelActiveDrag(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(s *Scene, all []string)
		do     func(s *Scene)
		settle func(s *Scene)
	}{
		{"undo", func(s *Scene, all []string) { s.Translate(all[:1], geometry.Pt(100, 0)) },
			func(s *Scene) { s.Undo() }, func(s *Scene) { s.Redo() }},
		{"undo key", func(s *Scene, all []string) { s.Translate(all[:1], geometry.Pt(100, 0)) },
			func(s *Scene) { s.KeyDown("z", ModCtrl) }, func(s *Scene) { s.KeyDown("y", ModCtrl) }},
		{"undo draw", func(s *Scene, _ []string) {
			_, err := s.Draw(document.KindEllipse, document.RectGeometry(geometry.Rect{X: 300, Y: 300, Width: 20, Height: 20}), testStyle)
			require.NoError(t, err)
		}, func(s *Scene) { s.Undo() }, func(s *Scene) { s.Redo() }},
		{"redo", func(s *Scene, all []string) {
			s.Translate(all[:1], geometry.Pt(100, 0))
			s.Undo()
		}, func(s *Scene) { s.Redo() }, func(s *Scene) { s.Undo() }},
		{"clear", func(*Scene, []string) {}, func(s *Scene) { s.Clear() }, func(s *Scene) { s.Undo() }},
		{"load", func(*Scene, []string) {},
			func(s *Scene) { s.Load([]document.Shape{rectShape(1, 1, 9, 9)}, false) }, func(s *Scene) { s.Undo() }},
		{"load join", func(*Scene, []string) {},
			func(s *Scene) { s.Load([]document.Shape{rectShape(1, 1, 9, 9)}, true) }, func(s *Scene) { s.Undo() }},
		{"paste", func(s *Scene, all []string) { s.Copy(all[1:]) },
			func(s *Scene) { s.Paste(geometry.Pt(400, 400)) }, func(s *Scene) { s.Undo() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScene(t, rectShape(10, 10, 40, 30), rectShape(100, 100, 40, 30))
			all := ids(s.Shapes())
			tt.setup(s, all)
			before := s.Shapes()

			at, ok := s.Shapes()[0].Geometry.Centroid()
			require.True(t, ok)
			s.Press(at, 0)
			s.Move(at.Add(geometry.Pt(200, 200)), 0)
			require.Equal(t, StateDragging, s.State())

			tt.do(s)
			assert.Equal(t, StateIdle, s.State())
			tt.settle(s)
			assert.Equal(t, before, s.Shapes(), "the drag leaves no trace")
		})
	}
}

func TestScaleRejectsNonFiniteFactors(t *testing.T) {
	a := rectShape(10, 10, 40, 30)
	s := newTestScene(t, a)
	for _, f := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0, -2, 1} {
		assert.Zero(t, s.Scale([]string{a.ID}, f), "factor %v", f)
	}
	assert.Zero(t, s.Rotate([]string{a.ID}, math.NaN()))
	assert.Equal(t, a.Geometry, s.Shapes()[0].Geometry)
	assert.False(t, s.CanUndo())
}
