package scene

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/inamate/annotator/internal/document"
	"github.com/inamate/annotator/internal/geometry"
	"github.com/inamate/annotator/internal/query"
	"github.com/inamate/annotator/internal/transform"
	"github.com/inamate/annotator/internal/typeid"
)

// minDrawExtent is the smallest drag, in each axis or manhattan length,
// that still produces a shape.
const minDrawExtent = 3.0

// Validate reports why geometry authored for kind would be discarded.
func Validate(kind document.Kind, g document.Geometry) error {
	if !g.FitsKind(kind) {
		return fmt.Errorf("%w: %s needs %s geometry", document.ErrInvalidGeometry, kind, describe(kind))
	}
	switch kind {
	case document.KindRect, document.KindEllipse:
		if g.Rect.Width < minDrawExtent || g.Rect.Height < minDrawExtent {
			return fmt.Errorf("%w: %s of %.1fx%.1f is too small", document.ErrInvalidGeometry, kind, g.Rect.Width, g.Rect.Height)
		}
	case document.KindText:
		if g.Rect.IsEmpty() {
			return fmt.Errorf("%w: empty text block", document.ErrInvalidGeometry)
		}
	case document.KindLine, document.KindArrow, document.KindTriangle:
		first, last := g.Points[0], g.Points[len(g.Points)-1]
		if last.Sub(first).Manhattan() < minDrawExtent {
			return fmt.Errorf("%w: %s drag is shorter than %.0f", document.ErrInvalidGeometry, kind, minDrawExtent)
		}
	case document.KindBrush:
		if len(g.Points) < 2 {
			return fmt.Errorf("%w: brush stroke needs 2 points", document.ErrInvalidGeometry)
		}
	case document.KindLinePoint:
		if len(g.Points) < 2 {
			return fmt.Errorf("%w: line needs 2 points", document.ErrInvalidGeometry)
		}
	}
	return nil
}

func describe(kind document.Kind) string {
	if kind.UsesRect() {
		return "rect"
	}
	return fmt.Sprintf("%d+ point", kind.MinPoints())
}

// Draw validates authored geometry and appends a new shape with the given
// style. Invalid geometry is discarded without recording anything.
func (s *Scene) Draw(kind document.Kind, g document.Geometry, style document.Style) (string, error) {
	if err := Validate(kind, g); err != nil {
		slog.Warn("discarding drawing", "kind", kind, "error", err)
		return "", err
	}
	sh := document.NewShape(kind, g, style)
	if kind == document.KindText {
		tp := s.textDefaults().Clone()
		sh.Text = &tp
	}
	s.commit(sh)
	return sh.ID, nil
}

// commit appends sh and records a draw at its index.
func (s *Scene) commit(sh document.Shape) {
	s.shapes = append(s.shapes, sh)
	s.record(ShapesAdded{Act: ActionDraw, Entries: []Entry{{Index: len(s.shapes) - 1, Shape: sh.Clone()}}})
}

// Delete removes the shapes with the given ids. Their copies and former
// indices are recorded so undo puts every shape back in place. It returns
// the number of shapes removed.
func (s *Scene) Delete(ids ...string) int {
	return s.remove(ActionDelete, s.indicesOf(ids))
}

// DeleteSelected removes the selected shapes and clears the selection.
func (s *Scene) DeleteSelected() int {
	n := s.remove(ActionDeleteSelected, s.indicesOf(s.selection))
	s.ClearSelection()
	return n
}

// DeleteAt removes the topmost non-text shape under p. Text shapes are
// left for editing.
func (s *Scene) DeleteAt(p geometry.Point) (string, bool) {
	i := query.TopShapeAt(s.shapes, p)
	if i < 0 || s.shapes[i].Kind == document.KindText {
		return "", false
	}
	id := s.shapes[i].ID
	s.remove(ActionDelete, []int{i})
	return id, true
}

func (s *Scene) remove(act Action, indices []int) int {
	if len(indices) == 0 {
		return 0
	}
	slices.Sort(indices)
	entries := make([]Entry, len(indices))
	for n, i := range indices {
		entries[n] = Entry{Index: i, Shape: s.shapes[i].Clone()}
	}
	for _, i := range slices.Backward(indices) {
		s.shapes = slices.Delete(s.shapes, i, i+1)
	}
	s.record(ShapesRemoved{Act: act, Entries: entries})
	s.pruneSelection()
	return len(entries)
}

// editShapes sets a field on every listed shape whose value changes and
// records one command with the previous values. It returns how many shapes
// changed.
func editShapes[T any](s *Scene, act Action, f field[T], ids []string, next func(sh *document.Shape, current T) (T, bool)) int {
	var entries []Edit[T]
	for _, i := range s.indicesOf(ids) {
		sh := &s.shapes[i]
		current := f.get(sh)
		v, changed := next(sh, current)
		if !changed {
			continue
		}
		entries = append(entries, Edit[T]{Index: i, ID: sh.ID, Value: current})
		f.set(sh, v)
	}
	if len(entries) == 0 {
		return 0
	}
	s.record(PropertyEdit[T]{Act: act, Entries: entries, field: f})
	return len(entries)
}

func setTo[T comparable](v T) func(*document.Shape, T) (T, bool) {
	return func(_ *document.Shape, current T) (T, bool) {
		return v, current != v
	}
}

// SetColor recolors the listed shapes.
func (s *Scene) SetColor(ids []string, c document.Color) int {
	return editShapes(s, ActionChangeColor, colorField, ids, setTo(c))
}

// SetShapeAlpha sets the overall opacity of the listed shapes.
func (s *Scene) SetShapeAlpha(ids []string, a uint8) int {
	return editShapes(s, ActionChangeAlpha, alphaField, ids, setTo(a))
}

// SetShapeFilled sets the fill flag of the listed shapes.
func (s *Scene) SetShapeFilled(ids []string, filled bool) int {
	return editShapes(s, ActionToggleFill, filledField, ids, setTo(filled))
}

// ToggleFill flips the fill flag of each listed shape.
func (s *Scene) ToggleFill(ids []string) int {
	return editShapes(s, ActionToggleFill, filledField, ids, func(_ *document.Shape, current bool) (bool, bool) {
		return !current, true
	})
}

// SetShapeLineStyle sets the stroke style of the listed shapes. Unknown
// styles become solid.
func (s *Scene) SetShapeLineStyle(ids []string, ls document.LineStyle) int {
	if !ls.Valid() {
		slog.Warn("unknown line style, using solid", "value", int(ls))
		ls = document.LineSolid
	}
	return editShapes(s, ActionChangeLineStyle, lineStyleField, ids, setTo(ls))
}

// SetShapeLineThickness sets the stroke width of the listed shapes,
// clamped to >= 1.
func (s *Scene) SetShapeLineThickness(ids []string, t int) int {
	if t < 1 {
		slog.Warn("clamping line thickness", "value", t)
		t = 1
	}
	return editShapes(s, ActionChangeLineThickness, thicknessField, ids, setTo(t))
}

// SetShapeArrowHeadSize sets the head size of the listed arrows. Other
// kinds are skipped.
func (s *Scene) SetShapeArrowHeadSize(ids []string, size int) int {
	if size <= 0 {
		size = document.DefaultArrowHeadSize
	}
	return editShapes(s, ActionChangeArrowHeadSize, arrowHeadField, ids, func(sh *document.Shape, current int) (int, bool) {
		return size, sh.Kind == document.KindArrow && current != size
	})
}

// Translate moves the listed shapes by d.
func (s *Scene) Translate(ids []string, d geometry.Point) int {
	if d == (geometry.Point{}) {
		return 0
	}
	return editShapes(s, ActionMove, geometryField, ids, func(_ *document.Shape, current document.Geometry) (document.Geometry, bool) {
		return transform.Translate(current, d), !current.IsNone()
	})
}

// Scale scales each listed shape about its own centroid.
func (s *Scene) Scale(ids []string, factor float64) int {
	if factor <= 0 || factor == 1 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return 0
	}
	return editShapes(s, ActionScale, geometryField, ids, func(_ *document.Shape, current document.Geometry) (document.Geometry, bool) {
		_, ok := current.Centroid()
		return transform.Scale(current, factor), ok
	})
}

// Rotate adds delta degrees to each listed shape's rotation.
func (s *Scene) Rotate(ids []string, delta float64) int {
	if delta == 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
		return 0
	}
	return editShapes(s, ActionRotate, rotationField, ids, func(_ *document.Shape, current float64) (float64, bool) {
		return transform.Rotate(current, delta), true
	})
}

// Resize drags handle h of shape id to target and records the resize.
func (s *Scene) Resize(id string, h document.Handle, target geometry.Point, keepAspect bool) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: no shape %q", document.ErrStaleReference, id)
	}
	sh := s.shapes[i]
	g, err := transform.Resize(sh.Geometry, sh.Rotation, h, target, keepAspect)
	if err != nil {
		return err
	}
	editShapes(s, ActionResize, geometryField, []string{id}, func(_ *document.Shape, current document.Geometry) (document.Geometry, bool) {
		return g, !current.Equal(g)
	})
	return nil
}

// Copy snapshots the listed shapes into the clipboard in paint order.
// It returns the number of shapes copied.
func (s *Scene) Copy(ids []string) int {
	indices := s.indicesOf(ids)
	if len(indices) == 0 {
		return 0
	}
	s.clipboard = s.clipboard[:0]
	for _, i := range indices {
		s.clipboard = append(s.clipboard, s.shapes[i].Clone())
	}
	slog.Debug("copied", "count", len(s.clipboard))
	return len(s.clipboard)
}

// Paste appends copies of the clipboard centered on anchor and selects
// them. The center is taken over the clipboard's rect corners and points;
// a clipboard without geometry pastes in place. The whole pre-paste list
// is recorded. An active gesture is cancelled first.
func (s *Scene) Paste(anchor geometry.Point) []string {
	if len(s.clipboard) == 0 {
		return nil
	}
	s.Cancel()
	var verts []geometry.Point
	for _, sh := range s.clipboard {
		verts = append(verts, sh.Geometry.Vertices()...)
	}
	var offset geometry.Point
	if len(verts) > 0 {
		offset = anchor.Sub(geometry.BoundsOf(verts).Center())
	}

	before := cloneShapes(s.shapes)
	ids := make([]string, 0, len(s.clipboard))
	for _, src := range s.clipboard {
		sh := src.Clone()
		sh.ID = typeid.NewShapeID()
		sh.Geometry = transform.Translate(src.Geometry, offset)
		s.shapes = append(s.shapes, sh)
		ids = append(ids, sh.ID)
	}
	s.record(ListSwap{Act: ActionPaste, Shapes: before})
	s.selection = slices.Clone(ids)
	return ids
}

// Clear removes every shape. Nothing is recorded for an empty scene.
func (s *Scene) Clear() bool {
	if len(s.shapes) == 0 {
		return false
	}
	s.Cancel()
	s.record(ListSwap{Act: ActionClear, Shapes: s.shapes})
	s.shapes = nil
	s.ClearSelection()
	return true
}

// Load replaces the scene with shapes, or appends them when join is set.
// Shapes whose id is already present get a fresh one.
func (s *Scene) Load(shapes []document.Shape, join bool) {
	s.Cancel()
	act := ActionLoad
	if join {
		act = ActionLoadJoin
	}
	before := cloneShapes(s.shapes)
	if !join {
		s.shapes = nil
	}
	for _, sh := range shapes {
		sh = sh.Clone()
		if sh.ID == "" || s.indexOf(sh.ID) >= 0 {
			sh.ID = typeid.NewShapeID()
		}
		s.shapes = append(s.shapes, sh)
	}
	s.record(ListSwap{Act: act, Shapes: before})
	s.ClearSelection()
	slog.Info("scene loaded", "action", act, "added", len(shapes), "shapes", len(s.shapes))
}

// SetBoardBackground sets the board background. The change is recorded
// only when the color differs.
func (s *Scene) SetBoardBackground(c document.Color) bool {
	return editSetting(s, ActionChangeBoardBg, boardBackgroundSetting, c)
}

// SetBoardPen sets the board pen. The change is recorded only when the
// color differs.
func (s *Scene) SetBoardPen(c document.Color) bool {
	return editSetting(s, ActionChangeBoardPen, boardPenSetting, c)
}

func editSetting[T comparable](s *Scene, act Action, st setting[T], v T) bool {
	current := st.get(s)
	if current == v {
		return false
	}
	s.record(SettingEdit[T]{Act: act, Value: current, setting: st})
	st.set(s, v)
	return true
}

// SetTextDefaults replaces the text style new text blocks start from. In
// board mode the change is undoable.
func (s *Scene) SetTextDefaults(tp document.TextProperties) {
	current := s.textDefaults()
	if current.Equal(tp.Style()) {
		return
	}
	if s.board.Enabled {
		s.record(SettingEdit[document.TextProperties]{Act: ActionChangeTextDefaults, Value: current.Clone(), setting: boardTextSetting})
	}
	s.setTextDefaults(tp)
}
