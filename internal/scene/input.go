package scene

import (
	"log/slog"
	"math"
	"strings"

	"github.com/inamate/annotator/internal/document"
	"github.com/inamate/annotator/internal/geometry"
	"github.com/inamate/annotator/internal/query"
	"github.com/inamate/annotator/internal/transform"
)

// Modifiers is the set of modifier keys held during a gesture.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

// Has reports whether every modifier in f is held.
func (m Modifiers) Has(f Modifiers) bool { return m&f == f }

// Only reports whether exactly the modifiers in f are held.
func (m Modifiers) Only(f Modifiers) bool { return m == f }

// Key identifies a key by its KeyboardEvent.key name. Letters are lower
// case; digits and "+", "=", "-" are themselves.
type Key string

const (
	KeyEscape    Key = "Escape"
	KeyDelete    Key = "Delete"
	KeyBackspace Key = "Backspace"
	KeyLeft      Key = "ArrowLeft"
	KeyRight     Key = "ArrowRight"
	KeyUp        Key = "ArrowUp"
	KeyDown      Key = "ArrowDown"
)

// ParseKey normalizes a key name. Single letters are lower cased.
func ParseKey(name string) Key {
	if len(name) == 1 {
		return Key(strings.ToLower(name))
	}
	return Key(name)
}

func (k Key) digit() (int, bool) {
	if len(k) == 1 && k[0] >= '0' && k[0] <= '9' {
		return int(k[0] - '0'), true
	}
	return 0, false
}

var toolKeys = map[Key]Tool{
	"r": document.KindRect,
	"e": document.KindEllipse,
	"t": document.KindTriangle,
	"l": document.KindLine,
	"a": document.KindArrow,
	"p": document.KindPolygon,
	"m": document.KindLinePoint,
	"b": document.KindBrush,
	"x": document.KindText,
}

// State is the phase of the pointer gesture in progress.
type State uint8

const (
	StateIdle       State = iota
	StateDrawing          // preview shape follows the pointer
	StateCollecting       // polygon or line_point clicks
	StateTextDrag         // text tool drag, no preview
	StateDragging
	StateResizing
)

var stateNames = [...]string{"idle", "drawing", "collecting", "text_drag", "dragging", "resizing"}

func (st State) String() string {
	if int(st) < len(stateNames) {
		return stateNames[st]
	}
	return "unknown"
}

const (
	moveThreshold    = 2.0 // manhattan
	resizeTolerance  = 0.5
	brushStepSq      = 4.0
	closeReachFactor = 1.5
	nudgeStep        = 1.0
	nudgeStepShift   = 10.0
	scaleStep        = 1.02
	scaleStepShift   = 1.1
	rotateStepCtrl   = 90.0
	rotateStepAlt    = 1.0
)

type origin struct {
	index int
	id    string
	geom  document.Geometry
}

type gesture struct {
	state   State
	start   geometry.Point
	preview document.Shape
	points  []geometry.Point
	origins []origin
	handle  document.Handle
}

// State returns the current gesture phase.
func (s *Scene) State() State { return s.gesture.state }

// Preview returns the shape being drawn, if any.
func (s *Scene) Preview() (document.Shape, bool) {
	if s.gesture.state != StateDrawing {
		return document.Shape{}, false
	}
	return s.gesture.preview.Clone(), true
}

// PendingPoints returns the points collected so far for a polygon or
// line_point.
func (s *Scene) PendingPoints() []geometry.Point {
	if s.gesture.state != StateCollecting {
		return nil
	}
	return append([]geometry.Point(nil), s.gesture.points...)
}

// Pointer returns the last pointer position seen.
func (s *Scene) Pointer() geometry.Point { return s.pointer }

// SetTool switches the drawing tool. Any gesture in progress is cancelled.
func (s *Scene) SetTool(t Tool) bool {
	if !t.Valid() || t == s.tool {
		return false
	}
	s.Cancel()
	s.tool = t
	slog.Debug("tool changed", "tool", t)
	return true
}

// Press handles a primary button press at p.
//
// A press on a handle of a selected shape starts a resize. A press on a
// shape applies a quick action (normal mode only), toggles it in the
// selection with ctrl, or selects it and starts dragging the selection.
// A press on empty space clears the selection and starts drawing with the
// current tool.
func (s *Scene) Press(p geometry.Point, mods Modifiers) {
	s.pointer = p

	if s.gesture.state == StateCollecting {
		s.addPolyPoint(p)
		return
	}
	if s.gesture.state != StateIdle {
		s.Cancel()
	}

	selected := s.indicesOf(s.selection)
	candidates := make([]document.Shape, len(selected))
	for n, i := range selected {
		candidates[n] = s.shapes[i]
	}
	if hit, ok := query.HandleAt(candidates, p, s.handleSize); ok {
		i := selected[hit.Index]
		s.selection = []string{s.shapes[i].ID}
		s.gesture = gesture{
			state:   StateResizing,
			start:   p,
			handle:  hit.Handle,
			origins: []origin{{index: i, id: s.shapes[i].ID, geom: s.shapes[i].Geometry.Clone()}},
		}
		return
	}

	if i := query.TopShapeAt(s.shapes, p); i >= 0 {
		s.pressShape(i, p, mods)
		return
	}

	s.ClearSelection()
	s.startDrawing(p)
}

func (s *Scene) pressShape(i int, p geometry.Point, mods Modifiers) {
	id := s.shapes[i].ID
	ids := []string{id}

	if !s.board.Enabled {
		switch {
		case mods.Has(ModCtrl | ModAlt | ModShift):
			s.SetShapeAlpha(ids, s.defaults.Alpha)
			return
		case mods.Has(ModCtrl | ModAlt):
			s.SetColor(ids, s.defaults.Pen)
			return
		case s.fillHeld:
			s.ToggleFill(ids)
			return
		}
	}

	if mods.Has(ModCtrl) {
		s.ToggleSelected(id)
		return
	}
	if !s.IsSelected(id) {
		s.selection = []string{id}
	}
	g := gesture{state: StateDragging, start: p}
	for _, j := range s.indicesOf(s.selection) {
		g.origins = append(g.origins, origin{index: j, id: s.shapes[j].ID, geom: s.shapes[j].Geometry.Clone()})
	}
	s.gesture = g
}

func (s *Scene) startDrawing(p geometry.Point) {
	style := s.style()
	g := gesture{state: StateDrawing, start: p}

	switch s.tool {
	case document.KindRect, document.KindEllipse:
		g.preview = document.NewShape(s.tool, document.RectGeometry(geometry.Rect{X: p.X, Y: p.Y}), style)
	case document.KindLine, document.KindArrow:
		style.Filled = false
		g.preview = document.NewShape(s.tool, document.PointsGeometry([]geometry.Point{p, p}), style)
	case document.KindTriangle:
		g.preview = document.NewShape(s.tool, document.PointsGeometry([]geometry.Point{p, p, p}), style)
	case document.KindBrush:
		style.Filled = false
		style.LineThickness = s.defaults.BrushSize
		style.LineStyle = document.LineSolid
		g.preview = document.NewShape(s.tool, document.PointsGeometry([]geometry.Point{p}), style)
	case document.KindPolygon, document.KindLinePoint:
		g = gesture{state: StateCollecting, start: p, points: []geometry.Point{p}}
	case document.KindText:
		g.state = StateTextDrag
	default:
		return
	}
	s.gesture = g
}

// addPolyPoint appends a polygon or line_point vertex. A polygon with at
// least three points closes when p is near its first point.
func (s *Scene) addPolyPoint(p geometry.Point) {
	pts := s.gesture.points
	if s.tool == document.KindPolygon && len(pts) >= 3 {
		reach := s.handleSize * closeReachFactor
		if p.DistSq(pts[0]) < reach*reach {
			s.FinishPoly()
			return
		}
	}
	s.gesture.points = append(pts, p)
}

// FinishPoly commits the collected polygon or line_point. A repeated last
// polygon point is dropped first. Too few points discard the shape. It
// returns the new shape id, or "".
func (s *Scene) FinishPoly() string {
	if s.gesture.state != StateCollecting {
		return ""
	}
	pts := s.gesture.points
	s.resetGesture()

	if s.tool == document.KindPolygon && len(pts) >= 2 && pts[len(pts)-1] == pts[len(pts)-2] {
		pts = pts[:len(pts)-1]
	}
	style := s.style()
	style.Filled = style.Filled && s.tool == document.KindPolygon
	id, err := s.Draw(s.tool, document.PointsGeometry(pts), style)
	if err != nil {
		return ""
	}
	return id
}

// Move handles pointer motion. Shift locks aspect during a corner resize,
// squares rects and ellipses and snaps lines to 45 degrees.
func (s *Scene) Move(p geometry.Point, mods Modifiers) {
	s.pointer = p
	g := &s.gesture
	shift := mods.Has(ModShift)

	switch g.state {
	case StateResizing:
		o := g.origins[0]
		at, err := s.resolve(o.index, o.id)
		if err != nil {
			slog.Warn("resized shape vanished", "error", err)
			s.resetGesture()
			return
		}
		next, err := transform.Resize(o.geom, s.shapes[at].Rotation, g.handle, p, shift)
		if err != nil {
			slog.Warn("resize failed", "handle", g.handle, "error", err)
			return
		}
		s.shapes[at].Geometry = next

	case StateDragging:
		d := p.Sub(g.start)
		for _, o := range g.origins {
			if at, err := s.resolve(o.index, o.id); err == nil {
				s.shapes[at].Geometry = transform.Translate(o.geom, d)
			}
		}

	case StateDrawing:
		switch g.preview.Kind {
		case document.KindRect, document.KindEllipse:
			g.preview.Geometry = document.RectGeometry(transform.RectFromDrag(g.start, p, shift))
		case document.KindLine, document.KindArrow:
			g.preview.Geometry = document.PointsGeometry([]geometry.Point{g.start, transform.LineFromDrag(g.start, p, shift)})
		case document.KindTriangle:
			g.preview.Geometry = document.PointsGeometry(transform.TriangleFromDrag(g.start, p))
		case document.KindBrush:
			pts := g.preview.Geometry.Points
			if p.DistSq(pts[len(pts)-1]) > brushStepSq {
				g.preview.Geometry.Points = append(pts, p)
			}
		}
	}
}

// Release handles the primary button release. A resize or drag is
// recorded when it changed something noticeably; a drawing is committed
// when valid; the text tool raises a TextRequest.
func (s *Scene) Release(p geometry.Point, mods Modifiers) {
	s.Move(p, mods)
	g := s.gesture

	switch g.state {
	case StateResizing:
		s.resetGesture()
		o := g.origins[0]
		at, err := s.resolve(o.index, o.id)
		if err != nil {
			return
		}
		if !geometryMoved(o.geom, s.shapes[at].Geometry) {
			s.shapes[at].Geometry = o.geom
			return
		}
		s.record(PropertyEdit[document.Geometry]{
			Act:     ActionResize,
			Entries: []Edit[document.Geometry]{{Index: at, ID: o.id, Value: o.geom}},
			field:   geometryField,
		})

	case StateDragging:
		s.resetGesture()
		if p.Sub(g.start).Manhattan() <= moveThreshold {
			s.restore(g.origins)
			return
		}
		var entries []Edit[document.Geometry]
		for _, o := range g.origins {
			if at, err := s.resolve(o.index, o.id); err == nil {
				entries = append(entries, Edit[document.Geometry]{Index: at, ID: o.id, Value: o.geom})
			}
		}
		if len(entries) > 0 {
			s.record(PropertyEdit[document.Geometry]{Act: ActionMove, Entries: entries, field: geometryField})
		}

	case StateDrawing:
		s.resetGesture()
		if err := Validate(g.preview.Kind, g.preview.Geometry); err != nil {
			slog.Debug("discarding drawing", "kind", g.preview.Kind, "error", err)
			return
		}
		s.commit(g.preview)

	case StateTextDrag:
		s.resetGesture()
		s.requestNewText(g.start, geometry.RectFromPoints(g.start, p))
	}
}

// geometryMoved applies the resize tolerance: any rect coordinate off by
// more than half a unit, any vertex moved more than half a unit, or a
// different vertex count.
func geometryMoved(before, after document.Geometry) bool {
	if before.Type != after.Type {
		return true
	}
	switch before.Type {
	case document.GeometryRect:
		a, b := before.Rect, after.Rect
		return math.Abs(a.X-b.X) > resizeTolerance || math.Abs(a.Y-b.Y) > resizeTolerance ||
			math.Abs(a.Width-b.Width) > resizeTolerance || math.Abs(a.Height-b.Height) > resizeTolerance
	case document.GeometryPoints:
		if len(before.Points) != len(after.Points) {
			return true
		}
		for i := range before.Points {
			if before.Points[i].DistSq(after.Points[i]) > resizeTolerance*resizeTolerance {
				return true
			}
		}
	}
	return false
}

// DoubleClick finishes a polygon or line_point, asks for an edit of the
// text block under p, or deletes the shape under p.
func (s *Scene) DoubleClick(p geometry.Point, _ Modifiers) {
	s.pointer = p
	if s.gesture.state == StateCollecting {
		s.FinishPoly()
		return
	}
	if s.gesture.state != StateIdle {
		s.Cancel()
	}
	i := query.TopShapeAt(s.shapes, p)
	if i < 0 {
		return
	}
	if s.shapes[i].Kind == document.KindText {
		s.requestEditText(s.shapes[i])
		return
	}
	s.DeleteAt(p)
}

// SecondaryPress finishes a polygon or line_point; otherwise it drops the
// selection and whatever gesture was in progress.
func (s *Scene) SecondaryPress(p geometry.Point) {
	s.pointer = p
	if s.gesture.state == StateCollecting {
		s.FinishPoly()
		return
	}
	s.Cancel()
	s.ClearSelection()
}

// Cancel abandons the gesture in progress: collected points and previews
// are dropped, dragged or resized shapes go back to where they started.
// It reports whether there was anything to cancel.
func (s *Scene) Cancel() bool {
	g := s.gesture
	if g.state == StateIdle {
		return false
	}
	if g.state == StateDragging || g.state == StateResizing {
		s.restore(g.origins)
	}
	s.resetGesture()
	slog.Debug("gesture cancelled", "state", g.state)
	return true
}

func (s *Scene) restore(origins []origin) {
	for _, o := range origins {
		if at, err := s.resolve(o.index, o.id); err == nil {
			s.shapes[at].Geometry = o.geom.Clone()
		}
	}
}

// resetGesture forgets the gesture without restoring anything.
func (s *Scene) resetGesture() {
	s.gesture = gesture{}
}

// KeyUp tracks keys held for quick actions.
func (s *Scene) KeyUp(k Key) {
	if k == "f" {
		s.fillHeld = false
	}
}

// HistoryStep reports whether k with mods is an undo or redo shortcut:
// ctrl+z undoes, ctrl+shift+z and ctrl+y redo.
func (k Key) HistoryStep(mods Modifiers) (redo, ok bool) {
	if !mods.Has(ModCtrl) {
		return false, false
	}
	switch k {
	case "z":
		return mods.Has(ModShift), true
	case "y":
		return true, true
	}
	return false, false
}

// KeyDown handles a key press and reports whether it was consumed.
func (s *Scene) KeyDown(k Key, mods Modifiers) bool {
	if k == "f" && mods == 0 {
		s.fillHeld = true
		return false
	}
	if k == KeyEscape {
		return s.Cancel()
	}

	if mods.Only(ModCtrl) {
		switch k {
		case "c":
			s.Copy(s.selection)
			return true
		case "v":
			s.Paste(s.pointer)
			return true
		}
	}
	if redo, ok := k.HistoryStep(mods); ok {
		if redo {
			s.Redo()
		} else {
			s.Undo()
		}
		return true
	}

	if n, ok := k.digit(); ok {
		if s.digitKey(n, mods) {
			return true
		}
	}

	if mods == 0 {
		if t, ok := toolKeys[k]; ok {
			return s.SetTool(t)
		}
	}

	if k == "c" && mods.Only(ModShift) {
		s.Clear()
		return true
	}
	if k == KeyDelete || k == KeyBackspace {
		return s.DeleteSelected() > 0
	}
	if len(s.selection) > 0 {
		return s.transformKey(k, mods)
	}
	return false
}

// digitKey applies palette shortcuts. In board mode ctrl+digit sets the
// background alpha and alt+digit its color.
func (s *Scene) digitKey(n int, mods Modifiers) bool {
	c := document.Palette[n]
	switch {
	case s.board.Enabled && mods.Only(ModCtrl):
		bg := s.board.Background.WithAlpha(boardAlpha(n))
		s.SetBoardBackground(bg)
		return true
	case s.board.Enabled && mods.Only(ModAlt):
		s.SetBoardBackground(c.WithAlpha(s.board.Background.A))
		return true
	case mods != 0:
		return false
	case len(s.selection) > 0:
		s.SetColor(s.selection, c)
	case s.board.Enabled:
		s.SetBoardPen(c)
	default:
		s.SetPenColor(c)
	}
	return true
}

// boardAlpha maps digit 0..9 onto 1..255 so the board never becomes fully
// transparent to input.
func boardAlpha(n int) uint8 {
	if n <= 0 {
		return 1
	}
	a := int(math.Round(float64(n)/9*254)) + 1
	return uint8(min(max(a, 1), 255))
}

func (s *Scene) transformKey(k Key, mods Modifiers) bool {
	ctrl, alt, shift := mods.Has(ModCtrl), mods.Has(ModAlt), mods.Has(ModShift)
	ids := s.selection

	if !ctrl && !alt {
		step, factor := nudgeStep, scaleStep
		if shift {
			step, factor = nudgeStepShift, scaleStepShift
		}
		switch k {
		case KeyLeft:
			s.Translate(ids, geometry.Pt(-step, 0))
		case KeyRight:
			s.Translate(ids, geometry.Pt(step, 0))
		case KeyUp:
			s.Translate(ids, geometry.Pt(0, -step))
		case KeyDown:
			s.Translate(ids, geometry.Pt(0, step))
		case "+", "=":
			s.Scale(ids, factor)
		case "-":
			s.Scale(ids, 1/factor)
		default:
			return false
		}
		return true
	}

	var delta float64
	switch {
	case ctrl:
		delta = rotateStepCtrl
	case alt:
		delta = rotateStepAlt
	}
	switch k {
	case KeyLeft:
		s.Rotate(ids, -delta)
	case KeyRight:
		s.Rotate(ids, delta)
	default:
		return false
	}
	return true
}
