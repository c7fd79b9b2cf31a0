// Package scene owns the ordered shape list of an annotation session along
// with its selection, clipboard, style defaults and undo/redo history.
// Every mutation goes through a Scene method and is recorded as a Command.
//
// A Scene is not safe for concurrent use. Callers feed it one input at a
// time and read snapshots back for rendering.
package scene

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/inamate/annotator/internal/document"
	"github.com/inamate/annotator/internal/geometry"
	"github.com/inamate/annotator/internal/query"
)

const DefaultHistoryLimit = 100

// TextMeasurer returns the size of the laid out text block.
type TextMeasurer interface {
	Measure(tp document.TextProperties) (width, height float64)
}

// Options configures a new Scene. Zero values pick the defaults.
type Options struct {
	HistoryLimit int
	HandleSize   float64
	Defaults     *Defaults
	Measurer     TextMeasurer
}

// Scene is the document plus session state around it.
type Scene struct {
	shapes    []document.Shape
	selection []string
	clipboard []document.Shape
	history   History

	defaults Defaults
	board    Board
	tool     Tool

	handleSize float64
	measurer   TextMeasurer

	gesture  gesture
	pointer  geometry.Point
	fillHeld bool
	textAsk  *TextRequest
}

// New creates an empty scene.
func New(opts Options) *Scene {
	d := BuiltinDefaults()
	if opts.Defaults != nil {
		d = opts.Defaults.normalized()
	}
	limit := opts.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	handle := opts.HandleSize
	if handle <= 0 {
		handle = query.DefaultHandleSize
	}
	return &Scene{
		history:    NewHistory(limit),
		defaults:   d,
		board:      Board{Background: d.BoardBackground, Pen: d.BoardPen, Text: d.BoardText.Clone()},
		tool:       document.KindRect,
		handleSize: handle,
		measurer:   opts.Measurer,
	}
}

// --- Snapshots for renderers ---

// Shapes returns a copy of the shape list in paint order.
func (s *Scene) Shapes() []document.Shape {
	return cloneShapes(s.shapes)
}

// Len returns the number of shapes.
func (s *Scene) Len() int { return len(s.shapes) }

// Shape returns a copy of the shape with the given id.
func (s *Scene) Shape(id string) (document.Shape, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return document.Shape{}, false
	}
	return s.shapes[i].Clone(), true
}

// Selection returns the selected ids in selection order.
func (s *Scene) Selection() []string {
	return slices.Clone(s.selection)
}

// IsSelected reports whether id is selected.
func (s *Scene) IsSelected(id string) bool {
	return slices.Contains(s.selection, id)
}

// SelectedShapes returns copies of the selected shapes in paint order.
func (s *Scene) SelectedShapes() []document.Shape {
	var out []document.Shape
	for _, sh := range s.shapes {
		if s.IsSelected(sh.ID) {
			out = append(out, sh.Clone())
		}
	}
	return out
}

// Clipboard returns copies of the shapes last copied.
func (s *Scene) Clipboard() []document.Shape {
	return cloneShapes(s.clipboard)
}

func (s *Scene) Defaults() Defaults { return s.defaults }
func (s *Scene) Board() Board       { return s.board }
func (s *Scene) Tool() Tool         { return s.tool }
func (s *Scene) HandleSize() float64 {
	return s.handleSize
}

func (s *Scene) CanUndo() bool { return s.history.CanUndo() }
func (s *Scene) CanRedo() bool { return s.history.CanRedo() }

// History exposes the command stacks for inspection.
func (s *Scene) History() *History { return &s.history }

// --- Selection ---

// Select replaces the selection with the ids that exist in the scene.
func (s *Scene) Select(ids ...string) {
	s.selection = s.selection[:0]
	for _, id := range ids {
		if s.indexOf(id) >= 0 && !slices.Contains(s.selection, id) {
			s.selection = append(s.selection, id)
		}
	}
}

// SelectAll selects every shape.
func (s *Scene) SelectAll() {
	s.selection = s.selection[:0]
	for _, sh := range s.shapes {
		s.selection = append(s.selection, sh.ID)
	}
}

// ClearSelection empties the selection.
func (s *Scene) ClearSelection() {
	s.selection = nil
}

// ToggleSelected adds id to the selection or removes it.
func (s *Scene) ToggleSelected(id string) {
	if i := slices.Index(s.selection, id); i >= 0 {
		s.selection = slices.Delete(s.selection, i, i+1)
		return
	}
	if s.indexOf(id) >= 0 {
		s.selection = append(s.selection, id)
	}
}

// SelectAt selects the topmost shape under p. With toggle the shape is
// added to or removed from the selection instead. It returns the id hit,
// or "" when p is on empty space, which clears a non-toggle selection.
func (s *Scene) SelectAt(p geometry.Point, toggle bool) string {
	i := query.TopShapeAt(s.shapes, p)
	if i < 0 {
		if !toggle {
			s.ClearSelection()
		}
		return ""
	}
	id := s.shapes[i].ID
	switch {
	case toggle:
		s.ToggleSelected(id)
	case !s.IsSelected(id):
		s.selection = []string{id}
	}
	return id
}

// pruneSelection drops ids that no longer resolve.
func (s *Scene) pruneSelection() {
	s.selection = slices.DeleteFunc(s.selection, func(id string) bool {
		return s.indexOf(id) < 0
	})
}

// --- Defaults ---

// SetDefaults replaces the style defaults. Board colors already in use
// are kept.
func (s *Scene) SetDefaults(d Defaults) {
	s.defaults = d.normalized()
}

// SetPenColor sets the pen of normal mode. Not undoable.
func (s *Scene) SetPenColor(c document.Color) { s.defaults.Pen = c }

// SetAlpha sets the alpha new shapes and alpha quick actions use.
func (s *Scene) SetAlpha(a uint8) { s.defaults.Alpha = a }

// SetLineThickness sets the stroke width for new shapes, clamped to >= 1.
func (s *Scene) SetLineThickness(t int) {
	if t < 1 {
		slog.Warn("clamping line thickness", "value", t)
	}
	s.defaults.LineThickness = max(t, 1)
}

// SetLineStyle sets the stroke style for new shapes.
func (s *Scene) SetLineStyle(ls document.LineStyle) {
	if !ls.Valid() {
		slog.Warn("unknown line style, using solid", "value", int(ls))
		ls = document.LineSolid
	}
	s.defaults.LineStyle = ls
}

// SetFilled sets whether new closed shapes are filled.
func (s *Scene) SetFilled(f bool) { s.defaults.Filled = f }

// SetBrushSize sets the brush stroke width, clamped to >= 1.
func (s *Scene) SetBrushSize(n int) { s.defaults.BrushSize = max(n, 1) }

// SetArrowHeadSize sets the head size for new arrows.
func (s *Scene) SetArrowHeadSize(n int) {
	if n <= 0 {
		n = document.DefaultArrowHeadSize
	}
	s.defaults.ArrowHeadSize = n
}

// SetBoardMode switches board mode on or off. Any gesture in progress is
// cancelled.
func (s *Scene) SetBoardMode(on bool) {
	s.Cancel()
	s.board.Enabled = on
}

// style is the style a drawing started now gets.
func (s *Scene) style() document.Style {
	pen := s.defaults.Pen
	if s.board.Enabled {
		pen = s.board.Pen
	}
	return document.Style{
		Color:         pen,
		Filled:        s.defaults.Filled,
		Alpha:         s.defaults.Alpha,
		LineThickness: s.defaults.LineThickness,
		LineStyle:     s.defaults.LineStyle,
		ArrowHeadSize: s.defaults.ArrowHeadSize,
	}
}

func (s *Scene) textDefaults() document.TextProperties {
	if s.board.Enabled {
		return s.board.Text
	}
	return s.defaults.Text
}

func (s *Scene) setTextDefaults(tp document.TextProperties) {
	tp = tp.Style()
	if s.board.Enabled {
		s.board.Text = tp
		return
	}
	s.defaults.Text = tp
}

// --- Index resolution ---

func (s *Scene) indexOf(id string) int {
	return slices.IndexFunc(s.shapes, func(sh document.Shape) bool { return sh.ID == id })
}

// resolve maps a recorded (index, id) pair to the shape's current index.
// The recorded index is trusted when it still holds the same shape;
// otherwise the id is looked up.
func (s *Scene) resolve(index int, id string) (int, error) {
	if index >= 0 && index < len(s.shapes) && (id == "" || s.shapes[index].ID == id) {
		return index, nil
	}
	if id != "" {
		if i := s.indexOf(id); i >= 0 {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: index %d (id %q) of %d shapes", document.ErrStaleReference, index, id, len(s.shapes))
}

// indicesOf returns the indices of the ids that exist, in paint order.
func (s *Scene) indicesOf(ids []string) []int {
	var out []int
	for i, sh := range s.shapes {
		if slices.Contains(ids, sh.ID) {
			out = append(out, i)
		}
	}
	return out
}

// record pushes a new command.
func (s *Scene) record(c Command) {
	s.history.Push(c)
	slog.Debug("recorded", "action", c.Action(), "undo", s.history.UndoLen())
}

// --- Undo / redo ---

// Undo reverts the most recent command. Stale sub-edits are skipped,
// logged and reported in the result.
func (s *Scene) Undo() Result {
	return s.step(&s.history.undo, &s.history.redo, "undo")
}

// Redo reapplies the most recently undone command.
func (s *Scene) Redo() Result {
	return s.step(&s.history.redo, &s.history.undo, "redo")
}

func (s *Scene) step(from, to *[]Command, op string) Result {
	if len(*from) == 0 {
		return Result{}
	}
	c := (*from)[len(*from)-1]
	*from = (*from)[:len(*from)-1]

	s.Cancel()
	s.ClearSelection()

	mirror, errs := c.revert(s)
	if to == &s.history.undo {
		s.history.pushUndo(mirror)
	} else {
		*to = append(*to, mirror)
	}
	logSkipped(op, c, errs)
	slog.Info(op, "action", c.Action(), "shapes", len(s.shapes))
	return Result{Action: c.Action(), Applied: true, Errors: errs}
}
