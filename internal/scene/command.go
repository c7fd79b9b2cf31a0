package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/inamate/annotator/internal/document"
)

// Action names a user-visible mutation.
type Action string

const (
	ActionDraw                Action = "draw"
	ActionDelete              Action = "delete"
	ActionDeleteSelected      Action = "delete_selected"
	ActionMove                Action = "move"
	ActionResize              Action = "resize"
	ActionRotate              Action = "rotate"
	ActionScale               Action = "scale"
	ActionChangeColor         Action = "change_color"
	ActionChangeAlpha         Action = "change_alpha"
	ActionToggleFill          Action = "toggle_fill"
	ActionChangeLineStyle     Action = "change_line_style"
	ActionChangeLineThickness Action = "change_line_thickness"
	ActionChangeArrowHeadSize Action = "change_arrow_head_size"
	ActionEditText            Action = "edit_text"
	ActionPaste               Action = "paste"
	ActionClear               Action = "clear"
	ActionLoad                Action = "load"
	ActionLoadJoin            Action = "load_join"
	ActionChangeBoardBg       Action = "change_board_bg"
	ActionChangeBoardPen      Action = "change_board_pen"
	ActionChangeTextDefaults  Action = "change_board_text_defaults"
)

// Command is a recorded, reversible mutation. The set of implementations
// is closed: ShapesAdded, ShapesRemoved, ListSwap, PropertyEdit and
// SettingEdit.
type Command interface {
	Action() Action
	// revert applies the stored inverse data to s and returns the command
	// that undoes the revert.
	revert(s *Scene) (Command, []error)
}

// Entry is one shape at the index it held when the command was recorded.
type Entry struct {
	Index int
	Shape document.Shape
}

// ShapesAdded records shapes that were inserted. Reverting removes them.
type ShapesAdded struct {
	Act     Action
	Entries []Entry
}

func (c ShapesAdded) Action() Action { return c.Act }

func (c ShapesAdded) revert(s *Scene) (Command, []error) {
	type target struct {
		at    int
		entry Entry
	}
	var (
		targets []target
		errs    []error
	)
	for _, e := range c.Entries {
		at, err := s.resolve(e.Index, e.Shape.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		// keep the live value so redo reinserts what was actually removed
		targets = append(targets, target{at: at, entry: Entry{Index: e.Index, Shape: s.shapes[at].Clone()}})
	}
	slices.SortFunc(targets, func(a, b target) int { return b.at - a.at })

	removed := make([]Entry, 0, len(targets))
	for _, t := range targets {
		s.shapes = slices.Delete(s.shapes, t.at, t.at+1)
		removed = append(removed, t.entry)
	}
	slices.SortFunc(removed, func(a, b Entry) int { return a.Index - b.Index })
	return ShapesRemoved{Act: c.Act, Entries: removed}, errs
}

// ShapesRemoved records shapes that were taken out of the list together
// with their former positions. Reverting reinserts them in ascending index
// order so every shape lands back where it was.
type ShapesRemoved struct {
	Act     Action
	Entries []Entry
}

func (c ShapesRemoved) Action() Action { return c.Act }

func (c ShapesRemoved) revert(s *Scene) (Command, []error) {
	entries := slices.Clone(c.Entries)
	slices.SortStableFunc(entries, func(a, b Entry) int { return a.Index - b.Index })

	var errs []error
	added := make([]Entry, 0, len(entries))
	for _, e := range entries {
		at := e.Index
		if at < 0 || at > len(s.shapes) {
			errs = append(errs, fmt.Errorf("%w: reinsert index %d of %d, appending", document.ErrStaleReference, e.Index, len(s.shapes)))
			at = len(s.shapes)
		}
		s.shapes = slices.Insert(s.shapes, at, e.Shape.Clone())
		added = append(added, Entry{Index: at, Shape: e.Shape.Clone()})
	}
	return ShapesAdded{Act: c.Act, Entries: added}, errs
}

// ListSwap records the whole shape list from before a bulk change.
type ListSwap struct {
	Act    Action
	Shapes []document.Shape
}

func (c ListSwap) Action() Action { return c.Act }

func (c ListSwap) revert(s *Scene) (Command, []error) {
	current := s.shapes
	s.shapes = cloneShapes(c.Shapes)
	return ListSwap{Act: c.Act, Shapes: current}, nil
}

// Edit is one shape's value of an edited field, keyed by its index at the
// time of recording and by identity.
type Edit[T any] struct {
	Index int
	ID    string
	Value T
}

// field reads and writes one property of a shape. Implementations copy so
// that a value never aliases shape memory.
type field[T any] struct {
	get func(*document.Shape) T
	set func(*document.Shape, T)
}

// PropertyEdit records the values a field held before an edit.
type PropertyEdit[T any] struct {
	Act     Action
	Entries []Edit[T]
	field   field[T]
}

func (c PropertyEdit[T]) Action() Action { return c.Act }

// revert swaps each stored value with the shape's current one, so the
// returned command carries the values it replaced.
func (c PropertyEdit[T]) revert(s *Scene) (Command, []error) {
	var errs []error
	swapped := make([]Edit[T], 0, len(c.Entries))
	for _, e := range c.Entries {
		at, err := s.resolve(e.Index, e.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		sh := &s.shapes[at]
		current := c.field.get(sh)
		c.field.set(sh, e.Value)
		swapped = append(swapped, Edit[T]{Index: at, ID: e.ID, Value: current})
	}
	return PropertyEdit[T]{Act: c.Act, Entries: swapped, field: c.field}, errs
}

// setting reads and writes one piece of scene state outside the shape list.
type setting[T any] struct {
	get func(*Scene) T
	set func(*Scene, T)
}

// SettingEdit records the previous value of a board setting.
type SettingEdit[T any] struct {
	Act     Action
	Value   T
	setting setting[T]
}

func (c SettingEdit[T]) Action() Action { return c.Act }

func (c SettingEdit[T]) revert(s *Scene) (Command, []error) {
	current := c.setting.get(s)
	c.setting.set(s, c.Value)
	return SettingEdit[T]{Act: c.Act, Value: current, setting: c.setting}, nil
}

var (
	colorField = field[document.Color]{
		get: func(s *document.Shape) document.Color { return s.Color },
		set: func(s *document.Shape, v document.Color) { s.Color = v },
	}
	alphaField = field[uint8]{
		get: func(s *document.Shape) uint8 { return s.Alpha },
		set: func(s *document.Shape, v uint8) { s.Alpha = v },
	}
	filledField = field[bool]{
		get: func(s *document.Shape) bool { return s.Filled },
		set: func(s *document.Shape, v bool) { s.Filled = v },
	}
	lineStyleField = field[document.LineStyle]{
		get: func(s *document.Shape) document.LineStyle { return s.LineStyle },
		set: func(s *document.Shape, v document.LineStyle) { s.LineStyle = v },
	}
	thicknessField = field[int]{
		get: func(s *document.Shape) int { return s.LineThickness },
		set: func(s *document.Shape, v int) { s.LineThickness = v },
	}
	arrowHeadField = field[int]{
		get: func(s *document.Shape) int { return s.ArrowHeadSize },
		set: func(s *document.Shape, v int) { s.ArrowHeadSize = v },
	}
	rotationField = field[float64]{
		get: func(s *document.Shape) float64 { return s.Rotation },
		set: func(s *document.Shape, v float64) { s.Rotation = v },
	}
	geometryField = field[document.Geometry]{
		get: func(s *document.Shape) document.Geometry { return s.Geometry.Clone() },
		set: func(s *document.Shape, v document.Geometry) { s.Geometry = v.Clone() },
	}
	textField = field[TextState]{
		get: func(s *document.Shape) TextState { return textStateOf(s) },
		set: func(s *document.Shape, v TextState) { v.applyTo(s) },
	}
)

// TextState is what edit_text restores: the text block and the rect it
// was measured into.
type TextState struct {
	Properties *document.TextProperties
	Geometry   document.Geometry
}

func textStateOf(s *document.Shape) TextState {
	st := TextState{Geometry: s.Geometry.Clone()}
	if s.Text != nil {
		tp := s.Text.Clone()
		st.Properties = &tp
	}
	return st
}

func (st TextState) applyTo(s *document.Shape) {
	s.Geometry = st.Geometry.Clone()
	s.Text = nil
	if st.Properties != nil {
		tp := st.Properties.Clone()
		s.Text = &tp
	}
}

var (
	boardBackgroundSetting = setting[document.Color]{
		get: func(s *Scene) document.Color { return s.board.Background },
		set: func(s *Scene, v document.Color) { s.board.Background = v },
	}
	boardPenSetting = setting[document.Color]{
		get: func(s *Scene) document.Color { return s.board.Pen },
		set: func(s *Scene, v document.Color) { s.board.Pen = v },
	}
	// text defaults edits are only recorded in board mode, so the
	// setting is always the board's
	boardTextSetting = setting[document.TextProperties]{
		get: func(s *Scene) document.TextProperties { return s.board.Text.Clone() },
		set: func(s *Scene, v document.TextProperties) { s.board.Text = v.Style() },
	}
)

// History holds the undo and redo stacks. The undo stack is bounded; the
// oldest command is dropped when it overflows.
type History struct {
	undo  []Command
	redo  []Command
	limit int
}

// NewHistory creates a history keeping at most limit undo steps.
func NewHistory(limit int) History {
	return History{limit: max(limit, 1)}
}

// Push records a new command and clears the redo stack.
func (h *History) Push(c Command) {
	h.pushUndo(c)
	h.redo = nil
}

func (h *History) pushUndo(c Command) {
	h.undo = append(h.undo, c)
	if over := len(h.undo) - h.limit; over > 0 {
		h.undo = slices.Delete(h.undo, 0, over)
	}
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoLen returns the number of undoable commands.
func (h *History) UndoLen() int { return len(h.undo) }

// RedoLen returns the number of redoable commands.
func (h *History) RedoLen() int { return len(h.redo) }

// Peek returns the command the next Undo would revert.
func (h *History) Peek() (Command, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	return h.undo[len(h.undo)-1], true
}

// Result reports the outcome of Undo or Redo. Errors lists the sub-edits
// that were skipped; the rest of the command was still applied.
type Result struct {
	Action  Action
	Applied bool
	Errors  []error
}

// Err joins the skipped sub-edits into one error.
func (r Result) Err() error {
	return errors.Join(r.Errors...)
}

func cloneShapes(shapes []document.Shape) []document.Shape {
	out := make([]document.Shape, len(shapes))
	for i, sh := range shapes {
		out[i] = sh.Clone()
	}
	return out
}

func logSkipped(op string, c Command, errs []error) {
	for _, err := range errs {
		slog.Warn("skipping stale edit", "op", op, "action", c.Action(), "error", err)
	}
}
