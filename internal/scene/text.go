package scene

import (
	"fmt"
	"log/slog"

	"github.com/inamate/annotator/internal/document"
	"github.com/inamate/annotator/internal/geometry"
)

const minTextDrag = 10.0

// TextRequest asks the text input collaborator for a text block. ShapeID
// is set when an existing block is edited.
type TextRequest struct {
	ShapeID  string
	Origin   geometry.Point
	Initial  document.TextProperties
	HasRect  bool
	DragRect geometry.Rect
}

// TextInput is what the text input collaborator hands back. Cleared is set
// when the user emptied the field with the clear action.
type TextInput struct {
	Properties document.TextProperties
	Cleared    bool
}

// TakeTextRequest returns and forgets the pending text request raised by a
// text tool release or a double click on a text block.
func (s *Scene) TakeTextRequest() (TextRequest, bool) {
	if s.textAsk == nil {
		return TextRequest{}, false
	}
	req := *s.textAsk
	s.textAsk = nil
	return req, true
}

func (s *Scene) requestNewText(origin geometry.Point, drag geometry.Rect) {
	req := TextRequest{Origin: origin, Initial: s.textDefaults().Clone()}
	req.Initial.Color = s.style().Color
	if drag.Width >= minTextDrag && drag.Height >= minTextDrag {
		req.HasRect = true
		req.DragRect = drag
	}
	s.textAsk = &req
}

func (s *Scene) requestEditText(sh document.Shape) {
	initial := s.textDefaults().Clone()
	if sh.Text != nil {
		initial = sh.Text.Clone()
	}
	s.textAsk = &TextRequest{ShapeID: sh.ID, Origin: sh.Geometry.Rect.TopLeft(), Initial: initial}
}

func (s *Scene) measure(tp document.TextProperties) (float64, float64) {
	if s.measurer == nil {
		return 0, 0
	}
	return s.measurer.Measure(tp)
}

// CreateText answers a new-text request. The text style becomes the new
// default. A cleared or empty text creates nothing. The block is sized to
// the measured text plus padding, at the drag rect's corner if there was
// one.
func (s *Scene) CreateText(req TextRequest, in TextInput) (string, error) {
	if in.Cleared {
		return "", nil
	}
	s.SetTextDefaults(in.Properties)
	if in.Properties.Text == "" {
		return "", nil
	}

	w, h := s.measure(in.Properties)
	origin := req.Origin
	if req.HasRect {
		origin = req.DragRect.Normalized().TopLeft()
	}
	r := geometry.Rect{X: origin.X, Y: origin.Y, Width: max(w+10, 50), Height: max(h+6, 20)}

	sh := document.NewShape(document.KindText, document.RectGeometry(r), document.Style{
		Color:         in.Properties.Color,
		Alpha:         s.defaults.Alpha,
		LineThickness: 1,
		LineStyle:     document.LineSolid,
	})
	tp := in.Properties.Clone()
	sh.Text = &tp
	s.commit(sh)
	return sh.ID, nil
}

// EditText answers an edit request. Clearing the text deletes the block;
// an empty text without clearing only updates the defaults. Otherwise the
// block takes the new properties and is resized around its top-left.
func (s *Scene) EditText(id string, in TextInput) error {
	i := s.indexOf(id)
	if i < 0 || s.shapes[i].Kind != document.KindText {
		return fmt.Errorf("%w: no text block %q", document.ErrStaleReference, id)
	}
	if in.Cleared && in.Properties.Text == "" {
		s.remove(ActionDelete, []int{i})
		return nil
	}
	s.SetTextDefaults(in.Properties)
	if in.Properties.Text == "" {
		slog.Debug("empty text edit, block unchanged", "id", id)
		return nil
	}

	sh := s.shapes[i]
	w, h := s.measure(in.Properties)
	tl := sh.Geometry.Rect.TopLeft()
	tp := in.Properties.Clone()
	next := TextState{
		Properties: &tp,
		Geometry:   document.RectGeometry(geometry.Rect{X: tl.X, Y: tl.Y, Width: max(w+10, 30), Height: max(h+6, 20)}),
	}
	editShapes(s, ActionEditText, textField, []string{id}, func(_ *document.Shape, _ TextState) (TextState, bool) {
		return next, true
	})
	return nil
}
