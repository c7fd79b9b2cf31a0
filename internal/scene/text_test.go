package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/annotator/internal/document"
	"github.com/inamate/annotator/internal/geometry"
)

func textInput(text string) TextInput {
	tp := document.DefaultTextProperties()
	tp.Text = text
	tp.Color = document.Palette[8]
	return TextInput{Properties: tp}
}

func TestTextToolClickRequestsText(t *testing.T) {
	s := newTestScene(t)
	s.SetTool(document.KindText)
	s.Press(geometry.Pt(20, 30), 0)
	s.Release(geometry.Pt(20, 30), 0)

	req, ok := s.TakeTextRequest()
	require.True(t, ok)
	assert.Empty(t, req.ShapeID)
	assert.False(t, req.HasRect)
	assert.Equal(t, geometry.Pt(20, 30), req.Origin)
	assert.Equal(t, document.Red, req.Initial.Color, "starts with the pen color")

	_, again := s.TakeTextRequest()
	assert.False(t, again)

	id, err := s.CreateText(req, textInput("hi"))
	require.NoError(t, err)
	sh, ok := s.Shape(id)
	require.True(t, ok)
	assert.Equal(t, document.KindText, sh.Kind)
	assert.Equal(t, geometry.Rect{X: 20, Y: 30, Width: 110, Height: 20}, sh.Geometry.Rect)
	assert.Equal(t, document.Palette[8], sh.Color)
	assert.Equal(t, "hi", sh.Text.Text)
	assert.Equal(t, "", s.Defaults().Text.Text, "defaults keep the style only")
	assert.Equal(t, document.Palette[8], s.Defaults().Text.Color)
}

func TestTextDragUsesRectCorner(t *testing.T) {
	s := newTestScene(t)
	s.SetTool(document.KindText)
	s.Press(geometry.Pt(50, 50), 0)
	s.Release(geometry.Pt(20, 20), 0)

	req, ok := s.TakeTextRequest()
	require.True(t, ok)
	assert.True(t, req.HasRect)

	id, err := s.CreateText(req, textInput("hi"))
	require.NoError(t, err)
	sh, _ := s.Shape(id)
	assert.Equal(t, geometry.Pt(20, 20), sh.Geometry.Rect.TopLeft())
}

func TestCreateTextMinimumSize(t *testing.T) {
	s := New(Options{Measurer: fixedMeasurer{w: 5, h: 5}})
	id, err := s.CreateText(TextRequest{Origin: geometry.Pt(0, 0)}, textInput("."))
	require.NoError(t, err)
	sh, _ := s.Shape(id)
	assert.Equal(t, 50.0, sh.Geometry.Rect.Width)
	assert.Equal(t, 20.0, sh.Geometry.Rect.Height)
}

func TestCreateTextClearedOrEmpty(t *testing.T) {
	s := newTestScene(t)
	in := textInput("")
	in.Properties.Size = 30

	id, err := s.CreateText(TextRequest{}, TextInput{Properties: in.Properties, Cleared: true})
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Equal(t, 12, s.Defaults().Text.Size, "cleared leaves defaults alone")

	id, err = s.CreateText(TextRequest{}, in)
	require.NoError(t, err)
	assert.Empty(t, id)
	assert.Zero(t, s.Len())
	assert.Equal(t, 30, s.Defaults().Text.Size)
	assert.False(t, s.CanUndo(), "normal mode text defaults are not undoable")
}

func TestEditTextResizesAndUndoes(t *testing.T) {
	txt := textShape(100, 0, "hello")
	s := newTestScene(t, txt)

	in := textInput("hello world")
	in.Properties.Bold = true
	require.NoError(t, s.EditText(txt.ID, in))

	sh, _ := s.Shape(txt.ID)
	assert.Equal(t, "hello world", sh.Text.Text)
	assert.True(t, sh.Text.Bold)
	assert.Equal(t, geometry.Rect{X: 100, Y: 0, Width: 110, Height: 20}, sh.Geometry.Rect)
	assert.True(t, s.Defaults().Text.Bold)

	c, _ := s.History().Peek()
	assert.Equal(t, ActionEditText, c.Action())
	s.Undo()
	assert.Equal(t, txt, only(t, s))
}

func TestEditTextEmptyKeepsBlock(t *testing.T) {
	txt := textShape(100, 0, "hello")
	s := newTestScene(t, txt)

	require.NoError(t, s.EditText(txt.ID, textInput("")))
	assert.Equal(t, txt, only(t, s))
	assert.False(t, s.CanUndo())
}

func TestEditTextClearedDeletes(t *testing.T) {
	a, txt := rectShape(0, 0, 10, 10), textShape(100, 0, "hello")
	s := newTestScene(t, a, txt)

	in := textInput("")
	in.Cleared = true
	require.NoError(t, s.EditText(txt.ID, in))
	assert.Equal(t, []string{a.ID}, ids(s.Shapes()))

	s.Undo()
	assert.Equal(t, []string{a.ID, txt.ID}, ids(s.Shapes()))
}

func TestEditTextUnknownBlock(t *testing.T) {
	a := rectShape(0, 0, 10, 10)
	s := newTestScene(t, a)
	assert.ErrorIs(t, s.EditText("shape_missing", textInput("x")), document.ErrStaleReference)
	assert.ErrorIs(t, s.EditText(a.ID, textInput("x")), document.ErrStaleReference, "not a text block")
}

func TestBoardTextDefaultsAreUndoable(t *testing.T) {
	s := newTestScene(t)
	s.SetBoardMode(true)

	req := TextRequest{Origin: geometry.Pt(0, 0)}
	in := textInput("note")
	in.Properties.Size = 20
	_, err := s.CreateText(req, in)
	require.NoError(t, err)

	assert.Equal(t, 20, s.Board().Text.Size)
	assert.Equal(t, 12, s.Defaults().Text.Size, "normal defaults untouched")
	assert.Equal(t, 2, s.History().UndoLen())

	s.Undo()
	s.Undo()
	assert.Zero(t, s.Len())
	assert.Equal(t, 14, s.Board().Text.Size)

	s.Redo()
	assert.Equal(t, 20, s.Board().Text.Size)
}

func TestTextRequestInBoardModeUsesBoardStyle(t *testing.T) {
	s := newTestScene(t)
	s.SetBoardMode(true)
	s.SetTool(document.KindText)
	s.Press(geometry.Pt(5, 5), 0)
	s.Release(geometry.Pt(5, 5), 0)

	req, ok := s.TakeTextRequest()
	require.True(t, ok)
	assert.Equal(t, 14, req.Initial.Size)
	assert.Equal(t, document.Black, req.Initial.Color)
}

func TestBoardTextDefaultsUndoAfterLeavingBoard(t *testing.T) {
	s := newTestScene(t)
	s.SetBoardMode(true)
	tp := s.Board().Text
	tp.Size = 40
	tp.Bold = true
	s.SetTextDefaults(tp)
	require.Equal(t, 40, s.Board().Text.Size)

	s.SetBoardMode(false)
	res := s.Undo()
	require.True(t, res.Applied)
	assert.Equal(t, ActionChangeTextDefaults, res.Action)
	assert.Equal(t, 12, s.Defaults().Text.Size, "normal defaults untouched")
	assert.Equal(t, 14, s.Board().Text.Size)
	assert.False(t, s.Board().Text.Bold)

	s.Redo()
	assert.Equal(t, 40, s.Board().Text.Size)
	assert.Equal(t, 12, s.Defaults().Text.Size)
}
