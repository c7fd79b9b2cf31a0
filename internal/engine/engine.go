package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/inamate/annotator/internal/document"
	"github.com/inamate/annotator/internal/geometry"
	"github.com/inamate/annotator/internal/query"
	"github.com/inamate/annotator/internal/scene"
	"github.com/inamate/annotator/internal/typeid"
)

// Engine is the annotation engine that owns the scene and the retained
// scene graph. It processes input from the frontend and returns query
// results as JSON strings.
type Engine struct {
	session string
	scene   *scene.Scene

	// Retained scene graph
	sceneGraph *SceneGraph

	// Text request waiting for the frontend's text input
	textReq *scene.TextRequest

	// Dirty flag - scene graph needs rebuild
	dirty bool
}

// NewEngine creates a new engine instance around an empty scene.
func NewEngine(opts scene.Options) *Engine {
	e := &Engine{
		session:    uuid.NewString(),
		scene:      scene.New(opts),
		sceneGraph: NewSceneGraph(),
		dirty:      true,
	}
	slog.Info("engine started", "session", e.session, "historyLimit", opts.HistoryLimit)
	return e
}

// Session returns the id stamped on this engine's log lines.
func (e *Engine) Session() string { return e.session }

// Scene exposes the underlying scene.
func (e *Engine) Scene() *scene.Scene { return e.scene }

// Mods packs modifier flags.
func Mods(shift, ctrl, alt bool) scene.Modifiers {
	var m scene.Modifiers
	if shift {
		m |= scene.ModShift
	}
	if ctrl {
		m |= scene.ModCtrl
	}
	if alt {
		m |= scene.ModAlt
	}
	return m
}

// --- Commands (frontend → backend) ---

// LoadScene decodes a scene file and replaces the scene with it, or appends
// to it when join is set. Bad records are skipped and reported; only a
// document that is not a record array fails.
func (e *Engine) LoadScene(jsonData string, join bool) (document.LoadReport, error) {
	shapes, report, err := document.DecodeScene([]byte(jsonData))
	if err != nil {
		return report, err
	}
	e.scene.Load(shapes, join)
	e.textReq = nil
	e.dirty = true
	if report.Skipped > 0 {
		slog.Warn("scene loaded with skipped records", "session", e.session, "skipped", report.Skipped, "total", report.Total)
	}
	return report, nil
}

// LoadSampleScene loads the built-in sample scene.
func (e *Engine) LoadSampleScene() {
	e.scene.Load(document.NewSampleScene(), false)
	e.textReq = nil
	e.dirty = true
}

// SaveScene encodes the current shapes as a scene file.
func (e *Engine) SaveScene() (string, error) {
	data, err := document.EncodeScene(e.scene.Shapes())
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// PointerDown handles a primary button press.
func (e *Engine) PointerDown(x, y float64, mods scene.Modifiers) {
	e.scene.Press(geometry.Pt(x, y), mods)
	e.dirty = true
}

// PointerMove handles pointer motion.
func (e *Engine) PointerMove(x, y float64, mods scene.Modifiers) {
	e.scene.Move(geometry.Pt(x, y), mods)
	if e.scene.State() == scene.StateDragging || e.scene.State() == scene.StateResizing {
		e.dirty = true
	}
}

// PointerUp handles a primary button release.
func (e *Engine) PointerUp(x, y float64, mods scene.Modifiers) {
	e.scene.Release(geometry.Pt(x, y), mods)
	e.takeTextRequest()
	e.dirty = true
}

// DoubleClick finishes a polygon, edits a text block or deletes a shape.
func (e *Engine) DoubleClick(x, y float64, mods scene.Modifiers) {
	e.scene.DoubleClick(geometry.Pt(x, y), mods)
	e.takeTextRequest()
	e.dirty = true
}

// SecondaryDown handles a secondary button press.
func (e *Engine) SecondaryDown(x, y float64) {
	e.scene.SecondaryPress(geometry.Pt(x, y))
	e.dirty = true
}

// KeyDown handles a key press and reports whether it was consumed.
func (e *Engine) KeyDown(key string, mods scene.Modifiers) bool {
	k := scene.ParseKey(key)
	if redo, ok := k.HistoryStep(mods); ok {
		if redo {
			e.Redo()
		} else {
			e.Undo()
		}
		return true
	}
	used := e.scene.KeyDown(k, mods)
	if used {
		e.dirty = true
	}
	return used
}

// KeyUp handles a key release.
func (e *Engine) KeyUp(key string) {
	e.scene.KeyUp(scene.ParseKey(key))
}

// SetTool switches the drawing tool by kind name.
func (e *Engine) SetTool(name string) error {
	t := scene.Tool(name)
	if !t.Valid() {
		return fmt.Errorf("%w: %q", document.ErrUnknownKind, name)
	}
	e.scene.SetTool(t)
	e.dirty = true
	return nil
}

// SetBoardMode turns board mode on or off.
func (e *Engine) SetBoardMode(on bool) {
	e.scene.SetBoardMode(on)
	e.dirty = true
}

// SetPenColor sets the normal mode pen.
func (e *Engine) SetPenColor(color string) error {
	c, err := document.ParseColor(color)
	if err != nil {
		return err
	}
	e.scene.SetPenColor(c)
	return nil
}

// SetAlpha sets the alpha for new shapes, clamped to 0..255.
func (e *Engine) SetAlpha(a int) {
	e.scene.SetAlpha(clampAlpha(a))
}

func (e *Engine) SetLineThickness(t int) { e.scene.SetLineThickness(t) }
func (e *Engine) SetLineStyle(style int) { e.scene.SetLineStyle(document.LineStyle(style)) }
func (e *Engine) SetFilled(filled bool)  { e.scene.SetFilled(filled) }
func (e *Engine) SetBrushSize(n int)     { e.scene.SetBrushSize(n) }
func (e *Engine) SetArrowHeadSize(n int) { e.scene.SetArrowHeadSize(n) }

// SetSelection replaces the selection. Ids that are not shape ids are
// dropped.
func (e *Engine) SetSelection(ids []string) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if err := typeid.Validate(id, typeid.PrefixShape); err != nil {
			slog.Warn("selection id rejected", "session", e.session, "error", err)
			continue
		}
		valid = append(valid, id)
	}
	e.scene.Select(valid...)
	e.dirty = true
}

// SelectAll selects every shape.
func (e *Engine) SelectAll() {
	e.scene.SelectAll()
	e.dirty = true
}

// ClearSelection empties the selection.
func (e *Engine) ClearSelection() {
	e.scene.ClearSelection()
	e.dirty = true
}

// --- Selection edits ---

// SetSelectionColor recolors the selected shapes.
func (e *Engine) SetSelectionColor(color string) error {
	c, err := document.ParseColor(color)
	if err != nil {
		return err
	}
	e.edited(e.scene.SetColor(e.scene.Selection(), c))
	return nil
}

func (e *Engine) SetSelectionAlpha(a int) {
	e.edited(e.scene.SetShapeAlpha(e.scene.Selection(), clampAlpha(a)))
}

func (e *Engine) ToggleSelectionFill() {
	e.edited(e.scene.ToggleFill(e.scene.Selection()))
}

func (e *Engine) SetSelectionLineStyle(style int) {
	e.edited(e.scene.SetShapeLineStyle(e.scene.Selection(), document.LineStyle(style)))
}

func (e *Engine) SetSelectionLineThickness(t int) {
	e.edited(e.scene.SetShapeLineThickness(e.scene.Selection(), t))
}

func (e *Engine) SetSelectionArrowHeadSize(n int) {
	e.edited(e.scene.SetShapeArrowHeadSize(e.scene.Selection(), n))
}

// DeleteSelected removes the selected shapes.
func (e *Engine) DeleteSelected() {
	e.edited(e.scene.DeleteSelected())
}

// Copy copies the selection to the clipboard.
func (e *Engine) Copy() int {
	return e.scene.Copy(e.scene.Selection())
}

// Paste pastes the clipboard centered on (x, y).
func (e *Engine) Paste(x, y float64) []string {
	ids := e.scene.Paste(geometry.Pt(x, y))
	e.edited(len(ids))
	return ids
}

// Clear removes every shape.
func (e *Engine) Clear() {
	if e.scene.Clear() {
		e.dirty = true
	}
}

// SetBoardBackground sets the board background color.
func (e *Engine) SetBoardBackground(color string) error {
	c, err := document.ParseColor(color)
	if err != nil {
		return err
	}
	if e.scene.SetBoardBackground(c) {
		e.dirty = true
	}
	return nil
}

// SetBoardPen sets the board pen color.
func (e *Engine) SetBoardPen(color string) error {
	c, err := document.ParseColor(color)
	if err != nil {
		return err
	}
	e.scene.SetBoardPen(c)
	return nil
}

func (e *Engine) edited(n int) {
	if n > 0 {
		e.dirty = true
	}
}

func clampAlpha(a int) uint8 {
	if a < 0 || a > 255 {
		slog.Warn("clamping alpha", "value", a)
	}
	return uint8(min(max(a, 0), 255))
}

// --- Undo / redo ---

type resultJSON struct {
	Action  string   `json:"action,omitempty"`
	Applied bool     `json:"applied"`
	Errors  []string `json:"errors,omitempty"`
}

// Undo reverts the last command and returns the result as JSON.
func (e *Engine) Undo() string {
	return e.result(e.scene.Undo())
}

// Redo reapplies the last undone command and returns the result as JSON.
func (e *Engine) Redo() string {
	return e.result(e.scene.Redo())
}

func (e *Engine) result(r scene.Result) string {
	if r.Applied {
		e.dirty = true
		e.textReq = nil
	}
	out := resultJSON{Action: string(r.Action), Applied: r.Applied}
	for _, err := range r.Errors {
		out.Errors = append(out.Errors, err.Error())
	}
	data, _ := json.Marshal(out)
	return string(data)
}

// --- Text input ---

type textRequestJSON struct {
	ShapeID string               `json:"shapeId,omitempty"`
	Origin  geometry.Point       `json:"origin"`
	Rect    *geometry.Rect       `json:"rect"`
	Initial *document.TextRecord `json:"initial"`
}

type textInputJSON struct {
	Text    document.TextRecord `json:"text"`
	Cleared bool                `json:"cleared"`
}

var errNoTextRequest = errors.New("no text request pending")

func (e *Engine) takeTextRequest() {
	if req, ok := e.scene.TakeTextRequest(); ok {
		e.textReq = &req
	}
}

// PendingTextRequest returns the text request waiting for input as JSON,
// or an empty string.
func (e *Engine) PendingTextRequest() string {
	if e.textReq == nil {
		return ""
	}
	req := e.textReq
	out := textRequestJSON{
		ShapeID: req.ShapeID,
		Origin:  req.Origin,
		Initial: document.ToTextRecord(req.Initial),
	}
	if req.HasRect {
		r := req.DragRect.Normalized()
		out.Rect = &r
	}
	data, _ := json.Marshal(out)
	return string(data)
}

// SubmitText answers the pending text request. It returns the id of the
// text block created or edited, or "" when nothing was kept.
func (e *Engine) SubmitText(jsonData string) (string, error) {
	if e.textReq == nil {
		return "", errNoTextRequest
	}
	var in textInputJSON
	if err := json.Unmarshal([]byte(jsonData), &in); err != nil {
		return "", fmt.Errorf("decode text input: %w", err)
	}
	tp, warnings := document.FromTextRecord(in.Text)
	for _, w := range warnings {
		slog.Warn("text input degraded", "session", e.session, "error", w)
	}

	req := *e.textReq
	e.textReq = nil
	e.dirty = true
	input := scene.TextInput{Properties: tp, Cleared: in.Cleared}
	if req.ShapeID == "" {
		return e.scene.CreateText(req, input)
	}
	if err := e.scene.EditText(req.ShapeID, input); err != nil {
		return "", err
	}
	if _, ok := e.scene.Shape(req.ShapeID); !ok {
		return "", nil
	}
	return req.ShapeID, nil
}

// CancelText drops the pending text request.
func (e *Engine) CancelText() {
	e.textReq = nil
}

// --- Queries (frontend ← backend) ---

// Render rebuilds the scene graph if needed and returns draw commands as
// JSON, overlay included.
func (e *Engine) Render() string {
	if e.dirty {
		e.sceneGraph = BuildSceneGraph(e.scene.Shapes())
		e.dirty = false
	}

	ov := Overlay{
		Selected:   e.scene.SelectedShapes(),
		HandleSize: e.scene.HandleSize(),
		Pending:    e.scene.PendingPoints(),
		Pointer:    e.scene.Pointer(),
		Pen:        e.scene.Defaults().Pen,
	}
	if b := e.scene.Board(); b.Enabled {
		ov.Background = &b.Background
		ov.Pen = b.Pen
	}
	if p, ok := e.scene.Preview(); ok {
		ov.Preview = &p
	}

	result, err := DrawCommandsToJSON(CompileFrame(e.sceneGraph, ov))
	if err != nil {
		slog.Error("encode draw commands", "session", e.session, "error", err)
	}
	return result
}

// HitTest returns the topmost shape at (x, y) and the selected handle
// there, if any, as JSON.
func (e *Engine) HitTest(x, y float64) string {
	p := geometry.Pt(x, y)
	res := HitTestResult{X: x, Y: y}
	selected := e.scene.SelectedShapes()
	if hit, ok := query.HandleAt(selected, p, e.scene.HandleSize()); ok {
		res.ObjectID = selected[hit.Index].ID
		res.Handle = hit.Handle.String()
	} else {
		res.ObjectID = HitTest(e.scene.Shapes(), p)
	}
	data, _ := json.Marshal(res)
	return string(data)
}

// GetSelectionBounds returns the bounding box of the current selection as JSON.
func (e *Engine) GetSelectionBounds() string {
	if e.dirty {
		e.sceneGraph = BuildSceneGraph(e.scene.Shapes())
		e.dirty = false
	}
	return RectToJSON(GetSelectionBounds(e.sceneGraph, e.scene.Selection()))
}

// GetSelection returns the current selection as JSON.
func (e *Engine) GetSelection() string {
	ids := e.scene.Selection()
	if ids == nil {
		ids = []string{}
	}
	data, _ := json.Marshal(ids)
	return string(data)
}

// GetState returns the interaction state as JSON.
func (e *Engine) GetState() string {
	d := e.scene.Defaults()
	b := e.scene.Board()
	data, _ := json.Marshal(map[string]any{
		"session":   e.session,
		"tool":      e.scene.Tool(),
		"state":     e.scene.State().String(),
		"shapes":    e.scene.Len(),
		"selected":  len(e.scene.Selection()),
		"canUndo":   e.scene.CanUndo(),
		"canRedo":   e.scene.CanRedo(),
		"pen":       d.Pen.Hex(),
		"alpha":     d.Alpha,
		"thickness": d.LineThickness,
		"lineStyle": int(d.LineStyle),
		"filled":    d.Filled,
		"board":     b.Enabled,
		"boardPen":  b.Pen.Hex(),
		"boardBg":   b.Background.Hex(),
		"textReady": e.textReq != nil,
	})
	return string(data)
}
