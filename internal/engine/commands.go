package engine

import (
	"encoding/json"

	"github.com/inamate/annotator/internal/document"
	"github.com/inamate/annotator/internal/geometry"
	"github.com/inamate/annotator/internal/query"
)

// DrawCommand represents a single drawing operation for the frontend to execute.
// The frontend receives a list of these and executes them on a Canvas2D context.
type DrawCommand struct {
	Op          string        `json:"op"`                    // Operation: "background", "path", "text"
	Layer       string        `json:"layer,omitempty"`       // "", "preview", "pending", "handles"
	ObjectID    string        `json:"objectId,omitempty"`    // For hit correlation
	Transform   []float64     `json:"transform,omitempty"`   // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand `json:"path,omitempty"`        // Path data for "path" and "text" ops
	Fill        string        `json:"fill,omitempty"`        // Fill color
	Stroke      string        `json:"stroke,omitempty"`      // Stroke color
	StrokeWidth float64       `json:"strokeWidth,omitempty"` // Stroke width
	Dash        []float64     `json:"dash,omitempty"`        // Line dash pattern
	LineCap     string        `json:"lineCap,omitempty"`
	Opacity     float64       `json:"opacity,omitempty"` // Global alpha
	Text        *TextPayload  `json:"text,omitempty"`
}

// Overlay is the session state drawn on top of the shapes.
type Overlay struct {
	Background *document.Color // board mode only
	Selected   []document.Shape
	HandleSize float64
	Preview    *document.Shape
	Pending    []geometry.Point
	Pointer    geometry.Point
	Pen        document.Color
}

// CompileDrawCommands generates a draw command buffer from a scene graph.
// Commands are in painter's order (back to front).
func CompileDrawCommands(sg *SceneGraph) []DrawCommand {
	if sg == nil {
		return nil
	}
	commands := make([]DrawCommand, 0, len(sg.Nodes))
	for _, node := range sg.Nodes {
		commands = append(commands, compileNode(node, ""))
	}
	return commands
}

// compileNode generates the draw command for one node.
func compileNode(node *SceneNode, layer string) DrawCommand {
	cmd := DrawCommand{
		Op:          "path",
		Layer:       layer,
		ObjectID:    node.ID,
		Path:        node.Path,
		Fill:        node.Fill,
		Stroke:      node.Stroke,
		StrokeWidth: node.StrokeWidth,
		Dash:        node.Dash,
		LineCap:     node.LineCap,
		Opacity:     node.Opacity,
		Text:        node.Text,
	}
	if !node.Transform.IsIdentity() {
		cmd.Transform = node.Transform.ToSlice()
	}
	if node.Text != nil {
		cmd.Op = "text"
	}
	return cmd
}

// CompileFrame wraps the shape commands with the overlay: the board
// background goes first, then shapes, the drawing preview, pending
// polygon points and finally selection handles.
func CompileFrame(sg *SceneGraph, ov Overlay) []DrawCommand {
	var commands []DrawCommand
	if ov.Background != nil {
		commands = append(commands, DrawCommand{Op: "background", Fill: ov.Background.CSS()})
	}
	commands = append(commands, CompileDrawCommands(sg)...)

	if ov.Preview != nil {
		if node := buildNode(ov.Preview); node != nil {
			cmd := compileNode(node, "preview")
			cmd.ObjectID = ""
			commands = append(commands, cmd)
		}
	}
	if path := generatePendingPath(ov.Pending, ov.Pointer); path != nil {
		commands = append(commands, DrawCommand{
			Op:          "path",
			Layer:       "pending",
			Path:        path,
			Stroke:      ov.Pen.CSS(),
			StrokeWidth: 1,
			Opacity:     1,
		})
	}
	for _, s := range ov.Selected {
		path := generateHandlePaths(s, ov.HandleSize)
		if path == nil {
			continue
		}
		commands = append(commands, DrawCommand{
			Op:          "path",
			Layer:       "handles",
			ObjectID:    s.ID,
			Path:        path,
			Fill:        document.White.CSS(),
			Stroke:      document.Black.CSS(),
			StrokeWidth: 1,
			Opacity:     1,
		})
	}
	return commands
}

// DrawCommandsToJSON serializes draw commands to JSON.
func DrawCommandsToJSON(commands []DrawCommand) (string, error) {
	if commands == nil {
		commands = []DrawCommand{}
	}
	data, err := json.Marshal(commands)
	if err != nil {
		return "[]", err
	}
	return string(data), nil
}

// HitTestResult contains information about a hit test.
type HitTestResult struct {
	ObjectID string  `json:"objectId"`
	Handle   string  `json:"handle,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// HitTest returns the ID of the topmost shape containing p, or an empty
// string. Containment is exact for the shape's kind and rotation.
func HitTest(shapes []document.Shape, p geometry.Point) string {
	if i := query.TopShapeAt(shapes, p); i >= 0 {
		return shapes[i].ID
	}
	return ""
}

// GetSelectionBounds returns the combined bounding box of the given object IDs.
func GetSelectionBounds(sg *SceneGraph, objectIDs []string) geometry.Rect {
	if sg == nil || len(objectIDs) == 0 {
		return geometry.Rect{}
	}

	var result geometry.Rect
	first := true

	for _, id := range objectIDs {
		node, ok := sg.NodesById[id]
		if !ok || node.Bounds.IsEmpty() {
			continue
		}

		if first {
			result = node.Bounds
			first = false
		} else {
			result = result.Union(node.Bounds)
		}
	}

	return result
}

// RectToJSON serializes a Rect to JSON.
func RectToJSON(r geometry.Rect) string {
	data, _ := json.Marshal(map[string]float64{
		"x":      r.X,
		"y":      r.Y,
		"width":  r.Width,
		"height": r.Height,
	})
	return string(data)
}
