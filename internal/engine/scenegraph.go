package engine

import (
	"github.com/inamate/annotator/internal/document"
	"github.com/inamate/annotator/internal/geometry"
)

// SceneGraph is the render-ready form of the shape list. It is retained
// between frames and rebuilt only when the scene changes.
type SceneGraph struct {
	Nodes     []*SceneNode // paint order
	NodesById map[string]*SceneNode
}

// SceneNode is one shape resolved for rendering. Path coordinates are in
// scene space; Transform applies the shape's rotation about its centroid.
type SceneNode struct {
	ID   string
	Kind document.Kind

	Transform geometry.Matrix2D

	Path        []PathCommand
	Fill        string
	Stroke      string
	StrokeWidth float64
	Dash        []float64
	LineCap     string
	Opacity     float64

	Text *TextPayload

	// Hit testing and selection bounds, screen space
	Bounds geometry.Rect
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], ["Z"].
type PathCommand []any

// TextPayload carries what a renderer needs to lay out a text block
// inside the node's path rect.
type TextPayload struct {
	Text      string  `json:"text"`
	Font      string  `json:"font"`
	Size      int     `json:"size"`
	Bold      bool    `json:"bold,omitempty"`
	Italic    bool    `json:"italic,omitempty"`
	Underline bool    `json:"underline,omitempty"`
	Strikeout bool    `json:"strikeout,omitempty"`
	Color     string  `json:"color"`
	Alignment string  `json:"alignment"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
}

// NewSceneGraph creates an empty scene graph.
func NewSceneGraph() *SceneGraph {
	return &SceneGraph{
		NodesById: make(map[string]*SceneNode),
	}
}

// Len returns the number of renderable nodes.
func (sg *SceneGraph) Len() int {
	if sg == nil {
		return 0
	}
	return len(sg.Nodes)
}
