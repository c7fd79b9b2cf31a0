package document

import (
	"fmt"
	"strconv"
	"strings"
)

type Corner uint8

const (
	CornerNone Corner = iota
	TopLeft
	TopRight
	BottomRight
	BottomLeft
)

var cornerNames = map[Corner]string{
	TopLeft:     "top_left",
	TopRight:    "top_right",
	BottomRight: "bottom_right",
	BottomLeft:  "bottom_left",
}

func (c Corner) String() string {
	return cornerNames[c]
}

// Opposite returns the diagonally opposite corner.
func (c Corner) Opposite() Corner {
	switch c {
	case TopLeft:
		return BottomRight
	case TopRight:
		return BottomLeft
	case BottomRight:
		return TopLeft
	case BottomLeft:
		return TopRight
	}
	return CornerNone
}

// Handle names a draggable control point: a rect corner, or a vertex index
// when Corner is CornerNone.
type Handle struct {
	Corner Corner
	Vertex int
}

// CornerHandle returns the handle for a rect corner.
func CornerHandle(c Corner) Handle {
	return Handle{Corner: c}
}

// VertexHandle returns the handle for point i.
func VertexHandle(i int) Handle {
	return Handle{Vertex: i}
}

// IsVertex reports whether h addresses a point of a point list.
func (h Handle) IsVertex() bool {
	return h.Corner == CornerNone
}

func (h Handle) String() string {
	if h.IsVertex() {
		return "vertex_" + strconv.Itoa(h.Vertex)
	}
	return h.Corner.String()
}

// ParseHandle parses the names produced by Handle.String.
func ParseHandle(s string) (Handle, error) {
	for c, name := range cornerNames {
		if s == name {
			return CornerHandle(c), nil
		}
	}
	if rest, ok := strings.CutPrefix(s, "vertex_"); ok {
		i, err := strconv.Atoi(rest)
		if err != nil || i < 0 {
			return Handle{}, fmt.Errorf("invalid vertex handle %q", s)
		}
		return VertexHandle(i), nil
	}
	return Handle{}, fmt.Errorf("unknown handle %q", s)
}
