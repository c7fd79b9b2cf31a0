package textlayout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inamate/annotator/internal/document"
	"github.com/inamate/annotator/internal/scene"
)

var _ scene.TextMeasurer = (*Measurer)(nil)

func props(text string, size int) document.TextProperties {
	tp := document.DefaultTextProperties()
	tp.Text = text
	tp.Size = size
	return tp
}

func TestMeasureGrowsWithText(t *testing.T) {
	m := NewMeasurer()
	defer m.Close()

	w1, h1 := m.Measure(props("hi", 12))
	w2, h2 := m.Measure(props("hi there", 12))
	require.Greater(t, w1, 0.0)
	assert.Greater(t, w2, w1)
	assert.Equal(t, h1, h2)
}

func TestMeasureMultiline(t *testing.T) {
	m := NewMeasurer()
	defer m.Close()

	w1, h1 := m.Measure(props("first line", 12))
	w2, h2 := m.Measure(props("first line\nx", 12))
	assert.InDelta(t, w1, w2, 1e-9, "widest line wins")
	assert.InDelta(t, 2*h1, h2, 1e-9)
}

func TestMeasureScalesWithSize(t *testing.T) {
	m := NewMeasurer()
	defer m.Close()

	w12, h12 := m.Measure(props("Annotations", 12))
	w24, h24 := m.Measure(props("Annotations", 24))
	assert.Greater(t, w24, w12)
	assert.Greater(t, h24, h12)
}

func TestMeasureBoldIsWider(t *testing.T) {
	m := NewMeasurer()
	defer m.Close()

	tp := props("Wide words", 16)
	regular, _ := m.Measure(tp)
	tp.Bold = true
	bold, _ := m.Measure(tp)
	assert.Greater(t, bold, regular)
}

func TestMeasureEmptyText(t *testing.T) {
	m := NewMeasurer()
	defer m.Close()

	w, h := m.Measure(props("", 12))
	assert.Zero(t, w)
	assert.Greater(t, h, 0.0)
}
