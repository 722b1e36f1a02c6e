package canvas

import (
	"fmt"
	"image/color"

	"github.com/gogpu/gg"
)

type Tool int

const (
	Pencil Tool = iota
	Eraser
)

func (t Tool) String() string {
	if t == Eraser {
		return "eraser"
	}
	return "pencil"
}

// ParseTool accepts "pencil" or "eraser".
func ParseTool(s string) (Tool, error) {
	switch s {
	case "pencil":
		return Pencil, nil
	case "eraser":
		return Eraser, nil
	}
	return Pencil, fmt.Errorf("unknown tool %q", s)
}

// Width is the stroke width in surface pixels.
func (t Tool) Width() float64 {
	if t == Eraser {
		return 20
	}
	return 2
}

func (t Tool) Color() color.Color {
	if t == Eraser {
		return Background.Color()
	}
	return gg.Black.Color()
}

// Renderer turns pointer events into strokes. Events must be delivered one at
// a time; the Renderer is not safe for concurrent use.
type Renderer struct {
	surface *Surface
	mapper  Mapper

	tool    Tool // selected tool, applied on the next PointerDown
	stroke  Tool // tool of the stroke in progress
	drawing bool
	x, y    float64
}

// NewRenderer draws on s. Pointer coordinates go through m first.
func NewRenderer(s *Surface, m Mapper) *Renderer {
	return &Renderer{surface: s, mapper: m}
}

func (r *Renderer) Surface() *Surface { return r.surface }

// SetTool selects the tool for the next stroke. A stroke already in progress
// keeps the tool it started with.
func (r *Renderer) SetTool(t Tool) { r.tool = t }

func (r *Renderer) Tool() Tool { return r.tool }

// Drawing reports whether a stroke is in progress.
func (r *Renderer) Drawing() bool { return r.drawing }

// PointerDown starts a stroke and marks the point with a dot.
func (r *Renderer) PointerDown(x, y float64) error {
	r.drawing = true
	r.stroke = r.tool
	r.x, r.y = r.mapper.Map(x, y)
	return r.dot(r.x, r.y)
}

// PointerMove extends the stroke. Without a preceding PointerDown it does nothing.
func (r *Renderer) PointerMove(x, y float64) error {
	if !r.drawing {
		return nil
	}
	return r.segmentTo(r.mapper.Map(x, y))
}

// PointerUp draws the last segment and ends the stroke.
func (r *Renderer) PointerUp(x, y float64) error {
	if !r.drawing {
		return nil
	}
	err := r.segmentTo(r.mapper.Map(x, y))
	r.drawing = false
	r.surface.dc.ClearPath()
	return err
}

func (r *Renderer) style() {
	dc := r.surface.dc
	dc.SetColor(r.stroke.Color())
	dc.SetLineWidth(r.stroke.Width())
	dc.SetLineCap(gg.LineCapRound)
	dc.SetLineJoin(gg.LineJoinRound)
}

// dot renders a zero-length stroke; round caps make it a disc of the tool width.
func (r *Renderer) dot(x, y float64) error {
	r.style()
	dc := r.surface.dc
	dc.ClearPath()
	dc.DrawCircle(x, y, r.stroke.Width()/2)
	return dc.Fill()
}

func (r *Renderer) segmentTo(x, y float64) error {
	if x == r.x && y == r.y {
		return nil
	}
	r.style()
	dc := r.surface.dc
	dc.ClearPath()
	dc.MoveTo(r.x, r.y)
	dc.LineTo(x, y)
	r.x, r.y = x, y
	return dc.Stroke()
}
