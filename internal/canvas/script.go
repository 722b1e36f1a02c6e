package canvas

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Event is one line of a pointer script:
//
//	{"type":"down","x":10,"y":40}
//	{"type":"move","x":12,"y":41}
//	{"type":"up","x":12,"y":41}
//	{"type":"tool","tool":"eraser"}
type Event struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Tool string  `json:"tool,omitempty"`
}

// Apply delivers e to r.
func (r *Renderer) Apply(e Event) error {
	switch e.Type {
	case "down":
		return r.PointerDown(e.X, e.Y)
	case "move":
		return r.PointerMove(e.X, e.Y)
	case "up":
		return r.PointerUp(e.X, e.Y)
	case "tool":
		t, err := ParseTool(e.Tool)
		if err != nil {
			return err
		}
		r.SetTool(t)
		return nil
	}
	return fmt.Errorf("unknown event type %q", e.Type)
}

// Replay reads newline-delimited JSON events and applies them in order.
// Blank lines and lines starting with # are skipped. It returns the number of
// events applied.
func Replay(r *Renderer, src io.Reader) (int, error) {
	sc := bufio.NewScanner(src)
	n, line := 0, 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var e Event
		if err := json.Unmarshal([]byte(text), &e); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		if err := r.Apply(e); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		n++
	}
	return n, sc.Err()
}
