package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sketchbook/sketchbook/internal/canvas"
)

const (
	sessionFile = "session.json"
	canvasFile  = "canvas.png"
)

// state is what survives between invocations.
type state struct {
	Token     string `json:"token,omitempty"`
	CurrentID string `json:"currentId,omitempty"`

	dir     string
	Surface *canvas.Surface `json:"-"`
}

// loadState reads dir, creating a blank width x height canvas when none is saved.
func loadState(dir string, width, height int) (*state, error) {
	st := &state{dir: dir}
	raw, err := os.ReadFile(filepath.Join(dir, sessionFile))
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, st); err != nil {
			return nil, fmt.Errorf("read %s: %w", sessionFile, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, err
	}

	f, err := os.Open(filepath.Join(dir, canvasFile))
	if errors.Is(err, fs.ErrNotExist) {
		st.Surface = canvas.NewSurface(width, height)
		return st, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", canvasFile, err)
	}
	b := img.Bounds()
	st.Surface = canvas.NewSurface(b.Dx(), b.Dy())
	st.Surface.DrawImage(img)
	return st, nil
}

// save writes the session and the canvas. The canvas is kept lossless so
// repeated invocations do not accumulate JPEG artefacts.
func (st *state) save() error {
	if err := os.MkdirAll(st.dir, 0o700); err != nil {
		return err
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(st.dir, sessionFile), raw, 0o600); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(st.dir, canvasFile))
	if err != nil {
		return err
	}
	if err := png.Encode(f, st.Surface.Image()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
