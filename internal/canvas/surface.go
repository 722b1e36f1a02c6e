package canvas

import (
	"image"
	"io"

	"github.com/gogpu/gg"
)

// DefaultJPEGQuality matches the quality used when saving drawings.
const DefaultJPEGQuality = 80

// Background is the colour of an empty surface and of the eraser.
var Background = gg.White

// Surface is a fixed-size RGBA raster. It is not safe for concurrent use.
type Surface struct {
	dc *gg.Context
}

// NewSurface returns a width x height surface filled with Background.
func NewSurface(width, height int) *Surface {
	s := &Surface{dc: gg.NewContext(width, height)}
	s.Clear()
	return s
}

func (s *Surface) Width() int  { return s.dc.Width() }
func (s *Surface) Height() int { return s.dc.Height() }

// Clear fills the whole surface with Background.
func (s *Surface) Clear() {
	s.dc.ClearPath()
	s.dc.ClearWithColor(Background)
}

// Image returns a snapshot of the current pixels.
func (s *Surface) Image() image.Image {
	return s.dc.Image()
}

// DrawImage paints img at the origin over the existing pixels. Areas outside
// img keep their content.
func (s *Surface) DrawImage(img image.Image) {
	s.dc.DrawImage(gg.ImageBufFromImage(img), 0, 0)
}

// EncodeJPEG writes the surface as JPEG; quality <= 0 selects DefaultJPEGQuality.
func (s *Surface) EncodeJPEG(w io.Writer, quality int) error {
	if quality <= 0 {
		quality = DefaultJPEGQuality
	}
	return s.dc.EncodeJPEG(w, quality)
}

// Download writes the surface the same way it is uploaded on save.
func (s *Surface) Download(w io.Writer) error {
	return s.EncodeJPEG(w, DefaultJPEGQuality)
}

func (s *Surface) Close() error {
	return s.dc.Close()
}
