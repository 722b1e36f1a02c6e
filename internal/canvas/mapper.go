package canvas

// NavHeight is the toolbar height, in CSS pixels, above the drawing area.
const NavHeight = 21

// Mapper converts pointer coordinates into surface pixels. PixelRatio is
// captured once when the surface is created and never re-read.
type Mapper struct {
	PixelRatio float64
	OffsetX    float64
	OffsetY    float64
}

// NewMapper returns a Mapper for a surface sitting below the toolbar.
func NewMapper(pixelRatio float64) Mapper {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	return Mapper{PixelRatio: pixelRatio, OffsetY: NavHeight}
}

// Map subtracts the chrome offset and scales to device pixels.
func (m Mapper) Map(x, y float64) (float64, float64) {
	r := m.PixelRatio
	if r <= 0 {
		r = 1
	}
	return (x - m.OffsetX) * r, (y - m.OffsetY) * r
}
