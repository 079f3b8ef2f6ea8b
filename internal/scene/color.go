package scene

import "fmt"

// Color is a 0xRRGGBB value.
type Color uint32

const (
	White    Color = 0xffffff
	Black    Color = 0x000000
	Magenta  Color = 0xff00ff
	Yellow   Color = 0xffff00
	Cyan     Color = 0x00ffff
	Red      Color = 0xff0000
	DarkGray Color = 0x202020
	Sky      Color = 0xbfd1e5
)

func (c Color) RGB() (r, g, b uint8) {
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Floats returns the channels scaled to [0, 1].
func (c Color) Floats() (r, g, b float32) {
	ri, gi, bi := c.RGB()
	return float32(ri) / 255, float32(gi) / 255, float32(bi) / 255
}

func (c Color) String() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xffffff)
}
