package layout

import (
	"strconv"
	"strings"
)

// HeaderStyle selects how the first page header is drawn.
type HeaderStyle string

const (
	HeaderModern HeaderStyle = "moderno"
	HeaderFormal HeaderStyle = "formal"
	HeaderClean  HeaderStyle = "clean"
)

// Color is an RGB triple in the 0-255 range.
type Color struct {
	R, G, B int
}

var (
	textDark  = Color{51, 51, 51}
	textMuted = Color{102, 102, 102}
	textLight = Color{153, 153, 153}
	white     = Color{255, 255, 255}
)

// Hex parses "#rrggbb" or "rrggbb". Invalid input yields black.
func Hex(s string) Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}
	}
	return Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}
}

// Tint mixes c with white; amount 0 keeps c, 1 yields white.
func (c Color) Tint(amount float64) Color {
	mix := func(v int) int {
		return v + int(float64(255-v)*amount)
	}
	return Color{R: mix(c.R), G: mix(c.G), B: mix(c.B)}
}

// Style is the visual identity of a template.
type Style struct {
	Primary    Color
	Secondary  Color
	Header     HeaderStyle
	FontFamily string
}
