package cpu

import (
	"strings"
)

const (
	SCREEN_WIDTH  = 64
	SCREEN_HEIGHT = 32
)

// Screen is the monochrome framebuffer, one byte per pixel in row-major order.
// Every cell is 0 or 1.
type Screen [SCREEN_WIDTH * SCREEN_HEIGHT]uint8

// offset returns the cell index for (x, y), wrapping both coordinates.
func offset(x, y int) int {
	x %= SCREEN_WIDTH
	if x < 0 {
		x += SCREEN_WIDTH
	}
	y %= SCREEN_HEIGHT
	if y < 0 {
		y += SCREEN_HEIGHT
	}
	return y*SCREEN_WIDTH + x
}

// Clear turns every pixel off.
func (s *Screen) Clear() {
	clear(s[:])
}

// Pixel returns the pixel at (x, y).
func (s *Screen) Pixel(x, y int) uint8 {
	return s[offset(x, y)]
}

// Toggle flips the pixel at (x, y), returning true if it was turned off.
func (s *Screen) Toggle(x, y int) (erased bool) {
	cell := &s[offset(x, y)]
	erased = *cell == 1
	*cell ^= 1
	return
}

// Lit returns the number of pixels that are on.
func (s *Screen) Lit() (count int) {
	for _, px := range s {
		count += int(px)
	}
	return
}

// String renders the screen as rows of '#' (on) and '.' (off).
func (s *Screen) String() string {
	var sb strings.Builder
	sb.Grow((SCREEN_WIDTH + 1) * SCREEN_HEIGHT)
	for y := range SCREEN_HEIGHT {
		for _, px := range s[y*SCREEN_WIDTH : (y+1)*SCREEN_WIDTH] {
			if px != 0 {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
