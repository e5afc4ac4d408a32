// Package color picks display colors for user avatars.
package color

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Avatar returns a stable hex color for a username. Case is ignored so the
// color survives a differently-cased login.
func Avatar(username string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(username)))
	hue := float64(h.Sum32() % 360)

	// Fixed saturation and lightness keep white initials readable.
	r, g, b := hslToRGB(hue, 0.45, 0.55)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts h in [0,360) and s, l in [0,1] to 8-bit RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(l * 255)
		return v, v, v
	}

	h /= 360
	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q

	return channel(p, q, h+1.0/3), channel(p, q, h), channel(p, q, h-1.0/3)
}

func channel(p, q, t float64) uint8 {
	switch {
	case t < 0:
		t++
	case t > 1:
		t--
	}

	var v float64
	switch {
	case t < 1.0/6:
		v = p + (q-p)*6*t
	case t < 1.0/2:
		v = q
	case t < 2.0/3:
		v = p + (q-p)*(2.0/3-t)*6
	default:
		v = p
	}
	return uint8(v * 255)
}
