// Package export renders particle snapshots as SVG images.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/partsim/internal/particle"
)

const background = "#0a0a0a"

// ParticlesToSVG draws every particle of the square [-bound, bound]² as a
// circle in its own color, with the alpha channel as opacity. size is the
// image edge in pixels.
func ParticlesToSVG(w io.Writer, ps []particle.Particle, bound float32, size int) error {
	if bound <= 0 {
		return fmt.Errorf("export: bound must be positive, got %g", bound)
	}
	if size <= 0 {
		return fmt.Errorf("export: size must be positive, got %d", size)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<g>
`, size, size, size, size, background)

	scale := float64(size) / (2 * float64(bound))
	radius := max(float64(size)/400, 0.5)

	for _, p := range ps {
		cx := (float64(p.Position.X) + float64(bound)) * scale
		cy := (float64(bound) - float64(p.Position.Y)) * scale
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" fill-opacity="%.2f"/>
`, cx, cy, radius, hexColor(p.Color), clamp01(p.Color.A))
	}

	sb.WriteString("</g>\n</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func hexColor(c particle.Vec4) string {
	return "#" + hexByte(c.R) + hexByte(c.G) + hexByte(c.B)
}

func hexByte(v float32) string {
	const hex = "0123456789abcdef"
	b := int(clamp01(v)*255 + 0.5)
	return string(hex[b/16]) + string(hex[b%16])
}

func clamp01(v float32) float32 {
	return min(max(v, 0), 1)
}
