package layout

// Measurer reports the rendered width of a label at a given font size.
// The layout engine calls it for every module and function name, so an
// implementation must be deterministic: identical inputs must always
// yield identical widths, or layout stops being reproducible.
//
// A host with a real rendering environment (browser, font rasterizer)
// can supply precise metrics; [Monospace] is the default used everywhere
// else.
type Measurer interface {
	Width(text string, fontSize float64) float64
}

// Monospace measures text assuming a fixed-advance font: every rune is
// AdvanceRatio em wide. The default ratio approximates JetBrains Mono,
// the font the viewer page renders with, closely enough that labels fit
// their boxes.
type Monospace struct {
	// AdvanceRatio is the glyph advance as a fraction of the font size.
	// Zero means the default of 0.6.
	AdvanceRatio float64
}

// Width returns the measured width of text at fontSize.
func (m Monospace) Width(text string, fontSize float64) float64 {
	ratio := m.AdvanceRatio
	if ratio == 0 {
		ratio = 0.6
	}
	n := 0
	for range text {
		n++
	}
	return float64(n) * ratio * fontSize
}
