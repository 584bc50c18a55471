package socialimg

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// Layout is the result of wrapping a string to a pixel budget.
type Layout struct {
	Lines      []string
	LineHeight int
}

// newFace returns a face for f at size pixels. Faces keep scratch buffers,
// so each render builds its own from the shared parsed fonts.
func newFace(f *opentype.Font, size float64) (font.Face, error) {
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// Measure returns the pixel extent of s drawn with face, measured from the
// top of the line box: width is the right edge of the inked glyphs and
// height is the ascent plus the deepest inked pixel below the baseline.
func Measure(face font.Face, s string) (width, height int) {
	ascent := face.Metrics().Ascent
	bounds, _ := font.BoundString(face, s)
	if bounds.Empty() {
		return 0, ascent.Ceil()
	}
	width = bounds.Max.X.Ceil()
	if width < 0 {
		width = 0
	}
	return width, (ascent + bounds.Max.Y).Ceil()
}

// Wrap greedily breaks text into lines no wider than maxWidth. A word that is
// wider than maxWidth on its own is kept whole on its own line.
//
// LineHeight comes from measuring the unwrapped text and applies to every line.
func Wrap(face font.Face, text string, maxWidth int) Layout {
	w, lineHeight := Measure(face, text)
	if w <= maxWidth {
		return Layout{Lines: []string{text}, LineHeight: lineHeight}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return Layout{Lines: []string{""}, LineHeight: lineHeight}
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		candidate := line + " " + word
		if cw, _ := Measure(face, candidate); cw <= maxWidth {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = word
	}
	lines = append(lines, line)

	return Layout{Lines: lines, LineHeight: lineHeight}
}
