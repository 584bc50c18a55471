package socialimg

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Canvas geometry.
const (
	Width  = 1200
	Height = 600

	marginLeft   = 100
	titleTop     = 100
	titleSize    = 80
	dateGap      = 150
	dateSize     = 30
	footerHeight = 60
	footerSize   = 26

	dateLayout = "January 02, 2006"
)

// Palette.
var (
	colorBackground = color.RGBA{255, 250, 240, 255}
	colorAccent     = color.RGBA{226, 0, 147, 255}
	colorGray       = color.RGBA{80, 80, 80, 255}
	colorBlack      = color.RGBA{0, 0, 0, 255}
	colorYellow     = color.RGBA{246, 255, 95, 255}
)

// Attribution is the text printed in the footer bar of every card.
type Attribution struct {
	Author  string
	SiteURL string // canonical base URL, e.g. "https://example.com"
}

// ArticleURL returns the canonical URL of the article identified by slug.
func (a Attribution) ArticleURL(slug string) string {
	return strings.TrimSuffix(a.SiteURL, "/") + "/articles/" + slug
}

// FooterText returns "<Author> - <canonical URL>".
func (a Attribution) FooterText(slug string) string {
	return a.Author + " - " + a.ArticleURL(slug)
}

// Compositor draws social cards from article metadata.
type Compositor struct {
	assets      *Assets
	attribution Attribution
}

// NewCompositor returns a Compositor drawing with assets and signing every
// card with attribution.
func NewCompositor(assets *Assets, attribution Attribution) *Compositor {
	return &Compositor{assets: assets, attribution: attribution}
}

// Render draws the card for meta onto a fresh canvas.
func (c *Compositor) Render(meta ArticleMeta) (*image.RGBA, error) {
	titleFace, err := newFace(c.assets.TitleFont, titleSize)
	if err != nil {
		return nil, fmt.Errorf("title face: %w", err)
	}
	defer titleFace.Close()
	dateFace, err := newFace(c.assets.BodyFont, dateSize)
	if err != nil {
		return nil, fmt.Errorf("date face: %w", err)
	}
	defer dateFace.Close()
	footerFace, err := newFace(c.assets.BodyFont, footerSize)
	if err != nil {
		return nil, fmt.Errorf("footer face: %w", err)
	}
	defer footerFace.Close()

	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(colorBackground), image.Point{}, draw.Src)

	wm := c.assets.Watermark
	wmRect := wm.Bounds().Add(image.Pt(Width-wm.Bounds().Dx()-watermarkMargin, watermarkMargin))
	draw.Draw(img, wmRect, wm, wm.Bounds().Min, draw.Over)

	layout := Wrap(titleFace, meta.Title, Width-2*marginLeft)
	for i, line := range layout.Lines {
		drawText(img, titleFace, colorAccent, marginLeft, titleTop+i*layout.LineHeight, line)
	}

	dateTop := dateGap + layout.LineHeight*len(layout.Lines)
	drawText(img, dateFace, colorGray, marginLeft, dateTop, "Written on "+meta.PublishedAt.Format(dateLayout))

	footer := image.Rect(0, Height-footerHeight, Width, Height)
	draw.Draw(img, footer, image.NewUniform(colorYellow), image.Point{}, draw.Src)

	footerText := c.attribution.FooterText(meta.Slug)
	_, textHeight := Measure(footerFace, footerText)
	drawText(img, footerFace, colorBlack, marginLeft, Height-footerHeight/2-textHeight/2, footerText)

	return img, nil
}

// drawText draws s with the top of its line box at (x, top).
func drawText(dst draw.Image, face font.Face, c color.Color, x, top int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(top) + face.Metrics().Ascent},
	}
	d.DrawString(s)
}
