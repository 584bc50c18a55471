package socialimg

import (
	"bytes"
	_ "embed"
	"fmt"
	"image"
	_ "image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

//go:embed assets/watermark.png
var watermarkPNG []byte

const (
	watermarkSize     = 600
	watermarkMargin   = 10
	watermarkAlphaCut = 175
)

// Assets holds the fonts and the prepared watermark shared by every render.
// It is immutable after LoadAssets returns and safe for concurrent use.
type Assets struct {
	TitleFont *opentype.Font
	BodyFont  *opentype.Font
	// Watermark is already scaled to its final size and faded.
	Watermark *image.NRGBA
}

// LoadAssets parses the embedded fonts and prepares the watermark.
func LoadAssets() (*Assets, error) {
	return loadAssets(gobold.TTF, goregular.TTF, watermarkPNG)
}

func loadAssets(titleTTF, bodyTTF, watermark []byte) (*Assets, error) {
	title, err := opentype.Parse(titleTTF)
	if err != nil {
		return nil, fmt.Errorf("%w: title font: %v", ErrAssetLoad, err)
	}
	body, err := opentype.Parse(bodyTTF)
	if err != nil {
		return nil, fmt.Errorf("%w: body font: %v", ErrAssetLoad, err)
	}
	wm, err := prepareWatermark(watermark)
	if err != nil {
		return nil, err
	}
	return &Assets{TitleFont: title, BodyFont: body, Watermark: wm}, nil
}

// prepareWatermark decodes src, scales it to watermarkSize square and lowers
// every pixel's alpha by watermarkAlphaCut, clamping at zero.
func prepareWatermark(src []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("%w: watermark: %v", ErrAssetLoad, err)
	}

	// NRGBA keeps straight alpha so the cut below doesn't tint the colour channels.
	dst := image.NewNRGBA(image.Rect(0, 0, watermarkSize, watermarkSize))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	for i := 3; i < len(dst.Pix); i += 4 {
		if dst.Pix[i] > watermarkAlphaCut {
			dst.Pix[i] -= watermarkAlphaCut
		} else {
			dst.Pix[i] = 0
		}
	}
	return dst, nil
}
