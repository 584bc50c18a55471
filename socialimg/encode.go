package socialimg

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"sync"
)

// ContentType is the media type of every encoded card.
const ContentType = "image/png"

var encoder = png.Encoder{
	CompressionLevel: png.DefaultCompression,
	BufferPool:       &encoderPool{},
}

// encoderPool lets concurrent renders reuse the encoder's scratch buffers.
type encoderPool struct {
	pool sync.Pool
}

func (p *encoderPool) Get() *png.EncoderBuffer {
	b, _ := p.pool.Get().(*png.EncoderBuffer)
	return b
}

func (p *encoderPool) Put(b *png.EncoderBuffer) {
	p.pool.Put(b)
}

// Encode serializes img as PNG.
func Encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := encoder.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return buf.Bytes(), nil
}
