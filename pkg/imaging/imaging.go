// Package imaging decodes uploaded medical images and prepares them for a
// vision model: EXIF orientation is applied, oversized images are scaled
// down and formats the model does not accept are re-encoded as JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrUndecodable is returned for data no registered decoder accepts
	ErrUndecodable   = errors.New("image data could not be decoded")
	// ErrTooManyPixels is returned when the header declares more pixels than allowed
	ErrTooManyPixels = errors.New("image has too many pixels")
)

const jpegQuality = 90

// passthrough lists formats sent to the vision model unchanged
var passthrough = map[string]string{
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// Decoded is a fully decoded upload
type Decoded struct {
	Image  image.Image
	Format string
	Width  int
	Height int
}

// Payload is what gets sent to the vision model
type Payload struct {
	Data        []byte
	MediaType   string
	Width       int
	Height      int
	Transformed bool
}

// Decode fully decodes data so truncated or corrupt files are rejected, not
// just files with a bad header. The header is read first and images larger
// than maxPixels are rejected before any pixel buffer is allocated; a
// non-positive maxPixels disables the cap.
func Decode(data []byte, maxPixels int) (*Decoded, error) {
	if len(data) == 0 {
		return nil, ErrUndecodable
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	b := img.Bounds()
	return &Decoded{Image: img, Format: format, Width: b.Dx(), Height: b.Dy()}, nil
}

// Prepare returns the bytes to upload. The original bytes are kept when the
// format is accepted as-is, the orientation is normal and no side exceeds
// maxDimension.
func Prepare(data []byte, decoded *Decoded, maxDimension int) (*Payload, error) {
	img := decoded.Image
	transformed := false

	if o := Orientation(data); o > 1 && o <= 8 {
		img = Orient(img, o)
		transformed = true
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	if maxDimension > 0 && (width > maxDimension || height > maxDimension) {
		img = scaleToFit(img, maxDimension)
		transformed = true
		b = img.Bounds()
		width, height = b.Dx(), b.Dy()
	}

	mediaType, accepted := passthrough[decoded.Format]
	if !transformed && accepted {
		return &Payload{Data: data, MediaType: mediaType, Width: width, Height: height}, nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return &Payload{
		Data:        buf.Bytes(),
		MediaType:   "image/jpeg",
		Width:       width,
		Height:      height,
		Transformed: true,
	}, nil
}

// Orientation reads the EXIF orientation tag, 1 when absent
func Orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	val, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return val
}

// Orient applies an EXIF orientation (2..8) so the result displays upright
func Orient(img image.Image, orientation int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var dst *image.RGBA
	var mapPoint func(x, y int) (int, int)
	switch orientation {
	case 2:
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
		mapPoint = func(x, y int) (int, int) { return w - 1 - x, y }
	case 3:
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
		mapPoint = func(x, y int) (int, int) { return w - 1 - x, h - 1 - y }
	case 4:
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
		mapPoint = func(x, y int) (int, int) { return x, h - 1 - y }
	case 5:
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
		mapPoint = func(x, y int) (int, int) { return y, x }
	case 6:
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
		mapPoint = func(x, y int) (int, int) { return h - 1 - y, x }
	case 7:
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
		mapPoint = func(x, y int) (int, int) { return h - 1 - y, w - 1 - x }
	case 8:
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
		mapPoint = func(x, y int) (int, int) { return y, w - 1 - x }
	default:
		return img
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := mapPoint(x, y)
			dst.Set(dx, dy, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}

func scaleToFit(img image.Image, maxDimension int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	newW, newH := maxDimension, maxDimension
	if w >= h {
		newH = h * maxDimension / w
	} else {
		newW = w * maxDimension / h
	}
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
