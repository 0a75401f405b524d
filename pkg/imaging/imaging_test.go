package imaging

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"
)

const maxPixels = 1 << 24

func solid(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 60, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(w, h)))
	return buf.Bytes()
}

func TestDecode_PNG(t *testing.T) {
	decoded, err := Decode(encodePNG(t, 120, 80), maxPixels)
	require.NoError(t, err)
	assert.Equal(t, "png", decoded.Format)
	assert.Equal(t, 120, decoded.Width)
	assert.Equal(t, 80, decoded.Height)
}

func TestDecode_RejectsCorruptData(t *testing.T) {
	_, err := Decode([]byte("definitely not an image"), maxPixels)
	assert.ErrorIs(t, err, ErrUndecodable)

	data := encodePNG(t, 120, 120)
	_, err = Decode(data[:len(data)/2], maxPixels)
	assert.ErrorIs(t, err, ErrUndecodable)

	_, err = Decode(nil, maxPixels)
	assert.ErrorIs(t, err, ErrUndecodable)
}

func TestPrepare_PassthroughKeepsBytes(t *testing.T) {
	data := encodePNG(t, 200, 150)
	decoded, err := Decode(data, maxPixels)
	require.NoError(t, err)

	payload, err := Prepare(data, decoded, 1568)
	require.NoError(t, err)
	assert.Equal(t, "image/png", payload.MediaType)
	assert.Equal(t, data, payload.Data)
	assert.False(t, payload.Transformed)
}

func TestPrepare_ReencodesBMPAsJPEG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, solid(150, 150)))
	decoded, err := Decode(buf.Bytes(), maxPixels)
	require.NoError(t, err)
	assert.Equal(t, "bmp", decoded.Format)

	payload, err := Prepare(buf.Bytes(), decoded, 1568)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", payload.MediaType)
	assert.True(t, payload.Transformed)

	_, format, err := image.DecodeConfig(bytes.NewReader(payload.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestPrepare_DownscalesLargeImages(t *testing.T) {
	data := encodePNG(t, 400, 200)
	decoded, err := Decode(data, maxPixels)
	require.NoError(t, err)

	payload, err := Prepare(data, decoded, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, payload.Width)
	assert.Equal(t, 50, payload.Height)
	assert.Equal(t, "image/jpeg", payload.MediaType)
}

func TestOrient_RotationsSwapDimensions(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	marker := color.RGBA{R: 255, A: 255}
	src.Set(0, 0, marker)

	rotated := Orient(src, 6)
	assert.Equal(t, image.Rect(0, 0, 2, 3), rotated.Bounds())
	// top-left moves to top-right under a clockwise quarter turn
	assert.Equal(t, marker, rotated.At(1, 0))

	flipped := Orient(src, 3)
	assert.Equal(t, src.Bounds(), flipped.Bounds())
	assert.Equal(t, marker, flipped.At(2, 1))

	assert.Same(t, src, Orient(src, 1).(*image.RGBA))
}

func TestOrientation_DefaultsWithoutExif(t *testing.T) {
	assert.Equal(t, 1, Orientation(encodePNG(t, 10, 10)))
}

// pngWithDimensions returns a 1x1 PNG whose header claims w x h pixels
func pngWithDimensions(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := encodePNG(t, 1, 1)
	// signature(8) + length(4) + "IHDR"(4), then width and height
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestDecode_RejectsPixelFloodFromHeader(t *testing.T) {
	data := pngWithDimensions(t, 20000, 20000)
	require.Less(t, len(data), 1024)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, 20000, cfg.Width)

	// the pixel data only covers one pixel, so a full decode would fail
	// with ErrUndecodable; the cap must trip on the header alone
	_, err = Decode(data, maxPixels)
	assert.ErrorIs(t, err, ErrTooManyPixels)
	assert.NotErrorIs(t, err, ErrUndecodable)
}

func TestDecode_PixelCapBoundary(t *testing.T) {
	data := encodePNG(t, 200, 100)

	_, err := Decode(data, 200*100)
	assert.NoError(t, err)

	_, err = Decode(data, 200*100-1)
	assert.ErrorIs(t, err, ErrTooManyPixels)

	_, err = Decode(data, 0)
	assert.NoError(t, err)
}
