package upload

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x * 7), uint8(y * 13), uint8(x ^ y), 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func jpegOf(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

// pngHeaderOf encodes a tiny png and rewrites its IHDR so the header claims
// w x h. DecodeConfig only reads the header, so this stands in for a
// highly compressed huge image without allocating one.
func pngHeaderOf(t *testing.T, w, h uint32) []byte {
	t.Helper()
	data := pngOf(t, 1, 1)
	// signature(8) length(4) "IHDR"(4) width(4) height(4) ... crc after 13 data bytes
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))
	return data
}

func TestInspectAcceptsImages(t *testing.T) {
	shot, err := Inspect(bytes.NewReader(pngOf(t, 40, 20)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", shot.ContentType)
	assert.Equal(t, 40, shot.Width)
	assert.Equal(t, 20, shot.Height)
	assert.True(t, strings.HasSuffix(shot.Name, ".png"))

	shot, err = Inspect(bytes.NewReader(jpegOf(t, 10, 10)))
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", shot.ContentType)
	assert.True(t, strings.HasSuffix(shot.Name, ".jpg"))
}

func TestInspectRejects(t *testing.T) {
	_, err := Inspect(strings.NewReader("%PDF-1.4 not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = Inspect(strings.NewReader("GIF89a......"))
	assert.ErrorIs(t, err, ErrUnsupportedType)

	big := append(pngOf(t, 4, 4), make([]byte, MaxSize)...)
	_, err = Inspect(bytes.NewReader(big))
	assert.ErrorIs(t, err, ErrTooLarge)

	truncated := pngOf(t, 4, 4)[:20]
	_, err = Inspect(bytes.NewReader(truncated))
	assert.ErrorIs(t, err, ErrUnreadable)
}

func TestInspectRejectsHugeDimensions(t *testing.T) {
	data := pngHeaderOf(t, 12000, 12000)
	require.Less(t, len(data), 1024)

	_, err := Inspect(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrTooManyPixels)

	shot, err := Inspect(bytes.NewReader(pngHeaderOf(t, 8000, 5000)))
	require.NoError(t, err, "exactly the pixel budget is allowed")
	assert.Equal(t, 8000, shot.Width)
}

func TestDownscaleRefusesHugeImages(t *testing.T) {
	shot := &Screenshot{ContentType: "image/png", Data: pngHeaderOf(t, 12000, 12000), Width: 12000, Height: 12000}
	err := shot.Downscale(1600)
	assert.ErrorIs(t, err, ErrTooManyPixels)
	assert.Equal(t, 12000, shot.Width, "nothing was decoded")
}

func TestDownscale(t *testing.T) {
	shot, err := Inspect(bytes.NewReader(pngOf(t, 300, 150)))
	require.NoError(t, err)

	require.NoError(t, shot.Downscale(0))
	assert.Equal(t, 300, shot.Width)

	require.NoError(t, shot.Downscale(400))
	assert.Equal(t, 300, shot.Width, "narrow images are untouched")

	before := len(shot.Data)
	require.NoError(t, shot.Downscale(100))
	if len(shot.Data) < before {
		assert.Equal(t, 100, shot.Width)
		assert.Equal(t, 50, shot.Height)
		cfg, err := png.DecodeConfig(bytes.NewReader(shot.Data))
		require.NoError(t, err)
		assert.Equal(t, 100, cfg.Width)
	}
}
