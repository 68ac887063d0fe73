// Package upload inspects payment screenshots before they are forwarded to
// the API: the content type is sniffed from the bytes, not trusted from the
// browser, and oversized images can be scaled down.
package upload

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp" // registers webp with image.DecodeConfig
)

// MaxSize is the largest screenshot accepted, 5 MiB.
const MaxSize = 5 << 20

// MaxPixels caps width*height. Compressed images far under MaxSize can still
// decode to gigabytes, so the header is checked before anything is decoded.
const MaxPixels = 40_000_000

var allowed = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

var (
	ErrUnsupportedType = errors.New("upload: only png, jpeg or webp images are allowed")
	ErrTooLarge        = errors.New("upload: file is larger than 5MB")
	ErrUnreadable      = errors.New("upload: image could not be decoded")
	ErrTooManyPixels   = errors.New("upload: image dimensions are too large")
)

type Screenshot struct {
	Name        string // generated, never the client's file name
	ContentType string
	Data        []byte
	Width       int
	Height      int
}

// Inspect reads r and checks type then size. It reads at most one byte past
// MaxSize, so a huge upload is rejected without buffering all of it.
func Inspect(r io.Reader) (*Screenshot, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("upload: read: %w", err)
	}

	mt := mimetype.Detect(data)
	var contentType, ext string
	for ct, e := range allowed {
		if mt.Is(ct) {
			contentType, ext = ct, e
			break
		}
	}
	if contentType == "" {
		return nil, ErrUnsupportedType
	}
	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if tooManyPixels(cfg.Width, cfg.Height) {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}
	return &Screenshot{
		Name:        uuid.New().String() + ext,
		ContentType: contentType,
		Data:        data,
		Width:       cfg.Width,
		Height:      cfg.Height,
	}, nil
}

// Downscale shrinks png and jpeg screenshots wider than maxWidth, keeping the
// aspect ratio and the format. Webp is left alone (there is no encoder) and
// so is any result that would come out larger than the original.
func (s *Screenshot) Downscale(maxWidth uint) error {
	if maxWidth == 0 || s.Width <= int(maxWidth) || s.ContentType == "image/webp" {
		return nil
	}
	if tooManyPixels(s.Width, s.Height) {
		return fmt.Errorf("%w: %dx%d", ErrTooManyPixels, s.Width, s.Height)
	}

	var img image.Image
	var err error
	switch s.ContentType {
	case "image/png":
		img, err = png.Decode(bytes.NewReader(s.Data))
	case "image/jpeg":
		img, err = jpeg.Decode(bytes.NewReader(s.Data))
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadable, err)
	}

	small := resize.Resize(maxWidth, 0, img, resize.Lanczos3)
	var buf bytes.Buffer
	if s.ContentType == "image/png" {
		err = png.Encode(&buf, small)
	} else {
		err = jpeg.Encode(&buf, small, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return fmt.Errorf("upload: encode: %w", err)
	}
	if buf.Len() >= len(s.Data) {
		return nil
	}
	b := small.Bounds()
	s.Data, s.Width, s.Height = buf.Bytes(), b.Dx(), b.Dy()
	return nil
}

func tooManyPixels(w, h int) bool {
	return w <= 0 || h <= 0 || int64(w)*int64(h) > MaxPixels
}

func (s *Screenshot) Reader() io.Reader { return bytes.NewReader(s.Data) }
