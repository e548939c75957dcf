package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// ErrInvalidImage wraps every validation failure so callers can map it to a 400.
var ErrInvalidImage = errors.New("invalid image")

// ProcessedImage is an upload ready to be written to a store.
type ProcessedImage struct {
	Data        []byte
	Format      string // jpeg, png, gif
	Extension   string
	ContentType string
}

type ImageProcessor struct {
	MaxSize  int64 // bytes
	MaxWidth int   // wider images are downscaled, 0 disables
}

func NewImageProcessor(maxSize int64, maxWidth int) *ImageProcessor {
	if maxSize <= 0 {
		maxSize = 5 * 1024 * 1024
	}
	return &ImageProcessor{MaxSize: maxSize, MaxWidth: maxWidth}
}

// ValidateImage checks size and that the bytes decode as jpeg/png/gif.
func (p *ImageProcessor) ValidateImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrInvalidImage)
	}
	if int64(len(data)) > p.MaxSize {
		return "", fmt.Errorf("%w: image exceeds %dMB", ErrInvalidImage, p.MaxSize/(1024*1024))
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: not an image: %v", ErrInvalidImage, err)
	}

	switch format {
	case "jpeg", "png", "gif":
		return format, nil
	default:
		return "", fmt.Errorf("%w: format %s not allowed (jpeg/png/gif only)", ErrInvalidImage, format)
	}
}

// Process validates data and downscales it to MaxWidth, keeping the format.
// GIFs are stored untouched so animations survive.
func (p *ImageProcessor) Process(data []byte) (*ProcessedImage, error) {
	format, err := p.ValidateImage(data)
	if err != nil {
		return nil, err
	}

	out := &ProcessedImage{
		Data:        data,
		Format:      format,
		Extension:   extensionFor(format),
		ContentType: "image/" + format,
	}
	if format == "gif" || p.MaxWidth <= 0 {
		return out, nil
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= p.MaxWidth {
		return out, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: cannot decode: %v", ErrInvalidImage, err)
	}
	resized := imaging.Resize(img, p.MaxWidth, 0, imaging.Lanczos)

	imgFormat := imaging.JPEG
	if format == "png" {
		imgFormat = imaging.PNG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imgFormat, imaging.JPEGQuality(90)); err != nil {
		return nil, fmt.Errorf("encode resized image: %w", err)
	}
	out.Data = buf.Bytes()
	return out, nil
}

func extensionFor(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
