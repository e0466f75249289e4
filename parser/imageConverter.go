package parser

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"

	"github.com/disintegration/imaging"
	"golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned for images the cover generator cannot decode.
var ErrUnsupportedImage = errors.New("unsupported image format")

// DetectImageFormat reads the magic bytes and returns the image format string
func DetectImageFormat(data []byte) (string, error) {
	if len(data) < 12 {
		return "", errors.New("data too short to determine format")
	}

	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "jpeg", nil
	}
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "png", nil
	}
	if string(data[0:6]) == "GIF87a" || string(data[0:6]) == "GIF89a" {
		return "gif", nil
	}
	if string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP" {
		return "webp", nil
	}
	// ISO-BMFF: size(4) "ftyp" brand(4)
	if string(data[4:8]) == "ftyp" {
		switch string(data[8:12]) {
		case "avif", "avis":
			return "avif", nil
		}
	}

	return "", errors.New("unknown image format")
}

// DecodeImage decodes jpeg, png, gif and webp data.
func DecodeImage(data []byte) (image.Image, error) {
	format, err := DetectImageFormat(data)
	if err != nil {
		return nil, err
	}

	reader := bytes.NewReader(data)

	var img image.Image
	switch format {
	case "jpeg":
		img, err = jpeg.Decode(reader)
	case "png":
		img, err = png.Decode(reader)
	case "gif":
		img, err = gif.Decode(reader)
	case "webp":
		img, err = webp.Decode(reader)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, format)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to decode %s image: %w", format, err)
	}
	return img, nil
}

// CreateCover reads the image at src, crops and scales it to width x height
// and writes it to dst as JPEG.
func CreateCover(src, dst string, width, height int) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return errors.New("empty image data")
	}

	img, err := DecodeImage(data)
	if err != nil {
		return err
	}

	thumb := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return fmt.Errorf("encode cover: %w", err)
	}

	return WriteFileAtomic(dst, buf.Bytes())
}
