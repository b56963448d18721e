package mediaconvert

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"

	"github.com/mikeydub/go-portfolio/service/logger"
)

const (
	jpegQuality = 90

	// maxDimension bounds the width of uploaded JPEGs; anything wider is
	// downscaled before upload.
	maxDimension = 2560
)

var heicExtensions = map[string]bool{
	"heic": true,
	"heif": true,
}

var heicContentTypes = map[string]bool{
	"image/heic": true,
	"image/heif": true,
}

// ErrConversionFailed is the terminal error of the server upload path: both
// conversion attempts failed and nothing was uploaded.
type ErrConversionFailed struct{}

func (e ErrConversionFailed) Error() string {
	return "Failed to convert image format"
}

// ErrPreviewConversionFailed is the terminal error of the client-preview path
type ErrPreviewConversionFailed struct{}

func (e ErrPreviewConversionFailed) Error() string {
	return "Could not convert image for preview. Please try a different image format."
}

// IsHEIC reports whether a file needs conversion before it can be served,
// judged by its extension or its declared content type.
func IsHEIC(filename, contentType string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	return heicExtensions[ext] || heicContentTypes[strings.ToLower(contentType)]
}

// Converter turns HEIC/HEIF bytes into JPEG bytes
type Converter interface {
	ToJPEG(ctx context.Context, data []byte) ([]byte, error)
}

// DefaultConverters returns the primary conversion path and its fallback, in
// the order they are attempted.
func DefaultConverters() []Converter {
	return []Converter{HeifConvert{}, FFmpegConvert{}}
}

// HeifConvert shells out to libheif's heif-convert. It works on files, not
// pipes, so the bytes round-trip through the temp dir.
type HeifConvert struct{}

func (HeifConvert) ToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	in, err := os.CreateTemp("", "upload-*.heic")
	if err != nil {
		return nil, err
	}
	defer os.Remove(in.Name())

	if _, err := in.Write(data); err != nil {
		in.Close()
		return nil, err
	}
	if err := in.Close(); err != nil {
		return nil, err
	}

	out := strings.TrimSuffix(in.Name(), ".heic") + ".jpg"
	defer os.Remove(out)

	c := exec.CommandContext(ctx, "heif-convert", "-q", fmt.Sprint(jpegQuality), in.Name(), out)
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return nil, fmt.Errorf("heif-convert: %s", err)
	}

	return os.ReadFile(out)
}

// FFmpegConvert re-encodes through ffmpeg, the general-purpose fallback when
// heif-convert cannot handle the file.
type FFmpegConvert struct{}

func (FFmpegConvert) ToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	c := exec.CommandContext(ctx, "ffmpeg", "-i", "pipe:0", "-frames:v", "1", "-q:v", "2", "-f", "image2pipe", "-c:v", "mjpeg", "pipe:1")
	return pipeIOForCmd(c, data)
}

// ToJPEG runs the conversion chain: each converter is attempted in order and
// the first success wins. When every path fails the whole operation fails with
// ErrConversionFailed and nothing is uploaded.
func ToJPEG(ctx context.Context, data []byte, converters ...Converter) ([]byte, error) {
	if len(converters) == 0 {
		converters = DefaultConverters()
	}
	for _, conv := range converters {
		converted, err := conv.ToJPEG(ctx, data)
		if err == nil && len(converted) > 0 {
			return converted, nil
		}
		if err != nil {
			logger.For(ctx).Warnf("conversion attempt failed: %s", err)
		}
	}
	return nil, ErrConversionFailed{}
}

// ConvertForPreview converts a HEIC file so the client can display it before
// the actual upload. Non-HEIC files pass through untouched. Shares detection
// with the upload path but fails with its own user-facing error.
func ConvertForPreview(ctx context.Context, data []byte, filename, contentType string, converters ...Converter) ([]byte, string, error) {
	if !IsHEIC(filename, contentType) {
		return data, contentType, nil
	}
	converted, err := ToJPEG(ctx, data, converters...)
	if err != nil {
		return nil, "", ErrPreviewConversionFailed{}
	}
	return converted, "image/jpeg", nil
}

// Compress downscales an oversized JPEG and re-encodes it at quality 90.
// Images within bounds, and anything that does not decode as an image, pass
// through unchanged.
func Compress(data []byte) ([]byte, error) {
	original, format, err := image.Decode(bytes.NewReader(data))
	if err != nil || format != "jpeg" {
		return data, nil
	}

	width := original.Bounds().Dx()
	if width <= maxDimension {
		return data, nil
	}

	ratio := float64(maxDimension) / float64(width)
	height := int(float64(original.Bounds().Dy()) * ratio)

	scaled := image.NewRGBA(image.Rect(0, 0, maxDimension, height))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), original, original.Bounds(), draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func pipeIOForCmd(c *exec.Cmd, input []byte) ([]byte, error) {
	stdin, err := c.StdinPipe()
	if err != nil {
		return nil, err
	}

	go func() {
		defer stdin.Close()
		stdin.Write(input)
	}()

	return c.Output()
}
