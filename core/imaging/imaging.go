// Package imaging pixelates images and renders QR codes.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	tkerrors "github.com/FocuswithJustin/DevToolkit/core/errors"
	"github.com/FocuswithJustin/DevToolkit/internal/validation"
)

// DefaultBlockSize is the pixel block size used when none is given.
const DefaultBlockSize = 8

// Errors returned by Pixelate.
var (
	ErrBlockSize    = tkerrors.NewValidation("", "Block size must be >= 1")
	ErrMissingInput = tkerrors.NewNotFound("Input image", "")
)

// Pixelate reads the image at in, pixelates it with square blocks of
// blockSize pixels and writes the result to out. The output encoding follows
// the extension of out (png, jpeg, gif, bmp or tiff), defaulting to png.
//
// The image is scaled down to max(1, w/blockSize) x max(1, h/blockSize) and
// back up to w x h, both times with nearest-neighbour sampling.
func Pixelate(in, out string, blockSize int) error {
	if blockSize < 1 {
		return ErrBlockSize
	}
	info, err := os.Stat(in)
	if err != nil || !info.Mode().IsRegular() {
		return ErrMissingInput
	}

	data, err := validation.ReadFile(in)
	if err != nil {
		return tkerrors.NewIO("read", in, err)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return tkerrors.NewParse("image", err.Error(), err)
	}

	dst := PixelateImage(src, blockSize)

	var buf bytes.Buffer
	if err := Encode(&buf, dst, out); err != nil {
		return err
	}
	if err := validation.WriteFile(out, buf.Bytes()); err != nil {
		return tkerrors.NewIO("write", out, err)
	}
	return nil
}

// PixelateImage returns a pixelated copy of src.
func PixelateImage(src image.Image, blockSize int) image.Image {
	if blockSize < 1 {
		blockSize = 1
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	small := image.NewRGBA(image.Rect(0, 0, max(1, w/blockSize), max(1, h/blockSize)))
	draw.NearestNeighbor.Scale(small, small.Bounds(), src, b, draw.Src, nil)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), small, small.Bounds(), draw.Src, nil)
	return dst
}

// Encode writes img to w in the format implied by the extension of name.
func Encode(w io.Writer, img image.Image, name string) error {
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 90})
	case ".gif":
		err = gif.Encode(w, img, nil)
	case ".bmp":
		err = bmp.Encode(w, img)
	case ".tif", ".tiff":
		err = tiff.Encode(w, img, nil)
	case ".png", "":
		err = png.Encode(w, img)
	default:
		return tkerrors.NewUnsupported("image format", fmt.Sprintf("cannot write %s files", filepath.Ext(name)))
	}
	if err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}
	return nil
}
