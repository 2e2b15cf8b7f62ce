// Package imageio moves images in and out of the grid representation the
// chaotic maps work on.
//
// An image is split into one [grid.Grid] per color channel (red, green,
// blue, alpha), each channel is scrambled independently, and the grids are
// merged back into an image. Only square images can be split; [CropSquare]
// cuts the largest centered square from any image.
//
// Scrambled images must be written in a lossless format, otherwise decoding
// cannot restore the original pixels. [Save] enforces this.
package imageio

import (
	"errors"
	"image"
	"image/color"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	errs "github.com/matzehuels/chaoscrypt/pkg/errors"
	"github.com/matzehuels/chaoscrypt/pkg/grid"
)

// Channel indexes in the slice returned by Split.
const (
	Red = iota
	Green
	Blue
	Alpha

	// NumChannels is the number of grids Split returns.
	NumChannels
)

// ChannelNames labels each channel index for logs and errors.
var ChannelNames = [NumChannels]string{"red", "green", "blue", "alpha"}

// Load decodes the image at path. EXIF orientation is applied so the pixel
// layout matches what viewers display.
func Load(path string) (image.Image, error) {
	if err := errs.ValidatePath(path); err != nil {
		return nil, err
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "image %s not found", path)
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	return img, nil
}

// Save encodes img to path in the format named by its extension, which must
// be lossless. Parent directories are created as needed.
func Save(img image.Image, path string) error {
	if err := errs.ValidateImageFormat(path); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}
	if err := imaging.Save(img, path); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "encode %s", path)
	}
	return nil
}

// CropSquare returns the largest square centered in img. Square images are
// returned as a copy.
func CropSquare(img image.Image) *image.NRGBA {
	b := img.Bounds()
	side := min(b.Dx(), b.Dy())
	return imaging.CropCenter(img, side, side)
}

// Split separates img into red, green, blue and alpha grids. Channel values
// are non-premultiplied 8-bit samples. The image must be square.
func Split(img image.Image) ([]*grid.Grid, error) {
	if img == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "image is nil")
	}
	b := img.Bounds()
	if b.Dx() != b.Dy() {
		return nil, errs.New(errs.ErrCodeDimensionMismatch,
			"image is %dx%d, channel grids must be square", b.Dx(), b.Dy())
	}
	if err := errs.ValidateWidth(b.Dx()); err != nil {
		return nil, err
	}

	// Clone normalizes any image type to NRGBA with bounds at the origin.
	src := imaging.Clone(img)
	n := b.Dx()
	channels := make([]*grid.Grid, NumChannels)
	for c := range channels {
		channels[c] = grid.New(n)
	}
	for y := 0; y < n; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+n*4]
		for x := 0; x < n; x++ {
			i := y*n + x
			for c := range channels {
				channels[c].Pix()[i] = uint32(row[x*4+c])
			}
		}
	}
	return channels, nil
}

// Merge recombines channel grids into an image. It accepts red, green and
// blue grids, with an optional fourth alpha grid; without one the image is
// opaque. All grids must share one size and hold values in [0, 255].
func Merge(channels []*grid.Grid) (*image.NRGBA, error) {
	if len(channels) != NumChannels && len(channels) != NumChannels-1 {
		return nil, errs.New(errs.ErrCodeInvalidInput,
			"need 3 or 4 channels, got %d", len(channels))
	}
	if channels[0] == nil {
		return nil, errs.New(errs.ErrCodeDimensionMismatch, "red channel is nil")
	}
	n := channels[0].Size()
	for c, g := range channels {
		if err := grid.CheckSize(g, n); err != nil {
			return nil, errs.Wrap(errs.ErrCodeDimensionMismatch, err, "%s channel", ChannelNames[c])
		}
	}

	dst := imaging.New(n, n, color.NRGBA{A: 0xff})
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			i := y*n + x
			off := y*dst.Stride + x*4
			for c, g := range channels {
				v := g.Pix()[i]
				if v > 0xff {
					return nil, errs.New(errs.ErrCodeInvalidInput,
						"%s channel value %d at (%d, %d) exceeds 255", ChannelNames[c], v, x, y)
				}
				dst.Pix[off+c] = uint8(v)
			}
		}
	}
	return dst, nil
}
