// seehuhn.de/go/raster - band algebra and colour correction for raster images
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package imagefile stores raster datasets in ordinary image files.
//
// PNG, TIFF and BMP files are supported.  Gray images are read as a single
// band, colour images as three bands (red, green, blue), or four bands if
// the image has transparent pixels.  Geo-referencing is not stored.
package imagefile

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/tiff"

	"seehuhn.de/go/raster"
)

// Format is an image file format.
type Format int

// These are the supported file formats.
const (
	PNG Format = iota + 1
	TIFF
	BMP
)

func (f Format) String() string {
	switch f {
	case PNG:
		return "png"
	case TIFF:
		return "tiff"
	case BMP:
		return "bmp"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ErrUnknownFormat is returned for file names with an unsupported
// extension.
var ErrUnknownFormat = errors.New("unknown image format")

// FormatOf determines the file format from the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".tif", ".tiff":
		return TIFF, nil
	case ".bmp":
		return BMP, nil
	}
	return 0, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

// Read reads an image file into memory.
func Read(path string) (*raster.Memory, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	m, err := Decode(fd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Decode reads an image in any of the supported formats.
func Decode(r io.Reader) (*raster.Memory, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// FromImage converts an image to an in-memory dataset.  16-bit gray images
// keep their full range of values; all other images are converted to 8-bit
// samples.
func FromImage(img image.Image) *raster.Memory {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	switch img := img.(type) {
	case *image.Gray:
		m := raster.NewMemory(w, h, 1)
		band := m.Band(1)
		for y := range h {
			row := img.Pix[y*img.Stride : y*img.Stride+w]
			for x, v := range row {
				band[y*w+x] = float64(v)
			}
		}
		return m
	case *image.Gray16:
		m := raster.NewMemory(w, h, 1)
		band := m.Band(1)
		for y := range h {
			row := img.Pix[y*img.Stride : y*img.Stride+2*w]
			for x := range w {
				band[y*w+x] = float64(uint16(row[2*x])<<8 | uint16(row[2*x+1]))
			}
		}
		return m
	}

	rgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(rgba, rgba.Bounds(), img, b.Min, xdraw.Src)

	n := 3
	if !rgba.Opaque() {
		n = 4
	}
	m := raster.NewMemory(w, h, n)
	for y := range h {
		row := rgba.Pix[y*rgba.Stride : y*rgba.Stride+4*w]
		for x := range w {
			for c := range n {
				m.Band(c + 1)[y*w+x] = float64(row[4*x+c])
			}
		}
	}
	return m
}

// ToImage converts a dataset to an 8-bit image.  Samples are rounded and
// clamped to [0, 255].  One band gives a gray image, two bands gray with
// alpha, three bands an opaque colour image, and four or more bands a colour
// image with band 4 as alpha.
func ToImage(ds raster.Dataset) (image.Image, error) {
	bands, err := raster.ReadAll8(ds)
	if err != nil {
		return nil, err
	}
	w, h := ds.Width(), ds.Height()
	rect := image.Rect(0, 0, w, h)

	switch len(bands) {
	case 0:
		return nil, errors.New("dataset has no bands")
	case 1:
		img := image.NewGray(rect)
		for y := range h {
			copy(img.Pix[y*img.Stride:y*img.Stride+w], bands[0][y*w:(y+1)*w])
		}
		return img, nil
	}

	var r, g, b, a []uint8
	switch len(bands) {
	case 2:
		r, g, b, a = bands[0], bands[0], bands[0], bands[1]
	case 3:
		r, g, b = bands[0], bands[1], bands[2]
	default:
		r, g, b, a = bands[0], bands[1], bands[2], bands[3]
	}
	img := image.NewNRGBA(rect)
	for y := range h {
		row := img.Pix[y*img.Stride : y*img.Stride+4*w]
		for x := range w {
			i := y*w + x
			row[4*x] = r[i]
			row[4*x+1] = g[i]
			row[4*x+2] = b[i]
			if a != nil {
				row[4*x+3] = a[i]
			} else {
				row[4*x+3] = 255
			}
		}
	}
	return img, nil
}

// Encode writes ds to w in the given format.
func Encode(w io.Writer, ds raster.Dataset, f Format) error {
	img, err := ToImage(ds)
	if err != nil {
		return err
	}
	switch f {
	case PNG:
		return png.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case BMP:
		return bmp.Encode(w, img)
	}
	return ErrUnknownFormat
}

// Write stores ds in an image file.  The format is chosen from the file
// name extension.
func Write(path string, ds raster.Dataset) (err error) {
	f, err := FormatOf(path)
	if err != nil {
		return err
	}
	fd, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err2 := fd.Close()
		if err == nil {
			err = err2
		}
	}()
	return Encode(fd, ds, f)
}
