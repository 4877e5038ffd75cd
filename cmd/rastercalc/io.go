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

package main

import (
	"errors"
	"fmt"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/imagefile"
)

// Storage for formats which imagefile cannot handle.  These are set when
// the program is built with GDAL support.
var (
	loadOther func(path string) (*raster.Memory, error)
	saveOther func(path string, ds raster.Dataset) error
)

func readImage(path string) (*raster.Memory, error) {
	_, err := imagefile.FormatOf(path)
	if errors.Is(err, imagefile.ErrUnknownFormat) && loadOther != nil {
		return loadOther(path)
	}
	return imagefile.Read(path)
}

func writeImage(path string, ds raster.Dataset) error {
	_, err := imagefile.FormatOf(path)
	if errors.Is(err, imagefile.ErrUnknownFormat) && saveOther != nil {
		return saveOther(path, ds)
	}
	if err != nil {
		return err
	}
	return imagefile.Write(path, ds)
}

// writeBand stores a single computed band, stretched to the range 0-255,
// as an 8-bit grayscale image with the size and geo-referencing of src.
func writeBand(path string, src raster.Dataset, data []float64) error {
	if len(data) != src.Width()*src.Height() {
		return fmt.Errorf("%s: %w", path, raster.ErrSizeMismatch)
	}
	out := raster.NewLike(src, 0)
	if err := out.AppendBand(raster.Stretch(data)); err != nil {
		return err
	}
	return writeImage(path, out)
}
