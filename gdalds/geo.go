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

// Package gdalds gives access to raster files through the GDAL library.
//
// The GDAL binding needs cgo and an installed GDAL library, and is only
// compiled when the "gdal" build tag is set:
//
//	go build -tags gdal ./...
//
// Without the tag, only the conversion between GDAL geotransforms and
// [matrix.Matrix] values is available.
package gdalds

import (
	"seehuhn.de/go/geom/matrix"
)

// FromGeoTransform converts a GDAL geotransform into the affine map used by
// [raster.Memory].
//
// GDAL maps pixel (col, row) to x = gt[0] + col·gt[1] + row·gt[2] and
// y = gt[3] + col·gt[4] + row·gt[5].
func FromGeoTransform(gt [6]float64) matrix.Matrix {
	return matrix.Matrix{gt[1], gt[4], gt[2], gt[5], gt[0], gt[3]}
}

// ToGeoTransform is the inverse of [FromGeoTransform].
func ToGeoTransform(m matrix.Matrix) [6]float64 {
	return [6]float64{m[4], m[0], m[2], m[5], m[1], m[3]}
}
