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

// Package tone implements tone curves and colour adjustments for 8-bit
// raster images.
//
// All functions in this package read the samples of the input dataset as
// bytes (see [raster.ReadBand8]) and return a new [raster.Memory] with the
// same size and number of bands.  The geo-referencing of an in-memory input
// is copied to the output.  The input is never modified.
//
// Most operations work on every band independently.  [Adjust] and
// [AutoWhiteBalance] interpret the first three bands of a dataset as red,
// green and blue.
package tone

import (
	"errors"

	"seehuhn.de/go/raster"
)

// ErrInvalidParameter is returned when a parameter is outside its valid
// range.
var ErrInvalidParameter = errors.New("invalid parameter")

// checkBandSelector verifies that band is 0 (all bands) or a valid band
// index of ds.
func checkBandSelector(ds raster.Dataset, band int) error {
	if band == 0 {
		return nil
	}
	return raster.CheckBand(ds, band)
}
