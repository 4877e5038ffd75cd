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

// Package raster provides the storage contract shared by the band algebra and
// colour correction packages of this module.
//
// A [Dataset] is a rectangular multi-band image.  Bands are numbered from 1.
// Samples are exchanged as dense row-major float64 slices, independent of the
// sample type used by the underlying storage, so that no precision is lost
// between reading a band and evaluating an expression over it.
//
// [Memory] is an in-memory implementation.  It is used for all derived
// images produced by the engines in this module:
//
//	ds := raster.NewMemory(512, 512, 3)
//	copy(ds.Band(1), red)
//	...
//	out, err := tone.AutoContrast(ds)
//
// File backed datasets live in the imagefile and gdalds packages.
package raster
