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

//go:build gdal

package main

import (
	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/gdalds"
)

func init() {
	loadOther = gdalds.Load
	saveOther = func(path string, ds raster.Dataset) error {
		return gdalds.Save(path, gdalds.DefaultDriver, ds)
	}
}
