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

package gdalds

import (
	"errors"
	"fmt"
	"sync"

	"github.com/lukeroth/gdal"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/raster"
)

// DefaultDriver is the GDAL driver used by [Create] and [Save] when no
// driver name is given.
const DefaultDriver = "GTiff"

// Dataset is a raster file opened through GDAL.  It implements
// [raster.WritableDataset].
//
// GDAL dataset handles are not safe for concurrent use.  All band access
// through a Dataset is serialized.
type Dataset struct {
	mu     sync.Mutex
	ds     gdal.Dataset
	closed bool
}

var _ raster.WritableDataset = (*Dataset)(nil)

// Open opens an existing raster file.  If update is true, the file is
// opened for writing.
func Open(path string, update bool) (*Dataset, error) {
	access := gdal.ReadOnly
	if update {
		access = gdal.Update
	}
	ds, err := gdal.Open(path, access)
	if err != nil {
		return nil, fmt.Errorf("gdal: open %q: %w", path, err)
	}
	return &Dataset{ds: ds}, nil
}

// Create creates a new raster file with float64 samples.  If driver is
// empty, [DefaultDriver] is used.
func Create(path, driver string, width, height, bandCount int) (*Dataset, error) {
	if driver == "" {
		driver = DefaultDriver
	}
	drv, err := gdal.GetDriverByName(driver)
	if err != nil {
		return nil, fmt.Errorf("gdal: driver %q: %w", driver, err)
	}
	ds := drv.Create(path, width, height, bandCount, gdal.Float64, nil)
	return &Dataset{ds: ds}, nil
}

// Close releases the GDAL handle.  Pending writes are flushed to disk.
func (d *Dataset) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.closed {
		d.ds.Close()
		d.closed = true
	}
	return nil
}

// Width implements [raster.Dataset].
func (d *Dataset) Width() int { return d.ds.RasterXSize() }

// Height implements [raster.Dataset].
func (d *Dataset) Height() int { return d.ds.RasterYSize() }

// BandCount implements [raster.Dataset].
func (d *Dataset) BandCount() int { return d.ds.RasterCount() }

// ReadBand implements [raster.Dataset].
func (d *Dataset) ReadBand(band, x, y, w, h int) ([]float64, error) {
	if err := d.check(band, x, y, w, h); err != nil {
		return nil, err
	}
	buf := make([]float64, w*h)
	if w*h == 0 {
		return buf, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.ds.RasterBand(band).IO(gdal.Read, x, y, w, h, buf, w, h, 0, 0)
	if err != nil {
		return nil, &raster.IOError{Op: "read", Band: band, Err: err}
	}
	return buf, nil
}

// WriteBand implements [raster.WritableDataset].
func (d *Dataset) WriteBand(band, x, y, w, h int, data []float64) error {
	if err := d.check(band, x, y, w, h); err != nil {
		return err
	}
	if len(data) != w*h {
		return &raster.IOError{Op: "write", Band: band, Err: raster.ErrSizeMismatch}
	}
	if w*h == 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	err := d.ds.RasterBand(band).IO(gdal.Write, x, y, w, h, data, w, h, 0, 0)
	if err != nil {
		return &raster.IOError{Op: "write", Band: band, Err: err}
	}
	return nil
}

// NoData implements [raster.Dataset].
func (d *Dataset) NoData(band int) (float64, bool) {
	if raster.CheckBand(d, band) != nil {
		return 0, false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ds.RasterBand(band).NoDataValue()
}

// SetNoData implements [raster.WritableDataset].
func (d *Dataset) SetNoData(band int, v float64) error {
	if err := raster.CheckBand(d, band); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ds.RasterBand(band).SetNoDataValue(v); err != nil {
		return &raster.IOError{Op: "write", Band: band, Err: err}
	}
	return nil
}

// GeoTransform returns the affine map from pixel to map coordinates.
func (d *Dataset) GeoTransform() matrix.Matrix {
	d.mu.Lock()
	defer d.mu.Unlock()
	return FromGeoTransform(d.ds.GeoTransform())
}

// Projection returns the coordinate reference system as WKT.
func (d *Dataset) Projection() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ds.Projection()
}

func (d *Dataset) check(band, x, y, w, h int) error {
	if err := raster.CheckBand(d, band); err != nil {
		return err
	}
	width, height := d.Width(), d.Height()
	if x < 0 || y < 0 || w < 0 || h < 0 || x+w > width || y+h > height {
		return fmt.Errorf("window %dx%d+%d+%d outside %dx%d image",
			w, h, x, y, width, height)
	}
	return nil
}

// Load reads a complete raster file into memory, including its
// geo-referencing.
func Load(path string) (*raster.Memory, error) {
	d, err := Open(path, false)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	m, err := raster.Copy(d)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	m.GeoTransform = d.GeoTransform()
	m.Projection = d.Projection()
	return m, nil
}

// Save writes src to a new raster file.  If src is a [*raster.Memory], its
// geo-referencing is written as well.
func Save(path, driver string, src raster.Dataset) (err error) {
	w, h, n := src.Width(), src.Height(), src.BandCount()
	d, err := Create(path, driver, w, h, n)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, d.Close())
	}()

	if m, ok := src.(*raster.Memory); ok {
		if err := d.ds.SetGeoTransform(ToGeoTransform(m.GeoTransform)); err != nil {
			return fmt.Errorf("gdal: set geotransform: %w", err)
		}
		if m.Projection != "" {
			if err := d.ds.SetProjection(m.Projection); err != nil {
				return fmt.Errorf("gdal: set projection: %w", err)
			}
		}
	}

	for b := 1; b <= n; b++ {
		data, err := src.ReadBand(b, 0, 0, w, h)
		if err != nil {
			return err
		}
		if err := d.WriteBand(b, 0, 0, w, h, data); err != nil {
			return err
		}
		if v, ok := src.NoData(b); ok {
			if err := d.SetNoData(b, v); err != nil {
				return err
			}
		}
	}
	return nil
}
