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

package raster

import (
	"fmt"
	"math"

	"seehuhn.de/go/geom/matrix"
)

// Memory is a Dataset which keeps all samples in memory.
//
// Memory is safe for concurrent reads.  Concurrent writes, or writes
// concurrent with reads, must be synchronized by the caller.
type Memory struct {
	width, height int
	bands         [][]float64
	noData        []float64
	hasNoData     []bool

	// GeoTransform maps pixel coordinates (column, row) of the top-left
	// pixel corner to map coordinates.  The zero value means that the
	// image is not geo-referenced.
	GeoTransform matrix.Matrix

	// Projection is the coordinate reference system of the map
	// coordinates, typically as WKT.
	Projection string
}

var _ WritableDataset = (*Memory)(nil)

// NewMemory allocates a zero-filled in-memory dataset.
func NewMemory(width, height, bandCount int) *Memory {
	if width < 0 || height < 0 || bandCount < 0 {
		panic(fmt.Sprintf("invalid dataset shape %dx%dx%d", width, height, bandCount))
	}
	m := &Memory{
		width:     width,
		height:    height,
		bands:     make([][]float64, bandCount),
		noData:    make([]float64, bandCount),
		hasNoData: make([]bool, bandCount),
	}
	for i := range m.bands {
		m.bands[i] = make([]float64, width*height)
	}
	return m
}

// NewMemoryFrom creates an in-memory dataset which uses the given slices as
// band storage.  Every slice must have length width*height.
func NewMemoryFrom(width, height int, bands ...[]float64) (*Memory, error) {
	for i, b := range bands {
		if len(b) != width*height {
			return nil, fmt.Errorf("band %d: %w (have %d samples, need %d)",
				i+1, ErrSizeMismatch, len(b), width*height)
		}
	}
	return &Memory{
		width:     width,
		height:    height,
		bands:     bands,
		noData:    make([]float64, len(bands)),
		hasNoData: make([]bool, len(bands)),
	}, nil
}

// NewLike allocates an in-memory dataset with the size of src and the given
// number of bands.  If src is a *Memory, the geo-referencing is copied.
func NewLike(src Dataset, bandCount int) *Memory {
	m := NewMemory(src.Width(), src.Height(), bandCount)
	if s, ok := src.(*Memory); ok {
		m.GeoTransform = s.GeoTransform
		m.Projection = s.Projection
	}
	return m
}

// Width implements the [Dataset] interface.
func (m *Memory) Width() int { return m.width }

// Height implements the [Dataset] interface.
func (m *Memory) Height() int { return m.height }

// BandCount implements the [Dataset] interface.
func (m *Memory) BandCount() int { return len(m.bands) }

// Band gives direct access to the samples of a band.  The slice is shared
// with m.  Band panics if the index is out of range.
func (m *Memory) Band(band int) []float64 {
	return m.bands[band-1]
}

// ReadBand implements the [Dataset] interface.
func (m *Memory) ReadBand(band, x, y, w, h int) ([]float64, error) {
	if err := CheckBand(m, band); err != nil {
		return nil, err
	}
	if err := checkWindow(m.width, m.height, x, y, w, h); err != nil {
		return nil, &IOError{Op: "read", Band: band, Err: err}
	}
	src := m.bands[band-1]
	res := make([]float64, w*h)
	for row := 0; row < h; row++ {
		off := (y+row)*m.width + x
		copy(res[row*w:(row+1)*w], src[off:off+w])
	}
	return res, nil
}

// WriteBand implements the [WritableDataset] interface.
func (m *Memory) WriteBand(band, x, y, w, h int, data []float64) error {
	if err := CheckBand(m, band); err != nil {
		return err
	}
	if err := checkWindow(m.width, m.height, x, y, w, h); err != nil {
		return &IOError{Op: "write", Band: band, Err: err}
	}
	if len(data) != w*h {
		return &IOError{Op: "write", Band: band, Err: ErrSizeMismatch}
	}
	dst := m.bands[band-1]
	for row := 0; row < h; row++ {
		off := (y+row)*m.width + x
		copy(dst[off:off+w], data[row*w:(row+1)*w])
	}
	return nil
}

// NoData implements the [Dataset] interface.
func (m *Memory) NoData(band int) (float64, bool) {
	if band < 1 || band > len(m.bands) {
		return 0, false
	}
	return m.noData[band-1], m.hasNoData[band-1]
}

// SetNoData implements the [WritableDataset] interface.
func (m *Memory) SetNoData(band int, v float64) error {
	if err := CheckBand(m, band); err != nil {
		return err
	}
	m.noData[band-1] = v
	m.hasNoData[band-1] = true
	return nil
}

// Clone returns a deep copy of m.
func (m *Memory) Clone() *Memory {
	c := NewLike(m, len(m.bands))
	for i, b := range m.bands {
		copy(c.bands[i], b)
	}
	copy(c.noData, m.noData)
	copy(c.hasNoData, m.hasNoData)
	return c
}

// AppendBand adds a band to m.  The slice must have length Width*Height
// and becomes owned by m.
func (m *Memory) AppendBand(data []float64) error {
	if len(data) != m.width*m.height {
		return ErrSizeMismatch
	}
	m.bands = append(m.bands, data)
	m.noData = append(m.noData, 0)
	m.hasNoData = append(m.hasNoData, false)
	return nil
}

// PixelToMap converts pixel coordinates into map coordinates using the
// geotransform.  If no geotransform is set, the pixel coordinates are
// returned unchanged.
func (m *Memory) PixelToMap(col, row float64) (x, y float64) {
	M := m.GeoTransform
	if M == (matrix.Matrix{}) {
		return col, row
	}
	return M[0]*col + M[2]*row + M[4], M[1]*col + M[3]*row + M[5]
}

// Copy reads all bands of src into a new in-memory dataset.
func Copy(src Dataset) (*Memory, error) {
	if m, ok := src.(*Memory); ok {
		return m.Clone(), nil
	}
	w, h := src.Width(), src.Height()
	m := NewMemory(w, h, 0)
	for b := 1; b <= src.BandCount(); b++ {
		data, err := src.ReadBand(b, 0, 0, w, h)
		if err != nil {
			return nil, err
		}
		if len(data) != w*h {
			return nil, &IOError{Op: "read", Band: b, Err: ErrSizeMismatch}
		}
		m.AppendBand(data)
		if v, ok := src.NoData(b); ok {
			m.SetNoData(b, v)
		}
	}
	return m, nil
}

// Stretch maps data linearly so that its finite minimum becomes 0 and its
// finite maximum becomes 255.  NaN and infinite values map to 0.  A
// constant input maps to 0.
func Stretch(data []float64) []float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	res := make([]float64, len(data))
	if !(hi > lo) {
		return res
	}
	scale := 255 / (hi - lo)
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		res[i] = (v - lo) * scale
	}
	return res
}
