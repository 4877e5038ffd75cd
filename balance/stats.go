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

package balance

import (
	"fmt"
	"math"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/raster"
)

// BandStatistics summarises the byte values of one band.
type BandStatistics struct {
	Min, Max  float64
	Mean      float64
	StdDev    float64
	Count     int
	Histogram [256]int
}

// ColorStatistics summarises the red, green and blue bands of an image.
// Index 0 of every array refers to red, 1 to green and 2 to blue.
type ColorStatistics struct {
	Mean [3]float64
	Std  [3]float64
	Min  [3]float64
	Max  [3]float64
}

// checkRegion clips r to ds.  The zero rectangle selects the full image.
func checkRegion(ds raster.Dataset, r rect.IntRect) (rect.IntRect, error) {
	c := raster.Clip(ds, r)
	if c.XMax <= c.XMin || c.YMax <= c.YMin {
		return c, fmt.Errorf("region %v: %w", r, ErrEmptyRegion)
	}
	return c, nil
}

func readRegion(ds raster.Dataset, band int, r rect.IntRect) ([]uint8, error) {
	if err := raster.CheckBand(ds, band); err != nil {
		return nil, err
	}
	r, err := checkRegion(ds, r)
	if err != nil {
		return nil, err
	}
	return raster.ReadBand8(ds, band, r)
}

// Histogram counts the byte values of one band inside region.  The zero
// rectangle selects the full image.
func Histogram(ds raster.Dataset, band int, region rect.IntRect) ([256]int, error) {
	var hist [256]int
	data, err := readRegion(ds, band, region)
	if err != nil {
		return hist, err
	}
	for _, v := range data {
		hist[v]++
	}
	return hist, nil
}

// BandStats computes the statistics of one band inside region.  The zero
// rectangle selects the full image.
func BandStats(ds raster.Dataset, band int, region rect.IntRect) (*BandStatistics, error) {
	data, err := readRegion(ds, band, region)
	if err != nil {
		return nil, err
	}
	s := &BandStatistics{Count: len(data)}
	lo, hi := uint8(255), uint8(0)
	for _, v := range data {
		s.Histogram[v]++
		lo = min(lo, v)
		hi = max(hi, v)
	}
	s.Min, s.Max = float64(lo), float64(hi)
	s.Mean, s.StdDev = moments(data)
	return s, nil
}

// ColorStats computes the statistics of the first three bands of ds inside
// region.  The zero rectangle selects the full image.
func ColorStats(ds raster.Dataset, region rect.IntRect) (*ColorStatistics, error) {
	if ds.BandCount() < 3 {
		return nil, raster.ErrNotEnoughBands
	}
	s := &ColorStatistics{}
	for c := range 3 {
		data, err := readRegion(ds, c+1, region)
		if err != nil {
			return nil, err
		}
		lo, hi := uint8(255), uint8(0)
		for _, v := range data {
			lo = min(lo, v)
			hi = max(hi, v)
		}
		s.Min[c], s.Max[c] = float64(lo), float64(hi)
		s.Mean[c], s.Std[c] = moments(data)
	}
	return s, nil
}

// moments returns the mean and the (population) standard deviation.
func moments(data []uint8) (mean, std float64) {
	if len(data) == 0 {
		return math.NaN(), math.NaN()
	}
	var sum, sum2 float64
	for _, v := range data {
		x := float64(v)
		sum += x
		sum2 += x * x
	}
	n := float64(len(data))
	mean = sum / n
	return mean, math.Sqrt(max(sum2/n-mean*mean, 0))
}

// cdf returns the normalized cumulative distribution of a histogram.
func cdf(hist *[256]int) [256]float64 {
	var res [256]float64
	total := 0
	for i, n := range hist {
		total += n
		res[i] = float64(total)
	}
	if total > 0 {
		for i := range res {
			res[i] /= float64(total)
		}
	}
	return res
}
