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
	"errors"
	"strconv"
)

var (
	// ErrSizeMismatch indicates that a sample buffer does not have the
	// length required by the rectangle it is read from or written to.
	ErrSizeMismatch = errors.New("buffer size does not match region")

	// ErrNotEnoughBands is returned by colour operations which need at
	// least three bands.
	ErrNotEnoughBands = errors.New("at least three bands are required")
)

// BandRangeError indicates that a band index is outside the valid range
// [1, Count].
type BandRangeError struct {
	Band  int
	Count int
}

func (err *BandRangeError) Error() string {
	return "band " + strconv.Itoa(err.Band) +
		" out of range (valid: 1-" + strconv.Itoa(err.Count) + ")"
}

// Is reports whether target is a *BandRangeError.
func (err *BandRangeError) Is(target error) bool {
	_, ok := target.(*BandRangeError)
	return ok
}

// IOError wraps a failure of the underlying storage while reading or writing
// a band.
type IOError struct {
	Op   string // "read" or "write"
	Band int
	Err  error
}

func (err *IOError) Error() string {
	tail := ""
	if err.Err != nil {
		tail = ": " + err.Err.Error()
	}
	return err.Op + " band " + strconv.Itoa(err.Band) + tail
}

func (err *IOError) Unwrap() error {
	return err.Err
}

// CheckBand returns a *BandRangeError if band is not a valid band index
// for ds.
func CheckBand(ds Dataset, band int) error {
	n := ds.BandCount()
	if band < 1 || band > n {
		return &BandRangeError{Band: band, Count: n}
	}
	return nil
}
