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

package calc

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"

	"golang.org/x/exp/maps"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/expr"
	"seehuhn.de/go/raster/internal/parallel"
)

// Option configures a Calculator or BlockCalculator.
type Option func(*options)

type options struct {
	workers int
	logger  *slog.Logger
}

// WithWorkers sets the number of goroutines used to evaluate pixels.
// Values n <= 0 select the number of usable CPUs.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithLogger sets the logger for debug messages.  The default is
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Calculator evaluates expressions over a dataset.
type Calculator struct {
	ds      raster.Dataset
	workers int
	log     *slog.Logger

	// readMu serializes calls to ds.ReadBand.
	readMu sync.Mutex
}

// New returns a Calculator for the given dataset.
func New(ds raster.Dataset, opts ...Option) *Calculator {
	o := newOptions(opts)
	return &Calculator{
		ds:      ds,
		workers: o.workers,
		log:     o.logger,
	}
}

// Calculate compiles src and evaluates it for every pixel of the dataset.
// The result is row-major and has Width*Height elements.
func (c *Calculator) Calculate(src string) ([]float64, error) {
	e, err := expr.Compile(src)
	if err != nil {
		return nil, err
	}
	return c.CalculateExpr(e)
}

// CalculateExpr evaluates a compiled expression for every pixel.
func (c *Calculator) CalculateExpr(e *expr.Expression) ([]float64, error) {
	return c.evaluate(e, nil, 0, raster.Region(c.ds), c.workers)
}

// CalculateWithCondition is like Calculate, but pixels for which the
// condition evaluates to 0 or NaN are set to noData instead.  For these
// pixels src is not evaluated.  An empty condition is the same as no
// condition.
func (c *Calculator) CalculateWithCondition(src, cond string, noData float64) ([]float64, error) {
	e, err := expr.Compile(src)
	if err != nil {
		return nil, err
	}
	var ce *expr.Expression
	if cond != "" {
		ce, err = expr.Compile(cond)
		if err != nil {
			return nil, err
		}
	}
	return c.CalculateExprWithCondition(e, ce, noData)
}

// CalculateExprWithCondition is like CalculateWithCondition for compiled
// expressions.  cond may be nil.
func (c *Calculator) CalculateExprWithCondition(e, cond *expr.Expression, noData float64) ([]float64, error) {
	return c.evaluate(e, cond, noData, raster.Region(c.ds), c.workers)
}

// CalculateAndWrite evaluates src and stores the result in the band target
// of the dataset, which must implement [raster.WritableDataset].
func (c *Calculator) CalculateAndWrite(src string, target int) error {
	w, ok := c.ds.(raster.WritableDataset)
	if !ok {
		return errors.New("dataset is read-only")
	}
	if err := raster.CheckBand(c.ds, target); err != nil {
		return fmt.Errorf("invalid target: %w", err)
	}
	res, err := c.Calculate(src)
	if err != nil {
		return err
	}
	width, height := c.ds.Width(), c.ds.Height()
	if len(res) != width*height {
		return fmt.Errorf("result has %d samples, expected %d: %w",
			len(res), width*height, raster.ErrSizeMismatch)
	}
	return w.WriteBand(target, 0, 0, width, height, res)
}

// BatchResult is the outcome of one expression in CalculateBatch.
type BatchResult struct {
	Expression string
	Data       []float64
	Err        error
}

// CalculateBatch evaluates several expressions independently.  A failing
// expression does not affect the others.
func (c *Calculator) CalculateBatch(srcs []string) []BatchResult {
	res := make([]BatchResult, len(srcs))
	for i, src := range srcs {
		data, err := c.Calculate(src)
		res[i] = BatchResult{Expression: src, Data: data, Err: err}
	}
	return res
}

// evaluate runs e, and optionally the condition cond, over the rectangle r.
func (c *Calculator) evaluate(e, cond *expr.Expression, noData float64, r rect.IntRect, workers int) ([]float64, error) {
	used := make(map[int]struct{})
	for _, b := range e.Bands() {
		used[b] = struct{}{}
	}
	if cond != nil {
		for _, b := range cond.Bands() {
			used[b] = struct{}{}
		}
	}
	bands := maps.Keys(used)
	slices.Sort(bands)

	for _, b := range bands {
		if err := raster.CheckBand(c.ds, b); err != nil {
			return nil, err
		}
	}

	n := (r.XMax - r.XMin) * (r.YMax - r.YMin)
	c.log.Debug("evaluate expression",
		"expr", e.String(), "bands", bands, "pixels", n)

	data, err := c.readRegion(bands, r)
	if err != nil {
		return nil, err
	}

	ev, err := e.Bind(data)
	if err != nil {
		return nil, err
	}
	out := make([]float64, n)
	if cond == nil {
		parallel.For(workers, n, func(start, end int) {
			ev.Fill(out, start, end)
		})
		return out, nil
	}

	cv, err := cond.Bind(data)
	if err != nil {
		return nil, err
	}
	parallel.For(workers, n, func(start, end int) {
		stack := ev.NewStack()
		cstack := cv.NewStack()
		for i := start; i < end; i++ {
			if x := cv.At(i, cstack); x == 0 || math.IsNaN(x) {
				out[i] = noData
				continue
			}
			out[i] = ev.At(i, stack)
		}
	})
	return out, nil
}

// readRegion reads the rectangle r of the given bands.  Concurrent calls,
// as made by BlockCalculator.All, take turns.
func (c *Calculator) readRegion(bands []int, r rect.IntRect) (map[int][]float64, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	n := (r.XMax - r.XMin) * (r.YMax - r.YMin)
	data := make(map[int][]float64, len(bands))
	for _, b := range bands {
		buf, err := raster.ReadRegion(c.ds, b, r)
		if err != nil {
			return nil, readError(b, err)
		}
		if len(buf) != n {
			return nil, &raster.IOError{Op: "read", Band: b, Err: raster.ErrSizeMismatch}
		}
		data[b] = buf
	}
	return data, nil
}

// readBands reads the full extent of the given bands, after checking that
// all band indices are valid.
func (c *Calculator) readBands(bands ...int) ([][]float64, error) {
	for _, b := range bands {
		if err := raster.CheckBand(c.ds, b); err != nil {
			return nil, err
		}
	}
	r := raster.Region(c.ds)
	n := c.ds.Width() * c.ds.Height()
	res := make([][]float64, len(bands))
	for i, b := range bands {
		buf, err := raster.ReadRegion(c.ds, b, r)
		if err != nil {
			return nil, readError(b, err)
		}
		if len(buf) != n {
			return nil, &raster.IOError{Op: "read", Band: b, Err: raster.ErrSizeMismatch}
		}
		res[i] = buf
	}
	return res, nil
}

// readError makes sure that storage failures are reported as
// *raster.IOError.
func readError(band int, err error) error {
	var ioErr *raster.IOError
	var rangeErr *raster.BandRangeError
	if errors.As(err, &ioErr) || errors.As(err, &rangeErr) {
		return err
	}
	return &raster.IOError{Op: "read", Band: band, Err: err}
}
