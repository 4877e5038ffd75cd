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

// Package balance adjusts the colours of images so that they match a
// reference image, for example before the images are mosaicked.
//
// Regions are given as [rect.IntRect] values in pixel coordinates.  The
// zero rectangle selects the full image.
package balance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/internal/parallel"
	"seehuhn.de/go/raster/tone"
)

var (
	// ErrBandCountMismatch is returned when an image and its reference do
	// not have the same number of bands.
	ErrBandCountMismatch = errors.New("band counts do not match")

	// ErrEmptyRegion is returned when a region does not contain any
	// pixels of the image.
	ErrEmptyRegion = errors.New("empty region")
)

// Method selects a colour balancing algorithm.
type Method int

// These are the supported balancing methods.
const (
	MethodMeanStd Method = iota
	MethodHistogramMatch
	MethodWallis
	MethodMoment
	MethodLinearRegression
	MethodDodging
)

var methodNames = []string{
	MethodMeanStd:          "meanstd",
	MethodHistogramMatch:   "histmatch",
	MethodWallis:           "wallis",
	MethodMoment:           "moment",
	MethodLinearRegression: "linreg",
	MethodDodging:          "dodging",
}

func (m Method) String() string {
	if m >= 0 && int(m) < len(methodNames) {
		return methodNames[m]
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod returns the method with the given name, as returned by
// [Method.String].
func ParseMethod(name string) (Method, error) {
	for m, n := range methodNames {
		if n == name {
			return Method(m), nil
		}
	}
	return 0, fmt.Errorf("unknown balancing method %q", name)
}

// Params configures [Balance] and [Batch].
type Params struct {
	Method Method

	// Strength is used by MethodMeanStd, MethodDodging and by
	// MethodLinearRegression without overlap.  It is clamped to [0, 1].
	Strength float64

	// Overlap is the area shared by the image and the reference.  The zero
	// rectangle means that no overlap is known.
	Overlap rect.IntRect

	// TargetMean, TargetStd, WallisC and WallisB are the parameters of
	// MethodWallis, see [tone.WallisParams].
	TargetMean float64
	TargetStd  float64
	WallisC    float64
	WallisB    float64
}

// DefaultParams returns mean/standard deviation matching at full strength.
func DefaultParams() Params {
	return Params{
		Method:     MethodMeanStd,
		Strength:   1,
		TargetMean: 128,
		TargetStd:  50,
		WallisC:    0.8,
		WallisB:    0.8,
	}
}

// Balance adjusts src towards ref using the method selected in p.  The
// reference statistics are computed over the full reference image.
func Balance(src, ref raster.Dataset, p Params) (*raster.Memory, error) {
	b := &balancer{ref: ref, p: p}
	return b.run(src)
}

// usesRefStats reports whether the method needs the statistics of the full
// reference image.
func (p *Params) usesRefStats() bool {
	switch p.Method {
	case MethodHistogramMatch, MethodWallis, MethodMoment, MethodDodging:
		return false
	case MethodLinearRegression:
		return p.Overlap == (rect.IntRect{})
	}
	return true
}

// balancer computes the reference statistics once for a batch.
type balancer struct {
	ref      raster.Dataset
	p        Params
	refStats *ColorStatistics
}

func (b *balancer) stats() (*ColorStatistics, error) {
	if b.refStats == nil {
		s, err := ColorStats(b.ref, rect.IntRect{})
		if err != nil {
			return nil, fmt.Errorf("reference: %w", err)
		}
		b.refStats = s
	}
	return b.refStats, nil
}

func (b *balancer) run(src raster.Dataset) (*raster.Memory, error) {
	p := &b.p
	switch p.Method {
	case MethodHistogramMatch:
		return HistogramMatch(src, b.ref, p.Overlap, p.Overlap)
	case MethodWallis:
		return tone.Wallis(src, tone.WallisParams{
			TargetMean: p.TargetMean,
			TargetStd:  p.TargetStd,
			C:          p.WallisC,
			B:          p.WallisB,
			Window:     tone.DefaultWallisWindow,
		})
	case MethodMoment:
		return MomentMatch(src, b.ref, p.Overlap, p.Overlap)
	case MethodLinearRegression:
		if p.Overlap != (rect.IntRect{}) {
			return LinearRegression(src, b.ref, p.Overlap)
		}
	case MethodDodging:
		return Dodging(src, DefaultDodgingBlock, p.Strength)
	}

	refStats, err := b.stats()
	if err != nil {
		return nil, err
	}
	region := p.Overlap
	if p.Method != MethodMeanStd {
		region = rect.IntRect{}
	}
	return MeanStdMatch(src, refStats, region, p.Strength)
}

// Option configures [Batch].
type Option func(*options)

type options struct {
	workers int
	logger  *slog.Logger
}

// WithWorkers sets the number of images processed concurrently.  Values
// n <= 0 select the number of usable CPUs.
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

// Batch balances every image in srcs against the same reference.  The
// images are processed concurrently.  If any image fails, or if ctx is
// cancelled, Batch returns the first error and no results.
//
// Unless ref is a [*raster.Memory], it is read into memory before the
// workers start.  Each entry of srcs is read by a single goroutine, so the
// same dataset must not appear twice unless it supports concurrent reads.
func Batch(ctx context.Context, srcs []raster.Dataset, ref raster.Dataset, p Params, opts ...Option) ([]*raster.Memory, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	if _, ok := ref.(*raster.Memory); !ok && ref != nil {
		// the workers read the reference concurrently
		m, err := raster.Copy(ref)
		if err != nil {
			return nil, fmt.Errorf("reference: %w", err)
		}
		ref = m
	}

	b := &balancer{ref: ref, p: p}
	if p.usesRefStats() {
		// the workers share the reference statistics
		if _, err := b.stats(); err != nil {
			return nil, err
		}
	}

	res := make([]*raster.Memory, len(srcs))
	err := parallel.Each(ctx, o.workers, len(srcs), func(ctx context.Context, i int) error {
		o.logger.Debug("balancing image", "index", i, "method", p.Method)
		out, err := b.run(srcs[i])
		if err != nil {
			return fmt.Errorf("image %d: %w", i, err)
		}
		res[i] = out
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Auto matches the colour statistics of src to those of ref at 80%
// strength.
func Auto(src, ref raster.Dataset) (*raster.Memory, error) {
	refStats, err := ColorStats(ref, rect.IntRect{})
	if err != nil {
		return nil, err
	}
	return MeanStdMatch(src, refStats, rect.IntRect{}, 0.8)
}

// Smart chooses a balancing method from the statistics of the overlap area
// in both images.  Large differences are handled by histogram matching.
// Otherwise a linear regression is used if the overlap is larger than
// 100×100 pixels, and mean/standard deviation matching if not.
func Smart(src, ref raster.Dataset, overlap rect.IntRect) (*raster.Memory, error) {
	srcStats, err := ColorStats(src, overlap)
	if err != nil {
		return nil, err
	}
	refStats, err := ColorStats(ref, overlap)
	if err != nil {
		return nil, err
	}

	var meanDiff, stdDiff float64
	for c := range 3 {
		meanDiff += math.Abs(srcStats.Mean[c] - refStats.Mean[c])
		stdDiff += math.Abs(srcStats.Std[c] - refStats.Std[c])
	}
	meanDiff /= 3
	stdDiff /= 3

	switch {
	case meanDiff > 50 || stdDiff > 30:
		return HistogramMatch(src, ref, overlap, overlap)
	case overlap.XMax-overlap.XMin > 100 && overlap.YMax-overlap.YMin > 100:
		return LinearRegression(src, ref, overlap)
	default:
		return MeanStdMatch(src, refStats, overlap, 0.9)
	}
}
