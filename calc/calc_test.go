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
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/expr"
)

// testDataset wraps a raster.Memory, counts reads and can be made to fail
// reading one band.
type testDataset struct {
	*raster.Memory
	failBand int
	reads    int
}

var errBroken = errors.New("broken disk")

func (ds *testDataset) ReadBand(band, x, y, w, h int) ([]float64, error) {
	ds.reads++
	if band == ds.failBand {
		return nil, errBroken
	}
	return ds.Memory.ReadBand(band, x, y, w, h)
}

func newTestDataset(t *testing.T, width, height int, bands ...[]float64) *testDataset {
	t.Helper()
	m, err := raster.NewMemoryFrom(width, height, bands...)
	if err != nil {
		t.Fatal(err)
	}
	return &testDataset{Memory: m}
}

// ramp returns a band with values offset, offset+1, ...
func ramp(n int, offset float64) []float64 {
	res := make([]float64, n)
	for i := range res {
		res[i] = offset + float64(i)
	}
	return res
}

var equateNaN = cmpopts.EquateNaNs()

func TestCalculate(t *testing.T) {
	ds := newTestDataset(t, 3, 2,
		[]float64{1, 2, 3, 4, 5, 6},
		[]float64{1, 0, 1, 0, 2, 2},
		[]float64{9, 9, 9, 9, 9, 9})
	c := New(ds, WithWorkers(2))

	got, err := c.Calculate("b1 / b2")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1, math.NaN(), 3, math.NaN(), 2.5, 3}
	if d := cmp.Diff(want, got, equateNaN); d != "" {
		t.Errorf("b1/b2 mismatch (-want +got):\n%s", d)
	}

	// band 3 is not used and must not be read
	if ds.reads != 2 {
		t.Errorf("%d band reads, want 2", ds.reads)
	}
}

func TestCalculateConstant(t *testing.T) {
	ds := newTestDataset(t, 2, 2, ramp(4, 0))
	got, err := New(ds).Calculate("2 ^ 3 ^ 2")
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]float64{512, 512, 512, 512}, got); d != "" {
		t.Errorf("mismatch (-want +got):\n%s", d)
	}
}

func TestCalculateWithCondition(t *testing.T) {
	ds := newTestDataset(t, 2, 1, []float64{50, 200})
	got, err := New(ds).CalculateWithCondition("b1*2", "b1>100", -9999)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]float64{-9999, 400}, got); d != "" {
		t.Errorf("mismatch (-want +got):\n%s", d)
	}
}

func TestConditionNaN(t *testing.T) {
	ds := newTestDataset(t, 3, 1,
		[]float64{1, 0, 5},
		[]float64{1, 0, 0})
	// condition b1/b2 is 1, NaN, NaN
	got, err := New(ds).CalculateWithCondition("b1 + 100", "b1 / b2", -1)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]float64{101, -1, -1}, got); d != "" {
		t.Errorf("mismatch (-want +got):\n%s", d)
	}

	got, err = New(ds).CalculateWithCondition("b1 + 100", "", -1)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]float64{101, 100, 105}, got); d != "" {
		t.Errorf("empty condition (-want +got):\n%s", d)
	}
}

func TestConditionBandsReadOnce(t *testing.T) {
	ds := newTestDataset(t, 2, 1, []float64{1, 2}, []float64{3, 4})
	_, err := New(ds).CalculateWithCondition("b1 + b2", "b2 > b1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if ds.reads != 2 {
		t.Errorf("%d band reads, want 2", ds.reads)
	}
}

func TestBandRangeBeforeIO(t *testing.T) {
	ds := newTestDataset(t, 2, 1, []float64{1, 2}, []float64{3, 4})
	c := New(ds)

	tests := []struct {
		name string
		run  func() error
	}{
		{"main expression", func() error {
			_, err := c.Calculate("b1 + b3")
			return err
		}},
		{"condition", func() error {
			_, err := c.CalculateWithCondition("b1", "b5 > 0", 0)
			return err
		}},
		{"ndvi", func() error {
			_, err := c.NDVI(1, 4)
			return err
		}},
		{"band zero", func() error {
			_, err := c.Calculate("b0 + b1")
			return err
		}},
		{"replace", func() error {
			_, err := c.ReplaceRange(9, 0, 1, 0)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds.reads = 0
			err := tt.run()
			if !errors.Is(err, &raster.BandRangeError{}) {
				t.Errorf("got %v, want BandRangeError", err)
			}
			if ds.reads != 0 {
				t.Errorf("%d reads before band validation", ds.reads)
			}
		})
	}
}

func TestCompileErrorPropagates(t *testing.T) {
	ds := newTestDataset(t, 1, 1, []float64{1})
	_, err := New(ds).Calculate("min(b1)")
	if !errors.Is(err, &expr.CompileError{}) {
		t.Errorf("got %v, want CompileError", err)
	}
	_, err = New(ds).CalculateWithCondition("b1", "foo(b1)", 0)
	if !errors.Is(err, &expr.CompileError{}) {
		t.Errorf("condition: got %v, want CompileError", err)
	}
}

func TestReadFailure(t *testing.T) {
	ds := newTestDataset(t, 2, 1, []float64{1, 2}, []float64{3, 4})
	ds.failBand = 2
	res, err := New(ds).Calculate("b1 + b2")
	if res != nil {
		t.Error("partial result returned")
	}
	var ioErr *raster.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("got %v, want IOError", err)
	}
	if ioErr.Band != 2 || !errors.Is(err, errBroken) {
		t.Errorf("unexpected error %v", err)
	}
}

func TestConditionalReplace(t *testing.T) {
	ds := newTestDataset(t, 6, 1, []float64{0, 10, 20, 30, 40, math.NaN()})
	rules := []ReplaceRule{
		{Min: 0, Max: 10, Value: 1, IncludeMin: true, IncludeMax: true},
		{Min: 5, Max: 30, Value: 2},
		{Min: 0, Max: 100, Value: 3, IncludeMin: true},
	}
	got, err := New(ds).ConditionalReplace(1, rules)
	if err != nil {
		t.Fatal(err)
	}
	// 10 matches the first and second rule; the first one wins.
	want := []float64{1, 1, 2, 3, 3, math.NaN()}
	if d := cmp.Diff(want, got, equateNaN); d != "" {
		t.Errorf("mismatch (-want +got):\n%s", d)
	}

	got, err = New(ds).ReplaceRange(1, 10, 30, -1)
	if err != nil {
		t.Fatal(err)
	}
	want = []float64{0, -1, -1, 30, 40, math.NaN()}
	if d := cmp.Diff(want, got, equateNaN); d != "" {
		t.Errorf("ReplaceRange mismatch (-want +got):\n%s", d)
	}

	if _, err := New(ds).ConditionalReplace(1, nil); err == nil {
		t.Error("empty rule list accepted")
	}
}

func TestIndices(t *testing.T) {
	nir := []float64{0.5, 0, 0.8, 0.5}
	red := []float64{0.1, 0, 0.2, 1}
	blue := []float64{0.05, 0, 0.1, 1} // EVI denominator of pixel 3 is zero
	ds := newTestDataset(t, 4, 1, nir, red, blue)
	c := New(ds)
	approx := cmpopts.EquateApprox(0, 1e-12)

	ndvi, err := c.NDVI(1, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.4 / 0.6, math.NaN(), 0.6, -0.5 / 1.5}
	if d := cmp.Diff(want, ndvi, equateNaN, approx); d != "" {
		t.Errorf("NDVI mismatch (-want +got):\n%s", d)
	}

	ndwi, err := c.NDWI(2, 1)
	if err != nil {
		t.Fatal(err)
	}
	want = []float64{-0.4 / 0.6, math.NaN(), -0.6, 0.5 / 1.5}
	if d := cmp.Diff(want, ndwi, equateNaN, approx); d != "" {
		t.Errorf("NDWI mismatch (-want +got):\n%s", d)
	}

	evi, err := c.EVI(1, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	want = []float64{
		2.5 * 0.4 / (0.5 + 0.6 - 0.375 + 1),
		0,
		2.5 * 0.6 / (0.8 + 1.2 - 0.75 + 1),
		math.NaN(),
	}
	if d := cmp.Diff(want, evi, equateNaN, approx); d != "" {
		t.Errorf("EVI mismatch (-want +got):\n%s", d)
	}
}

func TestExpressionIndices(t *testing.T) {
	ds := newTestDataset(t, 3, 1,
		[]float64{0.6, 0.3, 0.1}, // nir
		[]float64{0.2, 0.3, 0.1}, // red
		[]float64{0.4, 0.1, 0.5}, // swir
	)
	c := New(ds)

	savi, err := c.SAVI(1, 2, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.4 / 1.3 * 1.5, 0, 0}
	if d := cmp.Diff(want, savi, cmpopts.EquateApprox(0, 1e-12)); d != "" {
		t.Errorf("SAVI mismatch (-want +got):\n%s", d)
	}

	ndbi, err := c.NDBI(3, 1)
	if err != nil {
		t.Fatal(err)
	}
	want = []float64{-0.2, -0.5, 4.0 / 6}
	if d := cmp.Diff(want, ndbi, cmpopts.EquateApprox(0, 1e-12)); d != "" {
		t.Errorf("NDBI mismatch (-want +got):\n%s", d)
	}

	mndwi, err := c.MNDWI(2, 3)
	if err != nil {
		t.Fatal(err)
	}
	ndsi, err := c.NDSI(2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(mndwi, ndsi); d != "" {
		t.Errorf("MNDWI and NDSI differ:\n%s", d)
	}
}

func TestLAI(t *testing.T) {
	cases := []struct {
		ndvi, lai float64
	}{
		{0.9, 6},
		{0.69, 6},
		{0.1, 0},
		{-0.5, 0},
		{0.1 + 0.59*(1-math.Exp(-0.91)), 1},
		{math.NaN(), math.NaN()},
	}
	for _, c := range cases {
		got := laiFromNDVI(c.ndvi)
		if !cmp.Equal(got, c.lai, equateNaN, cmpopts.EquateApprox(0, 1e-9)) {
			t.Errorf("LAI(%g) = %g, want %g", c.ndvi, got, c.lai)
		}
	}
}

func TestCalculateAndWrite(t *testing.T) {
	m, _ := raster.NewMemoryFrom(2, 2, ramp(4, 1), make([]float64, 4))
	c := New(m)
	if err := c.CalculateAndWrite("b1 * 10", 2); err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]float64{10, 20, 30, 40}, m.Band(2)); d != "" {
		t.Errorf("mismatch (-want +got):\n%s", d)
	}
	err := c.CalculateAndWrite("b1", 3)
	if !errors.Is(err, &raster.BandRangeError{}) {
		t.Errorf("invalid target: got %v", err)
	}
}

func TestCalculateBatch(t *testing.T) {
	ds := newTestDataset(t, 2, 1, []float64{1, 2})
	res := New(ds).CalculateBatch([]string{"b1 + 1", "foo(b1)", "b1 * b1"})
	if len(res) != 3 {
		t.Fatalf("%d results", len(res))
	}
	if res[0].Err != nil || res[2].Err != nil {
		t.Errorf("unexpected errors %v, %v", res[0].Err, res[2].Err)
	}
	if res[1].Err == nil || res[1].Data != nil {
		t.Error("invalid expression did not fail cleanly")
	}
	if d := cmp.Diff([]float64{1, 4}, res[2].Data); d != "" {
		t.Errorf("third result (-want +got):\n%s", d)
	}
}

func TestBlockClipping(t *testing.T) {
	n := 100 * 100
	ds := newTestDataset(t, 100, 100, ramp(n, 0))
	bc, err := NewBlockCalculator(ds, "b1 * 2", 64, 64)
	if err != nil {
		t.Fatal(err)
	}
	nx, ny := bc.BlockCount()
	if nx != 2 || ny != 2 {
		t.Fatalf("grid %dx%d, want 2x2", nx, ny)
	}

	data, w, h, err := bc.Block(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if w != 36 || h != 36 || len(data) != 36*36 {
		t.Fatalf("block (1,1) is %dx%d with %d samples, want 36x36", w, h, len(data))
	}
	// top-left pixel of block (1,1) is image pixel (64, 64)
	if data[0] != 2*(64*100+64) {
		t.Errorf("first sample %g", data[0])
	}

	_, w, h, _ = bc.Block(0, 1)
	if w != 64 || h != 36 {
		t.Errorf("block (0,1) is %dx%d, want 64x36", w, h)
	}

	if _, _, _, err := bc.Block(2, 0); err == nil {
		t.Error("block outside the grid accepted")
	}
}

func TestBlockAll(t *testing.T) {
	ds := newTestDataset(t, 37, 23, ramp(37*23, 0), ramp(37*23, 5))
	bc, err := NewBlockCalculator(ds, "b1 - b2 * 0.5", 8, 5, WithWorkers(3))
	if err != nil {
		t.Fatal(err)
	}
	got, err := bc.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ds.reads != 2*5*5 {
		t.Errorf("%d band reads, want %d", ds.reads, 2*5*5)
	}
	want, err := New(ds).Calculate("b1 - b2 * 0.5")
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("stitched blocks differ from full calculation (-want +got):\n%s", d)
	}
}

// exclusiveDataset records whether ReadBand was ever entered by two
// goroutines at the same time.  It keeps no other state, so that the race
// detector reports only unsynchronized access in the code under test.
type exclusiveDataset struct {
	*raster.Memory
	active  atomic.Int32
	overlap atomic.Bool
}

func (ds *exclusiveDataset) ReadBand(band, x, y, w, h int) ([]float64, error) {
	if ds.active.Add(1) > 1 {
		ds.overlap.Store(true)
	}
	defer ds.active.Add(-1)
	time.Sleep(100 * time.Microsecond)
	return ds.Memory.ReadBand(band, x, y, w, h)
}

func TestBlockAllSequentialReads(t *testing.T) {
	m, err := raster.NewMemoryFrom(40, 30, ramp(1200, 0), ramp(1200, 7))
	if err != nil {
		t.Fatal(err)
	}
	ds := &exclusiveDataset{Memory: m}
	bc, err := NewBlockCalculator(ds, "b1 * b2", 4, 4, WithWorkers(8))
	if err != nil {
		t.Fatal(err)
	}
	got, err := bc.All(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ds.overlap.Load() {
		t.Error("ReadBand called concurrently")
	}

	want, err := New(m).Calculate("b1 * b2")
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("stitched blocks differ (-want +got):\n%s", d)
	}
}

func TestBlockAllCancelled(t *testing.T) {
	ds := newTestDataset(t, 10, 10, ramp(100, 0))
	bc, err := NewBlockCalculator(ds, "b1", 3, 3)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := bc.All(ctx)
	if !errors.Is(err, context.Canceled) || res != nil {
		t.Errorf("got %v, %v", len(res), err)
	}
}

func TestBlockCalculatorErrors(t *testing.T) {
	ds := newTestDataset(t, 4, 4, ramp(16, 0))
	if _, err := NewBlockCalculator(ds, "b1", 0, 4); err == nil {
		t.Error("zero block width accepted")
	}
	_, err := NewBlockCalculator(ds, "b2", 2, 2)
	if !errors.Is(err, &raster.BandRangeError{}) {
		t.Errorf("got %v, want BandRangeError", err)
	}
}
