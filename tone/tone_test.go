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

package tone

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/raster"
)

// newImage creates an in-memory dataset from byte valued bands.
func newImage(t *testing.T, width, height int, bands ...[]float64) *raster.Memory {
	t.Helper()
	m, err := raster.NewMemoryFrom(width, height, bands...)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func constant(n int, v float64) []float64 {
	res := make([]float64, n)
	for i := range res {
		res[i] = v
	}
	return res
}

func bandBytes(t *testing.T, ds raster.Dataset, band int) []uint8 {
	t.Helper()
	data, err := raster.ReadBand8(ds, band, raster.Region(ds))
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func span(data []uint8) int {
	lo, hi := 255, 0
	for _, v := range data {
		lo = min(lo, int(v))
		hi = max(hi, int(v))
	}
	return hi - lo
}

func TestGammaLUT(t *testing.T) {
	lut, err := GammaLUT(2)
	if err != nil {
		t.Fatal(err)
	}
	if lut[0] != 0 || lut[255] != 255 {
		t.Errorf("end points: %d %d", lut[0], lut[255])
	}
	if lut[64] != 127 {
		t.Errorf("lut[64] = %d, want 127", lut[64])
	}
	for i := 1; i < 256; i++ {
		if lut[i] < lut[i-1] {
			t.Fatalf("not monotonic at %d", i)
		}
	}

	for _, g := range []float64{0, -1, math.NaN()} {
		_, err := GammaLUT(g)
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("gamma %g: got %v", g, err)
		}
	}
}

func TestLevelsLUT(t *testing.T) {
	lut, err := LevelsLUT(LevelsParams{InMin: 50, InMax: 150, OutMax: 255})
	if err != nil {
		t.Fatal(err)
	}
	cases := map[int]uint8{0: 0, 50: 0, 100: 127, 150: 255, 200: 255}
	for in, want := range cases {
		if lut[in] != want {
			t.Errorf("lut[%d] = %d, want %d", in, lut[in], want)
		}
	}

	id, err := LevelsLUT(DefaultLevels())
	if err != nil {
		t.Fatal(err)
	}
	if id[0] != 0 || id[255] != 255 {
		t.Errorf("default levels: %d %d", id[0], id[255])
	}

	_, err = LevelsLUT(LevelsParams{InMax: 255, OutMax: 255, Midtone: -1})
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("negative midtone: got %v", err)
	}
}

func TestCurveLUT(t *testing.T) {
	if d := cmp.Diff(Identity(), CurveLUT([]CurvePoint{{10, 200}})); d != "" {
		t.Errorf("single point (-want +got):\n%s", d)
	}

	points := []CurvePoint{{200, 240}, {50, 10}, {128, 100}}
	lut := CurveLUT(points)
	for i := 0; i <= 50; i++ {
		if lut[i] != 10 {
			t.Errorf("lut[%d] = %d, want 10", i, lut[i])
		}
	}
	for i := 200; i < 256; i++ {
		if lut[i] != 240 {
			t.Errorf("lut[%d] = %d, want 240", i, lut[i])
		}
	}
	if lut[128] != 100 {
		t.Errorf("lut[128] = %d, want 100", lut[128])
	}
	if points[0].In != 200 {
		t.Error("CurveLUT modified its argument")
	}

	sorted := CurveLUT([]CurvePoint{{50, 10}, {128, 100}, {200, 240}})
	if d := cmp.Diff(sorted, lut); d != "" {
		t.Errorf("order dependence (-sorted +unsorted):\n%s", d)
	}
}

func TestApplyLUTBandSelection(t *testing.T) {
	src := newImage(t, 2, 1, []float64{10, 20}, []float64{10, 20})
	var lut LUT
	for i := range lut {
		lut[i] = 255 - uint8(i)
	}

	out, err := ApplyLUT(src, lut, 2)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]uint8{10, 20}, bandBytes(t, out, 1)); d != "" {
		t.Errorf("band 1 (-want +got):\n%s", d)
	}
	if d := cmp.Diff([]uint8{245, 235}, bandBytes(t, out, 2)); d != "" {
		t.Errorf("band 2 (-want +got):\n%s", d)
	}
	if src.Band(2)[0] != 10 {
		t.Error("input was modified")
	}

	_, err = ApplyLUT(src, lut, 3)
	if !errors.Is(err, &raster.BandRangeError{}) {
		t.Errorf("band 3: got %v", err)
	}
}

func TestOutputKeepsGeoreferencing(t *testing.T) {
	src := newImage(t, 1, 1, []float64{1})
	src.GeoTransform = matrix.Matrix{30, 0, 0, -30, 500000, 4000000}
	src.Projection = "EPSG:32633"

	out, err := AdjustCurves(src, CurveParams{})
	if err != nil {
		t.Fatal(err)
	}
	if out.GeoTransform != src.GeoTransform || out.Projection != src.Projection {
		t.Errorf("geo-referencing lost: %v %q", out.GeoTransform, out.Projection)
	}
}

func TestAdjustIdentity(t *testing.T) {
	r := []float64{0, 17, 128, 255}
	g := []float64{3, 99, 1, 200}
	b := []float64{250, 50, 77, 0}
	src := newImage(t, 2, 2, r, g, b)

	out, err := Adjust(src, AdjustParams{})
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range [][]float64{r, g, b} {
		if d := cmp.Diff(want, out.Band(i+1)); d != "" {
			t.Errorf("band %d (-want +got):\n%s", i+1, d)
		}
	}
}

func TestBrightnessContrast(t *testing.T) {
	src := newImage(t, 2, 1, []float64{100, 200})

	out, err := Brightness(src, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]float64{125, 225}, out.Band(1)); d != "" {
		t.Errorf("brightness (-want +got):\n%s", d)
	}

	out, err = Contrast(src, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]float64{72, 255}, out.Band(1)); d != "" {
		t.Errorf("contrast (-want +got):\n%s", d)
	}
}

func TestAdjustAlphaPassThrough(t *testing.T) {
	n := 4
	src := newImage(t, 2, 2, constant(n, 10), constant(n, 20), constant(n, 30), []float64{0, 64, 128, 255})

	out, err := Brightness(src, 0.2)
	if err != nil {
		t.Fatal(err)
	}
	if out.BandCount() != 4 {
		t.Fatalf("got %d bands", out.BandCount())
	}
	if d := cmp.Diff(src.Band(4), out.Band(4)); d != "" {
		t.Errorf("alpha changed (-want +got):\n%s", d)
	}
}

func TestDesaturate(t *testing.T) {
	src := newImage(t, 2, 1, []float64{200, 30}, []float64{100, 60}, []float64{50, 90})

	out, err := Saturation(src, -1)
	if err != nil {
		t.Fatal(err)
	}
	for i := range 2 {
		r, g, b := out.Band(1)[i], out.Band(2)[i], out.Band(3)[i]
		if r != g || g != b {
			t.Errorf("pixel %d: not gray: %g %g %g", i, r, g, b)
		}
	}
}

func TestHueFullTurn(t *testing.T) {
	src := newImage(t, 1, 1, []float64{200}, []float64{100}, []float64{50})

	out, err := Hue(src, 360)
	if err != nil {
		t.Fatal(err)
	}
	for b := 1; b <= 3; b++ {
		if math.Abs(out.Band(b)[0]-src.Band(b)[0]) > 1 {
			t.Errorf("band %d: %g -> %g", b, src.Band(b)[0], out.Band(b)[0])
		}
	}
}

func TestPresets(t *testing.T) {
	src := newImage(t, 1, 1, []float64{100}, []float64{100}, []float64{100})

	bw, err := ApplyPreset(src, BlackWhite)
	if err != nil {
		t.Fatal(err)
	}
	if r, g, b := bw.Band(1)[0], bw.Band(2)[0], bw.Band(3)[0]; r != g || g != b {
		t.Errorf("black and white: %g %g %g", r, g, b)
	}

	sepia, err := ApplyPreset(src, Sepia)
	if err != nil {
		t.Fatal(err)
	}
	if r, b := sepia.Band(1)[0], sepia.Band(3)[0]; !(r > b) {
		t.Errorf("sepia: red %g not above blue %g", r, b)
	}

	for p := Vivid; p <= Sepia; p++ {
		q, ok := ParsePreset(p.String())
		if !ok || q != p {
			t.Errorf("ParsePreset(%q) = %v, %t", p.String(), q, ok)
		}
	}

	_, err = ApplyPreset(src, Preset(99))
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("unknown preset: got %v", err)
	}
}

func TestAutoLevels(t *testing.T) {
	data := make([]float64, 100)
	for i := range data {
		data[i] = float64(50 + i)
	}
	src := newImage(t, 10, 10, data)

	out, err := AutoLevels(src, 0)
	if err != nil {
		t.Fatal(err)
	}
	got := out.Band(1)
	if got[0] != 0 || got[99] != 255 || got[50] != 128 {
		t.Errorf("got %g %g %g, want 0 128 255", got[0], got[50], got[99])
	}

	_, err = AutoLevels(src, 60)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("clip 60%%: got %v", err)
	}
}

func TestAutoWhiteBalance(t *testing.T) {
	n := 4
	src := newImage(t, 2, 2, constant(n, 100), constant(n, 50), constant(n, 150))

	out, err := AutoWhiteBalance(src)
	if err != nil {
		t.Fatal(err)
	}
	for b := 1; b <= 3; b++ {
		for _, v := range out.Band(b) {
			if math.Abs(v-100) > 1 {
				t.Errorf("band %d: got %g, want 100", b, v)
			}
		}
	}

	gray := newImage(t, 2, 1, []float64{3, 4})
	out, err = AutoWhiteBalance(gray)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(gray.Band(1), out.Band(1)); d != "" {
		t.Errorf("single band (-want +got):\n%s", d)
	}
}

func TestHistogramEqualization(t *testing.T) {
	src := newImage(t, 2, 2, []float64{10, 20, 30, 40}, []float64{10, 20, 30, 40})

	out, err := HistogramEqualization(src, 1)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff([]float64{0, 85, 170, 255}, out.Band(1)); d != "" {
		t.Errorf("band 1 (-want +got):\n%s", d)
	}
	if d := cmp.Diff(src.Band(2), out.Band(2)); d != "" {
		t.Errorf("band 2 changed (-want +got):\n%s", d)
	}

	flat := newImage(t, 3, 1, constant(3, 9))
	out, err = HistogramEqualization(flat, 0)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(constant(3, 0), out.Band(1)); d != "" {
		t.Errorf("flat band (-want +got):\n%s", d)
	}
}

func TestCLAHEFlat(t *testing.T) {
	for _, tile := range []int{32, 64, 200} {
		src := newImage(t, 100, 100, constant(100*100, 77))
		out, err := CLAHE(src, tile, 2)
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(src.Band(1), out.Band(1)); d != "" {
			t.Errorf("tile %d: flat input changed (-want +got):\n%s", tile, d)
		}
	}
}

func TestCLAHEStretches(t *testing.T) {
	data := make([]float64, 20*20)
	for i := range data {
		data[i] = float64(100 + i%20)
	}
	src := newImage(t, 20, 20, data)

	out, err := CLAHE(src, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	in := bandBytes(t, src, 1)
	got := bandBytes(t, out, 1)
	if span(got) <= span(in) {
		t.Errorf("contrast not increased: span %d -> %d", span(in), span(got))
	}
	for i := 1; i < 20; i++ {
		if got[i] < got[i-1] {
			t.Errorf("not monotonic at %d: %d < %d", i, got[i], got[i-1])
		}
	}
}

func TestCLAHEEdgeTiles(t *testing.T) {
	data := make([]float64, 70*45)
	for i := range data {
		data[i] = float64(i % 251)
	}
	src := newImage(t, 70, 45, data)

	out, err := LocalContrast(src, 16, 3)
	if err != nil {
		t.Fatal(err)
	}
	if out.Width() != 70 || out.Height() != 45 {
		t.Errorf("got %dx%d", out.Width(), out.Height())
	}
}

func TestWallisFlat(t *testing.T) {
	src := newImage(t, 9, 7, constant(63, 77))

	out, err := Wallis(src, WallisParams{TargetMean: 128, TargetStd: 50, C: 1, B: 1, Window: 4})
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(constant(63, 128), out.Band(1)); d != "" {
		t.Errorf("B=1 (-want +got):\n%s", d)
	}

	out, err = Wallis(src, WallisParams{TargetMean: 128, TargetStd: 50, C: 1, B: 0})
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(src.Band(1), out.Band(1)); d != "" {
		t.Errorf("B=0 (-want +got):\n%s", d)
	}
}

func TestWallisContrast(t *testing.T) {
	data := make([]float64, 32*32)
	for i := range data {
		data[i] = 120
		if (i/32+i%32)%2 == 0 {
			data[i] = 130
		}
	}
	src := newImage(t, 32, 32, data)

	out, err := Wallis(src, WallisParams{TargetMean: 128, TargetStd: 60, C: 1, B: 0.5, Window: 7})
	if err != nil {
		t.Fatal(err)
	}
	if span(bandBytes(t, out, 1)) <= span(bandBytes(t, src, 1)) {
		t.Error("Wallis filter did not increase local contrast")
	}
}

func TestIntegralImages(t *testing.T) {
	sum, sum2 := integralImages([]uint8{1, 2, 3, 4, 5, 6}, 3, 2)
	wantSum := []float64{
		0, 0, 0, 0,
		0, 1, 3, 6,
		0, 5, 12, 21,
	}
	if d := cmp.Diff(wantSum, sum); d != "" {
		t.Errorf("sum (-want +got):\n%s", d)
	}
	if sum2[len(sum2)-1] != 91 {
		t.Errorf("total of squares = %g, want 91", sum2[len(sum2)-1])
	}
}

func TestHSLRoundTrip(t *testing.T) {
	h, s, l := RGBToHSL(255, 0, 0)
	if math.Abs(h) > 1e-9 || math.Abs(s-1) > 1e-9 || math.Abs(l-0.5) > 1e-9 {
		t.Errorf("red: h=%g s=%g l=%g", h, s, l)
	}

	colors := [][3]float64{{200, 100, 50}, {0, 128, 255}, {17, 17, 17}}
	for _, c := range colors {
		r, g, b := HSLToRGB(RGBToHSL(c[0], c[1], c[2]))
		if math.Abs(r-c[0]) > 1e-6 || math.Abs(g-c[1]) > 1e-6 || math.Abs(b-c[2]) > 1e-6 {
			t.Errorf("HSL round trip %v -> %g %g %g", c, r, g, b)
		}
		r, g, b = HSVToRGB(RGBToHSV(c[0], c[1], c[2]))
		if math.Abs(r-c[0]) > 1e-6 || math.Abs(g-c[1]) > 1e-6 || math.Abs(b-c[2]) > 1e-6 {
			t.Errorf("HSV round trip %v -> %g %g %g", c, r, g, b)
		}
	}
}
