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

package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/tone"
)

func newImage(t *testing.T, width, height int, bands ...[]float64) *raster.Memory {
	t.Helper()
	m, err := raster.NewMemoryFrom(width, height, bands...)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestChain(t *testing.T) {
	src := newImage(t, 2, 1, []float64{100, 200})

	out, err := New(src).Brightness(0.1).Contrast(0.5).Result()
	if err != nil {
		t.Fatal(err)
	}
	// 100 -> 125 -> 122, 200 -> 225 -> 322
	if d := cmp.Diff([]float64{122, 255}, out.Band(1)); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
	if d := cmp.Diff([]float64{100, 200}, src.Band(1)); d != "" {
		t.Errorf("input modified (-want +got):\n%s", d)
	}
}

func TestStickyError(t *testing.T) {
	src := newImage(t, 2, 1, []float64{100, 200})

	p := New(src).AutoLevels(75).Brightness(0.1)
	_, err := p.Result()
	if !errors.Is(err, tone.ErrInvalidParameter) {
		t.Errorf("got %v, want ErrInvalidParameter", err)
	}
	if err == nil || !strings.Contains(err.Error(), "step 1") {
		t.Errorf("error does not name the step: %v", err)
	}
	if p.step != 1 {
		t.Errorf("%d steps run after failure", p.step)
	}

	_, err = New(src).Preset("neon").Result()
	if err == nil {
		t.Error("unknown preset accepted")
	}
}

func TestEmptyPipeline(t *testing.T) {
	src := newImage(t, 2, 1, []float64{1, 2})
	out, err := New(src).Result()
	if err != nil {
		t.Fatal(err)
	}
	if out == src {
		t.Error("Result returned the input")
	}
	if d := cmp.Diff(src.Band(1), out.Band(1)); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

const testSpec = `
name: test
steps:
  - op: levels
    levels:
      inmin: 50
      inmax: 150
      outmax: 255
  - op: brightness
    value: 0.1
`

func TestLoad(t *testing.T) {
	spec, err := Load(strings.NewReader(testSpec))
	if err != nil {
		t.Fatal(err)
	}
	want := &Spec{
		Name: "test",
		Steps: []Step{
			{Op: "levels", Levels: &tone.LevelsParams{InMin: 50, InMax: 150, OutMax: 255}},
			{Op: "brightness", Value: 0.1},
		},
	}
	if d := cmp.Diff(want, spec); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}

	src := newImage(t, 3, 1, []float64{0, 100, 200})
	out, err := spec.Run(src, nil)
	if err != nil {
		t.Fatal(err)
	}
	// levels: 0, 127, 255; brightness adds 25.5
	if d := cmp.Diff([]float64{25, 152, 255}, out.Band(1)); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"no steps":    "name: x\n",
		"unknown op":  "steps:\n  - op: sharpen\n",
		"unknown key": "steps:\n  - op: gamma\n    amount: 2\n",
		"bad value":   "steps:\n  - op: gamma\n    value: high\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(src))
			if err == nil {
				t.Error("no error")
			}
		})
	}
}

func TestEncodeLoad(t *testing.T) {
	spec := &Spec{Steps: []Step{{Op: "clahe", Tile: 32, Clip: 3}, {Op: "preset", Preset: "warm"}}}
	var buf strings.Builder
	if err := spec.Encode(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := Load(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(spec, got); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}
}
