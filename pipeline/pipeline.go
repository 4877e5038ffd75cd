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

// Package pipeline chains colour adjustments.
//
// A pipeline is either built in code,
//
//	out, err := pipeline.New(ds).Brightness(0.1).Contrast(0.2).Result()
//
// or described in a YAML file and loaded with [Load]:
//
//	name: daylight
//	steps:
//	  - op: autolevels
//	    value: 0.5
//	  - op: clahe
//	    tile: 64
//	    clip: 2
//	  - op: preset
//	    preset: vivid
//
// The first failing step stops the pipeline; later steps are skipped and
// the error is reported by Result.
package pipeline

import (
	"fmt"
	"log/slog"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/tone"
)

// Pipeline applies a sequence of colour adjustments to a dataset.
type Pipeline struct {
	ds   raster.Dataset
	err  error
	log  *slog.Logger
	step int
}

// New starts a pipeline on ds.  The input dataset is not modified.
func New(ds raster.Dataset) *Pipeline {
	return &Pipeline{ds: ds, log: slog.Default()}
}

// WithLogger sets the logger used for debug messages.
func (p *Pipeline) WithLogger(l *slog.Logger) *Pipeline {
	if l != nil {
		p.log = l
	}
	return p
}

// Apply runs one step.  If an earlier step has failed, Apply does nothing.
func (p *Pipeline) Apply(s Step) *Pipeline {
	if p.err != nil {
		return p
	}
	p.step++
	op, ok := ops[s.Op]
	if !ok {
		p.err = fmt.Errorf("step %d: unknown operation %q", p.step, s.Op)
		return p
	}
	p.log.Debug("pipeline step", "step", p.step, "op", s.Op)
	out, err := op(p.ds, &s)
	if err != nil {
		p.err = fmt.Errorf("step %d (%s): %w", p.step, s.Op, err)
		return p
	}
	p.ds = out
	return p
}

// Brightness adds a brightness step, see [tone.Brightness].
func (p *Pipeline) Brightness(v float64) *Pipeline {
	return p.Apply(Step{Op: "brightness", Value: v})
}

// Contrast adds a contrast step, see [tone.Contrast].
func (p *Pipeline) Contrast(v float64) *Pipeline {
	return p.Apply(Step{Op: "contrast", Value: v})
}

// Saturation adds a saturation step, see [tone.Saturation].
func (p *Pipeline) Saturation(v float64) *Pipeline {
	return p.Apply(Step{Op: "saturation", Value: v})
}

// Gamma adds a gamma correction step, see [tone.Gamma].
func (p *Pipeline) Gamma(v float64) *Pipeline {
	return p.Apply(Step{Op: "gamma", Value: v})
}

// Hue adds a hue rotation by the given number of degrees.
func (p *Pipeline) Hue(degrees float64) *Pipeline {
	return p.Apply(Step{Op: "hue", Value: degrees})
}

// AutoLevels adds an automatic levels step, see [tone.AutoLevels].
func (p *Pipeline) AutoLevels(clipPercent float64) *Pipeline {
	return p.Apply(Step{Op: "autolevels", Value: clipPercent})
}

// AutoWhiteBalance adds a gray world white balance step.
func (p *Pipeline) AutoWhiteBalance() *Pipeline {
	return p.Apply(Step{Op: "whitebalance"})
}

// CLAHE adds an adaptive histogram equalization step, see [tone.CLAHE].
func (p *Pipeline) CLAHE(tileSize int, clipLimit float64) *Pipeline {
	return p.Apply(Step{Op: "clahe", Tile: tileSize, Clip: clipLimit})
}

// Preset adds a named colour preset, see [tone.ParsePreset].
func (p *Pipeline) Preset(name string) *Pipeline {
	return p.Apply(Step{Op: "preset", Preset: name})
}

// Err returns the error of the first failed step, if any.
func (p *Pipeline) Err() error {
	return p.err
}

// Result returns the output of the last step, or the first error.
func (p *Pipeline) Result() (*raster.Memory, error) {
	if p.err != nil {
		return nil, p.err
	}
	return raster.Copy(p.ds)
}

type opFunc func(ds raster.Dataset, s *Step) (*raster.Memory, error)

var ops = map[string]opFunc{
	"brightness": func(ds raster.Dataset, s *Step) (*raster.Memory, error) {
		return tone.Brightness(ds, s.Value)
	},
	"contrast": func(ds raster.Dataset, s *Step) (*raster.Memory, error) {
		return tone.Contrast(ds, s.Value)
	},
	"saturation": func(ds raster.Dataset, s *Step) (*raster.Memory, error) {
		return tone.Saturation(ds, s.Value)
	},
	"gamma": func(ds raster.Dataset, s *Step) (*raster.Memory, error) {
		return tone.Gamma(ds, s.Value)
	},
	"hue": func(ds raster.Dataset, s *Step) (*raster.Memory, error) {
		return tone.Hue(ds, s.Value)
	},
	"autolevels": func(ds raster.Dataset, s *Step) (*raster.Memory, error) {
		return tone.AutoLevels(ds, s.Value)
	},
	"autocontrast": func(ds raster.Dataset, s *Step) (*raster.Memory, error) {
		return tone.AutoContrast(ds)
	},
	"whitebalance": func(ds raster.Dataset, s *Step) (*raster.Memory, error) {
		return tone.AutoWhiteBalance(ds)
	},
	"histeq": func(ds raster.Dataset, s *Step) (*raster.Memory, error) {
		return tone.HistogramEqualization(ds, s.Band)
	},
	"clahe": func(ds raster.Dataset, s *Step) (*raster.Memory, error) {
		return tone.CLAHE(ds, s.Tile, s.Clip)
	},
	"levels": func(ds raster.Dataset, s *Step) (*raster.Memory, error) {
		l := tone.DefaultLevels()
		if s.Levels != nil {
			l = *s.Levels
		}
		return tone.AdjustLevels(ds, l, s.Band)
	},
	"scurve": func(ds raster.Dataset, s *Step) (*raster.Memory, error) {
		return tone.SCurve(ds, s.Value)
	},
	"unsharp": func(ds raster.Dataset, s *Step) (*raster.Memory, error) {
		return tone.UnsharpMask(ds, s.Value)
	},
	"wallis": func(ds raster.Dataset, s *Step) (*raster.Memory, error) {
		var w tone.WallisParams
		if s.Wallis != nil {
			w = *s.Wallis
		}
		return tone.Wallis(ds, w)
	},
	"preset": func(ds raster.Dataset, s *Step) (*raster.Memory, error) {
		preset, ok := tone.ParsePreset(s.Preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", s.Preset)
		}
		return tone.ApplyPreset(ds, preset)
	},
}
