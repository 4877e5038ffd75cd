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
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/tone"
)

// Step is one operation of a pipeline.  Which of the fields are used
// depends on Op:
//
//	brightness, contrast, saturation, gamma, hue, scurve, unsharp: Value
//	autolevels: Value (clip percentage)
//	autocontrast, whitebalance: none
//	histeq: Band (0 = all bands)
//	clahe: Tile, Clip
//	levels: Levels, Band
//	wallis: Wallis
//	preset: Preset
//
// In YAML, the fields of Levels and Wallis use lower case names, for
// example "inmin" or "targetstd".
type Step struct {
	Op     string             `yaml:"op"`
	Value  float64            `yaml:"value,omitempty"`
	Band   int                `yaml:"band,omitempty"`
	Tile   int                `yaml:"tile,omitempty"`
	Clip   float64            `yaml:"clip,omitempty"`
	Preset string             `yaml:"preset,omitempty"`
	Levels *tone.LevelsParams `yaml:"levels,omitempty"`
	Wallis *tone.WallisParams `yaml:"wallis,omitempty"`
}

// Spec is a pipeline description.
type Spec struct {
	Name  string `yaml:"name,omitempty"`
	Steps []Step `yaml:"steps"`
}

// Load reads a YAML pipeline description.  Unknown keys and unknown
// operations are errors.
func Load(r io.Reader) (*Spec, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	spec := &Spec{}
	err := dec.Decode(spec)
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty pipeline description")
	} else if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return spec, nil
}

// Validate checks that all operations are known.
func (s *Spec) Validate() error {
	if len(s.Steps) == 0 {
		return errors.New("pipeline has no steps")
	}
	for i, step := range s.Steps {
		if _, ok := ops[step.Op]; !ok {
			return fmt.Errorf("step %d: unknown operation %q", i+1, step.Op)
		}
	}
	return nil
}

// Encode writes s as YAML.
func (s *Spec) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

// Run applies all steps of s to ds.
func (s *Spec) Run(ds raster.Dataset, logger *slog.Logger) (*raster.Memory, error) {
	p := New(ds).WithLogger(logger)
	if logger != nil && s.Name != "" {
		logger.Debug("running pipeline", "name", s.Name, "steps", len(s.Steps))
	}
	for _, step := range s.Steps {
		p.Apply(step)
	}
	return p.Result()
}
