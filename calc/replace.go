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

	"seehuhn.de/go/raster/internal/parallel"
)

// ReplaceRule replaces values in the interval between Min and Max by Value.
// IncludeMin and IncludeMax select whether the interval is closed at either
// end.
type ReplaceRule struct {
	Min, Max   float64
	Value      float64
	IncludeMin bool
	IncludeMax bool
}

// Match reports whether v lies in the interval of the rule.  NaN never
// matches.
func (r ReplaceRule) Match(v float64) bool {
	var lowOK, highOK bool
	if r.IncludeMin {
		lowOK = v >= r.Min
	} else {
		lowOK = v > r.Min
	}
	if r.IncludeMax {
		highOK = v <= r.Max
	} else {
		highOK = v < r.Max
	}
	return lowOK && highOK
}

// ConditionalReplace reads a band and replaces every value matched by one of
// the rules.  Rules are tried in order and the first match wins.  Values
// which match no rule are kept.
func (c *Calculator) ConditionalReplace(band int, rules []ReplaceRule) ([]float64, error) {
	if len(rules) == 0 {
		return nil, errors.New("no replacement rules given")
	}
	cols, err := c.readBands(band)
	if err != nil {
		return nil, err
	}
	in := cols[0]
	out := make([]float64, len(in))
	parallel.For(c.workers, len(in), func(start, end int) {
		for i := start; i < end; i++ {
			v := in[i]
			out[i] = v
			for _, r := range rules {
				if r.Match(v) {
					out[i] = r.Value
					break
				}
			}
		}
	})
	return out, nil
}

// ReplaceRange replaces values v with min <= v < max by newValue.
func (c *Calculator) ReplaceRange(band int, min, max, newValue float64) ([]float64, error) {
	return c.ConditionalReplace(band, []ReplaceRule{
		{Min: min, Max: max, Value: newValue, IncludeMin: true},
	})
}
