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

package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"seehuhn.de/go/raster/calc"
	"seehuhn.de/go/raster/expr"
)

func (g *globals) calcOptions() []calc.Option {
	return []calc.Option{calc.WithWorkers(g.workers), calc.WithLogger(g.logger)}
}

func newCalcCmd(g *globals) *cobra.Command {
	var (
		where  string
		noData float64
		block  int
	)
	cmd := &cobra.Command{
		Use:   "calc EXPR IN OUT",
		Short: "evaluate a band algebra expression",
		Long: `Evaluate a band algebra expression for every pixel of IN.

Bands are referred to as b1, b2, ... or B1, B2, ...  The result is
stretched linearly to 0-255 and written as a grayscale image.`,
		Example: `  rastercalc calc "(b4 - b3) / (b4 + b3)" in.tif ndvi.png
  rastercalc calc --where "b1 > 0" "log(b1)" in.tif out.png`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, in, out := args[0], args[1], args[2]
			if block > 0 && where != "" {
				return fmt.Errorf("--block and --where cannot be combined")
			}

			ds, err := readImage(in)
			if err != nil {
				return err
			}

			var res []float64
			switch {
			case block > 0:
				bc, err := calc.NewBlockCalculator(ds, src, block, block, g.calcOptions()...)
				if err != nil {
					return err
				}
				res, err = bc.All(cmd.Context())
				if err != nil {
					return err
				}
			case where != "":
				c := calc.New(ds, g.calcOptions()...)
				res, err = c.CalculateWithCondition(src, where, noData)
				if err != nil {
					return err
				}
			default:
				c := calc.New(ds, g.calcOptions()...)
				res, err = c.Calculate(src)
				if err != nil {
					return err
				}
			}
			return writeBand(out, ds, res)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&where, "where", "", "only evaluate pixels where `COND` is non-zero")
	flags.Float64Var(&noData, "nodata", math.NaN(), "value for pixels excluded by --where")
	flags.IntVar(&block, "block", 0, "evaluate in square blocks of `N` pixels")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var disasm bool
	cmd := &cobra.Command{
		Use:   "check EXPR",
		Short: "check the syntax of an expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := expr.Compile(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			bands := make([]string, 0, len(e.Bands()))
			for _, b := range e.Bands() {
				bands = append(bands, fmt.Sprintf("b%d", b))
			}
			fmt.Fprintf(w, "ok, bands used: %s, stack depth %d\n",
				strings.Join(bands, " "), e.StackDepth())
			if disasm {
				fmt.Fprint(w, e.Disassemble())
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&disasm, "disassemble", "d", false, "print the compiled program")
	return cmd
}

// indexBands lists the default band numbers for each spectral index, in the
// order in which the index functions take them.
var indexBands = map[string][]int{
	"ndvi":  {4, 3},    // nir, red
	"ndwi":  {2, 4},    // green, nir
	"evi":   {4, 3, 1}, // nir, red, blue
	"savi":  {4, 3},    // nir, red
	"mndwi": {2, 5},    // green, swir
	"ndbi":  {5, 4},    // swir, nir
	"ndsi":  {2, 5},    // green, swir
	"lai":   {4, 3},    // nir, red
}

func newIndexCmd(g *globals) *cobra.Command {
	var (
		bands []int
		soil  float64
	)
	cmd := &cobra.Command{
		Use:   "index NAME IN OUT",
		Short: "compute a spectral index",
		Long: `Compute one of the spectral indices ndvi, ndwi, evi, savi, mndwi,
ndbi, ndsi or lai.

The default band assignment is blue=1, green=2, red=3, nir=4, swir=5.
Use --bands to list the bands in the order the index needs them:
  ndvi, savi, lai   nir,red
  ndwi              green,nir
  evi               nir,red,blue
  mndwi, ndsi       green,swir
  ndbi              swir,nir`,
		Example: `  rastercalc index ndvi --bands 5,4 landsat.tif ndvi.png`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, in, out := strings.ToLower(args[0]), args[1], args[2]
			def, ok := indexBands[name]
			if !ok {
				return fmt.Errorf("unknown index %q", args[0])
			}
			if bands == nil {
				bands = def
			}
			if len(bands) != len(def) {
				return fmt.Errorf("index %s needs %d bands, got %d", name, len(def), len(bands))
			}

			ds, err := readImage(in)
			if err != nil {
				return err
			}
			c := calc.New(ds, g.calcOptions()...)

			var res []float64
			switch name {
			case "ndvi":
				res, err = c.NDVI(bands[0], bands[1])
			case "ndwi":
				res, err = c.NDWI(bands[0], bands[1])
			case "evi":
				res, err = c.EVI(bands[0], bands[1], bands[2])
			case "savi":
				res, err = c.SAVI(bands[0], bands[1], soil)
			case "mndwi":
				res, err = c.MNDWI(bands[0], bands[1])
			case "ndbi":
				res, err = c.NDBI(bands[0], bands[1])
			case "ndsi":
				res, err = c.NDSI(bands[0], bands[1])
			case "lai":
				res, err = c.LAI(bands[0], bands[1])
			}
			if err != nil {
				return err
			}
			return writeBand(out, ds, res)
		},
	}
	flags := cmd.Flags()
	flags.IntSliceVar(&bands, "bands", nil, "band numbers used by the index")
	flags.Float64Var(&soil, "soil", 0.5, "soil brightness correction for savi")
	return cmd
}
