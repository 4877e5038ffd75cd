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
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/pipeline"
	"seehuhn.de/go/raster/tone"
)

var toneOps = []string{
	"levels", "gamma", "autolevels", "autocontrast", "whitebalance",
	"histeq", "clahe", "wallis", "adjust", "preset",
}

func newToneCmd(g *globals) *cobra.Command {
	var (
		band   int
		gamma  float64
		clip   float64
		tile   int
		preset string
		levels = tone.DefaultLevels()
		adjust tone.AdjustParams
		wallis = tone.WallisParams{TargetMean: 128, TargetStd: 50, C: 0.8, B: 0.8}
	)
	cmd := &cobra.Command{
		Use:   "tone OP IN OUT",
		Short: "apply a tone correction",
		Long: "Apply a tone correction to an 8-bit image.\n\nOP is one of " +
			strings.Join(toneOps, ", ") + ".",
		Example: `  rastercalc tone gamma --gamma 1.8 in.png out.png
  rastercalc tone clahe --tile 32 --clip 3 in.png out.png
  rastercalc tone preset --preset sepia in.png out.png`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, in, out := args[0], args[1], args[2]
			if !slices.Contains(toneOps, op) {
				return fmt.Errorf("unknown tone operation %q", op)
			}

			ds, err := readImage(in)
			if err != nil {
				return err
			}
			g.logger.Debug("tone", "op", op, "width", ds.Width(), "height", ds.Height())

			var res *raster.Memory
			switch op {
			case "levels":
				res, err = tone.AdjustLevels(ds, levels, band)
			case "gamma":
				var lut tone.LUT
				lut, err = tone.GammaLUT(gamma)
				if err == nil {
					res, err = tone.ApplyLUT(ds, lut, band)
				}
			case "autolevels":
				res, err = tone.AutoLevels(ds, clip)
			case "autocontrast":
				res, err = tone.AutoContrast(ds)
			case "whitebalance":
				res, err = tone.AutoWhiteBalance(ds)
			case "histeq":
				res, err = tone.HistogramEqualization(ds, band)
			case "clahe":
				res, err = tone.CLAHE(ds, tile, clip)
			case "wallis":
				res, err = tone.Wallis(ds, wallis)
			case "adjust":
				res, err = tone.Adjust(ds, adjust)
			case "preset":
				p, ok := tone.ParsePreset(preset)
				if !ok {
					return fmt.Errorf("unknown preset %q", preset)
				}
				res, err = tone.ApplyPreset(ds, p)
			}
			if err != nil {
				return err
			}
			return writeImage(out, res)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&band, "band", 0, "band for levels, gamma and histeq (0 = all)")
	flags.Float64Var(&gamma, "gamma", 1, "gamma value")
	flags.Float64Var(&clip, "clip", 0, "clip percentage for autolevels, clip limit for clahe")
	flags.IntVar(&tile, "tile", tone.DefaultTileSize, "tile size for clahe")
	flags.StringVar(&preset, "preset", "", "preset name (vivid, soft, highcontrast, warm, cool, bw, sepia)")

	flags.Float64Var(&levels.InMin, "in-min", levels.InMin, "levels: input black point")
	flags.Float64Var(&levels.InMax, "in-max", levels.InMax, "levels: input white point")
	flags.Float64Var(&levels.OutMin, "out-min", levels.OutMin, "levels: output black point")
	flags.Float64Var(&levels.OutMax, "out-max", levels.OutMax, "levels: output white point")
	flags.Float64Var(&levels.Midtone, "midtone", levels.Midtone, "levels: midtone gamma")

	flags.Float64Var(&adjust.Brightness, "brightness", 0, "adjust: brightness in [-1, 1]")
	flags.Float64Var(&adjust.Contrast, "contrast", 0, "adjust: contrast in [-1, 1]")
	flags.Float64Var(&adjust.Saturation, "saturation", 0, "adjust: saturation in [-1, 1]")
	flags.Float64Var(&adjust.Gamma, "adjust-gamma", 1, "adjust: gamma")
	flags.Float64Var(&adjust.Hue, "hue", 0, "adjust: hue rotation in degrees")

	flags.Float64Var(&wallis.TargetMean, "target-mean", wallis.TargetMean, "wallis: target mean")
	flags.Float64Var(&wallis.TargetStd, "target-std", wallis.TargetStd, "wallis: target standard deviation")
	flags.Float64Var(&wallis.C, "wallis-c", wallis.C, "wallis: contrast constant")
	flags.Float64Var(&wallis.B, "wallis-b", wallis.B, "wallis: brightness constant")
	flags.IntVar(&wallis.Window, "window", tone.DefaultWallisWindow, "wallis: window size")
	return cmd
}

func newPipelineCmd(g *globals) *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "pipeline FILE.yaml IN OUT",
		Short: "run a pipeline of tone corrections described in a YAML file",
		Example: `  rastercalc pipeline enhance.yaml in.png out.png
  rastercalc pipeline --dump enhance.yaml`,
		Args: func(cmd *cobra.Command, args []string) error {
			if dump {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(3)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fd, err := os.Open(args[0])
			if err != nil {
				return err
			}
			spec, err := pipeline.Load(fd)
			fd.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if dump {
				return spec.Encode(cmd.OutOrStdout())
			}

			ds, err := readImage(args[1])
			if err != nil {
				return err
			}
			res, err := spec.Run(ds, g.logger)
			if err != nil {
				return err
			}
			return writeImage(args[2], res)
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "print the normalized pipeline instead of running it")
	return cmd
}
