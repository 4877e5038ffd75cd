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
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/balance"
)

// rectValue is a pflag.Value for pixel rectangles given as
// "xmin,ymin,xmax,ymax".
type rectValue struct {
	r *rect.IntRect
}

var _ pflag.Value = rectValue{}

func (v rectValue) String() string {
	if v.r == nil || *v.r == (rect.IntRect{}) {
		return ""
	}
	return fmt.Sprintf("%d,%d,%d,%d", v.r.XMin, v.r.YMin, v.r.XMax, v.r.YMax)
}

func (v rectValue) Set(s string) error {
	var r rect.IntRect
	_, err := fmt.Sscanf(s, "%d,%d,%d,%d", &r.XMin, &r.YMin, &r.XMax, &r.YMax)
	if err != nil {
		return fmt.Errorf("expected xmin,ymin,xmax,ymax: %w", err)
	}
	if r.XMax <= r.XMin || r.YMax <= r.YMin {
		return fmt.Errorf("empty rectangle %q", s)
	}
	*v.r = r
	return nil
}

func (v rectValue) Type() string {
	return "rect"
}

func addBalanceFlags(flags *pflag.FlagSet, p *balance.Params) {
	flags.Float64Var(&p.Strength, "strength", p.Strength, "correction strength in [0, 1]")
	flags.Var(rectValue{&p.Overlap}, "overlap", "overlap `xmin,ymin,xmax,ymax` of image and reference")
	flags.Float64Var(&p.TargetMean, "target-mean", p.TargetMean, "wallis: target mean")
	flags.Float64Var(&p.TargetStd, "target-std", p.TargetStd, "wallis: target standard deviation")
	flags.Float64Var(&p.WallisC, "wallis-c", p.WallisC, "wallis: contrast constant")
	flags.Float64Var(&p.WallisB, "wallis-b", p.WallisB, "wallis: brightness constant")
}

func newBalanceCmd(g *globals) *cobra.Command {
	p := balance.DefaultParams()
	var block int
	cmd := &cobra.Command{
		Use:   "balance METHOD IN REF OUT",
		Short: "match the colours of an image to a reference image",
		Long: `Match the colours of IN to the reference image REF.

METHOD is one of meanstd, histmatch, wallis, moment, linreg, dodging,
auto or smart.  "auto" uses mean/standard deviation matching at reduced
strength, "smart" picks a method from the image statistics.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			method, in, refName, out := args[0], args[1], args[2], args[3]

			src, err := readImage(in)
			if err != nil {
				return err
			}
			var ref raster.Dataset
			if method != "dodging" {
				ref, err = readImage(refName)
				if err != nil {
					return err
				}
			}

			var res *raster.Memory
			switch method {
			case "auto":
				res, err = balance.Auto(src, ref)
			case "smart":
				res, err = balance.Smart(src, ref, p.Overlap)
			case "dodging":
				res, err = balance.Dodging(src, block, p.Strength)
			default:
				p.Method, err = balance.ParseMethod(method)
				if err != nil {
					return err
				}
				res, err = balance.Balance(src, ref, p)
			}
			if err != nil {
				return err
			}
			g.logger.Debug("balanced", "method", method, "input", in, "reference", refName)
			return writeImage(out, res)
		},
	}
	addBalanceFlags(cmd.Flags(), &p)
	cmd.Flags().IntVar(&block, "block", balance.DefaultDodgingBlock, "dodging: block size")
	return cmd
}

func newBatchCmd(g *globals) *cobra.Command {
	p := balance.DefaultParams()
	var method string
	cmd := &cobra.Command{
		Use:   "batch REF OUTDIR IN...",
		Short: "balance several images against one reference",
		Long: `Balance several images against the same reference image.  The
results are written to OUTDIR, using the file names of the inputs.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := balance.ParseMethod(method)
			if err != nil {
				return err
			}
			p.Method = m

			ref, err := readImage(args[0])
			if err != nil {
				return err
			}
			outDir, names := args[1], args[2:]
			srcs := make([]raster.Dataset, len(names))
			for i, name := range names {
				srcs[i], err = readImage(name)
				if err != nil {
					return err
				}
			}

			res, err := balance.Batch(cmd.Context(), srcs, ref, p,
				balance.WithWorkers(g.workers), balance.WithLogger(g.logger))
			if err != nil {
				return err
			}
			for i, name := range names {
				out := filepath.Join(outDir, filepath.Base(name))
				if err := writeImage(out, res[i]); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", p.Method.String(), "balancing method")
	addBalanceFlags(cmd.Flags(), &p)
	return cmd
}

func newBlendCmd() *cobra.Command {
	var (
		overlap rect.IntRect
		width   int
	)
	cmd := &cobra.Command{
		Use:   "blend LEFT RIGHT OUT",
		Short: "join two horizontally overlapping images",
		Long: `Join two images which overlap horizontally.  The overlap lies at the
right edge of LEFT and the left edge of RIGHT; only its width is used.
Inside the overlap, the images are mixed with a smooth transition.`,
		Example: `  rastercalc blend --overlap 900,0,1000,800 left.png right.png mosaic.png`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readImage(args[0])
			if err != nil {
				return err
			}
			b, err := readImage(args[1])
			if err != nil {
				return err
			}
			res, err := balance.GradientBlend(a, b, overlap, width)
			if err != nil {
				return err
			}
			return writeImage(args[2], res)
		},
	}
	cmd.Flags().Var(rectValue{&overlap}, "overlap", "overlap `xmin,ymin,xmax,ymax` in the left image")
	cmd.Flags().IntVar(&width, "width", 0, "width of the transition (0 = whole overlap)")
	cmd.MarkFlagRequired("overlap")
	return cmd
}
