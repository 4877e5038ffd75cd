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
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/raster"
	"seehuhn.de/go/raster/balance"
	"seehuhn.de/go/raster/internal/float"
)

// number of histogram rows printed by the stats command
const histRows = 16

func newStatsCmd() *cobra.Command {
	var (
		region rect.IntRect
		hist   bool
	)
	cmd := &cobra.Command{
		Use:   "stats IN",
		Short: "print band statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := readImage(args[0])
			if err != nil {
				return err
			}

			barWidth := 0
			if hist {
				barWidth = 40
				if fd := int(os.Stdout.Fd()); term.IsTerminal(fd) {
					if w, _, err := term.GetSize(fd); err == nil && w > 40 {
						barWidth = w - 20
					}
				}
			}
			return printStats(cmd.OutOrStdout(), ds, region, barWidth)
		},
	}
	cmd.Flags().Var(rectValue{&region}, "region", "only use the pixels in `xmin,ymin,xmax,ymax`")
	cmd.Flags().BoolVar(&hist, "hist", false, "print a histogram for every band")
	return cmd
}

// printStats writes a summary of every band of ds to w.  If barWidth is
// positive, a histogram with bars of at most barWidth characters is
// printed after each band summary.
func printStats(w io.Writer, ds raster.Dataset, region rect.IntRect, barWidth int) error {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "%d x %d pixels, %d bands\n", ds.Width(), ds.Height(), ds.BandCount())
	if m, ok := ds.(*raster.Memory); ok && m.Projection != "" {
		p.Fprintf(w, "projection: %s\n", m.Projection)
	}
	for b := 1; b <= ds.BandCount(); b++ {
		s, err := balance.BandStats(ds, b, region)
		if err != nil {
			return err
		}
		p.Fprintf(w, "band %d: min %s, max %s, mean %s, std %s, %d pixels",
			b, float.Format(s.Min, 0), float.Format(s.Max, 0),
			float.Format(s.Mean, 2), float.Format(s.StdDev, 2), s.Count)
		if v, ok := ds.NoData(b); ok {
			p.Fprintf(w, ", nodata %s", float.Format(v, 2))
		}
		p.Fprintln(w)

		if barWidth > 0 {
			for _, line := range histogramBars(&s.Histogram, histRows, barWidth) {
				p.Fprintln(w, line)
			}
		}
	}
	return nil
}

// histogramBars groups the 256 histogram bins into rows and returns one
// text line per row.  The longest bar has width characters.
func histogramBars(hist *[256]int, rows, width int) []string {
	counts := make([]int, rows)
	for i, n := range hist {
		counts[i*rows/256] += n
	}
	maxCount := 0
	for _, n := range counts {
		maxCount = max(maxCount, n)
	}

	p := message.NewPrinter(language.English)
	lines := make([]string, rows)
	for k, n := range counts {
		lo := (k*256 + rows - 1) / rows
		hi := ((k+1)*256+rows-1)/rows - 1
		bar := 0
		if maxCount > 0 {
			bar = n * width / maxCount
		}
		lines[k] = p.Sprintf("%3d-%3d %s %d", lo, hi, strings.Repeat("#", bar), n)
	}
	return lines
}
