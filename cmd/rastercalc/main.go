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

// Rastercalc evaluates band algebra expressions and applies tone and
// colour corrections to raster images.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"seehuhn.de/go/raster/internal/buildinfo"
	"seehuhn.de/go/raster/internal/profile"
)

// settings shared by all sub-commands
type globals struct {
	verbose    bool
	workers    int
	cpuprofile string
	memprofile string

	logger *slog.Logger
	stop   func() error
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rastercalc:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:           "rastercalc",
		Short:         "band algebra and colour correction for raster images",
		Version:       buildinfo.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelInfo
			if g.verbose {
				level = slog.LevelDebug
			}
			g.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(),
				&slog.HandlerOptions{Level: level}))

			stop, err := profile.Start(g.cpuprofile, g.memprofile)
			if err != nil {
				return err
			}
			g.stop = stop
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if g.stop == nil {
				return nil
			}
			return g.stop()
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "print debug messages")
	flags.IntVarP(&g.workers, "workers", "j", 0, "number of worker goroutines (0 = all CPUs)")
	flags.StringVar(&g.cpuprofile, "cpuprofile", "", "write cpu profile to `file`")
	flags.StringVar(&g.memprofile, "memprofile", "", "write memory profile to `file`")

	root.AddCommand(
		newCalcCmd(g),
		newCheckCmd(),
		newIndexCmd(g),
		newToneCmd(g),
		newBalanceCmd(g),
		newBatchCmd(g),
		newBlendCmd(),
		newPipelineCmd(g),
		newStatsCmd(),
	)
	return root
}
