// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/emer/emergent/timer"
	"github.com/emer/etable/etable"
	"github.com/emer/modnet/expt"
	"github.com/goki/gi/gi"
	"github.com/spf13/cobra"
)

// loadExpt loads the experiment and applies the kernel overrides from the flags
func loadExpt(cmd *cobra.Command, fn string) (*expt.Experiment, error) {
	ex, err := expt.Load(fn)
	if err != nil {
		return nil, err
	}
	if thr, _ := cmd.Flags().GetInt("threads"); thr > 0 {
		ex.Kernel.Threads = thr
	}
	if cmd.Flags().Changed("seed") {
		sd, _ := cmd.Flags().GetInt64("seed")
		ex.Kernel.Seed = &sd
	}
	return ex, nil
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <experiment.yaml>",
		Short: "Build and simulate an experiment",
		Long: `Build the network described by the experiment file and simulate it.

Prints the number of spikes and mean rate of each neuron population.
Recorded spikes are saved as <out>/<population>_spikes.csv.
Weights saved with --wts can be loaded into a later run with --wts-in.
With --warmup, the network is first simulated for the warm-up time, after
which recorded spikes and timers are cleared.

Examples:
  modnet run exitmod.yaml
  modnet run exitmod.yaml --threads 4 --seed 7 --out results
  modnet run exitmod.yaml --duration 100 --warmup 50 --timers
  modnet run exitmod.yaml --wts-in results/exitmod_wts.json.gz`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := loadExpt(cmd, args[0])
			if err != nil {
				return err
			}
			if dur, _ := cmd.Flags().GetFloat64("duration"); dur > 0 {
				ex.Simulate = dur
			}
			sm, err := expt.Build(ex)
			if err != nil {
				return err
			}
			defer sm.Close()

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: seeds: %v\n", sm.Net.Nm, sm.Seeds)
			if fn, _ := cmd.Flags().GetString("wts-in"); fn != "" {
				if err := sm.Net.OpenWtsJSON(gi.FileName(fn)); err != nil {
					return err
				}
				fmt.Fprintf(w, "loaded: %s\n", fn)
			}
			if wu, _ := cmd.Flags().GetFloat64("warmup"); wu > 0 {
				if err := sm.Net.Simulate(wu); err != nil {
					return err
				}
				sm.Reset()
				fmt.Fprintf(w, "warm-up: %.6g ms\n", wu)
			}
			var tm timer.Time
			tm.Start()
			if err := sm.Run(); err != nil {
				return err
			}
			tm.Stop()
			fmt.Fprintf(w, "simulated %.6g ms in %6.4g secs\n", sm.Net.Kernel.Time(), tm.TotalSecs())
			if err := sm.SpikeCounts().WriteCSV(w, etable.Tab, etable.Headers); err != nil {
				return err
			}
			if tmrs, _ := cmd.Flags().GetBool("timers"); tmrs {
				sm.Net.TimerReport()
			}

			out, _ := cmd.Flags().GetString("out")
			if out != "" {
				if err := os.MkdirAll(out, 0755); err != nil {
					return err
				}
				fns, err := sm.SaveEvents(out)
				if err != nil {
					return err
				}
				for _, fn := range fns {
					fmt.Fprintf(w, "saved: %s\n", fn)
				}
				if wts, _ := cmd.Flags().GetBool("wts"); wts {
					fn := filepath.Join(out, sm.Net.Nm+"_wts.json.gz")
					if err := sm.Net.SaveWtsJSON(gi.FileName(fn)); err != nil {
						return err
					}
					fmt.Fprintf(w, "saved: %s\n", fn)
				}
			}
			return nil
		},
	}
	cmd.Flags().String("out", "", "Directory to save recorded spikes (and weights) to")
	cmd.Flags().Int("threads", 0, "Number of threads, overriding the experiment")
	cmd.Flags().Int64("seed", 1, "Master seed, overriding the experiment")
	cmd.Flags().Float64("duration", 0, "Simulation time (ms), overriding the experiment")
	cmd.Flags().Bool("timers", false, "Print function and thread timers")
	cmd.Flags().Bool("wts", false, "Also save the final weights to the out directory")
	cmd.Flags().String("wts-in", "", "Weights file to load before simulating (.gz for compressed)")
	cmd.Flags().Float64("warmup", 0, "Time (ms) to simulate before the run, discarding its recorded spikes")
	return cmd
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <experiment.yaml>",
		Short: "Build an experiment without simulating it",
		Long: `Build the network described by the experiment file, reporting any
configuration error, and print its size.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ex, err := loadExpt(cmd, args[0])
			if err != nil {
				return err
			}
			sm, err := expt.Build(ex)
			if err != nil {
				return err
			}
			defer sm.Close()
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s: seeds: %v\n", sm.Net.Nm, sm.Seeds)
			fmt.Fprint(w, sm.Net.SizeReport())
			return nil
		},
	}
	cmd.Flags().Int("threads", 0, "Number of threads, overriding the experiment")
	cmd.Flags().Int64("seed", 1, "Master seed, overriding the experiment")
	return cmd
}
