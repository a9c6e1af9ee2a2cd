// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// modnet runs spiking network experiments described in YAML files.
package main

import (
	"fmt"
	"os"

	_ "github.com/emer/modnet/modsyn"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modnet",
		Short: "Spiking network simulator with dopamine-modulated synapses",
		Long: `modnet builds and runs spiking networks of iaf_psc_exp neurons, Poisson
generators, volume transmitters and spike recorders, connected through static
or modulated (modulatory, d1, d2) synapses, as described in YAML experiment files.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		newRunCmd(),
		newCheckCmd(),
		newModelsCmd(),
	)
	return rootCmd
}
