// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/emer/modnet/modnet"
	"github.com/spf13/cobra"
)

func newModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the available modules and models",
		Long: `List the registered extension modules, and the node and synapse models
available once the given modules are installed (all modules by default).

Examples:
  modnet models
  modnet models --defaults d1_synapse`,
		RunE: func(cmd *cobra.Command, args []string) error {
			nt := modnet.NewNetwork("models")
			defer nt.Close()
			mods, _ := cmd.Flags().GetStringSlice("install")
			if len(mods) == 0 {
				mods = modnet.ModuleNames()
			}
			for _, md := range mods {
				if err := nt.Install(md); err != nil {
					return err
				}
			}
			w := cmd.OutOrStdout()
			if nm, _ := cmd.Flags().GetString("defaults"); nm != "" {
				d, err := nt.GetDefaults(nm)
				if err != nil {
					return err
				}
				for _, k := range d.Keys() {
					fmt.Fprintf(w, "%s: %v\n", k, d[k])
				}
				return nil
			}
			fmt.Fprintf(w, "modules: %s\n", strings.Join(modnet.ModuleNames(), ", "))
			fmt.Fprintf(w, "node models:\n")
			for _, nm := range nt.NodeModelNames() {
				fmt.Fprintf(w, "\t%s\n", nm)
			}
			fmt.Fprintf(w, "synapse models:\n")
			for _, nm := range nt.SynModelNames() {
				fmt.Fprintf(w, "\t%s\n", nm)
			}
			return nil
		},
	}
	cmd.Flags().StringSlice("install", nil, "Modules to install (default all)")
	cmd.Flags().String("defaults", "", "Print the defaults of the named model")
	return cmd
}
