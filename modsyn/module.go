// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modsyn

import "github.com/emer/modnet/modnet"

// ModuleName is the name the module is installed by
const ModuleName = "modmodule"

// Module installs modulatory_synapse, d1_synapse and d2_synapse
type Module struct{}

func (md *Module) Name() string { return ModuleName }

func (md *Module) Init(nt *modnet.Network) error {
	for fn := Modulatory; fn < ModFuncsN; fn++ {
		if err := nt.RegisterSynModel(NewModel(ModelNames[fn], fn)); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	modnet.RegisterModule(&Module{})
}
