// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modnet

import (
	"fmt"
	"reflect"
)

// modnet.Synapse holds state for the synaptic connection between nodes.
// All synapse models share this structure, and use the fields they need.
type Synapse struct {
	Wt     float32 `desc:"effective synaptic weight (pA) -- positive values are excitatory, negative inhibitory"`
	InitWt float32 `desc:"baseline weight that modulated synapses scale by their modulation function (initial_weight)"`
	Alpha  float32 `desc:"strength of modulation, for modulated synapses"`
	Delay  float32 `desc:"transmission delay (ms)"`
	DSteps int32   `view:"-" desc:"transmission delay in steps, computed from Delay and the kernel resolution"`
}

var SynapseVars = []string{"Wt", "InitWt", "Alpha", "Delay"}

var SynapseVarsMap map[string]int

func init() {
	SynapseVarsMap = make(map[string]int, len(SynapseVars))
	for i, v := range SynapseVars {
		SynapseVarsMap[v] = i
	}
}

func (sy *Synapse) VarNames() []string {
	return SynapseVars
}

// SynapseVarByName returns the index of the variable in the Synapse, or error
func SynapseVarByName(varNm string) (int, error) {
	i, ok := SynapseVarsMap[varNm]
	if !ok {
		return 0, fmt.Errorf("Synapse VarByName: variable name: %v not valid", varNm)
	}
	return i, nil
}

// VarByIndex returns variable using index (0 = first variable in SynapseVars list)
func (sy *Synapse) VarByIndex(idx int) float32 {
	v := reflect.ValueOf(*sy)
	return v.Field(idx).Interface().(float32)
}

// VarByName returns variable by name, or error
func (sy *Synapse) VarByName(varNm string) (float32, error) {
	i, err := SynapseVarByName(varNm)
	if err != nil {
		return 0, err
	}
	return sy.VarByIndex(i), nil
}

// SetVarByName sets synapse variable to given value
func (sy *Synapse) SetVarByName(varNm string, val float32) error {
	i, err := SynapseVarByName(varNm)
	if err != nil {
		return err
	}
	reflect.ValueOf(sy).Elem().Field(i).SetFloat(float64(val))
	return nil
}
