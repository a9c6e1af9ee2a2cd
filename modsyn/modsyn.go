// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package modsyn provides the modulated synapse models of the "modmodule"
extension: synapses whose weight is periodically rescaled from a baseline
initial weight by the activity of a volume transmitter, as a model of
dopaminergic modulation.

At each delivery of its volume transmitter, a modulated synapse computes

	m = 2 * n / (deliver_interval * max_modulation)

where n is the number of modulatory spikes the transmitter collected over
the last deliver_interval steps, and sets

	weight = initial_weight * f(m)

with f(m) = m for modulatory_synapse, 1 + alpha*m for d1_synapse and
1 - alpha*m for d2_synapse.

Importing this package registers the module:

	import _ "github.com/emer/modnet/modsyn"

	nt.Install("modmodule")
*/
package modsyn

import (
	"fmt"

	"github.com/emer/modnet/modnet"
	"github.com/goki/ki/kit"
)

// ModFuncs are the modulation functions of the modulated synapse models
type ModFuncs int32

//go:generate stringer -type=ModFuncs

var KiT_ModFuncs = kit.Enums.AddEnum(ModFuncsN, kit.NotBitFlag, nil)

func (ev ModFuncs) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *ModFuncs) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The modulation functions
const (
	// Modulatory scales the weight by the modulation: f(m) = m
	Modulatory ModFuncs = iota

	// D1 is excitatory modulation: f(m) = 1 + alpha * m
	D1

	// D2 is inhibitory modulation: f(m) = 1 - alpha * m
	D2

	ModFuncsN
)

// ModelNames are the registered synapse model names for each function
var ModelNames = map[ModFuncs]string{
	Modulatory: "modulatory_synapse",
	D1:         "d1_synapse",
	D2:         "d2_synapse",
}

// Mod computes the modulation factor f(m) for given alpha
func (ev ModFuncs) Mod(m, alpha float32) float32 {
	switch ev {
	case D1:
		return 1 + alpha*m
	case D2:
		return 1 - alpha*m
	}
	return m
}

// UsesAlpha returns true if the function has an alpha parameter
func (ev ModFuncs) UsesAlpha() bool {
	return ev == D1 || ev == D2
}

// CommonParams are the properties shared by all synapses of a model
type CommonParams struct {
	VT            int     `def:"-1" desc:"global id of the volume transmitter driving the synapses, -1 if not assigned"`
	MaxModulation float32 `def:"1" min:"0" desc:"number of modulatory spikes per deliver_interval that corresponds to m = 2"`
	EvenStepsOnly bool    `def:"true" desc:"only transmit spikes emitted on even time steps"`
}

func (cp *CommonParams) Defaults() {
	cp.VT = -1
	cp.MaxModulation = 1
	cp.EvenStepsOnly = true
}

// Modulation returns m for given number of modulatory spikes over deliverInterval steps
func (cp *CommonParams) Modulation(nspikes float64, deliverInterval int) float32 {
	return float32(2 * nspikes / (float64(deliverInterval) * float64(cp.MaxModulation)))
}

// Model is a modulated synapse model
type Model struct {
	Nm   string   `desc:"model name"`
	Func ModFuncs `desc:"modulation function"`
	modnet.StaticParams
	InitWeight float32      `def:"1" desc:"default initial_weight of new connections -- the baseline weight that is modulated"`
	Alpha      float32      `def:"1" desc:"default strength of modulation of new connections (d1 and d2 only)"`
	Common     CommonParams `view:"inline" desc:"properties shared by all synapses of this model"`
}

// NewModel returns a model with default parameters for given function
func NewModel(name string, fn ModFuncs) *Model {
	md := &Model{Nm: name, Func: fn}
	md.Defaults()
	return md
}

func (md *Model) Defaults() {
	md.StaticParams.Defaults()
	md.InitWeight = 1
	md.Alpha = 1
	md.Common.Defaults()
}

func (md *Model) Name() string { return md.Nm }

func (md *Model) Copy(name string) modnet.SynModel {
	cp := *md
	cp.Nm = name
	return &cp
}

func (md *Model) Modulated() bool  { return true }
func (md *Model) VolTransGID() int { return md.Common.VT }

// SetDefaults applies the dict to the connection defaults and common properties.
// vt must be the global id of a volume_transmitter.
func (md *Model) SetDefaults(d modnet.Dict, ctx modnet.ModelContext) error {
	cp := *md
	for _, k := range d.Keys() {
		v := d[k]
		if has, err := cp.StaticParams.SetParam(k, v); has {
			if err != nil {
				return err
			}
			continue
		}
		switch k {
		case "initial_weight":
			f, err := modnet.DictFloat(k, v)
			if err != nil {
				return err
			}
			cp.InitWeight = float32(f)
			if _, has := d["weight"]; !has {
				cp.Weight = float32(f)
			}
		case "alpha":
			if !cp.Func.UsesAlpha() {
				return modnet.BadProperty(k, "not a parameter of "+md.Nm)
			}
			f, err := modnet.DictFloat(k, v)
			if err != nil {
				return err
			}
			cp.Alpha = float32(f)
		case "vt":
			vt, err := modnet.DictInt(k, v)
			if err != nil {
				return err
			}
			if vt != -1 && (ctx == nil || !ctx.IsVolTrans(vt)) {
				return modnet.BadProperty(k, "Modulatory source must be volume transmitter")
			}
			cp.Common.VT = vt
		case "max_modulation":
			f, err := modnet.DictFloat(k, v)
			if err != nil {
				return err
			}
			if f <= 0 {
				return modnet.BadProperty(k, "must be > 0")
			}
			cp.Common.MaxModulation = float32(f)
		case "even_steps_only":
			b, err := modnet.DictBool(k, v)
			if err != nil {
				return err
			}
			cp.Common.EvenStepsOnly = b
		default:
			return modnet.BadProperty(k, "not a parameter of "+md.Nm)
		}
	}
	*md = cp
	return nil
}

// DefaultsDict returns the connection defaults and common properties
func (md *Model) DefaultsDict() modnet.Dict {
	d := modnet.Dict{"synapse_model": md.Nm}
	md.StaticParams.AddStatus(d)
	d["initial_weight"] = float64(md.InitWeight)
	if md.Func.UsesAlpha() {
		d["alpha"] = float64(md.Alpha)
	}
	md.addCommon(d)
	return d
}

func (md *Model) addCommon(d modnet.Dict) {
	d["vt"] = md.Common.VT
	d["max_modulation"] = float64(md.Common.MaxModulation)
	d["even_steps_only"] = md.Common.EvenStepsOnly
}

// InitSyn initializes a new synapse from the defaults
func (md *Model) InitSyn(sy *modnet.Synapse) {
	md.StaticParams.InitSyn(sy)
	sy.InitWt = md.InitWeight
	sy.Alpha = md.Alpha
}

// SetSynParam sets weight, delay, initial_weight or alpha on one synapse.
// Setting initial_weight also sets the current weight.
func (md *Model) SetSynParam(sy *modnet.Synapse, key string, val float64) error {
	if has, err := md.StaticParams.SetSynParam(sy, key, val); has {
		return err
	}
	switch key {
	case "initial_weight":
		sy.InitWt = float32(val)
		sy.Wt = float32(val)
		return nil
	case "alpha":
		if md.Func.UsesAlpha() {
			sy.Alpha = float32(val)
			return nil
		}
	case "vt", "max_modulation", "even_steps_only":
		return modnet.BadProperty(key, fmt.Sprintf("common property of %s -- set it on the model", md.Nm))
	}
	return modnet.BadProperty(key, "not a parameter of "+md.Nm)
}

// SynStatus returns the synapse parameters plus the common properties
func (md *Model) SynStatus(sy *modnet.Synapse) modnet.Dict {
	d := modnet.Dict{
		"weight":         float64(sy.Wt),
		"delay":          float64(sy.Delay),
		"initial_weight": float64(sy.InitWt),
	}
	if md.Func.UsesAlpha() {
		d["alpha"] = float64(sy.Alpha)
	}
	md.addCommon(d)
	return d
}

// Send drops spikes with odd time stamps if EvenStepsOnly
func (md *Model) Send(sy *modnet.Synapse, stamp int64) bool {
	return !md.Common.EvenStepsOnly || stamp%2 == 0
}

// TriggerUpdateWeight sets weight = initial_weight * f(m)
func (md *Model) TriggerUpdateWeight(sy *modnet.Synapse, nspikes float64, deliverInterval int) {
	m := md.Common.Modulation(nspikes, deliverInterval)
	sy.Wt = sy.InitWt * md.Func.Mod(m, sy.Alpha)
}
