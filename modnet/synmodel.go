// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modnet

// ModelContext gives synapse models access to the network when validating
// their common properties.
type ModelContext interface {
	// IsVolTrans returns true if gid is a volume_transmitter node
	IsVolTrans(gid int) bool
}

// SynModel is a synapse model.  A model holds the defaults for new
// connections plus any properties common to all connections made with it,
// and implements the transmission and weight update rules.
// Extension modules register additional models (see Module).
type SynModel interface {
	// Name is the name connections refer to, e.g., static_synapse
	Name() string

	// Copy returns an independent copy of the model under a new name,
	// including its common properties
	Copy(name string) SynModel

	// SetDefaults applies the dict to the connection defaults and
	// common properties.  An error must leave the model unchanged.
	SetDefaults(d Dict, ctx ModelContext) error

	// DefaultsDict returns the connection defaults and common properties
	DefaultsDict() Dict

	// InitSyn initializes a new synapse from the defaults
	InitSyn(sy *Synapse)

	// SetSynParam sets one per-connection parameter
	SetSynParam(sy *Synapse, key string, val float64) error

	// SynStatus returns the per-connection parameters of the synapse
	SynStatus(sy *Synapse) Dict

	// Modulated returns true if the model is driven by a volume transmitter
	Modulated() bool

	// VolTransGID returns the gid of the volume transmitter, or -1 if none
	VolTransGID() int

	// Send returns true if a spike with given time stamp (in steps)
	// is transmitted through the synapse
	Send(sy *Synapse, stamp int64) bool

	// TriggerUpdateWeight updates the weight from the number of modulatory
	// spikes collected by the volume transmitter over its last deliverInterval steps
	TriggerUpdateWeight(sy *Synapse, nspikes float64, deliverInterval int)
}

// StaticParams are the weight and delay defaults shared by all synapse models
type StaticParams struct {
	Weight float32 `def:"1" desc:"default weight of new connections (pA)"`
	Delay  float32 `def:"1" min:"0" desc:"default delay of new connections (ms)"`
}

func (sp *StaticParams) Defaults() {
	sp.Weight = 1
	sp.Delay = 1
}

// SetParam sets weight or delay defaults, returning false if the key is not one of them
func (sp *StaticParams) SetParam(key string, v any) (bool, error) {
	switch key {
	case "weight":
		f, err := DictFloat(key, v)
		if err != nil {
			return true, err
		}
		sp.Weight = float32(f)
		return true, nil
	case "delay":
		f, err := DictFloat(key, v)
		if err != nil {
			return true, err
		}
		if f <= 0 {
			return true, BadProperty(key, "must be > 0")
		}
		sp.Delay = float32(f)
		return true, nil
	}
	return false, nil
}

// InitSyn sets the synapse weight and delay from the defaults
func (sp *StaticParams) InitSyn(sy *Synapse) {
	sy.Wt = sp.Weight
	sy.InitWt = sp.Weight
	sy.Delay = sp.Delay
}

// SetSynParam sets weight or delay on the synapse, returning false if the key is not one of them
func (sp *StaticParams) SetSynParam(sy *Synapse, key string, val float64) (bool, error) {
	switch key {
	case "weight":
		sy.Wt = float32(val)
		return true, nil
	case "delay":
		if val <= 0 {
			return true, BadProperty(key, "must be > 0")
		}
		sy.Delay = float32(val)
		return true, nil
	}
	return false, nil
}

// AddStatus adds the defaults to the dict
func (sp *StaticParams) AddStatus(d Dict) {
	d["weight"] = float64(sp.Weight)
	d["delay"] = float64(sp.Delay)
}

// StaticSyn is the static_synapse model: fixed weight, every spike transmitted
type StaticSyn struct {
	Nm string `desc:"model name"`
	StaticParams
}

// NewStaticSyn returns a static synapse model with default parameters
func NewStaticSyn(name string) *StaticSyn {
	ss := &StaticSyn{Nm: name}
	ss.StaticParams.Defaults()
	return ss
}

func (ss *StaticSyn) Name() string { return ss.Nm }

func (ss *StaticSyn) Copy(name string) SynModel {
	cp := *ss
	cp.Nm = name
	return &cp
}

func (ss *StaticSyn) SetDefaults(d Dict, ctx ModelContext) error {
	sp := ss.StaticParams
	for _, k := range d.Keys() {
		has, err := sp.SetParam(k, d[k])
		if err != nil {
			return err
		}
		if !has {
			return BadProperty(k, "not a parameter of "+ss.Nm)
		}
	}
	ss.StaticParams = sp
	return nil
}

func (ss *StaticSyn) DefaultsDict() Dict {
	d := Dict{"synapse_model": ss.Nm}
	ss.AddStatus(d)
	return d
}

func (ss *StaticSyn) InitSyn(sy *Synapse) {
	ss.StaticParams.InitSyn(sy)
}

func (ss *StaticSyn) SetSynParam(sy *Synapse, key string, val float64) error {
	has, err := ss.StaticParams.SetSynParam(sy, key, val)
	if err != nil {
		return err
	}
	if !has {
		return BadProperty(key, "not a parameter of "+ss.Nm)
	}
	return nil
}

func (ss *StaticSyn) SynStatus(sy *Synapse) Dict {
	return Dict{"weight": float64(sy.Wt), "delay": float64(sy.Delay)}
}

func (ss *StaticSyn) Modulated() bool                                 { return false }
func (ss *StaticSyn) VolTransGID() int                                { return -1 }
func (ss *StaticSyn) Send(sy *Synapse, stamp int64) bool              { return true }
func (ss *StaticSyn) TriggerUpdateWeight(sy *Synapse, n float64, di int) {}
