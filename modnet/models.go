// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modnet

// NodeModel is a named node model: a kind of node plus its default parameters.
// New models are derived from existing ones with Network.CopyModel.
type NodeModel struct {
	Name string     `desc:"name of the model, e.g., iaf_psc_exp"`
	Kind NodeKinds  `desc:"kind of node created by this model"`
	Base string     `desc:"name of the built-in model this was copied from"`
	Pars NodeParams `desc:"default parameters of new nodes"`
}

// NewNodeModel returns a new model of given kind with default parameters
func NewNodeModel(name string, kind NodeKinds) *NodeModel {
	md := &NodeModel{Name: name, Kind: kind, Base: name}
	md.Pars.Defaults()
	return md
}

// Copy returns a copy of this model under a new name
func (md *NodeModel) Copy(name string) *NodeModel {
	cp := *md
	cp.Name = name
	return &cp
}

// SetDefaults applies the dict to the default parameters.
// h is the kernel resolution.  An error leaves the model unchanged.
func (md *NodeModel) SetDefaults(d Dict, h float64) error {
	pars := md.Pars
	for _, k := range d.Keys() {
		if ReadOnlyKeys[k] {
			return BadProperty(k, "read-only")
		}
		if err := pars.SetParam(md.Kind, k, d[k]); err != nil {
			return err
		}
	}
	if err := pars.Validate(md.Kind); err != nil {
		return err
	}
	pars.Update(h)
	md.Pars = pars
	return nil
}

// Defaults returns the default parameters as a Dict
func (md *NodeModel) Defaults() Dict {
	d := md.Pars.Status(md.Kind)
	d["model"] = md.Name
	return d
}

// BuiltinNodeModels returns the set of node models available in every network
func BuiltinNodeModels() map[string]*NodeModel {
	ms := map[string]*NodeModel{
		"iaf_psc_exp":        NewNodeModel("iaf_psc_exp", NeuronNode),
		"poisson_generator":  NewNodeModel("poisson_generator", GeneratorNode),
		"volume_transmitter": NewNodeModel("volume_transmitter", VolTransNode),
		"spike_recorder":     NewNodeModel("spike_recorder", RecorderNode),
	}
	ms["spike_detector"] = ms["spike_recorder"].Copy("spike_detector")
	return ms
}
