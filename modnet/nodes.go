// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modnet

import (
	"fmt"
	"math"
	"strings"

	"github.com/emer/modnet/iaf"
	"github.com/goki/ki/kit"
)

// NodeKinds are the different kinds of nodes in the network.
type NodeKinds int32

//go:generate stringer -type=NodeKinds

var KiT_NodeKinds = kit.Enums.AddEnum(NodeKindsN, kit.NotBitFlag, nil)

func (ev NodeKinds) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *NodeKinds) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The node kinds
const (
	// NeuronNode is an iaf_psc_exp spiking neuron
	NeuronNode NodeKinds = iota

	// GeneratorNode is a poisson_generator, which sends an independent
	// Poisson spike train to each of its targets
	GeneratorNode

	// VolTransNode is a volume_transmitter, which collects modulatory spikes
	// and periodically delivers them to all synapses that refer to it
	VolTransNode

	// RecorderNode is a spike_recorder, which records spikes sent to it
	RecorderNode

	NodeKindsN
)

// IsDevice returns true for nodes that do not have membrane dynamics.
func (ev NodeKinds) IsDevice() bool {
	return ev != NeuronNode
}

//////////////////////////////////////////////////////////////////////////////////////
//  PoissonParams

// PoissonParams are the parameters of a poisson_generator
type PoissonParams struct {
	Rate   float64 `def:"0" min:"0" desc:"mean firing rate (Hz)"`
	Origin float64 `def:"0" desc:"time origin for start and stop (ms)"`
	Start  float64 `def:"0" desc:"begin of activity relative to Origin (ms)"`
	Stop   float64 `desc:"end of activity relative to Origin (ms) -- +Inf by default"`
}

func (pp *PoissonParams) Defaults() {
	pp.Rate = 0
	pp.Origin = 0
	pp.Start = 0
	pp.Stop = math.Inf(1)
}

// Active returns true if the generator emits spikes at time t (ms),
// i.e., Origin+Start <= t < Origin+Stop
func (pp *PoissonParams) Active(t float64) bool {
	return t >= pp.Origin+pp.Start && t < pp.Origin+pp.Stop
}

// Lambda returns the expected number of spikes per step of h ms.
func (pp *PoissonParams) Lambda(h float64) float64 {
	return pp.Rate * h * 0.001
}

//////////////////////////////////////////////////////////////////////////////////////
//  VolTransParams

// VolTransParams are the parameters of a volume_transmitter
type VolTransParams struct {
	DeliverInterval int `def:"1" min:"1" desc:"number of min_delay intervals between deliveries of the collected modulatory spikes to the synapses (deliver_interval)"`
}

func (vp *VolTransParams) Defaults() {
	vp.DeliverInterval = 1
}

//////////////////////////////////////////////////////////////////////////////////////
//  RecorderParams

// RecorderParams are the parameters of a spike_recorder
type RecorderParams struct {
	Start float64 `def:"0" desc:"record spikes with time >= Start (ms)"`
	Stop  float64 `desc:"record spikes with time < Stop (ms) -- +Inf by default"`
}

func (rp *RecorderParams) Defaults() {
	rp.Start = 0
	rp.Stop = math.Inf(1)
}

// Records returns true if a spike at time t is recorded.
func (rp *RecorderParams) Records(t float64) bool {
	return t >= rp.Start && t < rp.Stop
}

//////////////////////////////////////////////////////////////////////////////////////
//  NodeParams

// NodeParams holds the parameters for all node kinds -- only the ones
// relevant to the node's kind are used.
type NodeParams struct {
	Iaf      iaf.Params     `view:"inline" desc:"iaf_psc_exp neuron parameters"`
	Poisson  PoissonParams  `view:"inline" desc:"poisson_generator parameters"`
	VolTrans VolTransParams `view:"inline" desc:"volume_transmitter parameters"`
	Rec      RecorderParams `view:"inline" desc:"spike_recorder parameters"`
}

func (np *NodeParams) Defaults() {
	np.Iaf.Defaults()
	np.Poisson.Defaults()
	np.VolTrans.Defaults()
	np.Rec.Defaults()
}

// Update must be called after any changes to parameters, with the kernel resolution.
func (np *NodeParams) Update(h float64) {
	np.Iaf.Update(float32(h))
}

// Validate returns an error for any invalid parameter for given kind.
func (np *NodeParams) Validate(kind NodeKinds) error {
	switch kind {
	case NeuronNode:
		if msgs := np.Iaf.Validate(); len(msgs) > 0 {
			return fmt.Errorf("%w: %s", ErrBadProperty, strings.Join(msgs, "; "))
		}
	case GeneratorNode:
		if np.Poisson.Rate < 0 {
			return BadProperty("rate", "must be >= 0")
		}
		if np.Poisson.Stop < np.Poisson.Start {
			return BadProperty("stop", "must be >= start")
		}
	case VolTransNode:
		if np.VolTrans.DeliverInterval < 1 {
			return BadProperty("deliver_interval", "must be >= 1")
		}
	case RecorderNode:
		if np.Rec.Stop < np.Rec.Start {
			return BadProperty("stop", "must be >= start")
		}
	}
	return nil
}

// IafKeys are the status keys of iaf_psc_exp parameters
var IafKeys = []string{"C_m", "tau_m", "tau_syn_ex", "tau_syn_in", "t_ref", "E_L", "V_reset", "V_th", "I_e"}

func iafParam(ip *iaf.Params, key string) *float32 {
	switch key {
	case "C_m":
		return &ip.Cm
	case "tau_m":
		return &ip.TauM
	case "tau_syn_ex":
		return &ip.TauSynEx
	case "tau_syn_in":
		return &ip.TauSynIn
	case "t_ref":
		return &ip.TRef
	case "E_L":
		return &ip.EL
	case "V_reset":
		return &ip.VReset
	case "V_th":
		return &ip.VTh
	case "I_e":
		return &ip.Ie
	}
	return nil
}

// SetParam sets one parameter by its status key, for a node of given kind.
func (np *NodeParams) SetParam(kind NodeKinds, key string, v any) error {
	switch kind {
	case NeuronNode:
		if fp := iafParam(&np.Iaf, key); fp != nil {
			f, err := DictFloat(key, v)
			if err != nil {
				return err
			}
			*fp = float32(f)
			return nil
		}
	case GeneratorNode:
		var fp *float64
		switch key {
		case "rate":
			fp = &np.Poisson.Rate
		case "origin":
			fp = &np.Poisson.Origin
		case "start":
			fp = &np.Poisson.Start
		case "stop":
			fp = &np.Poisson.Stop
		}
		if fp != nil {
			f, err := DictFloat(key, v)
			if err != nil {
				return err
			}
			*fp = f
			return nil
		}
	case VolTransNode:
		if key == "deliver_interval" {
			di, err := DictInt(key, v)
			if err != nil {
				return err
			}
			np.VolTrans.DeliverInterval = di
			return nil
		}
	case RecorderNode:
		var fp *float64
		switch key {
		case "start":
			fp = &np.Rec.Start
		case "stop":
			fp = &np.Rec.Stop
		}
		if fp != nil {
			f, err := DictFloat(key, v)
			if err != nil {
				return err
			}
			*fp = f
			return nil
		}
	}
	return BadProperty(key, fmt.Sprintf("not a parameter of %v", kind))
}

// Status returns the parameters relevant to given kind as a Dict.
func (np *NodeParams) Status(kind NodeKinds) Dict {
	d := Dict{}
	switch kind {
	case NeuronNode:
		for _, k := range IafKeys {
			d[k] = float64(*iafParam(&np.Iaf, k))
		}
	case GeneratorNode:
		d["rate"] = np.Poisson.Rate
		d["origin"] = np.Poisson.Origin
		d["start"] = np.Poisson.Start
		d["stop"] = np.Poisson.Stop
	case VolTransNode:
		d["deliver_interval"] = np.VolTrans.DeliverInterval
	case RecorderNode:
		d["start"] = np.Rec.Start
		d["stop"] = np.Rec.Stop
	}
	return d
}

//////////////////////////////////////////////////////////////////////////////////////
//  Node

// SpikeEvent is one recorded spike
type SpikeEvent struct {
	Sender int     `desc:"global id of the sending node"`
	Time   float64 `desc:"spike time (ms)"`
}

// Node holds the parameters and state of one node in the network.
// Global ids start at 1.
type Node struct {
	GID   int        `desc:"global id of this node"`
	Kind  NodeKinds  `desc:"kind of node"`
	Model string     `desc:"name of the model this node was created from"`
	Pop   int        `desc:"index of the population this node belongs to"`
	Thr   int        `desc:"thread (virtual process) that owns this node"`
	Pars  NodeParams `desc:"parameters"`

	Nrn       iaf.State    `desc:"neuron state (NeuronNode only)"`
	NSpikes   int          `desc:"number of spikes emitted (neurons) or recorded (recorders)"`
	LastSpike float64      `desc:"time of last emitted spike (ms), -1 if none"`
	VTCount   float64      `desc:"modulatory spikes received since last delivery (VolTransNode only)"`
	NDeliver  int          `desc:"number of deliveries made (VolTransNode only)"`
	Events    []SpikeEvent `desc:"recorded spikes (RecorderNode only)"`

	ExBuf []float32 `view:"-" desc:"ring buffer of excitatory input, indexed by step % len"`
	InBuf []float32 `view:"-" desc:"ring buffer of inhibitory input, indexed by step % len"`
}

// ReadOnlyKeys are status keys that are reported but cannot be set
var ReadOnlyKeys = map[string]bool{
	"model":        true,
	"global_id":    true,
	"thread":       true,
	"vp":           true,
	"n_spikes":     true,
	"n_events":     true,
	"events":       true,
	"spike_count":  true,
	"n_deliveries": true,
}

// InitState resets the dynamic state of the node.
func (nd *Node) InitState() {
	nd.Pars.Iaf.InitState(&nd.Nrn)
	nd.NSpikes = 0
	nd.LastSpike = -1
	nd.VTCount = 0
	nd.NDeliver = 0
	nd.Events = nil
	for i := range nd.ExBuf {
		nd.ExBuf[i] = 0
		nd.InBuf[i] = 0
	}
}

// SetStatus applies the dict to this node.  All keys are applied to a copy
// of the parameters first, so an error leaves the node unchanged.
// h is the kernel resolution.
func (nd *Node) SetStatus(d Dict, h float64) error {
	pars := nd.Pars
	var vm *float32
	for _, k := range d.Keys() {
		v := d[k]
		switch {
		case ReadOnlyKeys[k]:
			return BadProperty(k, "read-only")
		case k == "V_m" && nd.Kind == NeuronNode:
			f, err := DictFloat(k, v)
			if err != nil {
				return err
			}
			fv := float32(f)
			vm = &fv
		default:
			if err := pars.SetParam(nd.Kind, k, v); err != nil {
				return err
			}
		}
	}
	if err := pars.Validate(nd.Kind); err != nil {
		return err
	}
	if nd.Kind == NeuronNode && pars.Iaf.EL != nd.Pars.Iaf.EL {
		// keep absolute potential
		nd.Nrn.Vm += nd.Pars.Iaf.EL - pars.Iaf.EL
	}
	pars.Update(h)
	nd.Pars = pars
	if vm != nil {
		nd.Pars.Iaf.SetVm(&nd.Nrn, *vm)
	}
	return nil
}

// Status returns the parameters and observable state of the node.
func (nd *Node) Status() Dict {
	d := nd.Pars.Status(nd.Kind)
	d["model"] = nd.Model
	d["global_id"] = nd.GID
	d["thread"] = nd.Thr
	d["vp"] = nd.Thr
	switch nd.Kind {
	case NeuronNode:
		d["V_m"] = float64(nd.Pars.Iaf.Vm(&nd.Nrn))
		d["n_spikes"] = nd.NSpikes
	case VolTransNode:
		d["spike_count"] = nd.VTCount
		d["n_deliveries"] = nd.NDeliver
	case RecorderNode:
		d["n_events"] = len(nd.Events)
		snd := make([]int, len(nd.Events))
		tms := make([]float64, len(nd.Events))
		for i, ev := range nd.Events {
			snd[i] = ev.Sender
			tms[i] = ev.Time
		}
		d["events"] = Dict{"senders": snd, "times": tms}
	}
	return d
}
