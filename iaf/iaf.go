// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package iaf provides the leaky integrate-and-fire neuron with exponentially
decaying post-synaptic currents (iaf_psc_exp), integrated exactly over a fixed
time step using precomputed propagators.

Membrane potential is stored relative to the resting potential E_L, so that all
propagators act on a linear system with a fixed point at zero.  Threshold and
reset values are specified in absolute mV and converted on use.
*/
package iaf

import (
	"github.com/chewxy/math32"
	"github.com/goki/mat32"
)

// Params are the iaf_psc_exp neuron parameters, in the usual units:
// pF for capacitance, ms for time constants, mV for potentials and pA for currents.
type Params struct {
	Cm       float32 `def:"250" min:"0" desc:"membrane capacitance (pF)"`
	TauM     float32 `def:"10" min:"0" desc:"membrane time constant (ms)"`
	TauSynEx float32 `def:"2" min:"0" desc:"time constant of excitatory post-synaptic current (ms)"`
	TauSynIn float32 `def:"2" min:"0" desc:"time constant of inhibitory post-synaptic current (ms)"`
	TRef     float32 `def:"2" min:"0" desc:"duration of refractory period (ms)"`
	EL       float32 `def:"-70" desc:"resting membrane potential (mV)"`
	VReset   float32 `def:"-70" desc:"reset potential of the membrane after a spike (mV)"`
	VTh      float32 `def:"-55" desc:"spike threshold (mV)"`
	Ie       float32 `def:"0" desc:"constant input current (pA)"`

	Dt           float32 `view:"-" json:"-" xml:"-" desc:"integration step (ms) used to compute the propagators"`
	P11ex        float32 `view:"-" json:"-" xml:"-" desc:"decay of the excitatory current over one step"`
	P11in        float32 `view:"-" json:"-" xml:"-" desc:"decay of the inhibitory current over one step"`
	P22          float32 `view:"-" json:"-" xml:"-" desc:"decay of the membrane potential over one step"`
	P21ex        float32 `view:"-" json:"-" xml:"-" desc:"contribution of the excitatory current to the membrane potential over one step"`
	P21in        float32 `view:"-" json:"-" xml:"-" desc:"contribution of the inhibitory current to the membrane potential over one step"`
	P20          float32 `view:"-" json:"-" xml:"-" desc:"contribution of constant current to the membrane potential over one step"`
	RefractSteps int32   `view:"-" json:"-" xml:"-" desc:"number of steps in the refractory period"`
}

func (p *Params) Defaults() {
	p.Cm = 250
	p.TauM = 10
	p.TauSynEx = 2
	p.TauSynIn = 2
	p.TRef = 2
	p.EL = -70
	p.VReset = -70
	p.VTh = -55
	p.Ie = 0
	p.Update(0.1)
}

// Update recomputes the propagators for integration step dt (ms).
// Must be called after any change to parameters.
func (p *Params) Update(dt float32) {
	p.Dt = dt
	p.P11ex = math32.Exp(-dt / p.TauSynEx)
	p.P11in = math32.Exp(-dt / p.TauSynIn)
	p.P22 = math32.Exp(-dt / p.TauM)
	p.P21ex = Propagator32(p.TauSynEx, p.TauM, p.Cm, dt)
	p.P21in = Propagator32(p.TauSynIn, p.TauM, p.Cm, dt)
	p.P20 = p.TauM / p.Cm * (1 - p.P22)
	p.RefractSteps = int32(mat32.Round(p.TRef / dt))
}

// Validate returns a non-empty message for each parameter value
// that cannot produce a meaningful simulation.
func (p *Params) Validate() []string {
	var msgs []string
	if p.Cm <= 0 {
		msgs = append(msgs, "C_m must be > 0")
	}
	if p.TauM <= 0 || p.TauSynEx <= 0 || p.TauSynIn <= 0 {
		msgs = append(msgs, "all time constants must be > 0")
	}
	if p.TRef < 0 {
		msgs = append(msgs, "t_ref must be >= 0")
	}
	if p.VReset >= p.VTh {
		msgs = append(msgs, "V_reset must be < V_th")
	}
	return msgs
}

// Theta returns the threshold relative to the resting potential.
func (p *Params) Theta() float32 {
	return p.VTh - p.EL
}

// Propagator32 returns the contribution of an exponentially decaying current
// with time constant tauSyn to a membrane with time constant tauM and
// capacitance cm over one step of size h.  Equal time constants use the
// limit of the general expression.
func Propagator32(tauSyn, tauM, cm, h float32) float32 {
	if math32.Abs(tauM-tauSyn) < 1.0e-6*tauM {
		return h / cm * math32.Exp(-h/tauM)
	}
	return tauSyn * tauM / (cm * (tauM - tauSyn)) * (math32.Exp(-h/tauM) - math32.Exp(-h/tauSyn))
}

// State holds the dynamic state of one iaf_psc_exp neuron.
type State struct {
	Vm      float32 `desc:"membrane potential relative to EL (mV)"`
	ISynEx  float32 `desc:"excitatory post-synaptic current (pA)"`
	ISynIn  float32 `desc:"inhibitory post-synaptic current (pA), negative"`
	I0      float32 `desc:"external current input for the current step (pA)"`
	Refract int32   `desc:"remaining refractory steps"`
}

// InitState puts the neuron at rest.
func (p *Params) InitState(st *State) {
	st.Vm = 0
	st.ISynEx = 0
	st.ISynIn = 0
	st.I0 = 0
	st.Refract = 0
}

// Vm returns the absolute membrane potential (mV).
func (p *Params) Vm(st *State) float32 {
	return st.Vm + p.EL
}

// SetVm sets the absolute membrane potential (mV).
func (p *Params) SetVm(st *State, vm float32) {
	st.Vm = vm - p.EL
}

// Step integrates the neuron over one time step.  ex and in are the summed
// excitatory and inhibitory (negative) synaptic inputs arriving this step,
// and cur is the external current for the next step.
// Returns true if the neuron emitted a spike.
func (p *Params) Step(st *State, ex, in, cur float32) bool {
	if st.Refract == 0 {
		st.Vm = p.P20*(p.Ie+st.I0) + p.P21ex*st.ISynEx + p.P21in*st.ISynIn + p.P22*st.Vm
	} else {
		st.Refract--
	}
	st.ISynEx = st.ISynEx*p.P11ex + ex
	st.ISynIn = st.ISynIn*p.P11in + in
	st.I0 = cur

	if st.Vm >= p.Theta() {
		st.Refract = p.RefractSteps
		st.Vm = p.VReset - p.EL
		return true
	}
	return false
}
