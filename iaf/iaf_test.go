// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package iaf

import (
	"math"
	"testing"

	"github.com/chewxy/math32"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-5)

func TestPropagators(t *testing.T) {
	p := Params{}
	p.Defaults()
	h := 0.1
	tm, ts, cm := 10.0, 2.0, 250.0
	cor21 := float32(ts * tm / (cm * (tm - ts)) * (math.Exp(-h/tm) - math.Exp(-h/ts)))
	if dif := math32.Abs(p.P21ex - cor21); dif > difTol*cor21 {
		t.Errorf("P21ex: %v, correct: %v, dif: %v\n", p.P21ex, cor21, dif)
	}
	cor22 := float32(math.Exp(-h / tm))
	if dif := math32.Abs(p.P22 - cor22); dif > difTol {
		t.Errorf("P22: %v, correct: %v\n", p.P22, cor22)
	}
	cor20 := float32(tm / cm * (1 - math.Exp(-h/tm)))
	if dif := math32.Abs(p.P20 - cor20); dif > difTol*cor20 {
		t.Errorf("P20: %v, correct: %v\n", p.P20, cor20)
	}
	if p.RefractSteps != 20 {
		t.Errorf("RefractSteps: %v, correct: 20\n", p.RefractSteps)
	}

	// equal time constants use the limit
	eq := Propagator32(10, 10, 250, 0.1)
	coreq := float32(0.1 / 250 * math.Exp(-0.1/10))
	if dif := math32.Abs(eq - coreq); dif > difTol*coreq {
		t.Errorf("equal tau propagator: %v, correct: %v\n", eq, coreq)
	}
	near := Propagator32(10.001, 10, 250, 0.1)
	if dif := math32.Abs(near - coreq); dif > 1.0e-3*coreq {
		t.Errorf("near-equal tau propagator: %v, limit: %v\n", near, coreq)
	}
}

func TestPSP(t *testing.T) {
	p := Params{}
	p.Defaults()
	st := &State{}
	p.InitState(st)
	if p.Vm(st) != -70 {
		t.Errorf("rest Vm: %v\n", p.Vm(st))
	}
	p.Step(st, 100, 0, 0)
	if st.Vm != 0 {
		t.Errorf("input must not affect Vm in the step it arrives: %v\n", st.Vm)
	}
	p.Step(st, 0, 0, 0)
	if dif := math32.Abs(st.Vm - p.P21ex*100); dif > difTol {
		t.Errorf("PSP after one step: %v, correct: %v\n", st.Vm, p.P21ex*100)
	}
	peak := float32(0)
	for i := 0; i < 200; i++ {
		p.Step(st, 0, 0, 0)
		if st.Vm > peak {
			peak = st.Vm
		}
	}
	if peak <= 0 || st.Vm >= peak {
		t.Errorf("PSP should rise then decay: peak %v final %v\n", peak, st.Vm)
	}

	p.InitState(st)
	p.Step(st, 0, -100, 0)
	p.Step(st, 0, 0, 0)
	if st.Vm >= 0 {
		t.Errorf("inhibitory input should hyperpolarize: %v\n", st.Vm)
	}
}

func TestConstCurrent(t *testing.T) {
	p := Params{}
	p.Defaults()
	st := &State{}

	// rheobase is Cm * theta / TauM = 375 pA
	p.Ie = 374
	p.InitState(st)
	for i := 0; i < 5000; i++ {
		if p.Step(st, 0, 0, 0) {
			t.Fatalf("sub-rheobase current spiked at step: %v\n", i)
		}
	}

	p.Ie = 500
	p.InitState(st)
	first := -1
	for i := 0; i < 1000; i++ {
		if p.Step(st, 0, 0, 0) {
			first = i + 1
			break
		}
	}
	// V = Ie*TauM/Cm * (1 - exp(-t/TauM)) reaches 15 mV at t = 10*ln(4) = 13.86 ms
	if first < 138 || first > 140 {
		t.Errorf("first spike step: %v, expected ~139\n", first)
	}
	if st.Refract != p.RefractSteps {
		t.Errorf("refractory counter after spike: %v\n", st.Refract)
	}
	for i := 0; i < int(p.RefractSteps); i++ {
		if p.Step(st, 1000, 0, 0) {
			t.Errorf("spiked during refractory period at step: %v\n", i)
		}
		if st.Vm != p.VReset-p.EL {
			t.Errorf("Vm not clamped during refractory period: %v\n", st.Vm)
		}
	}
}

func TestValidate(t *testing.T) {
	p := Params{}
	p.Defaults()
	if msgs := p.Validate(); len(msgs) != 0 {
		t.Errorf("defaults should validate: %v\n", msgs)
	}
	p.VReset = -50
	p.Cm = 0
	if msgs := p.Validate(); len(msgs) != 2 {
		t.Errorf("expected 2 messages, got: %v\n", msgs)
	}
}
