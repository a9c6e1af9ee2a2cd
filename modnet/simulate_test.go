// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modnet

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/emer/etable/etensor"
	"golang.org/x/exp/rand"
)

func TestSimulateTime(t *testing.T) {
	nt := NewNetwork("time")
	defer nt.Close()
	nt.Create("iaf_psc_exp", 2)
	if err := nt.Simulate(10); err != nil {
		t.Fatal(err)
	}
	if err := nt.Simulate(2.5); err != nil {
		t.Fatal(err)
	}
	if nt.Kernel.Steps != 125 {
		t.Errorf("steps: %v != 125", nt.Kernel.Steps)
	}
	if tm := nt.KernelStatus()[KeyTime].(float64); math.Abs(tm-12.5) > 1e-9 {
		t.Errorf("time: %v != 12.5", tm)
	}
	if err := nt.Simulate(-1); err == nil {
		t.Errorf("negative duration must fail")
	}
}

func TestSpikeRecording(t *testing.T) {
	nt := NewNetwork("record")
	defer nt.Close()
	nrn, _ := nt.Create("iaf_psc_exp", 2)
	rec, _ := nt.Create("spike_recorder", 1)
	nt.SetStatusList(nrn, []Dict{{"I_e": 1000.0}, {"I_e": 0.0}})
	nt.Connect(nrn, rec, ConnSpec{}, nil)
	nt.Simulate(100)
	sts, _ := nt.GetStatus(nrn)
	ns := sts[0]["n_spikes"].(int)
	if ns < 5 {
		t.Errorf("driven neuron spikes: %d", ns)
	}
	if sts[1]["n_spikes"].(int) != 0 {
		t.Errorf("resting neuron spiked: %v", sts[1]["n_spikes"])
	}
	rs, _ := nt.GetStatus(rec)
	if rs[0]["n_events"] != ns {
		t.Errorf("recorded events: %v != spikes: %v", rs[0]["n_events"], ns)
	}
	evs := rs[0]["events"].(Dict)
	snd := evs["senders"].([]int)
	tms := evs["times"].([]float64)
	for i := range snd {
		if snd[i] != nrn.St {
			t.Errorf("event %d sender: %v", i, snd[i])
		}
		if i > 0 && tms[i] <= tms[i-1] {
			t.Errorf("event times not increasing: %v %v", tms[i-1], tms[i])
		}
	}
	if tms[len(tms)-1] != nt.Nodes[nrn.St-1].LastSpike {
		t.Errorf("last recorded time: %v != last spike: %v", tms[len(tms)-1], nt.Nodes[nrn.St-1].LastSpike)
	}

	dt, err := nt.EventsTable(rec)
	if err != nil {
		t.Fatal(err)
	}
	if dt.Rows != ns {
		t.Errorf("table rows: %v != %v", dt.Rows, ns)
	}
	if dt.CellFloat("Sender", 0) != float64(nrn.St) {
		t.Errorf("table sender: %v", dt.CellFloat("Sender", 0))
	}
	var b bytes.Buffer
	if err := nt.WriteEventsCSV(rec, &b); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(b.String(), "Sender") {
		t.Errorf("csv missing header:\n%s", b.String())
	}
	if _, err := nt.EventsTable(nrn); err == nil {
		t.Errorf("events of non-recorder must fail")
	}
}

func TestDelayArrival(t *testing.T) {
	for _, wt := range []float32{800, -800} {
		nt := NewNetwork("delay")
		a, _ := nt.Create("iaf_psc_exp", 1)
		b, _ := nt.Create("iaf_psc_exp", 1)
		nt.SetStatus(a, Dict{"I_e": 1000.0})
		nt.Connect(a, b, ConnSpec{}, Dict{"weight": float64(wt), "delay": 2.0})
		nt.Prepare()
		an := &nt.Nodes[a.St-1]
		bn := &nt.Nodes[b.St-1]
		for an.NSpikes == 0 {
			nt.StepOnce()
			if nt.Kernel.Steps > 10000 {
				t.Fatal("driven neuron never spiked")
			}
		}
		d := int(nt.Kernel.DelaySteps(2))
		for k := 1; k < d; k++ {
			nt.StepOnce()
			if bn.Nrn.ISynEx != 0 || bn.Nrn.ISynIn != 0 {
				t.Errorf("weight %v: input arrived early, %d steps after spike", wt, k)
			}
		}
		nt.StepOnce()
		got := bn.Nrn.ISynEx
		if wt < 0 {
			got = bn.Nrn.ISynIn
		}
		if got != wt {
			t.Errorf("input after delay: %v != %v", got, wt)
		}
		nt.Close()
	}
}

func TestThreadInvariance(t *testing.T) {
	run := func(nthr int) []int {
		nt := NewNetwork("threads")
		defer nt.Close()
		nt.SetKernelStatus(Dict{KeyThreads: nthr})
		nrn, _ := nt.Create("iaf_psc_exp", 12)
		ds := make([]Dict, nrn.Len())
		for i := range ds {
			ds[i] = Dict{"I_e": 300.0 + 20*float64(i)}
		}
		nt.SetStatusList(nrn, ds)
		nt.Connect(nrn, nrn, ConnSpec{NoAutapses: true}, Dict{"weight": 8.0, "delay": 1.5})
		nt.Connect(nrn.Slice(0, 4), nrn.Slice(8, 12), ConnSpec{Rule: OneToOne}, Dict{"weight": -16.0})
		nt.Simulate(200)
		ns := make([]int, nrn.Len())
		for i := range ns {
			ns[i] = nt.Nodes[nrn.St-1+i].NSpikes
		}
		return ns
	}
	ref := run(1)
	tot := 0
	for _, n := range ref {
		tot += n
	}
	if tot == 0 {
		t.Fatal("no spikes")
	}
	for _, nthr := range []int{2, 3, 5} {
		ns := run(nthr)
		for i := range ns {
			if ns[i] != ref[i] {
				t.Errorf("threads %d: node %d spikes %d != %d with 1 thread", nthr, i, ns[i], ref[i])
			}
		}
	}
}

func TestPoissonGenerator(t *testing.T) {
	run := func(seed int64) (int, float64, float64) {
		nt := NewNetwork("poisson")
		defer nt.Close()
		nt.SetKernelStatus(Dict{KeyThreads: 2})
		nt.ApplySeeds(seed)
		gen, _ := nt.Create("poisson_generator", 1)
		rec, _ := nt.Create("spike_recorder", 2)
		nt.SetStatus(gen, Dict{"rate": 10000.0, "start": 10.0, "stop": 50.0})
		nt.Connect(gen, rec, ConnSpec{}, nil)
		nt.Simulate(100)
		n := 0
		mn, mx := math.Inf(1), math.Inf(-1)
		for _, gid := range rec.GIDs() {
			for _, ev := range nt.Nodes[gid-1].Events {
				n++
				mn = math.Min(mn, ev.Time)
				mx = math.Max(mx, ev.Time)
			}
		}
		return n, mn, mx
	}
	n, mn, mx := run(1)
	// 2 targets * 10000 Hz * 40 ms
	if n < 650 || n > 950 {
		t.Errorf("events: %d, expected about 800", n)
	}
	if mn < 10 || mx > 50+1e-9 {
		t.Errorf("events outside active window: %v .. %v", mn, mx)
	}
	n2, _, _ := run(1)
	if n2 != n {
		t.Errorf("same seeds gave different event counts: %d != %d", n2, n)
	}
}

func TestVolTransDeliver(t *testing.T) {
	nt := NewNetwork("voltrans")
	defer nt.Close()
	nrn, _ := nt.Create("iaf_psc_exp", 3)
	vt, _ := nt.Create("volume_transmitter", 1)
	nt.SetStatus(nrn, Dict{"I_e": 1000.0})
	nt.SetStatus(vt, Dict{"deliver_interval": 3})
	nt.Connect(nrn, vt, ConnSpec{}, Dict{"delay": 1.0})
	if md := nt.KernelStatus()[KeyMinDelay]; md != 1.0 {
		t.Fatalf("min_delay: %v", md)
	}
	// deliver_interval counts min_delay units: 3 * 10 steps
	nt.Simulate(2.9)
	vs, _ := nt.GetStatus(vt)
	if vs[0]["n_deliveries"] != 0 {
		t.Errorf("deliveries after 29 steps: %v", vs[0]["n_deliveries"])
	}
	nt.Simulate(0.1)
	vs, _ = nt.GetStatus(vt)
	if vs[0]["n_deliveries"] != 1 {
		t.Errorf("deliveries after 30 steps: %v", vs[0]["n_deliveries"])
	}
	nt.Simulate(27)
	vs, _ = nt.GetStatus(vt)
	if vs[0]["n_deliveries"] != 10 {
		t.Errorf("deliveries after 30 ms: %v, want 10", vs[0]["n_deliveries"])
	}
	if nt.MinDelay != 10 {
		t.Errorf("min delay steps: %v", nt.MinDelay)
	}
	tot := 0
	for i := 0; i < nrn.Len(); i++ {
		tot += nt.Nodes[nrn.St-1+i].NSpikes
	}
	if tot == 0 {
		t.Fatal("no modulatory spikes")
	}
	if vs[0]["spike_count"].(float64) != 0 {
		t.Errorf("count must be reset at delivery: %v", vs[0]["spike_count"])
	}
}

func TestVolTransMinDelay(t *testing.T) {
	nt := NewNetwork("mindelay")
	defer nt.Close()
	nrn, _ := nt.Create("iaf_psc_exp", 2)
	vt, _ := nt.Create("volume_transmitter", 1)
	nt.SetStatus(vt, Dict{"deliver_interval": 2})
	nt.Connect(nrn, vt, ConnSpec{}, Dict{"delay": 2.5})
	nt.Connect(nrn.Slice(0, 1), nrn.Slice(1, 2), ConnSpec{}, Dict{"delay": 0.5})
	nt.Simulate(10)
	vs, _ := nt.GetStatus(vt)
	// min delay 5 steps: one delivery every 10 steps
	if vs[0]["n_deliveries"] != 10 {
		t.Errorf("deliveries: %v, want 10", vs[0]["n_deliveries"])
	}
}

func TestBernoulli(t *testing.T) {
	var sh etensor.Shape
	sh.SetShape([]int{100}, nil, nil)
	bp := NewBernoulli(0.1, 7)
	_, recvn, cons := bp.Connect(&sh, &sh, false)
	n := 0
	for _, rn := range recvn.Values {
		n += int(rn)
	}
	if n < 850 || n > 1150 {
		t.Errorf("connections: %d, expected about 1000", n)
	}
	_, _, cons2 := bp.Connect(&sh, &sh, false)
	for i := 0; i < cons.Len(); i++ {
		if cons.Values.Index(i) != cons2.Values.Index(i) {
			t.Fatalf("same seed gave different connections at %d", i)
		}
	}
	bp.SelfCon = false
	bp.PCon = 1
	_, recvn, _ = bp.Connect(&sh, &sh, true)
	if recvn.Values[0] != 99 {
		t.Errorf("full without self: %v", recvn.Values[0])
	}
}

func TestSparsify(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	w := ConstMatrix(50, 50, 1)
	sp := Sparsify(w, 0.1, rnd)
	if d := Density(sp); d < 0.07 || d > 0.13 {
		t.Errorf("density: %v, expected about 0.1", d)
	}
	r, c := sp.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := sp.At(i, j); v != 0 && v != 1 {
				t.Fatalf("entry %d,%d: %v", i, j, v)
			}
		}
	}
	if NonZero(Sparsify(w, 1, rnd)) != 2500 || NonZero(Sparsify(w, 0, rnd)) != 0 {
		t.Errorf("p = 1 must keep all and p = 0 none")
	}
}
