// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package expt

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
	"github.com/emer/modnet/modnet"
	"github.com/goki/gi/gi"
	"golang.org/x/exp/rand"
)

// Sim is a network built from an Experiment
type Sim struct {
	Exp   *Experiment                      `desc:"the experiment"`
	Net   *modnet.Network                  `desc:"the network"`
	Seeds modnet.SeedPlan                  `desc:"seeds -- host generator seeds are used for weight matrices"`
	Pops  map[string]modnet.NodeCollection `desc:"populations by name"`
	Recs  map[string]modnet.NodeCollection `desc:"spike recorders by name of the recorded population"`
	Prjns []*modnet.Prjn                   `desc:"projections, in order of the connections"`
}

// Build configures a new network from the experiment.  The network
// threads are started by the first Run and stopped by Close.
func Build(ex *Experiment) (*Sim, error) {
	nm := ex.Name
	if nm == "" {
		nm = "expt"
	}
	sm := &Sim{Exp: ex, Net: modnet.NewNetwork(nm)}
	if err := sm.build(); err != nil {
		sm.Close()
		log.Printf("expt Build: %s: %v\n", nm, err)
		return nil, err
	}
	return sm, nil
}

func (sm *Sim) build() error {
	ex := sm.Exp
	nt := sm.Net
	kd := modnet.Dict{}
	if ex.Kernel.Threads > 0 {
		kd[modnet.KeyThreads] = ex.Kernel.Threads
	}
	if ex.Kernel.Resolution > 0 {
		kd[modnet.KeyResolution] = ex.Kernel.Resolution
	}
	if err := nt.SetKernelStatus(kd); err != nil {
		return fmt.Errorf("kernel: %w", err)
	}
	sm.Seeds = modnet.SeedPlan{Master: 1, NVp: nt.Kernel.NVps()}
	if ex.Kernel.Seed != nil {
		sp, err := nt.ApplySeeds(*ex.Kernel.Seed)
		if err != nil {
			return fmt.Errorf("kernel: %w", err)
		}
		sm.Seeds = sp
	}
	for _, md := range ex.Install {
		if err := nt.Install(md); err != nil {
			return err
		}
	}

	sm.Pops = make(map[string]modnet.NodeCollection, len(ex.Populations))
	for _, pp := range ex.Populations {
		ps, err := nt.CreatePop(pp.Name, pp.Model, pp.N)
		if err != nil {
			return fmt.Errorf("population %s: %w", pp.Name, err)
		}
		if pp.Class != "" {
			ps.SetClass(pp.Class)
		}
		sm.Pops[pp.Name] = ps.Collection()
	}
	if len(ex.Params) > 0 {
		if _, err := nt.ApplyParams(ex.Sheet(), false); err != nil {
			return fmt.Errorf("params: %w", err)
		}
	}
	for _, pp := range ex.Populations {
		if len(pp.Status) == 0 {
			continue
		}
		if err := nt.SetStatus(sm.Pops[pp.Name], Dict(pp.Status)); err != nil {
			return fmt.Errorf("population %s: %w", pp.Name, err)
		}
	}

	for _, ms := range ex.Models {
		d := Dict(ms.Params)
		if ms.VT != "" {
			d["vt"] = sm.Pops[ms.VT].GID(0)
		}
		var err error
		if ms.Name == "" {
			err = nt.SetDefaults(ms.Base, d)
		} else {
			err = nt.CopyModel(ms.Base, ms.Name, d)
		}
		if err != nil {
			return fmt.Errorf("model %s: %w", ms.Base, err)
		}
	}

	rnd := sm.Seeds.HostRand()
	for i := range ex.Connections {
		pj, err := sm.connect(&ex.Connections[i], rnd)
		if err != nil {
			return fmt.Errorf("connections[%d]: %w", i, err)
		}
		sm.Prjns = append(sm.Prjns, pj)
	}

	sm.Recs = make(map[string]modnet.NodeCollection, len(ex.Record))
	for _, pnm := range ex.Record {
		rp, err := nt.CreatePop(pnm+"Rec", "spike_recorder", 1)
		if err != nil {
			return fmt.Errorf("record %s: %w", pnm, err)
		}
		rc := rp.Collection()
		if _, err := nt.Connect(sm.Pops[pnm], rc, modnet.ConnSpec{}, nil); err != nil {
			return fmt.Errorf("record %s: %w", pnm, err)
		}
		sm.Recs[pnm] = rc
	}
	return nil
}

func (sm *Sim) connect(cs *ConnSpec, rnd *rand.Rand) (*modnet.Prjn, error) {
	pre := sm.Pops[cs.Pre]
	post := sm.Pops[cs.Post]
	ss := Dict(cs.Synapse)
	if ws := cs.Weight; ws != nil {
		w := modnet.ConstMatrix(post.Len(), pre.Len(), ws.Value)
		if ws.P != nil {
			w = modnet.Sparsify(w, *ws.P, rnd)
		}
		key := ws.Key
		if key == "" {
			key = "weight"
		}
		ss[key] = w
	}
	spec := modnet.ConnSpec{Rule: cs.Rule, NoAutapses: cs.NoAutapses}
	if cs.P != nil {
		spec.P = *cs.P
	}
	return sm.Net.Connect(pre, post, spec, ss)
}

// Run simulates the experiment duration
func (sm *Sim) Run() error {
	return sm.Net.Simulate(sm.Exp.Simulate)
}

// Reset clears the spikes recorded so far and the function and thread
// timers, keeping the network state, e.g., after a warm-up period.
func (sm *Sim) Reset() {
	for _, rec := range sm.Recs {
		sm.Net.ResetEvents(rec)
	}
	sm.Net.TimerReset()
}

// Close stops the network threads
func (sm *Sim) Close() {
	sm.Net.Close()
}

// SaveEvents saves the events of each recorder as <dir>/<pop>_spikes.csv,
// returning the file names
func (sm *Sim) SaveEvents(dir string) ([]string, error) {
	var fns []string
	for _, pnm := range sm.Exp.Record {
		fn := filepath.Join(dir, pnm+"_spikes.csv")
		if err := sm.Net.SaveEventsCSV(sm.Recs[pnm], gi.FileName(fn)); err != nil {
			return fns, err
		}
		fns = append(fns, fn)
	}
	return fns, nil
}

// SpikeCounts returns a table with the number of spikes and mean rate (Hz)
// of each neuron population
func (sm *Sim) SpikeCounts() *etable.Table {
	nt := sm.Net
	dt := &etable.Table{}
	dt.SetMetaData("name", "SpikeCounts")
	dt.SetMetaData("desc", "spikes per population")
	dt.SetFromSchema(etable.Schema{
		{"Population", etensor.STRING, nil, nil},
		{"Model", etensor.STRING, nil, nil},
		{"N", etensor.INT64, nil, nil},
		{"Spikes", etensor.INT64, nil, nil},
		{"Rate", etensor.FLOAT64, nil, nil},
	}, 0)
	tm := nt.Kernel.Time()
	row := 0
	for _, ps := range nt.Pops {
		if ps.Kind.IsDevice() {
			continue
		}
		ns := 0
		for i := 0; i < ps.N; i++ {
			ns += nt.Nodes[ps.St-1+i].NSpikes
		}
		rate := 0.0
		if tm > 0 {
			rate = 1000 * float64(ns) / (float64(ps.N) * tm)
		}
		dt.SetNumRows(row + 1)
		dt.SetCellString("Population", row, ps.Nm)
		dt.SetCellString("Model", row, ps.Model)
		dt.SetCellFloat("N", row, float64(ps.N))
		dt.SetCellFloat("Spikes", row, float64(ns))
		dt.SetCellFloat("Rate", row, rate)
		row++
	}
	return dt
}
