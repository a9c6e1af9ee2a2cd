// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modnet

import "fmt"

// Simulate runs the network for round(ms / resolution) steps.
// Simulation time accumulates over calls.
func (nt *Network) Simulate(ms float64) error {
	if ms < 0 {
		return fmt.Errorf("Network Simulate: duration must be >= 0, got: %g", ms)
	}
	n := nt.Kernel.NSteps(ms)
	nt.Prepare()
	for i := 0; i < n; i++ {
		nt.StepOnce()
	}
	return nil
}

// StepOnce runs one simulation step: node updates, spike delivery, and
// volume transmitter deliveries, in that order.
func (nt *Network) StepOnce() {
	nt.ThrFun(nt.UpdateThr, "Update")
	nt.ThrFun(nt.DeliverThr, "Deliver")
	nt.FunTimerStart("VolTrans")
	nt.VolTransDeliver()
	nt.FunTimerStop("VolTrans")
	nt.Kernel.Steps++
}

// UpdateThr updates the nodes owned by thread th for the current step,
// collecting emitted spikes in ThrSpikes[th].  Neurons read and clear the
// current slot of their input rings.  Active generators emit one event per
// step, with per-target multiplicities drawn at delivery.
func (nt *Network) UpdateThr(th int) {
	s := nt.Kernel.Steps
	h := nt.Kernel.Resolution
	t := float64(s) * h
	slot := int(s % int64(nt.RingLen))
	spk := nt.ThrSpikes[th][:0]
	for _, ni := range nt.ThrNodes[th] {
		nd := &nt.Nodes[ni]
		switch nd.Kind {
		case NeuronNode:
			ex := nd.ExBuf[slot]
			in := nd.InBuf[slot]
			nd.ExBuf[slot] = 0
			nd.InBuf[slot] = 0
			if nd.Pars.Iaf.Step(&nd.Nrn, ex, in, 0) {
				nd.NSpikes++
				nd.LastSpike = float64(s+1) * h
				spk = append(spk, nd.GID)
			}
		case GeneratorNode:
			if nd.Pars.Poisson.Active(t) {
				spk = append(spk, nd.GID)
			}
		}
	}
	nt.ThrSpikes[th] = spk
}

// DeliverThr delivers all spikes of the current step to the targets owned by
// thread th.  Spikes are stamped with the step at which they are emitted
// (current step + 1), and arrive at current step + delay.
func (nt *Network) DeliverThr(th int) {
	s := nt.Kernel.Steps
	stamp := s + 1
	for tt := 0; tt < nt.NThreads; tt++ {
		for _, gid := range nt.ThrSpikes[tt] {
			src := &nt.Nodes[gid-1]
			ps := nt.Pops[src.Pop]
			for _, pj := range ps.SndPrjns {
				si := pj.SendIdx(gid)
				if si < 0 {
					continue
				}
				nc := int(pj.SConN[si])
				st := int(pj.SConIdxSt[si])
				for ci := 0; ci < nc; ci++ {
					tgt := &nt.Nodes[pj.RecvGID(int(pj.SConIdx[st+ci]))-1]
					if tgt.Thr != th {
						continue
					}
					sy := &pj.Syns[st+ci]
					if !pj.Model.Send(sy, stamp) {
						continue
					}
					mult := 1
					if src.Kind == GeneratorNode {
						mult = nt.PoissonDraw(th, src.Pars.Poisson.Lambda(nt.Kernel.Resolution))
						if mult == 0 {
							continue
						}
					}
					nt.deliver(gid, tgt, sy, mult, s, stamp)
				}
			}
		}
	}
}

// deliver sends one spike event of given multiplicity through sy to tgt
func (nt *Network) deliver(sender int, tgt *Node, sy *Synapse, mult int, s, stamp int64) {
	switch tgt.Kind {
	case NeuronNode:
		slot := (s + int64(sy.DSteps)) % int64(nt.RingLen)
		w := sy.Wt * float32(mult)
		if w >= 0 {
			tgt.ExBuf[slot] += w
		} else {
			tgt.InBuf[slot] += w
		}
	case VolTransNode:
		tgt.VTCount += float64(mult)
	case RecorderNode:
		tm := float64(stamp) * nt.Kernel.Resolution
		if !tgt.Pars.Rec.Records(tm) {
			return
		}
		for i := 0; i < mult; i++ {
			tgt.Events = append(tgt.Events, SpikeEvent{Sender: sender, Time: tm})
		}
		tgt.NSpikes += mult
	}
}

// VolTransDeliver triggers the weight update of all synapses driven by each
// volume transmitter whose deliver_interval ends at this step, with the
// number of modulatory spikes it collected, and resets its count.
// deliver_interval is counted in units of the minimum delay.
func (nt *Network) VolTransDeliver() {
	step := nt.Kernel.Steps + 1
	md := int64(nt.MinDelay)
	if md < 1 {
		md = 1
	}
	for _, gid := range nt.VolTrans {
		vt := &nt.Nodes[gid-1]
		di := vt.Pars.VolTrans.DeliverInterval
		if step%(int64(di)*md) != 0 {
			continue
		}
		for _, pj := range nt.Prjns {
			if !pj.Model.Modulated() || pj.Model.VolTransGID() != gid {
				continue
			}
			for i := range pj.Syns {
				pj.Model.TriggerUpdateWeight(&pj.Syns[i], vt.VTCount, di)
			}
		}
		vt.VTCount = 0
		vt.NDeliver++
	}
}
