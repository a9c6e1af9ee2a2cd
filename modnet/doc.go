// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package modnet is a small discrete-time spiking network simulator: a kernel
(threads, resolution, random seeds), populations of nodes created from named
models (iaf_psc_exp neurons, poisson_generator, volume_transmitter and
spike_recorder devices), projections of synapses made by connection rules,
and extension modules that add synapse models.

Nodes and synapses are configured through Dicts of named parameters, as in:

	nt := modnet.NewNetwork("exitmod")
	nt.SetKernelStatus(modnet.Dict{"local_num_threads": 2})
	nt.ApplySeeds(1)
	pre, _ := nt.Create("iaf_psc_exp", 50)
	post, _ := nt.Create("iaf_psc_exp", 50)
	nt.Connect(pre, post, modnet.ConnSpec{}, modnet.Dict{"weight": 5.0})
	nt.Simulate(1000)

Each step has three phases:

  - Update: each thread integrates the nodes it owns (gid % threads), reading
    and clearing the current slot of their input ring buffers, and collects
    the spikes they emit.  Active generators emit one event per step.

  - Deliver: each thread sends all spikes of the step through the synapses
    whose targets it owns, adding weights to the target rings at the step
    given by the synapse delay.  Generator events get an independent Poisson
    multiplicity per target, drawn from the thread's own generator.

  - VolTrans: volume transmitters at the end of their deliver_interval
    pass their collected modulatory spike count to all synapses that
    refer to them, and reset.

Because each thread only writes to nodes it owns, and reads spikes in a fixed
thread order, results do not depend on the number of threads except through
the per-thread random streams.

Populations can be styled with emergent params Sheets (Network.ApplyParams),
weights saved and loaded in the emergent weights JSON format, and recorded
spikes exported as etable Tables.
*/
package modnet
