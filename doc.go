// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package modnet is the overall repository for a small spiking network simulator
with dopamine-modulated synapses, implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is organized
into the following sub-packages:

* modnet: the simulator itself: kernel (threads, resolution, seeds), node models
(iaf_psc_exp neurons, poisson_generator, volume_transmitter, spike_recorder),
populations, projections with static synapses, simulation loop, and the
registry of extension modules that add synapse models.

* iaf: the iaf_psc_exp neuron: leaky integrate-and-fire with exponential
post-synaptic currents, integrated exactly over each time step.

* modsyn: the "modmodule" extension: modulatory_synapse, d1_synapse and
d2_synapse, whose weights are rescaled at each delivery of a volume transmitter
from the number of modulatory spikes it collected.

* expt: experiments described in YAML files, built into networks and run.

* cmd/modnet: command line tool to run and check experiment files.

* examples: these compile into runnable programs: exitmod uses a d1_synapse
alias driven by a volume transmitter, d1direct uses d1_synapse directly.
*/
package modnet
