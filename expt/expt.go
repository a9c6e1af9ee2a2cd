// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package expt describes a complete simulation run in a YAML file: kernel
settings, installed modules, populations, synapse model aliases,
connections, parameter styles, recorded populations and duration.
Build turns an Experiment into a configured modnet.Network, and Run
simulates it.

	name: exitmod
	kernel: {threads: 1, resolution: 0.1, seed: 1}
	install: [modmodule]
	populations:
	  - {name: VT, model: volume_transmitter, n: 1, status: {deliver_interval: 300}}
	  - {name: Pre, model: iaf_psc_exp, n: 50}
	  - {name: Post, model: iaf_psc_exp, n: 50}
	models:
	  - {base: d1_synapse, name: exitmod_synapse, vt: VT, params: {alpha: 3, max_modulation: 10}}
	connections:
	  - {pre: Pre, post: Post, synapse: {synapse_model: exitmod_synapse}, weight: {value: 1, p: 0.1}}
	  - {pre: Pre, post: VT}
	record: [Post]
	simulate: 1000
*/
package expt

import (
	"fmt"
	"os"

	"github.com/emer/emergent/params"
	"github.com/emer/modnet/modnet"
	"gopkg.in/yaml.v3"
)

// Experiment is a complete simulation run
type Experiment struct {
	Name        string      `yaml:"name"`
	Kernel      KernelSpec  `yaml:"kernel"`
	Install     []string    `yaml:"install,omitempty"`
	Populations []PopSpec   `yaml:"populations"`
	Models      []ModelSpec `yaml:"models,omitempty"`
	Params      []ParamSel  `yaml:"params,omitempty"`
	Connections []ConnSpec  `yaml:"connections,omitempty"`
	Record      []string    `yaml:"record,omitempty"`
	Simulate    float64     `yaml:"simulate"`
}

// KernelSpec are the kernel settings.  Zero values keep the kernel defaults.
type KernelSpec struct {
	Threads    int     `yaml:"threads,omitempty"`
	Resolution float64 `yaml:"resolution,omitempty"`
	Seed       *int64  `yaml:"seed,omitempty"`
}

// PopSpec creates a named population
type PopSpec struct {
	Name   string         `yaml:"name"`
	Model  string         `yaml:"model"`
	N      int            `yaml:"n"`
	Class  string         `yaml:"class,omitempty"`
	Status map[string]any `yaml:"status,omitempty"`
}

// ModelSpec copies Base to Name with Params applied, or sets the defaults
// of Base itself if Name is empty.  VT names the volume_transmitter
// population whose first node becomes the vt of the model.
type ModelSpec struct {
	Base   string         `yaml:"base"`
	Name   string         `yaml:"name,omitempty"`
	VT     string         `yaml:"vt,omitempty"`
	Params map[string]any `yaml:"params,omitempty"`
}

// ConnSpec connects two populations
type ConnSpec struct {
	Pre        string         `yaml:"pre"`
	Post       string         `yaml:"post"`
	Rule       string         `yaml:"rule,omitempty"`
	P          *float64       `yaml:"p,omitempty"`
	NoAutapses bool           `yaml:"no_autapses,omitempty"`
	Synapse    map[string]any `yaml:"synapse,omitempty"`
	Weight     *MatrixSpec    `yaml:"weight,omitempty"`
}

// MatrixSpec is a [post, pre] matrix of constant Value, optionally
// sparsified by keeping each entry with probability P, using the host
// generator of the seed plan.  Key is the synapse parameter it sets,
// weight by default.
type MatrixSpec struct {
	Value float64  `yaml:"value"`
	P     *float64 `yaml:"p,omitempty"`
	Key   string   `yaml:"key,omitempty"`
}

// ParamSel is one params.Sel of the Sheet applied to the populations
type ParamSel struct {
	Sel    string            `yaml:"sel"`
	Desc   string            `yaml:"desc,omitempty"`
	Params map[string]string `yaml:"params"`
}

// Load reads an experiment from a YAML file
func Load(filename string) (*Experiment, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	ex, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return ex, nil
}

// Parse decodes and validates an experiment
func Parse(b []byte) (*Experiment, error) {
	ex := &Experiment{}
	if err := yaml.Unmarshal(b, ex); err != nil {
		return nil, err
	}
	if err := ex.Validate(); err != nil {
		return nil, err
	}
	return ex, nil
}

// Validate checks the references between the parts of the experiment.
// Model and parameter values are checked when building.
func (ex *Experiment) Validate() error {
	if ex.Simulate < 0 {
		return fmt.Errorf("simulate: duration must be >= 0, got: %g", ex.Simulate)
	}
	if ex.Kernel.Threads < 0 || ex.Kernel.Resolution < 0 {
		return fmt.Errorf("kernel: threads and resolution must be >= 0")
	}
	pops := map[string]bool{}
	for i, ps := range ex.Populations {
		if ps.Name == "" {
			return fmt.Errorf("populations[%d]: missing name", i)
		}
		if pops[ps.Name] {
			return fmt.Errorf("populations[%d]: duplicate name %q", i, ps.Name)
		}
		if ps.Model == "" {
			return fmt.Errorf("population %s: missing model", ps.Name)
		}
		pops[ps.Name] = true
	}
	for i, ms := range ex.Models {
		if ms.Base == "" {
			return fmt.Errorf("models[%d]: missing base", i)
		}
		if ms.VT != "" && !pops[ms.VT] {
			return fmt.Errorf("models[%d]: vt: unknown population %q", i, ms.VT)
		}
	}
	for i, cs := range ex.Connections {
		if !pops[cs.Pre] {
			return fmt.Errorf("connections[%d]: pre: unknown population %q", i, cs.Pre)
		}
		if !pops[cs.Post] {
			return fmt.Errorf("connections[%d]: post: unknown population %q", i, cs.Post)
		}
		if cs.Rule == modnet.PairwiseBernoulli {
			if cs.P == nil {
				return fmt.Errorf("connections[%d]: rule %s requires p", i, cs.Rule)
			}
			if *cs.P < 0 || *cs.P > 1 {
				return fmt.Errorf("connections[%d]: p must be in [0, 1]", i)
			}
		}
		if cs.Weight != nil && cs.Weight.P != nil && (*cs.Weight.P < 0 || *cs.Weight.P > 1) {
			return fmt.Errorf("connections[%d]: weight p must be in [0, 1]", i)
		}
	}
	for _, nm := range ex.Record {
		if !pops[nm] {
			return fmt.Errorf("record: unknown population %q", nm)
		}
	}
	return nil
}

// Sheet returns the params as a Sheet
func (ex *Experiment) Sheet() *params.Sheet {
	sh := &params.Sheet{}
	for _, ps := range ex.Params {
		sl := &params.Sel{Sel: ps.Sel, Desc: ps.Desc, Params: params.Params{}}
		for k, v := range ps.Params {
			sl.Params[k] = v
		}
		*sh = append(*sh, sl)
	}
	return sh
}

// Dict converts a YAML mapping to a modnet.Dict
func Dict(m map[string]any) modnet.Dict {
	d := modnet.Dict{}
	for k, v := range m {
		d[k] = v
	}
	return d
}
