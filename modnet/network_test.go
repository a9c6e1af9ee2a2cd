// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modnet

import (
	"bytes"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/emer/emergent/params"
	"github.com/goki/gi/gi"
	"gonum.org/v1/gonum/mat"
)

func TestSeedPlan(t *testing.T) {
	tests := []struct {
		master int64
		nvp    int
		host   []int64
		grng   int64
		rng    []int64
	}{
		{1, 1, []int64{1}, 2, []int64{3}},
		{1, 2, []int64{1, 2}, 3, []int64{4, 5}},
		{10, 4, []int64{10, 11, 12, 13}, 14, []int64{15, 16, 17, 18}},
	}
	for _, tt := range tests {
		sp := SeedPlan{Master: tt.master, NVp: tt.nvp}
		if !equalInts(sp.HostSeeds(), tt.host) {
			t.Errorf("%v: host seeds: %v != %v", sp, sp.HostSeeds(), tt.host)
		}
		if sp.GrngSeed() != tt.grng {
			t.Errorf("%v: grng seed: %v != %v", sp, sp.GrngSeed(), tt.grng)
		}
		if !equalInts(sp.RngSeeds(), tt.rng) {
			t.Errorf("%v: rng seeds: %v != %v", sp, sp.RngSeeds(), tt.rng)
		}
	}
}

func equalInts(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestKernelStatus(t *testing.T) {
	nt := NewNetwork("kernel")
	defer nt.Close()
	if err := nt.SetKernelStatus(Dict{KeyThreads: 3}); err != nil {
		t.Fatal(err)
	}
	ks := nt.KernelStatus()
	if ks[KeyVPs] != 3 {
		t.Errorf("vps: %v != 3", ks[KeyVPs])
	}
	gs, err := nt.GetKernelStatus(KeyThreads, KeyResolution)
	if err != nil || len(gs) != 2 || gs[KeyThreads] != 3 || gs[KeyResolution] != 0.1 {
		t.Errorf("get kernel status: %v %v", gs, err)
	}
	if all, _ := nt.GetKernelStatus(); len(all) != len(ks) {
		t.Errorf("get all kernel status: %v", all)
	}
	if _, err := nt.GetKernelStatus("no_such_key"); !errors.Is(err, ErrBadProperty) {
		t.Errorf("unknown kernel key must fail, got: %v", err)
	}
	if !equalInts(ks[KeyRngSeeds].([]int64), []int64{1, 2, 3}) {
		t.Errorf("default rng seeds after thread change: %v", ks[KeyRngSeeds])
	}
	err = nt.SetKernelStatus(Dict{KeyRngSeeds: []int{5, 6}})
	if !errors.Is(err, ErrBadProperty) {
		t.Errorf("expected bad property for wrong number of seeds, got: %v", err)
	}
	sp, err := nt.ApplySeeds(1)
	if err != nil {
		t.Fatal(err)
	}
	if nt.Kernel.GrngSeed != 4 || !equalInts(nt.Kernel.RngSeeds, []int64{5, 6, 7}) {
		t.Errorf("seeds not applied from plan %v: %v %v", sp, nt.Kernel.GrngSeed, nt.Kernel.RngSeeds)
	}
	if err := nt.SetKernelStatus(Dict{KeyTime: 10.0}); !errors.Is(err, ErrBadProperty) {
		t.Errorf("time must be read-only, got: %v", err)
	}
	if err := nt.SetKernelStatus(Dict{"no_such_key": 1}); !errors.Is(err, ErrBadProperty) {
		t.Errorf("unknown kernel key must fail, got: %v", err)
	}
	if _, err := nt.Create("iaf_psc_exp", 2); err != nil {
		t.Fatal(err)
	}
	if err := nt.SetKernelStatus(Dict{KeyThreads: 1}); !errors.Is(err, ErrKernelLocked) {
		t.Errorf("threads must be locked once nodes exist, got: %v", err)
	}
	if err := nt.SetKernelStatus(Dict{KeyResolution: 0.2}); !errors.Is(err, ErrKernelLocked) {
		t.Errorf("resolution must be locked once nodes exist, got: %v", err)
	}
	if err := nt.SetKernelStatus(Dict{KeyThreads: 3, KeyGrngSeed: 9}); err != nil {
		t.Errorf("unchanged thread count must be accepted: %v", err)
	}
}

func TestDelaySteps(t *testing.T) {
	kp := Kernel{}
	kp.Defaults()
	tests := []struct {
		delay float32
		steps int32
	}{{1, 10}, {0.1, 1}, {0.01, 1}, {2.5, 25}, {0.16, 2}}
	for _, tt := range tests {
		if d := kp.DelaySteps(tt.delay); d != tt.steps {
			t.Errorf("delay %v: steps %v != %v", tt.delay, d, tt.steps)
		}
	}
	if n := kp.NSteps(5000); n != 50000 {
		t.Errorf("NSteps: %v != 50000", n)
	}
	kp.Resolution = 1
	if n := kp.NSteps(16777217); n != 16777217 {
		t.Errorf("NSteps beyond float32 precision: %v", n)
	}
}

func TestCreate(t *testing.T) {
	nt := NewNetwork("create")
	defer nt.Close()
	pre, err := nt.Create("iaf_psc_exp", 50)
	if err != nil {
		t.Fatal(err)
	}
	gen, err := nt.Create("poisson_generator", 100)
	if err != nil {
		t.Fatal(err)
	}
	if pre.St != 1 || pre.Len() != 50 {
		t.Errorf("pre: %v", pre)
	}
	if gen.St != 51 || gen.Len() != 100 {
		t.Errorf("gen: %v", gen)
	}
	if _, err := nt.Create("no_such_model", 1); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("unknown model must fail, got: %v", err)
	}
	if _, err := nt.Create("iaf_psc_exp", 0); err == nil {
		t.Errorf("zero nodes must fail")
	}
	if _, err := nt.Create("static_synapse", 1); err == nil {
		t.Errorf("synapse model must not create nodes")
	}
	if nt.PopOf(51) != nt.PopOf(150) || nt.PopOf(50) == nt.PopOf(51) {
		t.Errorf("population membership wrong")
	}
	if nt.PopOf(151) != nil || nt.PopOf(0) != nil {
		t.Errorf("invalid gids must have no population")
	}
}

func TestSetStatus(t *testing.T) {
	nt := NewNetwork("status")
	defer nt.Close()
	gen, _ := nt.Create("poisson_generator", 3)
	err := nt.SetStatus(gen, Dict{"rate": 10000.0, "origin": 0.0, "start": 0.0, "stop": 4900.0})
	if err != nil {
		t.Fatal(err)
	}
	sts, _ := nt.GetStatus(gen)
	for _, st := range sts {
		if st["rate"] != 10000.0 || st["stop"] != 4900.0 {
			t.Errorf("status not set: %v", st)
		}
	}
	err = nt.SetStatus(gen, Dict{"rate": 5.0, "bogus": 1.0})
	if !errors.Is(err, ErrBadProperty) {
		t.Errorf("unknown key must fail, got: %v", err)
	}
	if nt.Nodes[gen.St-1].Pars.Poisson.Rate != 10000 {
		t.Errorf("failed SetStatus must leave nodes unchanged")
	}
	if err := nt.SetStatus(gen, Dict{"rate": "fast"}); !errors.Is(err, ErrBadProperty) {
		t.Errorf("string value must fail, got: %v", err)
	}
	if err := nt.SetStatus(gen, Dict{"rate": -1.0}); !errors.Is(err, ErrBadProperty) {
		t.Errorf("negative rate must fail, got: %v", err)
	}

	vt, _ := nt.Create("volume_transmitter", 1)
	if err := nt.SetStatus(vt, Dict{"deliver_interval": 300}); err != nil {
		t.Fatal(err)
	}
	if err := nt.SetStatus(vt, Dict{"deliver_interval": 2.5}); !errors.Is(err, ErrBadProperty) {
		t.Errorf("non-integral deliver_interval must fail, got: %v", err)
	}
	if nt.Nodes[vt.St-1].Pars.VolTrans.DeliverInterval != 300 {
		t.Errorf("deliver_interval: %v", nt.Nodes[vt.St-1].Pars.VolTrans.DeliverInterval)
	}

	nrn, _ := nt.Create("iaf_psc_exp", 2)
	err = nt.SetStatusList(nrn, []Dict{{"V_m": -60.0}, {"V_m": -65.0, "E_L": -65.0}})
	if err != nil {
		t.Fatal(err)
	}
	sts, _ = nt.GetStatus(nrn)
	if math.Abs(sts[0]["V_m"].(float64)+60) > 1e-5 || math.Abs(sts[1]["V_m"].(float64)+65) > 1e-5 {
		t.Errorf("V_m not set: %v %v", sts[0]["V_m"], sts[1]["V_m"])
	}
	if err := nt.SetStatusList(nrn, []Dict{{}, {}, {}}); err == nil {
		t.Errorf("wrong number of dicts must fail")
	}
	if err := nt.SetStatus(nrn, Dict{"n_spikes": 3}); !errors.Is(err, ErrBadProperty) {
		t.Errorf("read-only key must fail, got: %v", err)
	}
	if err := nt.SetStatus(NodeCollection{St: 1, N: 5}, Dict{"rate": 1.0}); err == nil {
		t.Errorf("collection spanning populations must fail")
	}
}

func TestCopyModel(t *testing.T) {
	nt := NewNetwork("copy")
	defer nt.Close()
	if err := nt.CopyModel("iaf_psc_exp", "fast_nrn", Dict{"tau_m": 5.0}); err != nil {
		t.Fatal(err)
	}
	if err := nt.CopyModel("iaf_psc_exp", "fast_nrn", nil); err == nil {
		t.Errorf("duplicate alias must fail")
	}
	if err := nt.CopyModel("no_such", "x", nil); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("unknown base must fail, got: %v", err)
	}
	if err := nt.CopyModel("iaf_psc_exp", "bad_nrn", Dict{"tau_m": -1.0}); err == nil {
		t.Errorf("invalid parameter must fail")
	}
	if nt.HasModel("bad_nrn") {
		t.Errorf("failed copy must not register the alias")
	}
	nc, _ := nt.Create("fast_nrn", 1)
	sts, _ := nt.GetStatus(nc)
	if sts[0]["tau_m"] != 5.0 || sts[0]["model"] != "fast_nrn" {
		t.Errorf("alias defaults not used: %v", sts[0])
	}
	d, _ := nt.GetDefaults("iaf_psc_exp")
	if d["tau_m"] != 10.0 {
		t.Errorf("base model changed by copy: %v", d["tau_m"])
	}
	if err := nt.CopyModel("static_synapse", "strong", Dict{"weight": 5.0}); err != nil {
		t.Fatal(err)
	}
	if err := nt.SetDefaults("strong", Dict{"delay": 2.0}); err != nil {
		t.Fatal(err)
	}
	d, _ = nt.GetDefaults("strong")
	if d["weight"] != 5.0 || d["delay"] != 2.0 {
		t.Errorf("synapse alias defaults: %v", d)
	}
	d, _ = nt.GetDefaults("static_synapse")
	if d["weight"] != 1.0 || d["delay"] != 1.0 {
		t.Errorf("static_synapse changed by copy: %v", d)
	}
}

func TestConnectRules(t *testing.T) {
	nt := NewNetwork("connect")
	defer nt.Close()
	pre, _ := nt.Create("iaf_psc_exp", 4)
	post, _ := nt.Create("iaf_psc_exp", 3)
	gen, _ := nt.Create("poisson_generator", 1)
	rec, _ := nt.Create("spike_recorder", 1)

	pj, err := nt.Connect(pre, post, ConnSpec{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(pj.Syns) != 12 || pj.Rule != AllToAll {
		t.Errorf("all_to_all: %v", pj)
	}
	if _, err := nt.Connect(pre, post, ConnSpec{Rule: OneToOne}, nil); err == nil {
		t.Errorf("one_to_one with unequal sizes must fail")
	}
	pj, err = nt.Connect(pre.Slice(0, 3), post, ConnSpec{Rule: OneToOne}, Dict{"weight": -2.0, "delay": 1.5})
	if err != nil {
		t.Fatal(err)
	}
	cns := nt.GetConnections(ConnFilter{Source: pre.Slice(0, 3), Target: post})
	if len(cns) != 12-3+3 {
		t.Errorf("connections from first 3 pre: %d", len(cns))
	}
	for _, cn := range nt.GetConnections(ConnFilter{Source: pre}) {
		if cn.Pj != pj {
			continue
		}
		if cn.Source()-pre.St != cn.Target()-post.St {
			t.Errorf("one_to_one mismatch: %d -> %d", cn.Source(), cn.Target())
		}
		st := nt.GetConnStatus(cn)
		if st["weight"] != -2.0 || st["delay"] != 1.5 {
			t.Errorf("conn status: %v", st)
		}
		if cn.Synapse().DSteps != 15 {
			t.Errorf("delay steps: %v", cn.Synapse().DSteps)
		}
	}

	pj, err = nt.Connect(pre, pre, ConnSpec{Rule: PairwiseBernoulli, P: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(pj.Syns) != 16 {
		t.Errorf("bernoulli p=1 with autapses: %d", len(pj.Syns))
	}
	pj, err = nt.Connect(pre, pre, ConnSpec{Rule: AllToAll, NoAutapses: true}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(pj.Syns) != 12 {
		t.Errorf("all_to_all without autapses: %d", len(pj.Syns))
	}
	pj, err = nt.Connect(pre, post, ConnSpec{Rule: PairwiseBernoulli, P: 0}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(pj.Syns) != 0 {
		t.Errorf("bernoulli p=0: %d", len(pj.Syns))
	}
	if _, err := nt.Connect(pre, post, ConnSpec{Rule: PairwiseBernoulli, P: 2}, nil); err == nil {
		t.Errorf("p > 1 must fail")
	}
	if _, err := nt.Connect(pre, post, ConnSpec{Rule: "fixed_indegree"}, nil); err == nil {
		t.Errorf("unknown rule must fail")
	}
	if _, err := nt.Connect(pre, gen, ConnSpec{}, nil); err == nil {
		t.Errorf("generator target must fail")
	}
	if _, err := nt.Connect(rec, post, ConnSpec{}, nil); err == nil {
		t.Errorf("recorder source must fail")
	}
	if _, err := nt.Connect(pre, post, ConnSpec{}, Dict{"synapse_model": "no_such"}); !errors.Is(err, ErrUnknownModel) {
		t.Errorf("unknown synapse model must fail, got: %v", err)
	}
	if _, err := nt.Connect(pre, post, ConnSpec{}, Dict{"alpha": 3.0}); !errors.Is(err, ErrBadProperty) {
		t.Errorf("static_synapse has no alpha, got: %v", err)
	}
	if _, err := nt.Connect(pre, post, ConnSpec{}, Dict{"delay": 0.0}); !errors.Is(err, ErrBadProperty) {
		t.Errorf("zero delay must fail, got: %v", err)
	}
	if _, err := nt.Connect(gen, rec, ConnSpec{}, nil); err != nil {
		t.Errorf("generator to recorder: %v", err)
	}
}

func TestConnectMatrix(t *testing.T) {
	nt := NewNetwork("matrix")
	defer nt.Close()
	pre, _ := nt.Create("iaf_psc_exp", 5)
	post, _ := nt.Create("iaf_psc_exp", 4)
	wm := mat.NewDense(4, 5, nil)
	for r := 0; r < 4; r++ {
		for c := 0; c < 5; c++ {
			wm.Set(r, c, float64(10*r+c))
		}
	}
	if _, err := nt.Connect(pre, post, ConnSpec{}, Dict{"weight": wm.T()}); !errors.Is(err, ErrBadProperty) {
		t.Errorf("transposed matrix must fail, got: %v", err)
	}
	if len(nt.Prjns) != 0 {
		t.Errorf("failed connect must not add a projection")
	}
	if _, err := nt.Connect(pre, post, ConnSpec{}, Dict{"weight": wm}); err != nil {
		t.Fatal(err)
	}
	for _, cn := range nt.GetConnections(ConnFilter{}) {
		ri := cn.Target() - post.St
		si := cn.Source() - pre.St
		if w := nt.GetConnStatus(cn)["weight"]; w != wm.At(ri, si) {
			t.Errorf("weight %d -> %d: %v != %v", cn.Source(), cn.Target(), w, wm.At(ri, si))
		}
	}
	_, err := nt.Connect(pre, post, ConnSpec{}, Dict{"weight": [][]float64{{1, 2}, {3, 4}}})
	if !errors.Is(err, ErrBadProperty) {
		t.Errorf("wrong shape nested slice must fail, got: %v", err)
	}
}

func TestSetConnStatus(t *testing.T) {
	nt := NewNetwork("connstatus")
	defer nt.Close()
	pre, _ := nt.Create("iaf_psc_exp", 2)
	post, _ := nt.Create("iaf_psc_exp", 2)
	nt.Connect(pre, post, ConnSpec{}, nil)
	cns := nt.GetConnections(ConnFilter{Target: post.Slice(1, 2)})
	if len(cns) != 2 {
		t.Fatalf("connections to second post: %d", len(cns))
	}
	if err := nt.SetConnStatus(cns, Dict{"weight": 4.0, "delay": 3.0}); err != nil {
		t.Fatal(err)
	}
	if err := nt.SetConnStatus(cns, Dict{"source": 1}); !errors.Is(err, ErrBadProperty) {
		t.Errorf("source must be read-only, got: %v", err)
	}
	for _, cn := range nt.GetConnections(ConnFilter{}) {
		sy := cn.Synapse()
		if cn.Target() == post.GID(1) {
			if sy.Wt != 4 || sy.DSteps != 30 {
				t.Errorf("updated synapse: %+v", *sy)
			}
		} else if sy.Wt != 1 || sy.DSteps != 10 {
			t.Errorf("other synapse changed: %+v", *sy)
		}
	}
	ks := nt.KernelStatus()
	if ks[KeyMinDelay] != 1.0 || math.Abs(ks[KeyMaxDelay].(float64)-3) > 1e-9 {
		t.Errorf("delay range: %v %v", ks[KeyMinDelay], ks[KeyMaxDelay])
	}
}

func TestWtsJSON(t *testing.T) {
	build := func() (*Network, NodeCollection, NodeCollection) {
		nt := NewNetwork("wts")
		pre, _ := nt.CreatePop("Pre", "iaf_psc_exp", 3)
		post, _ := nt.CreatePop("Post", "iaf_psc_exp", 2)
		nt.Connect(pre.Collection(), post.Collection(), ConnSpec{}, nil)
		return nt, pre.Collection(), post.Collection()
	}
	src, pre, post := build()
	defer src.Close()
	for _, cn := range src.GetConnections(ConnFilter{}) {
		cn.Synapse().Wt = float32(cn.Source()*10 + cn.Target())
	}
	var b bytes.Buffer
	src.WriteWtsJSON(&b)

	dst, _, _ := build()
	defer dst.Close()
	if err := dst.ReadWtsJSON(&b); err != nil {
		t.Fatal(err)
	}
	for _, cn := range dst.GetConnections(ConnFilter{Source: pre, Target: post}) {
		if w := cn.Synapse().Wt; w != float32(cn.Source()*10+cn.Target()) {
			t.Errorf("weight %d -> %d: %v", cn.Source(), cn.Target(), w)
		}
	}

	for _, fn := range []string{"wts.json", "wts.json.gz"} {
		pfn := gi.FileName(filepath.Join(t.TempDir(), fn))
		if err := src.SaveWtsJSON(pfn); err != nil {
			t.Fatal(err)
		}
		fdst, _, _ := build()
		if err := fdst.OpenWtsJSON(pfn); err != nil {
			t.Fatalf("%s: %v", fn, err)
		}
		for _, cn := range fdst.GetConnections(ConnFilter{}) {
			if w := cn.Synapse().Wt; w != float32(cn.Source()*10+cn.Target()) {
				t.Errorf("%s: weight %d -> %d: %v", fn, cn.Source(), cn.Target(), w)
			}
		}
		fdst.Close()
	}
	if err := dst.OpenWtsJSON(gi.FileName(filepath.Join(t.TempDir(), "none.json"))); err == nil {
		t.Errorf("missing file must fail")
	}
}

func TestApplyParams(t *testing.T) {
	nt := NewNetwork("params")
	defer nt.Close()
	a, _ := nt.CreatePop("A", "iaf_psc_exp", 3)
	b, _ := nt.CreatePop("B", "iaf_psc_exp", 3)
	b.SetClass("Slow")
	sheet := &params.Sheet{
		{Sel: "Population", Desc: "all neurons",
			Params: params.Params{
				"Population.Pars.Iaf.VTh": "-50",
			}},
		{Sel: ".Slow", Desc: "slow membrane",
			Params: params.Params{
				"Population.Pars.Iaf.TauM": "20",
			}},
	}
	app, err := nt.ApplyParams(sheet, false)
	if err != nil {
		t.Fatal(err)
	}
	if !app {
		t.Errorf("params not applied")
	}
	for _, nd := range nt.Nodes {
		if nd.Pars.Iaf.VTh != -50 {
			t.Errorf("node %d V_th: %v", nd.GID, nd.Pars.Iaf.VTh)
		}
		want := float32(10)
		if b.Contains(nd.GID) {
			want = 20
		}
		if nd.Pars.Iaf.TauM != want {
			t.Errorf("node %d tau_m: %v != %v", nd.GID, nd.Pars.Iaf.TauM, want)
		}
	}
	if a.Pars.Iaf.P22 == b.Pars.Iaf.P22 {
		t.Errorf("propagators not updated after params")
	}
}

func TestApplyParamsKeepsNodeStatus(t *testing.T) {
	nt := NewNetwork("params")
	defer nt.Close()
	a, _ := nt.CreatePop("A", "iaf_psc_exp", 2)
	g, _ := nt.CreatePop("G", "poisson_generator", 2)
	if err := nt.SetStatusList(a.Collection(), []Dict{{"I_e": 500.0}, {"I_e": 0.0}}); err != nil {
		t.Fatal(err)
	}
	nt.SetStatusList(g.Collection(), []Dict{{"rate": 10.0}, {"rate": 20.0}})
	sheet := &params.Sheet{
		{Sel: "Population", Desc: "slow membrane",
			Params: params.Params{
				"Population.Pars.Iaf.TauM":     "20",
				"Population.Pars.Poisson.Stop": "50",
			}},
	}
	if _, err := nt.ApplyParams(sheet, false); err != nil {
		t.Fatal(err)
	}
	sts, _ := nt.GetStatus(a.Collection())
	for i, ie := range []float64{500, 0} {
		if sts[i]["I_e"] != ie || sts[i]["tau_m"] != 20.0 {
			t.Errorf("node %d: I_e %v tau_m %v", i, sts[i]["I_e"], sts[i]["tau_m"])
		}
	}
	gs, _ := nt.GetStatus(g.Collection())
	for i, r := range []float64{10, 20} {
		if gs[i]["rate"] != r || gs[i]["stop"] != 50.0 {
			t.Errorf("generator %d: rate %v stop %v", i, gs[i]["rate"], gs[i]["stop"])
		}
	}

	d := Dict{"a": 1.0, "b": 2, "c": true}
	ch := d.Changed(Dict{"a": 1.0, "b": 3})
	if len(ch) != 2 || ch["b"] != 2 || ch["c"] != true {
		t.Errorf("changed: %v", ch)
	}
}

func TestSizeReport(t *testing.T) {
	nt := NewNetwork("size")
	defer nt.Close()
	pre, _ := nt.CreatePop("Pre", "iaf_psc_exp", 10)
	post, _ := nt.CreatePop("Post", "iaf_psc_exp", 10)
	nt.Connect(pre.Collection(), post.Collection(), ConnSpec{}, nil)
	rep := nt.SizeReport()
	if !bytes.Contains([]byte(rep), []byte("Syns: 100")) {
		t.Errorf("size report missing synapse count:\n%s", rep)
	}
}
