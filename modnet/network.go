// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modnet

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/emer/emergent/params"
	"github.com/emer/emergent/prjn"
	"github.com/goki/ki/ints"
)

// Network is a spiking network of nodes connected by synapses, simulated
// in discrete time steps of the kernel resolution.
type Network struct {
	NetworkBase
}

// NewNetwork returns a new network with default kernel settings,
// the built-in node models, and static_synapse.
func NewNetwork(name string) *Network {
	nt := &Network{}
	nt.InitName(name)
	return nt
}

// InitName initializes the network to the empty state
func (nt *Network) InitName(name string) {
	nt.Nm = name
	nt.Kernel.Defaults()
	nt.PopMap = make(map[string]*Population)
	nt.NodeModels = BuiltinNodeModels()
	nt.SynModels = map[string]SynModel{"static_synapse": NewStaticSyn("static_synapse")}
	nt.Modules = make(map[string]bool)
	nt.RingLen = 2
	nt.SeedGRand()
	nt.SeedThrRand()
	nt.BuildThreads()
}

// Close stops the computation threads
func (nt *Network) Close() {
	nt.StopThreads()
}

//////////////////////////////////////////////////////////////////////////////////////
//  Kernel

// SetKernelStatus sets kernel settings from the dict.  Setting
// local_num_threads resets rng_seeds to the defaults unless rng_seeds is
// also given.  Threads and resolution cannot change once nodes exist.
// An error leaves the kernel unchanged.
func (nt *Network) SetKernelStatus(d Dict) error {
	kp := nt.Kernel
	kp.RngSeeds = append([]int64(nil), nt.Kernel.RngSeeds...)
	locked := len(nt.Nodes) > 0
	newThr := false
	for _, k := range d.Keys() {
		v := d[k]
		switch k {
		case KeyThreads:
			n, err := DictInt(k, v)
			if err != nil {
				return err
			}
			if n < 1 {
				return BadProperty(k, "must be >= 1")
			}
			if locked && n != kp.Threads {
				return fmt.Errorf("%w: %s cannot change after nodes are created", ErrKernelLocked, k)
			}
			if n != kp.Threads {
				newThr = true
			}
			kp.Threads = n
		case KeyResolution:
			h, err := DictFloat(k, v)
			if err != nil {
				return err
			}
			if h <= 0 {
				return BadProperty(k, "must be > 0")
			}
			if locked && h != kp.Resolution {
				return fmt.Errorf("%w: %s cannot change after nodes are created", ErrKernelLocked, k)
			}
			kp.Resolution = h
		case KeyGrngSeed:
			sd, err := DictInt(k, v)
			if err != nil {
				return err
			}
			kp.GrngSeed = int64(sd)
		case KeyRngSeeds:
		case KeyVPs, KeyTime, KeyMinDelay, KeyMaxDelay:
			return BadProperty(k, "read-only")
		default:
			return BadProperty(k, "not a kernel parameter")
		}
	}
	if sv, has := d[KeyRngSeeds]; has {
		sds, err := DictInts(KeyRngSeeds, sv)
		if err != nil {
			return err
		}
		if len(sds) != kp.NVps() {
			return BadProperty(KeyRngSeeds, fmt.Sprintf("number of seeds: %d must equal the number of virtual processes: %d", len(sds), kp.NVps()))
		}
		kp.RngSeeds = sds
	} else if newThr {
		kp.RngSeeds = DefaultRngSeeds(kp.Threads)
	}

	nt.Kernel = kp
	if _, has := d[KeyGrngSeed]; has {
		nt.SeedGRand()
	}
	if _, has := d[KeyRngSeeds]; has || newThr {
		nt.SeedThrRand()
	}
	if newThr {
		nt.BuildThreads()
	}
	if _, has := d[KeyResolution]; has {
		for _, md := range nt.NodeModels {
			md.Pars.Update(kp.Resolution)
		}
	}
	return nil
}

// KernelStatus returns all kernel settings
func (nt *Network) KernelStatus() Dict {
	kp := &nt.Kernel
	mnd, mxd := nt.DelayRange()
	return Dict{
		KeyThreads:    kp.Threads,
		KeyVPs:        kp.NVps(),
		KeyResolution: kp.Resolution,
		KeyGrngSeed:   kp.GrngSeed,
		KeyRngSeeds:   append([]int64(nil), kp.RngSeeds...),
		KeyTime:       kp.Time(),
		KeyMinDelay:   float64(mnd) * kp.Resolution,
		KeyMaxDelay:   float64(mxd) * kp.Resolution,
	}
}

// GetKernelStatus returns the given kernel keys, or all of them if none
// are given, with an error for unknown keys
func (nt *Network) GetKernelStatus(keys ...string) (Dict, error) {
	ks := nt.KernelStatus()
	if len(keys) == 0 {
		return ks, nil
	}
	d := make(Dict, len(keys))
	for _, k := range keys {
		v, ok := ks[k]
		if !ok {
			return nil, BadProperty(k, "not a kernel parameter")
		}
		d[k] = v
	}
	return d, nil
}

// ApplySeeds sets grng_seed and rng_seeds from a single master seed,
// laid out by SeedPlan for the current number of virtual processes.
func (nt *Network) ApplySeeds(master int64) (SeedPlan, error) {
	sp := SeedPlan{Master: master, NVp: nt.Kernel.NVps()}
	err := nt.SetKernelStatus(Dict{KeyGrngSeed: sp.GrngSeed(), KeyRngSeeds: sp.RngSeeds()})
	return sp, err
}

// DelayRange returns the min and max delay in steps over all synapses,
// 1, 1 if there are none
func (nt *Network) DelayRange() (mn, mx int32) {
	for _, pj := range nt.Prjns {
		if len(pj.Syns) == 0 {
			continue
		}
		pmn, pmx := pj.MinDelay(), pj.MaxDelay()
		if mn == 0 || pmn < mn {
			mn = pmn
		}
		if pmx > mx {
			mx = pmx
		}
	}
	if mn == 0 {
		mn = 1
	}
	if mx == 0 {
		mx = 1
	}
	return
}

//////////////////////////////////////////////////////////////////////////////////////
//  Modules and models

// Install installs the extension module registered under name.
// Installing an unknown or already installed module is an error.
func (nt *Network) Install(name string) error {
	md, ok := LookupModule(name)
	if !ok {
		return fmt.Errorf("Network Install: module %q not found -- available: %v", name, ModuleNames())
	}
	if nt.Modules[name] {
		return fmt.Errorf("Network Install: module %q is already installed", name)
	}
	if err := md.Init(nt); err != nil {
		return fmt.Errorf("Network Install: module %q: %w", name, err)
	}
	nt.Modules[name] = true
	return nil
}

// RegisterSynModel adds a synapse model, typically from a module Init
func (nt *Network) RegisterSynModel(sm SynModel) error {
	if nt.HasModel(sm.Name()) {
		return fmt.Errorf("Network RegisterSynModel: model name %q already in use", sm.Name())
	}
	nt.SynModels[sm.Name()] = sm
	return nil
}

// HasModel returns true if name is a node or synapse model
func (nt *Network) HasModel(name string) bool {
	if _, ok := nt.NodeModels[name]; ok {
		return true
	}
	_, ok := nt.SynModels[name]
	return ok
}

// NodeModelNames returns the sorted names of all node models
func (nt *Network) NodeModelNames() []string {
	nms := make([]string, 0, len(nt.NodeModels))
	for nm := range nt.NodeModels {
		nms = append(nms, nm)
	}
	sort.Strings(nms)
	return nms
}

// SynModelNames returns the sorted names of all synapse models
func (nt *Network) SynModelNames() []string {
	nms := make([]string, 0, len(nt.SynModels))
	for nm := range nt.SynModels {
		nms = append(nms, nm)
	}
	sort.Strings(nms)
	return nms
}

// CopyModel copies node or synapse model base under a new name, applying
// the dict to the defaults of the copy.  The copy is independent of base.
func (nt *Network) CopyModel(base, alias string, d Dict) error {
	if nt.HasModel(alias) {
		return fmt.Errorf("Network CopyModel: model name %q already in use", alias)
	}
	if md, ok := nt.NodeModels[base]; ok {
		cp := md.Copy(alias)
		if err := cp.SetDefaults(d, nt.Kernel.Resolution); err != nil {
			return err
		}
		nt.NodeModels[alias] = cp
		return nil
	}
	if sm, ok := nt.SynModels[base]; ok {
		cp := sm.Copy(alias)
		if err := cp.SetDefaults(d, nt); err != nil {
			return err
		}
		nt.SynModels[alias] = cp
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownModel, base)
}

// SetDefaults applies the dict to the defaults of the named node or synapse model
func (nt *Network) SetDefaults(model string, d Dict) error {
	if md, ok := nt.NodeModels[model]; ok {
		return md.SetDefaults(d, nt.Kernel.Resolution)
	}
	if sm, ok := nt.SynModels[model]; ok {
		return sm.SetDefaults(d, nt)
	}
	return fmt.Errorf("%w: %q", ErrUnknownModel, model)
}

// GetDefaults returns the defaults of the named node or synapse model
func (nt *Network) GetDefaults(model string) (Dict, error) {
	if md, ok := nt.NodeModels[model]; ok {
		return md.Defaults(), nil
	}
	if sm, ok := nt.SynModels[model]; ok {
		return sm.DefaultsDict(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownModel, model)
}

//////////////////////////////////////////////////////////////////////////////////////
//  Create

// Create creates n nodes of given model, as a new population named
// after the model
func (nt *Network) Create(model string, n int) (NodeCollection, error) {
	ps, err := nt.CreatePop(fmt.Sprintf("%s_%d", model, len(nt.Pops)), model, n)
	if err != nil {
		return NodeCollection{}, err
	}
	return ps.Collection(), nil
}

// CreatePop creates a named population of n nodes of given model
func (nt *Network) CreatePop(name, model string, n int) (*Population, error) {
	md, ok := nt.NodeModels[model]
	if !ok {
		if _, isSyn := nt.SynModels[model]; isSyn {
			return nil, fmt.Errorf("Network Create: %q is a synapse model", model)
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}
	if n < 1 {
		return nil, fmt.Errorf("Network Create: number of nodes must be >= 1, got: %d", n)
	}
	if _, has := nt.PopMap[name]; has {
		return nil, fmt.Errorf("Network Create: population name %q already in use", name)
	}
	ps := &Population{Nm: name, Model: model, Kind: md.Kind, Index: len(nt.Pops), St: len(nt.Nodes) + 1, N: n, Pars: md.Pars}
	ps.Shp.SetShape([]int{n}, nil, []string{"Nodes"})
	nt.Pops = append(nt.Pops, ps)
	nt.PopMap[name] = ps
	for i := 0; i < n; i++ {
		gid := ps.St + i
		nd := Node{GID: gid, Kind: md.Kind, Model: model, Pop: ps.Index, Thr: gid % nt.NThreads, Pars: md.Pars}
		nd.ExBuf = make([]float32, nt.RingLen)
		nd.InBuf = make([]float32, nt.RingLen)
		nd.InitState()
		nt.Nodes = append(nt.Nodes, nd)
		nt.ThrNodes[nd.Thr] = append(nt.ThrNodes[nd.Thr], gid-1)
		if md.Kind == VolTransNode {
			nt.VolTrans = append(nt.VolTrans, gid)
		}
	}
	return ps, nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  Status

// SetStatus applies the dict to every node in the collection.
// An error leaves all nodes unchanged.
func (nt *Network) SetStatus(nc NodeCollection, d Dict) error {
	return nt.SetStatusList(nc, []Dict{d})
}

// SetStatusList applies one dict per node in the collection, or a single
// dict to all of them.  An error leaves all nodes unchanged.
func (nt *Network) SetStatusList(nc NodeCollection, ds []Dict) error {
	if _, err := nt.CollPop(nc); err != nil {
		return err
	}
	if len(ds) != 1 && len(ds) != nc.N {
		return fmt.Errorf("Network SetStatus: number of dicts: %d must be 1 or the number of nodes: %d", len(ds), nc.N)
	}
	h := nt.Kernel.Resolution
	cps := make([]Node, nc.N)
	copy(cps, nt.Nodes[nc.St-1:nc.St-1+nc.N])
	for i := range cps {
		d := ds[0]
		if len(ds) > 1 {
			d = ds[i]
		}
		if err := cps[i].SetStatus(d, h); err != nil {
			return fmt.Errorf("node %d: %w", cps[i].GID, err)
		}
	}
	copy(nt.Nodes[nc.St-1:], cps)
	return nil
}

// GetStatus returns the status of each node in the collection
func (nt *Network) GetStatus(nc NodeCollection) ([]Dict, error) {
	if _, err := nt.CollPop(nc); err != nil {
		return nil, err
	}
	ds := make([]Dict, nc.N)
	for i := range ds {
		ds[i] = nt.Nodes[nc.St-1+i].Status()
	}
	return ds, nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  Connect

// Connection rules
const (
	AllToAll          = "all_to_all"
	OneToOne          = "one_to_one"
	PairwiseBernoulli = "pairwise_bernoulli"
)

// ConnSpec specifies the connection rule
type ConnSpec struct {
	Rule       string  `desc:"connection rule: all_to_all (default), one_to_one, pairwise_bernoulli"`
	P          float64 `desc:"connection probability for pairwise_bernoulli"`
	NoAutapses bool    `desc:"do not connect a node to itself when connecting a collection to itself"`
}

// SynSpec keys with special meaning -- all other keys are synapse parameters,
// given as a scalar or as a [len(post), len(pre)] matrix.
const (
	KeySynModel = "synapse_model"
	KeyModel    = "model"
)

// SynSpecModel returns the synapse model named in the synapse spec, static_synapse by default
func SynSpecModel(ss Dict) (string, error) {
	for _, k := range []string{KeySynModel, KeyModel} {
		if v, has := ss[k]; has {
			nm, ok := v.(string)
			if !ok {
				return "", BadProperty(k, "expected a model name")
			}
			return nm, nil
		}
	}
	return "static_synapse", nil
}

// Connect connects the pre nodes to the post nodes with given rule and
// synapse spec, returning the new projection.  Both collections must each lie
// within one population.  Nothing is connected if an error is returned.
func (nt *Network) Connect(pre, post NodeCollection, cs ConnSpec, ss Dict) (*Prjn, error) {
	spop, err := nt.CollPop(pre)
	if err != nil {
		return nil, err
	}
	rpop, err := nt.CollPop(post)
	if err != nil {
		return nil, err
	}
	if spop.Kind == VolTransNode || spop.Kind == RecorderNode {
		return nil, fmt.Errorf("Network Connect: %v nodes cannot send spikes", spop.Kind)
	}
	if rpop.Kind == GeneratorNode {
		return nil, fmt.Errorf("Network Connect: %v nodes cannot receive spikes", rpop.Kind)
	}
	mnm, err := SynSpecModel(ss)
	if err != nil {
		return nil, err
	}
	sm, ok := nt.SynModels[mnm]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, mnm)
	}
	if sm.Modulated() && sm.VolTransGID() < 0 {
		return nil, BadProperty("vt", "No volume transmitter has been assigned")
	}

	pj := &Prjn{Send: spop, Recv: rpop, Model: sm}
	pj.SendSt, pj.SendN = pre.St-spop.St, pre.N
	pj.RecvSt, pj.RecvN = post.St-rpop.St, post.N
	same := pre == post
	pj.Rule = cs.Rule
	switch cs.Rule {
	case AllToAll, "":
		pj.Rule = AllToAll
		full := prjn.NewFull()
		full.SelfCon = !cs.NoAutapses
		pj.Pat = full
	case OneToOne:
		if pre.N != post.N {
			return nil, fmt.Errorf("Network Connect: one_to_one requires equal sizes, got pre: %d post: %d", pre.N, post.N)
		}
		pj.Pat = prjn.NewOneToOne()
	case PairwiseBernoulli:
		if cs.P < 0 || cs.P > 1 {
			return nil, BadProperty("p", "must be in [0, 1]")
		}
		bp := NewBernoulli(cs.P, nt.GRand.Uint64())
		bp.SelfCon = !cs.NoAutapses
		pj.Pat = bp
	default:
		return nil, fmt.Errorf("Network Connect: unknown rule %q", cs.Rule)
	}
	if same && cs.NoAutapses && cs.Rule == OneToOne {
		return nil, fmt.Errorf("Network Connect: one_to_one from a collection to itself only makes autapses")
	}

	sps, err := synSpecParams(ss, sm, pre.N, post.N)
	if err != nil {
		return nil, err
	}
	if err := pj.BuildStru(); err != nil {
		return nil, err
	}
	for si := 0; si < pj.SendN; si++ {
		nc := int(pj.SConN[si])
		st := int(pj.SConIdxSt[si])
		for ci := 0; ci < nc; ci++ {
			ri := int(pj.SConIdx[st+ci])
			sy := &pj.Syns[st+ci]
			for _, sp := range sps {
				if err := sm.SetSynParam(sy, sp.key, sp.val(ri, si)); err != nil {
					return nil, err
				}
			}
			sy.DSteps = nt.Kernel.DelaySteps(sy.Delay)
		}
	}

	pj.Nm = spop.Nm + "To" + rpop.Nm
	for i := 1; nt.prjnNameUsed(pj.Nm); i++ {
		pj.Nm = fmt.Sprintf("%sTo%s_%d", spop.Nm, rpop.Nm, i)
	}
	spop.SndPrjns = append(spop.SndPrjns, pj)
	rpop.RcvPrjns = append(rpop.RcvPrjns, pj)
	nt.Prjns = append(nt.Prjns, pj)
	nt.Prepared = false
	return pj, nil
}

func (nt *Network) prjnNameUsed(nm string) bool {
	for _, pj := range nt.Prjns {
		if pj.Nm == nm {
			return true
		}
	}
	return false
}

// synParam is one synapse parameter from a SynSpec, scalar or matrix
type synParam struct {
	key string
	sc  float64
	mat interface{ At(i, j int) float64 }
}

func (sp *synParam) val(ri, si int) float64 {
	if sp.mat != nil {
		return sp.mat.At(ri, si)
	}
	return sp.sc
}

// synSpecParams checks all synapse parameters of the synapse spec against the model,
// and matrix shapes against [nrecv, nsend]
func synSpecParams(ss Dict, sm SynModel, nsend, nrecv int) ([]*synParam, error) {
	var sps []*synParam
	var scratch Synapse
	sm.InitSyn(&scratch)
	for _, k := range ss.Keys() {
		if k == KeySynModel || k == KeyModel {
			continue
		}
		v := ss[k]
		sp := &synParam{key: k}
		if m, isMat := DictMatrix(v); isMat {
			r, c := m.Dims()
			if r != nrecv || c != nsend {
				return nil, BadProperty(k, fmt.Sprintf("matrix shape: [%d, %d] must be [len(post), len(pre)] = [%d, %d]", r, c, nrecv, nsend))
			}
			sp.mat = m
		} else {
			f, err := DictFloat(k, v)
			if err != nil {
				return nil, err
			}
			sp.sc = f
		}
		if err := sm.SetSynParam(&scratch, k, sp.val(0, 0)); err != nil {
			return nil, err
		}
		sps = append(sps, sp)
	}
	return sps, nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  Connections

// Conn identifies one synapse in the network
type Conn struct {
	Pj  *Prjn `desc:"projection holding the synapse"`
	Si  int   `desc:"sending index within the projection"`
	Ri  int   `desc:"receiving index within the projection"`
	Syn int   `desc:"index into Pj.Syns"`
}

// Source returns the global id of the sending node
func (cn Conn) Source() int { return cn.Pj.SendGID(cn.Si) }

// Target returns the global id of the receiving node
func (cn Conn) Target() int { return cn.Pj.RecvGID(cn.Ri) }

// Synapse returns the synapse
func (cn Conn) Synapse() *Synapse { return &cn.Pj.Syns[cn.Syn] }

// ConnFilter selects connections: empty collections and model match all
type ConnFilter struct {
	Source NodeCollection
	Target NodeCollection
	Model  string
}

func inColl(nc NodeCollection, gid int) bool {
	return nc.N == 0 || (gid >= nc.St && gid < nc.St+nc.N)
}

// GetConnections returns all connections matching the filter, in order of
// projection creation and sending node
func (nt *Network) GetConnections(cf ConnFilter) []Conn {
	var cns []Conn
	for _, pj := range nt.Prjns {
		if cf.Model != "" && pj.Model.Name() != cf.Model {
			continue
		}
		for si := 0; si < pj.SendN; si++ {
			if !inColl(cf.Source, pj.SendGID(si)) {
				continue
			}
			nc := int(pj.SConN[si])
			st := int(pj.SConIdxSt[si])
			for ci := 0; ci < nc; ci++ {
				ri := int(pj.SConIdx[st+ci])
				if !inColl(cf.Target, pj.RecvGID(ri)) {
					continue
				}
				cns = append(cns, Conn{Pj: pj, Si: si, Ri: ri, Syn: st + ci})
			}
		}
	}
	return cns
}

// GetConnStatus returns the parameters of the connection, including the
// common properties of its model
func (nt *Network) GetConnStatus(cn Conn) Dict {
	d := cn.Pj.Model.SynStatus(cn.Synapse())
	d["source"] = cn.Source()
	d["target"] = cn.Target()
	d[KeySynModel] = cn.Pj.Model.Name()
	return d
}

// SetConnStatus applies the dict to all given connections.
// Each connection is either fully updated or, on error, left unchanged,
// and processing stops at the first error.
func (nt *Network) SetConnStatus(cns []Conn, d Dict) error {
	for _, k := range d.Keys() {
		if k == KeySynModel || k == KeyModel || k == "source" || k == "target" {
			return BadProperty(k, "read-only")
		}
	}
	for _, cn := range cns {
		sy := *cn.Synapse()
		for _, k := range d.Keys() {
			f, err := DictFloat(k, d[k])
			if err != nil {
				return err
			}
			if err := cn.Pj.Model.SetSynParam(&sy, k, f); err != nil {
				return err
			}
		}
		sy.DSteps = nt.Kernel.DelaySteps(sy.Delay)
		*cn.Synapse() = sy
	}
	nt.Prepared = false
	return nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  Params

// ApplyParams applies given parameter style Sheet to populations in this network.
// Parameters changed on a population are applied to all of its nodes, keeping
// their dynamic state and any other per-node values.  If setMsg is true, then a message is printed to
// confirm each parameter that is set.  It always prints a message if a
// parameter fails to be set.  Returns true if any params were set, and error
// if there were any errors.
func (nt *Network) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	applied := false
	var rerr error
	h := nt.Kernel.Resolution
	for _, ps := range nt.Pops {
		orig := ps.Pars
		app, err := pars.Apply(ps, setMsg)
		if err != nil {
			rerr = err
		}
		if !app {
			continue
		}
		if err := ps.Pars.Validate(ps.Kind); err != nil {
			log.Printf("Network ApplyParams: population %v: %v\n", ps.Nm, err)
			ps.Pars = orig
			rerr = err
			continue
		}
		ps.Pars.Update(h)
		applied = true
		ch := ps.Pars.Status(ps.Kind).Changed(orig.Status(ps.Kind))
		if len(ch) == 0 {
			continue
		}
		err = nt.SetStatus(ps.Collection(), ch)
		if err != nil {
			rerr = errors.Join(rerr, err)
		}
	}
	return applied, rerr
}

//////////////////////////////////////////////////////////////////////////////////////
//  Ring buffers

// Prepare updates ring buffers for the current maximum delay, fixes the
// minimum delay, and starts the computation threads.
// Called automatically by Simulate.
func (nt *Network) Prepare() {
	if !nt.Prepared {
		mn, mx := nt.DelayRange()
		nt.MinDelay = mn
		nt.ResizeRings(ints.MaxInt(int(mx)+1, 2))
		nt.Prepared = true
	}
	nt.StartThreads()
}

// ResizeRings grows the ring buffer length of all nodes, keeping pending input
// at its absolute arrival step.  Rings never shrink.
func (nt *Network) ResizeRings(rlen int) {
	if rlen <= nt.RingLen {
		return
	}
	old := nt.RingLen
	cur := nt.Kernel.Steps
	for ni := range nt.Nodes {
		nd := &nt.Nodes[ni]
		ex := make([]float32, rlen)
		in := make([]float32, rlen)
		for t := cur; t < cur+int64(old); t++ {
			ex[t%int64(rlen)] = nd.ExBuf[t%int64(old)]
			in[t%int64(rlen)] = nd.InBuf[t%int64(old)]
		}
		nd.ExBuf = ex
		nd.InBuf = in
	}
	nt.RingLen = rlen
}
