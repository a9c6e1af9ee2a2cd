// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modnet

import (
	"compress/gzip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"unsafe"

	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/timer"
	"github.com/emer/emergent/weights"
	"github.com/goki/gi/gi"
	"github.com/goki/ki/indent"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// NodeFunChan is a channel of per-thread functions, receiving the thread index
type NodeFunChan chan func(th int)

// NetworkBase holds the basic structural components of a network:
// kernel settings, nodes, populations, projections and models,
// along with the threading and random number infrastructure.
type NetworkBase struct {
	Nm         string                 `desc:"overall name of network -- helps discriminate if there are multiple"`
	Kernel     Kernel                 `desc:"kernel settings: threads, resolution, seeds and current time"`
	Nodes      []Node                 `desc:"all nodes, indexed by global id - 1"`
	Pops       []*Population          `desc:"populations in order of creation"`
	PopMap     map[string]*Population `view:"-" desc:"map of name to population"`
	Prjns      []*Prjn                `desc:"projections in order of creation"`
	NodeModels map[string]*NodeModel  `view:"-" desc:"node models by name"`
	SynModels  map[string]SynModel    `view:"-" desc:"synapse models by name"`
	Modules    map[string]bool        `view:"-" desc:"installed extension modules"`
	VolTrans   []int                  `view:"-" desc:"global ids of all volume transmitters"`
	MetaData   map[string]string      `desc:"misc meta data saved with the weights file"`

	GSrc    rand.Source      `view:"-" desc:"source of the global generator, seeded from grng_seed -- used while building the network"`
	GRand   *rand.Rand       `view:"-" desc:"global random generator, seeded from grng_seed -- used while building the network"`
	ThrSrc  []rand.Source    `view:"-" desc:"per-thread sources, seeded from rng_seeds -- used during simulation"`
	ThrPois []distuv.Poisson `view:"-" desc:"per-thread Poisson distributions drawing from ThrSrc"`

	RingLen   int                    `inactive:"+" desc:"length of the input ring buffers of each node: maximum delay in steps + 1"`
	MinDelay  int32                  `inactive:"+" desc:"minimum delay in steps over all synapses, fixed when the network is prepared -- volume transmitters deliver every deliver_interval * MinDelay steps"`
	Prepared  bool                   `inactive:"+" desc:"true if ring buffers and delays are up to date for simulation"`
	NThreads  int                    `inactive:"+" desc:"number of parallel threads (go routines) -- equal to the kernel local_num_threads"`
	ThrNodes  [][]int                `view:"-" desc:"node indexes per thread -- a node is owned by thread gid % NThreads"`
	ThrSpikes [][]int                `view:"-" desc:"global ids of nodes that emitted a spike on the current step, per thread"`
	ThrChans  []NodeFunChan          `view:"-" desc:"function channels, per thread"`
	ThrTimes  []timer.Time           `view:"-" desc:"timers for each thread, so you can see how evenly the workload is being distributed"`
	FunTimes  map[string]*timer.Time `view:"-" desc:"timers for each major function (step of processing)"`
	WaitGp    sync.WaitGroup         `view:"-" desc:"network-level wait group for synchronizing threaded calls"`
	thrOn     bool
}

func (nt *NetworkBase) Name() string { return nt.Nm }
func (nt *NetworkBase) NPops() int   { return len(nt.Pops) }
func (nt *NetworkBase) NNodes() int  { return len(nt.Nodes) }

// PopByName returns population by name, nil if not found
func (nt *NetworkBase) PopByName(name string) *Population {
	return nt.PopMap[name]
}

// PopByNameTry returns population by name, with an error if not found
func (nt *NetworkBase) PopByNameTry(name string) (*Population, error) {
	ps, ok := nt.PopMap[name]
	if !ok {
		err := fmt.Errorf("Network %v: population named: %v not found", nt.Nm, name)
		log.Println(err)
		return nil, err
	}
	return ps, nil
}

// PopOf returns the population that node gid belongs to, nil if gid is invalid
func (nt *NetworkBase) PopOf(gid int) *Population {
	if gid < 1 || gid > len(nt.Nodes) {
		return nil
	}
	return nt.Pops[nt.Nodes[gid-1].Pop]
}

// Node returns the node with given global id, nil if invalid
func (nt *NetworkBase) Node(gid int) *Node {
	if gid < 1 || gid > len(nt.Nodes) {
		return nil
	}
	return &nt.Nodes[gid-1]
}

// IsVolTrans returns true if gid is a volume_transmitter node
func (nt *NetworkBase) IsVolTrans(gid int) bool {
	nd := nt.Node(gid)
	return nd != nil && nd.Kind == VolTransNode
}

// CollPop returns the population containing the whole collection,
// or an error if the collection is empty, invalid or spans populations.
func (nt *NetworkBase) CollPop(nc NodeCollection) (*Population, error) {
	if nc.N < 1 {
		return nil, fmt.Errorf("Network %v: empty node collection", nt.Nm)
	}
	ps := nt.PopOf(nc.St)
	if ps == nil || !ps.Contains(nc.St+nc.N-1) {
		return nil, fmt.Errorf("Network %v: invalid node collection: %v", nt.Nm, nc)
	}
	return ps, nil
}

//////////////////////////////////////////////////////////////////////////////////////
//  Random numbers

// SeedGRand re-seeds the global generator from the kernel grng_seed
func (nt *NetworkBase) SeedGRand() {
	nt.GSrc = rand.NewSource(uint64(nt.Kernel.GrngSeed))
	nt.GRand = rand.New(nt.GSrc)
}

// SeedThrRand re-seeds the per-thread generators from the kernel rng_seeds
func (nt *NetworkBase) SeedThrRand() {
	n := len(nt.Kernel.RngSeeds)
	nt.ThrSrc = make([]rand.Source, n)
	nt.ThrPois = make([]distuv.Poisson, n)
	for th, sd := range nt.Kernel.RngSeeds {
		nt.ThrSrc[th] = rand.NewSource(uint64(sd))
		nt.ThrPois[th] = distuv.Poisson{Lambda: 1, Src: nt.ThrSrc[th]}
	}
}

// PoissonDraw returns a Poisson distributed count with mean lambda, using
// the generator of thread th
func (nt *NetworkBase) PoissonDraw(th int, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	pd := &nt.ThrPois[th]
	pd.Lambda = lambda
	return int(pd.Rand())
}

//////////////////////////////////////////////////////////////////////////////////////
//  Threading infrastructure

// BuildThreads allocates the per-thread structures from the kernel thread
// count, and assigns nodes to threads
func (nt *NetworkBase) BuildThreads() {
	nt.StopThreads()
	nt.NThreads = nt.Kernel.Threads
	nt.ThrNodes = make([][]int, nt.NThreads)
	nt.ThrSpikes = make([][]int, nt.NThreads)
	nt.ThrChans = make([]NodeFunChan, nt.NThreads)
	nt.ThrTimes = make([]timer.Time, nt.NThreads)
	if nt.FunTimes == nil {
		nt.FunTimes = make(map[string]*timer.Time)
	}
	for ni := range nt.Nodes {
		nd := &nt.Nodes[ni]
		nd.Thr = nd.GID % nt.NThreads
		nt.ThrNodes[nd.Thr] = append(nt.ThrNodes[nd.Thr], ni)
	}
}

// StartThreads starts up the computation threads, which monitor the channels for work
func (nt *NetworkBase) StartThreads() {
	if nt.thrOn || nt.NThreads <= 1 {
		return
	}
	for th := 0; th < nt.NThreads; th++ {
		nt.ThrChans[th] = make(NodeFunChan)
		go nt.ThrWorker(th)
	}
	nt.thrOn = true
}

// StopThreads stops the computation threads
func (nt *NetworkBase) StopThreads() {
	if !nt.thrOn {
		return
	}
	for th := 0; th < nt.NThreads; th++ {
		close(nt.ThrChans[th])
	}
	nt.thrOn = false
}

// ThrWorker is the worker function run by the worker threads
func (nt *NetworkBase) ThrWorker(tt int) {
	for fun := range nt.ThrChans[tt] {
		nt.ThrTimes[tt].Start()
		fun(tt)
		nt.ThrTimes[tt].Stop()
		nt.WaitGp.Done()
	}
}

// ThrFun calls function for each thread index, using threaded (go routine worker)
// computation if NThreads > 1 and otherwise just calling it in the current thread.
func (nt *NetworkBase) ThrFun(fun func(th int), funame string) {
	nt.FunTimerStart(funame)
	if nt.NThreads <= 1 || !nt.thrOn {
		for th := 0; th < nt.NThreads; th++ {
			fun(th)
		}
	} else {
		for th := 0; th < nt.NThreads; th++ {
			nt.WaitGp.Add(1)
			nt.ThrChans[th] <- fun
		}
		nt.WaitGp.Wait()
	}
	nt.FunTimerStop(funame)
}

// TimerReport reports the amount of time spent in each function, and in each thread
func (nt *NetworkBase) TimerReport() {
	fmt.Printf("TimerReport: %v, NThreads: %v\n", nt.Nm, nt.NThreads)
	fmt.Printf("\tFunction Name\tTotal Secs\tPct\n")
	nfn := len(nt.FunTimes)
	fnms := make([]string, 0, nfn)
	for k := range nt.FunTimes {
		fnms = append(fnms, k)
	}
	sort.StringSlice(fnms).Sort()
	pcts := make([]float64, nfn)
	tot := 0.0
	for i, fn := range fnms {
		pcts[i] = nt.FunTimes[fn].TotalSecs()
		tot += pcts[i]
	}
	for i, fn := range fnms {
		fmt.Printf("\t%v \t%6.4g\t%6.4g\n", fn, pcts[i], 100*(pcts[i]/tot))
	}
	fmt.Printf("\tTotal   \t%6.4g\n", tot)

	if nt.NThreads <= 1 {
		return
	}
	fmt.Printf("\n\tThr\tTotal Secs\tPct\n")
	pcts = make([]float64, nt.NThreads)
	tot = 0.0
	for th := 0; th < nt.NThreads; th++ {
		pcts[th] = nt.ThrTimes[th].TotalSecs()
		tot += pcts[th]
	}
	for th := 0; th < nt.NThreads; th++ {
		fmt.Printf("\t%v \t%6.4g\t%6.4g\n", th, pcts[th], 100*(pcts[th]/tot))
	}
}

// TimerReset resets all function and thread timers
func (nt *NetworkBase) TimerReset() {
	for _, ft := range nt.FunTimes {
		ft.Reset()
	}
	nt.ThrTimerReset()
}

// ThrTimerReset resets the per-thread timers
func (nt *NetworkBase) ThrTimerReset() {
	for th := 0; th < nt.NThreads; th++ {
		nt.ThrTimes[th].Reset()
	}
}

// FunTimerStart starts function timer for given function name -- ensures creation of timer
func (nt *NetworkBase) FunTimerStart(fun string) {
	ft, ok := nt.FunTimes[fun]
	if !ok {
		ft = &timer.Time{}
		nt.FunTimes[fun] = ft
	}
	ft.Start()
}

// FunTimerStop stops function timer -- timer must already exist
func (nt *NetworkBase) FunTimerStop(fun string) {
	ft := nt.FunTimes[fun]
	ft.Stop()
}

// SizeReport returns a string reporting the size of each population and projection
// in the network, and total memory footprint.
func (nt *NetworkBase) SizeReport() string {
	var b strings.Builder
	node := 0
	nodeMem := 0
	syn := 0
	synMem := 0
	for _, ps := range nt.Pops {
		nmem := ps.N * (int(unsafe.Sizeof(Node{})) + 2*4*nt.RingLen)
		node += ps.N
		nodeMem += nmem
		fmt.Fprintf(&b, "%14s:\t Nodes: %d\t NodeMem: %v \t Sends To:\n", ps.Nm, ps.N, (datasize.ByteSize)(nmem).HumanReadable())
		for _, pj := range ps.SndPrjns {
			ns := len(pj.Syns)
			syn += ns
			pmem := ns*int(unsafe.Sizeof(Synapse{})) + 4*(len(pj.SConIdx)+len(pj.RConIdx)+len(pj.RSynIdx))
			synMem += pmem
			fmt.Fprintf(&b, "\t%14s:\t Syns: %d\t SynMem: %v\n", pj.Recv.Name(), ns, (datasize.ByteSize)(pmem).HumanReadable())
		}
	}
	fmt.Fprintf(&b, "\n\n%14s:\t Nodes: %d\t NodeMem: %v \t Syns: %d \t SynMem: %v\n", nt.Nm, node, (datasize.ByteSize)(nodeMem).HumanReadable(), syn, (datasize.ByteSize)(synMem).HumanReadable())
	return b.String()
}

//////////////////////////////////////////////////////////////////////////////////////
//  Weights File

// SaveWtsJSON saves network weights to a JSON-formatted file.
// If filename has .gz extension, then file is gzip compressed.
func (nt *NetworkBase) SaveWtsJSON(filename gi.FileName) error {
	fp, err := os.Create(string(filename))
	if err != nil {
		log.Println(err)
		return err
	}
	defer fp.Close()
	ext := filepath.Ext(string(filename))
	if ext == ".gz" {
		gzr := gzip.NewWriter(fp)
		defer gzr.Close()
		nt.WriteWtsJSON(gzr)
	} else {
		nt.WriteWtsJSON(fp)
	}
	return nil
}

// OpenWtsJSON opens network weights from a JSON-formatted file.
// If filename has .gz extension, then file is gzip uncompressed.
func (nt *NetworkBase) OpenWtsJSON(filename gi.FileName) error {
	fp, err := os.Open(string(filename))
	if err != nil {
		log.Println(err)
		return err
	}
	defer fp.Close()
	ext := filepath.Ext(string(filename))
	if ext == ".gz" {
		gzr, err := gzip.NewReader(fp)
		if err != nil {
			log.Println(err)
			return err
		}
		defer gzr.Close()
		return nt.ReadWtsJSON(gzr)
	}
	return nt.ReadWtsJSON(fp)
}

// WriteWtsJSON writes the weights of all projections, grouped by receiving
// population, in the emergent weights JSON format.
func (nt *NetworkBase) WriteWtsJSON(w io.Writer) {
	depth := 0
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Network\": %q,\n", nt.Nm)))
	w.Write(indent.TabBytes(depth))
	nl := len(nt.Pops)
	if nl == 0 {
		w.Write([]byte("\"Layers\": null\n"))
	} else {
		w.Write([]byte("\"Layers\": [\n"))
		depth++
		for li, ps := range nt.Pops {
			nt.writePopWtsJSON(ps, w, depth)
			if li == nl-1 {
				w.Write([]byte("\n"))
			} else {
				w.Write([]byte(",\n"))
			}
		}
		depth--
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("]\n"))
	}
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("}\n"))
}

func (nt *NetworkBase) writePopWtsJSON(ps *Population, w io.Writer, depth int) {
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Layer\": %q,\n", ps.Nm)))
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("\"MetaData\": {\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Model\": %q,\n", ps.Model)))
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"St\": \"%d\"\n", ps.St)))
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("},\n"))
	w.Write(indent.TabBytes(depth))
	np := len(ps.RcvPrjns)
	if np == 0 {
		w.Write([]byte("\"Prjns\": null\n"))
	} else {
		w.Write([]byte("\"Prjns\": [\n"))
		depth++
		for pi, pj := range ps.RcvPrjns {
			pj.WriteWtsJSON(w, depth)
			if pi == np-1 {
				w.Write([]byte("\n"))
			} else {
				w.Write([]byte(",\n"))
			}
		}
		depth--
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("]\n"))
	}
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("}"))
}

// ReadWtsJSON reads network weights in the emergent weights JSON format.
// Reads entire file into a temporary weights.Network structure that is
// then applied with SetWts.
func (nt *NetworkBase) ReadWtsJSON(r io.Reader) error {
	nw, err := weights.NetReadJSON(r)
	if err != nil {
		return err // note: already logged
	}
	err = nt.SetWts(nw)
	if err != nil {
		log.Println(err)
	}
	return err
}

// SetWts sets the weights for this network from weights.Network decoded values.
// Projections are matched by receiving population, sending population and name.
func (nt *NetworkBase) SetWts(nw *weights.Network) error {
	var err error
	if nw.MetaData != nil {
		if nt.MetaData == nil {
			nt.MetaData = nw.MetaData
		} else {
			for mk, mv := range nw.MetaData {
				nt.MetaData[mk] = mv
			}
		}
	}
	for li := range nw.Layers {
		lw := &nw.Layers[li]
		ps, er := nt.PopByNameTry(lw.Layer)
		if er != nil {
			err = er
			continue
		}
		for pi := range lw.Prjns {
			pw := &lw.Prjns[pi]
			pj := recvPrjnFrom(ps, pw)
			if pj == nil {
				err = fmt.Errorf("Network SetWts: %v: projection from: %v not found", ps.Nm, pw.From)
				continue
			}
			if er := pj.SetWts(pw); er != nil {
				err = er
			}
		}
	}
	return err
}

func recvPrjnFrom(ps *Population, pw *weights.Prjn) *Prjn {
	nm := pw.MetaData["Name"]
	for _, pj := range ps.RcvPrjns {
		if pj.Send.Nm != pw.From {
			continue
		}
		if nm == "" || nm == pj.Nm {
			return pj
		}
	}
	return nil
}
