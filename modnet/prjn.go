// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modnet

import (
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/emer/emergent/prjn"
	"github.com/emer/emergent/weights"
	"github.com/emer/etable/etensor"
	"github.com/goki/ki/indent"
)

// Prjn is a projection: the set of synapses made by one Connect call between
// a range of sending nodes and a range of receiving nodes, all using the
// same synapse model.  Synapses are stored in sending order, and indexed
// from both the sending and receiving side as in other emergent networks.
type Prjn struct {
	Nm     string       `desc:"name of the projection -- sending and receiving population names"`
	Cls    string       `desc:"additional class names for params styling"`
	Send   *Population  `desc:"sending population"`
	Recv   *Population  `desc:"receiving population"`
	SendSt int          `desc:"index within Send of the first sending node"`
	SendN  int          `desc:"number of sending nodes"`
	RecvSt int          `desc:"index within Recv of the first receiving node"`
	RecvN  int          `desc:"number of receiving nodes"`
	Rule   string       `desc:"connection rule used: all_to_all, one_to_one, pairwise_bernoulli"`
	Pat    prjn.Pattern `view:"-" desc:"connectivity pattern implementing the rule"`
	Model  SynModel     `view:"-" desc:"synapse model shared by all synapses in this projection"`

	SConN     []int32   `view:"-" desc:"number of sending connections for each sending node"`
	SConIdxSt []int32   `view:"-" desc:"starting index into SConIdx and Syns for each sending node"`
	SConIdx   []int32   `view:"-" desc:"index of receiving node for each synapse, in sending order"`
	RConN     []int32   `view:"-" desc:"number of receiving connections for each receiving node"`
	RConIdxSt []int32   `view:"-" desc:"starting index into RConIdx and RSynIdx for each receiving node"`
	RConIdx   []int32   `view:"-" desc:"index of sending node for each connection, in receiving order"`
	RSynIdx   []int32   `view:"-" desc:"index into Syns for each connection, in receiving order"`
	Syns      []Synapse `desc:"synapses, in sending order -- one-to-one with SConIdx"`
}

func (pj *Prjn) TypeName() string { return "Prjn" }
func (pj *Prjn) Class() string    { return pj.Model.Name() + " " + pj.Cls }
func (pj *Prjn) Name() string     { return pj.Nm }

func (pj *Prjn) String() string {
	return fmt.Sprintf("%s: %v -> %v (%s, %s: %d syns)", pj.Nm, pj.SendColl(), pj.RecvColl(), pj.Rule, pj.Model.Name(), len(pj.Syns))
}

// SendColl returns the sending nodes
func (pj *Prjn) SendColl() NodeCollection {
	return NodeCollection{St: pj.Send.St + pj.SendSt, N: pj.SendN}
}

// RecvColl returns the receiving nodes
func (pj *Prjn) RecvColl() NodeCollection {
	return NodeCollection{St: pj.Recv.St + pj.RecvSt, N: pj.RecvN}
}

// SendGID returns the global id of sending index si
func (pj *Prjn) SendGID(si int) int { return pj.Send.St + pj.SendSt + si }

// RecvGID returns the global id of receiving index ri
func (pj *Prjn) RecvGID(ri int) int { return pj.Recv.St + pj.RecvSt + ri }

// SendIdx returns the sending index of gid, or -1 if not a sender in this projection
func (pj *Prjn) SendIdx(gid int) int {
	si := gid - (pj.Send.St + pj.SendSt)
	if si < 0 || si >= pj.SendN {
		return -1
	}
	return si
}

// BuildStru builds the connection indexes from the pattern, and allocates
// synapses initialized from the model defaults.
func (pj *Prjn) BuildStru() error {
	var ssh, rsh etensor.Shape
	ssh.SetShape([]int{pj.SendN}, nil, nil)
	rsh.SetShape([]int{pj.RecvN}, nil, nil)
	same := pj.Send == pj.Recv && pj.SendSt == pj.RecvSt && pj.SendN == pj.RecvN
	sendn, recvn, cons := pj.Pat.Connect(&ssh, &rsh, same)
	slen := pj.SendN
	rlen := pj.RecvN
	tcons := setNIdxSt(&pj.SConN, &pj.SConIdxSt, sendn)
	tconr := setNIdxSt(&pj.RConN, &pj.RConIdxSt, recvn)
	if tconr != tcons {
		return fmt.Errorf("%v programmer error: total recv cons %v != total send cons %v", pj.String(), tconr, tcons)
	}
	pj.RConIdx = make([]int32, tconr)
	pj.RSynIdx = make([]int32, tconr)
	pj.SConIdx = make([]int32, tcons)
	pj.Syns = make([]Synapse, tcons)

	sconN := make([]int32, slen)

	cbits := cons.Values
	for ri := 0; ri < rlen; ri++ {
		rbi := ri * slen
		rtcn := pj.RConN[ri]
		rst := pj.RConIdxSt[ri]
		rci := int32(0)
		for si := 0; si < slen; si++ {
			if !cbits.Index(rbi + si) {
				continue
			}
			sst := pj.SConIdxSt[si]
			if rci >= rtcn {
				log.Printf("%v programmer error: recv target total con number: %v exceeded at recv idx: %v, send idx: %v\n", pj.Nm, rtcn, ri, si)
				break
			}
			pj.RConIdx[rst+rci] = int32(si)

			sci := sconN[si]
			stcn := pj.SConN[si]
			if sci >= stcn {
				log.Printf("%v programmer error: send target total con number: %v exceeded at recv idx: %v, send idx: %v\n", pj.Nm, stcn, ri, si)
				break
			}
			pj.SConIdx[sst+sci] = int32(ri)
			pj.RSynIdx[rst+rci] = sst + sci
			(sconN[si])++
			rci++
		}
	}
	for i := range pj.Syns {
		pj.Model.InitSyn(&pj.Syns[i])
	}
	return nil
}

// setNIdxSt sets the *ConN and *ConIdxSt values given n tensor from Pat.
// Returns total number of connections for this direction.
func setNIdxSt(n *[]int32, idxst *[]int32, tn *etensor.Int32) int32 {
	ln := tn.Len()
	tnv := tn.Values
	*n = make([]int32, ln)
	*idxst = make([]int32, ln)
	idx := int32(0)
	for i := 0; i < ln; i++ {
		nv := tnv[i]
		(*n)[i] = nv
		(*idxst)[i] = idx
		idx += nv
	}
	return idx
}

// SynIdx returns the index of the synapse from sending index si to
// receiving index ri, or -1 if they are not connected
func (pj *Prjn) SynIdx(si, ri int) int {
	if si < 0 || si >= len(pj.SConN) {
		return -1
	}
	nc := int(pj.SConN[si])
	st := int(pj.SConIdxSt[si])
	for ci := 0; ci < nc; ci++ {
		if int(pj.SConIdx[st+ci]) == ri {
			return st + ci
		}
	}
	return -1
}

// Syn returns the synapse between given sending and receiving indexes, or nil
func (pj *Prjn) Syn(si, ri int) *Synapse {
	idx := pj.SynIdx(si, ri)
	if idx < 0 {
		return nil
	}
	return &pj.Syns[idx]
}

// SynVal returns the value of given variable name on the synapse
// between given send, recv unit indexes (1D, flat indexes)
func (pj *Prjn) SynVal(varNm string, si, ri int) (float32, error) {
	sy := pj.Syn(si, ri)
	if sy == nil {
		return 0, fmt.Errorf("Prjn SynVal: %v: no synapse from send: %v to recv: %v", pj.Nm, si, ri)
	}
	return sy.VarByName(varNm)
}

// SetSynVal sets value of given variable name on the synapse
// between given send, recv unit indexes (1D, flat indexes)
func (pj *Prjn) SetSynVal(varNm string, si, ri int, val float32) error {
	sy := pj.Syn(si, ri)
	if sy == nil {
		return fmt.Errorf("Prjn SetSynVal: %v: no synapse from send: %v to recv: %v", pj.Nm, si, ri)
	}
	return sy.SetVarByName(varNm, val)
}

// MaxDelay returns the largest delay in steps over all synapses, 0 if none
func (pj *Prjn) MaxDelay() int32 {
	mx := int32(0)
	for i := range pj.Syns {
		if d := pj.Syns[i].DSteps; d > mx {
			mx = d
		}
	}
	return mx
}

// MinDelay returns the smallest delay in steps over all synapses, 0 if none
func (pj *Prjn) MinDelay() int32 {
	mn := int32(0)
	for i := range pj.Syns {
		if d := pj.Syns[i].DSteps; mn == 0 || d < mn {
			mn = d
		}
	}
	return mn
}

//////////////////////////////////////////////////////////////////////////////////////
//  Weights File

// WriteWtsJSON writes the weights from this projection from the receiver-side perspective
// in a JSON text format.  We build in the indentation logic to make it much faster and
// more efficient.
func (pj *Prjn) WriteWtsJSON(w io.Writer, depth int) {
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("{\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"From\": %q,\n", pj.Send.Nm)))
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("\"MetaData\": {\n"))
	depth++
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Name\": %q,\n", pj.Nm)))
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Model\": %q,\n", pj.Model.Name())))
	w.Write(indent.TabBytes(depth))
	w.Write([]byte(fmt.Sprintf("\"Rule\": %q\n", pj.Rule)))
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("},\n"))
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("\"Rs\": [\n"))
	depth++
	nr := pj.RecvN
	for ri := 0; ri < nr; ri++ {
		nc := int(pj.RConN[ri])
		st := int(pj.RConIdxSt[ri])
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("{\n"))
		depth++
		w.Write(indent.TabBytes(depth))
		w.Write([]byte(fmt.Sprintf("\"Ri\": %v,\n", ri)))
		w.Write(indent.TabBytes(depth))
		w.Write([]byte(fmt.Sprintf("\"N\": %v,\n", nc)))
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("\"Si\": [ "))
		for ci := 0; ci < nc; ci++ {
			w.Write([]byte(fmt.Sprintf("%v", pj.RConIdx[st+ci])))
			if ci == nc-1 {
				w.Write([]byte(" "))
			} else {
				w.Write([]byte(", "))
			}
		}
		w.Write([]byte("],\n"))
		w.Write(indent.TabBytes(depth))
		w.Write([]byte("\"Wt\": [ "))
		for ci := 0; ci < nc; ci++ {
			sy := &pj.Syns[pj.RSynIdx[st+ci]]
			w.Write([]byte(strconv.FormatFloat(float64(sy.Wt), 'g', weights.Prec, 32)))
			if ci == nc-1 {
				w.Write([]byte(" "))
			} else {
				w.Write([]byte(", "))
			}
		}
		w.Write([]byte("]\n"))
		depth--
		w.Write(indent.TabBytes(depth))
		if ri == nr-1 {
			w.Write([]byte("}\n"))
		} else {
			w.Write([]byte("},\n"))
		}
	}
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("]\n"))
	depth--
	w.Write(indent.TabBytes(depth))
	w.Write([]byte("}")) // left unterminated: caller adds , or \n
}

// SetWts sets the weights for this projection from weights.Prjn decoded values.
// Modulated synapses recompute their weight from initial_weight at the
// next volume transmitter delivery.
func (pj *Prjn) SetWts(pw *weights.Prjn) error {
	var err error
	for i := range pw.Rs {
		pr := &pw.Rs[i]
		for si := range pr.Si {
			if si >= len(pr.Wt) {
				break
			}
			er := pj.SetSynVal("Wt", pr.Si[si], pr.Ri, pr.Wt[si])
			if er != nil {
				err = er
			}
		}
	}
	return err
}
