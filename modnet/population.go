// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modnet

import (
	"fmt"

	"github.com/emer/etable/etensor"
)

// Population is a group of nodes created together from one model, with
// contiguous global ids.  It is the unit of parameter styling: a params.Sheet
// selects populations by type ("Population"), class (model name plus any
// classes set with SetClass) and name.
type Population struct {
	Nm    string        `desc:"name of the population -- defaults to the model name plus index"`
	Cls   string        `desc:"additional class names for params styling, space separated"`
	Model string        `desc:"name of the model the nodes were created from"`
	Kind  NodeKinds     `desc:"kind of nodes in this population"`
	Index int           `desc:"index of this population in the network"`
	St    int           `desc:"global id of the first node"`
	N     int           `desc:"number of nodes"`
	Shp   etensor.Shape `desc:"shape of the population, used for connectivity patterns -- 1D of length N"`
	Pars  NodeParams    `desc:"parameters applied to all nodes by params styling -- starts at the model defaults"`

	SndPrjns []*Prjn `view:"-" desc:"projections sent from this population"`
	RcvPrjns []*Prjn `view:"-" desc:"projections received by this population"`
}

func (ps *Population) TypeName() string { return "Population" }
func (ps *Population) Class() string    { return ps.Model + " " + ps.Cls }
func (ps *Population) Name() string     { return ps.Nm }

// SetClass sets the params styling classes of this population
func (ps *Population) SetClass(cls string) *Population {
	ps.Cls = cls
	return ps
}

// Collection returns all nodes of the population as a NodeCollection
func (ps *Population) Collection() NodeCollection {
	return NodeCollection{St: ps.St, N: ps.N}
}

// Contains returns true if gid belongs to this population
func (ps *Population) Contains(gid int) bool {
	return gid >= ps.St && gid < ps.St+ps.N
}

func (ps *Population) String() string {
	return fmt.Sprintf("%s: %s [%d..%d]", ps.Nm, ps.Model, ps.St, ps.St+ps.N-1)
}

// NodeCollection is a handle to a contiguous range of nodes, returned by
// Network.Create.  Ranges never span populations.
type NodeCollection struct {
	St int `desc:"global id of the first node"`
	N  int `desc:"number of nodes"`
}

// Len returns the number of nodes
func (nc NodeCollection) Len() int { return nc.N }

// GID returns the global id of the i-th node in the collection
func (nc NodeCollection) GID(i int) int { return nc.St + i }

// GIDs returns all global ids in the collection
func (nc NodeCollection) GIDs() []int {
	gs := make([]int, nc.N)
	for i := range gs {
		gs[i] = nc.St + i
	}
	return gs
}

// Slice returns the sub-collection of nodes [st, ed)
func (nc NodeCollection) Slice(st, ed int) NodeCollection {
	if st < 0 {
		st = 0
	}
	if ed > nc.N {
		ed = nc.N
	}
	if ed < st {
		ed = st
	}
	return NodeCollection{St: nc.St + st, N: ed - st}
}

func (nc NodeCollection) String() string {
	if nc.N == 1 {
		return fmt.Sprintf("NodeCollection(%d)", nc.St)
	}
	return fmt.Sprintf("NodeCollection(%d..%d)", nc.St, nc.St+nc.N-1)
}
