// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modnet

import (
	"github.com/emer/emergent/prjn"
	"github.com/emer/etable/etensor"
	"golang.org/x/exp/rand"
)

// Bernoulli is the pairwise_bernoulli connectivity pattern: each sending,
// receiving pair is connected independently with probability PCon.
type Bernoulli struct {
	PCon    float64 `min:"0" max:"1" desc:"probability of connection (0-1)"`
	SelfCon bool    `desc:"if true, and connecting a population to itself, then allow connections from a node to itself"`
	RndSeed uint64  `desc:"seed of the random source used by Connect, so a pattern always makes the same connections"`
}

// NewBernoulli returns a pattern connecting with probability p, using given seed
func NewBernoulli(p float64, seed uint64) *Bernoulli {
	return &Bernoulli{PCon: p, SelfCon: true, RndSeed: seed}
}

func (bp *Bernoulli) Name() string {
	return "Bernoulli"
}

func (bp *Bernoulli) Connect(send, recv *etensor.Shape, same bool) (sendn, recvn *etensor.Int32, cons *etensor.Bits) {
	sendn, recvn, cons = prjn.NewTensors(send, recv)
	slen := send.Len()
	rlen := recv.Len()
	rnd := rand.New(rand.NewSource(bp.RndSeed))
	noself := same && !bp.SelfCon
	for ri := 0; ri < rlen; ri++ {
		for si := 0; si < slen; si++ {
			if noself && si == ri {
				continue
			}
			if bp.PCon < 1 && rnd.Float64() >= bp.PCon {
				continue
			}
			cons.Values.Set(ri*slen+si, true)
			sendn.Values[si]++
			recvn.Values[ri]++
		}
	}
	return
}
