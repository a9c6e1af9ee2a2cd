// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modnet

import (
	"sort"
	"sync"
)

// Module is an extension that adds models to a network when installed
// with Network.Install.  Modules register themselves by name, typically
// in an init function of their package.
type Module interface {
	// Name is the name the module is installed by
	Name() string

	// Init adds the module's models to the network
	Init(nt *Network) error
}

var (
	modMu   sync.RWMutex
	modules = map[string]Module{}
)

// RegisterModule makes a module available to Network.Install.
// Registering the same name twice replaces the earlier module.
func RegisterModule(md Module) {
	modMu.Lock()
	modules[md.Name()] = md
	modMu.Unlock()
}

// LookupModule returns the module registered under name
func LookupModule(name string) (Module, bool) {
	modMu.RLock()
	defer modMu.RUnlock()
	md, ok := modules[name]
	return md, ok
}

// ModuleNames returns the sorted names of all registered modules
func ModuleNames() []string {
	modMu.RLock()
	defer modMu.RUnlock()
	nms := make([]string, 0, len(modules))
	for nm := range modules {
		nms = append(nms, nm)
	}
	sort.Strings(nms)
	return nms
}
