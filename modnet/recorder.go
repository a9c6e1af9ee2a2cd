// Copyright (c) 2026, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modnet

import (
	"fmt"
	"io"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
	"github.com/goki/gi/gi"
)

// ConfigEventsTable configures a table for recorded spikes: one row per spike
// with the recorder, sender and time.
func ConfigEventsTable(dt *etable.Table) {
	dt.SetMetaData("name", "SpikeEvents")
	dt.SetMetaData("desc", "Spikes recorded by spike recorders")
	dt.SetMetaData("read-only", "true")
	sch := etable.Schema{
		{"Recorder", etensor.INT64, nil, nil},
		{"Sender", etensor.INT64, nil, nil},
		{"Time", etensor.FLOAT64, nil, nil},
	}
	dt.SetFromSchema(sch, 0)
}

// EventsTable returns the spikes recorded by all recorders in the
// collection, in recorder order then recording order.
func (nt *Network) EventsTable(rec NodeCollection) (*etable.Table, error) {
	ps, err := nt.CollPop(rec)
	if err != nil {
		return nil, err
	}
	if ps.Kind != RecorderNode {
		return nil, fmt.Errorf("Network EventsTable: %v is not a spike recorder population", ps.Nm)
	}
	n := 0
	for _, gid := range rec.GIDs() {
		n += len(nt.Nodes[gid-1].Events)
	}
	dt := &etable.Table{}
	ConfigEventsTable(dt)
	dt.SetNumRows(n)
	row := 0
	for _, gid := range rec.GIDs() {
		for _, ev := range nt.Nodes[gid-1].Events {
			dt.SetCellFloat("Recorder", row, float64(gid))
			dt.SetCellFloat("Sender", row, float64(ev.Sender))
			dt.SetCellFloat("Time", row, ev.Time)
			row++
		}
	}
	return dt, nil
}

// WriteEventsCSV writes the recorded spikes of the collection as CSV with headers
func (nt *Network) WriteEventsCSV(rec NodeCollection, w io.Writer) error {
	dt, err := nt.EventsTable(rec)
	if err != nil {
		return err
	}
	return dt.WriteCSV(w, etable.Comma, etable.Headers)
}

// SaveEventsCSV saves the recorded spikes of the collection to a CSV file with headers
func (nt *Network) SaveEventsCSV(rec NodeCollection, filename gi.FileName) error {
	dt, err := nt.EventsTable(rec)
	if err != nil {
		return err
	}
	return dt.SaveCSV(filename, etable.Comma, etable.Headers)
}

// ResetEvents clears the recorded spikes of all recorders in the collection
func (nt *Network) ResetEvents(rec NodeCollection) {
	for _, gid := range rec.GIDs() {
		if nd := nt.Node(gid); nd != nil && nd.Kind == RecorderNode {
			nd.Events = nil
			nd.NSpikes = 0
		}
	}
}
