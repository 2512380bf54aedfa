// Package topology models the signal paths of a room as an undirected graph
// and finds the shortest hop path between two points in it.
//
// # Architecture
//
//	  CAM1 ──── MX1.IN.1 ─┬─ MX1.OUT.1 ──── DISP1
//	  PC1  ──── MX1.IN.2 ─┤
//	            ...       └─ MX1.OUT.2 ════ MX2.IN.1 ── MX2.OUT.1 ── PROJ1
//	                                   tie-line
//
// Every matrix input and output port becomes a vertex keyed "{matrix}.IN.{n}"
// or "{matrix}.OUT.{n}". Sources and destinations become leaf vertices keyed
// by their configured ID. Within one matrix every input is joined to every
// output (crossbar). Tie-lines join ports of different matrices.
//
// # Lifecycle
//
// Build runs once at startup. The resulting Topology and Graph are never
// modified afterwards, so concurrent readers need no locking. FindPath keeps
// all search state on its own stack and may be called from many goroutines.
//
// Key comparison is exact and case-sensitive: "cam1" and "CAM1" are
// different vertices.
package topology
