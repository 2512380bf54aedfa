// Package room describes the AV equipment inventory of a single room.
//
// A Room lists the sources (cameras, laptops, media players), destinations
// (displays, projectors, recorders), matrix switchers and the tie-line cables
// between matrices. It is loaded once at startup from the file named by
// room.topology_file and is read-only afterwards.
//
// Example file:
//
//	room:
//	  id: boardroom
//	  name: Boardroom
//	matrices:
//	  - id: MX1
//	    inputs: 4
//	    outputs: 2
//	    driver: {type: mqtt, address: mx1}
//	sources:
//	  - {id: CAM1, label: Camera 1, matrix: MX1, input: 1}
//	destinations:
//	  - {id: DISP1, label: Display 1, matrix: MX1, output: 1}
//	tie_lines:
//	  - {start: MX1.OUT.2, end: MX2.IN.1}
//
// JSON files are accepted as well, since YAML is a superset of JSON.
//
// Validation only rejects structural problems (empty or duplicate ids, bad
// port counts, unknown driver types). A source wired to a matrix that does
// not exist is allowed through: the topology builder logs it and the source
// is simply unreachable.
package room
