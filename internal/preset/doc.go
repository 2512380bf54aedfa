// Package preset recalls named sets of routes.
//
// A preset ("Presentation", "Video Conference") is declared in the room
// file as an ordered list of steps, each routing one source to one
// destination through the dispatcher.
//
//	┌─────────────────────────────────────────────┐
//	│               Engine (engine.go)            │
//	│  ┌──────────────┐                           │
//	│  │   Registry   │  presets from room file   │
//	│  └──────────────┘                           │
//	│  1. Look up preset (copy)                   │
//	│  2. Group steps by parallel flag            │
//	│  3. Run groups: goroutines + WaitGroup      │
//	│  4. MakeRoute per step via the dispatcher   │
//	│  5. Notify listeners with the Execution     │
//	└─────────────────────────────────────────────┘
//
// Groups run in order. Steps inside a group start together, so their
// delays overlap; the dispatcher still serialises the hardware commands.
// A failing step stops the recall after its group unless the step sets
// continue_on_error.
//
// Registry and Engine are safe for concurrent use.
package preset
