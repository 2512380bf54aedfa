// Package routing turns "send source X to destination Y" into matrix
// switcher commands and keeps track of what every destination is showing.
//
// # Architecture
//
//	 MakeRoute("CAM1", "PROJ1")
//	        │
//	        ▼
//	 topology.FindPath ──► [CAM1 MX1.IN.1 MX1.OUT.2 MX2.IN.1 MX2.OUT.1 PROJ1]
//	        │
//	        ▼
//	 planCommands ───────► MX1: route 1→2, MX2: route 1→1
//	        │
//	        ▼
//	 Switcher.RouteInput (one call per matrix hop, in path order)
//	        │
//	        ▼
//	 route cache + active chain updated, Listeners notified
//
// Switchers also report routes changed at the panel or by another control
// system. The Dispatcher maps those reports back to a destination and source
// through the room inventory, following tie-lines where needed, and updates
// the cache. Reports it cannot resolve clear the destination to NoRoute
// rather than leave stale data.
//
// # Failure Handling
//
// Unknown IDs, unreachable destinations and locked destinations fail before
// any hardware is touched and leave state unchanged. A malformed port key or
// a switcher error aborts the remaining commands of that route. Hops already
// switched stay switched: routing across several matrices is not atomic.
//
// # Thread Safety
//
// All Dispatcher methods are safe for concurrent use. Route requests are
// executed one at a time. Hardware feedback may arrive on any goroutine,
// including from inside a RouteInput call. Listeners are called without any
// dispatcher lock held.
package routing
