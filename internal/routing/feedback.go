package routing

import (
	"time"

	"github.com/nerrad567/gray-logic-av/internal/room"
	"github.com/nerrad567/gray-logic-av/internal/topology"
)

// RouteChanged handles a switcher reporting that output now carries a
// different input. It implements EventHandler.
//
// Every destination fed by that output is re-resolved: directly wired
// destinations, and destinations on downstream matrices that currently
// select the tie-line the output feeds. Each destination's source is traced
// back through CurrentSource, across tie-lines, until a configured source
// is found. Destinations that cannot be traced are set to NoRoute.
func (d *Dispatcher) RouteChanged(deviceID string, output int) {
	if _, ok := d.switchers[deviceID]; !ok {
		d.logger.Error("feedback from unknown router dropped", "router", deviceID, "output", output)
		d.recorder.RecordFeedback(FeedbackUnknownDevice)
		return
	}

	affected := d.downstreamDestinations(deviceID, output)
	if len(affected) == 0 {
		if _, tie := d.tieDown[topology.MatrixOutputKey(deviceID, output)]; tie {
			d.logger.Debug("feedback on tie-line output with no routed destinations", "router", deviceID, "output", output)
		} else {
			d.logger.Error("feedback for output with no destination", "router", deviceID, "output", output)
		}
		d.recorder.RecordFeedback(FeedbackUnmapped)
		return
	}

	for _, dst := range affected {
		d.reconcile(dst)
	}
}

// OnlineChanged forwards a switcher connection change to listeners.
// It implements EventHandler.
func (d *Dispatcher) OnlineChanged(deviceID string, online bool) {
	if _, ok := d.switchers[deviceID]; !ok {
		d.logger.Warn("connectivity change from unknown router", "router", deviceID, "online", online)
	}

	d.recorder.SetRouterOnline(deviceID, online)
	if online {
		d.logger.Info("router online", "router", deviceID)
	} else {
		d.logger.Warn("router offline", "router", deviceID)
	}

	d.notifyConnectivity(ConnectivityEvent{
		RouterID:  deviceID,
		Online:    online,
		Timestamp: time.Now(),
	})
}

// reconcile re-resolves one destination from hardware state and updates
// the cache. Listeners hear about it only if the source changed and the
// destination is not being switched by MakeRoute, which reports it instead.
func (d *Dispatcher) reconcile(dst room.Destination) {
	src, chain, ok := d.traceSource(dst)
	if !ok {
		d.logger.Error("unresolvable feedback, clearing route", "destination", dst.ID, "matrix", dst.Matrix, "output", dst.Output)
		src, chain = NoRoute, nil
		d.recorder.RecordFeedback(FeedbackCleared)
	} else {
		d.recorder.RecordFeedback(FeedbackResolved)
	}

	d.mu.Lock()
	prev := d.routes[dst.ID]
	d.routes[dst.ID] = src
	if chain != nil {
		d.chains[dst.ID] = chain
	} else {
		delete(d.chains, dst.ID)
	}
	held := d.inflight == dst.ID && prev.ID != src.ID
	if held {
		d.held = true
	}
	d.mu.Unlock()

	if prev.ID == src.ID {
		d.logger.Debug("feedback confirms current route", "destination", dst.ID, "source", src.ID)
		return
	}
	if held {
		d.logger.Debug("feedback for route in progress", "destination", dst.ID, "source", src.ID)
		return
	}

	d.logger.Info("route changed by hardware", "destination", dst.ID, "source", src.ID, "previous", prev.ID)
	d.notifyRoute(RouteEvent{
		DestinationID: dst.ID,
		Source:        src,
		Origin:        OriginFeedback,
		Path:          append([]string(nil), chain...),
		Timestamp:     time.Now(),
	})
}

// traceSource walks upstream from a destination using each switcher's
// reported crosspoints. It returns the source and the chain from source
// to destination.
func (d *Dispatcher) traceSource(dst room.Destination) (room.Source, []string, bool) {
	reversed := []string{dst.ID}
	matrixID, output := dst.Matrix, dst.Output

	// Each hop crosses one matrix; more hops than matrices means a tie-line loop.
	for hop := 0; hop <= len(d.room.Matrices); hop++ {
		sw, ok := d.switchers[matrixID]
		if !ok {
			return room.Source{}, nil, false
		}
		input, ok := sw.CurrentSource(output)
		if !ok {
			return room.Source{}, nil, false
		}

		inKey := topology.MatrixInputKey(matrixID, input)
		reversed = append(reversed, topology.MatrixOutputKey(matrixID, output), inKey)

		if src, ok := d.room.SourceAt(matrixID, input); ok {
			reversed = append(reversed, src.ID)
			return src, reverse(reversed), true
		}

		upKey, ok := d.tieUp[inKey]
		if !ok {
			return room.Source{}, nil, false
		}
		ref, err := topology.ParsePortKey(upKey)
		if err != nil {
			return room.Source{}, nil, false
		}
		matrixID, output = ref.Matrix, ref.Port
	}

	return room.Source{}, nil, false
}

// downstreamDestinations lists destinations fed by output on matrixID,
// directly or through tie-lines selected on downstream matrices.
func (d *Dispatcher) downstreamDestinations(matrixID string, output int) []room.Destination {
	var found []room.Destination
	seen := make(map[string]bool)

	var walk func(matrixID string, output int)
	walk = func(matrixID string, output int) {
		outKey := topology.MatrixOutputKey(matrixID, output)
		if seen[outKey] {
			return
		}
		seen[outKey] = true

		found = append(found, d.room.DestinationsAt(matrixID, output)...)

		inKey, ok := d.tieDown[outKey]
		if !ok {
			return
		}
		ref, err := topology.ParsePortKey(inKey)
		if err != nil {
			return
		}
		m, ok := d.room.Matrix(ref.Matrix)
		sw, swOK := d.switchers[ref.Matrix]
		if !ok || !swOK {
			return
		}
		for out := 1; out <= m.Outputs; out++ {
			if in, ok := sw.CurrentSource(out); ok && in == ref.Port {
				walk(ref.Matrix, out)
			}
		}
	}

	walk(matrixID, output)
	return found
}

func reverse(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[len(keys)-1-i] = k
	}
	return out
}
