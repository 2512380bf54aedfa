package routing

import (
	"fmt"

	"github.com/nerrad567/gray-logic-av/internal/topology"
)

// Command is one crosspoint change on one matrix.
type Command struct {
	Router string
	Input  int
	Output int
}

// planCommands derives the switcher commands for a resolved path.
//
// Only matrix vertices are considered. An IN port remembers (matrix, input);
// the next OUT port on the same matrix completes a Command. A path through
// two tie-lined matrices yields two commands, in path order.
//
// If a matrix key cannot be decomposed, the commands planned so far are
// returned together with an error wrapping ErrMalformedPath. The caller
// still issues them: earlier hops are not rolled back.
func planCommands(path []string, kindOf func(key string) topology.Kind) ([]Command, error) {
	var (
		cmds    []Command
		pending *topology.PortRef
	)

	for _, key := range path {
		if kindOf(key) != topology.KindMatrix {
			continue
		}

		ref, err := topology.ParsePortKey(key)
		if err != nil {
			return cmds, fmt.Errorf("%w: %w", ErrMalformedPath, err)
		}

		switch ref.Direction {
		case topology.DirectionIn:
			pending = &ref
		case topology.DirectionOut:
			if pending != nil && pending.Matrix == ref.Matrix {
				cmds = append(cmds, Command{Router: ref.Matrix, Input: pending.Port, Output: ref.Port})
				pending = nil
			}
		}
	}

	return cmds, nil
}
