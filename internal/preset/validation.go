package preset

import (
	"fmt"
	"time"

	"github.com/nerrad567/gray-logic-av/internal/room"
)

// CheckReferences returns a description of every step in p that cannot
// succeed against r: unknown sources or destinations, and a destination
// targeted twice within one parallel group (the last command would win
// at random).
//
// These are warnings, not errors. The step fails at recall time with a
// not-found route error, the same way a bad route request would.
func CheckReferences(p room.Preset, r *room.Room) []string {
	var problems []string

	for i, st := range p.Steps {
		if _, ok := r.Source(st.Input); !ok {
			problems = append(problems, fmt.Sprintf("step %d: unknown source %q", i, st.Input))
		}
		if _, ok := r.Destination(st.Output); !ok {
			problems = append(problems, fmt.Sprintf("step %d: unknown destination %q", i, st.Output))
		}
	}

	for _, group := range groupSteps(p.Steps) {
		seen := make(map[string]int, len(group))
		for _, st := range group {
			if first, dup := seen[st.Output]; dup {
				problems = append(problems, fmt.Sprintf(
					"step %d: destination %q already routed by parallel step %d", st.index, st.Output, first))
				continue
			}
			seen[st.Output] = st.index
		}
	}

	return problems
}

// recallTimeout is commandBudget plus the longest delay of every group.
// Delays inside a group overlap, groups run one after another.
func recallTimeout(steps []room.PresetStep) time.Duration {
	total := commandBudget
	for _, group := range groupSteps(steps) {
		longest := 0
		for _, st := range group {
			longest = max(longest, st.DelayMS)
		}
		total += time.Duration(longest) * time.Millisecond
	}
	return total
}

// indexedStep is a step with its position in the preset.
type indexedStep struct {
	room.PresetStep
	index int
}

// groupSteps splits steps into sequential groups based on the Parallel flag.
//
// The first step always starts a new group. Later steps with Parallel=true
// join the current group; Parallel=false starts a new one.
//
//	steps:  [A, B(parallel), C(parallel), D]
//	groups: [[A, B, C], [D]]
func groupSteps(steps []room.PresetStep) [][]indexedStep {
	if len(steps) == 0 {
		return nil
	}

	var groups [][]indexedStep
	current := []indexedStep{{PresetStep: steps[0], index: 0}}

	for i, st := range steps[1:] {
		s := indexedStep{PresetStep: st, index: i + 1}
		if st.Parallel {
			current = append(current, s)
		} else {
			groups = append(groups, current)
			current = []indexedStep{s}
		}
	}
	return append(groups, current)
}
