package rules

import "slices"

// Unreachable returns the ids of events that can never occur: events no age
// row draws (a zero weight or the NoRandom flag rules a row out) and no branch
// of a reachable event targets.
func (rs *RuleSet) Unreachable() []int {
	reached := make(map[int]bool, len(rs.events))
	var queue []int
	for _, entries := range rs.ages {
		for _, e := range entries {
			ev, ok := rs.events[e.EventID]
			if !ok || ev.NoRandom || e.Weight <= 0 || reached[e.EventID] {
				continue
			}
			reached[e.EventID] = true
			queue = append(queue, e.EventID)
		}
	}
	for len(queue) > 0 {
		ev := rs.events[queue[0]]
		queue = queue[1:]
		for _, b := range ev.Branches {
			if _, ok := rs.events[b.Target]; ok && !reached[b.Target] {
				reached[b.Target] = true
				queue = append(queue, b.Target)
			}
		}
	}

	var out []int
	for _, id := range rs.eventIDs {
		if !reached[id] {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}
