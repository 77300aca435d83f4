// Agent history: a bounded record of the actions an agent has carried out,
// surfaced by the API for display.
package agents

import (
	"sort"
	"time"
)

const MaxHistory = 32

// HistoryEntry records one action the agent started or finished.
type HistoryEntry struct {
	Tick    uint64        `json:"tick"`
	At      time.Duration `json:"at"`
	Action  ActionKind    `json:"action"`
	Target  *AgentID      `json:"target,omitempty"`
	Outcome string        `json:"outcome"` // "started", "completed", "aborted"
}

// AddHistory appends an entry to the agent's history. When full, the
// oldest entry is dropped.
func AddHistory(a *Agent, e HistoryEntry) {
	if len(a.History) < MaxHistory {
		a.History = append(a.History, e)
		return
	}
	copy(a.History, a.History[1:])
	a.History[len(a.History)-1] = e
}

// RecentHistory returns the most recent N entries, newest first.
func RecentHistory(a *Agent, count int) []HistoryEntry {
	if len(a.History) == 0 {
		return nil
	}

	sorted := make([]HistoryEntry, len(a.History))
	copy(sorted, a.History)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At > sorted[j].At
	})

	if count > len(sorted) {
		count = len(sorted)
	}
	return sorted[:count]
}

// CountOutcomes tallies history entries by outcome.
func CountOutcomes(a *Agent) map[string]int {
	out := make(map[string]int)
	for _, e := range a.History {
		out[e.Outcome]++
	}
	return out
}
