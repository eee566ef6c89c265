package windowing

import (
	"unicode/utf8"

	"github.com/petasbytes/turnflow/memory"
)

// Counter estimates the cost of transcript messages.
type Counter interface {
	CountMessage(m memory.Message) int
	CountGroup(g Group, all []memory.Message) int
}

// HeuristicCounter counts runes of the message text plus a fixed overhead for
// the role label the summary adds.
type HeuristicCounter struct{}

// Changing this requires updating the counter tests.
const messageOverhead = 4

func (HeuristicCounter) CountMessage(m memory.Message) int {
	return utf8.RuneCountInString(m.Text) + messageOverhead
}

func (h HeuristicCounter) CountGroup(g Group, all []memory.Message) int {
	total := 0
	for i := g.Start; i < g.End && i < len(all); i++ {
		total += h.CountMessage(all[i])
	}
	return total
}
