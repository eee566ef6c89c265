package windowing

import "github.com/petasbytes/turnflow/memory"

// Stats summarizes one window preparation.
type Stats struct {
	Total            int // estimated cost of the included groups
	Budget           int
	IncludedGroups   int
	SkippedGroups    int
	OverBudgetNewest bool // the newest group alone exceeds Budget
}

// PrepareWindow returns the newest suffix of msgs that fits within budget
// without splitting an exchange. Order is preserved. When the newest group
// alone does not fit, or budget <= 0, the window is empty.
func PrepareWindow(msgs []memory.Message, budget int, c Counter) ([]memory.Message, Stats) {
	if len(msgs) == 0 {
		return nil, Stats{Budget: budget}
	}
	groups := GroupExchanges(msgs)
	if budget <= 0 {
		return nil, Stats{Budget: budget, SkippedGroups: len(groups), OverBudgetNewest: true}
	}

	total, included := 0, 0
	start := len(groups)
	for gi := len(groups) - 1; gi >= 0; gi-- {
		cost := c.CountGroup(groups[gi], msgs)
		if total+cost > budget {
			break
		}
		total += cost
		included++
		start = gi
	}

	stats := Stats{
		Total:          total,
		Budget:         budget,
		IncludedGroups: included,
		SkippedGroups:  len(groups) - included,
	}
	if included == 0 {
		stats.OverBudgetNewest = true
		return nil, stats
	}
	return msgs[groups[start].Start:], stats
}
