// Package windowing trims a persisted chat transcript to an estimated size
// budget before it is rendered as the previous-conversation summary.
package windowing

import "github.com/petasbytes/turnflow/memory"

// GroupKind denotes the atomic unit kept or dropped as a whole.
type GroupKind int

const (
	GroupSingleton GroupKind = iota
	GroupExchange
)

// Group describes a contiguous span of messages [Start, End).
type Group struct {
	Kind  GroupKind
	Start int // inclusive
	End   int // exclusive
}

// GroupExchanges splits msgs into exchanges: a user message directly followed
// by an assistant message. Anything else (a dangling user turn left by a
// failed run, an assistant turn without a question) is a singleton.
func GroupExchanges(msgs []memory.Message) []Group {
	groups := make([]Group, 0, len(msgs)/2+1)
	for i := 0; i < len(msgs); {
		if msgs[i].Role == memory.RoleUser && i+1 < len(msgs) && msgs[i+1].Role == memory.RoleAssistant {
			groups = append(groups, Group{Kind: GroupExchange, Start: i, End: i + 2})
			i += 2
			continue
		}
		groups = append(groups, Group{Kind: GroupSingleton, Start: i, End: i + 1})
		i++
	}
	return groups
}
