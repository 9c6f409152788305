package engine

// RoundRobinPicker breaks ties among equally-scored candidates, cycling
// through workers sharing a role so repeated ties don't always favor the
// same worker. State is keyed by role and persists across every shift placed
// within one Build call.
type RoundRobinPicker struct {
	cursor map[string]int
}

// NewRoundRobinPicker returns a picker with empty per-role state.
func NewRoundRobinPicker() *RoundRobinPicker {
	return &RoundRobinPicker{cursor: make(map[string]int)}
}

// Pick selects one worker ID from tied, among candidates that scored equally
// (the caller has already narrowed ties down to this set, in the stable
// order eligibility produced them). role scopes the cursor.
func (p *RoundRobinPicker) Pick(role string, tied []string) string {
	if len(tied) == 0 {
		return ""
	}
	i := p.cursor[role] % len(tied)
	p.cursor[role] = p.cursor[role] + 1
	return tied[i]
}
