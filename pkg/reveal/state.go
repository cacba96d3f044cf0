package reveal

// State is a point-in-time copy of the reveal tree.
type State struct {
	Triggers []TriggerState `json:"triggers"`
}

// TriggerState describes one bound radio group.
type TriggerState struct {
	Field   string       `json:"field"`
	Value   string       `json:"value,omitempty"`
	Mounted []MountState `json:"mounted,omitempty"`
}

// MountState describes a mounted dependent and the triggers rendered inside it.
type MountState struct {
	Field    string         `json:"field"`
	Triggers []TriggerState `json:"triggers,omitempty"`
}

// MountedIDs returns every mounted dependent id, depth-first.
func (s State) MountedIDs() []string {
	var out []string
	var walk func([]TriggerState)
	walk = func(triggers []TriggerState) {
		for _, t := range triggers {
			for _, m := range t.Mounted {
				out = append(out, m.Field)
				walk(m.Triggers)
			}
		}
	}
	walk(s.Triggers)
	return out
}

// Snapshot copies the current reveal tree. Triggers are listed in binding order
// and mounts in declaration order.
func (c *Controller) Snapshot() State {
	return State{Triggers: snapshotTriggers(c.roots)}
}

func snapshotTriggers(triggers []*trigger) []TriggerState {
	if len(triggers) == 0 {
		return nil
	}
	out := make([]TriggerState, 0, len(triggers))
	for _, t := range triggers {
		state := TriggerState{Field: t.field.ID, Value: t.value}
		for _, dependent := range t.field.DependentQuestions {
			m, ok := t.mounted[dependent.ID]
			if !ok {
				continue
			}
			state.Mounted = append(state.Mounted, MountState{
				Field:    m.field.ID,
				Triggers: snapshotTriggers(m.triggers),
			})
		}
		out = append(out, state)
	}
	return out
}
