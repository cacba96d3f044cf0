package tui

import "fmt"

// State tracks collected answers keyed by field id. Field ids are unique
// across a flattened schema, so dependents share the same flat map.
type State struct {
	values map[string]any
	order  []string
}

// NewState seeds the state with prefilled answers. Prefilled answers are
// defaults only; they are not part of Values until prompted.
func NewState(prefill map[string]any) *State {
	return &State{values: cloneValues(prefill)}
}

// Values returns the answers collected so far, in a fresh map.
func (s *State) Values() map[string]any {
	if s == nil {
		return nil
	}
	out := make(map[string]any, len(s.order))
	for _, id := range s.order {
		out[id] = s.values[id]
	}
	return out
}

// Order lists answered field ids in prompt order.
func (s *State) Order() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// GetValue returns the answer or prefill for id.
func (s *State) GetValue(id string) (any, bool) {
	if s == nil {
		return nil, false
	}
	value, ok := s.values[id]
	return value, ok
}

// SetValue records the answer for id.
func (s *State) SetValue(id string, value any) error {
	if s == nil {
		return fmt.Errorf("tui: state is nil")
	}
	if id == "" {
		return fmt.Errorf("tui: field id is required")
	}
	if s.values == nil {
		s.values = make(map[string]any)
	}
	if !s.answered(id) {
		s.order = append(s.order, id)
	}
	s.values[id] = value
	return nil
}

// StringValue returns the answer or prefill for id rendered as text.
func (s *State) StringValue(id string) string {
	value, ok := s.GetValue(id)
	if !ok || value == nil {
		return ""
	}
	if text, isString := value.(string); isString {
		return text
	}
	return fmt.Sprint(value)
}

// StringsValue returns a multi-choice answer or prefill for id.
func (s *State) StringsValue(id string) []string {
	value, ok := s.GetValue(id)
	if !ok {
		return nil
	}
	switch typed := value.(type) {
	case []string:
		return append([]string(nil), typed...)
	case []any:
		out := make([]string, 0, len(typed))
		for _, item := range typed {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		return []string{typed}
	default:
		return nil
	}
}

func (s *State) answered(id string) bool {
	for _, existing := range s.order {
		if existing == id {
			return true
		}
	}
	return false
}

func cloneValues(src map[string]any) map[string]any {
	out := make(map[string]any, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
