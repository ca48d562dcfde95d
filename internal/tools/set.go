package tools

import "sync/atomic"

// Set holds the current tool snapshot. Readers take the snapshot once per
// reasoning call; a refresh swaps in a whole new list.
type Set struct {
	current atomic.Pointer[ToolList]
}

// NewSet returns a Set holding list (or an empty list when nil).
func NewSet(list *ToolList) *Set {
	s := &Set{}
	s.Replace(list)
	return s
}

// Current returns the active snapshot. Never nil.
func (s *Set) Current() *ToolList {
	return s.current.Load()
}

// Replace swaps in list as the active snapshot.
func (s *Set) Replace(list *ToolList) {
	if list == nil {
		list = NewToolList()
	}
	s.current.Store(list)
}
