package selection

// Staged holds a value being edited next to the value pricing uses. Applied
// only changes through Commit or Reset.
type Staged[T comparable] struct {
	Draft   T `json:"draft"`
	Applied T `json:"applied"`
}

func (s *Staged[T]) Edit(v T) {
	s.Draft = v
}

// Commit copies the draft into the applied value.
func (s *Staged[T]) Commit() {
	s.Applied = s.Draft
}

// Reset clears both values.
func (s *Staged[T]) Reset() {
	var zero T
	s.Draft = zero
	s.Applied = zero
}

// Pending reports whether the draft differs from the applied value.
func (s Staged[T]) Pending() bool {
	return s.Draft != s.Applied
}
