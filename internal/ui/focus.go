package ui

// FocusManager tracks and rotates focus across form fields.
type FocusManager struct {
	Current string   // ID of the focused field
	Order   []string // Tab order for focus rotation
}

// Next advances focus to the next field in order, wrapping at the end.
// Returns the new current focus ID.
func (f *FocusManager) Next() string {
	return f.move(1)
}

// Prev moves focus to the previous field in order, wrapping at the start.
func (f *FocusManager) Prev() string {
	return f.move(-1)
}

func (f *FocusManager) move(delta int) string {
	if len(f.Order) == 0 {
		return ""
	}
	idx := f.Index()
	if idx < 0 {
		// Unknown current: Next lands on the first field, Prev on the last.
		if delta > 0 {
			idx = -1
		} else {
			idx = 0
		}
	}
	n := len(f.Order)
	f.set(f.Order[((idx+delta)%n+n)%n])
	return f.Current
}

// SetFocus sets focus to the given field ID.
// Returns true if the ID exists in order.
func (f *FocusManager) SetFocus(id string) bool {
	for _, o := range f.Order {
		if o == id {
			f.set(id)
			return true
		}
	}
	return false
}

// SetOrder replaces the tab order. Focus is kept when the current field
// survives, otherwise it moves to the first field.
func (f *FocusManager) SetOrder(order []string) {
	f.Order = order
	if f.Index() >= 0 || len(order) == 0 {
		return
	}
	f.set(order[0])
}

// Index returns the position of Current in Order, or -1.
func (f *FocusManager) Index() int {
	for i, id := range f.Order {
		if id == f.Current {
			return i
		}
	}
	return -1
}

// Is reports whether id has focus.
func (f *FocusManager) Is(id string) bool {
	return f.Current == id
}

func (f *FocusManager) set(id string) {
	f.Current = id
}
