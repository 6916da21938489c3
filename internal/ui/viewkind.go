package ui

// ViewKind names one of the shell's top-level views.
type ViewKind int

const (
	ViewDashboard ViewKind = iota
	ViewRegister
	ViewList
)

// ViewKinds lists the views in menu order.
var ViewKinds = []ViewKind{ViewDashboard, ViewRegister, ViewList}

func (k ViewKind) String() string {
	switch k {
	case ViewDashboard:
		return "dashboard"
	case ViewRegister:
		return "register"
	case ViewList:
		return "list"
	default:
		return "unknown"
	}
}

// Title is the menu label.
func (k ViewKind) Title() string {
	switch k {
	case ViewDashboard:
		return "Dashboard"
	case ViewRegister:
		return "Register model"
	case ViewList:
		return "Models"
	default:
		return "Unknown"
	}
}
