package edit

// Scope tracks the one action that may be active in a store at a time. Stores
// call Enter when a public operation starts; operations called from inside an
// active action get false and must not start a new one.
type Scope struct {
	name   string
	active bool
}

func (s *Scope) Enter(name string) bool {
	if s.active {
		return false
	}
	s.name, s.active = name, true
	return true
}

func (s *Scope) Exit() {
	s.name, s.active = "", false
}

// Active returns the name of the active action, if any.
func (s *Scope) Active() (string, bool) {
	return s.name, s.active
}
