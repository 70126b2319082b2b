package arrange

import "github.com/vsariola/jamsheet/edit"

// PartLimit is an authorizer rejecting changes that would make the
// arrangement have more than Max parts. Replacing parts never changes the
// count, so a batch replacement is always accepted.
type PartLimit struct {
	Max         int
	Arrangement *Arrangement
}

func (l *PartLimit) AuthorizeChange(ev Event) error {
	if e, ok := ev.(PartsAdded); ok {
		if n := l.Arrangement.Len() + len(e.Parts); n > l.Max {
			return edit.Veto("the arrangement can have at most %d parts", l.Max)
		}
	}
	return nil
}

// LimitParts subscribes a PartLimit of n parts to a. The returned function
// removes it.
func LimitParts(a *Arrangement, n int) func() {
	return a.AddAuthorizer(&PartLimit{Max: n, Arrangement: a})
}
