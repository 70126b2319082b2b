package arrange

import (
	"errors"
	"sync"

	"github.com/golang/glog"
	"github.com/vsariola/jamsheet"
	"github.com/vsariola/jamsheet/edit"
	"github.com/vsariola/jamsheet/sheet"
)

type (
	// Arrangement is the sequence of parts accompanying a leadsheet. The parts
	// are ordered by start bar and contiguous: the first starts at bar 0 and
	// each next one starts where the previous one ends.
	//
	// Like a Leadsheet, an Arrangement is changed only by its operations,
	// which follow the same protocol: authorizers, change, edit sinks,
	// listeners.
	Arrangement struct {
		mu         sync.RWMutex
		parts      []Part
		leadsheet  *sheet.Leadsheet
		lastRhythm map[jamsheet.TimeSignature]*jamsheet.Rhythm

		authorizers edit.Listeners[Authorizer]
		listeners   edit.Listeners[Listener]
		sinks       edit.Listeners[edit.Sink]
		scope       edit.Scope
	}

	Authorizer interface {
		AuthorizeChange(ev Event) error
	}

	Listener interface {
		ArrangementChanged(ev Event) error
	}

	AuthorizerFunc func(ev Event) error
	ListenerFunc   func(ev Event) error
)

func (f AuthorizerFunc) AuthorizeChange(ev Event) error  { return f(ev) }
func (f ListenerFunc) ArrangementChanged(ev Event) error { return f(ev) }

// New returns an empty arrangement.
func New() *Arrangement {
	return &Arrangement{lastRhythm: map[jamsheet.TimeSignature]*jamsheet.Rhythm{}}
}

// NewWithParts returns an arrangement holding copies of parts, laid out
// contiguously in the given order.
func NewWithParts(parts []Part) (*Arrangement, error) {
	for _, p := range parts {
		if err := checkPart(p); err != nil {
			return nil, err
		}
	}
	a := New()
	a.parts = copyParts(parts)
	layout(a.parts)
	return a, nil
}

func (a *Arrangement) AddAuthorizer(au Authorizer) func() { return a.authorizers.Add(au) }
func (a *Arrangement) AddListener(l Listener) func() { return a.listeners.Add(l) }
func (a *Arrangement) AddEditSink(s edit.Sink) func() { return a.sinks.Add(s) }

// Leadsheet returns the leadsheet the arrangement is synchronized with, if
// any.
func (a *Arrangement) Leadsheet() *sheet.Leadsheet {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.leadsheet
}

// Parts returns copies of all parts.
func (a *Arrangement) Parts() []Part {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return copyParts(a.parts)
}

func (a *Arrangement) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.parts)
}

// Size returns the total length of the parts in bars.
func (a *Arrangement) Size() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.size()
}

// PartAt returns the part playing at bar.
func (a *Arrangement) PartAt(bar int) (Part, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, p := range a.parts {
		if bar >= p.StartBar && bar < p.EndBar() {
			return p.Copy(), true
		}
	}
	return Part{}, false
}

// PartsOf returns the parts generated from section, in order.
func (a *Arrangement) PartsOf(section *sheet.Item) []Part {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.partsOf(section)
}

// LastRhythm returns the rhythm most recently used for a part in time
// signature ts, or nil.
func (a *Arrangement) LastRhythm(ts jamsheet.TimeSignature) *jamsheet.Rhythm {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastRhythm[ts]
}

func (a *Arrangement) SetLastRhythm(r *jamsheet.Rhythm) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastRhythm[r.TimeSignature] = r
}

func (a *Arrangement) size() int {
	if len(a.parts) == 0 {
		return 0
	}
	return a.parts[len(a.parts)-1].EndBar()
}

func (a *Arrangement) partsOf(section *sheet.Item) []Part {
	var ret []Part
	for _, p := range a.parts {
		if p.Section == section {
			ret = append(ret, p.Copy())
		}
	}
	return ret
}

func (a *Arrangement) indexAt(startBar int) int {
	for i, p := range a.parts {
		if p.StartBar == startBar {
			return i
		}
	}
	return -1
}

// commit runs the change protocol: ask the authorizers about ev, replace the
// parts with after, record the edit and notify the listeners.
func (a *Arrangement) commit(name string, ev Event, after []Part) error {
	if err := a.authorize(ev); err != nil {
		return err
	}
	layout(after)
	before := copyParts(a.parts)
	a.restore(after)
	a.remember(ev)
	e := edit.New(name,
		func() {
			a.restore(before)
			a.replay(ev.reverse())
		},
		func() {
			a.restore(after)
			a.replay(ev.replay())
		})
	for _, s := range a.sinks.Snapshot() {
		s.EditHappened(e)
	}
	return a.notify(ev)
}

// Authorize asks the authorizers about ev without changing anything.
func (a *Arrangement) Authorize(ev Event) error { return a.authorize(ev) }

func (a *Arrangement) authorize(ev Event) error {
	for _, au := range a.authorizers.Snapshot() {
		if err := au.AuthorizeChange(ev); err != nil {
			glog.V(1).Infof("arrangement change %T rejected: %v", ev, err)
			return err
		}
	}
	return nil
}

// remember records the rhythms of the parts that ev puts in place as the
// last used ones.
func (a *Arrangement) remember(ev Event) {
	var parts []Part
	switch e := ev.(type) {
	case PartsAdded:
		parts = e.Parts
	case PartsReplaced:
		parts = e.New
	}
	for _, p := range parts {
		a.SetLastRhythm(p.Rhythm)
	}
}

func (a *Arrangement) restore(parts []Part) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.parts = copyParts(parts)
}

func (a *Arrangement) notify(ev Event) error {
	var errs []error
	for _, l := range a.listeners.Snapshot() {
		if err := l.ArrangementChanged(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Arrangement) replay(ev Event) {
	if err := a.notify(ev); err != nil {
		glog.Warningf("listener failed on replayed %T: %v", ev, err)
	}
}

// action starts a composite operation; call as defer a.action(name)().
func (a *Arrangement) action(name string) func() {
	if !a.scope.Enter(name) {
		return func() {}
	}
	a.emit(name, ActionStarted{Name: name})
	return func() {
		a.emit(name, ActionCompleted{Name: name})
		a.scope.Exit()
	}
}

func (a *Arrangement) emit(name string, ev Event) {
	e := edit.New(name,
		func() { a.replay(ev.reverse()) },
		func() { a.replay(ev.replay()) })
	for _, s := range a.sinks.Snapshot() {
		s.EditHappened(e)
	}
	if err := a.notify(ev); err != nil {
		glog.Warningf("listener failed on %T: %v", ev, err)
	}
}
