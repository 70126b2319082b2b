package sheet

import (
	"errors"
	"fmt"
	"sync"

	"github.com/golang/glog"
	"github.com/vsariola/jamsheet"
	"github.com/vsariola/jamsheet/edit"
)

// DefaultMaxSize is the maximum number of bars used when none is given.
const DefaultMaxSize = 1024

type (
	// Leadsheet is a time ordered set of items spanning Size() bars. There is
	// always a section at bar 0; the time signature of a section governs the
	// bars until the next section.
	//
	// All mutations go through the operations of the Leadsheet, which ask the
	// authorizers first, then change the state, pass an undoable edit to the
	// edit sinks and finally notify the listeners. Mutations should be made
	// from a single goroutine; the read accessors can be called from any
	// goroutine.
	Leadsheet struct {
		mu      sync.RWMutex
		size    int
		maxSize int
		items   itemList

		authorizers edit.Listeners[Authorizer]
		listeners   edit.Listeners[Listener]
		sinks       edit.Listeners[edit.Sink]
		scope       edit.Scope
	}

	// Authorizer can reject a change before it happens by returning an error,
	// typically an *edit.VetoError.
	Authorizer interface {
		AuthorizeChange(ev Event) error
	}

	// Listener is notified after a change has happened and its edit has been
	// recorded. A returned error is passed to the caller of the operation.
	Listener interface {
		LeadsheetChanged(ev Event) error
	}

	AuthorizerFunc func(ev Event) error
	ListenerFunc   func(ev Event) error
)

func (f AuthorizerFunc) AuthorizeChange(ev Event) error { return f(ev) }
func (f ListenerFunc) LeadsheetChanged(ev Event) error  { return f(ev) }

// New returns a leadsheet of size bars with the given section at bar 0. If
// maxSize <= 0, DefaultMaxSize is used.
func New(first jamsheet.Section, size, maxSize int) (*Leadsheet, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if err := first.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", edit.ErrPrecondition, err)
	}
	if size < 1 || size > maxSize {
		return nil, edit.Preconditionf("size %d not in [1,%d]", size, maxSize)
	}
	ls := &Leadsheet{size: size, maxSize: maxSize}
	ls.items.insert(&Item{data: first})
	return ls, nil
}

// AddAuthorizer subscribes a to the changes before they happen. The returned
// function unsubscribes.
func (ls *Leadsheet) AddAuthorizer(a Authorizer) func() { return ls.authorizers.Add(a) }

// AddListener subscribes l to the changes after they happened.
func (ls *Leadsheet) AddListener(l Listener) func() { return ls.listeners.Add(l) }

// AddEditSink subscribes s to the undoable edits.
func (ls *Leadsheet) AddEditSink(s edit.Sink) func() { return ls.sinks.Add(s) }

// itemState is the state of one item: where it is, what it holds and if it
// is in the leadsheet at all.
type itemState struct {
	item    *Item
	pos     jamsheet.Position
	data    jamsheet.ItemData
	present bool
}

func (ls *Leadsheet) stateOf(it *Item) itemState {
	return itemState{item: it, pos: it.pos, data: it.data, present: ls.items.contains(it)}
}

// commit runs the change protocol: ask the authorizers about ev, move the
// leadsheet to the given size and item states, record the edit and notify the
// listeners.
func (ls *Leadsheet) commit(name string, ev Event, size int, after []itemState) error {
	if err := ls.authorize(ev); err != nil {
		return err
	}
	before := make([]itemState, len(after))
	for i, s := range after {
		before[i] = ls.stateOf(s.item)
	}
	oldSize := ls.size
	ls.restore(size, after)
	e := edit.New(name,
		func() {
			ls.restore(oldSize, before)
			ls.replay(ev.reverse())
		},
		func() {
			ls.restore(size, after)
			ls.replay(ev.replay())
		})
	ls.record(e)
	return ls.notify(ev)
}

func (ls *Leadsheet) authorize(ev Event) error {
	for _, a := range ls.authorizers.Snapshot() {
		if err := a.AuthorizeChange(ev); err != nil {
			glog.V(1).Infof("leadsheet change %T rejected: %v", ev, err)
			return err
		}
	}
	return nil
}

func (ls *Leadsheet) restore(size int, states []itemState) {
	ls.mu.Lock()
	defer ls.mu.Unlock()
	for _, s := range states {
		if ls.items.contains(s.item) {
			ls.items.remove(s.item)
		}
	}
	for _, s := range states {
		s.item.pos, s.item.data = s.pos, s.data
	}
	for _, s := range states {
		if s.present {
			ls.items.insert(s.item)
		}
	}
	ls.size = size
}

func (ls *Leadsheet) record(e *edit.Edit) {
	for _, s := range ls.sinks.Snapshot() {
		s.EditHappened(e)
	}
}

// notify passes ev to every listener, also when one of them fails. The
// errors are joined.
func (ls *Leadsheet) notify(ev Event) error {
	var errs []error
	for _, l := range ls.listeners.Snapshot() {
		if err := l.LeadsheetChanged(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ls *Leadsheet) replay(ev Event) {
	if err := ls.notify(ev); err != nil {
		glog.Warningf("listener failed on replayed %T: %v", ev, err)
	}
}

// action starts a composite operation; the returned function completes it.
// Call as defer ls.action(name)(). Nested actions are part of the outermost
// one.
func (ls *Leadsheet) action(name string) func() {
	if !ls.scope.Enter(name) {
		return func() {}
	}
	ls.emit(name, ActionStarted{Name: name})
	return func() {
		ls.emit(name, ActionCompleted{Name: name})
		ls.scope.Exit()
	}
}

// emit records and notifies an event that changes no state.
func (ls *Leadsheet) emit(name string, ev Event) {
	ls.record(edit.New(name,
		func() { ls.replay(ev.reverse()) },
		func() { ls.replay(ev.replay()) }))
	if err := ls.notify(ev); err != nil {
		glog.Warningf("listener failed on %T: %v", ev, err)
	}
}

// ActiveAction returns the name of the composite operation in progress.
func (ls *Leadsheet) ActiveAction() (string, bool) { return ls.scope.Active() }
