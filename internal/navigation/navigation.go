package navigation

import (
	"sync"

	"storefront/internal/access"
)

// Router moves the operator to a named destination
type Router interface {
	Navigate(destination access.Screen, params map[string]interface{}) error
}

// Transition is one recorded navigation
type Transition struct {
	Destination access.Screen          `json:"destination"`
	Params      map[string]interface{} `json:"params,omitempty"`
}

// Recorder keeps every transition in memory. The terminal API reports them
// to its client so the client can move to the screen.
type Recorder struct {
	mu          sync.Mutex
	transitions []Transition
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Navigate(destination access.Screen, params map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.transitions = append(r.transitions, Transition{Destination: destination, Params: params})
	return nil
}

// Last returns the most recent transition
func (r *Recorder) Last() (Transition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.transitions) == 0 {
		return Transition{}, false
	}
	return r.transitions[len(r.transitions)-1], true
}

// Transitions returns a copy of the history
func (r *Recorder) Transitions() []Transition {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Transition, len(r.transitions))
	copy(out, r.transitions)
	return out
}

// RoleFunc returns the role of the current operator
type RoleFunc func() string

// Guarded refuses transitions to screens the current role may not enter
type Guarded struct {
	next Router
	role RoleFunc
}

func NewGuarded(next Router, role RoleFunc) *Guarded {
	return &Guarded{next: next, role: role}
}

func (g *Guarded) Navigate(destination access.Screen, params map[string]interface{}) error {
	if err := access.Guard(g.role(), destination); err != nil {
		return err
	}
	return g.next.Navigate(destination, params)
}
