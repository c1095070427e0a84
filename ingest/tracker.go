package ingest

import "sync"

// Tracker is the actor-liveness registry of spec §9 Open Question #2:
// it records which actors are linked to which, so that when an actor
// goes down every edge that mentions it — not just its own entry — is
// removed. The source left this removal commented out, which would
// have left dangling edges pointing at an actor no longer running;
// Down here always removes both directions.
type Tracker struct {
	mu    sync.Mutex
	links map[string]map[string]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{links: make(map[string]map[string]struct{})}
}

// Link records a bidirectional link between a and b (spec §5
// "synchronous link setup between tracker-registered components").
func (t *Tracker) Link(a, b string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.addEdge(a, b)
	t.addEdge(b, a)
}

func (t *Tracker) addEdge(from, to string) {
	set, ok := t.links[from]
	if !ok {
		set = make(map[string]struct{})
		t.links[from] = set
	}
	set[to] = struct{}{}
}

// Down removes actor and every edge incident to it, in both
// directions: its own entry, and its appearance in every other actor's
// link set.
func (t *Tracker) Down(actor string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.links, actor)
	for _, set := range t.links {
		delete(set, actor)
	}
}

// Linked reports the actors currently linked to actor.
func (t *Tracker) Linked(actor string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	set := t.links[actor]
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	return out
}
