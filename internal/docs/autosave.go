package docs

import "time"

// DefaultAutosaveDelay is how long edits must settle before saving.
const DefaultAutosaveDelay = 1500 * time.Millisecond

// Autosave debounces saves: every edit starts a new generation, and only the
// timer of the latest generation may trigger a save.
type Autosave struct {
	Delay      time.Duration
	generation int
	dirty      bool
	lastSaved  time.Time
}

// NewAutosave creates a debouncer with delay, or the default when delay is
// not positive.
func NewAutosave(delay time.Duration) *Autosave {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Autosave{Delay: delay}
}

// Touch records an edit and returns the generation its timer must carry.
func (a *Autosave) Touch() int {
	a.generation++
	a.dirty = true
	return a.generation
}

// Due reports whether a timer for generation gen should save now.
func (a *Autosave) Due(gen int) bool {
	return a.dirty && gen == a.generation
}

// Dirty reports whether there are unsaved edits.
func (a *Autosave) Dirty() bool {
	return a.dirty
}

// Flush marks the content saved at now, cancelling any pending timer, and
// reports whether there was anything to save.
func (a *Autosave) Flush(now time.Time) bool {
	wasDirty := a.dirty
	a.generation++
	a.dirty = false
	a.lastSaved = now
	return wasDirty
}

// LastSaved returns when content was last flushed.
func (a *Autosave) LastSaved() time.Time {
	return a.lastSaved
}

// Failed restores the dirty flag after a save that did not go through.
func (a *Autosave) Failed() {
	a.dirty = true
}
