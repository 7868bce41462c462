package session

import (
	"playlist-player/internal/catalog"
	"playlist-player/internal/logging"
	"playlist-player/internal/metrics"
)

// Effect is the instruction a transition hands to the playback surface.
type Effect int

const (
	// EffectNone leaves the surface as it is.
	EffectNone Effect = iota
	// EffectLoad loads the active entry without starting playback.
	EffectLoad
	// EffectAutoPlay loads the active entry and starts playback.
	EffectAutoPlay
	// EffectClear unloads whatever the surface shows.
	EffectClear
)

func (e Effect) String() string {
	switch e {
	case EffectLoad:
		return "load"
	case EffectAutoPlay:
		return "autoplay"
	case EffectClear:
		return "clear"
	default:
		return "none"
	}
}

// Catalog is the read side of the catalog the controller indexes into.
type Catalog interface {
	Len() int
	At(i int) (catalog.MediaEntry, bool)
	IndexOf(id string) int
}

// State is a snapshot of the session.
type State struct {
	ActiveIndex int    `json:"activeIndex"`
	ActiveID    string `json:"activeId,omitempty"`
}

// Empty reports whether nothing is active.
func (s State) Empty() bool {
	return s.ActiveIndex < 0
}

// Controller owns the active index. It is not safe for concurrent use.
type Controller struct {
	cat     Catalog
	active  int
	pending Effect
}

// New returns a controller in the Empty state.
func New(cat Catalog) *Controller {
	return &Controller{cat: cat, active: -1}
}

// State returns the active index and the id currently at that index.
func (c *Controller) State() State {
	s := State{ActiveIndex: c.active}
	if e, ok := c.cat.At(c.active); ok {
		s.ActiveID = e.ID
	}
	return s
}

// Active returns the active entry.
func (c *Controller) Active() (catalog.MediaEntry, bool) {
	if c.active < 0 {
		return catalog.MediaEntry{}, false
	}
	return c.cat.At(c.active)
}

// TakeEffect returns the effect of the most recent transitions and resets
// it to EffectNone. A later effect supersedes an earlier one.
func (c *Controller) TakeEffect() Effect {
	e := c.pending
	c.pending = EffectNone
	return e
}

// LoadEntry makes id active. Unknown ids leave the state unchanged.
func (c *Controller) LoadEntry(id string) Effect {
	idx := c.cat.IndexOf(id)
	if idx < 0 {
		logging.Debug("Session: load of unknown id %s ignored", id)
		return EffectNone
	}
	return c.transition("load_entry", idx, EffectLoad)
}

// LoadFirst activates the first entry, or goes Empty when the catalog is.
func (c *Controller) LoadFirst() Effect {
	if c.cat.Len() == 0 {
		if c.active < 0 {
			return c.transition("load_first", -1, EffectNone)
		}
		return c.transition("load_first", -1, EffectClear)
	}
	return c.transition("load_first", 0, EffectLoad)
}

// NaturalEnd advances after the entry id finished on its own. Reports for
// any entry other than the active one are ignored. The last entry does not
// wrap around; the session goes Empty instead.
func (c *Controller) NaturalEnd(id string) Effect {
	active, ok := c.Active()
	if !ok || active.ID != id {
		logging.Debug("Session: natural end of inactive entry %q ignored", id)
		return EffectNone
	}
	next := c.active + 1
	if next >= c.cat.Len() {
		return c.transition("natural_end", -1, EffectClear)
	}
	return c.transition("natural_end", next, EffectAutoPlay)
}

// OnAppended implements catalog.Observer. Appending at the end never moves
// the active entry.
func (c *Controller) OnAppended(int) {}

// OnEntryRemoved implements catalog.Observer.
func (c *Controller) OnEntryRemoved(id string, index int) {
	switch {
	case c.active < 0:
		return
	case index == c.active:
		logging.Debug("Session: active entry %s removed", id)
		c.transition("entry_removed", -1, EffectClear)
	case index < c.active:
		c.transition("entry_removed", c.active-1, EffectNone)
	}
}

// OnSequenceReplaced implements catalog.Observer. The previously active id
// is located in the new order.
func (c *Controller) OnSequenceReplaced(previous, current []catalog.MediaEntry) {
	if c.active < 0 || c.active >= len(previous) {
		return
	}
	id := previous[c.active].ID
	for i, e := range current {
		if e.ID == id {
			c.transition("sequence_replaced", i, EffectNone)
			return
		}
	}
	c.transition("sequence_replaced", -1, EffectClear)
}

// OnCleared implements catalog.Observer.
func (c *Controller) OnCleared() {
	if c.active < 0 {
		return
	}
	c.transition("clear", -1, EffectClear)
}

func (c *Controller) transition(event string, next int, effect Effect) Effect {
	c.active = next
	c.pending = effect

	state := "active"
	if next < 0 {
		state = "empty"
	}
	metrics.SessionTransitionsTotal.WithLabelValues(event, state).Inc()
	metrics.SessionActiveIndex.Set(float64(next))
	logging.Debug("Session: %s -> index %d (%s)", event, next, effect)
	return effect
}
