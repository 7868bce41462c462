package player

import (
	"context"
	"math/rand/v2"
	"slices"
	"sync"

	"playlist-player/internal/catalog"
	"playlist-player/internal/logging"
	"playlist-player/internal/metrics"
	"playlist-player/internal/order"
	"playlist-player/internal/session"
)

// Surface is the playback surface the active entry is handed to.
type Surface interface {
	Load(entry catalog.MediaEntry)
	Play()
	Pause()
	Clear()
}

// ChangeListener is implemented by surfaces that want a snapshot after
// every committed command.
type ChangeListener interface {
	Changed(snap Snapshot)
}

// Snapshot is a consistent view of the player at one instant.
type Snapshot struct {
	Entries []catalog.MediaEntry `json:"entries"`
	Total   int                  `json:"total"`
	Query   string               `json:"query,omitempty"`
	Active  session.State        `json:"active"`
	Stats   catalog.Stats        `json:"stats"`
	Sort    order.SortSpec       `json:"sort"`
}

// Options configures a Player.
type Options struct {
	// Surface receives load/play/clear effects. Nil discards them.
	Surface Surface
	// Rand seeds shuffles. Nil uses the global source.
	Rand *rand.Rand
}

// Player is the composition root of the playlist core.
type Player struct {
	mu         sync.Mutex
	dispatchMu sync.Mutex
	cat        *catalog.Catalog
	ctrl       *session.Controller
	sort       order.SortSpec
	rng        *rand.Rand
	surface    Surface
	onRemoved  []func(catalog.MediaEntry)
}

// New builds a player around cat and registers the session controller as
// the catalog observer.
func New(cat *catalog.Catalog, opts Options) *Player {
	ctrl := session.New(cat)
	cat.SetObserver(ctrl)
	return &Player{
		cat:     cat,
		ctrl:    ctrl,
		sort:    order.DefaultSortSpec(),
		rng:     opts.Rand,
		surface: opts.Surface,
	}
}

// SetSurface replaces the playback surface.
func (p *Player) SetSurface(s Surface) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.surface = s
}

// OnRemoved registers fn to run after an entry leaves the catalog, through
// removal or clear. It runs outside the player lock and must not call back
// into the player.
func (p *Player) OnRemoved(fn func(catalog.MediaEntry)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onRemoved = append(p.onRemoved, fn)
}

// Start restores the persisted playlist and loads its first entry. A store
// that cannot be read leaves an empty, usable playlist and returns the
// error for logging.
func (p *Player) Start(ctx context.Context) error {
	p.mu.Lock()
	err := p.cat.Restore(ctx)
	p.ctrl.TakeEffect()
	p.ctrl.LoadFirst()
	p.finish(p.collect())
	return err
}

// Append adds entry at the end. When nothing is active the first entry is
// loaded.
func (p *Player) Append(ctx context.Context, entry catalog.MediaEntry) error {
	p.mu.Lock()
	if err := p.cat.Append(ctx, entry); err != nil {
		p.mu.Unlock()
		return err
	}
	if p.ctrl.State().Empty() {
		p.ctrl.LoadFirst()
	}
	logging.Info("Player: added %s (%s)", entry.Name, entry.ID)
	p.finish(p.collect())
	return nil
}

// Remove deletes the entry with id. Unknown ids are a no-op.
func (p *Player) Remove(ctx context.Context, id string) error {
	p.mu.Lock()
	removed, found := p.entry(id)
	if err := p.cat.RemoveByID(ctx, id); err != nil {
		p.mu.Unlock()
		return err
	}
	d := p.collect()
	if found {
		logging.Info("Player: removed %s (%s)", removed.Name, id)
		d.removed = []catalog.MediaEntry{removed}
	}
	p.finish(d)
	return nil
}

// Clear removes every entry.
func (p *Player) Clear(ctx context.Context) error {
	p.mu.Lock()
	removed := p.cat.Entries()
	if err := p.cat.Clear(ctx); err != nil {
		p.mu.Unlock()
		return err
	}
	logging.Info("Player: cleared %d entries", len(removed))
	d := p.collect()
	d.removed = removed
	p.finish(d)
	return nil
}

// Sort reorders the persisted playlist by spec and remembers spec for the
// rest of the process lifetime.
func (p *Player) Sort(ctx context.Context, spec order.SortSpec) error {
	p.mu.Lock()
	sorted := order.SortedView(p.cat.Entries(), spec)
	if err := p.cat.ReplaceAll(ctx, sorted); err != nil {
		p.mu.Unlock()
		return err
	}
	p.sort = spec
	logging.Debug("Player: sorted by %s", spec)
	p.finish(p.collect())
	return nil
}

// Shuffle installs a random permutation. Playlists with fewer than two
// entries are left alone.
func (p *Player) Shuffle(ctx context.Context) error {
	p.mu.Lock()
	if p.cat.Len() < 2 {
		p.mu.Unlock()
		return nil
	}
	if err := p.cat.ReplaceAll(ctx, order.ShuffledView(p.cat.Entries(), p.rng)); err != nil {
		p.mu.Unlock()
		return err
	}
	p.finish(p.collect())
	return nil
}

// Load makes id the active entry. It reports false for unknown ids.
func (p *Player) Load(id string) bool {
	p.mu.Lock()
	ok := p.ctrl.LoadEntry(id) != session.EffectNone
	p.finish(p.collect())
	return ok
}

// LoadFirst activates the first entry.
func (p *Player) LoadFirst() {
	p.mu.Lock()
	p.ctrl.LoadFirst()
	p.finish(p.collect())
}

// NaturalEnd advances after the surface reports that entry id finished.
// Duplicate or stale reports for an entry that is no longer active leave
// the session unchanged.
func (p *Player) NaturalEnd(id string) session.State {
	p.mu.Lock()
	p.ctrl.NaturalEnd(id)
	state := p.ctrl.State()
	p.finish(p.collect())
	return state
}

// MetadataLoaded records a duration reported for id. Results for entries
// that no longer exist are dropped and reported as false.
func (p *Player) MetadataLoaded(ctx context.Context, id string, seconds float64) (bool, error) {
	p.mu.Lock()
	ok, err := p.cat.SetDuration(ctx, id, seconds)
	if err != nil || !ok {
		p.mu.Unlock()
		if err != nil {
			return false, err
		}
		metrics.TasksDiscardedTotal.WithLabelValues("probe").Inc()
		logging.Debug("Player: duration for removed entry %s discarded", id)
		return false, nil
	}
	p.finish(p.collect())
	return true, nil
}

// ThumbnailReady reports whether id still exists and tells listeners that a
// thumbnail can be fetched. Results for removed entries are dropped.
func (p *Player) ThumbnailReady(id string) bool {
	p.mu.Lock()
	if p.cat.IndexOf(id) < 0 {
		p.mu.Unlock()
		metrics.TasksDiscardedTotal.WithLabelValues("thumbnail").Inc()
		logging.Debug("Player: thumbnail for removed entry %s discarded", id)
		return false
	}
	p.finish(p.collect())
	return true
}

// Entry returns the entry with id.
func (p *Player) Entry(id string) (catalog.MediaEntry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entry(id)
}

// Entries returns the playlist in its persisted order.
func (p *Player) Entries() []catalog.MediaEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cat.Entries()
}

// State returns the session state.
func (p *Player) State() session.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctrl.State()
}

// Stats returns aggregate statistics.
func (p *Player) Stats() catalog.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cat.AggregateStats()
}

// SortSpec returns the last applied sort.
func (p *Player) SortSpec() order.SortSpec {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sort
}

// Snapshot returns the entries matching query along with session state,
// statistics and the current sort. Filtering never affects the session.
func (p *Player) Snapshot(query string) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot(query)
}

// GetStats implements metrics.StatsProvider.
func (p *Player) GetStats() metrics.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := p.cat.AggregateStats()
	return metrics.Stats{
		Entries:              st.Count,
		TotalSizeBytes:       st.TotalSizeBytes,
		TotalDurationSeconds: st.TotalDurationSeconds,
		ActiveIndex:          p.ctrl.State().ActiveIndex,
	}
}

func (p *Player) snapshot(query string) Snapshot {
	entries := p.cat.Entries()
	return Snapshot{
		Entries: order.FilteredView(entries, query),
		Total:   len(entries),
		Query:   query,
		Active:  p.ctrl.State(),
		Stats:   p.cat.AggregateStats(),
		Sort:    p.sort,
	}
}

func (p *Player) entry(id string) (catalog.MediaEntry, bool) {
	return p.cat.At(p.cat.IndexOf(id))
}

// dispatch is the surface work produced by one command.
type dispatch struct {
	effect   session.Effect
	active   catalog.MediaEntry
	surface  Surface
	listener ChangeListener
	snap     Snapshot
	removed  []catalog.MediaEntry
	hooks    []func(catalog.MediaEntry)
}

// collect takes the pending effect. The caller must hold p.mu.
func (p *Player) collect() dispatch {
	d := dispatch{
		effect:  p.ctrl.TakeEffect(),
		surface: p.surface,
		hooks:   slices.Clone(p.onRemoved),
	}
	d.active, _ = p.ctrl.Active()
	if l, ok := p.surface.(ChangeListener); ok {
		d.listener = l
		d.snap = p.snapshot("")
	}
	return d
}

// finish releases p.mu and runs d. Dispatches run one at a time in the
// order their commands committed. The caller must hold p.mu.
func (p *Player) finish(d dispatch) {
	p.dispatchMu.Lock()
	defer p.dispatchMu.Unlock()
	p.mu.Unlock()
	d.run()
}

func (d dispatch) run() {
	for _, e := range d.removed {
		for _, fn := range d.hooks {
			fn(e)
		}
	}

	if d.surface == nil {
		return
	}

	switch d.effect {
	case session.EffectLoad:
		d.surface.Load(d.active)
	case session.EffectAutoPlay:
		d.surface.Load(d.active)
		d.surface.Play()
	case session.EffectClear:
		d.surface.Clear()
	}

	if d.listener != nil {
		d.listener.Changed(d.snap)
	}
}
