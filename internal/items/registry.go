package items

import (
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Observer receives each item after a successful write. Observers run on the
// writer's goroutine and must not write back to the registry.
type Observer func(Item)

// Counts tallies items by phase.
type Counts struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Done       int `json:"done"`
	Failed     int `json:"failed"`
	Exported   int `json:"exported"`
}

// Registry is an insertion-ordered set of items keyed by identity.
type Registry struct {
	mu        sync.RWMutex
	order     []uuid.UUID
	items     map[uuid.UUID]Item
	seq       uint64
	observers map[int]Observer
	nextObs   int
	now       func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		items:     make(map[uuid.UUID]Item),
		observers: make(map[int]Observer),
		now:       time.Now,
	}
}

// Append adds sources as pending items after all existing items, in order.
func (r *Registry) Append(sources ...Source) []Item {
	r.mu.Lock()
	added := make([]Item, 0, len(sources))
	for _, src := range sources {
		r.seq++
		it := Item{
			ID:         identity(src.Name(), src.ModTime(), r.seq),
			Name:       src.Name(),
			ModTime:    src.ModTime(),
			Size:       src.Size(),
			AddedAt:    r.now(),
			Generation: Pending(),
			Export:     NotStarted(),
			Source:     src,
		}
		r.order = append(r.order, it.ID)
		r.items[it.ID] = it
		added = append(added, it)
	}
	observers := r.snapshotObservers()
	r.mu.Unlock()

	for _, it := range added {
		notify(observers, it)
	}
	return added
}

// Update applies changes to the item with the given id. Nothing is written
// when the item is absent or the result would break an item invariant.
func (r *Registry) Update(id uuid.UUID, changes ...Change) (Item, error) {
	r.mu.Lock()
	it, ok := r.items[id]
	if !ok {
		r.mu.Unlock()
		return Item{}, ErrNotFound
	}

	for _, change := range changes {
		change(&it)
	}
	if err := it.validate(); err != nil {
		r.mu.Unlock()
		return r.items[id], err
	}

	r.items[id] = it
	observers := r.snapshotObservers()
	r.mu.Unlock()

	notify(observers, it)
	return it, nil
}

// Find returns the item with the given id.
func (r *Registry) Find(id uuid.UUID) (Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	it, ok := r.items[id]
	return it, ok
}

// Len returns the number of items.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// All yields every item in insertion order. Each iteration reads the
// current state, so the sequence can be ranged over repeatedly.
func (r *Registry) All() iter.Seq[Item] {
	return r.filter(func(Item) bool { return true })
}

// Pending yields items awaiting generation.
func (r *Registry) Pending() iter.Seq[Item] {
	return r.ByGeneration(GenerationPending)
}

// ByGeneration yields items in the given generation phase.
func (r *Registry) ByGeneration(phase GenerationPhase) iter.Seq[Item] {
	return r.filter(func(it Item) bool { return it.Generation.Phase() == phase })
}

// ByExport yields items in the given export phase.
func (r *Registry) ByExport(phase ExportPhase) iter.Seq[Item] {
	return r.filter(func(it Item) bool { return it.Export.Phase() == phase })
}

// Counts tallies the current items by phase.
func (r *Registry) Counts() Counts {
	var c Counts
	for it := range r.All() {
		c.Total++
		switch it.Generation.Phase() {
		case GenerationPending:
			c.Pending++
		case GenerationProcessing:
			c.Processing++
		case GenerationDone:
			c.Done++
		case GenerationFailed:
			c.Failed++
		}
		if it.Export.Phase() == ExportDone {
			c.Exported++
		}
	}
	return c
}

// Subscribe registers an observer and returns a function that removes it.
func (r *Registry) Subscribe(obs Observer) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := r.nextObs
	r.nextObs++
	r.observers[key] = obs

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.observers, key)
	}
}

func (r *Registry) filter(keep func(Item) bool) iter.Seq[Item] {
	return func(yield func(Item) bool) {
		for _, it := range r.snapshot() {
			if !keep(it) {
				continue
			}
			if !yield(it) {
				return
			}
		}
	}
}

func (r *Registry) snapshot() []Item {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Item, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id])
	}
	return out
}

func (r *Registry) snapshotObservers() []Observer {
	out := make([]Observer, 0, len(r.observers))
	for i := range r.nextObs {
		if obs, ok := r.observers[i]; ok {
			out = append(out, obs)
		}
	}
	return out
}

func notify(observers []Observer, it Item) {
	for _, obs := range observers {
		obs(it)
	}
}
