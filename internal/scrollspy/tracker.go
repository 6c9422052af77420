// Package scrollspy tracks which page section sits under the vertical
// midpoint of the viewport.
package scrollspy

import (
	"sort"
	"sync"
)

// Region is a live handle to a rendered section. Bounds is read on every
// evaluation so layout changes are always observed.
type Region interface {
	Bounds() (top, height float64)
}

// RegionFunc adapts a plain function to Region.
type RegionFunc func() (top, height float64)

func (f RegionFunc) Bounds() (float64, float64) { return f() }

// Tracker is the section registry plus the active-section slot it writes.
type Tracker struct {
	mu      sync.RWMutex
	regions map[int]Region
	active  int
}

// NewTracker returns an empty tracker with section 0 active.
func NewTracker() *Tracker {
	return &Tracker{regions: make(map[int]Region)}
}

// Register associates index with region. A later call for the same index
// replaces the earlier one.
func (t *Tracker) Register(index int, region Region) {
	if index < 0 || region == nil {
		return
	}
	t.mu.Lock()
	t.regions[index] = region
	t.mu.Unlock()
}

// Unregister drops the region for index, as when a section unmounts.
func (t *Tracker) Unregister(index int) {
	t.mu.Lock()
	delete(t.regions, index)
	t.mu.Unlock()
}

// Len reports how many sections are registered.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.regions)
}

// Has reports whether index has a registered region.
func (t *Tracker) Has(index int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.regions[index]
	return ok
}

// Region returns the registered region for index, if any.
func (t *Tracker) Region(index int) (Region, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	r, ok := t.regions[index]
	return r, ok
}

// Active returns the index of the section currently in view.
func (t *Tracker) Active() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

// Evaluate samples the point scrollOffset + viewportHeight/2 against every
// registered section in index order. The first section whose half-open
// range [top, top+height) contains the point becomes active. When nothing
// contains it the active index is left alone.
func (t *Tracker) Evaluate(scrollOffset, viewportHeight float64) (active int, changed bool) {
	ref := scrollOffset + viewportHeight/2

	t.mu.Lock()
	defer t.mu.Unlock()

	indexes := make([]int, 0, len(t.regions))
	for i := range t.regions {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	for _, i := range indexes {
		top, height := t.regions[i].Bounds()
		if ref >= top && ref < top+height {
			changed = t.active != i
			t.active = i
			return i, changed
		}
	}
	return t.active, false
}
