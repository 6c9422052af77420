// Package navigation turns user actions on the page into state changes
// and scroll commands: nav highlighting, jump-to-section and the
// certificate overlay.
package navigation

import (
	"sync"

	"github.com/vijaikiren/portfolio/internal/content"
	"github.com/vijaikiren/portfolio/internal/scrollspy"
)

// Controller owns the active-section tracker and the selected
// certificate for one page.
type Controller struct {
	tracker *scrollspy.Tracker

	mu       sync.RWMutex
	selected *content.CertificateRecord
	host     Host
	sub      Subscription
}

// New returns a controller with section 0 active and the overlay closed.
func New() *Controller {
	return &Controller{tracker: scrollspy.NewTracker()}
}

// Tracker exposes the section registry so regions can be registered as
// they mount.
func (c *Controller) Tracker() *scrollspy.Tracker { return c.tracker }

// Mount attaches the controller to host: it subscribes to scroll
// notifications and runs one evaluation to establish the initial state.
// onChange, if non-nil, is called with the new index whenever the active
// section changes. Mounting again releases the previous subscription.
func (c *Controller) Mount(host Host, onChange func(active int)) {
	c.mu.Lock()
	if c.sub != nil {
		c.sub.Unsubscribe()
	}
	c.host = host
	c.sub = host.SubscribeScroll(func() {
		if active, changed := c.Evaluate(); changed && onChange != nil {
			onChange(active)
		}
	})
	c.mu.Unlock()

	if active, changed := c.Evaluate(); changed && onChange != nil {
		onChange(active)
	}
}

// Close releases the host subscription. It is safe to call more than once.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sub != nil {
		c.sub.Unsubscribe()
		c.sub = nil
	}
	c.host = nil
}

// Mounted reports whether the controller is attached to a live host.
func (c *Controller) Mounted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.host != nil
}

// Evaluate samples the host viewport and updates the active section.
// Without a host it leaves the state as is.
func (c *Controller) Evaluate() (active int, changed bool) {
	c.mu.RLock()
	host := c.host
	c.mu.RUnlock()
	if host == nil {
		return c.tracker.Active(), false
	}
	return c.tracker.Evaluate(host.ScrollOffset(), host.ViewportHeight())
}

// Active returns the index of the section in view.
func (c *Controller) Active() int { return c.tracker.Active() }

// IsActive reports whether index is the section in view.
func (c *Controller) IsActive(index int) bool { return c.tracker.Active() == index }

// JumpToSection asks the host to smooth-scroll section index to the top
// of the viewport. The active section is updated later by Evaluate as the
// scroll progresses. Unknown indexes are ignored.
func (c *Controller) JumpToSection(index int) {
	region, ok := c.tracker.Region(index)
	if !ok {
		return
	}
	c.mu.RLock()
	host := c.host
	c.mu.RUnlock()
	if host == nil {
		return
	}
	host.ScrollIntoView(index, region)
}

// SelectCertificate opens the overlay on rec, replacing any record
// already shown.
func (c *Controller) SelectCertificate(rec content.CertificateRecord) {
	c.mu.Lock()
	c.selected = &rec
	c.mu.Unlock()
}

// DismissCertificate closes the overlay.
func (c *Controller) DismissCertificate() {
	c.mu.Lock()
	c.selected = nil
	c.mu.Unlock()
}

// Selected returns the record shown in the overlay, or nil when closed.
func (c *Controller) Selected() *content.CertificateRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.selected == nil {
		return nil
	}
	rec := *c.selected
	return &rec
}

// ModalOpen reports whether the certificate overlay is visible.
func (c *Controller) ModalOpen() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected != nil
}
