package navigation

import "github.com/vijaikiren/portfolio/internal/scrollspy"

// Host is the rendering environment the controller runs inside: it
// reports the viewport and carries out scroll commands.
type Host interface {
	// ScrollOffset is the vertical scroll position in document coordinates.
	ScrollOffset() float64
	ViewportHeight() float64

	// SubscribeScroll calls fn after every scroll notification until the
	// returned subscription is released.
	SubscribeScroll(fn func()) Subscription

	// ScrollIntoView starts an animated scroll that aligns region to the
	// top of the viewport. It does not wait for the animation.
	ScrollIntoView(index int, region scrollspy.Region)
}

// Subscription is a scoped registration with the host.
type Subscription interface {
	Unsubscribe()
}

// SubscriptionFunc adapts a release function to Subscription.
type SubscriptionFunc func()

func (f SubscriptionFunc) Unsubscribe() { f() }
