// Package ui holds the storefront locator set, the browser capability
// interface the verification engine drives, and the condition waiter.
package ui

import "context"

// Driver is the set of browser capabilities the verification engine needs.
// Probes (Count, Visible, Clickable) never block waiting for an element.
// Reads and Click return ErrNotFound when nothing matches the locator, so the
// Waiter can retry them until the page settles.
type Driver interface {
	// Navigate loads url in the session's page
	Navigate(ctx context.Context, url string) error
	// Count returns how many elements currently match loc
	Count(ctx context.Context, loc Locator) (int, error)
	// Visible reports whether the first match is rendered
	Visible(ctx context.Context, loc Locator) (bool, error)
	// Clickable reports whether the first match is visible and enabled
	Clickable(ctx context.Context, loc Locator) (bool, error)
	// Text returns the rendered text of the first match
	Text(ctx context.Context, loc Locator) (string, error)
	// Value returns the current value of the first matching input
	Value(ctx context.Context, loc Locator) (string, error)
	// Click activates the first match
	Click(ctx context.Context, loc Locator) error
	// PageContains reports whether the page markup contains text
	PageContains(ctx context.Context, text string) (bool, error)
}

// Session is a Driver bound to a live browser that must be released
type Session interface {
	Driver
	Close() error
}
