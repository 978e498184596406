package ui

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Default wait settings
const (
	DefaultTimeout      = 30 * time.Second
	DefaultPollInterval = 100 * time.Millisecond
)

// Condition is a predicate over live UI state. Transient errors mean "not yet"
// and are retried; any other error ends the wait.
type Condition func(ctx context.Context) (bool, error)

// Waiter polls conditions against a Driver until they hold or time runs out
type Waiter struct {
	driver   Driver
	timeout  time.Duration
	interval time.Duration
}

// NewWaiter creates a Waiter. Non-positive durations fall back to defaults.
func NewWaiter(driver Driver, timeout, interval time.Duration) *Waiter {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Waiter{driver: driver, timeout: timeout, interval: interval}
}

// Driver returns the driver the waiter polls
func (w *Waiter) Driver() Driver {
	return w.driver
}

// Timeout returns the per-wait timeout
func (w *Waiter) Timeout() time.Duration {
	return w.timeout
}

// Until blocks until cond returns true. It gives up with a *TimeoutError after
// the waiter's timeout or when ctx's deadline passes, whichever is first.
func (w *Waiter) Until(ctx context.Context, description string, cond Condition) error {
	budget := w.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < budget {
			budget = remaining
		}
	}

	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var last error
	for {
		ok, err := cond(ctx)
		switch {
		case err == nil && ok:
			return nil
		case err != nil && IsTransient(err):
			last = err
		case err != nil:
			if ctx.Err() == nil {
				return fmt.Errorf("waiting for %s: %w", description, err)
			}
			// the driver call was cut short by our own deadline
			last = err
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return fmt.Errorf("waiting for %s: %w", description, ctx.Err())
			}
			return &TimeoutError{Condition: description, Timeout: budget, Last: last}
		case <-ticker.C:
		}
	}
}

// Clickable waits until loc is present, visible and enabled
func (w *Waiter) Clickable(ctx context.Context, loc Locator) error {
	return w.Until(ctx, loc.String()+" to be clickable", func(ctx context.Context) (bool, error) {
		return w.driver.Clickable(ctx, loc)
	})
}

// Visible waits until loc is present and rendered
func (w *Waiter) Visible(ctx context.Context, loc Locator) error {
	return w.Until(ctx, loc.String()+" to be visible", func(ctx context.Context) (bool, error) {
		return w.driver.Visible(ctx, loc)
	})
}

// Click waits until loc is clickable and clicks it. A click that fails
// transiently (re-render between probe and click) is retried.
func (w *Waiter) Click(ctx context.Context, loc Locator) error {
	return w.Until(ctx, "click on "+loc.String(), func(ctx context.Context) (bool, error) {
		ok, err := w.driver.Clickable(ctx, loc)
		if err != nil || !ok {
			return false, err
		}
		if err := w.driver.Click(ctx, loc); err != nil {
			return false, err
		}
		return true, nil
	})
}
