package ui

import (
	"context"
	"strings"
)

// Present holds once at least one element matches loc
func Present(d Driver, loc Locator) Condition {
	return AtLeast(d, loc, 1)
}

// AtLeast holds once n or more elements match loc
func AtLeast(d Driver, loc Locator, n int) Condition {
	return func(ctx context.Context) (bool, error) {
		count, err := d.Count(ctx, loc)
		if err != nil {
			return false, err
		}
		return count >= n, nil
	}
}

// Absent holds once nothing matches loc
func Absent(d Driver, loc Locator) Condition {
	return func(ctx context.Context) (bool, error) {
		count, err := d.Count(ctx, loc)
		if err != nil {
			return false, err
		}
		return count == 0, nil
	}
}

// PageHasText holds once the page markup contains text
func PageHasText(d Driver, text string) Condition {
	return func(ctx context.Context) (bool, error) {
		return d.PageContains(ctx, text)
	}
}

// ValueEquals holds once the input at loc shows want
func ValueEquals(d Driver, loc Locator, want string) Condition {
	return func(ctx context.Context) (bool, error) {
		got, err := d.Value(ctx, loc)
		if err != nil {
			return false, err
		}
		return strings.TrimSpace(got) == want, nil
	}
}

// AnyOf holds once any of conds holds. A transient error from one condition
// does not stop the others from being evaluated.
func AnyOf(conds ...Condition) Condition {
	return func(ctx context.Context) (bool, error) {
		var last error
		for _, cond := range conds {
			ok, err := cond(ctx)
			if err != nil {
				if !IsTransient(err) {
					return false, err
				}
				last = err
				continue
			}
			if ok {
				return true, nil
			}
		}
		return false, last
	}
}
