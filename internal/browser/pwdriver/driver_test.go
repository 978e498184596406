package pwdriver

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"

	"github.com/themizzi/cartverify/internal/ui"
)

func TestTranslate(t *testing.T) {
	other := errors.New("browser has been closed")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "playwright timeout", err: fmt.Errorf("click: %w", playwright.ErrTimeout), want: ui.ErrNotInteractable},
		{name: "detached node", err: errors.New("Element is not attached to the DOM"), want: ui.ErrStale},
		{name: "other failures pass through", err: other, want: other},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translate(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestBudget(t *testing.T) {
	d := &Driver{timeout: 5 * time.Second}

	assert.Equal(t, 5000.0, *d.budget(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.LessOrEqual(t, *d.budget(ctx), 1000.0)
}
