package roddriver

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"

	"github.com/themizzi/cartverify/internal/ui"
)

func TestTranslate(t *testing.T) {
	other := errors.New("websocket closed")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "not interactable", err: fmt.Errorf("click: %w", &rod.NotInteractableError{}), want: ui.ErrNotInteractable},
		{name: "object gone", err: &rod.ObjectNotFoundError{RuntimeRemoteObject: &proto.RuntimeRemoteObject{}}, want: ui.ErrStale},
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
