package browser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/themizzi/cartverify/internal/config"
)

func TestOpenUnknownEngine(t *testing.T) {
	session, err := Open(context.Background(), &config.BrowserConfig{Engine: "webdriver"})

	assert.Error(t, err)
	assert.Nil(t, session)
}
