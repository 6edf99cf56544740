package logger

import (
	"storefront/internal/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	log, err := New(config.Log{Level: "debug", Format: "console"}, config.Environment{Name: "test"})
	require.NoError(t, err)
	assert.NotNil(t, log)

	_, err = New(config.Log{Level: "loud", Format: "json"}, config.Environment{Name: "test"})
	assert.Error(t, err)

	_, err = New(config.Log{Level: "info", Format: "xml"}, config.Environment{Name: "test"})
	assert.Error(t, err)
}
