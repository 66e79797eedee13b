package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_EmptyTokenDropsMessages(t *testing.T) {
	notifier, err := NewClient("", 42)
	require.NoError(t, err)
	assert.IsType(t, nopNotifier{}, notifier)
	assert.NoError(t, notifier.SendMessage("*new submission*"))
}
