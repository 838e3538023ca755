package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"savbot/pkg/config"
)

func TestSenderAllowed(t *testing.T) {
	restricted := New(nil, nil, nil, nil, config.TelegramConfig{AllowedUsers: []int64{5, 7}}, nil)
	assert.True(t, restricted.senderAllowed(5))
	assert.True(t, restricted.senderAllowed(7))
	assert.False(t, restricted.senderAllowed(6))

	open := New(nil, nil, nil, nil, config.TelegramConfig{}, nil)
	assert.True(t, open.senderAllowed(6), "empty allow list accepts everyone")
}
