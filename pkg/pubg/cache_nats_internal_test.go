package pubg

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNATSKey(t *testing.T) {
	t.Parallel()

	validKey := regexp.MustCompile(`^[-/_=.a-zA-Z0-9]+$`)

	url := "https://telemetry-cdn.playbattlegrounds.com/bluehole-pubg/steam/2024/01/01/0/0/m1-telemetry.json"

	key := natsKey(url)
	assert.Len(t, key, 64)
	assert.Regexp(t, validKey, key)
	assert.Equal(t, key, natsKey(url))
	assert.NotEqual(t, key, natsKey(url+"?v=2"))
}
