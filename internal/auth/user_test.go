package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileLocation(t *testing.T) {
	p := &Profile{Timezone: "Asia/Tokyo"}
	loc := p.Location()
	require.NotNil(t, loc)
	assert.Equal(t, "Asia/Tokyo", loc.String())

	// Unknown names fall back to UTC rather than failing the request.
	p = &Profile{Timezone: "Mars/Olympus_Mons"}
	assert.Equal(t, time.UTC, p.Location())

	p = &Profile{}
	assert.Equal(t, time.UTC, p.Location())
}
