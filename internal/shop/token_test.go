package shop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenMaker(t *testing.T) {
	tm := NewTokenMaker("test-secret")

	tok, err := tm.New("session-1", time.Minute)
	require.NoError(t, err)

	c, err := tm.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, adminRole, c.Role)
	assert.Equal(t, "session-1", c.ID)

	_, err = NewTokenMaker("other-secret").Parse(tok)
	assert.Error(t, err)

	expired, err := tm.New("session-1", -time.Minute)
	require.NoError(t, err)
	_, err = tm.Parse(expired)
	assert.Error(t, err)

	_, err = tm.Parse("not-a-token")
	assert.Error(t, err)
}
