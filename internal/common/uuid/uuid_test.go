package uuid

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	id := New()
	assert.NotEqual(t, uuid.Nil, id)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestNewRequestId(t *testing.T) {
	a := NewRequestId()
	b := NewRequestId()
	assert.NotEqual(t, a, b)
	assert.False(t, strings.HasPrefix(a, "fallback-"))

	id, err := Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts := Timestamp(New())
	assert.True(t, ts.After(before))
	assert.True(t, ts.Before(time.Now().Add(time.Second)))
}

func TestParse(t *testing.T) {
	_, err := Parse("invalid-uuid")
	assert.Error(t, err)
}
