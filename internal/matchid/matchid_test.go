package matchid

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/hiddenrank/internal/randutil"
)

type rngReader struct{ next func() uint64 }

func (r rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.next())
	}
	return len(p), nil
}

func TestNewIsValid(t *testing.T) {
	t.Parallel()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := New()
		require.NoError(t, Validate(id))
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestNewIsTimeSorted(t *testing.T) {
	t.Parallel()
	first := New()
	time.Sleep(2 * time.Millisecond)
	second := New()
	assert.Less(t, first, second)
}

func TestNewFromReader(t *testing.T) {
	t.Parallel()
	rng := randutil.New(3)
	id, err := NewFromReader(rngReader{next: rng.Uint64})
	require.NoError(t, err)
	assert.NoError(t, Validate(id))
}

func TestEncodeKnownValues(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "00000000000000000000000000", Encode(uuid.UUID{}))

	var max uuid.UUID
	for i := range max {
		max[i] = 0xff
	}
	assert.Equal(t, "7zzzzzzzzzzzzzzzzzzzzzzzzz", Encode(max))
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"short":         "0123",
		"first too big": "8zzzzzzzzzzzzzzzzzzzzzzzzz",
		"bad character": "0000000000000000000000000u",
	}
	for name, id := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Error(t, Validate(id))
		})
	}
}
