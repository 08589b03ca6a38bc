package revocation

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddContains(t *testing.T) {
	t.Parallel()

	r := New()
	assert.False(t, r.Contains("some-token"))

	r.Add("some-token", time.Now().Add(5*time.Hour))
	assert.True(t, r.Contains("some-token"))
	assert.False(t, r.Contains("other-token"))
}

func TestRegistry_Prune(t *testing.T) {
	t.Parallel()

	r := New()
	now := time.Now()
	r.Add("expired-token", now.Add(-time.Minute))
	r.Add("live-token", now.Add(time.Hour))

	removed := r.Prune(now)
	assert.Equal(t, 1, removed)
	assert.False(t, r.Contains("expired-token"))
	assert.True(t, r.Contains("live-token"))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	r := New()
	exp := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Add(fmt.Sprintf("token-%d", i), exp)
		}()
		go func() {
			defer wg.Done()
			r.Contains(fmt.Sprintf("token-%d", i))
		}()
	}
	wg.Wait()

	require.Equal(t, 50, r.Len())
	for i := 0; i < 50; i++ {
		assert.True(t, r.Contains(fmt.Sprintf("token-%d", i)))
	}
}
