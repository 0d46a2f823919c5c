package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/assert"
)

// This test requires a running memcached instance
// If memcached is not available, the test will be skipped
func TestMemcacheService(t *testing.T) {
	mc := NewMemcacheService("localhost:11211", "cruisewatch_test:")

	// Test if memcached is available
	_, err := mc.client.Get("test")
	if err != nil && err != memcache.ErrCacheMiss {
		t.Skip("Memcached is not available, skipping test")
	}

	err = mc.Set("block:www.ncl.com", []byte("300"), 1*time.Second)
	assert.NoError(t, err)

	value, err := mc.Get("block:www.ncl.com")
	assert.NoError(t, err)
	assert.Equal(t, "300", string(value))

	err = mc.Delete("block:www.ncl.com")
	assert.NoError(t, err)

	_, err = mc.Get("block:www.ncl.com")
	assert.Error(t, err)
}

func TestMemcacheKey(t *testing.T) {
	mc := NewMemcacheService("localhost:11211", "cw:")

	assert.Equal(t, "cw:block:www.ncl.com", mc.key("block:www.ncl.com"))

	spaced := mc.key("block:some host")
	assert.True(t, strings.HasPrefix(spaced, "cw:"))
	assert.NotContains(t, spaced, " ")

	long := mc.key(strings.Repeat("x", 400))
	assert.LessOrEqual(t, len(long), maxKeyLength)
}
