package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// maxKeyLength is memcached's key length limit
const maxKeyLength = 250

// MemcacheService implements CacheService using memcache
type MemcacheService struct {
	client *memcache.Client
	prefix string
}

// NewMemcacheService creates a new memcache service. Keys are namespaced with prefix.
func NewMemcacheService(serverAddr, prefix string) *MemcacheService {
	client := memcache.New(serverAddr)
	client.Timeout = 500 * time.Millisecond

	return &MemcacheService{
		client: client,
		prefix: prefix,
	}
}

// Get retrieves a value from memcache
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(m.key(key))
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

// Set stores a value in memcache with an expiration time
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	return m.client.Set(&memcache.Item{
		Key:        m.key(key),
		Value:      value,
		Expiration: int32(expiration.Seconds()),
	})
}

// Delete removes a value from memcache
func (m *MemcacheService) Delete(key string) error {
	return m.client.Delete(m.key(key))
}

// Ping checks that the memcache server is reachable
func (m *MemcacheService) Ping() error {
	return m.client.Ping()
}

// key namespaces a key and hashes it when memcache would reject it
func (m *MemcacheService) key(key string) string {
	full := m.prefix + key
	if len(full) <= maxKeyLength && !strings.ContainsAny(full, " \t\r\n") {
		return full
	}
	sum := sha1.Sum([]byte(key))
	return m.prefix + hex.EncodeToString(sum[:])
}
