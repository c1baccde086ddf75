package memory

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// SessionStore keeps session fields in an expiring in-process cache. Expired
// entries are purged in the background, so a crashed monitor can never leave
// immortal session keys behind.
type SessionStore struct {
	cache *cache.Cache
}

func NewSessionStore() *SessionStore {
	// Default expiration of 1 hour, purge every 10 minutes.
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &SessionStore{cache: c}
}

func (s *SessionStore) Put(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	s.cache.Set(key, value, ttl)
	return nil
}

func (s *SessionStore) Get(_ context.Context, key string) (string, bool, error) {
	if x, found := s.cache.Get(key); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

func (s *SessionStore) Delete(_ context.Context, key string) error {
	s.cache.Delete(key)
	return nil
}

func (s *SessionStore) Keys(_ context.Context, prefix string) ([]string, error) {
	var keys []string
	for key := range s.cache.Items() {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
