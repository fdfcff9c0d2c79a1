// Package cache keeps rendered chart responses keyed by request.
package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/ansel1/merry/v2"
	"github.com/bradfitz/gomemcache/memcache"

	ecache "github.com/dgryski/go-expirecache"
)

var (
	ErrTimeout  = merry.New("cache: timeout")
	ErrNotFound = merry.New("cache: not found")
)

type BytesCache interface {
	Get(k string) ([]byte, error)
	Set(k string, v []byte, expire int32)
}

type NullCache struct{}

func (NullCache) Get(string) ([]byte, error) { return nil, ErrNotFound }
func (NullCache) Set(string, []byte, int32)  {}

type ExpireCache struct {
	ec *ecache.Cache
}

// NewExpireCache returns an in-memory cache holding at most maxSize bytes.
// Expired entries are purged every cleanInterval when it is positive.
func NewExpireCache(maxSize uint64, cleanInterval time.Duration) ExpireCache {
	ec := ecache.New(maxSize)
	if cleanInterval > 0 {
		go ec.ApproximateCleaner(cleanInterval)
	}
	return ExpireCache{ec: ec}
}

func (ec ExpireCache) Get(k string) ([]byte, error) {
	v, ok := ec.ec.Get(k)

	if !ok {
		return nil, ErrNotFound
	}

	return v.([]byte), nil
}

func (ec ExpireCache) Set(k string, v []byte, expire int32) {
	ec.ec.Set(k, v, uint64(len(v)), expire)
}

func (ec ExpireCache) Items() int {
	return ec.ec.Items()
}

func (ec ExpireCache) Size() uint64 {
	return ec.ec.Size()
}

type MemcachedCache struct {
	client  *memcache.Client
	timeout time.Duration
}

// NewMemcached returns a cache backed by the given memcached servers. Reads
// slower than timeout are reported as ErrTimeout.
func NewMemcached(timeout time.Duration, servers ...string) *MemcachedCache {
	if timeout <= 0 {
		timeout = 50 * time.Millisecond
	}
	return &MemcachedCache{
		client:  memcache.New(servers...),
		timeout: timeout,
	}
}

func hashKey(k string) string {
	key := sha1.Sum([]byte(k))
	return hex.EncodeToString(key[:])
}

func (m *MemcachedCache) Get(k string) ([]byte, error) {
	hk := hashKey(k)
	done := make(chan bool, 1)

	var err error
	var item *memcache.Item

	go func() {
		item, err = m.client.Get(hk)
		done <- true
	}()

	timeout := time.After(m.timeout)

	select {
	case <-timeout:
		return nil, ErrTimeout
	case <-done:
	}

	if err != nil {
		// translate to internal cache miss error
		if err == memcache.ErrCacheMiss {
			err = ErrNotFound
		}
		return nil, err
	}

	return item.Value, nil
}

func (m *MemcachedCache) Set(k string, v []byte, expire int32) {
	go m.client.Set(&memcache.Item{Key: hashKey(k), Value: v, Expiration: expire})
}
