package cache

import (
	"context"
	"errors"
	"time"

	"github.com/aistudy/authkit/core"
	"github.com/allegro/bigcache/v3"
)

var _ core.ExistenceCache = (*Big)(nil)

// Big is an existence cache on top of bigcache. bigcache expires entries
// on a single life window, so the per-call ttl is ignored in favour of
// Config.TTL.
type Big struct {
	cache *bigcache.BigCache
}

func NewBig(ctx context.Context, c Config) (*Big, error) {
	if c.TTL == 0 {
		c.TTL = core.DefaultExistenceTTL
	}

	conf := bigcache.DefaultConfig(c.TTL)
	conf.CleanWindow = cleanWindow(c.TTL)
	conf.Verbose = false
	if c.MaxSize > 0 {
		conf.MaxEntriesInWindow = c.MaxSize
	}

	cache, err := bigcache.New(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &Big{cache: cache}, nil
}

// Get reports entries past the life window as misses. bigcache only drops
// them on the next clean tick.
func (b *Big) Get(_ context.Context, key string) (bool, bool, error) {
	buf, resp, err := b.cache.GetWithInfo(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	if resp.EntryStatus == bigcache.Expired {
		_ = b.cache.Delete(key)
		return false, false, nil
	}
	return len(buf) == 1 && buf[0] == 1, true, nil
}

func cleanWindow(ttl time.Duration) time.Duration {
	if w := ttl / 4; w > time.Second {
		return w
	}
	return time.Second
}

func (b *Big) Set(_ context.Context, key string, exists bool, _ time.Duration) error {
	v := byte(0)
	if exists {
		v = 1
	}
	return b.cache.Set(key, []byte{v})
}

func (b *Big) Delete(_ context.Context, key string) error {
	err := b.cache.Delete(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (b *Big) Close() error {
	return b.cache.Close()
}
