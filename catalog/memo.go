package catalog

import (
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache/singleflight"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pkevan/wp-chargify/form"
)

type memoKey struct {
	kind form.Kind
	ref  form.Ref
}

func (k memoKey) String() string {
	var b strings.Builder
	b.WriteString(k.kind.String())
	b.WriteByte('|')
	b.WriteString(k.ref.ID)
	b.WriteByte('|')
	b.WriteString(k.ref.Handle)
	return b.String()
}

type memo struct {
	size int
	ttl  time.Duration

	m     sync.Mutex
	lru   *lru.LRU[memoKey, form.Entity]
	group singleflight.Group
}

func (m *memo) lookupCache(key memoKey) (form.Entity, bool) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.lru == nil {
		return nil, false
	}
	return m.lru.Get(key)
}

func (m *memo) load(key memoKey, fn func() (form.Entity, error)) (form.Entity, error) {
	e, cacheHit := m.lookupCache(key)
	if cacheHit {
		return e, nil
	}

	v, err := m.group.Do(key.String(), func() (any, error) {
		e, cacheHit := m.lookupCache(key)
		if cacheHit {
			return e, nil
		}
		e, err := fn()
		if err != nil {
			return nil, err
		}
		m.add(key, e)
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(form.Entity), nil
}

func (m *memo) add(key memoKey, e form.Entity) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.lru == nil {
		size := m.size
		if size <= 0 {
			size = 256
		}
		m.lru = lru.NewLRU[memoKey, form.Entity](size, nil, m.ttl)
	}
	m.lru.Add(key, e)
}

func (m *memo) purge() {
	m.m.Lock()
	defer m.m.Unlock()
	if m.lru != nil {
		m.lru.Purge()
	}
}
