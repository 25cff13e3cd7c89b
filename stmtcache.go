package qail

import (
	"container/list"
	"sync"

	"github.com/qail-lang/qail/internal/wire"
)

// This file is the per-connection prepared-statement cache (spec §4.4,
// §5): an LRU keyed by PreparedKey (AST fingerprint + bound parameter
// OIDs) mapping to the statement name the shape was parsed under on this
// connection (from nextStatementName), so repeat executions of the same
// compiled shape skip re-Parsing. The driver does not fill in an entry's
// ParamOIDs or ResultFields. Each connio.Conn owns exactly
// one of these; it is never shared across connections, since prepared
// statement names are connection-scoped on the wire.

// preparedEntry is one cached statement.
type preparedEntry struct {
	key             PreparedKey
	StatementName   string
	ParamOIDs       []uint32
	ResultFields    []wire.Field
}

// stmtCache is a fixed-capacity LRU. Eviction closes the oldest
// statement name's slot for reuse; the caller is responsible for
// actually sending a Close message for the evicted statement name before
// reusing it (see Insert's return values).
type stmtCache struct {
	mu       sync.Mutex
	capacity int
	entries  map[PreparedKey]*list.Element
	order    *list.List // front = most recently used
	nextSeq  uint64
}

func newStmtCache(capacity int) *stmtCache {
	if capacity <= 0 {
		capacity = defaultStatementCacheSize
	}
	return &stmtCache{
		capacity: capacity,
		entries:  make(map[PreparedKey]*list.Element),
		order:    list.New(),
	}
}

// Lookup returns the cached entry for key, promoting it to most-recently-
// used.
func (c *stmtCache) Lookup(key PreparedKey) (*preparedEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*preparedEntry), true
}

// Insert adds a new entry, evicting the least-recently-used one if the
// cache is full. It returns the evicted entry's statement name, if any,
// so the caller can send a Close('S', name) for it before reuse.
func (c *stmtCache) Insert(entry *preparedEntry) (evictedName string, evicted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[entry.key]; ok {
		el.Value = entry
		c.order.MoveToFront(el)
		return "", false
	}

	if c.order.Len() >= c.capacity {
		back := c.order.Back()
		if back != nil {
			old := back.Value.(*preparedEntry)
			delete(c.entries, old.key)
			c.order.Remove(back)
			evictedName, evicted = old.StatementName, true
		}
	}

	el := c.order.PushFront(entry)
	c.entries[entry.key] = el
	return evictedName, evicted
}

// nextStatementName hands out a unique, connection-scoped prepared
// statement name.
func (c *stmtCache) nextStatementName() string {
	c.mu.Lock()
	c.nextSeq++
	seq := c.nextSeq
	c.mu.Unlock()
	return "qail_stmt_" + itoa(int(seq))
}

// Len reports the number of cached entries, mainly for tests.
func (c *stmtCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
