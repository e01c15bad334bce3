package achievekit

import (
	"sync"
	"sync/atomic"
	"time"
)

// Cache owns the live SaveData and the flags that decide whether it may be
// written to the remote store.
type Cache struct {
	data   atomic.Pointer[SaveData]
	loaded atomic.Bool
	valid  atomic.Bool

	mu                      sync.Mutex
	lastUnhandledDisconnect time.Time
}

func NewCache(data *SaveData) *Cache {
	c := &Cache{}
	c.data.Store(data)
	return c
}

// Data returns the current container.
func (c *Cache) Data() *SaveData {
	return c.data.Load()
}

// Replace swaps in a freshly registered container.
func (c *Cache) Replace(data *SaveData) {
	c.data.Store(data)
}

func (c *Cache) SaveDataLoaded() bool        { return c.loaded.Load() }
func (c *Cache) SetSaveDataLoaded(v bool)    { c.loaded.Store(v) }
func (c *Cache) ContainsValidSaveData() bool { return c.valid.Load() }
func (c *Cache) SetValidSaveData(v bool)     { c.valid.Store(v) }

// CanUpload is the single gate in front of every remote write: the data must
// have finished loading and must have loaded cleanly.
func (c *Cache) CanUpload() bool {
	return c.loaded.Load() && c.valid.Load()
}

// LastUnhandledDisconnect is the zero time while the session state is clean.
func (c *Cache) LastUnhandledDisconnect() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUnhandledDisconnect
}

func (c *Cache) MarkUnhandledDisconnect(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastUnhandledDisconnect = at
}

func (c *Cache) ClearUnhandledDisconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastUnhandledDisconnect = time.Time{}
}

// Invalidate clears both flags so nothing is uploaded until the next load.
func (c *Cache) Invalidate() {
	c.loaded.Store(false)
	c.valid.Store(false)
}
