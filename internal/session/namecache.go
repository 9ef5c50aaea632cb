package session

import "sync"

// NameCache remembers which username was used for which quiz id, so
// returning to the same share link skips the identity prompt.
type NameCache struct {
	mu    sync.RWMutex
	names map[string]string
}

func NewNameCache() *NameCache {
	return &NameCache{names: make(map[string]string)}
}

func (c *NameCache) Get(quizID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[quizID]
	return name, ok
}

func (c *NameCache) Set(quizID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names[quizID] = name
}
