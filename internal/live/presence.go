package live

import "sync"

// PresenceManager tracks the cursors of the observers of one view.
type PresenceManager struct {
	mu      sync.RWMutex
	cursors map[string]*CursorPayload // clientID -> cursor
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		cursors: make(map[string]*CursorPayload),
	}
}

func (pm *PresenceManager) Update(clientID string, c *CursorPayload) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.cursors[clientID] = c
}

func (pm *PresenceManager) Remove(clientID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.cursors, clientID)
}

func (pm *PresenceManager) GetAll() map[string]*CursorPayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	result := make(map[string]*CursorPayload, len(pm.cursors))
	for k, v := range pm.cursors {
		result[k] = v
	}
	return result
}
