package rag

import (
	"encoding/json"
	"sync"
)

// Ledger tracks which chunk ids have been indexed during the current
// session, together with the chunk text. It is what makes re-indexing a
// source a cheap no-op and lets retrieval recover chunk text without a
// round trip to the index.
type Ledger struct {
	mu    sync.RWMutex
	texts map[string]string
}

func NewLedger() *Ledger {
	return &Ledger{
		texts: make(map[string]string),
	}
}

// Seen reports whether the chunk id has already been recorded.
func (l *Ledger) Seen(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.texts[id]
	return ok
}

// Record marks the chunk id as indexed and stores its text. Recording an
// id twice keeps the latest text.
func (l *Ledger) Record(id, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.texts[id] = text
}

// Text returns the stored text for a chunk id, if any.
func (l *Ledger) Text(id string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	text, ok := l.texts[id]
	return text, ok
}

// Len returns the number of recorded chunk ids.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.texts)
}

// Snapshot serialises the ledger so a later session can warm-start with
// Load and skip re-embedding content that is already in the index.
func (l *Ledger) Snapshot() ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return json.Marshal(l.texts)
}

// Load replaces the ledger contents with a previous Snapshot.
func (l *Ledger) Load(data []byte) error {
	texts := make(map[string]string)
	if err := json.Unmarshal(data, &texts); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.texts = texts
	return nil
}
