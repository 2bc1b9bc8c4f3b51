package core

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AuditAction is the kind of operation recorded in the audit log.
type AuditAction string

const (
	ActionFileLoaded     AuditAction = "file_loaded"
	ActionFileReplaced   AuditAction = "file_replaced"
	ActionTypeOverride   AuditAction = "type_override"
	ActionAnalysisRun    AuditAction = "analysis_run"
	ActionSessionDeleted AuditAction = "session_deleted"
	ActionSessionExpired AuditAction = "session_expired"
)

// AuditEntry is one recorded operation on a session.
type AuditEntry struct {
	ID        string      `json:"id"`
	SessionID string      `json:"sessionId"`
	Action    AuditAction `json:"action"`
	FileName  string      `json:"fileName,omitempty"`
	Column    string      `json:"column,omitempty"`
	FieldType string      `json:"fieldType,omitempty"`
	Detail    string      `json:"detail,omitempty"`
	IPAddress string      `json:"ipAddress,omitempty"`
	UserAgent string      `json:"userAgent,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// AuditStore persists audit entries. Implementations must be safe for
// concurrent use.
type AuditStore interface {
	Record(ctx context.Context, entry AuditEntry) error
	// List returns the newest entries for a session first. limit <= 0 means all.
	List(ctx context.Context, sessionID string, limit int) ([]AuditEntry, error)
	// Purge removes entries created before cutoff and returns how many.
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// newAuditEntry fills the id, timestamp and request metadata of an entry.
func newAuditEntry(ctx context.Context, sessionID string, action AuditAction) AuditEntry {
	meta := RequestMetaFromContext(ctx)
	return AuditEntry{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Action:    action,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
		CreatedAt: time.Now().UTC(),
	}
}

// DefaultAuditCapacity bounds a MemoryAuditStore created with capacity 0.
const DefaultAuditCapacity = 10000

// MemoryAuditStore keeps the most recent entries in memory. It is the
// default store when no database is configured.
type MemoryAuditStore struct {
	mu       sync.RWMutex
	entries  []AuditEntry
	capacity int
}

// NewMemoryAuditStore returns a store that keeps at most capacity entries,
// dropping the oldest first.
func NewMemoryAuditStore(capacity int) *MemoryAuditStore {
	if capacity <= 0 {
		capacity = DefaultAuditCapacity
	}
	return &MemoryAuditStore{capacity: capacity}
}

func (m *MemoryAuditStore) Record(_ context.Context, entry AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)
	if over := len(m.entries) - m.capacity; over > 0 {
		m.entries = append(m.entries[:0:0], m.entries[over:]...)
	}
	return nil
}

func (m *MemoryAuditStore) List(_ context.Context, sessionID string, limit int) ([]AuditEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []AuditEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].SessionID != sessionID {
			continue
		}
		out = append(out, m.entries[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryAuditStore) Purge(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// CreatedAt is stamped before Record takes the lock, so append order
	// is not time order.
	kept := m.entries[:0]
	for _, e := range m.entries {
		if !e.CreatedAt.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	n := len(m.entries) - len(kept)
	clear(m.entries[len(kept):])
	m.entries = kept
	return int64(n), nil
}
