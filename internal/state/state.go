// Package state remembers where the user was in the interface between
// runs. It shares the catalog database.
package state

import (
	"database/sql"
	"log/slog"
	"sync"
	"time"
)

const saveDebounce = 500 * time.Millisecond

type Manager struct {
	db        *sql.DB
	logger    *slog.Logger
	saveMu    sync.Mutex
	saveTimer *time.Timer
	pending   *Session
}

// Open prepares the session table in db. The database stays owned by the
// caller; Close only flushes.
func Open(db *sql.DB, logger *slog.Logger) (*Manager, error) {
	if err := initSchema(db); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{db: db, logger: logger}, nil
}

// Close writes a pending save.
func (m *Manager) Close() error {
	m.saveMu.Lock()
	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}
	pending := m.pending
	m.pending = nil
	m.saveMu.Unlock()

	if pending != nil {
		return saveSession(m.db, *pending)
	}
	return nil
}

// Session returns the saved session, or nil before the first save.
func (m *Manager) Session() (*Session, error) {
	return getSession(m.db)
}

// SaveSession stores s after a short quiet period. Only the latest of a
// burst of saves is written.
func (m *Manager) SaveSession(s Session) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &s

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			if err := saveSession(m.db, *pending); err != nil {
				m.logger.Warn("save session", "error", err)
			}
		}
	})
}
