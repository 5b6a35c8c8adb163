package httpapi

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"github.com/lookbusy1344/sleigh-lift/sleighctx"
)

// ErrSessionNotFound is returned when a session id does not exist.
var ErrSessionNotFound = errors.New("session not found")

// Session is a stream of decodes sharing one context database, so a
// specification whose constructors schedule context commits (mode
// switches, flag updates) sees them flow from one decode to the next
// within the same session — exactly the guarantee a stateless
// one-shot POST could not offer.
type Session struct {
	ID        string
	Ctx       *sleighctx.Database
	CreatedAt time.Time
}

// SessionManager tracks active decode sessions, one cloned context
// database per session.
type SessionManager struct {
	baseCtx  *sleighctx.Database
	sessions map[string]*Session
	mu       sync.RWMutex
}

func NewSessionManager(baseCtx *sleighctx.Database) *SessionManager {
	return &SessionManager{
		baseCtx:  baseCtx,
		sessions: make(map[string]*Session),
	}
}

func (sm *SessionManager) Create() (*Session, error) {
	id, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:        id,
		Ctx:       sm.baseCtx.Clone(),
		CreatedAt: time.Now(),
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[id] = session
	return session, nil
}

func (sm *SessionManager) Get(id string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, ok := sm.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (sm *SessionManager) Destroy(id string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, ok := sm.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(sm.sessions, id)
	return nil
}

func (sm *SessionManager) List() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	return ids
}

func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

func generateSessionID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
