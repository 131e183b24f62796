package rankService

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// session is one in-flight draw. It lives only in memory.
type session struct {
	drawID           uuid.UUID
	guildID          uint64
	candidateRoleID  uint64
	rerollsRemaining int
	touchedAt        time.Time
}

// slot serializes everything done to one player's draw.
type slot struct {
	mu      sync.Mutex
	refs    int // guarded by sessionStore.mu
	session *session
}

// sessionStore holds at most one session per player. Slots are created on demand and
// dropped once nobody holds them and they carry no session.
type sessionStore struct {
	mu    sync.Mutex
	slots map[uint64]*slot
}

func newSessionStore() *sessionStore {
	return &sessionStore{slots: make(map[uint64]*slot)}
}

// acquire returns the player's slot with its lock held. Every acquire must be paired with release.
func (s *sessionStore) acquire(playerID uint64) *slot {
	s.mu.Lock()
	sl, ok := s.slots[playerID]
	if !ok {
		sl = &slot{}
		s.slots[playerID] = sl
	}
	sl.refs++
	s.mu.Unlock()

	sl.mu.Lock()
	return sl
}

// release drops the slot once it is unused and empty. Lock order is slot then store;
// acquire never holds the store lock while waiting on a slot.
func (s *sessionStore) release(playerID uint64, sl *slot) {
	s.mu.Lock()
	sl.refs--
	if sl.refs == 0 && sl.session == nil {
		delete(s.slots, playerID)
	}
	s.mu.Unlock()

	sl.mu.Unlock()
}

func (s *sessionStore) playerIDs() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint64, 0, len(s.slots))
	for id := range s.slots {
		ids = append(ids, id)
	}
	return ids
}
