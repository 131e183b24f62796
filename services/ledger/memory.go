package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"pointsBot/models"
)

type awardKey struct {
	playerID uint64
	roleID   uint64
}

// MemoryStore keeps the ledger in process memory. Transactions run one at a time and are
// rolled back when fn returns an error. Useful for local runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	state   memoryState
	errLogs []models.ErrorLog
}

type memoryState struct {
	players map[uint64]models.Player
	roles   map[uint64]models.Role
	awards  map[awardKey]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state: memoryState{
			players: make(map[uint64]models.Player),
			roles:   make(map[uint64]models.Role),
			awards:  make(map[awardKey]time.Time),
		},
	}
}

func (m *MemoryStore) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(&memoryTx{state: &m.state}); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *MemoryStore) LogError(ctx context.Context, guildID, command, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errLogs = append(m.errLogs, models.ErrorLog{GuildID: guildID, Command: command, Message: message})
	return nil
}

// ErrorLogs returns a copy of the logged errors.
func (m *MemoryStore) ErrorLogs() []models.ErrorLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ErrorLog(nil), m.errLogs...)
}

func (s memoryState) clone() memoryState {
	c := memoryState{
		players: make(map[uint64]models.Player, len(s.players)),
		roles:   make(map[uint64]models.Role, len(s.roles)),
		awards:  make(map[awardKey]time.Time, len(s.awards)),
	}
	for k, v := range s.players {
		c.players[k] = v
	}
	for k, v := range s.roles {
		c.roles[k] = v
	}
	for k, v := range s.awards {
		c.awards[k] = v
	}
	return c
}

type memoryTx struct {
	state *memoryState
}

func (t *memoryTx) GetPlayer(id uint64) (models.Player, bool, error) {
	player, ok := t.state.players[id]
	return player, ok, nil
}

func (t *memoryTx) CreatePlayer(player models.Player) error {
	if _, ok := t.state.players[player.ID]; ok {
		return fmt.Errorf("duplicate player %d", player.ID)
	}
	player.Awards = nil
	t.state.players[player.ID] = player
	return nil
}

func (t *memoryTx) DeletePlayer(id uint64) error {
	for key := range t.state.awards {
		if key.playerID == id {
			delete(t.state.awards, key)
		}
	}
	delete(t.state.players, id)
	return nil
}

func (t *memoryTx) SetPointMaster(id uint64, value bool) error {
	if player, ok := t.state.players[id]; ok {
		player.PointMaster = value
		t.state.players[id] = player
	}
	return nil
}

func (t *memoryTx) SetAdmin(id uint64, value bool) error {
	if player, ok := t.state.players[id]; ok {
		player.Admin = value
		t.state.players[id] = player
	}
	return nil
}

func (t *memoryTx) AddPoints(id uint64, delta int) (int, error) {
	player, ok := t.state.players[id]
	if !ok {
		return 0, fmt.Errorf("player %d not found", id)
	}
	player.Points += delta
	t.state.players[id] = player
	return player.Points, nil
}

func (t *memoryTx) TopPlayersByPoints(n int) ([]models.Player, error) {
	players := make([]models.Player, 0, len(t.state.players))
	for _, p := range t.state.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		if players[i].Points != players[j].Points {
			return players[i].Points > players[j].Points
		}
		return players[i].ID < players[j].ID
	})
	if len(players) > n {
		players = players[:n]
	}
	return players, nil
}

func (t *memoryTx) GetRole(id uint64) (models.Role, bool, error) {
	role, ok := t.state.roles[id]
	return role, ok, nil
}

func (t *memoryTx) CreateRole(role models.Role) error {
	if _, ok := t.state.roles[role.ID]; ok {
		return fmt.Errorf("duplicate role %d", role.ID)
	}
	t.state.roles[role.ID] = role
	return nil
}

func (t *memoryTx) RolesForGuild(guildID uint64) ([]uint64, error) {
	var ids []uint64
	for id, role := range t.state.roles {
		if role.GuildID == guildID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (t *memoryTx) AwardedRoles(playerID uint64) ([]uint64, error) {
	var ids []uint64
	for key := range t.state.awards {
		if key.playerID == playerID {
			ids = append(ids, key.roleID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (t *memoryTx) InsertAward(playerID, roleID uint64) error {
	if _, ok := t.state.players[playerID]; !ok {
		return fmt.Errorf("award references missing player %d", playerID)
	}
	if _, ok := t.state.roles[roleID]; !ok {
		return fmt.Errorf("award references missing role %d", roleID)
	}
	key := awardKey{playerID: playerID, roleID: roleID}
	if _, ok := t.state.awards[key]; ok {
		return ErrAwardExists
	}
	t.state.awards[key] = time.Now()
	return nil
}
