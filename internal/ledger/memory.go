package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/fortuna/faceoff/internal/stats"
	"github.com/fortuna/faceoff/internal/store"
)

// Memory is an in-process Ledger. It backs tests and dry runs.
type Memory struct {
	mode Mode
	*memState
}

type memState struct {
	mu      sync.RWMutex
	games   map[int]store.Game
	order   []int
	skaters map[int][]stats.SkaterLine
	goalies map[int][]stats.GoalieLine
	players map[int]store.Player
	meta    map[string]time.Time
}

// NewMemory returns an empty in-memory ledger.
func NewMemory(mode Mode) *Memory {
	s := &memState{}
	s.reset()
	return &Memory{mode: mode, memState: s}
}

func (s *memState) reset() {
	s.games = make(map[int]store.Game)
	s.order = nil
	s.skaters = make(map[int][]stats.SkaterLine)
	s.goalies = make(map[int][]stats.GoalieLine)
	s.players = make(map[int]store.Player)
	s.meta = make(map[string]time.Time)
}

// Reopen returns a ledger sharing this one's contents under a new mode.
// Rebuild clears the shared contents.
func (m *Memory) Reopen(mode Mode) *Memory {
	if mode == ModeRebuild {
		m.mu.Lock()
		m.reset()
		m.mu.Unlock()
	}
	return &Memory{mode: mode, memState: m.memState}
}

func (m *Memory) Mode() Mode { return m.mode }

func (m *Memory) HasGame(_ context.Context, gameID int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.games[gameID]
	return ok, nil
}

func (m *Memory) RecordGame(_ context.Context, g store.Game, skaters []stats.SkaterLine, goalies []stats.GoalieLine) (bool, error) {
	if !m.mode.Writable() {
		return false, ErrReadOnly
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[g.GameID]; ok {
		return false, nil
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	m.games[g.GameID] = g
	m.order = append(m.order, g.GameID)
	m.skaters[g.GameID] = append([]stats.SkaterLine(nil), skaters...)
	m.goalies[g.GameID] = append([]stats.GoalieLine(nil), goalies...)
	return true, nil
}

func (m *Memory) HasPlayer(_ context.Context, playerID int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.players[playerID]
	return ok, nil
}

func (m *Memory) UpsertPlayer(_ context.Context, p store.Player) error {
	if !m.mode.Writable() {
		return ErrReadOnly
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	m.players[p.PlayerID] = p
	return nil
}

func (m *Memory) DeletePlayer(_ context.Context, playerID int) (bool, error) {
	if !m.mode.Writable() {
		return false, ErrReadOnly
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.players[playerID]; !ok {
		return false, nil
	}
	delete(m.players, playerID)
	return true, nil
}

func (m *Memory) Touch(_ context.Context, table string, at time.Time) error {
	if !m.mode.Writable() {
		return ErrReadOnly
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta[table] = at.UTC()
	return nil
}

func (m *Memory) Watermark(_ context.Context, table string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	at, ok := m.meta[table]
	return at, ok, nil
}

func (m *Memory) Report(_ context.Context) (Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var nSkaters, nGoalies int
	for _, ls := range m.skaters {
		nSkaters += len(ls)
	}
	for _, ls := range m.goalies {
		nGoalies += len(ls)
	}

	rep := Report{Mode: m.mode}
	for _, t := range []struct {
		table string
		rows  int
	}{
		{store.TableGames, len(m.games)},
		{store.TableSkaters, nSkaters},
		{store.TableGoalies, nGoalies},
		{store.TablePlayers, len(m.players)},
	} {
		tr := TableReport{Table: t.table, Rows: t.rows}
		if at, ok := m.meta[t.table]; ok {
			tr.UpdatedAt = &at
		}
		rep.Tables = append(rep.Tables, tr)
	}
	return rep, nil
}

// Game returns a stored game row.
func (m *Memory) Game(gameID int) (store.Game, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[gameID]
	return g, ok
}

// GameIDs returns ledgered game ids in insertion order.
func (m *Memory) GameIDs() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.order...)
}

// SkaterLines returns the stored skater lines for a game.
func (m *Memory) SkaterLines(gameID int) []stats.SkaterLine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.skaters[gameID]
}

// Player returns a stored player.
func (m *Memory) Player(playerID int) (store.Player, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[playerID]
	return p, ok
}

func (m *Memory) Close() error { return nil }
