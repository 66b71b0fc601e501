package session

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skillforge/internal/game/character"
	"github.com/cory-johannsen/skillforge/internal/game/craft"
	"github.com/cory-johannsen/skillforge/internal/game/gem"
	"github.com/cory-johannsen/skillforge/internal/game/inventory"
)

// Manager tracks all active player sessions and region occupancy.
// All methods are safe for concurrent use; the Players it returns are not.
type Manager struct {
	mu         sync.RWMutex
	players    map[string]*Player      // uid → session
	regionSets map[int]map[string]bool // region → set of UIDs
	gen        *gem.Generator
	logger     *zap.Logger
}

// NewManager creates an empty session Manager.
//
// Precondition: gen must be non-nil. A nil logger is replaced by a no-op logger.
func NewManager(gen *gem.Generator, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		players:    make(map[string]*Player),
		regionSets: make(map[int]map[string]bool),
		gen:        gen,
		logger:     logger,
	}
}

// AddPlayer registers a new player session in the given region.
//
// Precondition: uid and name must be non-empty; party must hold at least one character.
// Postcondition: Returns the created Player with an empty backpack, or an error
// if the UID is already registered.
func (m *Manager) AddPlayer(uid, name string, region int, party []*character.Character) (*Player, error) {
	if uid == "" || name == "" {
		return nil, fmt.Errorf("adding player: uid and name must not be empty")
	}
	if len(party) == 0 {
		return nil, fmt.Errorf("adding player %q: %w", uid, ErrNoFighters)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.players[uid]; exists {
		return nil, fmt.Errorf("player %q already connected", uid)
	}

	backpack := inventory.NewBackpack(DefaultBackpackSlots)
	logger := m.logger.With(zap.String("uid", uid))
	p := &Player{
		UID:      uid,
		Name:     name,
		Region:   region,
		Party:    party,
		Backpack: backpack,
		Crafting: craft.NewSession(backpack, m.gen, logger),
		Feed:     NewFeed(uid, 0),
		logger:   logger,
	}

	m.players[uid] = p
	if m.regionSets[region] == nil {
		m.regionSets[region] = make(map[string]bool)
	}
	m.regionSets[region][uid] = true
	return p, nil
}

// RemovePlayer removes a player session and cleans up region occupancy.
//
// Postcondition: The player is removed from all tracking and its Feed closed.
// Returns an error if not found.
func (m *Manager) RemovePlayer(uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, exists := m.players[uid]
	if !exists {
		return fmt.Errorf("player %q not found", uid)
	}
	m.leave(p.Region, uid)
	_ = p.Feed.Close()
	delete(m.players, uid)
	return nil
}

func (m *Manager) leave(region int, uid string) {
	if rs, ok := m.regionSets[region]; ok {
		delete(rs, uid)
		if len(rs) == 0 {
			delete(m.regionSets, region)
		}
	}
}

// MovePlayer moves a player into a new region. A player in battle cannot move.
//
// Postcondition: Returns the old region, or an error if the player is not found or in battle.
func (m *Manager) MovePlayer(uid string, region int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, exists := m.players[uid]
	if !exists {
		return 0, fmt.Errorf("player %q not found", uid)
	}
	if p.battle != nil {
		return 0, fmt.Errorf("moving player %q: %w", uid, ErrInBattle)
	}
	old := p.Region
	m.leave(old, uid)
	p.Region = region
	if m.regionSets[region] == nil {
		m.regionSets[region] = make(map[string]bool)
	}
	m.regionSets[region][uid] = true
	return old, nil
}

// PlayersInRegion returns the UIDs of all players in the given region.
//
// Postcondition: Returns a slice of UIDs (may be empty).
func (m *Manager) PlayersInRegion(region int) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	uids := m.regionSets[region]
	out := make([]string, 0, len(uids))
	for uid := range uids {
		out = append(out, uid)
	}
	return out
}

// GetPlayer returns the session for the given UID.
//
// Postcondition: Returns (player, true) if found, or (nil, false) otherwise.
func (m *Manager) GetPlayer(uid string) (*Player, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.players[uid]
	return p, ok
}

// GetPlayerByName returns the session for the player with the given name.
func (m *Manager) GetPlayerByName(name string) (*Player, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.players {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// PlayerCount returns the total number of connected players.
func (m *Manager) PlayerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.players)
}
