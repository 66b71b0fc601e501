package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skillforge/internal/game/character"
	"github.com/cory-johannsen/skillforge/internal/game/session"
)

// Store bundles the repositories and writes a whole session player through them.
type Store struct {
	Players    *PlayerRepository
	Characters *CharacterRepository
	Gems       *GemRepository
	Abilities  *AbilityRepository
	Runes      *RuneRepository

	logger *zap.Logger
}

// NewStore creates a Store over db.
//
// Precondition: db must be a valid, open connection pool; logger may be nil.
func NewStore(db *pgxpool.Pool, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		Players:    NewPlayerRepository(db),
		Characters: NewCharacterRepository(db),
		Gems:       NewGemRepository(db),
		Abilities:  NewAbilityRepository(db),
		Runes:      NewRuneRepository(db),
		logger:     logger,
	}
}

// Sync persists p: the player row is created on first sight, unsaved party
// members are inserted and saved ones have their state updated, new abilities
// are appended, and the stored gems and runes are made to match the backpack.
//
// Postcondition: every party member has a non-zero ID on success.
func (s *Store) Sync(ctx context.Context, p *session.Player) error {
	row, err := s.Players.GetByUID(ctx, p.UID)
	if errors.Is(err, ErrPlayerNotFound) {
		row, err = s.Players.Create(ctx, p.UID, p.Name, p.Region)
	}
	if err != nil {
		return fmt.Errorf("syncing player %s: %w", p.UID, err)
	}
	if row.Region != p.Region {
		if err := s.Players.SetRegion(ctx, row.ID, p.Region); err != nil {
			return err
		}
	}

	for _, c := range p.Party {
		if c.ID == 0 {
			stored, err := s.Characters.Create(ctx, row.ID, c)
			if err != nil {
				return fmt.Errorf("syncing character %q: %w", c.Name, err)
			}
			c.ID, c.CreatedAt, c.UpdatedAt = stored.ID, stored.CreatedAt, stored.UpdatedAt
		} else if err := s.Characters.SaveState(ctx, c); err != nil {
			return fmt.Errorf("syncing character %q: %w", c.Name, err)
		}
		if err := s.syncAbilities(ctx, c); err != nil {
			return err
		}
	}

	if err := s.syncGems(ctx, row.ID, p); err != nil {
		return err
	}
	if err := s.syncRunes(ctx, row.ID, p); err != nil {
		return err
	}
	s.logger.Debug("player synced",
		zap.String("uid", p.UID),
		zap.Int64("player_id", row.ID),
		zap.Int("party", len(p.Party)),
	)
	return nil
}

func (s *Store) syncAbilities(ctx context.Context, c *character.Character) error {
	if c.Skills == nil {
		return nil
	}
	stored, err := s.Abilities.List(ctx, c.ID)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(stored))
	for _, d := range stored {
		known[strings.ToLower(d.Name)] = true
	}
	for _, d := range c.Skills.All() {
		if known[strings.ToLower(d.Name)] {
			continue
		}
		if err := s.Abilities.Save(ctx, c.ID, d); err != nil {
			return fmt.Errorf("syncing abilities of %q: %w", c.Name, err)
		}
	}
	return nil
}

func (s *Store) syncGems(ctx context.Context, playerID int64, p *session.Player) error {
	stored, err := s.Gems.List(ctx, playerID)
	if err != nil {
		return err
	}
	held := make(map[string]bool)
	for _, g := range p.Backpack.Gems() {
		held[g.ID] = true
	}
	have := make(map[string]bool, len(stored))
	for _, g := range stored {
		have[g.ID] = true
		if !held[g.ID] {
			if err := s.Gems.Remove(ctx, playerID, g.ID); err != nil {
				return err
			}
		}
	}
	for _, g := range p.Backpack.Gems() {
		if have[g.ID] {
			continue
		}
		if err := s.Gems.Add(ctx, playerID, g); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) syncRunes(ctx context.Context, playerID int64, p *session.Player) error {
	stored, err := s.Runes.List(ctx, playerID)
	if err != nil {
		return err
	}
	held := make(map[string]bool)
	for _, r := range p.Backpack.Runes() {
		held[r.ID] = true
	}
	have := make(map[string]bool, len(stored))
	for _, r := range stored {
		have[r.ID] = true
		if !held[r.ID] {
			if _, err := s.Runes.Take(ctx, playerID, r.ID); err != nil {
				return err
			}
		}
	}
	for _, r := range p.Backpack.Runes() {
		if have[r.ID] {
			continue
		}
		if err := s.Runes.Add(ctx, playerID, r); err != nil {
			return err
		}
	}
	return nil
}
