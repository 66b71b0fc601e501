package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skillforge/internal/game/gem"
)

// ErrGemNotFound is returned when a gem is not in the player's inventory.
var ErrGemNotFound = errors.New("gem not found")

// GemRepository persists a player's gem inventory. Payloads are stored as JSONB.
type GemRepository struct {
	db *pgxpool.Pool
}

// NewGemRepository creates a GemRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewGemRepository(db *pgxpool.Pool) *GemRepository {
	return &GemRepository{db: db}
}

// Add stores g in playerID's inventory.
//
// Precondition: g.ID must be unique.
func (r *GemRepository) Add(ctx context.Context, playerID int64, g *gem.Component) error {
	cat, payload, err := gem.EncodePayload(g.Payload)
	if err != nil {
		return fmt.Errorf("encoding gem %s: %w", g.ID, err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO gems (id, player_id, name, subtype, tier, category, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		g.ID, playerID, g.Name, string(g.Subtype), int(g.Tier), cat.String(), payload,
	)
	if err != nil {
		return fmt.Errorf("inserting gem %s: %w", g.ID, err)
	}
	return nil
}

// Remove deletes gem id from playerID's inventory.
//
// Postcondition: Returns ErrGemNotFound if the player does not hold it.
func (r *GemRepository) Remove(ctx context.Context, playerID int64, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM gems WHERE id = $1 AND player_id = $2`, id, playerID)
	if err != nil {
		return fmt.Errorf("deleting gem %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrGemNotFound
	}
	return nil
}

// List returns playerID's gems in the order they were acquired.
func (r *GemRepository) List(ctx context.Context, playerID int64) ([]*gem.Component, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, subtype, tier, category, payload
		FROM gems WHERE player_id = $1 ORDER BY created_at ASC, id ASC`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing gems: %w", err)
	}
	defer rows.Close()

	out := make([]*gem.Component, 0)
	for rows.Next() {
		var (
			g        gem.Component
			subtype  string
			tier     int
			category string
			payload  []byte
		)
		if err := rows.Scan(&g.ID, &g.Name, &subtype, &tier, &category, &payload); err != nil {
			return nil, fmt.Errorf("scanning gem row: %w", err)
		}
		cat, err := gem.ParseCategory(category)
		if err != nil {
			return nil, err
		}
		if g.Payload, err = gem.DecodePayload(cat, payload); err != nil {
			return nil, fmt.Errorf("decoding gem %s: %w", g.ID, err)
		}
		g.Subtype, g.Tier = gem.Subtype(subtype), gem.Tier(tier)
		out = append(out, &g)
	}
	return out, rows.Err()
}
