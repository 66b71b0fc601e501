package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skillforge/internal/game/craft"
)

// ErrRuneNotFound is returned when a rune is not in the player's inventory.
var ErrRuneNotFound = errors.New("rune not found")

// RuneRepository persists a player's runes.
type RuneRepository struct {
	db *pgxpool.Pool
}

// NewRuneRepository creates a RuneRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewRuneRepository(db *pgxpool.Pool) *RuneRepository {
	return &RuneRepository{db: db}
}

// Add stores rn for playerID.
func (r *RuneRepository) Add(ctx context.Context, playerID int64, rn craft.Rune) error {
	data, err := json.Marshal(rn.Ability)
	if err != nil {
		return fmt.Errorf("encoding rune %s: %w", rn.ID, err)
	}
	if _, err := r.db.Exec(ctx,
		`INSERT INTO runes (id, player_id, ability) VALUES ($1, $2, $3)`,
		rn.ID, playerID, data,
	); err != nil {
		return fmt.Errorf("inserting rune %s: %w", rn.ID, err)
	}
	return nil
}

// Take removes and returns rune id. Runes are single use.
//
// Postcondition: Returns ErrRuneNotFound if the player does not hold it.
func (r *RuneRepository) Take(ctx context.Context, playerID int64, id string) (craft.Rune, error) {
	var data []byte
	err := r.db.QueryRow(ctx,
		`DELETE FROM runes WHERE id = $1 AND player_id = $2 RETURNING ability`,
		id, playerID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return craft.Rune{}, ErrRuneNotFound
		}
		return craft.Rune{}, fmt.Errorf("taking rune %s: %w", id, err)
	}
	rn := craft.Rune{ID: id}
	if err := json.Unmarshal(data, &rn.Ability); err != nil {
		return craft.Rune{}, fmt.Errorf("decoding rune %s: %w", id, err)
	}
	return rn, nil
}

// List returns playerID's runes in the order they were created.
func (r *RuneRepository) List(ctx context.Context, playerID int64) ([]craft.Rune, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, ability FROM runes WHERE player_id = $1 ORDER BY created_at ASC, id ASC`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runes: %w", err)
	}
	defer rows.Close()

	out := make([]craft.Rune, 0)
	for rows.Next() {
		var (
			rn   craft.Rune
			data []byte
		)
		if err := rows.Scan(&rn.ID, &data); err != nil {
			return nil, fmt.Errorf("scanning rune row: %w", err)
		}
		if err := json.Unmarshal(data, &rn.Ability); err != nil {
			return nil, fmt.Errorf("decoding rune %s: %w", rn.ID, err)
		}
		out = append(out, rn)
	}
	return out, rows.Err()
}
