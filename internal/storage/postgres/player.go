package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrPlayerNotFound is returned when a player lookup yields no results.
var ErrPlayerNotFound = errors.New("player not found")

// ErrPlayerExists is returned when creating a player with a UID already in use.
var ErrPlayerExists = errors.New("player already exists")

// Player is a persisted player row: the owner of a party and an inventory.
type Player struct {
	ID        int64
	UID       string
	Name      string
	Region    int
	CreatedAt time.Time
}

// PlayerRepository provides player persistence operations.
type PlayerRepository struct {
	db *pgxpool.Pool
}

// NewPlayerRepository creates a PlayerRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// Create inserts a new player.
//
// Precondition: uid and name must be non-empty.
// Postcondition: Returns the created Player with ID and CreatedAt set,
// or ErrPlayerExists if the UID is taken.
func (r *PlayerRepository) Create(ctx context.Context, uid, name string, region int) (Player, error) {
	var p Player
	err := r.db.QueryRow(ctx,
		`INSERT INTO players (uid, name, region)
		 VALUES ($1, $2, $3)
		 RETURNING id, uid, name, region, created_at`,
		uid, name, region,
	).Scan(&p.ID, &p.UID, &p.Name, &p.Region, &p.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return Player{}, ErrPlayerExists
		}
		return Player{}, fmt.Errorf("inserting player: %w", err)
	}
	return p, nil
}

// GetByUID retrieves a player by UID.
//
// Postcondition: Returns the Player or ErrPlayerNotFound.
func (r *PlayerRepository) GetByUID(ctx context.Context, uid string) (Player, error) {
	var p Player
	err := r.db.QueryRow(ctx,
		`SELECT id, uid, name, region, created_at FROM players WHERE uid = $1`,
		uid,
	).Scan(&p.ID, &p.UID, &p.Name, &p.Region, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Player{}, ErrPlayerNotFound
		}
		return Player{}, fmt.Errorf("querying player: %w", err)
	}
	return p, nil
}

// SetRegion records the player's current region.
//
// Postcondition: Returns ErrPlayerNotFound if no row was updated.
func (r *PlayerRepository) SetRegion(ctx context.Context, id int64, region int) error {
	tag, err := r.db.Exec(ctx, `UPDATE players SET region = $2 WHERE id = $1`, id, region)
	if err != nil {
		return fmt.Errorf("updating player region: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlayerNotFound
	}
	return nil
}
