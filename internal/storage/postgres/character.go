package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/skillforge/internal/game/character"
)

// ErrCharacterNotFound is returned when a character lookup yields no results.
var ErrCharacterNotFound = errors.New("character not found")

// ErrCharacterNameTaken is returned when creating a character with a name already used by the player.
var ErrCharacterNameTaken = errors.New("character name already taken")

const characterColumns = `id, name, class, level, experience,
	max_hp, attack, defense, speed, magic, current_hp, created_at, updated_at`

// CharacterRepository provides roster persistence operations.
// Learned abilities are stored separately by AbilityRepository.
type CharacterRepository struct {
	db *pgxpool.Pool
}

// NewCharacterRepository creates a CharacterRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCharacterRepository(db *pgxpool.Pool) *CharacterRepository {
	return &CharacterRepository{db: db}
}

func scanCharacter(row pgx.Row) (*character.Character, error) {
	c := &character.Character{Skills: character.NewSkillBook()}
	err := row.Scan(
		&c.ID, &c.Name, &c.Class, &c.Level, &c.Experience,
		&c.Stats.MaxHP, &c.Stats.Attack, &c.Stats.Defense, &c.Stats.Speed, &c.Stats.Magic,
		&c.CurrentHP, &c.CreatedAt, &c.UpdatedAt,
	)
	return c, err
}

// Create inserts a new character for playerID and returns it with ID and timestamps set.
//
// Precondition: playerID must reference an existing player; c.Name must be non-empty.
// Postcondition: Returns the created character with ID set, or ErrCharacterNameTaken on duplicate.
func (r *CharacterRepository) Create(ctx context.Context, playerID int64, c *character.Character) (*character.Character, error) {
	out, err := scanCharacter(r.db.QueryRow(ctx, `
		INSERT INTO characters
			(player_id, name, class, level, experience,
			 max_hp, attack, defense, speed, magic, current_hp)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING `+characterColumns,
		playerID, c.Name, c.Class, c.Level, c.Experience,
		c.Stats.MaxHP, c.Stats.Attack, c.Stats.Defense, c.Stats.Speed, c.Stats.Magic,
		c.CurrentHP,
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrCharacterNameTaken
		}
		return nil, fmt.Errorf("inserting character: %w", err)
	}
	return out, nil
}

// ListByPlayer returns all characters of the given player, ordered by created_at.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *CharacterRepository) ListByPlayer(ctx context.Context, playerID int64) ([]*character.Character, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE player_id = $1 ORDER BY created_at ASC, id ASC`,
		playerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing characters: %w", err)
	}
	defer rows.Close()

	chars := make([]*character.Character, 0)
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning character row: %w", err)
		}
		chars = append(chars, c)
	}
	return chars, rows.Err()
}

// GetByID retrieves a character by its primary key.
//
// Postcondition: Returns the Character or ErrCharacterNotFound.
func (r *CharacterRepository) GetByID(ctx context.Context, id int64) (*character.Character, error) {
	c, err := scanCharacter(r.db.QueryRow(ctx,
		`SELECT `+characterColumns+` FROM characters WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCharacterNotFound
		}
		return nil, fmt.Errorf("querying character: %w", err)
	}
	return c, nil
}

// SaveState persists a character's progression and HP after a battle.
//
// Postcondition: Returns nil on success, ErrCharacterNotFound if no row updated.
func (r *CharacterRepository) SaveState(ctx context.Context, c *character.Character) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE characters
		SET level = $2, experience = $3, current_hp = $4, updated_at = NOW()
		WHERE id = $1`,
		c.ID, c.Level, c.Experience, c.CurrentHP,
	)
	if err != nil {
		return fmt.Errorf("saving character state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCharacterNotFound
	}
	return nil
}
